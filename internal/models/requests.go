package models

import "time"

// LoginRequest carries the login form. Blank fields are reported with the
// form's own message, so no binding rules here.
type LoginRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

// LoginResponse is returned on successful login
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      User      `json:"user"`
}

// TripletRequest for the single-entry form
type TripletRequest struct {
	Target   string `json:"target"`
	BiasType string `json:"bias_type"`
	Context  string `json:"context"`
}

// BulkImportRequest carries pasted pipe-delimited text
type BulkImportRequest struct {
	Text string `json:"text"`
}

// UserRequest for adding a single user
type UserRequest struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Password string `json:"password"`
	Role     Role   `json:"role"`
}

// GenerateRequest carries the three sentences written for a triplet
type GenerateRequest struct {
	Stereotype     string `json:"stereotype"`
	AntiStereotype string `json:"anti_stereotype"`
	Neutral        string `json:"neutral"`
}

// LabelRequest carries one annotation. SentenceID is optional; when set it
// must match the sentence currently assigned to the caller.
type LabelRequest struct {
	Label      string `json:"label" binding:"required,oneof=stereotype anti-stereotype unrelated"`
	SentenceID string `json:"sentence_id,omitempty"`
}
