package models

import "time"

// Stats backs the admin dashboard cards and progress bar
type Stats struct {
	TotalTriplets   int     `json:"total_triplets"`
	PendingTriplets int     `json:"pending_triplets"`
	TotalSentences  int     `json:"total_sentences"`
	TotalLabels     int     `json:"total_labels"`
	TargetLabels    int     `json:"target_labels"`
	Progress        float64 `json:"progress"`
	TotalUsers      int     `json:"total_users"`
}

// GenerationTask is what the generator view shows
type GenerationTask struct {
	Available bool     `json:"available"`
	Message   string   `json:"message,omitempty"`
	Triplet   *Triplet `json:"triplet,omitempty"`
	Remaining int      `json:"remaining"`
}

// Assignment is the sentence an annotator should label next
type Assignment struct {
	TripletID  string `json:"triplet_id"`
	Target     string `json:"target"`
	Context    string `json:"context"`
	SentenceID string `json:"sentence_id"`
	Sentence   string `json:"sentence"`
	LabelCount int    `json:"label_count"`
}

// AnnotationTask is what the annotator view shows
type AnnotationTask struct {
	Done       bool        `json:"done"`
	Message    string      `json:"message,omitempty"`
	Assignment *Assignment `json:"assignment,omitempty"`
}

// LabelResult reports the outcome of a label submission
type LabelResult struct {
	Applied    bool   `json:"applied"`
	SentenceID string `json:"sentence_id,omitempty"`
	LabelCount int    `json:"label_count,omitempty"`
}

// TripletImportRow is the outcome of one line of a context bulk import
type TripletImportRow struct {
	Line     int      `json:"line"`
	Accepted bool     `json:"accepted"`
	Reason   string   `json:"reason,omitempty"`
	Triplet  *Triplet `json:"triplet,omitempty"`
}

// UserImportRow is the outcome of one line of a user bulk import
type UserImportRow struct {
	Line     int    `json:"line"`
	Accepted bool   `json:"accepted"`
	Reason   string `json:"reason,omitempty"`
	User     *User  `json:"user,omitempty"`
}

// ImportResult summarises a bulk import
type ImportResult[T any] struct {
	Accepted int    `json:"accepted"`
	Rejected int    `json:"rejected"`
	Message  string `json:"message"`
	Rows     []T    `json:"rows"`
}

// Drafts are machine-suggested sentences offered to a generator
type Drafts struct {
	Stereotype     string `json:"stereotype"`
	AntiStereotype string `json:"anti_stereotype"`
	Unrelated      string `json:"unrelated"`
	Provider       string `json:"provider,omitempty"`
	ModelVersion   string `json:"model_version,omitempty"`
}

// ExportRecord is one archived JSON export
type ExportRecord struct {
	ID           string    `json:"id" db:"id"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	TripletCount int       `json:"triplet_count" db:"triplet_count"`
	LabelCount   int       `json:"label_count" db:"label_count"`
	Payload      string    `json:"-" db:"payload"`
}
