package models

import (
	"github.com/golang-jwt/jwt/v5"
)

// Role decides which view a user works in
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleGenerator Role = "generator"
	RoleAnnotator Role = "annotator"
)

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleGenerator, RoleAnnotator:
		return true
	}
	return false
}

// User is a registered account. Password holds whatever the configured
// password hasher produced and is never serialised.
type User struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Password string `json:"-"`
	Role     Role   `json:"role"`
}

// Claims defines the structure of the JWT claims.
type Claims struct {
	UserID string `json:"uid"`
	Name   string `json:"name"`
	Role   Role   `json:"role"`
	jwt.RegisteredClaims
}
