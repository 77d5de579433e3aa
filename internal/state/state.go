// Package state holds the annotation data object and the transitions over it.
//
// A State value is never modified in place. Every transition returns a new
// State that shares unchanged parts with the old one, so a snapshot handed to
// a reader stays valid while later transitions are applied.
package state

import (
	"github.com/google/uuid"

	"github.com/HansenDafa/indostereoset-annotation/internal/models"
)

// Seed admin account, recreated on every start
const (
	SeedAdminID       = "admin_user"
	SeedAdminName     = "admin"
	SeedAdminPassword = "admin123"
)

// State is the shared data object: triplets and users, in insertion order
type State struct {
	Triplets []models.Triplet
	Users    []models.User
}

// PasswordHasher turns a plaintext password into the stored form and checks
// a candidate against it.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(stored, password string) bool
}

// Reducer applies actions to a State. NewID and Passwords are the only
// sources of non-determinism; both default when nil.
type Reducer struct {
	NewID     func() string
	Passwords PasswordHasher
}

// NewReducer returns a reducer using random UUIDs and the given hasher
func NewReducer(passwords PasswordHasher) Reducer {
	return Reducer{
		NewID:     func() string { return uuid.New().String() },
		Passwords: passwords,
	}
}

// Initial returns the start-of-process state: no triplets, one admin
func (r Reducer) Initial() (State, error) {
	hash, err := r.hash(SeedAdminPassword)
	if err != nil {
		return State{}, err
	}
	return State{
		Triplets: []models.Triplet{},
		Users: []models.User{{
			ID:       SeedAdminID,
			Name:     SeedAdminName,
			Password: hash,
			Role:     models.RoleAdmin,
		}},
	}, nil
}

func (r Reducer) id() string {
	if r.NewID == nil {
		return uuid.New().String()
	}
	return r.NewID()
}

func (r Reducer) hash(password string) (string, error) {
	if r.Passwords == nil {
		return password, nil
	}
	return r.Passwords.Hash(password)
}

func (r Reducer) verify(stored, password string) bool {
	if r.Passwords == nil {
		return stored == password
	}
	return r.Passwords.Verify(stored, password)
}
