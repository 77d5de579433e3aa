// Package service holds the per-role use cases. Each one runs a reducer
// transition against the shared store and logs the outcome.
package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/HansenDafa/indostereoset-annotation/internal/models"
	"github.com/HansenDafa/indostereoset-annotation/internal/repository"
	"github.com/HansenDafa/indostereoset-annotation/internal/state"
)

// ErrArchiveDisabled is returned by the archive queries when no archive is configured
var ErrArchiveDisabled = errors.New("export archive is disabled")

// AdminService handles triplet intake, users and exports
type AdminService struct {
	store   *state.Store
	reducer state.Reducer
	archive repository.ExportRepository
	logger  *zap.Logger
	now     func() time.Time
}

// NewAdminService creates a new admin service. archive may be nil.
func NewAdminService(
	store *state.Store,
	reducer state.Reducer,
	archive repository.ExportRepository,
	logger *zap.Logger,
) *AdminService {
	return &AdminService{
		store:   store,
		reducer: reducer,
		archive: archive,
		logger:  logger,
		now:     time.Now,
	}
}

// AddTriplet appends one pending triplet
func (a *AdminService) AddTriplet(req models.TripletRequest) (models.Triplet, error) {
	var added models.Triplet
	err := a.store.Update(func(s state.State) (state.State, error) {
		next, t, err := a.reducer.AddTriplet(s, req)
		added = t
		return next, err
	})
	if err != nil {
		a.logger.Debug("Triplet rejected", zap.Error(err))
		return models.Triplet{}, err
	}

	a.logger.Info("Triplet added",
		zap.String("triplet_id", added.ID),
		zap.String("target", added.Target))
	return added, nil
}

// ImportTriplets appends one triplet per line of pipe-delimited text
func (a *AdminService) ImportTriplets(text string) (models.ImportResult[models.TripletImportRow], error) {
	var result models.ImportResult[models.TripletImportRow]
	err := a.store.Update(func(s state.State) (state.State, error) {
		next, r, err := a.reducer.ImportTriplets(s, text)
		result = r
		return next, err
	})
	if err != nil {
		a.logger.Debug("Triplet import rejected", zap.Error(err))
		return result, err
	}

	a.logger.Info("Triplets imported",
		zap.Int("accepted", result.Accepted),
		zap.Int("rejected", result.Rejected))
	return result, nil
}

// AddUser registers one user. The password is hashed before the store is
// locked.
func (a *AdminService) AddUser(req models.UserRequest) (models.User, error) {
	user, err := a.reducer.PrepareUser(req)
	if err != nil {
		a.logger.Debug("User rejected", zap.Error(err))
		return models.User{}, err
	}

	a.store.Update(func(s state.State) (state.State, error) {
		return state.AppendUsers(s, user), nil
	})

	a.logger.Info("User added",
		zap.String("user_id", user.ID),
		zap.String("role", string(user.Role)))
	return user, nil
}

// ImportUsers registers one user per line of pipe-delimited text. Passwords
// are hashed before the store is locked.
func (a *AdminService) ImportUsers(text string) (models.ImportResult[models.UserImportRow], error) {
	users, result, err := a.reducer.PrepareUsers(text)
	if err != nil {
		a.logger.Debug("User import rejected", zap.Error(err))
		return result, err
	}

	a.store.Update(func(s state.State) (state.State, error) {
		return state.AppendUsers(s, users...), nil
	})

	a.logger.Info("Users imported",
		zap.Int("accepted", result.Accepted),
		zap.Int("rejected", result.Rejected))
	return result, nil
}

// ListUsers returns every user in insertion order
func (a *AdminService) ListUsers() []models.User {
	users := a.store.Snapshot().Users
	out := make([]models.User, len(users))
	copy(out, users)
	return out
}

// ListPending returns the triplets still waiting for a generator
func (a *AdminService) ListPending() []models.Triplet {
	pending := state.Candidates(a.store.Snapshot())
	if pending == nil {
		return []models.Triplet{}
	}
	return pending
}

// Stats returns the dashboard counters
func (a *AdminService) Stats() models.Stats {
	return state.ComputeStats(a.store.Snapshot())
}

// ExportJSON encodes every triplet and, when an archive is configured,
// records the export. Archive failures do not fail the export.
func (a *AdminService) ExportJSON() ([]byte, error) {
	snapshot := a.store.Snapshot()
	data, err := state.EncodeJSON(snapshot)
	if err != nil {
		return nil, fmt.Errorf("failed to encode export: %w", err)
	}

	if a.archive != nil {
		stats := state.ComputeStats(snapshot)
		rec := &models.ExportRecord{
			ID:           uuid.New().String(),
			CreatedAt:    a.now(),
			TripletCount: stats.TotalTriplets,
			LabelCount:   stats.TotalLabels,
			Payload:      string(data),
		}
		if err := a.archive.Record(rec); err != nil {
			a.logger.Error("Failed to archive export", zap.Error(err))
		}
	}

	a.logger.Info("JSON export generated", zap.Int("bytes", len(data)))
	return data, nil
}

// ExportCSV encodes every label as a flat CSV row
func (a *AdminService) ExportCSV() ([]byte, error) {
	data, err := state.EncodeCSV(a.store.Snapshot())
	if err != nil {
		return nil, fmt.Errorf("failed to encode export: %w", err)
	}
	a.logger.Info("CSV export generated", zap.Int("bytes", len(data)))
	return data, nil
}

// ListExports returns archived export metadata, newest first
func (a *AdminService) ListExports() ([]models.ExportRecord, error) {
	if a.archive == nil {
		return nil, ErrArchiveDisabled
	}
	records, err := a.archive.List()
	if err != nil {
		return nil, fmt.Errorf("failed to list exports: %w", err)
	}
	return records, nil
}

// GetExport returns one archived export including its payload
func (a *AdminService) GetExport(id string) (*models.ExportRecord, error) {
	if a.archive == nil {
		return nil, ErrArchiveDisabled
	}
	return a.archive.Get(id)
}
