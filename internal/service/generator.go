package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/HansenDafa/indostereoset-annotation/internal/models"
	"github.com/HansenDafa/indostereoset-annotation/internal/state"
)

var (
	// ErrDraftsDisabled is returned when no draft provider is configured
	ErrDraftsDisabled = errors.New("draft assistant is disabled")
	// ErrDraftsFailed wraps provider failures
	ErrDraftsFailed = errors.New("draft generation failed")
)

// Drafter interface for any draft provider
type Drafter interface {
	Draft(ctx context.Context, t models.Triplet) (*models.Drafts, error)
	GetModelInfo() map[string]interface{}
}

// GeneratorService hands out pending triplets and stores generated sentences
type GeneratorService struct {
	store   *state.Store
	reducer state.Reducer
	drafter Drafter
	logger  *zap.Logger
}

// NewGeneratorService creates a new generator service. drafter may be nil.
func NewGeneratorService(store *state.Store, reducer state.Reducer, drafter Drafter, logger *zap.Logger) *GeneratorService {
	return &GeneratorService{
		store:   store,
		reducer: reducer,
		drafter: drafter,
		logger:  logger,
	}
}

// Next returns the preferred pending triplet, or the first one
func (g *GeneratorService) Next(preferredID string) models.GenerationTask {
	t, remaining, ok := state.Candidate(g.store.Snapshot(), preferredID)
	if !ok {
		return models.GenerationTask{Available: false, Message: "No Tasks Available"}
	}
	return models.GenerationTask{Available: true, Triplet: &t, Remaining: remaining}
}

// Submit stores the three sentences written by generatorID
func (g *GeneratorService) Submit(tripletID, generatorID string, req models.GenerateRequest) (models.Triplet, error) {
	var generated models.Triplet
	err := g.store.Update(func(s state.State) (state.State, error) {
		next, t, err := g.reducer.SubmitTriplet(s, tripletID, generatorID, req)
		generated = t
		return next, err
	})
	if err != nil {
		g.logger.Debug("Triplet submission rejected",
			zap.String("triplet_id", tripletID),
			zap.String("generator_id", generatorID),
			zap.Error(err))
		return models.Triplet{}, err
	}

	g.logger.Info("Triplet generated",
		zap.String("triplet_id", generated.ID),
		zap.String("generator_id", generatorID))
	return generated, nil
}

// DraftsEnabled reports whether a draft provider is configured
func (g *GeneratorService) DraftsEnabled() bool {
	return g.drafter != nil
}

// Drafts asks the configured provider for suggested sentences. It never
// changes state.
func (g *GeneratorService) Drafts(ctx context.Context, tripletID string) (*models.Drafts, error) {
	if g.drafter == nil {
		return nil, ErrDraftsDisabled
	}

	t, ok := findTriplet(g.store.Snapshot(), tripletID)
	if !ok {
		return nil, &state.ValidationError{Err: state.ErrTripletNotFound, Message: "Triplet not found"}
	}
	if t.Generated() {
		return nil, &state.ValidationError{Err: state.ErrAlreadyGenerated, Message: "This triplet has already been generated"}
	}

	drafts, err := g.drafter.Draft(ctx, t)
	if err != nil {
		g.logger.Error("Draft generation failed",
			zap.String("triplet_id", tripletID),
			zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrDraftsFailed, err)
	}

	g.logger.Info("Drafts generated",
		zap.String("triplet_id", tripletID),
		zap.String("provider", drafts.Provider))
	return drafts, nil
}

func findTriplet(s state.State, id string) (models.Triplet, bool) {
	for _, t := range s.Triplets {
		if t.ID == id {
			return t, true
		}
	}
	return models.Triplet{}, false
}
