package service

import (
	"go.uber.org/zap"

	"github.com/HansenDafa/indostereoset-annotation/internal/models"
	"github.com/HansenDafa/indostereoset-annotation/internal/state"
)

// AnnotatorService hands out sentences and records labels
type AnnotatorService struct {
	store   *state.Store
	reducer state.Reducer
	logger  *zap.Logger
}

// NewAnnotatorService creates a new annotator service
func NewAnnotatorService(store *state.Store, reducer state.Reducer, logger *zap.Logger) *AnnotatorService {
	return &AnnotatorService{
		store:   store,
		reducer: reducer,
		logger:  logger,
	}
}

// Next returns the sentence humanID should label next
func (a *AnnotatorService) Next(humanID string) models.AnnotationTask {
	assignment, ok := state.NextAssignment(a.store.Snapshot(), humanID)
	if !ok {
		return models.AnnotationTask{Done: true, Message: "All Done!"}
	}
	return models.AnnotationTask{Assignment: &assignment}
}

// Submit records a label on the sentence currently assigned to humanID
func (a *AnnotatorService) Submit(humanID string, req models.LabelRequest) (models.LabelResult, error) {
	var result models.LabelResult
	err := a.store.Update(func(s state.State) (state.State, error) {
		next, r, err := a.reducer.SubmitLabel(s, humanID, req.Label, req.SentenceID)
		result = r
		return next, err
	})
	if err != nil {
		a.logger.Debug("Label rejected",
			zap.String("human_id", humanID),
			zap.String("sentence_id", req.SentenceID),
			zap.Error(err))
		return models.LabelResult{}, err
	}

	if !result.Applied {
		a.logger.Debug("No sentence to label", zap.String("human_id", humanID))
		return result, nil
	}

	a.logger.Info("Label recorded",
		zap.String("human_id", humanID),
		zap.String("sentence_id", result.SentenceID),
		zap.Int("label_count", result.LabelCount))
	return result, nil
}
