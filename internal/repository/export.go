package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/HansenDafa/indostereoset-annotation/internal/models"
)

// ErrExportNotFound is returned by Get for an unknown id
var ErrExportNotFound = errors.New("export not found")

// ExportRepository stores past JSON exports
type ExportRepository interface {
	Record(rec *models.ExportRecord) error
	List() ([]models.ExportRecord, error)
	Get(id string) (*models.ExportRecord, error)
	Close() error
}

type exportRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewExportRepository creates a new repository over an open database
func NewExportRepository(db *sqlx.DB, logger *zap.Logger) ExportRepository {
	return &exportRepository{db: db, logger: logger}
}

func (r *exportRepository) Record(rec *models.ExportRecord) error {
	query := r.db.Rebind(`INSERT INTO exports (id, created_at, triplet_count, label_count, payload)
	          VALUES (?, ?, ?, ?, ?)`)
	if _, err := r.db.Exec(query, rec.ID, rec.CreatedAt.UTC(), rec.TripletCount, rec.LabelCount, rec.Payload); err != nil {
		return fmt.Errorf("failed to save export: %w", err)
	}
	r.logger.Debug("Export archived", zap.String("id", rec.ID), zap.Int("bytes", len(rec.Payload)))
	return nil
}

// List returns every export, newest first, without payloads
func (r *exportRepository) List() ([]models.ExportRecord, error) {
	records := []models.ExportRecord{}
	query := `SELECT id, created_at, triplet_count, label_count FROM exports ORDER BY created_at DESC`
	if err := r.db.Select(&records, query); err != nil {
		return nil, fmt.Errorf("failed to query exports: %w", err)
	}
	return records, nil
}

func (r *exportRepository) Get(id string) (*models.ExportRecord, error) {
	var rec models.ExportRecord
	query := r.db.Rebind(`SELECT id, created_at, triplet_count, label_count, payload FROM exports WHERE id = ?`)
	err := r.db.Get(&rec, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrExportNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get export: %w", err)
	}
	return &rec, nil
}

func (r *exportRepository) Close() error {
	return r.db.Close()
}
