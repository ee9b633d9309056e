package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Generation statuses stored in the history table.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// GenerationRecord is one row of the generation history.
type GenerationRecord struct {
	ID            int64     `json:"id"`
	CorrelationID string    `json:"correlation_id"`
	Provider      string    `json:"provider"`
	Prompt        string    `json:"prompt"`
	Resolution    string    `json:"resolution"`
	Seed          int64     `json:"seed"`
	ImageRef      string    `json:"image_ref,omitempty"`
	ImageWidth    int       `json:"image_width,omitempty"`
	ImageHeight   int       `json:"image_height,omitempty"`
	Status        string    `json:"status"`
	ErrorKind     string    `json:"error_kind,omitempty"`
	ErrorMessage  string    `json:"error_message,omitempty"`
	DurationMS    int64     `json:"duration_ms"`
	CreatedAt     time.Time `json:"created_at"`
}

// Repository provides typed access to the generation history table.
type Repository struct {
	db *Database
}

// NewRepository creates a repository over the database.
func NewRepository(db *Database) *Repository {
	return &Repository{db: db}
}

// InsertGeneration records one generation attempt, success or failure, and
// returns the new row ID.
func (r *Repository) InsertGeneration(ctx context.Context, rec *GenerationRecord) (int64, error) {
	if rec.Status == "" {
		rec.Status = StatusSuccess
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	result, err := r.db.DB().ExecContext(ctx, `
		INSERT INTO generation_history (
			correlation_id, provider, prompt, resolution, seed,
			image_ref, image_width, image_height,
			status, error_kind, error_message, duration_ms, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.CorrelationID, rec.Provider, rec.Prompt, rec.Resolution, rec.Seed,
		rec.ImageRef, rec.ImageWidth, rec.ImageHeight,
		rec.Status, rec.ErrorKind, rec.ErrorMessage, rec.DurationMS, rec.CreatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert generation record: %w", err)
	}
	return result.LastInsertId()
}

const generationColumns = `
	id, correlation_id, provider, prompt, resolution, seed,
	image_ref, image_width, image_height,
	status, error_kind, error_message, duration_ms, created_at`

// ListRecent returns the most recent generations, newest first.
func (r *Repository) ListRecent(ctx context.Context, limit int) ([]GenerationRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.DB().QueryContext(ctx, `
		SELECT `+generationColumns+`
		FROM generation_history
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query generation history: %w", err)
	}
	defer rows.Close()

	return scanGenerationRows(rows)
}

// GetByID returns one history record, or sql.ErrNoRows.
func (r *Repository) GetByID(ctx context.Context, id int64) (*GenerationRecord, error) {
	row := r.db.DB().QueryRowContext(ctx, `
		SELECT `+generationColumns+`
		FROM generation_history
		WHERE id = ?`, id)

	var rec GenerationRecord
	if err := scanGeneration(row, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// DeleteOlderThan removes history rows older than the cutoff and returns
// the number deleted.
func (r *Repository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.DB().ExecContext(ctx,
		`DELETE FROM generation_history WHERE created_at < ?`, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to prune generation history: %w", err)
	}
	return result.RowsAffected()
}

// CountByStatus returns how many records carry the given status.
func (r *Repository) CountByStatus(ctx context.Context, status string) (int64, error) {
	var count int64
	err := r.db.DB().QueryRowContext(ctx,
		`SELECT COUNT(*) FROM generation_history WHERE status = ?`, status).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count generation history: %w", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGeneration(row rowScanner, rec *GenerationRecord) error {
	return row.Scan(
		&rec.ID, &rec.CorrelationID, &rec.Provider, &rec.Prompt, &rec.Resolution, &rec.Seed,
		&rec.ImageRef, &rec.ImageWidth, &rec.ImageHeight,
		&rec.Status, &rec.ErrorKind, &rec.ErrorMessage, &rec.DurationMS, &rec.CreatedAt,
	)
}

func scanGenerationRows(rows *sql.Rows) ([]GenerationRecord, error) {
	var records []GenerationRecord
	for rows.Next() {
		var rec GenerationRecord
		if err := scanGeneration(rows, &rec); err != nil {
			return nil, fmt.Errorf("failed to scan generation record: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
