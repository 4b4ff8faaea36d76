package repository

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// SyncRun is one row of the sync journal.
type SyncRun struct {
	ID         uuid.UUID
	Source     string
	StartedAt  time.Time
	FinishedAt sql.NullTime
	Products   int
	Skipped    int
	Error      string
}

type SyncRepository struct {
	DB *sql.DB
}

func (r *SyncRepository) Start(id uuid.UUID, source string, startedAt time.Time) error {
	_, err := r.DB.Exec(`
		INSERT INTO catalog_sync_runs (id, source, started_at)
		VALUES ($1, $2, $3)
	`, id, source, startedAt)
	return err
}

// Finish closes a run. errMsg is empty for a successful run.
func (r *SyncRepository) Finish(id uuid.UUID, products, skipped int, errMsg string, finishedAt time.Time) error {
	res, err := r.DB.Exec(`
		UPDATE catalog_sync_runs
		SET finished_at = $1, products = $2, skipped = $3, error = $4
		WHERE id = $5
	`, finishedAt, products, skipped, errMsg, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Last returns the most recent run, or nil when the journal is empty.
func (r *SyncRepository) Last() (*SyncRun, error) {
	var run SyncRun
	err := r.DB.QueryRow(`
		SELECT id, source, started_at, finished_at, products, skipped, error
		FROM catalog_sync_runs
		ORDER BY started_at DESC
		LIMIT 1
	`).Scan(&run.ID, &run.Source, &run.StartedAt, &run.FinishedAt, &run.Products, &run.Skipped, &run.Error)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}
