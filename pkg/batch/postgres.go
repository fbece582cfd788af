package batch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/quantrisk/riskscan/pkg/database"
)

// PostgresStore persists jobs in the risk_jobs table so status and results
// survive a server restart.
type PostgresStore struct {
	DB *database.PostgresDB
}

func NewPostgresStore(db *database.PostgresDB) *PostgresStore {
	return &PostgresStore{DB: db}
}

func (s *PostgresStore) CreateJob(ctx context.Context, id uuid.UUID) error {
	query := `
		INSERT INTO risk_jobs (id, status)
		VALUES ($1, $2)
	`
	if _, err := s.DB.Pool.Exec(ctx, query, id, StatusPending); err != nil {
		return fmt.Errorf("failed to create job: %w", err)
	}
	return nil
}

func (s *PostgresStore) SetStarted(ctx context.Context, id uuid.UUID) error {
	_, err := s.DB.Pool.Exec(ctx,
		"UPDATE risk_jobs SET status = $2, updated_at = NOW() WHERE id = $1", id, StatusStarted)
	if err != nil {
		return fmt.Errorf("failed to mark job started: %w", err)
	}
	return nil
}

func (s *PostgresStore) SetSuccess(ctx context.Context, id uuid.UUID, results []RiskResult) error {
	resultsJSON, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	_, err = s.DB.Pool.Exec(ctx,
		"UPDATE risk_jobs SET status = $2, results = $3, updated_at = NOW() WHERE id = $1",
		id, StatusSuccess, resultsJSON)
	if err != nil {
		return fmt.Errorf("failed to save results: %w", err)
	}
	return nil
}

func (s *PostgresStore) SetFailure(ctx context.Context, id uuid.UUID, reason string) error {
	_, err := s.DB.Pool.Exec(ctx,
		"UPDATE risk_jobs SET status = $2, error = $3, updated_at = NOW() WHERE id = $1",
		id, StatusFailure, reason)
	if err != nil {
		return fmt.Errorf("failed to mark job failed: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetJob(ctx context.Context, id uuid.UUID) (*Job, error) {
	query := `
		SELECT id, status, results, error, created_at, updated_at
		FROM risk_jobs
		WHERE id = $1
	`
	job := &Job{}
	var resultsJSON []byte
	var jobErr *string
	err := s.DB.Pool.QueryRow(ctx, query, id).Scan(
		&job.ID, &job.Status, &resultsJSON, &jobErr, &job.CreatedAt, &job.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrJobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get job: %w", err)
	}

	if jobErr != nil {
		job.Error = *jobErr
	}
	if len(resultsJSON) > 0 {
		if err := json.Unmarshal(resultsJSON, &job.Results); err != nil {
			return nil, fmt.Errorf("failed to decode stored results: %w", err)
		}
	}
	return job, nil
}

// WriteJobLog appends one structured log record to the job's log trail.
func (s *PostgresStore) WriteJobLog(ctx context.Context, jobID uuid.UUID, at time.Time, level, message string, metadata []byte) error {
	query := `
		INSERT INTO risk_job_logs (job_id, timestamp, level, message, metadata)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := s.DB.Pool.Exec(ctx, query, jobID, at, level, message, metadata); err != nil {
		return fmt.Errorf("failed to write job log: %w", err)
	}
	return nil
}
