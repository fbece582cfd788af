package database

import (
	"context"
	"fmt"
)

func (db *PostgresDB) InitSchema(ctx context.Context) error {
	jobsQuery := `
		CREATE TABLE IF NOT EXISTS risk_jobs (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			status TEXT NOT NULL DEFAULT 'PENDING',
			results JSONB,
			error TEXT,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
			updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		);
	`
	if _, err := db.Pool.Exec(ctx, jobsQuery); err != nil {
		return fmt.Errorf("failed to create risk_jobs table: %w", err)
	}

	if _, err := db.Pool.Exec(ctx, "CREATE INDEX IF NOT EXISTS idx_risk_jobs_created_at ON risk_jobs(created_at DESC)"); err != nil {
		return fmt.Errorf("failed to create index on risk_jobs: %w", err)
	}

	logsQuery := `
		CREATE TABLE IF NOT EXISTS risk_job_logs (
			id SERIAL PRIMARY KEY,
			job_id UUID NOT NULL REFERENCES risk_jobs(id) ON DELETE CASCADE,
			timestamp TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
			level TEXT NOT NULL,
			message TEXT NOT NULL,
			metadata JSONB
		);
	`
	if _, err := db.Pool.Exec(ctx, logsQuery); err != nil {
		return fmt.Errorf("failed to create risk_job_logs table: %w", err)
	}

	if _, err := db.Pool.Exec(ctx, "CREATE INDEX IF NOT EXISTS idx_risk_job_logs_job_id ON risk_job_logs(job_id)"); err != nil {
		return fmt.Errorf("failed to create index on risk_job_logs: %w", err)
	}

	return nil
}
