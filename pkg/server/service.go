package server

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/quantrisk/riskscan/pkg/batch"
)

// Service owns batch job lifecycle: it validates submissions, launches the
// coordinator in the background, and records the chord outcome in the store.
type Service struct {
	Store       batch.Store
	Coordinator *batch.Coordinator
	Logger      *slog.Logger
}

func NewService(store batch.Store, coordinator *batch.Coordinator, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{Store: store, Coordinator: coordinator, Logger: logger}
}

// SubmitBatch validates the jobs, registers a new job id, and starts the
// batch in the background. Validation errors are returned synchronously and
// no job is created.
func (s *Service) SubmitBatch(ctx context.Context, jobs []batch.RiskJob) (uuid.UUID, error) {
	if len(jobs) == 0 {
		return uuid.Nil, fmt.Errorf("batch contains no risks")
	}
	for i, job := range jobs {
		if err := job.Validate(); err != nil {
			return uuid.Nil, fmt.Errorf("risk %d: %w", i+1, err)
		}
	}

	jobID := uuid.New()
	if err := s.Store.CreateJob(ctx, jobID); err != nil {
		return uuid.Nil, err
	}

	go s.runBatch(jobID, jobs)

	return jobID, nil
}

// runBatch is the background worker for one batch. Coordinator.Run is the
// chord barrier: it returns only after every constituent run has reported,
// so the store update below fires exactly once per batch.
func (s *Service) runBatch(jobID uuid.UUID, jobs []batch.RiskJob) {
	ctx := context.Background()
	log := s.jobLogger(jobID)

	if err := s.Store.SetStarted(ctx, jobID); err != nil {
		log.Error("failed to mark job started", "job_id", jobID, "error", err)
	}
	log.Info("batch started", "job_id", jobID, "risks", len(jobs))

	results := s.Coordinator.Run(ctx, jobs)

	if reason := failureReason(results); reason != "" {
		log.Warn("batch finished with failures", "job_id", jobID, "reason", reason)
		if err := s.Store.SetFailure(ctx, jobID, reason); err != nil {
			log.Error("failed to record job failure", "job_id", jobID, "error", err)
		}
		return
	}

	if err := s.Store.SetSuccess(ctx, jobID, results); err != nil {
		log.Error("failed to record job results", "job_id", jobID, "error", err)
		return
	}
	log.Info("batch job succeeded", "job_id", jobID, "risks", len(results))
}

// jobLogger returns the logger for one batch run. When the store can persist
// log records the job gets a handler writing its own log trail; otherwise the
// process logger is used as is.
func (s *Service) jobLogger(jobID uuid.UUID) *slog.Logger {
	if w, ok := s.Store.(JobLogWriter); ok {
		return slog.New(NewJobLogHandler(w, jobID, s.Logger.Handler()))
	}
	return s.Logger
}

// failureReason builds the FAILURE detail naming every risk whose research
// failed and why. Empty when all runs succeeded.
func failureReason(results []batch.RiskResult) string {
	var failed []string
	for _, r := range results {
		if r.Failed() {
			failed = append(failed, fmt.Sprintf("%s: %s", r.RiskName, r.Error))
		}
	}
	if len(failed) == 0 {
		return ""
	}
	return fmt.Sprintf("%d of %d risks failed: %s", len(failed), len(results), strings.Join(failed, "; "))
}

// GetJob returns the job's current status and, when successful, its results.
func (s *Service) GetJob(ctx context.Context, id uuid.UUID) (*batch.Job, error) {
	return s.Store.GetJob(ctx, id)
}
