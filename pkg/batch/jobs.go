package batch

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrJobNotFound is returned when a job identifier is unknown to the store.
var ErrJobNotFound = errors.New("job not found")

// Status is the lifecycle state of a batch job.
type Status string

const (
	StatusPending Status = "PENDING"
	StatusStarted Status = "STARTED"
	StatusSuccess Status = "SUCCESS"
	StatusFailure Status = "FAILURE"
)

// Job is one submitted batch: its identifier, lifecycle status, and — once
// the chord barrier has fired — the ordered aggregate of per-risk results.
type Job struct {
	ID        uuid.UUID    `json:"id"`
	Status    Status       `json:"status"`
	Results   []RiskResult `json:"results,omitempty"`
	Error     string       `json:"error,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// Store persists batch job lifecycle and results.
type Store interface {
	CreateJob(ctx context.Context, id uuid.UUID) error
	SetStarted(ctx context.Context, id uuid.UUID) error
	SetSuccess(ctx context.Context, id uuid.UUID, results []RiskResult) error
	SetFailure(ctx context.Context, id uuid.UUID, reason string) error
	GetJob(ctx context.Context, id uuid.UUID) (*Job, error)
}

// MemoryStore is an in-process Store. It is the default when no database is
// configured and the fixture store in tests.
type MemoryStore struct {
	mu   sync.RWMutex
	jobs map[uuid.UUID]*Job
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{jobs: make(map[uuid.UUID]*Job)}
}

func (s *MemoryStore) CreateJob(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	s.jobs[id] = &Job{ID: id, Status: StatusPending, CreatedAt: now, UpdatedAt: now}
	return nil
}

func (s *MemoryStore) SetStarted(ctx context.Context, id uuid.UUID) error {
	return s.update(id, func(j *Job) {
		j.Status = StatusStarted
	})
}

func (s *MemoryStore) SetSuccess(ctx context.Context, id uuid.UUID, results []RiskResult) error {
	return s.update(id, func(j *Job) {
		j.Status = StatusSuccess
		j.Results = results
	})
}

func (s *MemoryStore) SetFailure(ctx context.Context, id uuid.UUID, reason string) error {
	return s.update(id, func(j *Job) {
		j.Status = StatusFailure
		j.Error = reason
	})
}

func (s *MemoryStore) GetJob(ctx context.Context, id uuid.UUID) (*Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[id]
	if !ok {
		return nil, ErrJobNotFound
	}
	// Copy so callers never alias the stored value.
	out := *job
	return &out, nil
}

func (s *MemoryStore) update(id uuid.UUID, fn func(*Job)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return ErrJobNotFound
	}
	fn(job)
	job.UpdatedAt = time.Now()
	return nil
}
