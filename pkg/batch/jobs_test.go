package batch

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	id := uuid.New()

	require.NoError(t, store.CreateJob(ctx, id))
	job, err := store.GetJob(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, job.Status)
	assert.False(t, job.CreatedAt.IsZero())

	require.NoError(t, store.SetStarted(ctx, id))
	job, err = store.GetJob(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, StatusStarted, job.Status)

	results := []RiskResult{{RiskName: "cybersecurity"}}
	require.NoError(t, store.SetSuccess(ctx, id, results))
	job, err = store.GetJob(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, job.Status)
	require.Len(t, job.Results, 1)
	assert.Equal(t, "cybersecurity", job.Results[0].RiskName)
	assert.False(t, job.UpdatedAt.Before(job.CreatedAt))
}

func TestMemoryStoreFailure(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	id := uuid.New()

	require.NoError(t, store.CreateJob(ctx, id))
	require.NoError(t, store.SetFailure(ctx, id, "2 of 5 risks failed"))

	job, err := store.GetJob(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, StatusFailure, job.Status)
	assert.Equal(t, "2 of 5 risks failed", job.Error)
	assert.Empty(t, job.Results)
}

func TestMemoryStoreUnknownJob(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	id := uuid.New()

	_, err := store.GetJob(ctx, id)
	assert.ErrorIs(t, err, ErrJobNotFound)
	assert.ErrorIs(t, store.SetStarted(ctx, id), ErrJobNotFound)
	assert.ErrorIs(t, store.SetSuccess(ctx, id, nil), ErrJobNotFound)
	assert.ErrorIs(t, store.SetFailure(ctx, id, "x"), ErrJobNotFound)
}

func TestMemoryStoreGetJobReturnsCopy(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	id := uuid.New()
	require.NoError(t, store.CreateJob(ctx, id))

	job, err := store.GetJob(ctx, id)
	require.NoError(t, err)
	job.Status = StatusFailure

	again, err := store.GetJob(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, again.Status)
}
