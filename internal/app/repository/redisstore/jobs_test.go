package redisstore

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apperrors "lazo-pipeline/internal/app/errors"
	"lazo-pipeline/internal/app/model"
	"lazo-pipeline/internal/app/repository"
)

func TestJobStore_Interface(t *testing.T) {
	var _ repository.JobDAO = (*JobStore)(nil)
}

func TestNewJobStoreRetention(t *testing.T) {
	client := NewClient("localhost:0", "", 0)
	defer client.Close()

	assert.Equal(t, DefaultRetention, NewJobStore(client, 0).retention)
	assert.Equal(t, time.Hour, NewJobStore(client, time.Hour).retention)
	assert.Equal(t, "lazo:job:abc", jobKey("abc"))
}

// Requires a running redis, e.g. LAZO_TEST_REDIS_ADDR=localhost:6379
func TestJobStore_Integration(t *testing.T) {
	addr := os.Getenv("LAZO_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("LAZO_TEST_REDIS_ADDR not set")
	}

	ctx := context.Background()
	client := NewClient(addr, os.Getenv("LAZO_TEST_REDIS_PASSWORD"), 0)
	require.NoError(t, client.Ping(ctx).Err())
	store := NewJobStore(client, time.Minute)
	defer store.Close()

	now := time.Now().UTC().Truncate(time.Second)
	id := uuid.NewString()
	defer client.Del(ctx, jobKey(id))

	require.NoError(t, store.CreateJob(ctx, &model.SessionJob{
		ID: id, OwnerID: "user-1", State: model.JobStateProcessing, Mode: model.ModeStandard,
		CreatedAt: now, UpdatedAt: now,
	}))
	assert.Error(t, store.CreateJob(ctx, &model.SessionJob{ID: id}), "duplicate id")

	job, err := store.GetJob(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.JobStateProcessing, job.State)

	require.NoError(t, store.CompleteJob(ctx, id, &model.SessionResult{Transcript: "hola"}, now))
	err = store.FailJob(ctx, id, "late", now)
	assert.True(t, errors.Is(err, apperrors.ErrJobNotProcessing))

	job, err = store.GetJob(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.JobStateCompleted, job.State)
	require.NotNil(t, job.Result)
	assert.Equal(t, "hola", job.Result.Transcript)
	assert.Empty(t, job.ErrorMessage)

	ttl, err := client.PTTL(ctx, jobKey(id)).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	_, err = store.GetJob(ctx, "missing-"+id)
	assert.True(t, errors.Is(err, apperrors.ErrJobNotFound))
}
