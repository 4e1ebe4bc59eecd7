package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	apperrors "lazo-pipeline/internal/app/errors"
	"lazo-pipeline/internal/app/model"
)

const (
	keyPrefix = "lazo:job:"

	// DefaultRetention keeps finished jobs around long enough for clients to poll them
	DefaultRetention = 7 * 24 * time.Hour
)

// terminalWrite swaps in the new record only while the stored one is still processing.
// Returns 1 on success, 0 when the key is missing, -1 when the job is already terminal.
var terminalWrite = redis.NewScript(`
local current = redis.call('GET', KEYS[1])
if not current then
  return 0
end
local job = cjson.decode(current)
if job['state'] ~= 'processing' then
  return -1
end
redis.call('SET', KEYS[1], ARGV[1], 'PX', ARGV[2])
return 1
`)

// JobStore keeps session jobs as JSON values with a retention TTL
type JobStore struct {
	client    redis.UniversalClient
	retention time.Duration
}

// NewJobStore wraps client. A non-positive retention falls back to DefaultRetention.
func NewJobStore(client redis.UniversalClient, retention time.Duration) *JobStore {
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &JobStore{client: client, retention: retention}
}

// NewClient connects to a single redis node
func NewClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

func jobKey(id string) string {
	return keyPrefix + id
}

// CreateJob stores a new job, refusing to overwrite an existing id
func (s *JobStore) CreateJob(ctx context.Context, job *model.SessionJob) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("encode job: %w", err)
	}
	ok, err := s.client.SetNX(ctx, jobKey(job.ID), payload, s.retention).Result()
	if err != nil {
		return fmt.Errorf("insert job failed: %w", err)
	}
	if !ok {
		return fmt.Errorf("job %s already exists", job.ID)
	}
	return nil
}

// GetJob reads a job by id
func (s *JobStore) GetJob(ctx context.Context, id string) (*model.SessionJob, error) {
	payload, err := s.client.Get(ctx, jobKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, apperrors.ErrJobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}

	var job model.SessionJob
	if err := json.Unmarshal(payload, &job); err != nil {
		return nil, fmt.Errorf("decode job %s: %w", id, err)
	}
	return &job, nil
}

// CompleteJob stores the result and moves the job to completed
func (s *JobStore) CompleteJob(ctx context.Context, id string, result *model.SessionResult, now time.Time) error {
	return s.transition(ctx, id, func(job *model.SessionJob) {
		job.State = model.JobStateCompleted
		job.Result = result
		job.UpdatedAt = now.UTC()
	})
}

// FailJob records a message and moves the job to error
func (s *JobStore) FailJob(ctx context.Context, id string, message string, now time.Time) error {
	return s.transition(ctx, id, func(job *model.SessionJob) {
		job.State = model.JobStateError
		job.ErrorMessage = message
		job.UpdatedAt = now.UTC()
	})
}

func (s *JobStore) transition(ctx context.Context, id string, apply func(job *model.SessionJob)) error {
	job, err := s.GetJob(ctx, id)
	if err != nil {
		return err
	}
	if job.State != model.JobStateProcessing {
		return apperrors.ErrJobNotProcessing
	}

	apply(job)
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("encode job: %w", err)
	}

	code, err := terminalWrite.Run(ctx, s.client, []string{jobKey(id)}, payload, s.retention.Milliseconds()).Int()
	if err != nil {
		return fmt.Errorf("update job failed: %w", err)
	}
	switch code {
	case 0:
		return apperrors.ErrJobNotFound
	case -1:
		return apperrors.ErrJobNotProcessing
	}
	return nil
}

// Close releases the client
func (s *JobStore) Close() error {
	return s.client.Close()
}
