// Package pipeline accepts session submissions and drives each accepted job through
// archive, transcription, normalization, biometry and analysis in the background.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"lazo-pipeline/internal/app/analysis"
	"lazo-pipeline/internal/app/api/provider"
	"lazo-pipeline/internal/app/biometry"
	apperrors "lazo-pipeline/internal/app/errors"
	"lazo-pipeline/internal/app/model"
	"lazo-pipeline/internal/app/repository"
	"lazo-pipeline/internal/app/transcript"
)

// Transcriber calls the transcription backend routed for a plan and precision
type Transcriber interface {
	Transcribe(ctx context.Context, audio *provider.AudioInput, plan model.Plan, highPrecision bool) (*provider.Result, error)
}

// SessionAnalyzer calls the analysis backend routed for a plan and precision
type SessionAnalyzer interface {
	Analyze(ctx context.Context, plan model.Plan, highPrecision bool, req *analysis.Request) (*model.ClinicalAnalysis, string, error)
}

// Archive keeps a copy of the submitted recording
type Archive interface {
	Archive(ctx context.Context, ownerID, jobID string, audio *provider.AudioInput) (string, error)
}

// Scheduler runs a task in the background. onPanic receives a recovered panic value.
type Scheduler interface {
	Submit(name string, task func(), onPanic func(recovered interface{})) error
}

// SubmitRequest is one session submission
type SubmitRequest struct {
	UserID         string
	Audio          *provider.AudioInput
	OutputLanguage string
	NoteFormat     model.NoteFormat
	Patient        model.PatientContext
	HighPrecision  bool
}

// Dependencies groups the collaborators of an Orchestrator.
// Archive and Engine are optional.
type Dependencies struct {
	Jobs        repository.JobDAO
	Quotas      repository.QuotaDAO
	Transcriber Transcriber
	Analyzer    SessionAnalyzer
	Scheduler   Scheduler
	Archive     Archive
	Engine      *biometry.Engine
	Logger      *zap.Logger
}

// Orchestrator owns the job lifecycle
type Orchestrator struct {
	jobs        repository.JobDAO
	quotas      repository.QuotaDAO
	transcriber Transcriber
	analyzer    SessionAnalyzer
	scheduler   Scheduler
	archive     Archive
	engine      *biometry.Engine
	logger      *zap.Logger

	now   func() time.Time
	newID func() string
}

// NewOrchestrator validates deps and returns a ready orchestrator
func NewOrchestrator(deps Dependencies) (*Orchestrator, error) {
	switch {
	case deps.Jobs == nil:
		return nil, apperrors.RequiredField("job store")
	case deps.Quotas == nil:
		return nil, apperrors.RequiredField("quota store")
	case deps.Transcriber == nil:
		return nil, apperrors.RequiredField("transcriber")
	case deps.Analyzer == nil:
		return nil, apperrors.RequiredField("analyzer")
	case deps.Scheduler == nil:
		return nil, apperrors.RequiredField("scheduler")
	}
	if deps.Engine == nil {
		deps.Engine = biometry.NewEngine()
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &Orchestrator{
		jobs:        deps.Jobs,
		quotas:      deps.Quotas,
		transcriber: deps.Transcriber,
		analyzer:    deps.Analyzer,
		scheduler:   deps.Scheduler,
		archive:     deps.Archive,
		engine:      deps.Engine,
		logger:      deps.Logger,
		now:         time.Now,
		newID:       uuid.NewString,
	}, nil
}

// task is the state threaded through the background stages of one job
type task struct {
	job     model.SessionJob
	plan    model.Plan
	request *SubmitRequest
}

// Submit runs the pre-flight checks, charges one credit, records the job and schedules it.
// It returns as soon as the job exists in processing state.
func (o *Orchestrator) Submit(ctx context.Context, req *SubmitRequest) (*model.SessionJob, error) {
	if req == nil || req.Audio == nil || len(req.Audio.Data) == 0 {
		submissionsRejected.WithLabelValues("missing_audio").Inc()
		return nil, apperrors.ErrMissingAudio
	}
	if req.UserID == "" {
		submissionsRejected.WithLabelValues("missing_user").Inc()
		return nil, apperrors.RequiredField("user id")
	}

	profile, err := o.loadProfile(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	if req.HighPrecision && !profile.Plan.AllowsHighPrecision() {
		submissionsRejected.WithLabelValues("precision_not_allowed").Inc()
		return nil, apperrors.ErrPrecisionNotAllowed
	}

	kind := model.QuotaKindFor(req.HighPrecision)
	if err := o.quotas.ConsumeCredit(ctx, req.UserID, kind); err != nil {
		if errors.Is(err, apperrors.ErrQuotaExhausted) {
			submissionsRejected.WithLabelValues("quota_exhausted").Inc()
		}
		return nil, err
	}

	now := o.now()
	job := model.SessionJob{
		ID:        o.newID(),
		OwnerID:   req.UserID,
		State:     model.JobStateProcessing,
		Mode:      model.ModeFor(req.HighPrecision),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := o.jobs.CreateJob(ctx, &job); err != nil {
		o.refund(req.UserID, kind)
		return nil, fmt.Errorf("create job: %w", err)
	}

	t := &task{job: job, plan: profile.Plan, request: req}
	err = o.scheduler.Submit("session "+job.ID, func() { o.process(t) }, func(recovered interface{}) {
		o.fail(t, fmt.Errorf("panic: %v", recovered))
	})
	if err != nil {
		o.refund(req.UserID, kind)
		o.fail(t, err)
		return nil, fmt.Errorf("schedule job: %w", err)
	}

	jobsSubmitted.WithLabelValues(string(job.Mode)).Inc()
	o.logger.Info("Session job accepted",
		zap.String("job_id", job.ID),
		zap.String("owner_id", job.OwnerID),
		zap.String("plan", string(profile.Plan)),
		zap.String("mode", string(job.Mode)))
	return &job, nil
}

// Get reads a job without side effects
func (o *Orchestrator) Get(ctx context.Context, id string) (*model.SessionJob, error) {
	return o.jobs.GetJob(ctx, id)
}

// Profile returns the entitlement record of userID, provisioning and renewing it like Submit does
func (o *Orchestrator) Profile(ctx context.Context, userID string) (*model.Profile, error) {
	return o.loadProfile(ctx, userID)
}

// loadProfile provisions unknown callers on the free plan and applies a due monthly renewal
func (o *Orchestrator) loadProfile(ctx context.Context, userID string) (*model.Profile, error) {
	now := o.now()
	profile, err := o.quotas.GetProfile(ctx, userID)
	if errors.Is(err, apperrors.ErrProfileNotFound) {
		created, err := o.quotas.InsertProfile(ctx, model.NewProfile(userID, model.PlanFree, now))
		if err != nil {
			return nil, fmt.Errorf("provision profile: %w", err)
		}
		if created {
			o.logger.Info("Provisioned free profile", zap.String("user_id", userID))
		}
		return o.quotas.GetProfile(ctx, userID)
	}
	if err != nil {
		return nil, err
	}

	if profile.RenewalDue(now) {
		renewed, err := o.quotas.RenewCredits(ctx, userID, now)
		if err != nil {
			return nil, fmt.Errorf("renew credits: %w", err)
		}
		if renewed {
			o.logger.Info("Renewed monthly credits",
				zap.String("user_id", userID),
				zap.String("plan", string(profile.Plan)))
			return o.quotas.GetProfile(ctx, userID)
		}
	}
	return profile, nil
}

func (o *Orchestrator) refund(userID string, kind model.QuotaKind) {
	if err := o.quotas.RefundCredit(context.Background(), userID, kind); err != nil {
		o.logger.Error("Failed to refund credit",
			zap.String("user_id", userID),
			zap.String("kind", string(kind)),
			zap.Error(err))
	}
}

// process runs every stage of one job and writes exactly one terminal state
func (o *Orchestrator) process(t *task) {
	jobsInFlight.Inc()
	defer jobsInFlight.Dec()

	ctx := context.Background()
	logger := o.logger.With(zap.String("job_id", t.job.ID), zap.String("mode", string(t.job.Mode)))
	start := time.Now()

	result, err := o.run(ctx, t, logger)
	if err != nil {
		o.fail(t, err)
		return
	}

	if err := o.jobs.CompleteJob(ctx, t.job.ID, result, o.now()); err != nil {
		if errors.Is(err, apperrors.ErrJobNotProcessing) {
			logger.Warn("Job already resolved, result dropped", zap.Error(err))
			return
		}
		o.fail(t, fmt.Errorf("store result: %w", err))
		return
	}
	jobsFinished.WithLabelValues(string(model.JobStateCompleted)).Inc()
	logger.Info("Session job completed",
		zap.String("transcription_backend", result.ProcessingInfo.TranscriptionBackend),
		zap.String("analysis_backend", result.ProcessingInfo.AnalysisBackend),
		zap.Bool("biometry", result.Biometry != nil),
		zap.Duration("elapsed", time.Since(start)))
}

func (o *Orchestrator) run(ctx context.Context, t *task, logger *zap.Logger) (*model.SessionResult, error) {
	req := t.request
	highPrecision := t.job.Mode == model.ModeHighPrecision

	if o.archive != nil {
		stageStart := time.Now()
		key, err := o.archive.Archive(ctx, t.job.OwnerID, t.job.ID, req.Audio)
		stageDuration.WithLabelValues("archive").Observe(time.Since(stageStart).Seconds())
		if err != nil {
			logger.Warn("Failed to archive audio", zap.Error(err))
		} else {
			logger.Debug("Archived audio", zap.String("key", key))
		}
	}

	stageStart := time.Now()
	raw, err := o.transcriber.Transcribe(ctx, req.Audio, t.plan, highPrecision)
	stageDuration.WithLabelValues("transcribe").Observe(time.Since(stageStart).Seconds())
	if err != nil {
		return nil, fmt.Errorf("transcribe: %w", err)
	}

	stageStart = time.Now()
	normalized, err := transcript.Normalize(raw)
	if err != nil {
		return nil, fmt.Errorf("normalize %s result: %w", raw.Backend, err)
	}
	timestamped := o.engine.Timestamped(normalized)
	bio := o.engine.Compute(normalized)
	stageDuration.WithLabelValues("biometry").Observe(time.Since(stageStart).Seconds())

	input := timestamped
	if input == "" {
		input = normalized.PlainText
	}
	noteFormat := req.NoteFormat
	if !noteFormat.Valid() {
		noteFormat = model.NoteFormatSOAP
	}

	stageStart = time.Now()
	clinical, analysisBackend, err := o.analyzer.Analyze(ctx, t.plan, highPrecision, &analysis.Request{
		Transcript:     input,
		NoteFormat:     noteFormat,
		OutputLanguage: req.OutputLanguage,
		Patient:        req.Patient,
	})
	stageDuration.WithLabelValues("analyze").Observe(time.Since(stageStart).Seconds())
	if err != nil {
		return nil, fmt.Errorf("analyze: %w", err)
	}

	return &model.SessionResult{
		Transcript:            normalized.PlainText,
		TimestampedTranscript: timestamped,
		Analysis:              clinical,
		Biometry:              bio,
		NoteFormat:            noteFormat,
		ProcessingInfo: model.ProcessingInfo{
			Mode:                 t.job.Mode,
			TranscriptionBackend: raw.Backend,
			AnalysisBackend:      analysisBackend,
		},
	}, nil
}

// fail logs the raw cause and stores the sanitized message
func (o *Orchestrator) fail(t *task, cause error) {
	message := PublicMessage(cause)
	o.logger.Error("Session job failed",
		zap.String("job_id", t.job.ID),
		zap.String("owner_id", t.job.OwnerID),
		zap.Error(cause))

	if err := o.jobs.FailJob(context.Background(), t.job.ID, message, o.now()); err != nil {
		o.logger.Error("Failed to store job error", zap.String("job_id", t.job.ID), zap.Error(err))
		return
	}
	jobsFinished.WithLabelValues(string(model.JobStateError)).Inc()
}
