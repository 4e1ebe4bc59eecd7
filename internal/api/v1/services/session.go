package services

import (
	"context"
	stderrors "errors"
	"log/slog"

	"lazo-pipeline/internal/api/errors"
	"lazo-pipeline/internal/api/v1/dto"
	"lazo-pipeline/internal/app/analysis"
	"lazo-pipeline/internal/app/model"
	"lazo-pipeline/internal/app/pipeline"
)

// SessionServiceImpl implements SessionService on top of the pipeline orchestrator
type SessionServiceImpl struct {
	orchestrator SessionOrchestrator
	actions      ActionRunner
	logger       *slog.Logger
}

// NewSessionService creates a new session service
func NewSessionService(orchestrator SessionOrchestrator, actions ActionRunner, logger *slog.Logger) *SessionServiceImpl {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionServiceImpl{
		orchestrator: orchestrator,
		actions:      actions,
		logger:       logger,
	}
}

// Submit accepts a session and returns as soon as the job exists
func (s *SessionServiceImpl) Submit(ctx context.Context, req *pipeline.SubmitRequest) (*dto.SubmitSessionResponse, error) {
	job, err := s.orchestrator.Submit(ctx, req)
	if err != nil {
		return nil, s.apiError("Session submission failed", err)
	}
	return &dto.SubmitSessionResponse{SessionID: job.ID, State: job.State}, nil
}

// GetSession returns the polling view of a job
func (s *SessionServiceImpl) GetSession(ctx context.Context, id string) (*dto.SessionResponse, error) {
	job, err := s.orchestrator.Get(ctx, id)
	if err != nil {
		return nil, s.apiError("Session lookup failed", err)
	}
	return dto.NewSessionResponse(job), nil
}

// GetPlan returns the entitlement view of a caller
func (s *SessionServiceImpl) GetPlan(ctx context.Context, userID string) (*dto.PlanResponse, error) {
	profile, err := s.orchestrator.Profile(ctx, userID)
	if err != nil {
		return nil, s.apiError("Plan lookup failed", err)
	}
	return dto.NewPlanResponse(profile), nil
}

// RunAction runs an AI action on the standard route of the caller's plan. No credit is charged.
func (s *SessionServiceImpl) RunAction(ctx context.Context, req *dto.AIActionRequest) (*dto.AIActionResponse, error) {
	action, err := analysis.ParseAction(req.Action)
	if err != nil {
		return nil, errors.FromDomain(err)
	}

	plan := model.PlanFree
	if req.UserID != "" {
		profile, err := s.orchestrator.Profile(ctx, req.UserID)
		if err != nil {
			return nil, s.apiError("Plan lookup failed", err)
		}
		plan = profile.Plan
	}

	text, err := s.actions.Act(ctx, plan, &analysis.ActionRequest{
		Transcript:     req.Transcript,
		Action:         action,
		OutputLanguage: req.OutputLanguage,
		Patient: model.PatientContext{
			Name:   req.PatientName,
			Age:    req.PatientAge,
			Gender: req.PatientGender,
		},
	})
	if err != nil {
		var aErr *analysis.Error
		if stderrors.As(err, &aErr) {
			s.logger.Error("AI action failed", "action", string(action), "backend", aErr.Backend, "error", err.Error())
			return nil, errors.NewServiceUnavailableError("The AI service is temporarily unavailable. Please try again later.")
		}
		return nil, s.apiError("AI action failed", err)
	}

	return &dto.AIActionResponse{Action: string(action), Result: text}, nil
}

// apiError maps err and logs the ones that surface as internal errors
func (s *SessionServiceImpl) apiError(operation string, err error) *errors.APIError {
	apiErr := errors.FromDomain(err)
	if apiErr.Kind == errors.KindInternal {
		s.logger.Error(operation, "error", err.Error())
	}
	return apiErr
}
