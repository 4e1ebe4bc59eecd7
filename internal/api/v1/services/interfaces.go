package services

import (
	"context"

	"lazo-pipeline/internal/api/v1/dto"
	"lazo-pipeline/internal/app/analysis"
	"lazo-pipeline/internal/app/model"
	"lazo-pipeline/internal/app/pipeline"
)

// SessionService defines the interface for session operations.
// Every returned error is an *errors.APIError.
type SessionService interface {
	Submit(ctx context.Context, req *pipeline.SubmitRequest) (*dto.SubmitSessionResponse, error)
	GetSession(ctx context.Context, id string) (*dto.SessionResponse, error)
	GetPlan(ctx context.Context, userID string) (*dto.PlanResponse, error)
	RunAction(ctx context.Context, req *dto.AIActionRequest) (*dto.AIActionResponse, error)
}

// SessionOrchestrator is the part of *pipeline.Orchestrator the API depends on
type SessionOrchestrator interface {
	Submit(ctx context.Context, req *pipeline.SubmitRequest) (*model.SessionJob, error)
	Get(ctx context.Context, id string) (*model.SessionJob, error)
	Profile(ctx context.Context, userID string) (*model.Profile, error)
}

// ActionRunner runs one-off AI actions, *analysis.Router satisfies it
type ActionRunner interface {
	Act(ctx context.Context, plan model.Plan, req *analysis.ActionRequest) (string, error)
}
