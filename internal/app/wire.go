//go:build wireinject
// +build wireinject

package app

import (
	"github.com/google/wire"
	"lazo-pipeline/internal/api/server"
	"lazo-pipeline/internal/app/pipeline"
	"lazo-pipeline/internal/config"
)

// InitializeServer wires the HTTP server, the pipeline and its stores from cfg
func InitializeServer(cfg *config.Config) (*server.Server, func(), error) {
	wire.Build(ServerSet)
	return &server.Server{}, nil, nil
}

// InitializeOrchestrator wires the pipeline without the HTTP layer
func InitializeOrchestrator(cfg *config.Config) (*pipeline.Orchestrator, func(), error) {
	wire.Build(PipelineSet)
	return &pipeline.Orchestrator{}, nil, nil
}
