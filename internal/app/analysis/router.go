package analysis

import (
	"context"
	"fmt"
	"sort"
	"time"

	"lazo-pipeline/internal/app/api/gemini"
	"lazo-pipeline/internal/app/api/openai/chat"
	"lazo-pipeline/internal/app/api/provider"
	"lazo-pipeline/internal/app/model"
	"lazo-pipeline/internal/app/routing"
)

// Router picks exactly one analyzer per (plan, precision) pair and never falls back
type Router struct {
	routes    routing.Table
	analyzers map[string]Analyzer
}

// NewRouter fails when the table references an analyzer that was not supplied
func NewRouter(routes routing.Table, analyzers ...Analyzer) (*Router, error) {
	byName := make(map[string]Analyzer, len(analyzers))
	for _, a := range analyzers {
		byName[a.Name()] = a
	}
	for _, name := range routes.Backends() {
		if _, ok := byName[name]; !ok {
			return nil, fmt.Errorf("routed analysis backend %q is not configured", name)
		}
	}
	return &Router{routes: routes, analyzers: byName}, nil
}

// BackendFor returns the analyzer name the router would call
func (r *Router) BackendFor(plan model.Plan, highPrecision bool) (string, error) {
	return r.routes.Backend(plan, highPrecision)
}

// Analyze runs the routed analyzer once and returns its result with the backend name
func (r *Router) Analyze(ctx context.Context, plan model.Plan, highPrecision bool, req *Request) (*model.ClinicalAnalysis, string, error) {
	name, err := r.routes.Backend(plan, highPrecision)
	if err != nil {
		return nil, "", &Error{Code: CodeBackend, Backend: "router", Err: err}
	}
	result, err := r.analyzers[name].Analyze(ctx, req)
	if err != nil {
		return nil, name, err
	}
	return result, name, nil
}

// Act runs an AI action on the standard route of plan
func (r *Router) Act(ctx context.Context, plan model.Plan, req *ActionRequest) (string, error) {
	name, err := r.routes.Backend(plan, false)
	if err != nil {
		return "", &Error{Code: CodeBackend, Backend: "router", Err: err}
	}
	return r.analyzers[name].Act(ctx, req)
}

// BuildAnalyzers instantiates every enabled analyzer of the provider configuration
func BuildAnalyzers(ctx context.Context, config *provider.ProviderConfiguration) ([]Analyzer, error) {
	names := make([]string, 0, len(config.Analyzers))
	for name := range config.Analyzers {
		names = append(names, name)
	}
	sort.Strings(names)

	analyzers := make([]Analyzer, 0, len(names))
	for _, name := range names {
		pc := config.Analyzers[name]
		if !pc.Enabled {
			continue
		}
		if pc.Auth.APIKey == "" {
			return nil, fmt.Errorf("analyzer '%s' requires 'api_key' in auth configuration", name)
		}

		var completer Completer
		switch pc.Type {
		case "openai-chat":
			completer = chat.NewCompleter(pc.Auth.APIKey, pc.Auth.BaseURL, pc.SettingString("model", "llama-3.3-70b-versatile"))
		case "gemini":
			c, err := gemini.NewCompleter(ctx, pc.Auth.APIKey, pc.SettingString("model", gemini.DefaultModel))
			if err != nil {
				return nil, fmt.Errorf("analyzer '%s': %w", name, err)
			}
			completer = c
		default:
			return nil, fmt.Errorf("analyzer '%s' has unsupported type %s", name, pc.Type)
		}
		analyzers = append(analyzers, NewLLMAnalyzer(name, completer, pc.Timeout(3*time.Minute)))
	}
	return analyzers, nil
}
