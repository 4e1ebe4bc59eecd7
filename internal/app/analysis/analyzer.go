// Package analysis turns a session transcript into a structured clinical analysis through one
// language-model backend chosen by plan and precision.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"lazo-pipeline/internal/app/model"
)

// Error codes carried by *Error
const (
	CodeBackend = "backend_error"
	CodeParse   = "parse_error"
)

// Error reports a failed analysis; Err keeps the raw cause for logs only
type Error struct {
	Code    string
	Backend string
	Err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("analysis %s on %s: %v", e.Code, e.Backend, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsParseError reports whether err is an unparseable model response
func IsParseError(err error) bool {
	var aErr *Error
	return errors.As(err, &aErr) && aErr.Code == CodeParse
}

// Request is the input contract of one analysis call
type Request struct {
	// Transcript is the text sent to the model, the timestamped rendering when one exists
	Transcript     string
	NoteFormat     model.NoteFormat
	OutputLanguage string
	Patient        model.PatientContext
}

// Completer is a single-turn language-model client
type Completer interface {
	CompleteJSON(ctx context.Context, system, user string) (string, error)
	Complete(ctx context.Context, system, user string) (string, error)
}

// Analyzer is one named analysis backend
type Analyzer interface {
	Name() string
	Analyze(ctx context.Context, req *Request) (*model.ClinicalAnalysis, error)
	Act(ctx context.Context, req *ActionRequest) (string, error)
}

// LLMAnalyzer builds prompts, calls its Completer once and parses the reply
type LLMAnalyzer struct {
	name      string
	completer Completer
	timeout   time.Duration
}

// NewLLMAnalyzer wraps completer under name; a zero timeout means none
func NewLLMAnalyzer(name string, completer Completer, timeout time.Duration) *LLMAnalyzer {
	return &LLMAnalyzer{name: name, completer: completer, timeout: timeout}
}

func (a *LLMAnalyzer) Name() string {
	return a.name
}

func (a *LLMAnalyzer) Analyze(ctx context.Context, req *Request) (*model.ClinicalAnalysis, error) {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	system, user := BuildAnalysisPrompt(req)
	text, err := a.completer.CompleteJSON(ctx, system, user)
	if err != nil {
		return nil, &Error{Code: CodeBackend, Backend: a.name, Err: err}
	}

	result, err := ParseAnalysis(text)
	if err != nil {
		return nil, &Error{Code: CodeParse, Backend: a.name, Err: err}
	}
	return result, nil
}

func (a *LLMAnalyzer) Act(ctx context.Context, req *ActionRequest) (string, error) {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	system, user, err := BuildActionPrompt(req)
	if err != nil {
		return "", err
	}
	text, err := a.completer.Complete(ctx, system, user)
	if err != nil {
		return "", &Error{Code: CodeBackend, Backend: a.name, Err: err}
	}
	return text, nil
}

func (a *LLMAnalyzer) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.timeout > 0 {
		return context.WithTimeout(ctx, a.timeout)
	}
	return context.WithCancel(ctx)
}
