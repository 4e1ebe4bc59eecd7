// Package client talks to the session API: multipart submission and status polling.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	apierrors "lazo-pipeline/internal/api/errors"
	"lazo-pipeline/internal/api/v1/dto"
	"lazo-pipeline/internal/app/model"
)

const (
	DefaultPollInterval  = 2 * time.Second
	DefaultNotFoundGrace = 10 * time.Second
	DefaultMaxAttempts   = 900
)

var (
	// ErrPollTimeout is returned by Wait when MaxAttempts polls saw no terminal state
	ErrPollTimeout = errors.New("session did not finish before the poll limit")
	// ErrSessionFailed is returned by Wait when the job ended in the error state
	ErrSessionFailed = errors.New("session processing failed")
)

// StatusError is a non-2xx API answer
type StatusError struct {
	StatusCode int
	APIError   apierrors.APIError
}

func (e *StatusError) Error() string {
	if e.APIError.Message != "" {
		return fmt.Sprintf("api returned %d: %s", e.StatusCode, e.APIError.Message)
	}
	return fmt.Sprintf("api returned %d", e.StatusCode)
}

// IsNotFound reports whether err is a 404 from the API
func IsNotFound(err error) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound
}

// Client is a session API client
type Client struct {
	baseURL    string
	httpClient *http.Client
	userID     string
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the default http.Client
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) { c.httpClient = httpClient }
}

// WithUserID sends X-User-ID on every request
func WithUserID(userID string) Option {
	return func(c *Client) { c.userID = userID }
}

// New creates a client for baseURL, e.g. http://localhost:8081
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 5 * time.Minute},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SubmitOptions describes one session upload
type SubmitOptions struct {
	Audio          io.Reader
	FileName       string
	UserID         string
	InputLanguage  string
	OutputLanguage string
	NoteFormat     model.NoteFormat
	Patient        model.PatientContext
	HighPrecision  bool
}

// Submit uploads a recording and returns the accepted session id
func (c *Client) Submit(ctx context.Context, opts SubmitOptions) (*dto.SubmitSessionResponse, error) {
	if opts.Audio == nil {
		return nil, errors.New("audio is required")
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	fileName := opts.FileName
	if fileName == "" {
		fileName = "audio"
	}
	part, err := writer.CreateFormFile("audio", fileName)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, opts.Audio); err != nil {
		return nil, fmt.Errorf("failed to copy audio: %w", err)
	}

	fields := map[string]string{
		"userId":         opts.UserID,
		"inputLanguage":  opts.InputLanguage,
		"outputLanguage": opts.OutputLanguage,
		"noteFormat":     string(opts.NoteFormat),
		"patientName":    opts.Patient.Name,
		"patientGender":  opts.Patient.Gender,
	}
	if opts.Patient.Age > 0 {
		fields["patientAge"] = strconv.Itoa(opts.Patient.Age)
	}
	if opts.HighPrecision {
		fields["highPrecision"] = "true"
	}
	for key, value := range fields {
		if value == "" {
			continue
		}
		if err := writer.WriteField(key, value); err != nil {
			return nil, fmt.Errorf("failed to write field %s: %w", key, err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart writer: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/api/v1/sessions", body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	var resp dto.SubmitSessionResponse
	if err := c.do(req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Get reads the current state of a session
func (c *Client) Get(ctx context.Context, id string) (*dto.SessionResponse, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/v1/sessions/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}
	var resp dto.SessionResponse
	if err := c.do(req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// PollOptions controls Wait. Zero values take the package defaults.
type PollOptions struct {
	Interval      time.Duration
	MaxAttempts   int
	NotFoundGrace time.Duration
	// SubmittedAt opens the grace window; zero means the time Wait is called
	SubmittedAt time.Time
	// OnPoll observes every successful read
	OnPoll func(attempt int, session *dto.SessionResponse)
}

func (o PollOptions) withDefaults() PollOptions {
	if o.Interval <= 0 {
		o.Interval = DefaultPollInterval
	}
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = DefaultMaxAttempts
	}
	if o.NotFoundGrace <= 0 {
		o.NotFoundGrace = DefaultNotFoundGrace
	}
	return o
}

// Wait polls until the session is terminal. A 404 is retried only while the
// grace window that opened at submission is still running.
func (c *Client) Wait(ctx context.Context, id string, opts PollOptions) (*dto.SessionResponse, error) {
	opts = opts.withDefaults()
	submittedAt := opts.SubmittedAt
	if submittedAt.IsZero() {
		submittedAt = time.Now()
	}
	graceEnds := submittedAt.Add(opts.NotFoundGrace)

	timer := time.NewTimer(0)
	defer timer.Stop()

	for attempt := 1; attempt <= opts.MaxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}

		session, err := c.Get(ctx, id)
		switch {
		case IsNotFound(err) && time.Now().Before(graceEnds):
		case err != nil:
			return nil, err
		default:
			if opts.OnPoll != nil {
				opts.OnPoll(attempt, session)
			}
			switch session.State {
			case model.JobStateCompleted:
				return session, nil
			case model.JobStateError:
				return session, fmt.Errorf("%w: %s", ErrSessionFailed, session.Error)
			}
		}

		timer.Reset(opts.Interval)
	}

	return nil, fmt.Errorf("%w after %d attempts", ErrPollTimeout, opts.MaxAttempts)
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userID != "" {
		req.Header.Set("X-User-ID", c.userID)
	}
	return req, nil
}

// do sends req and unwraps the success envelope into out
func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		statusErr := &StatusError{StatusCode: resp.StatusCode}
		_ = json.Unmarshal(body, &statusErr.APIError)
		return statusErr
	}

	envelope := dto.SuccessResponse{Data: out}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
