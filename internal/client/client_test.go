package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"lazo-pipeline/internal/api/v1/dto"
	"lazo-pipeline/internal/app/model"
)

func writeEnvelope(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(dto.SuccessResponse{Code: status, Data: data})
}

func writeNotFound(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	_, _ = io.WriteString(w, `{"kind":"not_found","message":"Session not found"}`)
}

func fastPoll() PollOptions {
	return PollOptions{Interval: 5 * time.Millisecond, MaxAttempts: 50, NotFoundGrace: time.Second}
}

func TestSubmit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/sessions", r.URL.Path)
		assert.Equal(t, "caller", r.Header.Get("X-User-ID"))

		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "user-1", r.FormValue("userId"))
		assert.Equal(t, "es-US", r.FormValue("inputLanguage"))
		assert.Equal(t, "BIRP", r.FormValue("noteFormat"))
		assert.Equal(t, "41", r.FormValue("patientAge"))
		assert.Equal(t, "true", r.FormValue("highPrecision"))

		file, header, err := r.FormFile("audio")
		require.NoError(t, err)
		defer file.Close()
		data, _ := io.ReadAll(file)
		assert.Equal(t, "session.mp3", header.Filename)
		assert.Equal(t, "audio-bytes", string(data))

		writeEnvelope(w, http.StatusAccepted, dto.SubmitSessionResponse{SessionID: "job-1", State: model.JobStateProcessing})
	}))
	defer server.Close()

	c := New(server.URL, WithUserID("caller"))
	resp, err := c.Submit(context.Background(), SubmitOptions{
		Audio:         strings.NewReader("audio-bytes"),
		FileName:      "session.mp3",
		UserID:        "user-1",
		InputLanguage: "es-US",
		NoteFormat:    model.NoteFormatBIRP,
		Patient:       model.PatientContext{Age: 41},
		HighPrecision: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "job-1", resp.SessionID)
	assert.Equal(t, model.JobStateProcessing, resp.State)
}

func TestSubmitForbidden(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = io.WriteString(w, `{"kind":"forbidden","message":"No credits remaining for this plan","code":"quota_exhausted"}`)
	}))
	defer server.Close()

	_, err := New(server.URL).Submit(context.Background(), SubmitOptions{Audio: strings.NewReader("a")})
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusForbidden, statusErr.StatusCode)
	assert.Equal(t, "quota_exhausted", statusErr.APIError.Code)
}

func TestWait(t *testing.T) {
	tests := []struct {
		name      string
		responses []func(w http.ResponseWriter)
		opts      PollOptions
		wantState model.JobState
		wantErr   error
		notFound  bool
	}{
		{
			name: "404 inside the grace window then completed",
			responses: []func(w http.ResponseWriter){
				writeNotFound,
				func(w http.ResponseWriter) {
					writeEnvelope(w, http.StatusOK, dto.SessionResponse{ID: "job-1", State: model.JobStateProcessing})
				},
				func(w http.ResponseWriter) {
					writeEnvelope(w, http.StatusOK, dto.SessionResponse{
						ID:     "job-1",
						State:  model.JobStateCompleted,
						Result: &model.SessionResult{Transcript: "Hola"},
					})
				},
			},
			opts:      fastPoll(),
			wantState: model.JobStateCompleted,
		},
		{
			name: "error state",
			responses: []func(w http.ResponseWriter){
				func(w http.ResponseWriter) {
					writeEnvelope(w, http.StatusOK, dto.SessionResponse{ID: "job-1", State: model.JobStateError, Error: "The transcription service is busy."})
				},
			},
			opts:      fastPoll(),
			wantState: model.JobStateError,
			wantErr:   ErrSessionFailed,
		},
		{
			name: "poll limit",
			responses: []func(w http.ResponseWriter){
				func(w http.ResponseWriter) {
					writeEnvelope(w, http.StatusOK, dto.SessionResponse{ID: "job-1", State: model.JobStateProcessing})
				},
			},
			opts:    PollOptions{Interval: time.Millisecond, MaxAttempts: 3},
			wantErr: ErrPollTimeout,
		},
		{
			name:      "grace window counts from submission",
			responses: []func(w http.ResponseWriter){writeNotFound},
			opts: PollOptions{
				Interval:      5 * time.Millisecond,
				MaxAttempts:   50,
				NotFoundGrace: time.Second,
				SubmittedAt:   time.Now().Add(-time.Minute),
			},
			notFound: true,
		},
		{
			name:      "404 after the grace window",
			responses: []func(w http.ResponseWriter){writeNotFound},
			opts:      PollOptions{Interval: 5 * time.Millisecond, MaxAttempts: 50, NotFoundGrace: time.Nanosecond},
			notFound:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/api/v1/sessions/job-1", r.URL.Path)
				i := int(atomic.AddInt32(&calls, 1)) - 1
				if i >= len(tt.responses) {
					i = len(tt.responses) - 1
				}
				tt.responses[i](w)
			}))
			defer server.Close()

			session, err := New(server.URL).Wait(context.Background(), "job-1", tt.opts)

			switch {
			case tt.notFound:
				assert.True(t, IsNotFound(err))
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			default:
				require.NoError(t, err)
			}
			if tt.wantState != "" {
				require.NotNil(t, session)
				assert.Equal(t, tt.wantState, session.State)
			}
		})
	}
}

func TestWaitPollLimitCountsAttempts(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		writeEnvelope(w, http.StatusOK, dto.SessionResponse{ID: "job-1", State: model.JobStateProcessing})
	}))
	defer server.Close()

	var observed int
	_, err := New(server.URL).Wait(context.Background(), "job-1", PollOptions{
		Interval:    time.Millisecond,
		MaxAttempts: 4,
		OnPoll:      func(attempt int, _ *dto.SessionResponse) { observed = attempt },
	})
	assert.ErrorIs(t, err, ErrPollTimeout)
	assert.Equal(t, int32(4), atomic.LoadInt32(&calls))
	assert.Equal(t, 4, observed)
}

func TestWaitHonoursContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, dto.SessionResponse{ID: "job-1", State: model.JobStateProcessing})
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	_, err := New(server.URL).Wait(ctx, "job-1", PollOptions{Interval: 5 * time.Millisecond, MaxAttempts: 100000})
	assert.Error(t, err)
}

func TestTrackerDisabledIsNoop(t *testing.T) {
	tracker := NewTracker(ProgressConfig{Enabled: false}, "job-1")
	tracker.Observe(1, &dto.SessionResponse{State: model.JobStateProcessing})
	assert.Equal(t, "processing", tracker.currentState())
	tracker.Finish(true)
}

func TestTrackerRenders(t *testing.T) {
	var out strings.Builder
	tracker := NewTracker(ProgressConfig{Enabled: true, Writer: &syncWriter{w: &out}}, "job-1")
	tracker.Observe(1, &dto.SessionResponse{State: model.JobStateCompleted})
	tracker.Finish(true)
	assert.Equal(t, "completed", tracker.currentState())
}

type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}
