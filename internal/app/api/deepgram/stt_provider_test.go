package deepgram

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lazo-pipeline/internal/app/api/provider"
)

const listenFixture = `{
  "results": {
    "channels": [{
      "alternatives": [{
        "transcript": "hola cómo estás bien gracias",
        "words": [
          {"word": "hola", "punctuated_word": "Hola,", "start": 0.1, "end": 0.4, "speaker": 0},
          {"word": "cómo", "punctuated_word": "cómo", "start": 0.5, "end": 0.7, "speaker": 0},
          {"word": "estás", "punctuated_word": "estás?", "start": 0.7, "end": 1.0, "speaker": 0},
          {"word": "bien", "start": 1.6, "end": 1.8, "speaker": 1},
          {"word": "gracias", "start": 1.8, "end": 2.2}
        ]
      }]
    }]
  }
}`

func TestDeepgramSTTProvider_Transcribe(t *testing.T) {
	var gotQuery map[string][]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/listen", r.URL.Path)
		assert.Equal(t, "Token test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "audio/wav", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, []byte("RIFF"), body)
		gotQuery = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(listenFixture))
	}))
	defer server.Close()

	p := NewDeepgramSTTProvider(DeepgramConfig{APIKey: "test-key", BaseURL: server.URL + "/v1"})
	result, err := p.Transcribe(context.Background(), &provider.AudioInput{
		Data:     []byte("RIFF"),
		FileName: "session.wav",
		Language: "es",
	})
	require.NoError(t, err)
	require.NoError(t, result.Validate())

	assert.Equal(t, []string{"true"}, gotQuery["diarize"])
	assert.Equal(t, []string{"true"}, gotQuery["mip_opt_out"])
	assert.Equal(t, []string{"es"}, gotQuery["language"])
	assert.Equal(t, []string{"nova-2"}, gotQuery["model"])

	assert.Equal(t, provider.KindDiarizedWords, result.Kind)
	assert.Equal(t, "hola cómo estás bien gracias", result.Diarized.Transcript)
	require.Len(t, result.Diarized.Words, 5)
	assert.Equal(t, "Hola,", result.Diarized.Words[0].Text)
	assert.Equal(t, "bien", result.Diarized.Words[3].Text)
	require.NotNil(t, result.Diarized.Words[3].Speaker)
	assert.Equal(t, 1, *result.Diarized.Words[3].Speaker)
	assert.Nil(t, result.Diarized.Words[4].Speaker)
	assert.JSONEq(t, listenFixture, string(result.Raw))
}

func TestDeepgramSTTProvider_Errors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantCode string
	}{
		{name: "unauthorized", status: http.StatusUnauthorized, body: `{"err_code":"INVALID_AUTH"}`, wantCode: provider.CodeAuthFailed},
		{name: "rate limited", status: http.StatusTooManyRequests, body: `{}`, wantCode: provider.CodeRateLimited},
		{name: "server error", status: http.StatusBadGateway, body: `oops`, wantCode: provider.CodeServerError},
		{name: "malformed body", status: http.StatusOK, body: `{"results":`, wantCode: provider.CodeResponseParse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			p := NewDeepgramSTTProvider(DeepgramConfig{APIKey: "k", BaseURL: server.URL})
			_, err := p.Transcribe(context.Background(), &provider.AudioInput{Data: []byte("x"), FileName: "a.mp3"})
			require.Error(t, err)

			var tErr *provider.TranscriptionError
			require.ErrorAs(t, err, &tErr)
			assert.Equal(t, tt.wantCode, tErr.Code)
			assert.Equal(t, "deepgram", tErr.Provider)
		})
	}
}

func TestDeepgramSTTProvider_EmptyAudio(t *testing.T) {
	p := NewDeepgramSTTProvider(DeepgramConfig{APIKey: "k"})
	_, err := p.Transcribe(context.Background(), &provider.AudioInput{})

	var tErr *provider.TranscriptionError
	require.ErrorAs(t, err, &tErr)
	assert.Equal(t, provider.CodeInvalidInput, tErr.Code)
}

func TestDeepgramSTTProvider_ValidateConfiguration(t *testing.T) {
	assert.Error(t, NewDeepgramSTTProvider(DeepgramConfig{}).ValidateConfiguration())
	assert.NoError(t, NewDeepgramSTTProvider(DeepgramConfig{APIKey: "k"}).ValidateConfiguration())

	info := NewDeepgramSTTProvider(DeepgramConfig{APIKey: "k"}).GetProviderInfo()
	assert.Equal(t, provider.KindDiarizedWords, info.Shape)
	assert.True(t, info.SupportsDiarize)
}
