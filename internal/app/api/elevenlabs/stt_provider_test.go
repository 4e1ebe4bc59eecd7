package elevenlabs

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

func TestElevenLabsSTTProvider_Transcribe(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/speech-to-text", r.URL.Path)
		assert.Equal(t, "el-key", r.Header.Get("xi-api-key"))
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "scribe_v1", r.FormValue("model_id"))
		assert.Equal(t, "true", r.FormValue("diarize"))
		assert.Equal(t, "es", r.FormValue("language_code"))

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		data, _ := io.ReadAll(file)
		assert.Equal(t, "session.m4a", header.Filename)
		assert.Equal(t, []byte("audio"), data)

		_, _ = w.Write([]byte(`{
		  "text": "Hola. Bien.",
		  "language_code": "spa",
		  "words": [
		    {"text": "Hola.", "start": 0.0, "end": 0.4, "type": "word", "speaker_id": "speaker_0"},
		    {"text": " ", "start": 0.4, "end": 0.5, "type": "spacing", "speaker_id": "speaker_0"},
		    {"text": "Bien.", "start": 3.1, "end": 3.5, "type": "word", "speaker_id": "speaker_1"}
		  ]
		}`))
	}))
	defer server.Close()

	p := NewElevenLabsSTTProvider(ElevenLabsConfig{APIKey: "el-key", BaseURL: server.URL + "/v1"})
	result, err := p.Transcribe(context.Background(), &provider.AudioInput{
		Data:     []byte("audio"),
		FileName: "session.m4a",
		Language: "es",
	})
	require.NoError(t, err)
	require.NoError(t, result.Validate())

	assert.Equal(t, "Hola. Bien.", result.Diarized.Transcript)
	require.Len(t, result.Diarized.Words, 2)
	assert.Equal(t, 0, *result.Diarized.Words[0].Speaker)
	assert.Equal(t, 1, *result.Diarized.Words[1].Speaker)
	assert.Equal(t, 3.1, result.Diarized.Words[1].Start)
}

func TestConvertWords(t *testing.T) {
	tests := []struct {
		name     string
		words    []Word
		speakers []*int
	}{
		{
			name:     "missing speaker stays unattributed",
			words:    []Word{{Text: "a", Type: "word"}},
			speakers: []*int{nil},
		},
		{
			name: "non numeric ids get stable indexes",
			words: []Word{
				{Text: "a", Type: "word", SpeakerID: "alice"},
				{Text: "b", Type: "word", SpeakerID: "bob"},
				{Text: "c", Type: "word", SpeakerID: "alice"},
			},
			speakers: []*int{intPtr(1000), intPtr(1001), intPtr(1000)},
		},
		{
			name: "audio events are dropped",
			words: []Word{
				{Text: "(laughs)", Type: "audio_event", SpeakerID: "speaker_0"},
				{Text: "ok", Type: "word", SpeakerID: "speaker_2"},
			},
			speakers: []*int{intPtr(2)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := convertWords(tt.words)
			require.Len(t, got, len(tt.speakers))
			for i, want := range tt.speakers {
				assert.Equal(t, want, got[i].Speaker)
			}
		})
	}
}

func TestElevenLabsSTTProvider_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"detail":"bad file"}`))
	}))
	defer server.Close()

	p := NewElevenLabsSTTProvider(ElevenLabsConfig{APIKey: "k", BaseURL: server.URL})
	_, err := p.Transcribe(context.Background(), &provider.AudioInput{Data: []byte("x")})

	var tErr *provider.TranscriptionError
	require.ErrorAs(t, err, &tErr)
	assert.Equal(t, provider.CodeInvalidRequest, tErr.Code)
	assert.Contains(t, tErr.Message, "bad file")
}

func intPtr(v int) *int { return &v }
