package transcript

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lazo-pipeline/internal/app/api/provider"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantKind provider.ResultKind
		check    func(t *testing.T, r *provider.Result)
	}{
		{
			name: "deepgram native",
			raw: `{"results":{"channels":[{"alternatives":[{"transcript":"hola bien","words":[
				{"word":"hola","punctuated_word":"Hola","start":0,"end":1,"speaker":0},
				{"word":"bien","start":1,"end":2,"speaker":1}]}]}]}}`,
			wantKind: provider.KindDiarizedWords,
			check: func(t *testing.T, r *provider.Result) {
				assert.Equal(t, "hola bien", r.Diarized.Transcript)
				assert.Equal(t, "Hola", r.Diarized.Words[0].Text)
				assert.Equal(t, 1, *r.Diarized.Words[1].Speaker)
			},
		},
		{
			name: "elevenlabs native",
			raw: `{"text":"Hola.","words":[
				{"text":"Hola.","start":0,"end":0.5,"type":"word","speaker_id":"speaker_2"},
				{"text":" ","start":0.5,"end":0.6,"type":"spacing","speaker_id":"speaker_2"}]}`,
			wantKind: provider.KindDiarizedWords,
			check: func(t *testing.T, r *provider.Result) {
				require.Len(t, r.Diarized.Words, 1)
				assert.Equal(t, 2, *r.Diarized.Words[0].Speaker)
				assert.Equal(t, "Hola.", r.Diarized.Transcript)
			},
		},
		{
			name: "named speakers get stable indexes",
			raw: `{"words":[
				{"text":"a","start":0,"end":1,"speaker":"therapist"},
				{"text":"b","start":1,"end":2,"speaker":"client"},
				{"text":"c","start":2,"end":3,"speaker":"therapist"}]}`,
			wantKind: provider.KindDiarizedWords,
			check: func(t *testing.T, r *provider.Result) {
				assert.Equal(t, *r.Diarized.Words[0].Speaker, *r.Diarized.Words[2].Speaker)
				assert.NotEqual(t, *r.Diarized.Words[0].Speaker, *r.Diarized.Words[1].Speaker)
			},
		},
		{
			name: "aws transcribe items with speaker segments",
			raw: `{"results":{
				"transcripts":[{"transcript":"Hola. ¿Qué tal?"}],
				"speaker_labels":{"speakers":2,"segments":[
					{"start_time":"0.0","end_time":"1.0","speaker_label":"spk_0"},
					{"start_time":"1.5","end_time":"3.0","speaker_label":"spk_1"}]},
				"items":[
					{"start_time":"0.1","end_time":"0.6","type":"pronunciation","alternatives":[{"confidence":"0.99","content":"Hola"}]},
					{"type":"punctuation","alternatives":[{"confidence":"0.0","content":"."}]},
					{"start_time":"1.6","end_time":"1.9","type":"pronunciation","alternatives":[{"confidence":"0.98","content":"Qué"}]},
					{"start_time":"1.9","end_time":"2.2","type":"pronunciation","alternatives":[{"confidence":"0.97","content":"tal"}]},
					{"start_time":"3.4","end_time":"3.6","type":"pronunciation","alternatives":[{"confidence":"0.90","content":"eh"}]}]}}`,
			wantKind: provider.KindDiarizedWords,
			check: func(t *testing.T, r *provider.Result) {
				assert.Equal(t, "Hola. ¿Qué tal?", r.Diarized.Transcript)
				require.Len(t, r.Diarized.Words, 4)
				assert.Equal(t, "Hola", r.Diarized.Words[0].Text)
				assert.InDelta(t, 0.1, r.Diarized.Words[0].Start, 1e-9)
				assert.InDelta(t, 0.6, r.Diarized.Words[0].End, 1e-9)
				assert.Equal(t, 0, *r.Diarized.Words[0].Speaker)
				assert.Equal(t, 1, *r.Diarized.Words[1].Speaker)
				assert.Equal(t, 1, *r.Diarized.Words[2].Speaker)
				assert.Nil(t, r.Diarized.Words[3].Speaker, "outside every speaker segment")
			},
		},
		{
			name: "aws transcribe item level speaker label",
			raw: `{"results":{"transcripts":[{"transcript":"sí"}],"items":[
				{"start_time":"0.0","end_time":"0.3","type":"pronunciation","speaker_label":"spk_3","alternatives":[{"content":"sí"}]}]}}`,
			wantKind: provider.KindDiarizedWords,
			check: func(t *testing.T, r *provider.Result) {
				require.Len(t, r.Diarized.Words, 1)
				assert.Equal(t, 3, *r.Diarized.Words[0].Speaker)
			},
		},
		{
			name: "whisper verbose json",
			raw: `{"text":"Hola. Bien.","words":[{"word":"Hola","start":0,"end":1}],
				"segments":[{"id":0,"start":0,"end":1,"text":" Hola."},{"id":1,"start":1,"end":2,"text":" Bien."}]}`,
			wantKind: provider.KindSegments,
			check: func(t *testing.T, r *provider.Result) {
				assert.Len(t, r.Segmented.Segments, 2)
				assert.Equal(t, "Hola. Bien.", r.Segmented.Text)
			},
		},
		{
			name:     "segments with numeric speaker",
			raw:      `{"segments":[{"start":0,"end":1,"text":"x","speaker":3}]}`,
			wantKind: provider.KindSegments,
			check: func(t *testing.T, r *provider.Result) {
				assert.Equal(t, "spk_3", r.Segmented.Segments[0].Speaker)
			},
		},
		{
			name:     "flat text",
			raw:      `{"text":"solo texto"}`,
			wantKind: provider.KindFlatText,
			check: func(t *testing.T, r *provider.Result) {
				assert.Equal(t, "solo texto", r.Flat.Text)
			},
		},
		{
			name:     "transcript key",
			raw:      `{"transcript":"otro texto"}`,
			wantKind: provider.KindFlatText,
		},
		{
			name:     "deepgram without diarization",
			raw:      `{"results":{"channels":[{"alternatives":[{"transcript":"hola","words":[{"word":"hola","start":0,"end":1}]}]}]}}`,
			wantKind: provider.KindFlatText,
			check: func(t *testing.T, r *provider.Result) {
				assert.Equal(t, "hola", r.Flat.Text)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := Detect([]byte(tt.raw))
			require.NoError(t, err)
			require.NoError(t, r.Validate())
			assert.Equal(t, tt.wantKind, r.Kind)
			assert.JSONEq(t, tt.raw, string(r.Raw))
			if tt.check != nil {
				tt.check(t, r)
			}

			n, err := Normalize(r)
			require.NoError(t, err)
			assertOrdered(t, n.Words)
		})
	}
}

func TestDetect_Unrecognized(t *testing.T) {
	for _, raw := range []string{``, `   `, `[]`, `{"foo":"bar"}`, `{"words":[{"text":"a","start":0,"end":1}]}`} {
		_, err := Detect([]byte(raw))
		assert.True(t, errors.Is(err, ErrUnrecognizedShape), "raw %q: %v", raw, err)
	}
}

func TestDetect_AWSItemsNormalizeToSpeakerSegments(t *testing.T) {
	raw := `{"results":{"transcripts":[{"transcript":"Hola bien"}],
		"speaker_labels":{"segments":[
			{"start_time":"0.0","end_time":"1.0","speaker_label":"spk_0"},
			{"start_time":"1.0","end_time":"2.0","speaker_label":"spk_1"}]},
		"items":[
			{"start_time":"0.2","end_time":"0.5","type":"pronunciation","alternatives":[{"content":"Hola"}]},
			{"start_time":"1.2","end_time":"1.5","type":"pronunciation","alternatives":[{"content":"bien"}]}]}}`

	result, err := Detect([]byte(raw))
	require.NoError(t, err)

	n, err := Normalize(result)
	require.NoError(t, err)
	require.Len(t, n.Segments, 2)
	assert.Equal(t, SpeakerLabel(0), n.Segments[0].Speaker)
	assert.Equal(t, SpeakerLabel(1), n.Segments[1].Speaker)
	assert.Equal(t, "Hola bien", n.PlainText)
}
