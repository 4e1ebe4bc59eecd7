package elevenlabs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"lazo-pipeline/internal/app/api/provider"
	"lazo-pipeline/internal/app/common"
)

// ElevenLabsSTTProvider implements SessionTranscriber for the ElevenLabs Speech-to-Text API
type ElevenLabsSTTProvider struct {
	common.BaseProvider
	config ElevenLabsConfig
	client *http.Client
}

// ElevenLabsConfig represents configuration for ElevenLabs STT provider
type ElevenLabsConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
	Timeout time.Duration
}

// ElevenLabsResponse represents the response from ElevenLabs STT API
type ElevenLabsResponse struct {
	Text         string `json:"text"`
	LanguageCode string `json:"language_code,omitempty"`
	Words        []Word `json:"words,omitempty"`
}

// Word represents one timed token; Type is "word", "spacing" or "audio_event"
type Word struct {
	Text      string  `json:"text"`
	Start     float64 `json:"start"`
	End       float64 `json:"end"`
	Type      string  `json:"type"`
	SpeakerID string  `json:"speaker_id,omitempty"`
}

// NewElevenLabsSTTProvider creates a new ElevenLabs STT provider
func NewElevenLabsSTTProvider(config ElevenLabsConfig) *ElevenLabsSTTProvider {
	if config.BaseURL == "" {
		config.BaseURL = "https://api.elevenlabs.io/v1"
	}
	if config.Model == "" {
		config.Model = "scribe_v1"
	}
	if config.Timeout == 0 {
		config.Timeout = 10 * time.Minute
	}

	base := common.NewBaseProvider("elevenlabs", "ElevenLabs Speech-to-Text", provider.KindDiarizedWords)
	base.MaxFileSizeMB = 1024
	base.DefaultModel = config.Model
	base.SupportsDiarize = true
	base.SupportedFormats = append(base.SupportedFormats, provider.FormatFLAC, provider.FormatOGG)

	return &ElevenLabsSTTProvider{
		BaseProvider: base,
		config:       config,
		client:       common.NewHTTPClient(config.Timeout),
	}
}

// Transcribe uploads the recording with diarization enabled
func (el *ElevenLabsSTTProvider) Transcribe(ctx context.Context, audio *provider.AudioInput) (*provider.Result, error) {
	if err := el.CheckAudio(audio); err != nil {
		return nil, err
	}

	httpReq, err := el.createHTTPRequest(ctx, audio)
	if err != nil {
		return nil, err
	}

	resp, err := el.client.Do(httpReq)
	if err != nil {
		return nil, el.NetworkError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, el.NetworkError(err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, el.HTTPStatusError(resp.StatusCode, body)
	}

	var parsed ElevenLabsResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, el.ParseError(err)
	}

	return &provider.Result{
		Kind:    provider.KindDiarizedWords,
		Backend: el.Name,
		Raw:     json.RawMessage(body),
		Diarized: &provider.DiarizedWords{
			Transcript: parsed.Text,
			Words:      convertWords(parsed.Words),
		},
	}, nil
}

// createHTTPRequest creates the multipart request for the ElevenLabs API
func (el *ElevenLabsSTTProvider) createHTTPRequest(ctx context.Context, audio *provider.AudioInput) (*http.Request, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	fileName := audio.FileName
	if fileName == "" {
		fileName = "audio.wav"
	}
	part, err := writer.CreateFormFile("file", fileName)
	if err != nil {
		return nil, el.formError(err)
	}
	if _, err := part.Write(audio.Data); err != nil {
		return nil, el.formError(err)
	}

	fields := map[string]string{
		"model_id":               el.config.Model,
		"diarize":                "true",
		"tag_audio_events":       "false",
		"timestamps_granularity": "word",
	}
	if audio.Language != "" {
		fields["language_code"] = audio.Language
	}
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			return nil, el.formError(err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, el.formError(err)
	}

	url := fmt.Sprintf("%s/speech-to-text", el.config.BaseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return nil, &provider.TranscriptionError{
			Code:     provider.CodeRequestCreation,
			Message:  fmt.Sprintf("failed to create HTTP request: %v", err),
			Provider: el.Name,
		}
	}

	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("xi-api-key", el.config.APIKey)
	req.Header.Set("User-Agent", "lazo-pipeline/1.0")
	return req, nil
}

func (el *ElevenLabsSTTProvider) formError(err error) error {
	return &provider.TranscriptionError{
		Code:     provider.CodeFormCreation,
		Message:  fmt.Sprintf("failed to create form: %v", err),
		Provider: el.Name,
	}
}

// convertWords drops spacing tokens and maps "speaker_N" ids to numeric indexes.
// Ids without a numeric suffix are numbered in order of first appearance after the numeric ones.
func convertWords(words []Word) []provider.SpeakerWord {
	out := make([]provider.SpeakerWord, 0, len(words))
	assigned := make(map[string]int)
	next := 1000
	for _, w := range words {
		if w.Type != "" && w.Type != "word" {
			continue
		}
		sw := provider.SpeakerWord{Text: w.Text, Start: w.Start, End: w.End}
		if w.SpeakerID != "" {
			idx, ok := assigned[w.SpeakerID]
			if !ok {
				if n, err := strconv.Atoi(strings.TrimPrefix(w.SpeakerID, "speaker_")); err == nil {
					idx = n
				} else {
					idx = next
					next++
				}
				assigned[w.SpeakerID] = idx
			}
			speaker := idx
			sw.Speaker = &speaker
		}
		out = append(out, sw)
	}
	return out
}

// ValidateConfiguration validates the provider configuration
func (el *ElevenLabsSTTProvider) ValidateConfiguration() error {
	if el.config.APIKey == "" {
		return &provider.TranscriptionError{
			Code:        provider.CodeMissingAPIKey,
			Message:     "ElevenLabs API key is required",
			Provider:    el.Name,
			Suggestions: []string{"Set ELEVENLABS_API_KEY environment variable"},
		}
	}
	return nil
}
