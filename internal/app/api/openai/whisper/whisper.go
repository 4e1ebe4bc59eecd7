package whisper

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
	openaiclient "lazo-pipeline/internal/app/api/openai"
	"lazo-pipeline/internal/app/api/provider"
	"lazo-pipeline/internal/app/common"
)

// RemoteTranscriber calls an OpenAI-compatible /audio/transcriptions endpoint.
// With verbose_json it yields timed segments, otherwise flat text.
type RemoteTranscriber struct {
	common.BaseProvider
	client *openai.Client
	config Config
}

// Config represents configuration for a Whisper-compatible backend
type Config struct {
	APIKey         string  `yaml:"api_key"`
	BaseURL        string  `yaml:"base_url"`
	Model          string  `yaml:"model"`
	ResponseFormat string  `yaml:"response_format"`
	Language       string  `yaml:"language"`
	Prompt         string  `yaml:"prompt"`
	Temperature    float32 `yaml:"temperature"`
}

// NewRemoteTranscriber creates a transcriber registered under name
func NewRemoteTranscriber(name, displayName string, config Config) *RemoteTranscriber {
	if config.Model == "" {
		config.Model = openai.Whisper1
	}
	if config.ResponseFormat == "" {
		config.ResponseFormat = string(openai.AudioResponseFormatText)
	}

	shape := provider.KindFlatText
	if config.ResponseFormat == string(openai.AudioResponseFormatVerboseJSON) {
		shape = provider.KindSegments
	}

	base := common.NewBaseProvider(name, displayName, shape)
	base.MaxFileSizeMB = 25
	base.DefaultModel = config.Model

	return &RemoteTranscriber{
		BaseProvider: base,
		client:       openaiclient.NewClient(config.APIKey, config.BaseURL),
		config:       config,
	}
}

// Transcribe sends the recording and converts the response into the configured shape
func (rt *RemoteTranscriber) Transcribe(ctx context.Context, audio *provider.AudioInput) (*provider.Result, error) {
	if err := rt.CheckAudio(audio); err != nil {
		return nil, err
	}

	fileName := audio.FileName
	if fileName == "" {
		fileName = "audio.wav"
	}
	language := rt.config.Language
	if audio.Language != "" {
		language = audio.Language
	}

	req := openai.AudioRequest{
		Model:       rt.config.Model,
		FilePath:    fileName,
		Reader:      bytes.NewReader(audio.Data),
		Prompt:      rt.config.Prompt,
		Temperature: rt.config.Temperature,
		Language:    isoLanguage(language),
		Format:      openai.AudioResponseFormat(rt.config.ResponseFormat),
	}

	resp, err := rt.client.CreateTranscription(ctx, req)
	if err != nil {
		return nil, rt.handleAPIError(err)
	}

	if rt.Shape == provider.KindFlatText {
		raw, _ := json.Marshal(map[string]string{"text": resp.Text})
		return &provider.Result{
			Kind:    provider.KindFlatText,
			Backend: rt.Name,
			Raw:     raw,
			Flat:    &provider.FlatText{Text: resp.Text},
		}, nil
	}

	segments := make([]provider.TimedSegment, 0, len(resp.Segments))
	for _, s := range resp.Segments {
		segments = append(segments, provider.TimedSegment{
			Text:  strings.TrimSpace(s.Text),
			Start: s.Start,
			End:   s.End,
		})
	}
	raw, err := json.Marshal(resp)
	if err != nil {
		return nil, rt.ParseError(err)
	}
	return &provider.Result{
		Kind:    provider.KindSegments,
		Backend: rt.Name,
		Raw:     raw,
		Segmented: &provider.SegmentedTranscript{
			Text:     resp.Text,
			Segments: segments,
		},
	}, nil
}

// isoLanguage reduces a BCP-47 tag such as es-US to the ISO-639-1 code Whisper accepts
func isoLanguage(tag string) string {
	if i := strings.IndexAny(tag, "-_"); i > 0 {
		return strings.ToLower(tag[:i])
	}
	return strings.ToLower(tag)
}

// handleAPIError converts go-openai errors to TranscriptionError
func (rt *RemoteTranscriber) handleAPIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return rt.HTTPStatusError(apiErr.HTTPStatusCode, []byte(apiErr.Message))
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return rt.HTTPStatusError(reqErr.HTTPStatusCode, reqErr.Body)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return rt.NetworkError(err)
}

// ValidateConfiguration validates the provider configuration
func (rt *RemoteTranscriber) ValidateConfiguration() error {
	if rt.config.APIKey == "" {
		return &provider.TranscriptionError{
			Code:     provider.CodeMissingAPIKey,
			Message:  fmt.Sprintf("%s API key is required", rt.DisplayName),
			Provider: rt.Name,
		}
	}
	if rt.config.Temperature < 0 || rt.config.Temperature > 1 {
		return fmt.Errorf("temperature must be between 0.0 and 1.0")
	}
	switch openai.AudioResponseFormat(rt.config.ResponseFormat) {
	case openai.AudioResponseFormatText, openai.AudioResponseFormatJSON, openai.AudioResponseFormatVerboseJSON:
	default:
		return fmt.Errorf("invalid response format: %s, must be one of text, json, verbose_json", rt.config.ResponseFormat)
	}
	return nil
}
