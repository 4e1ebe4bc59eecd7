package whisper_server

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

// WhisperServerProvider talks to a self-hosted whisper.cpp or faster-whisper HTTP server.
// Recordings never leave the clinic network on this route.
type WhisperServerProvider struct {
	common.BaseProvider
	config WhisperServerConfig
	client *http.Client
}

// WhisperServerConfig holds the connection settings of a self-hosted server
type WhisperServerConfig struct {
	BaseURL       string
	InferencePath string
	Language      string
	Temperature   float64
	Timeout       time.Duration
	Headers       map[string]string
}

// WhisperServerResponse is the verbose_json body returned by /inference
type WhisperServerResponse struct {
	Text     string                 `json:"text"`
	Language string                 `json:"language,omitempty"`
	Duration float64                `json:"duration,omitempty"`
	Segments []WhisperServerSegment `json:"segments"`
}

type WhisperServerSegment struct {
	ID           int     `json:"id"`
	Text         string  `json:"text"`
	Start        float64 `json:"start"`
	End          float64 `json:"end"`
	NoSpeechProb float64 `json:"no_speech_prob,omitempty"`
}

// NewWhisperServerProvider creates a provider with defaults applied
func NewWhisperServerProvider(config WhisperServerConfig) *WhisperServerProvider {
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")
	if config.InferencePath == "" {
		config.InferencePath = "/inference"
	}
	if config.Timeout == 0 {
		config.Timeout = 10 * time.Minute
	}

	base := common.NewBaseProvider("whisper-server", "Whisper Server", provider.KindSegments)
	base.RequiresAPIKey = false
	base.DefaultModel = "server-loaded"
	base.SupportedFormats = append(base.SupportedFormats, provider.FormatFLAC, provider.FormatOGG)

	return &WhisperServerProvider{
		BaseProvider: base,
		config:       config,
		client:       common.NewHTTPClient(config.Timeout),
	}
}

// Transcribe uploads the recording as multipart form and decodes the segment list
func (wsp *WhisperServerProvider) Transcribe(ctx context.Context, audio *provider.AudioInput) (*provider.Result, error) {
	if err := wsp.CheckAudio(audio); err != nil {
		return nil, err
	}

	body, contentType, err := wsp.createMultipartForm(audio)
	if err != nil {
		return nil, &provider.TranscriptionError{
			Code:     provider.CodeFormCreation,
			Message:  fmt.Sprintf("failed to create multipart form: %v", err),
			Provider: wsp.Name,
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, wsp.config.BaseURL+wsp.config.InferencePath, body)
	if err != nil {
		return nil, &provider.TranscriptionError{
			Code:     provider.CodeRequestCreation,
			Message:  fmt.Sprintf("failed to create HTTP request: %v", err),
			Provider: wsp.Name,
		}
	}
	req.Header.Set("Content-Type", contentType)
	for key, value := range wsp.config.Headers {
		req.Header.Set(key, value)
	}

	resp, err := wsp.client.Do(req)
	if err != nil {
		return nil, wsp.NetworkError(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, wsp.NetworkError(err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, wsp.HTTPStatusError(resp.StatusCode, data)
	}

	return wsp.decode(data)
}

func (wsp *WhisperServerProvider) createMultipartForm(audio *provider.AudioInput) (*bytes.Buffer, string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	fileName := audio.FileName
	if fileName == "" {
		fileName = "audio.wav"
	}
	part, err := writer.CreateFormFile("file", fileName)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(audio.Data); err != nil {
		return nil, "", err
	}

	fields := map[string]string{
		"response_format": "verbose_json",
		"temperature":     strconv.FormatFloat(wsp.config.Temperature, 'f', 2, 64),
	}
	if lang := wsp.language(audio); lang != "" {
		fields["language"] = lang
	}
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			return nil, "", err
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", err
	}
	return body, writer.FormDataContentType(), nil
}

func (wsp *WhisperServerProvider) decode(data []byte) (*provider.Result, error) {
	var payload WhisperServerResponse
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, wsp.ParseError(err)
	}

	segments := make([]provider.TimedSegment, 0, len(payload.Segments))
	for _, s := range payload.Segments {
		text := strings.TrimSpace(s.Text)
		if text == "" {
			continue
		}
		segments = append(segments, provider.TimedSegment{Text: text, Start: s.Start, End: s.End})
	}

	return &provider.Result{
		Kind:    provider.KindSegments,
		Backend: wsp.Name,
		Raw:     json.RawMessage(data),
		Segmented: &provider.SegmentedTranscript{
			Text:     strings.TrimSpace(payload.Text),
			Segments: segments,
		},
	}, nil
}

// language reduces a BCP-47 hint to the two-letter code whisper expects
func (wsp *WhisperServerProvider) language(audio *provider.AudioInput) string {
	lang := wsp.config.Language
	if audio.Language != "" {
		lang = audio.Language
	}
	if i := strings.IndexAny(lang, "-_"); i > 0 {
		lang = lang[:i]
	}
	return strings.ToLower(lang)
}

// ValidateConfiguration checks that a server address is set
func (wsp *WhisperServerProvider) ValidateConfiguration() error {
	if wsp.config.BaseURL == "" {
		return &provider.TranscriptionError{
			Code:        provider.CodeInvalidRequest,
			Message:     "whisper-server base URL is required",
			Provider:    wsp.Name,
			Suggestions: []string{"Set settings.base_url for the whisper-server backend"},
		}
	}
	return nil
}
