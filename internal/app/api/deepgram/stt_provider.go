package deepgram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"lazo-pipeline/internal/app/api/provider"
	"lazo-pipeline/internal/app/common"
)

// DeepgramSTTProvider calls the Deepgram pre-recorded REST API with diarization enabled
type DeepgramSTTProvider struct {
	common.BaseProvider
	config DeepgramConfig
	client *http.Client
}

// DeepgramConfig represents configuration for the Deepgram provider
type DeepgramConfig struct {
	APIKey      string `yaml:"api_key"`
	BaseURL     string `yaml:"base_url"`
	Model       string `yaml:"model"`
	Language    string `yaml:"language"`
	SmartFormat bool   `yaml:"smart_format"`
	Timeout     time.Duration
}

// listenResponse is the subset of the /v1/listen payload the pipeline consumes
type listenResponse struct {
	Results struct {
		Channels []struct {
			Alternatives []struct {
				Transcript string  `json:"transcript"`
				Confidence float64 `json:"confidence"`
				Words      []Word  `json:"words"`
			} `json:"alternatives"`
		} `json:"channels"`
	} `json:"results"`
}

// Word is one diarized word from Deepgram
type Word struct {
	Word           string  `json:"word"`
	PunctuatedWord string  `json:"punctuated_word"`
	Start          float64 `json:"start"`
	End            float64 `json:"end"`
	Confidence     float64 `json:"confidence"`
	Speaker        *int    `json:"speaker"`
}

// NewDeepgramSTTProvider creates a new Deepgram provider
func NewDeepgramSTTProvider(config DeepgramConfig) *DeepgramSTTProvider {
	if config.BaseURL == "" {
		config.BaseURL = "https://api.deepgram.com/v1"
	}
	if config.Model == "" {
		config.Model = "nova-2"
	}
	if config.Timeout == 0 {
		config.Timeout = 10 * time.Minute
	}

	base := common.NewBaseProvider("deepgram", "Deepgram", provider.KindDiarizedWords)
	base.MaxFileSizeMB = 2048
	base.DefaultModel = config.Model
	base.SupportsDiarize = true
	base.SupportedFormats = append(base.SupportedFormats, provider.FormatFLAC, provider.FormatOGG)

	return &DeepgramSTTProvider{
		BaseProvider: base,
		config:       config,
		client:       common.NewHTTPClient(config.Timeout),
	}
}

// Transcribe uploads the raw audio body and decodes the diarized word list
func (d *DeepgramSTTProvider) Transcribe(ctx context.Context, audio *provider.AudioInput) (*provider.Result, error) {
	if err := d.CheckAudio(audio); err != nil {
		return nil, err
	}

	req, err := d.createHTTPRequest(ctx, audio)
	if err != nil {
		return nil, err
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, d.NetworkError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, d.NetworkError(err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, d.HTTPStatusError(resp.StatusCode, body)
	}

	return d.decode(body)
}

func (d *DeepgramSTTProvider) createHTTPRequest(ctx context.Context, audio *provider.AudioInput) (*http.Request, error) {
	params := url.Values{}
	params.Set("model", d.config.Model)
	params.Set("diarize", "true")
	params.Set("punctuate", "true")
	params.Set("smart_format", strconv.FormatBool(d.config.SmartFormat))
	// Zero data retention on the provider side
	params.Set("mip_opt_out", "true")
	if lang := d.language(audio); lang != "" {
		params.Set("language", lang)
	}

	apiURL := fmt.Sprintf("%s/listen?%s", d.config.BaseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewReader(audio.Data))
	if err != nil {
		return nil, &provider.TranscriptionError{
			Code:     provider.CodeRequestCreation,
			Message:  fmt.Sprintf("failed to create HTTP request: %v", err),
			Provider: d.Name,
		}
	}

	contentType := audio.MimeType
	if contentType == "" {
		contentType = provider.MimeTypeFor(provider.GetAudioFormatFromFilename(audio.FileName))
	}
	req.Header.Set("Authorization", "Token "+d.config.APIKey)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("User-Agent", "lazo-pipeline/1.0")
	return req, nil
}

func (d *DeepgramSTTProvider) decode(body []byte) (*provider.Result, error) {
	var payload listenResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, d.ParseError(err)
	}

	diarized := &provider.DiarizedWords{Words: []provider.SpeakerWord{}}
	if len(payload.Results.Channels) > 0 && len(payload.Results.Channels[0].Alternatives) > 0 {
		alt := payload.Results.Channels[0].Alternatives[0]
		diarized.Transcript = alt.Transcript
		diarized.Words = convertWords(alt.Words)
	}

	return &provider.Result{
		Kind:     provider.KindDiarizedWords,
		Backend:  d.Name,
		Raw:      json.RawMessage(body),
		Diarized: diarized,
	}, nil
}

func convertWords(words []Word) []provider.SpeakerWord {
	out := make([]provider.SpeakerWord, len(words))
	for i, w := range words {
		text := w.PunctuatedWord
		if text == "" {
			text = w.Word
		}
		out[i] = provider.SpeakerWord{
			Text:    text,
			Start:   w.Start,
			End:     w.End,
			Speaker: w.Speaker,
		}
	}
	return out
}

func (d *DeepgramSTTProvider) language(audio *provider.AudioInput) string {
	if audio.Language != "" {
		return audio.Language
	}
	return d.config.Language
}

// ValidateConfiguration validates the provider configuration
func (d *DeepgramSTTProvider) ValidateConfiguration() error {
	if d.config.APIKey == "" {
		return &provider.TranscriptionError{
			Code:        provider.CodeMissingAPIKey,
			Message:     "Deepgram API key is required",
			Provider:    d.Name,
			Suggestions: []string{"Set DEEPGRAM_API_KEY environment variable"},
		}
	}
	return nil
}
