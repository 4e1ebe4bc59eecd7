package provider

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
)

// AudioFormat defines supported audio formats
type AudioFormat string

const (
	FormatWAV  AudioFormat = "wav"
	FormatMP3  AudioFormat = "mp3"
	FormatM4A  AudioFormat = "m4a"
	FormatFLAC AudioFormat = "flac"
	FormatOGG  AudioFormat = "ogg"
	FormatWEBM AudioFormat = "webm"
)

// ResultKind discriminates the decoded variant carried by a Result
type ResultKind string

const (
	KindDiarizedWords ResultKind = "diarized_words"
	KindSegments      ResultKind = "segments"
	KindFlatText      ResultKind = "flat_text"
)

// AudioInput is one in-memory recording handed to a backend
type AudioInput struct {
	Data     []byte
	FileName string
	MimeType string
	// Language is a BCP-47 hint such as "es" or "es-US"; empty lets the backend detect
	Language string
}

// Result is the tagged union returned by every backend.
// Kind names the single non-nil variant; Raw keeps the native payload untouched.
type Result struct {
	Kind    ResultKind      `json:"kind"`
	Backend string          `json:"backend"`
	Raw     json.RawMessage `json:"raw,omitempty"`

	Diarized  *DiarizedWords       `json:"diarized,omitempty"`
	Segmented *SegmentedTranscript `json:"segmented,omitempty"`
	Flat      *FlatText            `json:"flat,omitempty"`
}

// Validate checks that the discriminant matches the populated variant
func (r *Result) Validate() error {
	if r == nil {
		return fmt.Errorf("nil provider result")
	}
	switch r.Kind {
	case KindDiarizedWords:
		if r.Diarized == nil {
			return fmt.Errorf("result kind %s without diarized payload", r.Kind)
		}
	case KindSegments:
		if r.Segmented == nil {
			return fmt.Errorf("result kind %s without segment payload", r.Kind)
		}
	case KindFlatText:
		if r.Flat == nil {
			return fmt.Errorf("result kind %s without text payload", r.Kind)
		}
	default:
		return fmt.Errorf("unknown result kind %q", r.Kind)
	}
	return nil
}

// DiarizedWords is a word list with an inline numeric speaker index per word
type DiarizedWords struct {
	Transcript string        `json:"transcript"`
	Words      []SpeakerWord `json:"words"`
}

// SpeakerWord is one timed word; Speaker is nil when the backend did not attribute it
type SpeakerWord struct {
	Text    string  `json:"text"`
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Speaker *int    `json:"speaker,omitempty"`
}

// SegmentedTranscript is an utterance list without word granularity
type SegmentedTranscript struct {
	Text     string         `json:"text"`
	Segments []TimedSegment `json:"segments"`
}

type TimedSegment struct {
	Text    string  `json:"text"`
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Speaker string  `json:"speaker,omitempty"`
}

// FlatText carries no timing and no speakers
type FlatText struct {
	Text string `json:"text"`
}

// ProviderInfo contains metadata about a transcription backend
type ProviderInfo struct {
	Name             string        `json:"name"`
	DisplayName      string        `json:"display_name"`
	Shape            ResultKind    `json:"shape"`
	SupportedFormats []AudioFormat `json:"supported_formats"`
	MaxFileSizeMB    int           `json:"max_file_size_mb,omitempty"`
	DefaultModel     string        `json:"default_model,omitempty"`
	SupportsDiarize  bool          `json:"supports_diarize"`
	RequiresAPIKey   bool          `json:"requires_api_key"`
}

// TranscriptionError represents provider-specific errors
type TranscriptionError struct {
	Code        string   `json:"code"`
	Message     string   `json:"message"`
	Provider    string   `json:"provider"`
	Retryable   bool     `json:"retryable"`
	Suggestions []string `json:"suggestions,omitempty"`
}

func (e *TranscriptionError) Error() string {
	return e.Message
}

// Error codes shared by every backend
const (
	CodeInvalidInput     = "invalid_input"
	CodeFileTooLarge     = "file_too_large"
	CodeNetworkError     = "network_error"
	CodeAuthFailed       = "authentication_failed"
	CodeRateLimited      = "rate_limit_exceeded"
	CodeInvalidRequest   = "invalid_request"
	CodeServerError      = "server_error"
	CodeResponseParse    = "response_parse_error"
	CodeUnknown          = "unknown_error"
	CodeRequestCreation  = "request_creation_error"
	CodeFormCreation     = "form_creation_error"
	CodeMissingAPIKey    = "missing_api_key"
	CodeNotRegistered    = "backend_not_registered"
	CodeRoutingMissing   = "routing_missing"
	CodeUnsupportedShape = "unsupported_shape"
)

// GetAudioFormatFromFilename extracts audio format from filename
func GetAudioFormatFromFilename(filename string) AudioFormat {
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), ".")) {
	case "wav":
		return FormatWAV
	case "mp3", "mpeg":
		return FormatMP3
	case "m4a", "mp4":
		return FormatM4A
	case "flac":
		return FormatFLAC
	case "ogg", "oga":
		return FormatOGG
	case "webm":
		return FormatWEBM
	default:
		return ""
	}
}

// MimeTypeFor returns a best-effort content type for an audio format
func MimeTypeFor(format AudioFormat) string {
	switch format {
	case FormatWAV:
		return "audio/wav"
	case FormatMP3:
		return "audio/mpeg"
	case FormatM4A:
		return "audio/mp4"
	case FormatFLAC:
		return "audio/flac"
	case FormatOGG:
		return "audio/ogg"
	case FormatWEBM:
		return "audio/webm"
	default:
		return "application/octet-stream"
	}
}
