// Package transcript converts backend-specific transcription payloads into one word/segment model.
package transcript

import (
	"fmt"
)

// UnknownSpeaker labels a segment whose speaker could not be attributed
const UnknownSpeaker = "unknown"

// Word is the smallest timing unit. Speaker is empty when the backend did not attribute it.
type Word struct {
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Text    string  `json:"text"`
	Speaker string  `json:"speaker,omitempty"`
}

// Segment is a maximal contiguous run of one speaker label
type Segment struct {
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Speaker string  `json:"speaker"`
}

// Normalized is the canonical transcript every later stage consumes.
// Words are ordered by Start; Segments, when present, were derived from Words.
type Normalized struct {
	PlainText string    `json:"plainText"`
	Words     []Word    `json:"words"`
	Segments  []Segment `json:"segments"`
}

// HasSpeakers reports whether any segment carries an attributable speaker label
func (n *Normalized) HasSpeakers() bool {
	for _, s := range n.Segments {
		if Attributable(s.Speaker) {
			return true
		}
	}
	return false
}

// Attributable reports whether label names a real speaker
func Attributable(label string) bool {
	return label != "" && label != UnknownSpeaker
}

// SpeakerLabel maps a numeric speaker index to its stable label
func SpeakerLabel(index int) string {
	return fmt.Sprintf("spk_%d", index)
}
