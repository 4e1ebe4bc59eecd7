package transcript

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"lazo-pipeline/internal/app/api/provider"
)

type rawWord struct {
	Word           string          `json:"word"`
	PunctuatedWord string          `json:"punctuated_word"`
	Text           string          `json:"text"`
	Type           string          `json:"type"`
	Start          float64         `json:"start"`
	End            float64         `json:"end"`
	Speaker        json.RawMessage `json:"speaker"`
	SpeakerID      json.RawMessage `json:"speaker_id"`
}

func (w rawWord) text() string {
	switch {
	case w.PunctuatedWord != "":
		return w.PunctuatedWord
	case w.Word != "":
		return w.Word
	}
	return w.Text
}

func (w rawWord) speakerField() json.RawMessage {
	if len(w.Speaker) > 0 && !bytes.Equal(w.Speaker, []byte("null")) {
		return w.Speaker
	}
	if len(w.SpeakerID) > 0 && !bytes.Equal(w.SpeakerID, []byte("null")) {
		return w.SpeakerID
	}
	return nil
}

type rawSegment struct {
	Text    string          `json:"text"`
	Start   float64         `json:"start"`
	End     float64         `json:"end"`
	Speaker json.RawMessage `json:"speaker"`
}

type rawAlternative struct {
	Transcript string    `json:"transcript"`
	Words      []rawWord `json:"words"`
}

// rawItem is one entry of an AWS Transcribe style item list; times are decimal strings
type rawItem struct {
	StartTime    string `json:"start_time"`
	EndTime      string `json:"end_time"`
	Type         string `json:"type"`
	SpeakerLabel string `json:"speaker_label"`
	Alternatives []struct {
		Content string `json:"content"`
	} `json:"alternatives"`
}

type rawSpeakerSegment struct {
	StartTime    string `json:"start_time"`
	EndTime      string `json:"end_time"`
	SpeakerLabel string `json:"speaker_label"`
}

// rawPayload holds every field detection looks at; pointer fields distinguish absent from empty
type rawPayload struct {
	Results *struct {
		Channels []struct {
			Alternatives []rawAlternative `json:"alternatives"`
		} `json:"channels"`
		Transcripts []struct {
			Transcript string `json:"transcript"`
		} `json:"transcripts"`
		Items         *[]rawItem `json:"items"`
		SpeakerLabels *struct {
			Segments []rawSpeakerSegment `json:"segments"`
		} `json:"speaker_labels"`
	} `json:"results"`
	Words      *[]rawWord    `json:"words"`
	Segments   *[]rawSegment `json:"segments"`
	Text       *string       `json:"text"`
	Transcript *string       `json:"transcript"`
}

// Detect inspects a native payload and decodes it into a tagged Result.
// Shapes are checked in priority order: diarized words (inline speakers, then labelled items),
// then segments, then flat text.
func Detect(raw []byte) (*provider.Result, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, fmt.Errorf("%w: empty payload", ErrUnrecognizedShape)
	}

	var p rawPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnrecognizedShape, err)
	}

	out := &provider.Result{Raw: json.RawMessage(raw)}

	var alt *rawAlternative
	if p.Results != nil && len(p.Results.Channels) > 0 && len(p.Results.Channels[0].Alternatives) > 0 {
		alt = &p.Results.Channels[0].Alternatives[0]
	}

	switch {
	case alt != nil && isDiarized(alt.Words):
		out.Kind = provider.KindDiarizedWords
		out.Diarized = &provider.DiarizedWords{Transcript: alt.Transcript, Words: convertRawWords(alt.Words)}
	case p.Results != nil && p.Results.Items != nil:
		out.Kind = provider.KindDiarizedWords
		out.Diarized = convertLabelledItems(p)
	case p.Words != nil && isDiarized(*p.Words):
		out.Kind = provider.KindDiarizedWords
		out.Diarized = &provider.DiarizedWords{Transcript: firstString(p.Text, p.Transcript), Words: convertRawWords(*p.Words)}
	case p.Segments != nil:
		out.Kind = provider.KindSegments
		out.Segmented = &provider.SegmentedTranscript{Text: firstString(p.Text, p.Transcript), Segments: convertRawSegments(*p.Segments)}
	case p.Text != nil || p.Transcript != nil:
		out.Kind = provider.KindFlatText
		out.Flat = &provider.FlatText{Text: firstString(p.Text, p.Transcript)}
	case alt != nil:
		out.Kind = provider.KindFlatText
		out.Flat = &provider.FlatText{Text: alt.Transcript}
	default:
		return nil, ErrUnrecognizedShape
	}
	return out, nil
}

// isDiarized accepts an empty list or one where at least one word carries a speaker
func isDiarized(words []rawWord) bool {
	if len(words) == 0 {
		return true
	}
	for _, w := range words {
		if w.speakerField() != nil {
			return true
		}
	}
	return false
}

func convertRawWords(words []rawWord) []provider.SpeakerWord {
	indexer := newSpeakerIndexer()
	out := make([]provider.SpeakerWord, 0, len(words))
	for _, w := range words {
		if w.Type != "" && w.Type != "word" {
			continue
		}
		sw := provider.SpeakerWord{Text: w.text(), Start: w.Start, End: w.End}
		if field := w.speakerField(); field != nil {
			idx := indexer.index(field)
			sw.Speaker = &idx
		}
		out = append(out, sw)
	}
	return out
}

func convertRawSegments(segments []rawSegment) []provider.TimedSegment {
	indexer := newSpeakerIndexer()
	out := make([]provider.TimedSegment, 0, len(segments))
	for _, s := range segments {
		seg := provider.TimedSegment{Text: s.Text, Start: s.Start, End: s.End}
		if len(s.Speaker) > 0 && !bytes.Equal(s.Speaker, []byte("null")) {
			var label string
			if err := json.Unmarshal(s.Speaker, &label); err == nil && label != "" {
				seg.Speaker = label
			} else {
				seg.Speaker = SpeakerLabel(indexer.index(s.Speaker))
			}
		}
		out = append(out, seg)
	}
	return out
}

// convertLabelledItems attributes each timed item to the speaker segment containing its start.
// An item's own speaker_label wins; untimed items are punctuation and are dropped.
func convertLabelledItems(p rawPayload) *provider.DiarizedWords {
	var segments []rawSpeakerSegment
	if p.Results.SpeakerLabels != nil {
		segments = p.Results.SpeakerLabels.Segments
	}
	out := &provider.DiarizedWords{Words: []provider.SpeakerWord{}}
	if len(p.Results.Transcripts) > 0 {
		out.Transcript = p.Results.Transcripts[0].Transcript
	}

	indexer := newSpeakerIndexer()
	for _, item := range *p.Results.Items {
		if item.StartTime == "" || item.Type == "punctuation" || len(item.Alternatives) == 0 {
			continue
		}
		start, err := strconv.ParseFloat(item.StartTime, 64)
		if err != nil {
			continue
		}
		end, err := strconv.ParseFloat(item.EndTime, 64)
		if err != nil {
			end = start
		}

		word := provider.SpeakerWord{Text: item.Alternatives[0].Content, Start: start, End: end}
		label := item.SpeakerLabel
		if label == "" {
			label = containingSpeaker(segments, start)
		}
		if label != "" {
			idx := indexer.index(json.RawMessage(strconv.Quote(label)))
			word.Speaker = &idx
		}
		out.Words = append(out.Words, word)
	}
	return out
}

func containingSpeaker(segments []rawSpeakerSegment, at float64) string {
	for _, s := range segments {
		start, err1 := strconv.ParseFloat(s.StartTime, 64)
		end, err2 := strconv.ParseFloat(s.EndTime, 64)
		if err1 == nil && err2 == nil && at >= start && at < end {
			return s.SpeakerLabel
		}
	}
	return ""
}

// speakerIndexer turns numeric, "speaker_N", "spk_N" or arbitrary string ids into stable indexes
type speakerIndexer struct {
	named map[string]int
	next  int
}

func newSpeakerIndexer() *speakerIndexer {
	return &speakerIndexer{named: make(map[string]int)}
}

func (s *speakerIndexer) index(field json.RawMessage) int {
	var n int
	if err := json.Unmarshal(field, &n); err == nil {
		return n
	}
	var id string
	if err := json.Unmarshal(field, &id); err != nil {
		id = string(field)
	}
	for _, prefix := range []string{"speaker_", "spk_"} {
		if rest, ok := strings.CutPrefix(id, prefix); ok {
			if n, err := strconv.Atoi(rest); err == nil {
				return n
			}
		}
	}
	if idx, ok := s.named[id]; ok {
		return idx
	}
	// arbitrary ids are numbered after any plausible numeric index
	idx := 1000 + s.next
	s.next++
	s.named[id] = idx
	return idx
}

func firstString(values ...*string) string {
	for _, v := range values {
		if v != nil && *v != "" {
			return *v
		}
	}
	return ""
}
