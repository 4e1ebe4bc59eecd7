package transcript

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/samber/lo"
	"lazo-pipeline/internal/app/api/provider"
)

// ErrUnrecognizedShape is returned when a payload matches none of the known shapes
var ErrUnrecognizedShape = errors.New("unrecognized transcription payload shape")

// Normalize converts a backend result into the canonical model.
// The Kind discriminant is trusted when set; otherwise Raw is inspected with Detect.
func Normalize(result *provider.Result) (*Normalized, error) {
	if result == nil {
		return nil, fmt.Errorf("%w: nil result", ErrUnrecognizedShape)
	}

	if result.Kind == "" {
		detected, err := Detect(result.Raw)
		if err != nil {
			return nil, err
		}
		detected.Backend = result.Backend
		result = detected
	}

	if err := result.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnrecognizedShape, err)
	}

	switch result.Kind {
	case provider.KindDiarizedWords:
		return fromDiarized(result.Diarized), nil
	case provider.KindSegments:
		return fromSegments(result.Segmented), nil
	case provider.KindFlatText:
		return fromFlat(result.Flat), nil
	}
	return nil, fmt.Errorf("%w: kind %q", ErrUnrecognizedShape, result.Kind)
}

func fromDiarized(d *provider.DiarizedWords) *Normalized {
	words := make([]Word, 0, len(d.Words))
	for _, w := range d.Words {
		word := Word{Start: w.Start, End: w.End, Text: strings.TrimSpace(w.Text)}
		if w.Speaker != nil {
			word.Speaker = SpeakerLabel(*w.Speaker)
		}
		if word.End < word.Start {
			word.End = word.Start
		}
		words = append(words, word)
	}
	sort.SliceStable(words, func(i, j int) bool { return words[i].Start < words[j].Start })

	plain := strings.TrimSpace(d.Transcript)
	if plain == "" {
		plain = joinText(words)
	}

	return &Normalized{
		PlainText: plain,
		Words:     words,
		Segments:  BuildSegments(words),
	}
}

// BuildSegments scans words once, left to right, opening a new segment whenever the label changes.
// Words without a speaker fold into segments labelled UnknownSpeaker.
func BuildSegments(words []Word) []Segment {
	segments := make([]Segment, 0)
	for i, w := range words {
		if i == 0 || w.Speaker != words[i-1].Speaker {
			label := w.Speaker
			if label == "" {
				label = UnknownSpeaker
			}
			segments = append(segments, Segment{Start: w.Start, End: w.End, Speaker: label})
			continue
		}
		open := &segments[len(segments)-1]
		if w.End > open.End {
			open.End = w.End
		}
	}
	return segments
}

func fromSegments(s *provider.SegmentedTranscript) *Normalized {
	ordered := make([]provider.TimedSegment, len(s.Segments))
	copy(ordered, s.Segments)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Start < ordered[j].Start })

	n := &Normalized{
		Words:    make([]Word, 0, len(ordered)),
		Segments: make([]Segment, 0, len(ordered)),
	}
	for _, seg := range ordered {
		label := seg.Speaker
		if label == "" {
			label = UnknownSpeaker
		}
		end := seg.End
		if end < seg.Start {
			end = seg.Start
		}
		n.Segments = append(n.Segments, Segment{Start: seg.Start, End: end, Speaker: label})
		n.Words = append(n.Words, Word{Start: seg.Start, End: end, Text: strings.TrimSpace(seg.Text), Speaker: label})
	}

	n.PlainText = strings.TrimSpace(s.Text)
	if n.PlainText == "" {
		n.PlainText = joinText(n.Words)
	}
	return n
}

func fromFlat(f *provider.FlatText) *Normalized {
	return &Normalized{
		PlainText: strings.TrimSpace(f.Text),
		Words:     []Word{},
		Segments:  []Segment{},
	}
}

func joinText(words []Word) string {
	texts := lo.FilterMap(words, func(w Word, _ int) (string, bool) {
		return w.Text, w.Text != ""
	})
	return strings.Join(texts, " ")
}
