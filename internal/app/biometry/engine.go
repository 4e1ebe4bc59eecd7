// Package biometry derives talk/listen ratios, silences and a speaker- and time-annotated rendering
// from a normalized transcript.
package biometry

import (
	"fmt"
	"math"
	"strings"

	"lazo-pipeline/internal/app/model"
	"lazo-pipeline/internal/app/transcript"
)

const (
	DefaultSilenceThreshold = 2.0
	DefaultBucketSeconds    = 30
)

// Engine holds no per-session state; every Compute call builds its own RoleAssigner
type Engine struct {
	silenceThreshold float64
	bucketSeconds    int
	newAssigner      func() RoleAssigner
}

// Option configures an Engine
type Option func(*Engine)

// WithRoleAssigner replaces the first-seen role heuristic
func WithRoleAssigner(factory func() RoleAssigner) Option {
	return func(e *Engine) {
		if factory != nil {
			e.newAssigner = factory
		}
	}
}

// WithSilenceThreshold sets the minimum gap, in seconds, recorded as a silence
func WithSilenceThreshold(seconds float64) Option {
	return func(e *Engine) {
		if seconds > 0 {
			e.silenceThreshold = seconds
		}
	}
}

// WithBucketSeconds sets the spacing of time markers in the timestamped transcript
func WithBucketSeconds(seconds int) Option {
	return func(e *Engine) {
		if seconds > 0 {
			e.bucketSeconds = seconds
		}
	}
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		silenceThreshold: DefaultSilenceThreshold,
		bucketSeconds:    DefaultBucketSeconds,
		newAssigner:      func() RoleAssigner { return NewFirstSeenAssigner() },
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Timestamped renders the words with a speaker marker on every change between attributable labels
// and a time marker at each positive bucket boundary. The speaker marker precedes the time marker.
func (e *Engine) Timestamped(n *transcript.Normalized) string {
	if n == nil {
		return ""
	}

	var b strings.Builder
	lastSpeaker := ""
	lastBucket := -1

	for _, w := range n.Words {
		if transcript.Attributable(w.Speaker) {
			if lastSpeaker != "" && w.Speaker != lastSpeaker {
				fmt.Fprintf(&b, "\n[%s]: ", w.Speaker)
			}
			lastSpeaker = w.Speaker
		}

		second := int(math.Floor(w.Start))
		if second > 0 && second%e.bucketSeconds == 0 && second != lastBucket {
			fmt.Fprintf(&b, "\n[%d:%02d] ", second/60, second%60)
			lastBucket = second
		}

		if w.Text == "" {
			continue
		}
		out := b.String()
		if len(out) > 0 && !strings.HasSuffix(out, ": ") && !strings.HasSuffix(out, "] ") {
			b.WriteByte(' ')
		}
		b.WriteString(w.Text)
	}
	return b.String()
}

type unit struct {
	start, end float64
	speaker    string
}

// Compute returns talk/listen percentages and silences, or nil when no time could be attributed to a role
func (e *Engine) Compute(n *transcript.Normalized) *model.Biometry {
	if n == nil {
		return nil
	}

	units := make([]unit, 0, len(n.Segments))
	attribute := len(n.Segments) > 0
	if attribute {
		for _, s := range n.Segments {
			units = append(units, unit{start: s.Start, end: s.End, speaker: s.Speaker})
		}
	} else {
		// words are zero-duration points here and never attributed
		for _, w := range n.Words {
			units = append(units, unit{start: w.Start, end: w.Start})
		}
	}

	assigner := e.newAssigner()

	silences := make([]model.Silence, 0)
	seconds := map[Role]float64{}
	for i, u := range units {
		if i > 0 {
			prevEnd := units[i-1].end
			if gap := u.start - prevEnd; gap > e.silenceThreshold {
				silences = append(silences, model.Silence{Start: prevEnd, Duration: gap})
			}
		}
		if !attribute || !transcript.Attributable(u.speaker) {
			continue
		}
		if role := assigner.Assign(u.speaker); role != RoleNone {
			seconds[role] += u.end - u.start
		}
	}

	total := seconds[RoleTherapist] + seconds[RolePatient]
	if total <= 0 {
		return nil
	}

	therapist := int(math.Round(seconds[RoleTherapist] / total * 100))
	return &model.Biometry{
		TalkListenRatio: model.TalkListenRatio{
			Therapist: therapist,
			Patient:   100 - therapist,
		},
		Silences: silences,
	}
}
