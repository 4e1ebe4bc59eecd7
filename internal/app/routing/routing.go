// Package routing maps an entitlement tier and precision flag to exactly one backend name.
package routing

import (
	"fmt"
	"sort"

	"github.com/samber/lo"
	apperrors "lazo-pipeline/internal/app/errors"
	"lazo-pipeline/internal/app/model"
)

// Key identifies one (plan, precision) pair
type Key struct {
	Plan          model.Plan
	HighPrecision bool
}

func (k Key) String() string {
	return fmt.Sprintf("%s/%s", k.Plan, model.ModeFor(k.HighPrecision))
}

// Table is a deterministic routing table
type Table map[Key]string

// Rule is the YAML form of one routing entry
type Rule struct {
	Plan          string `yaml:"plan"`
	HighPrecision bool   `yaml:"high_precision"`
	Backend       string `yaml:"backend"`
}

// Uniform builds a table routing every pair to standard except (ultra, high precision)
func Uniform(standard, premium string) Table {
	t := make(Table, len(model.Plans)*2)
	for _, plan := range model.Plans {
		t[Key{Plan: plan}] = standard
		t[Key{Plan: plan, HighPrecision: true}] = standard
	}
	t[Key{Plan: model.PlanUltra, HighPrecision: true}] = premium
	return t
}

// DefaultTranscription routes ultra high precision to deepgram and everything else to groq
func DefaultTranscription() Table {
	return Uniform("groq", "deepgram")
}

// DefaultAnalysis routes ultra high precision to gemini and everything else to groq-llama
func DefaultAnalysis() Table {
	return Uniform("groq-llama", "gemini")
}

// WithRules returns a copy of t with rules applied on top
func (t Table) WithRules(rules []Rule) (Table, error) {
	out := make(Table, len(t))
	for k, v := range t {
		out[k] = v
	}
	for _, r := range rules {
		plan := model.Plan(r.Plan)
		if !plan.Valid() {
			return nil, apperrors.InvalidField("routing plan", r.Plan)
		}
		if r.Backend == "" {
			return nil, apperrors.RequiredField("routing backend")
		}
		out[Key{Plan: plan, HighPrecision: r.HighPrecision}] = r.Backend
	}
	return out, nil
}

// Backend resolves the backend for a pair
func (t Table) Backend(plan model.Plan, highPrecision bool) (string, error) {
	name, ok := t[Key{Plan: plan, HighPrecision: highPrecision}]
	if !ok || name == "" {
		return "", apperrors.Wrapf(apperrors.ErrBackendNotRouted, "%s", Key{Plan: plan, HighPrecision: highPrecision})
	}
	return name, nil
}

// Backends lists the distinct backend names referenced by the table, sorted
func (t Table) Backends() []string {
	names := lo.Uniq(lo.Values(t))
	sort.Strings(names)
	return names
}
