package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewProfile(t *testing.T) {
	now := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		plan        Plan
		wantPlan    Plan
		wantCredits int
		wantPremium int
	}{
		{name: "free", plan: PlanFree, wantPlan: PlanFree, wantCredits: 3, wantPremium: 0},
		{name: "pro is unlimited", plan: PlanPro, wantPlan: PlanPro, wantCredits: UnlimitedCredits, wantPremium: 0},
		{name: "ultra", plan: PlanUltra, wantPlan: PlanUltra, wantCredits: 100, wantPremium: 20},
		{name: "unknown plan falls back to free", plan: Plan("enterprise"), wantPlan: PlanFree, wantCredits: 3, wantPremium: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewProfile("u", tt.plan, now)
			assert.Equal(t, tt.wantPlan, p.Plan)
			assert.Equal(t, tt.wantCredits, p.CreditsRemaining)
			assert.Equal(t, tt.wantPremium, p.PremiumCreditsRemaining)
			assert.Equal(t, now, p.LastCreditRenewal)
		})
	}
}

func TestProfileHasQuota(t *testing.T) {
	tests := []struct {
		name        string
		credits     int
		premium     int
		wantStd     bool
		wantPremium bool
	}{
		{name: "positive balances", credits: 1, premium: 1, wantStd: true, wantPremium: true},
		{name: "exhausted", credits: 0, premium: 0, wantStd: false, wantPremium: false},
		{name: "unlimited", credits: UnlimitedCredits, premium: UnlimitedCredits, wantStd: true, wantPremium: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Profile{CreditsRemaining: tt.credits, PremiumCreditsRemaining: tt.premium}
			assert.Equal(t, tt.wantStd, p.HasQuota(QuotaStandard))
			assert.Equal(t, tt.wantPremium, p.HasQuota(QuotaPremium))
		})
	}
}

func TestProfileRenewalDue(t *testing.T) {
	last := time.Date(2026, 9, 30, 23, 0, 0, 0, time.UTC)

	assert.False(t, (&Profile{LastCreditRenewal: last}).RenewalDue(last.Add(30*time.Minute)))
	assert.True(t, (&Profile{LastCreditRenewal: last}).RenewalDue(time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)))
	assert.True(t, (&Profile{LastCreditRenewal: last}).RenewalDue(time.Date(2027, 1, 15, 0, 0, 0, 0, time.UTC)))
	assert.False(t, (&Profile{}).RenewalDue(last))
}

func TestPlanRules(t *testing.T) {
	assert.True(t, PlanUltra.AllowsHighPrecision())
	assert.False(t, PlanPro.AllowsHighPrecision())
	assert.False(t, PlanFree.AllowsHighPrecision())
	assert.False(t, Plan("gold").Valid())
	assert.Equal(t, QuotaPremium, QuotaKindFor(true))
	assert.Equal(t, ModeHighPrecision, ModeFor(true))
	assert.True(t, JobStateError.IsTerminal())
	assert.False(t, JobStateProcessing.IsTerminal())
}
