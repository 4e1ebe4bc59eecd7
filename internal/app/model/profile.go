package model

import (
	"time"
)

// Plan is the caller's subscription tier
type Plan string

const (
	PlanFree  Plan = "free"
	PlanPro   Plan = "pro"
	PlanUltra Plan = "ultra"
)

// Plans lists every tier in routing order
var Plans = []Plan{PlanFree, PlanPro, PlanUltra}

// Valid reports whether p is a known plan
func (p Plan) Valid() bool {
	switch p {
	case PlanFree, PlanPro, PlanUltra:
		return true
	}
	return false
}

// AllowsHighPrecision reports whether the plan unlocks the premium transcription path
func (p Plan) AllowsHighPrecision() bool {
	return p == PlanUltra
}

// UnlimitedCredits marks a credit column that is never decremented
const UnlimitedCredits = -1

// Default credit grants per plan
const (
	FreeMonthlyCredits         = 3
	UltraStandardCredits       = 100
	UltraMonthlyPremiumCredits = 20
)

// QuotaKind selects which credit column a submission consumes
type QuotaKind string

const (
	QuotaStandard QuotaKind = "standard"
	QuotaPremium  QuotaKind = "premium"
)

// QuotaKindFor maps the high precision flag to the credit column it draws from
func QuotaKindFor(highPrecision bool) QuotaKind {
	if highPrecision {
		return QuotaPremium
	}
	return QuotaStandard
}

// Profile is the entitlement record of a caller
type Profile struct {
	UserID                  string    `json:"user_id" db:"id"`
	Plan                    Plan      `json:"plan_type" db:"plan_type"`
	CreditsRemaining        int       `json:"credits_remaining" db:"credits_remaining"`
	PremiumCreditsRemaining int       `json:"premium_credits_remaining" db:"premium_credits_remaining"`
	LastCreditRenewal       time.Time `json:"last_credit_renewal" db:"last_credit_renewal"`
	CreatedAt               time.Time `json:"created_at" db:"created_at"`
	UpdatedAt               time.Time `json:"updated_at" db:"updated_at"`
}

// TableName returns the table name for Profile
func (Profile) TableName() string {
	return "profiles"
}

// NewProfile returns a profile with the default grants of plan
func NewProfile(userID string, plan Plan, now time.Time) *Profile {
	p := &Profile{
		UserID:            userID,
		Plan:              plan,
		LastCreditRenewal: now,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	switch plan {
	case PlanPro:
		p.CreditsRemaining = UnlimitedCredits
	case PlanUltra:
		p.CreditsRemaining = UltraStandardCredits
		p.PremiumCreditsRemaining = UltraMonthlyPremiumCredits
	default:
		p.Plan = PlanFree
		p.CreditsRemaining = FreeMonthlyCredits
	}
	return p
}

// HasStandardQuota reports whether a standard submission can be charged
func (p *Profile) HasStandardQuota() bool {
	return p.CreditsRemaining == UnlimitedCredits || p.CreditsRemaining > 0
}

// HasPremiumQuota reports whether a high precision submission can be charged
func (p *Profile) HasPremiumQuota() bool {
	return p.PremiumCreditsRemaining == UnlimitedCredits || p.PremiumCreditsRemaining > 0
}

// HasQuota dispatches on kind
func (p *Profile) HasQuota(kind QuotaKind) bool {
	if kind == QuotaPremium {
		return p.HasPremiumQuota()
	}
	return p.HasStandardQuota()
}

// RenewalDue reports whether at least one calendar month passed since the last renewal
func (p *Profile) RenewalDue(now time.Time) bool {
	if p.LastCreditRenewal.IsZero() {
		return false
	}
	months := (now.Year()-p.LastCreditRenewal.Year())*12 + int(now.Month()-p.LastCreditRenewal.Month())
	return months >= 1
}
