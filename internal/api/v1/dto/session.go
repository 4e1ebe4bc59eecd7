package dto

import (
	"strings"
	"time"

	"lazo-pipeline/internal/api/errors"
	"lazo-pipeline/internal/app/model"
)

// SuccessResponse represents a successful API response
type SuccessResponse struct {
	Code    int         `json:"code"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

// SubmitSessionForm holds the non-file fields of a multipart session submission
type SubmitSessionForm struct {
	InputLanguage  string `form:"inputLanguage"`
	OutputLanguage string `form:"outputLanguage"`
	NoteFormat     string `form:"noteFormat" binding:"omitempty,oneof=SOAP DAP BIRP soap dap birp"`
	PatientName    string `form:"patientName" binding:"max=200"`
	PatientAge     int    `form:"patientAge" binding:"min=0,max=150"`
	PatientGender  string `form:"patientGender" binding:"max=50"`
	UserID         string `form:"userId"`
	HighPrecision  bool   `form:"highPrecision"`
}

// Format returns the requested note format, SOAP when none was given
func (f *SubmitSessionForm) Format() model.NoteFormat {
	if f.NoteFormat == "" {
		return model.NoteFormatSOAP
	}
	return model.NoteFormat(strings.ToUpper(f.NoteFormat))
}

// Patient returns the optional patient context
func (f *SubmitSessionForm) Patient() model.PatientContext {
	return model.PatientContext{
		Name:   strings.TrimSpace(f.PatientName),
		Age:    f.PatientAge,
		Gender: strings.TrimSpace(f.PatientGender),
	}
}

// SubmitSessionResponse is returned with 202 once the job exists
type SubmitSessionResponse struct {
	SessionID string         `json:"sessionId"`
	State     model.JobState `json:"state"`
}

// SessionResponse is the polling view of a job
type SessionResponse struct {
	ID        string               `json:"id"`
	State     model.JobState       `json:"state"`
	Mode      model.ProcessingMode `json:"mode"`
	Result    *model.SessionResult `json:"result,omitempty"`
	Error     string               `json:"error,omitempty"`
	CreatedAt time.Time            `json:"createdAt"`
	UpdatedAt time.Time            `json:"updatedAt"`
}

// NewSessionResponse maps a stored job to its API view
func NewSessionResponse(job *model.SessionJob) *SessionResponse {
	return &SessionResponse{
		ID:        job.ID,
		State:     job.State,
		Mode:      job.Mode,
		Result:    job.Result,
		Error:     job.ErrorMessage,
		CreatedAt: job.CreatedAt,
		UpdatedAt: job.UpdatedAt,
	}
}

// PlanResponse is the entitlement view of a caller
type PlanResponse struct {
	UserID                  string     `json:"userId"`
	Plan                    model.Plan `json:"plan"`
	CreditsRemaining        int        `json:"creditsRemaining"`
	PremiumCreditsRemaining int        `json:"premiumCreditsRemaining"`
	Unlimited               bool       `json:"unlimited"`
	HighPrecisionAvailable  bool       `json:"highPrecisionAvailable"`
	LastCreditRenewal       time.Time  `json:"lastCreditRenewal"`
}

// NewPlanResponse maps a profile to its API view
func NewPlanResponse(p *model.Profile) *PlanResponse {
	return &PlanResponse{
		UserID:                  p.UserID,
		Plan:                    p.Plan,
		CreditsRemaining:        p.CreditsRemaining,
		PremiumCreditsRemaining: p.PremiumCreditsRemaining,
		Unlimited:               p.CreditsRemaining == model.UnlimitedCredits,
		HighPrecisionAvailable:  p.Plan.AllowsHighPrecision() && p.HasPremiumQuota(),
		LastCreditRenewal:       p.LastCreditRenewal,
	}
}

// AIActionRequest runs a one-off action on a transcript
type AIActionRequest struct {
	Transcript     string `json:"transcript" binding:"required"`
	Action         string `json:"action" binding:"required"`
	UserID         string `json:"userId"`
	OutputLanguage string `json:"outputLanguage"`
	PatientName    string `json:"patientName"`
	PatientAge     int    `json:"patientAge"`
	PatientGender  string `json:"patientGender"`
}

// Validate performs domain-specific validation
func (r *AIActionRequest) Validate() error {
	validationErrors := make(map[string]string)

	if strings.TrimSpace(r.Transcript) == "" {
		validationErrors["transcript"] = "is required"
	}
	if r.PatientAge < 0 {
		validationErrors["patientage"] = "must not be negative"
	}

	if len(validationErrors) > 0 {
		return errors.NewValidationError("Invalid AI action request", validationErrors)
	}
	return nil
}

// AIActionResponse carries the generated text
type AIActionResponse struct {
	Action string `json:"action"`
	Result string `json:"result"`
}
