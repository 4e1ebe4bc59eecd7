package model

import (
	"time"
)

// JobState is the lifecycle state of a session job
type JobState string

const (
	JobStateProcessing JobState = "processing"
	JobStateCompleted  JobState = "completed"
	JobStateError      JobState = "error"
)

// IsTerminal reports whether the state can no longer change
func (s JobState) IsTerminal() bool {
	return s == JobStateCompleted || s == JobStateError
}

// ProcessingMode records which precision tier a job ran under
type ProcessingMode string

const (
	ModeStandard      ProcessingMode = "standard"
	ModeHighPrecision ProcessingMode = "high_precision"
)

// ModeFor maps the high precision flag to a processing mode
func ModeFor(highPrecision bool) ProcessingMode {
	if highPrecision {
		return ModeHighPrecision
	}
	return ModeStandard
}

// SessionJob is one asynchronous submission-to-result unit of work.
// Result is set only when State is completed, ErrorMessage only when State is error.
type SessionJob struct {
	ID           string         `json:"id" db:"id"`
	OwnerID      string         `json:"owner_id" db:"owner_id"`
	State        JobState       `json:"state" db:"state"`
	Mode         ProcessingMode `json:"mode" db:"mode"`
	Result       *SessionResult `json:"result,omitempty" db:"result"`
	ErrorMessage string         `json:"error_message,omitempty" db:"error_message"`
	CreatedAt    time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at" db:"updated_at"`
}

// TableName returns the table name for SessionJob
func (SessionJob) TableName() string {
	return "session_jobs"
}

// NoteFormat is the structure requested for the clinical note
type NoteFormat string

const (
	NoteFormatSOAP NoteFormat = "SOAP"
	NoteFormatDAP  NoteFormat = "DAP"
	NoteFormatBIRP NoteFormat = "BIRP"
)

// Valid reports whether f is one of the supported note formats
func (f NoteFormat) Valid() bool {
	switch f {
	case NoteFormatSOAP, NoteFormatDAP, NoteFormatBIRP:
		return true
	}
	return false
}

// PatientContext is optional context forwarded to the analysis step
type PatientContext struct {
	Name   string `json:"name,omitempty"`
	Age    int    `json:"age,omitempty"`
	Gender string `json:"gender,omitempty"`
}

// ProcessingInfo records which backends served a completed job
type ProcessingInfo struct {
	Mode                 ProcessingMode `json:"mode"`
	TranscriptionBackend string         `json:"transcriptionBackend"`
	AnalysisBackend      string         `json:"analysisBackend"`
}

// SessionResult is the full result tuple persisted on completion
type SessionResult struct {
	Transcript            string            `json:"transcript"`
	TimestampedTranscript string            `json:"timestampedTranscript,omitempty"`
	Analysis              *ClinicalAnalysis `json:"analysis"`
	Biometry              *Biometry         `json:"biometry,omitempty"`
	NoteFormat            NoteFormat        `json:"noteFormat"`
	ProcessingInfo        ProcessingInfo    `json:"processingInfo"`
}
