package model

// ClinicalAnalysis is the structured output of the language-model analysis step
type ClinicalAnalysis struct {
	ClinicalNote   string         `json:"clinical_note"`
	Summary        string         `json:"summary"`
	Topics         []Topic        `json:"topics"`
	Sentiment      string         `json:"sentiment"`
	ActionItems    []string       `json:"action_items"`
	RiskAssessment RiskAssessment `json:"risk_assessment"`
	Entities       []Entity       `json:"entities"`
	KeyMoments     []KeyMoment    `json:"key_moments,omitempty"`
}

type Topic struct {
	Label     string  `json:"label"`
	Frequency float64 `json:"frequency"`
	Sentiment string  `json:"sentiment"`
}

type RiskAssessment struct {
	HasRisk bool     `json:"has_risk"`
	Alerts  []string `json:"alerts"`
	Summary string   `json:"summary"`
}

type Entity struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// KeyMoment points at a second offset in the recording
type KeyMoment struct {
	Timestamp float64 `json:"timestamp"`
	Label     string  `json:"label"`
}

// Biometry holds talk/listen and silence statistics for a session.
// It is only produced when speaker attribution exists.
type Biometry struct {
	TalkListenRatio TalkListenRatio `json:"talkListenRatio"`
	Silences        []Silence       `json:"silences"`
}

// TalkListenRatio percentages always sum to 100
type TalkListenRatio struct {
	Therapist int `json:"therapist"`
	Patient   int `json:"patient"`
}

type Silence struct {
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
}
