package analysis

import (
	"fmt"
	"strings"

	"lazo-pipeline/internal/app/model"
)

const defaultPatientName = "el paciente"

var noteSections = map[model.NoteFormat]string{
	model.NoteFormatSOAP: `- S (Subjective): the patient's own report of symptoms, feelings and experiences.
- O (Objective): observable affect, tone, behaviour and cooperation during the session.
- A (Assessment): clinical interpretation of S and O, progress, setbacks and recurring themes.
- P (Plan): next steps, homework and focus for the next session.`,
	model.NoteFormatDAP: `- D (Data): subjective and objective information from the session.
- A (Assessment): what the session means for the therapeutic process.
- P (Plan): next steps derived from the assessment.`,
	model.NoteFormatBIRP: `- B (Behavior): observed behaviour and presentation.
- I (Intervention): interventions the therapist used.
- R (Response): how the patient responded to them.
- P (Plan): recommendations for the next session.`,
}

const analysisSchema = `{
  "clinical_note": "markdown note with one header per section",
  "summary": "one paragraph executive summary",
  "topics": [{"label": "topic", "frequency": 25, "sentiment": "Positivo|Negativo|Neutral"}],
  "sentiment": "overall sentiment label",
  "action_items": ["step for therapist or patient"],
  "risk_assessment": {"has_risk": false, "alerts": ["specific concern"], "summary": "brief risk analysis"},
  "entities": [{"name": "entity", "type": "Persona|Proyecto|Ubicación|Otro"}],
  "key_moments": [{"timestamp": 12.5, "label": "what happened"}]
}`

// BuildAnalysisPrompt returns the system and user messages for a clinical analysis call.
// The transcript is sanitized before it is embedded.
func BuildAnalysisPrompt(req *Request) (string, string) {
	format := req.NoteFormat
	if !format.Valid() {
		format = model.NoteFormatSOAP
	}
	language := languageName(req.OutputLanguage)

	var system strings.Builder
	system.WriteString("You are a clinical documentation assistant for psychologists and therapists. ")
	system.WriteString("Use professional clinical language and ground every statement in the transcript. ")
	system.WriteString("Reply with a single JSON object and nothing else.")

	var user strings.Builder
	writePatientContext(&user, req.Patient)
	fmt.Fprintf(&user, "\nWrite the clinical note in %s format with these sections:\n%s\n", format, noteSections[format])
	fmt.Fprintf(&user, "\nWrite every free-text field in %s.\n", language)
	user.WriteString("Speaker labels such as [spk_0] mark turns; infer from content which speaker is the patient.\n")
	user.WriteString("Markers such as [1:30] are elapsed time; key_moments timestamps are seconds taken from the nearest preceding marker.\n")
	fmt.Fprintf(&user, "\nRespond with JSON of this shape:\n%s\n", analysisSchema)
	fmt.Fprintf(&user, "\nTranscript:\n\"\"\"\n%s\n\"\"\"\n", Sanitize(req.Transcript))

	return system.String(), user.String()
}

func writePatientContext(b *strings.Builder, p model.PatientContext) {
	name := p.Name
	if name == "" {
		name = defaultPatientName
	}
	fmt.Fprintf(b, "Session context:\n- Patient: %s\n", name)
	if p.Age > 0 {
		fmt.Fprintf(b, "- Age: %d\n", p.Age)
	}
	if p.Gender != "" {
		fmt.Fprintf(b, "- Gender: %s\n", p.Gender)
	}
}

// languageName maps the client's language codes to a name the model follows reliably
func languageName(code string) string {
	switch strings.ToLower(code) {
	case "", "es", "es-ar", "es-419", "spanish", "español":
		return "Latin American Spanish"
	case "en", "en-us", "english":
		return "English"
	case "pt", "pt-br", "portuguese":
		return "Brazilian Portuguese"
	default:
		return code
	}
}
