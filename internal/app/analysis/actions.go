package analysis

import (
	"fmt"
	"strings"

	apperrors "lazo-pipeline/internal/app/errors"
	"lazo-pipeline/internal/app/model"
)

// ActionType names a one-off AI action on a finished transcript
type ActionType string

const (
	ActionSummary       ActionType = "summary"
	ActionTasks         ActionType = "tasks"
	ActionPsychological ActionType = "psychological"
	ActionIntervention  ActionType = "intervention"
	ActionMood          ActionType = "mood"
)

// ErrUnknownAction is returned for an action name outside the supported set
var ErrUnknownAction = apperrors.New("unknown ai action")

var actionAliases = map[string]ActionType{
	"summary":       ActionSummary,
	"resumen":       ActionSummary,
	"tasks":         ActionTasks,
	"tareas":        ActionTasks,
	"psychological": ActionPsychological,
	"psicologico":   ActionPsychological,
	"intervention":  ActionIntervention,
	"intervencion":  ActionIntervention,
	"mood":          ActionMood,
	"animo":         ActionMood,
}

var actionTasks = map[ActionType]string{
	ActionSummary:       "Write an executive summary of the session highlighting the most important points discussed.",
	ActionTasks:         "List every task, commitment or homework mentioned for the patient or the therapist.",
	ActionPsychological: "Analyse thought patterns, defence mechanisms and recurring themes in the patient's discourse.",
	ActionIntervention:  "Suggest three concrete interventions the therapist could apply in the next session.",
	ActionMood:          "Describe how the patient's mood evolved during the session and flag significant shifts.",
}

// ParseAction accepts English names and the Spanish names used by the web client
func ParseAction(name string) (ActionType, error) {
	action, ok := actionAliases[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return "", apperrors.Wrapf(ErrUnknownAction, "%q", name)
	}
	return action, nil
}

// ActionRequest is the input of Router.Act
type ActionRequest struct {
	Transcript     string
	Action         ActionType
	OutputLanguage string
	Patient        model.PatientContext
}

// BuildActionPrompt returns the system and user messages for an AI action
func BuildActionPrompt(req *ActionRequest) (string, string, error) {
	task, ok := actionTasks[req.Action]
	if !ok {
		return "", "", apperrors.Wrapf(ErrUnknownAction, "%q", req.Action)
	}

	system := "You are a clinical assistant for psychologists. Be clinical, professional and precise. " +
		"Use Markdown and do not add an introduction."

	var user strings.Builder
	fmt.Fprintf(&user, "Task: %s\n\n", task)
	writePatientContext(&user, req.Patient)
	user.WriteString("Speaker labels such as [spk_0] mark turns; infer from content which speaker is the patient.\n")
	fmt.Fprintf(&user, "Respond in %s.\n", languageName(req.OutputLanguage))
	fmt.Fprintf(&user, "\nTranscript:\n\"\"\"\n%s\n\"\"\"\n", Sanitize(req.Transcript))

	return system, user.String(), nil
}
