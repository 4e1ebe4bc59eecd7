// Package export renders finished sessions as spreadsheet reports.
package export

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/tealeg/xlsx"
	"lazo-pipeline/internal/app/model"
)

// Sheet names of a session report
const (
	SheetSession    = "Session"
	SheetTranscript = "Transcript"
	SheetAnalysis   = "Analysis"
	SheetBiometry   = "Biometry"
)

// ErrNoResult is returned for jobs that did not complete
var ErrNoResult = errors.New("session has no result to export")

// Workbook builds the report of a completed job
func Workbook(job *model.SessionJob) (*xlsx.File, error) {
	if job == nil || job.Result == nil {
		return nil, ErrNoResult
	}
	result := job.Result

	file := xlsx.NewFile()

	sheet, err := file.AddSheet(SheetSession)
	if err != nil {
		return nil, err
	}
	addPair(sheet, "ID", job.ID)
	addPair(sheet, "Owner", job.OwnerID)
	addPair(sheet, "State", string(job.State))
	addPair(sheet, "Mode", string(result.ProcessingInfo.Mode))
	addPair(sheet, "Note Format", string(result.NoteFormat))
	addPair(sheet, "Transcription Backend", result.ProcessingInfo.TranscriptionBackend)
	addPair(sheet, "Analysis Backend", result.ProcessingInfo.AnalysisBackend)
	addPair(sheet, "Created", job.CreatedAt.Format(time.RFC3339))
	addPair(sheet, "Updated", job.UpdatedAt.Format(time.RFC3339))

	sheet, err = file.AddSheet(SheetTranscript)
	if err != nil {
		return nil, err
	}
	addRow(sheet, "Line", "Text")
	text := result.TimestampedTranscript
	if text == "" {
		text = result.Transcript
	}
	for i, line := range lo.Compact(strings.Split(text, "\n")) {
		addRow(sheet, fmt.Sprint(i+1), line)
	}

	if result.Analysis != nil {
		sheet, err = file.AddSheet(SheetAnalysis)
		if err != nil {
			return nil, err
		}
		writeAnalysis(sheet, result.Analysis)
	}

	if result.Biometry != nil {
		sheet, err = file.AddSheet(SheetBiometry)
		if err != nil {
			return nil, err
		}
		writeBiometry(sheet, result.Biometry)
	}

	return file, nil
}

// ToExcel writes the report of job to outputFilePath
func ToExcel(job *model.SessionJob, outputFilePath string) error {
	file, err := Workbook(job)
	if err != nil {
		return err
	}
	if err := file.Save(outputFilePath); err != nil {
		return fmt.Errorf("failed to save %s: %w", outputFilePath, err)
	}
	return nil
}

func writeAnalysis(sheet *xlsx.Sheet, a *model.ClinicalAnalysis) {
	addPair(sheet, "Summary", a.Summary)
	addPair(sheet, "Clinical Note", a.ClinicalNote)
	addPair(sheet, "Sentiment", a.Sentiment)
	addPair(sheet, "Risk", fmt.Sprint(a.RiskAssessment.HasRisk))
	addPair(sheet, "Risk Summary", a.RiskAssessment.Summary)
	addPair(sheet, "Risk Alerts", strings.Join(a.RiskAssessment.Alerts, "; "))
	addPair(sheet, "Action Items", strings.Join(a.ActionItems, "; "))

	sheet.AddRow()
	addRow(sheet, "Topic", "Frequency", "Sentiment")
	for _, topic := range a.Topics {
		addRow(sheet, topic.Label, fmt.Sprintf("%.2f", topic.Frequency), topic.Sentiment)
	}

	if len(a.Entities) > 0 {
		sheet.AddRow()
		addRow(sheet, "Entity", "Type")
		for _, entity := range a.Entities {
			addRow(sheet, entity.Name, entity.Type)
		}
	}
}

func writeBiometry(sheet *xlsx.Sheet, b *model.Biometry) {
	addPair(sheet, "Therapist %", fmt.Sprint(b.TalkListenRatio.Therapist))
	addPair(sheet, "Patient %", fmt.Sprint(b.TalkListenRatio.Patient))

	sheet.AddRow()
	addRow(sheet, "Silence Start (s)", "Duration (s)")
	for _, silence := range b.Silences {
		addRow(sheet, fmt.Sprintf("%.2f", silence.Start), fmt.Sprintf("%.2f", silence.Duration))
	}
}

func addPair(sheet *xlsx.Sheet, label, value string) {
	addRow(sheet, label, value)
}

func addRow(sheet *xlsx.Sheet, values ...string) {
	row := sheet.AddRow()
	for _, v := range values {
		row.AddCell().Value = v
	}
}
