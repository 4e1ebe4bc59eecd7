package export

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx"
	"lazo-pipeline/internal/app/model"
)

func completedJob() *model.SessionJob {
	created := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	return &model.SessionJob{
		ID:        "job-1",
		OwnerID:   "user-1",
		State:     model.JobStateCompleted,
		Mode:      model.ModeHighPrecision,
		CreatedAt: created,
		UpdatedAt: created.Add(time.Minute),
		Result: &model.SessionResult{
			Transcript:            "Hola buenas",
			TimestampedTranscript: "Hola\n[spk_1]: buenas",
			NoteFormat:            model.NoteFormatSOAP,
			Analysis: &model.ClinicalAnalysis{
				Summary:     "Primera sesión",
				ActionItems: []string{"diario", "respiración"},
				Topics:      []model.Topic{{Label: "ansiedad", Frequency: 0.5, Sentiment: "negative"}},
			},
			Biometry: &model.Biometry{
				TalkListenRatio: model.TalkListenRatio{Therapist: 40, Patient: 60},
				Silences:        []model.Silence{{Start: 1, Duration: 2.5}},
			},
			ProcessingInfo: model.ProcessingInfo{
				Mode:                 model.ModeHighPrecision,
				TranscriptionBackend: "deepgram",
				AnalysisBackend:      "gemini",
			},
		},
	}
}

func cellValues(sheet *xlsx.Sheet, row int) []string {
	var values []string
	for _, cell := range sheet.Rows[row].Cells {
		values = append(values, cell.Value)
	}
	return values
}

func TestWorkbook(t *testing.T) {
	file, err := Workbook(completedJob())
	require.NoError(t, err)

	require.Len(t, file.Sheets, 4)
	session := file.Sheet[SheetSession]
	require.NotNil(t, session)
	assert.Equal(t, []string{"ID", "job-1"}, cellValues(session, 0))
	assert.Equal(t, []string{"Transcription Backend", "deepgram"}, cellValues(session, 5))

	transcript := file.Sheet[SheetTranscript]
	require.Len(t, transcript.Rows, 3)
	assert.Equal(t, []string{"2", "[spk_1]: buenas"}, cellValues(transcript, 2))

	analysis := file.Sheet[SheetAnalysis]
	assert.Equal(t, []string{"Action Items", "diario; respiración"}, cellValues(analysis, 6))

	biometry := file.Sheet[SheetBiometry]
	assert.Equal(t, []string{"Patient %", "60"}, cellValues(biometry, 1))
	assert.Equal(t, []string{"1.00", "2.50"}, cellValues(biometry, 4))
}

func TestWorkbookWithoutBiometry(t *testing.T) {
	job := completedJob()
	job.Result.Biometry = nil
	job.Result.TimestampedTranscript = ""

	file, err := Workbook(job)
	require.NoError(t, err)
	assert.Nil(t, file.Sheet[SheetBiometry])
	assert.Equal(t, []string{"1", "Hola buenas"}, cellValues(file.Sheet[SheetTranscript], 1))
}

func TestWorkbookRequiresResult(t *testing.T) {
	_, err := Workbook(&model.SessionJob{ID: "job-2", State: model.JobStateError})
	assert.ErrorIs(t, err, ErrNoResult)
}

func TestToExcel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.xlsx")
	require.NoError(t, ToExcel(completedJob(), path))

	file, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	assert.Equal(t, "job-1", file.Sheet[SheetSession].Rows[0].Cells[1].Value)
}
