package submit

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"lazo-pipeline/internal/app/model"
	"lazo-pipeline/internal/client"
)

var (
	serverURL      string
	audioPath      string
	userID         string
	inputLanguage  string
	outputLanguage string
	noteFormat     string
	patientName    string
	patientAge     int
	patientGender  string
	highPrecision  bool
	pollInterval   time.Duration
	maxAttempts    int
	noWait         bool
	progress       bool
)

func init() {
	Cmd.Flags().StringVarP(&serverURL, "server", "s", "http://localhost:8081", "session API base URL")
	Cmd.Flags().StringVarP(&audioPath, "audio", "a", "", "recording to upload")
	Cmd.Flags().StringVarP(&userID, "user", "u", "", "caller id")
	Cmd.Flags().StringVar(&inputLanguage, "input-language", "", "spoken language hint, e.g. es-US")
	Cmd.Flags().StringVar(&outputLanguage, "output-language", "", "language of the clinical note")
	Cmd.Flags().StringVarP(&noteFormat, "format", "f", "SOAP", "note format: SOAP, DAP or BIRP")
	Cmd.Flags().StringVar(&patientName, "patient-name", "", "patient name")
	Cmd.Flags().IntVar(&patientAge, "patient-age", 0, "patient age")
	Cmd.Flags().StringVar(&patientGender, "patient-gender", "", "patient gender")
	Cmd.Flags().BoolVar(&highPrecision, "high-precision", false, "use the premium route (ultra plan)")
	Cmd.Flags().DurationVar(&pollInterval, "interval", client.DefaultPollInterval, "poll interval")
	Cmd.Flags().IntVar(&maxAttempts, "max-attempts", client.DefaultMaxAttempts, "give up after this many polls")
	Cmd.Flags().BoolVar(&noWait, "no-wait", false, "print the session id and exit")
	Cmd.Flags().BoolVar(&progress, "progress", false, "force the progress spinner on non-terminals")

	Cmd.MarkFlagRequired("audio")
	Cmd.MarkFlagRequired("user")
}

// Cmd represents the submit command
var Cmd = &cobra.Command{
	Use:   "submit",
	Short: "Upload a session recording and wait for its result",
	RunE: func(cmd *cobra.Command, args []string) error {
		format := model.NoteFormat(strings.ToUpper(noteFormat))
		if !format.Valid() {
			return fmt.Errorf("unsupported note format %q", noteFormat)
		}

		file, err := os.Open(audioPath)
		if err != nil {
			return err
		}
		defer file.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		c := client.New(serverURL, client.WithUserID(userID))
		submittedAt := time.Now()
		accepted, err := c.Submit(ctx, client.SubmitOptions{
			Audio:          file,
			FileName:       filepath.Base(audioPath),
			UserID:         userID,
			InputLanguage:  inputLanguage,
			OutputLanguage: outputLanguage,
			NoteFormat:     format,
			Patient: model.PatientContext{
				Name:   patientName,
				Age:    patientAge,
				Gender: patientGender,
			},
			HighPrecision: highPrecision,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "session %s accepted\n", accepted.SessionID)
		if noWait {
			fmt.Fprintln(cmd.OutOrStdout(), accepted.SessionID)
			return nil
		}

		tracker := client.NewTracker(client.ProgressConfig{
			Enabled: client.ShouldShowProgress(progress),
			Writer:  cmd.ErrOrStderr(),
		}, accepted.SessionID)

		session, err := c.Wait(ctx, accepted.SessionID, client.PollOptions{
			Interval:    pollInterval,
			MaxAttempts: maxAttempts,
			SubmittedAt: submittedAt,
			OnPoll:      tracker.Observe,
		})
		tracker.Finish(err == nil)
		if err != nil {
			return err
		}

		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(session)
	},
}
