package normalize

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"lazo-pipeline/internal/app/biometry"
	"lazo-pipeline/internal/app/model"
	"lazo-pipeline/internal/app/transcript"
)

var (
	inputPath        string
	timestampedOnly  bool
	silenceThreshold float64
)

func init() {
	Cmd.Flags().StringVarP(&inputPath, "input", "i", "-", "raw backend JSON payload, - for stdin")
	Cmd.Flags().BoolVarP(&timestampedOnly, "timestamped", "t", false, "print only the timestamped transcript")
	Cmd.Flags().Float64Var(&silenceThreshold, "silence", 0, "silence threshold in seconds (0 keeps the default)")
}

// report is the offline view of one payload
type report struct {
	Backend     string                 `json:"backend"`
	Normalized  *transcript.Normalized `json:"normalized"`
	Timestamped string                 `json:"timestampedTranscript,omitempty"`
	Biometry    *model.Biometry        `json:"biometry,omitempty"`
}

// Cmd represents the normalize command
var Cmd = &cobra.Command{
	Use:   "normalize",
	Short: "Normalize a saved transcription payload and compute its biometry",
	Long: `Normalize a saved transcription payload and compute its biometry.

The payload shape (Deepgram, ElevenLabs, Groq verbose_json or plain text) is
detected from its structure, so responses captured from any backend can be
replayed offline.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := readInput(cmd)
		if err != nil {
			return err
		}

		result, err := transcript.Detect(raw)
		if err != nil {
			return err
		}
		normalized, err := transcript.Normalize(result)
		if err != nil {
			return err
		}

		var opts []biometry.Option
		if silenceThreshold > 0 {
			opts = append(opts, biometry.WithSilenceThreshold(silenceThreshold))
		}
		engine := biometry.NewEngine(opts...)
		timestamped := engine.Timestamped(normalized)

		if timestampedOnly {
			if timestamped == "" {
				timestamped = normalized.PlainText
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), timestamped)
			return err
		}

		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(report{
			Backend:     result.Backend,
			Normalized:  normalized,
			Timestamped: timestamped,
			Biometry:    engine.Compute(normalized),
		})
	},
}

func readInput(cmd *cobra.Command) ([]byte, error) {
	if inputPath == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(inputPath)
}
