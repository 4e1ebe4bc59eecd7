package export

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"lazo-pipeline/internal/api/v1/dto"
	"lazo-pipeline/internal/app/export"
	"lazo-pipeline/internal/app/model"
	"lazo-pipeline/internal/client"
)

var (
	sessionID      string
	serverURL      string
	inputPath      string
	outputFilePath string
)

func init() {
	Cmd.Flags().StringVar(&sessionID, "session", "", "session id to fetch from the API")
	Cmd.Flags().StringVarP(&serverURL, "server", "s", "http://localhost:8081", "session API base URL")
	Cmd.Flags().StringVarP(&inputPath, "input", "i", "", "saved session JSON (as printed by submit)")
	Cmd.Flags().StringVarP(&outputFilePath, "outputFilePath", "o", "", "xlsx file to write")

	Cmd.MarkFlagRequired("outputFilePath")
	Cmd.MarkFlagsMutuallyExclusive("session", "input")
	Cmd.MarkFlagsOneRequired("session", "input")
}

// Cmd represents the export command
var Cmd = &cobra.Command{
	Use:   "export",
	Short: "Export a completed session to excel",
	RunE: func(cmd *cobra.Command, args []string) error {
		session, err := loadSession(cmd.Context())
		if err != nil {
			return err
		}

		job := &model.SessionJob{
			ID:           session.ID,
			State:        session.State,
			Mode:         session.Mode,
			Result:       session.Result,
			ErrorMessage: session.Error,
			CreatedAt:    session.CreatedAt,
			UpdatedAt:    session.UpdatedAt,
		}
		if err := export.ToExcel(job, outputFilePath); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "export finished, exported file path: %v\n", outputFilePath)
		return nil
	},
}

func loadSession(ctx context.Context) (*dto.SessionResponse, error) {
	if sessionID != "" {
		return client.New(serverURL).Get(ctx, sessionID)
	}

	data, err := os.ReadFile(inputPath)
	if err != nil {
		return nil, err
	}
	var session dto.SessionResponse
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", inputPath, err)
	}
	return &session, nil
}
