package migrate

import (
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"lazo-pipeline/internal/app/common"
	dbmigrate "lazo-pipeline/internal/app/repository/migrate"
	"lazo-pipeline/internal/app/repository/pg"
	"lazo-pipeline/internal/app/repository/sqlite"
)

var (
	sqlitePath  string
	postgresDSN string
	afterJobID  string
	batchSize   int
)

func init() {
	Cmd.Flags().StringVar(&sqlitePath, "sqlite", "data/lazo.db", "source sqlite database")
	Cmd.Flags().StringVar(&postgresDSN, "postgres", "", "destination postgres connection string")
	Cmd.Flags().StringVar(&afterJobID, "after", "", "resume after this job id")
	Cmd.Flags().IntVar(&batchSize, "batch", 500, "jobs per transaction")

	Cmd.MarkFlagRequired("postgres")
}

// Cmd represents the migrate command
var Cmd = &cobra.Command{
	Use:   "migrate",
	Short: "Copy profiles and session jobs from sqlite to postgres",
	Long: `Copy profiles and session jobs from sqlite to postgres.

Rows already present in postgres are skipped, so an interrupted run can be
repeated, or resumed with --after using the last job id it logged.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := common.NewLogger(true)
		if err != nil {
			return err
		}
		defer logger.Sync()

		src, err := sql.Open("sqlite3", sqlite.FileDSN(sqlitePath))
		if err != nil {
			return fmt.Errorf("failed to open sqlite: %w", err)
		}
		defer src.Close()

		dst, err := pg.NewPostgresDB(postgresDSN)
		if err != nil {
			return err
		}
		defer dst.Close()
		if err := dst.Migrate(); err != nil {
			return err
		}

		stats, err := dbmigrate.SQLiteToPostgres(cmd.Context(), src, dst.DB(), afterJobID, batchSize, logger)
		if err != nil {
			return err
		}
		logger.Info("Migration finished",
			zap.Int("profiles", stats.Profiles),
			zap.Int("jobs", stats.Jobs),
			zap.Int("skipped", stats.Skipped),
			zap.String("last_job", stats.LastJob))
		return nil
	},
}
