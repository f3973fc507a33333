package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"photomesh/internal/apperr"
	"photomesh/internal/logging"
	"photomesh/internal/validate"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] <input-folder>",
	Short: "Run the input checks without rendering",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		cfg.InputDir = args[0]

		logger, closeLog, err := logging.New(logging.Options{Verbose: cfg.Verbose})
		if err != nil {
			return err
		}
		defer closeLog()

		report, err := validate.New(logger).ValidateDir(context.Background(), cfg.InputDir, cfg.Policy())
		if report.Total > 0 {
			fmt.Fprintln(cmd.OutOrStdout(), reportSummary(report).Render())
		}
		if err != nil {
			logger.Error(err.Error(), zap.String("kind", apperr.KindOf(err)))
			return errReported
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
