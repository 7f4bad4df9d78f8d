// -- cmd/run.go --
package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xkilldash9x/oxtest-cli/api/schemas"
	"github.com/xkilldash9x/oxtest-cli/internal/observability"
	"github.com/xkilldash9x/oxtest-cli/internal/report"
	"github.com/xkilldash9x/oxtest-cli/internal/runner"
)

var runCmd = &cobra.Command{
	Use:   "run <suite.yaml>",
	Short: "Decompose and execute a suite of natural-language tests.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := observability.GetLogger()

		suite, err := runner.LoadSuite(args[0])
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		stk, err := buildStack(ctx, logger, appCfg)
		if err != nil {
			return err
		}
		defer stk.Close()

		r, err := runner.NewForMode(logger, appCfg.Decomposer, stk.deps)
		if err != nil {
			return err
		}

		result, err := r.Run(ctx, suite)
		if err != nil {
			return err
		}

		writeReports(logger, &result)

		if !result.Passed() {
			return fmt.Errorf("suite %q failed", suite.Name)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}

// writeReports renders the suite result in every configured format. A broken
// reporter is logged and skipped; it must not take the other formats down
// with it.
func writeReports(logger *zap.Logger, result *schemas.SuiteResult) {
	for _, format := range appCfg.Report.Formats {
		path := report.OutputPath(format, appCfg.Report.OutputDir)
		reporter, err := report.New(format, path)
		if err != nil {
			logger.Error("Failed to create reporter", zap.String("format", format), zap.Error(err))
			continue
		}
		if err := reporter.Write(result); err != nil {
			logger.Error("Failed to write report", zap.String("format", format), zap.Error(err))
		}
		if err := reporter.Close(); err != nil {
			logger.Error("Failed to close reporter", zap.String("format", format), zap.Error(err))
		}
	}
}
