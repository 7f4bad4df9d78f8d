// -- cmd/generate.go --
package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xkilldash9x/oxtest-cli/api/schemas"
	"github.com/xkilldash9x/oxtest-cli/internal/observability"
	"github.com/xkilldash9x/oxtest-cli/internal/oxtest"
)

var (
	generateURL    string
	generateOutput string
)

var generateCmd = &cobra.Command{
	Use:   "generate <instruction>",
	Short: "Decompose one instruction into OXTest source without executing it.",
	Long: `Generate runs the three-pass decomposition against a live page and prints
the resulting OXTest commands instead of executing them. The page is only
read, never acted on.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := observability.GetLogger()
		instruction := args[0]

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		stk, err := buildStack(ctx, logger, appCfg)
		if err != nil {
			return err
		}
		defer stk.Close()

		// The page must be loaded before snapshots mean anything.
		navResult, err := stk.deps.Executor.Execute(ctx, schemas.StructuredCommand{
			Kind:   schemas.KindNavigate,
			Params: map[string]string{"url": generateURL},
		})
		if err != nil {
			return err
		}
		if !navResult.Success {
			return fmt.Errorf("failed to load %s: %s", generateURL, navResult.Error)
		}

		// Generation never executes; drop the executor so a bug cannot
		// reach the page.
		deps := stk.deps
		deps.Executor = nil

		engine, err := newEngine(logger, deps)
		if err != nil {
			return err
		}

		result, err := engine.Decompose(ctx, instruction)
		if err != nil {
			return err
		}
		logger.Info("Instruction decomposed",
			zap.String("decomposition_id", result.ID),
			zap.Int("commands", len(result.Commands)))

		var sb strings.Builder
		fmt.Fprintf(&sb, "# %s\n", instruction)
		for _, c := range result.Commands {
			sb.WriteString(oxtest.Format(c) + "\n")
		}

		if generateOutput == "" || generateOutput == "stdout" {
			fmt.Print(sb.String())
			return nil
		}
		return os.WriteFile(generateOutput, []byte(sb.String()), 0o644)
	},
}

func init() {
	generateCmd.Flags().StringVarP(&generateURL, "url", "u", "", "URL of the page to decompose against (required)")
	generateCmd.Flags().StringVarP(&generateOutput, "output", "o", "", "write OXTest source to a file instead of stdout")
	generateCmd.MarkFlagRequired("url")
	rootCmd.AddCommand(generateCmd)
}
