package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// NewRootCommand creates the finassist command tree. Every subcommand builds its App
// through newApp.
func NewRootCommand(newApp AppFactory) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "finassist",
		Short: "Personal finance assistant",
		Long: `finassist records transactions from plain sentences and reports on them:
spending summaries, budget inputs for advice, forecasts and PDF receipts.

Configuration is read from the environment and an optional .env file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(NewUserCommand(newApp))
	cmd.AddCommand(NewAnalyzeCommand(newApp))
	cmd.AddCommand(NewAdviceCommand(newApp))
	cmd.AddCommand(NewPredictCommand(newApp))
	cmd.AddCommand(NewRecordCommand(newApp))
	cmd.AddCommand(NewReceiptCommand(newApp))
	cmd.AddCommand(NewToolsCommand(newApp))
	cmd.AddCommand(NewUsersCommand(newApp))
	cmd.AddCommand(NewBudgetsCommand(newApp))
	cmd.AddCommand(NewServeCommand(newApp))

	return cmd
}

// Execute runs cmd with args and returns the process exit code. Failures print their
// user-facing message to stderr.
func Execute(ctx context.Context, cmd *cobra.Command, args []string, stderr io.Writer) int {
	cmd.SetArgs(args)
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(stderr, errorMessage(err))
		return ExitFailure
	}
	return ExitSuccess
}
