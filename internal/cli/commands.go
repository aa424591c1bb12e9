package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"finassist/internal/core"
	"finassist/internal/tools"
)

// NewUserCommand creates the user command.
func NewUserCommand(newApp AppFactory) *cobra.Command {
	var period string
	cmd := &cobra.Command{
		Use:   "user <user-id>",
		Short: "Show a user's profile and salary",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(newApp, func(cmd *cobra.Command, app *App, args []string) (any, error) {
			id, err := parseID(args[0], "user id")
			if err != nil {
				return nil, err
			}
			return app.Services.Users.Profile(cmd.Context(), id, period)
		}),
	}
	cmd.Flags().StringVar(&period, "period", "", "budget period the salary is read from (default: configured period)")
	return cmd
}

// NewAnalyzeCommand creates the analyze command.
func NewAnalyzeCommand(newApp AppFactory) *cobra.Command {
	var export bool
	cmd := &cobra.Command{
		Use:   "analyze <user-id>",
		Short: "Summarize the last three months of spending",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(newApp, func(cmd *cobra.Command, app *App, args []string) (any, error) {
			id, err := parseID(args[0], "user id")
			if err != nil {
				return nil, err
			}
			insights, err := app.Services.Spending.Analyze(cmd.Context(), id)
			if err != nil {
				return nil, err
			}
			if export {
				path, err := app.Reports.Write(id, insights)
				if err != nil {
					return nil, core.Fail(core.ErrStorage, "The spending report could not be written.", err)
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "Report written to %s\n", path)
			}
			return insights, nil
		}),
	}
	cmd.Flags().BoolVar(&export, "export", false, "also write the summary as an xlsx workbook")
	return cmd
}

// NewAdviceCommand creates the advice command.
func NewAdviceCommand(newApp AppFactory) *cobra.Command {
	var period string
	cmd := &cobra.Command{
		Use:   "advice <user-id>",
		Short: "Show the budget figures financial advice is based on",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(newApp, func(cmd *cobra.Command, app *App, args []string) (any, error) {
			id, err := parseID(args[0], "user id")
			if err != nil {
				return nil, err
			}
			return app.Services.Budgets.Evaluate(cmd.Context(), id, period)
		}),
	}
	cmd.Flags().StringVar(&period, "period", "", "budget period (default: configured period, else the current month)")
	return cmd
}

// NewPredictCommand creates the predict command.
func NewPredictCommand(newApp AppFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "predict <user-id>",
		Short: "Forecast next month's spending",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(newApp, func(cmd *cobra.Command, app *App, args []string) (any, error) {
			id, err := parseID(args[0], "user id")
			if err != nil {
				return nil, err
			}
			return app.Services.Forecasts.Predict(cmd.Context(), id)
		}),
	}
}

// NewRecordCommand creates the record command.
func NewRecordCommand(newApp AppFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "record <sentence>",
		Short: "Record a transaction from a sentence",
		Long: `Record a transaction from a sentence of the form

  User <id> spent <amount> ETB for <purpose> via <payment method> today

The words may be passed quoted or unquoted.`,
		Args: cobra.MinimumNArgs(1),
		RunE: withApp(newApp, func(cmd *cobra.Command, app *App, args []string) (any, error) {
			tx, err := app.Services.Ledger.RecordText(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return nil, err
			}
			return core.NewRecordedTransaction(tx), nil
		}),
	}
}

// NewReceiptCommand creates the receipt command.
func NewReceiptCommand(newApp AppFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "receipt <transaction-id>",
		Short: "Render the PDF receipt of a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(newApp, func(cmd *cobra.Command, app *App, args []string) (any, error) {
			id, err := parseID(args[0], "transaction id")
			if err != nil {
				return nil, err
			}
			return app.Services.Receipts.Generate(cmd.Context(), id)
		}),
	}
}

// NewToolsCommand creates the tools command group.
func NewToolsCommand(newApp AppFactory) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tools",
		Short: "List or call the assistant tools",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Print the tool declarations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return printJSON(cmd.OutOrStdout(), tools.Declarations())
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "call <tool-name> [arguments-json]",
		Short: "Call one tool with JSON arguments",
		Example: `  finassist tools call analyze_spending '{"user_id": 7}'
  finassist tools call record_transaction '{"user_input": "User 7 spent 250 ETB for groceries via CBE today"}'`,
		Args: cobra.RangeArgs(1, 2),
		RunE: withApp(newApp, func(cmd *cobra.Command, app *App, args []string) (any, error) {
			var raw json.RawMessage
			if len(args) == 2 {
				raw = json.RawMessage(args[1])
			}
			result := app.Tools.Dispatch(cmd.Context(), args[0], raw)
			if failed, ok := result.(tools.ErrorResult); ok {
				return nil, errors.New(failed.Error)
			}
			return result, nil
		}),
	})

	return cmd
}
