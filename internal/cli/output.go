package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"finassist/internal/core"
)

// Exit codes for CLI commands.
const (
	ExitSuccess = 0
	ExitFailure = 1
)

// printJSON writes v as indented JSON.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// errorMessage is the text shown for a failed command: the user-facing message of a
// domain failure, otherwise the error itself.
func errorMessage(err error) string {
	var f *core.Failure
	if errors.As(err, &f) {
		return f.Message
	}
	return err.Error()
}

func parseID(raw, what string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, core.Fail(core.ErrParse, fmt.Sprintf("Invalid %s %q.", what, raw), err)
	}
	return id, nil
}

// runner is the body of a command that prints one JSON result.
type runner func(cmd *cobra.Command, app *App, args []string) (any, error)

// withApp builds the App, runs fn, prints its result and closes the App.
func withApp(newApp AppFactory, fn runner) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer func() {
			if err := app.Close(); err != nil {
				app.Log.WarnContext(cmd.Context(), "Failed to release resources", "error", err)
			}
		}()

		result, err := fn(cmd, app, args)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), result)
	}
}
