package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/GioMjds/commitly/internal/result"
	"github.com/GioMjds/commitly/internal/ui"
	"github.com/spf13/cobra"
)

// Exit codes.
const (
	exitUser    = 1 // bad input, missing entry, not signed in
	exitRuntime = 2 // storage or network failure
)

// ExitError carries the process exit code for a failed command. The
// message has already been printed when Reported is set.
type ExitError struct {
	Code     int
	Err      error
	Reported bool
}

func (e *ExitError) Error() string { return e.Err.Error() }
func (e *ExitError) Unwrap() error { return e.Err }

func userError(format string, args ...any) error {
	return &ExitError{Code: exitUser, Err: fmt.Errorf(format, args...)}
}

// ExitCode maps an error returned by Execute to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var ee *ExitError
	if errors.As(err, &ee) {
		return ee.Code
	}
	return exitUser
}

// PrintError writes err to w unless the command already reported it.
func PrintError(w io.Writer, err error) {
	var ee *ExitError
	if errors.As(err, &ee) && ee.Reported {
		return
	}
	fmt.Fprintln(w, "Error:", err)
}

// codeFor maps result codes to exit codes. Benign outcomes exit 0.
func codeFor(r result.Result) int {
	switch {
	case r.Success, r.Is(result.CodeAlreadyClosed), r.Is(result.CodeSyncDisabled):
		return 0
	case r.Is(result.CodeFailed):
		return exitRuntime
	default:
		return exitUser
	}
}

// finish prints a result (as JSON with --json) and converts failures
// into an ExitError. render, when non-nil, prints successful results in
// text mode instead of the plain message.
func finish(cmd *cobra.Command, r result.Result, render func(w io.Writer)) error {
	out := cmd.OutOrStdout()
	switch {
	case jsonOutput:
		if err := ui.FormatJSON(out, r); err != nil {
			return err
		}
	case r.Success && render != nil:
		render(out)
	case r.Success || codeFor(r) == 0:
		ui.FormatResult(out, r, theme)
	default:
		ui.FormatResult(cmd.ErrOrStderr(), r, theme)
	}

	if code := codeFor(r); code != 0 {
		return &ExitError{Code: code, Err: errors.New(r.Message), Reported: true}
	}
	return nil
}
