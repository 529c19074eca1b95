package cli

import (
	"fmt"

	"github.com/hoistdev/hoist/internal/config"
	"github.com/hoistdev/hoist/internal/upgrade"
)

// ExitError signals a non-zero exit code without forcing os.Exit inside
// RunE handlers; Execute unwraps it at the top level.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// exitCodeFor reduces an engine failure to a small process exit code: the
// band digit for pipeline failures, the code itself for configuration and
// cleanup failures, 1 for anything that is not an engine error. The full
// code stays visible in the printed message.
func exitCodeFor(err error, offset int) int {
	ue, ok := upgrade.AsError(err)
	if !ok {
		return 1
	}
	cat := upgrade.Category(ue.Code - offset)
	if cat >= 1000 {
		return cat / 1000
	}
	if cat <= 0 || cat > 125 {
		return 1
	}
	return cat
}

// failure wraps an engine error for the root handler, printing the full
// numeric code while exiting with its small category code.
func failure(err error) error {
	code := exitCodeFor(err, config.GetInt("code_offset"))
	if ue, ok := upgrade.AsError(err); ok {
		return &ExitError{Code: code, Err: fmt.Errorf("error %d: %w", ue.Code, ue)}
	}
	return &ExitError{Code: code, Err: err}
}
