package upgrade

import (
	"errors"
	"fmt"
)

// Error codes for configuration and cleanup failures.
const (
	CodeBadRepo           = 1
	CodeAssetNotMapped    = 2
	CodeAssetNotInRelease = 3
	CodeNoReleases        = 4
	CodeCleanupFailed     = 10
)

// Error code bands for pipeline failures. Bands that cover network fetches
// embed the HTTP status code when one exists (1404 is a direct download that
// returned 404); the bare band value marks a transport-level failure.
const (
	BandDirectFetch  = 1000
	BandAPIFetch     = 2000
	BandListReleases = 3000
	BandExtract      = 4000
	BandStash        = 5000
	BandInstall      = 6000
	BandChecksum     = 7000
)

// Error is the engine's failure type: a message, a numeric code, and a
// metadata bag capturing causal context (repo, tag, asset, phase, paths).
// Any configured code offset is already applied by the time an Error leaves
// the engine.
type Error struct {
	Code int
	Meta map[string]any

	msg   string
	cause error
}

func newError(code int, cause error, msg string, meta map[string]any) *Error {
	if meta == nil {
		meta = map[string]any{}
	}
	return &Error{Code: code, Meta: meta, msg: msg, cause: cause}
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.cause)
	}
	return e.msg
}

func (e *Error) Unwrap() error {
	return e.cause
}

// AsError unwraps err to the engine's Error type.
func AsError(err error) (*Error, bool) {
	var ue *Error
	if errors.As(err, &ue) {
		return ue, true
	}
	return nil, false
}

// Category reduces a code (with any offset already removed) to its band:
// banded codes collapse to the band value, small codes are their own
// category.
func Category(code int) int {
	if code >= BandDirectFetch {
		return code / 1000 * 1000
	}
	return code
}

// bandCode combines a band with an HTTP status when one exists.
func bandCode(band, status int) int {
	if status > 0 {
		return band + status
	}
	return band
}
