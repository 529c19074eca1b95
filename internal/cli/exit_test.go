package cli

import (
	"errors"
	"strings"
	"testing"

	"github.com/hoistdev/hoist/internal/upgrade"
)

func TestExitCodeFor(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		offset int
		want   int
	}{
		{"direct fetch 404", &upgrade.Error{Code: 1404}, 0, 1},
		{"direct fetch transport", &upgrade.Error{Code: 1000}, 0, 1},
		{"api fetch 500", &upgrade.Error{Code: 2500}, 0, 2},
		{"release list", &upgrade.Error{Code: 3000}, 0, 3},
		{"extract", &upgrade.Error{Code: 4000}, 0, 4},
		{"stash", &upgrade.Error{Code: 5000}, 0, 5},
		{"install", &upgrade.Error{Code: 6000}, 0, 6},
		{"checksum 404", &upgrade.Error{Code: 7404}, 0, 7},
		{"bad repo", &upgrade.Error{Code: upgrade.CodeBadRepo}, 0, 1},
		{"asset not mapped", &upgrade.Error{Code: upgrade.CodeAssetNotMapped}, 0, 2},
		{"no releases", &upgrade.Error{Code: upgrade.CodeNoReleases}, 0, 4},
		{"cleanup failed", &upgrade.Error{Code: upgrade.CodeCleanupFailed}, 0, 10},
		{"offset stripped before banding", &upgrade.Error{Code: 51404}, 50000, 1},
		{"offset stripped small code", &upgrade.Error{Code: 50002}, 50000, 2},
		{"wrapped engine error", &ExitError{Err: &upgrade.Error{Code: 6000}}, 0, 6},
		{"not an engine error", errors.New("plain failure"), 0, 1},
		{"nil", nil, 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := exitCodeFor(tt.err, tt.offset)
			if got != tt.want {
				t.Errorf("exitCodeFor() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestFailure_KeepsFullCodeInMessage(t *testing.T) {
	err := failure(&upgrade.Error{Code: 1404})

	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("failure() returned %T, want *ExitError", err)
	}
	if exitErr.Code != 1 {
		t.Errorf("exit code = %d, want 1", exitErr.Code)
	}
	if !strings.Contains(exitErr.Error(), "error 1404") {
		t.Errorf("message %q should carry the full numeric code", exitErr.Error())
	}
}

func TestFailure_PlainError(t *testing.T) {
	err := failure(errors.New("tools file missing"))

	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("failure() returned %T, want *ExitError", err)
	}
	if exitErr.Code != 1 {
		t.Errorf("exit code = %d, want 1", exitErr.Code)
	}
	if exitErr.Error() != "tools file missing" {
		t.Errorf("message = %q", exitErr.Error())
	}
}

func TestExitError_Message(t *testing.T) {
	err := &ExitError{Code: 3, Err: errors.New("fetching release list: boom")}
	if err.Error() != "fetching release list: boom" {
		t.Errorf("Error() = %q", err.Error())
	}

	bare := &ExitError{Code: 2}
	if bare.Error() != "exit status 2" {
		t.Errorf("Error() = %q", bare.Error())
	}
}
