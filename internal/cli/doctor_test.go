package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hoistdev/hoist/internal/upgrade"
)

func TestCountStashes(t *testing.T) {
	dir := t.TempDir()
	write := func(rel string) {
		t.Helper()
		path := filepath.Join(dir, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	write("tool")
	write("tool" + upgrade.DefaultStashSuffix)
	write("libexec/helper" + upgrade.DefaultStashSuffix)
	write("libexec/helper")

	n, err := countStashes(dir, upgrade.DefaultStashSuffix)
	if err != nil {
		t.Fatalf("countStashes() error: %v", err)
	}
	if n != 2 {
		t.Errorf("countStashes() = %d, want 2", n)
	}
}

func TestCountStashes_MissingDir(t *testing.T) {
	n, err := countStashes(filepath.Join(t.TempDir(), "nope"), upgrade.DefaultStashSuffix)
	if err != nil {
		t.Fatalf("countStashes() error: %v", err)
	}
	if n != 0 {
		t.Errorf("countStashes() = %d, want 0", n)
	}
}

func TestProbeWritable(t *testing.T) {
	dir := t.TempDir()
	if err := probeWritable(dir); err != nil {
		t.Errorf("probeWritable() on a temp dir: %v", err)
	}

	// The probe must not leave its scratch file behind.
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("probe left %d file(s) behind", len(entries))
	}
}
