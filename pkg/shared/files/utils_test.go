package files

import (
	"os"
	"path/filepath"
	"testing"
)

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	got, err := ExpandPath("~/results.json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := filepath.Join(home, "results.json"); got != want {
		t.Fatalf("ExpandPath() = %q, want %q", got, want)
	}

	got, err = ExpandPath("relative/results.json")
	if err != nil || got != "relative/results.json" {
		t.Fatalf("ExpandPath() = %q, %v; want unchanged", got, err)
	}
}

func TestValidatePath(t *testing.T) {
	tmpDir := t.TempDir()
	file := filepath.Join(tmpDir, "results.json")
	if err := os.WriteFile(file, []byte("{}"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := ValidatePath(file); err != nil {
		t.Fatalf("ValidatePath(file) unexpected error: %v", err)
	}
	if err := ValidatePath(tmpDir); err == nil {
		t.Fatal("ValidatePath(dir) expected error")
	}
	if err := ValidatePath(filepath.Join(tmpDir, "missing.json")); err == nil {
		t.Fatal("ValidatePath(missing) expected error")
	}
}

func TestResolvePath(t *testing.T) {
	got, err := ResolvePath("  ")
	if err != nil || got != "" {
		t.Fatalf("ResolvePath(blank) = %q, %v", got, err)
	}

	got, err = ResolvePath("a/../b/results.json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !filepath.IsAbs(got) || filepath.Base(got) != "results.json" || filepath.Base(filepath.Dir(got)) != "b" {
		t.Fatalf("ResolvePath() = %q", got)
	}
}
