package editor

import (
	"os"
	"path/filepath"
	"testing"
)

// scriptEditor writes body to a shell script and returns an editor that
// runs it with the temp file as $1.
func scriptEditor(t *testing.T, body string) Editor {
	t.Helper()
	path := filepath.Join(t.TempDir(), "edit.sh")
	if err := os.WriteFile(path, []byte(body+"\n"), 0700); err != nil {
		t.Fatal(err)
	}
	return Editor{Command: "sh " + path}
}

func TestResolveEditorConfig(t *testing.T) {
	if got := ResolveEditor("nano"); got != "nano" {
		t.Errorf("expected nano, got %q", got)
	}
}

func TestResolveEditorEnvEditor(t *testing.T) {
	t.Setenv("EDITOR", "vim")
	t.Setenv("VISUAL", "code")
	if got := ResolveEditor(""); got != "vim" {
		t.Errorf("expected vim (from EDITOR), got %q", got)
	}
}

func TestResolveEditorEnvVisual(t *testing.T) {
	t.Setenv("EDITOR", "")
	t.Setenv("VISUAL", "code")
	if got := ResolveEditor(""); got != "code" {
		t.Errorf("expected code (from VISUAL), got %q", got)
	}
}

func TestResolveEditorFallback(t *testing.T) {
	t.Setenv("EDITOR", "")
	t.Setenv("VISUAL", "")
	if got := ResolveEditor(""); got != "vi" {
		t.Errorf("expected vi (fallback), got %q", got)
	}
}

func TestComposeUnchanged(t *testing.T) {
	// 'true' exits without touching the file.
	note, changed, err := Editor{Command: "true"}.Compose("original note", "Describe what you did")
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	if changed {
		t.Error("expected changed=false for unchanged content")
	}
	if note != "original note" {
		t.Errorf("note = %q, want %q", note, "original note")
	}
}

func TestComposeEmptied(t *testing.T) {
	note, changed, err := scriptEditor(t, `: > "$1"`).Compose("original")
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	if changed || note != "" {
		t.Errorf("expected empty unchanged result, got %q changed=%v", note, changed)
	}
}

func TestComposeStripsHints(t *testing.T) {
	// Appends a line; the hint written above the note must not survive.
	ed := scriptEditor(t, `echo "shipped the fix" >> "$1"`)
	note, changed, err := ed.Compose("", "What did you work on?")
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	if !changed {
		t.Error("expected changed=true")
	}
	if note != "shipped the fix" {
		t.Errorf("note = %q", note)
	}
}

func TestComposeEditorFailure(t *testing.T) {
	if _, _, err := (Editor{Command: "false"}).Compose("x"); err == nil {
		t.Error("expected error when the editor exits non-zero")
	}
	if _, _, err := (Editor{Command: "   "}).Compose("x"); err == nil {
		t.Error("expected error for empty editor command")
	}
}

func TestStripHints(t *testing.T) {
	got := StripHints("#: hint one\n#:\n# Heading\nbody\n")
	if got != "# Heading\nbody\n" {
		t.Errorf("unexpected %q", got)
	}
}
