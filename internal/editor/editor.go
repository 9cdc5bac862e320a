// Package editor composes entry notes in the user's $EDITOR.
package editor

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// hintPrefix marks guidance lines that are stripped from the result.
const hintPrefix = "#: "

// ResolveEditor determines which editor to use based on config, env vars, and fallback.
func ResolveEditor(configEditor string) string {
	if configEditor != "" {
		return configEditor
	}
	if ed := os.Getenv("EDITOR"); ed != "" {
		return ed
	}
	if ed := os.Getenv("VISUAL"); ed != "" {
		return ed
	}
	return "vi"
}

// Editor launches an external editor on a temporary markdown file.
type Editor struct {
	Command string
}

// New returns an editor for the resolved command.
func New(configEditor string) Editor {
	return Editor{Command: ResolveEditor(configEditor)}
}

// Compose opens initial in the editor with the given hint lines above it.
// It returns the note with hints removed and whether it differs from
// initial. An emptied file counts as unchanged and returns "".
func (e Editor) Compose(initial string, hints ...string) (note string, changed bool, err error) {
	var b strings.Builder
	for _, h := range hints {
		b.WriteString(hintPrefix + h + "\n")
	}
	b.WriteString(initial)

	edited, err := e.run(b.String())
	if err != nil {
		return "", false, err
	}

	note = strings.TrimSpace(StripHints(edited))
	if note == "" {
		return "", false, nil
	}
	if note == strings.TrimSpace(initial) {
		return initial, false, nil
	}
	return note, true, nil
}

// StripHints removes hint lines written by Compose.
func StripHints(s string) string {
	lines := strings.Split(s, "\n")
	kept := lines[:0]
	for _, l := range lines {
		if strings.HasPrefix(l, hintPrefix) || l == strings.TrimSpace(hintPrefix) {
			continue
		}
		kept = append(kept, l)
	}
	return strings.Join(kept, "\n")
}

func (e Editor) run(content string) (string, error) {
	tmp, err := os.CreateTemp("", "commitly-*.md")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		return "", fmt.Errorf("writing temp file: %w", err)
	}
	tmp.Close()

	parts := strings.Fields(e.Command)
	if len(parts) == 0 {
		return "", fmt.Errorf("empty editor command")
	}

	cmd := exec.Command(parts[0], append(parts[1:], tmpName)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("editor exited with error: %w", err)
	}

	data, err := os.ReadFile(tmpName)
	if err != nil {
		return "", fmt.Errorf("reading edited file: %w", err)
	}
	return string(data), nil
}
