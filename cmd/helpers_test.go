package cmd

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const testOwner = "octocat"

// setupTestEnv points config at a fresh data directory through the
// environment, the same way a user would. It returns the data directory.
func setupTestEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))
	t.Setenv("COMMITLY_DATA_DIR", dir)
	t.Setenv("COMMITLY_OWNER", testOwner)
	t.Setenv("COMMITLY_STORAGE", "markdown")
	t.Setenv("COMMITLY_GITHUB_USER", "")
	t.Setenv("COMMITLY_GITHUB_TOKEN", "")
	t.Setenv("COMMITLY_EDITOR", "")
	return dir
}

type cmdOutput struct {
	Stdout string
	Stderr string
	Err    error
}

func runCmd(t *testing.T, args ...string) cmdOutput {
	t.Helper()
	return runCmdIn(t, "", args...)
}

// runCmdIn executes the root command with stdin, resetting flag state
// left over from earlier runs.
func runCmdIn(t *testing.T, stdin string, args ...string) cmdOutput {
	t.Helper()
	resetFlags(rootCmd)

	var out, errb bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errb)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetIn(nil)
	})

	err := Execute()
	return cmdOutput{Stdout: out.String(), Stderr: errb.String(), Err: err}
}

func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func decodeJSON(t *testing.T, s string) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal([]byte(s), &m); err != nil {
		t.Fatalf("invalid JSON %q: %v", s, err)
	}
	return m
}

// scriptEditor installs a shell script as the configured editor.
func scriptEditor(t *testing.T, body string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "edit.sh")
	if err := os.WriteFile(path, []byte(body+"\n"), 0700); err != nil {
		t.Fatal(err)
	}
	t.Setenv("COMMITLY_EDITOR", "sh "+path)
}

type fakeCommit struct {
	SHA     string
	Message string
	Repo    string
	At      time.Time
}

// fakeGitHub serves /user and /search/commits and points config at it.
func fakeGitHub(t *testing.T, login string, commits []fakeCommit) {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/user", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer good-token" {
			w.WriteHeader(http.StatusUnauthorized)
			io.WriteString(w, `{"message":"Bad credentials"}`)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"login": login})
	})
	mux.HandleFunc("/search/commits", func(w http.ResponseWriter, r *http.Request) {
		items := make([]map[string]any, len(commits))
		for i, c := range commits {
			items[i] = map[string]any{
				"sha":        c.SHA,
				"html_url":   "https://github.com/" + c.Repo + "/commit/" + c.SHA,
				"commit":     map[string]any{"message": c.Message, "committer": map[string]any{"date": c.At.Format(time.RFC3339)}},
				"repository": map[string]any{"full_name": c.Repo},
			}
		}
		json.NewEncoder(w).Encode(map[string]any{"total_count": len(items), "items": items})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	t.Setenv("COMMITLY_GITHUB_API_URL", srv.URL)
}

var ansi = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func stripANSI(s string) string { return ansi.ReplaceAllString(s, "") }

func formatEffort(amount float64) string { return strconv.FormatFloat(amount, 'f', -1, 64) }
