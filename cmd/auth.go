package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/GioMjds/commitly/internal/credentials"
	"github.com/GioMjds/commitly/internal/identity"
	"github.com/GioMjds/commitly/internal/result"
	"github.com/spf13/cobra"
	"golang.org/x/oauth2"
	"golang.org/x/term"
)

var authToken string

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Link or unlink your GitHub account",
}

var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Store a GitHub token for sync",
	Long: `Store a GitHub personal access token for the configured owner.

The token is taken from --token, then from stdin when piped, then from
$` + credentials.EnvToken + `. It is verified against the GitHub API and stored
with mode 0600 together with the login it belongs to.`,
	Example: `  commitly auth login --token ghp_xxx
  gh auth token | commitly auth login`,
	PostRunE: invalidateCachePostRun,
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := ident.Current(cmd.Context())
		if err != nil {
			return finish(cmd, result.FromError("auth login", err), nil)
		}
		token, err := readToken(cmd)
		if err != nil {
			return err
		}

		login, err := fetcher.Viewer(cmd.Context(), token)
		if err != nil {
			return finish(cmd, result.FromError("verifying token", err), nil)
		}
		if err := creds.Link(cmd.Context(), id.OwnerID, login, &oauth2.Token{AccessToken: token, TokenType: "Bearer"}); err != nil {
			return finish(cmd, result.FromError("storing token", err), nil)
		}

		logger.Info(cmd.Context(), "github account linked", "owner", id.OwnerID, "login", login)
		return finish(cmd, result.OK(fmt.Sprintf("Linked GitHub account %s", login), identity.Identity{
			OwnerID: id.OwnerID, GitHubLogin: login, Linked: true,
		}), nil)
	},
}

func readToken(cmd *cobra.Command) (string, error) {
	if t := strings.TrimSpace(authToken); t != "" {
		return t, nil
	}
	if in, ok := cmd.InOrStdin().(*os.File); !ok || !isTerminal(in) {
		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && err != io.EOF {
			return "", &ExitError{Code: exitRuntime, Err: fmt.Errorf("reading token: %w", err)}
		}
		if t := strings.TrimSpace(line); t != "" {
			return t, nil
		}
	}
	if t := strings.TrimSpace(os.Getenv(credentials.EnvToken)); t != "" {
		return t, nil
	}
	return "", userError("no token given: use --token, pipe it on stdin or set %s", credentials.EnvToken)
}

func isTerminal(f *os.File) bool { return term.IsTerminal(int(f.Fd())) }

var authLogoutCmd = &cobra.Command{
	Use:      "logout",
	Short:    "Remove the stored GitHub token",
	PostRunE: invalidateCachePostRun,
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := ident.Current(cmd.Context())
		if err != nil {
			return finish(cmd, result.FromError("auth logout", err), nil)
		}
		if err := creds.Delete(cmd.Context(), id.OwnerID); err != nil {
			return finish(cmd, result.FromError("removing token", err), nil)
		}
		return finish(cmd, result.OK("Removed stored GitHub token", nil), nil)
	},
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the owner and linked GitHub account",
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := ident.Current(cmd.Context())
		if err != nil {
			return finish(cmd, result.FromError("auth status", err), nil)
		}
		msg := fmt.Sprintf("Owner %s, no GitHub account linked", id.OwnerID)
		if id.Linked {
			msg = fmt.Sprintf("Owner %s, linked to GitHub account %s", id.OwnerID, id.GitHubLogin)
		}
		return finish(cmd, result.OK(msg, id), nil)
	},
}

func init() {
	authLoginCmd.Flags().StringVar(&authToken, "token", "", "GitHub personal access token")
	authCmd.AddCommand(authLoginCmd, authLogoutCmd, authStatusCmd)
	rootCmd.AddCommand(authCmd)
}
