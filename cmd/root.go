package cmd

import (
	"fmt"

	"github.com/GioMjds/commitly/internal/app"
	"github.com/GioMjds/commitly/internal/closure"
	"github.com/GioMjds/commitly/internal/config"
	"github.com/GioMjds/commitly/internal/credentials"
	"github.com/GioMjds/commitly/internal/daykey"
	"github.com/GioMjds/commitly/internal/github"
	"github.com/GioMjds/commitly/internal/identity"
	"github.com/GioMjds/commitly/internal/ledger"
	"github.com/GioMjds/commitly/internal/logging"
	"github.com/GioMjds/commitly/internal/reconcile"
	"github.com/GioMjds/commitly/internal/schedule"
	"github.com/GioMjds/commitly/internal/settings"
	"github.com/GioMjds/commitly/internal/storage"
	"github.com/GioMjds/commitly/internal/storage/markdown"
	"github.com/GioMjds/commitly/internal/storage/sqlite"
	"github.com/GioMjds/commitly/internal/ui"
	"github.com/spf13/cobra"
)

var (
	cfgFile        string
	jsonOutput     bool
	storageBackend string
	appConfig      *config.Config
	store          storage.Store
	syncSettings   *settings.Service
	creds          *credentials.FileStore
	fetcher        *github.Fetcher
	ident          identity.Provider
	days           daykey.Convention
	session        *app.Session
	theme          ui.Theme
	logger         logging.Logger
)

var rootCmd = &cobra.Command{
	Use:   "commitly",
	Short: "Track daily coding activity and streaks",
	Long: `commitly keeps a per-day ledger of what you worked on. Entries are logged by
hand or merged in from your GitHub commits, and consecutive active days
form your streak.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if storageBackend != "" {
			cfg.Storage = storageBackend
		}

		st, err := openStore(cfg)
		if err != nil {
			return &ExitError{Code: exitRuntime, Err: err}
		}
		f := &github.Fetcher{BaseURL: cfg.GitHub.APIURL, LookbackDays: cfg.GitHub.LookbackDays}
		return wire(cfg, st, f, logging.Stderr(cfg.LogLevel))
	},
}

// Execute runs the root command and closes the store afterwards.
func Execute() error {
	defer func() {
		if store != nil {
			store.Close()
			store = nil
		}
	}()
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output in JSON format")
	rootCmd.PersistentFlags().StringVar(&storageBackend, "storage", "", "storage backend (markdown|sqlite)")

	// Silence Cobra's built-in error and usage printing so we control stderr output
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
}

func openStore(cfg *config.Config) (storage.Store, error) {
	switch cfg.Storage {
	case "markdown":
		st, err := markdown.New(cfg.DataDir)
		if err != nil {
			return nil, fmt.Errorf("initializing markdown storage: %w", err)
		}
		return st, nil
	case "sqlite":
		st, err := sqlite.New(cfg.DataDir)
		if err != nil {
			return nil, fmt.Errorf("initializing sqlite storage: %w", err)
		}
		return st, nil
	default:
		return nil, fmt.Errorf("unknown storage backend: %s", cfg.Storage)
	}
}

// wire builds the services every command acts through. f is the GitHub
// event source; tests pass a stub.
func wire(cfg *config.Config, st storage.Store, f reconcile.EventFetcher, log logging.Logger) error {
	conv, err := daykey.LoadConvention(cfg.Timezone)
	if err != nil {
		return fmt.Errorf("loading timezone: %w", err)
	}
	days = conv

	appConfig = cfg
	store = st
	logger = log
	theme = ui.ResolveTheme(cfg.Theme)
	creds = credentials.NewFileStore(cfg.DataDir)
	syncSettings = settings.New(st.Settings())
	if gf, ok := f.(*github.Fetcher); ok {
		fetcher = gf
	} else {
		fetcher = &github.Fetcher{BaseURL: cfg.GitHub.APIURL, LookbackDays: cfg.GitHub.LookbackDays}
	}

	id := identity.Configured{Owner: cfg.Owner, GitHubLogin: cfg.GitHub.User, Credentials: creds}
	ident = id
	syncSvc := reconcile.NewService(id, syncSettings, creds, f, reconcile.NewReconciler(st, days, log), log)
	session = app.NewSession(app.Deps{
		Identity: id,
		Ledger:   ledger.New(st, id, days),
		Sync:     syncSvc,
		Closure:  closure.NewTracker(id, syncSettings, syncSvc, days, log),
		Settings: syncSettings,
		Days:     days,
		Log:      log,
		Schedule: schedule.Options{Interval: cfg.CheckInterval()},
	})
	return nil
}
