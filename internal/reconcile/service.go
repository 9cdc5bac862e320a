package reconcile

import (
	"context"
	"fmt"
	"time"

	"github.com/GioMjds/commitly/internal/credentials"
	"github.com/GioMjds/commitly/internal/entry"
	"github.com/GioMjds/commitly/internal/identity"
	"github.com/GioMjds/commitly/internal/logging"
	"github.com/GioMjds/commitly/internal/result"
	"github.com/GioMjds/commitly/internal/settings"
	"github.com/google/uuid"
)

// EventFetcher returns the events in the fetch window ending at now.
// A failed fetch must return an error, never an empty slice alone.
type EventFetcher interface {
	Fetch(ctx context.Context, login, token string, now time.Time) ([]entry.ExternalEvent, error)
}

// Summary is the Data of a sync result.
type Summary struct {
	RunID   string      `json:"run_id"`
	Fetched int         `json:"fetched"`
	Preview bool        `json:"preview"`
	Report  MergeReport `json:"report"`
}

// Service runs complete sync passes: settings, credentials, fetch, merge.
type Service struct {
	identity    identity.Provider
	settings    *settings.Service
	credentials credentials.Store
	fetcher     EventFetcher
	reconciler  *Reconciler
	log         logging.Logger
	now         func() time.Time
}

func NewService(
	id identity.Provider,
	st *settings.Service,
	creds credentials.Store,
	fetcher EventFetcher,
	rec *Reconciler,
	log logging.Logger,
) *Service {
	return &Service{
		identity:    id,
		settings:    st,
		credentials: creds,
		fetcher:     fetcher,
		reconciler:  rec,
		log:         log,
		now:         time.Now,
	}
}

// Available reports whether a sync pass would be attempted for the
// current owner: the account is linked and sync is enabled.
func (s *Service) Available(ctx context.Context) (bool, error) {
	id, err := s.identity.Current(ctx)
	if err != nil {
		return false, err
	}
	if !id.Linked {
		return false, nil
	}
	cfg, err := s.settings.Sync(ctx, id.OwnerID)
	if err != nil {
		return false, err
	}
	return cfg.Enabled, nil
}

// Run performs one sync pass for the current owner.
//
// lastSyncAt is written only when the fetch succeeded. Per-day write
// failures do not fail the pass; the next pass retries them.
func (s *Service) Run(ctx context.Context) result.Result {
	id, err := s.identity.Current(ctx)
	if err != nil {
		return result.FromError("sync", err)
	}
	owner := id.OwnerID

	cfg, err := s.settings.Sync(ctx, owner)
	if err != nil {
		return result.FromError("reading sync settings", err)
	}
	if !cfg.Enabled {
		return result.Info(result.CodeSyncDisabled, "GitHub sync is disabled; enable it with `commitly settings set enabled true`")
	}
	if !id.Linked || id.GitHubLogin == "" {
		return result.Fail(result.CodeNotLinked, "no GitHub account linked; run `commitly auth login`")
	}
	token, err := s.credentials.Get(ctx, owner)
	if err != nil {
		return result.FromError("reading credentials", err)
	}
	if token == "" {
		return result.Fail(result.CodeNotLinked, "no GitHub token stored; run `commitly auth login`")
	}

	runID := uuid.NewString()
	log := s.log.With("run", runID, "owner", owner)
	now := s.now()

	log.Info(ctx, "sync started", "login", id.GitHubLogin, "preview", !cfg.AutoCreateEntries)
	events, err := s.fetcher.Fetch(ctx, id.GitHubLogin, token, now)
	if err != nil {
		log.Error(ctx, "fetch failed", "error", err)
		return result.FromError("fetching GitHub activity", err)
	}

	var report MergeReport
	if cfg.AutoCreateEntries {
		report, err = s.reconciler.Merge(ctx, owner, events)
	} else {
		report, err = s.reconciler.Plan(ctx, owner, events)
	}
	if err != nil {
		log.Error(ctx, "merge failed", "error", err)
		return result.FromError("merging GitHub activity", err)
	}

	if _, err := s.settings.UpdateSync(ctx, owner, func(c *settings.SyncSettings) {
		t := now.UTC()
		c.LastSyncAt = &t
	}); err != nil {
		log.Warn(ctx, "recording last sync time failed", "error", err)
	}

	log.Info(ctx, "sync finished",
		"fetched", len(events), "created", report.Created, "updated", report.Updated,
		"skipped", report.Skipped, "failed", report.Failed)

	summary := Summary{RunID: runID, Fetched: len(events), Preview: !cfg.AutoCreateEntries, Report: report}
	return result.OK(message(summary), summary)
}

func message(s Summary) string {
	if s.Fetched == 0 {
		return "No GitHub activity in the sync window"
	}
	verb := "Synced"
	created, updated := "created", "updated"
	if s.Preview {
		verb = "Previewed"
		created, updated = "would be created", "would be updated"
	}
	msg := fmt.Sprintf("%s %d commits: %d %s, %d %s, %d already logged",
		verb, s.Fetched,
		s.Report.Created, plural(s.Report.Created, "entry", "entries")+" "+created,
		s.Report.Updated, updated,
		s.Report.Skipped)
	if s.Report.Failed > 0 {
		msg += fmt.Sprintf(" (%d %s will be retried next sync)", s.Report.Failed, plural(s.Report.Failed, "day", "days"))
	}
	return msg
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
