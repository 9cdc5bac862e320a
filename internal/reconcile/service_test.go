package reconcile

import (
	"context"
	"testing"
	"time"

	"github.com/GioMjds/commitly/internal/daykey"
	"github.com/GioMjds/commitly/internal/entry"
	"github.com/GioMjds/commitly/internal/github"
	"github.com/GioMjds/commitly/internal/identity"
	"github.com/GioMjds/commitly/internal/logging"
	"github.com/GioMjds/commitly/internal/result"
	"github.com/GioMjds/commitly/internal/settings"
	"github.com/GioMjds/commitly/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFetcher struct {
	events []entry.ExternalEvent
	err    error
	calls  int
	login  string
	token  string
}

func (f *fakeFetcher) Fetch(_ context.Context, login, token string, _ time.Time) ([]entry.ExternalEvent, error) {
	f.calls++
	f.login, f.token = login, token
	if f.err != nil {
		return nil, f.err
	}
	return f.events, nil
}

type fakeCreds map[string]string

func (f fakeCreds) Get(_ context.Context, owner string) (string, error) { return f[owner], nil }

type fixture struct {
	store    storage.Store
	settings *settings.Service
	fetcher  *fakeFetcher
	svc      *Service
}

func newFixture(t *testing.T, id identity.Provider) *fixture {
	t.Helper()
	st := newStore(t)
	f := &fixture{
		store:    st,
		settings: settings.New(st.Settings()),
		fetcher:  &fakeFetcher{},
	}
	rec := NewReconciler(st, daykey.UTC, logging.Discard())
	f.svc = NewService(id, f.settings, fakeCreds{owner: "tok"}, f.fetcher, rec, logging.Discard())
	f.svc.now = func() time.Time { return time.Date(2024, 1, 3, 12, 0, 0, 0, time.UTC) }
	return f
}

func linked() identity.Provider {
	return identity.Static{OwnerID: owner, GitHubLogin: owner, Linked: true}
}

func (f *fixture) enable(t *testing.T, autoCreate bool) {
	t.Helper()
	cfg := settings.DefaultSync()
	cfg.Enabled = true
	cfg.AutoCreateEntries = autoCreate
	require.NoError(t, f.settings.SaveSync(context.Background(), owner, cfg))
}

func TestRun_NotAuthenticated(t *testing.T) {
	f := newFixture(t, identity.Static{})
	res := f.svc.Run(context.Background())
	assert.False(t, res.Success)
	assert.Equal(t, result.CodeNotAuthenticated, res.Code)
	assert.Zero(t, f.fetcher.calls)
}

func TestRun_Disabled(t *testing.T) {
	f := newFixture(t, linked())
	res := f.svc.Run(context.Background())
	assert.Equal(t, result.CodeSyncDisabled, res.Code)
	assert.Zero(t, f.fetcher.calls)
}

func TestRun_NotLinked(t *testing.T) {
	f := newFixture(t, identity.Static{OwnerID: owner})
	f.enable(t, true)
	res := f.svc.Run(context.Background())
	assert.Equal(t, result.CodeNotLinked, res.Code)
	assert.Zero(t, f.fetcher.calls)
}

func TestRun_Success(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, linked())
	f.enable(t, true)
	f.fetcher.events = []entry.ExternalEvent{ev("a", "2024-01-02", 9), ev("b", "2024-01-03", 9)}

	res := f.svc.Run(ctx)
	require.True(t, res.Success, res.Message)
	assert.Equal(t, owner, f.fetcher.login)
	assert.Equal(t, "tok", f.fetcher.token)

	sum, ok := res.Data.(Summary)
	require.True(t, ok)
	assert.NotEmpty(t, sum.RunID)
	assert.Equal(t, 2, sum.Fetched)
	assert.Equal(t, 2, sum.Report.Created)
	assert.Contains(t, res.Message, "Synced 2 commits")

	cfg, err := f.settings.Sync(ctx, owner)
	require.NoError(t, err)
	require.NotNil(t, cfg.LastSyncAt)
	assert.True(t, cfg.LastSyncAt.Equal(f.svc.now()))
	assert.Len(t, ledger(t, f.store), 2)
}

func TestRun_EmptyFetchStillRecordsSync(t *testing.T) {
	f := newFixture(t, linked())
	f.enable(t, true)

	res := f.svc.Run(context.Background())
	require.True(t, res.Success)
	assert.Equal(t, "No GitHub activity in the sync window", res.Message)

	cfg, _ := f.settings.Sync(context.Background(), owner)
	assert.NotNil(t, cfg.LastSyncAt)
}

func TestRun_FetchFailureKeepsLastSync(t *testing.T) {
	f := newFixture(t, linked())
	f.enable(t, true)
	f.fetcher.err = github.ErrTokenExpired

	res := f.svc.Run(context.Background())
	assert.False(t, res.Success)
	assert.Equal(t, result.CodeReauthRequired, res.Code)

	cfg, _ := f.settings.Sync(context.Background(), owner)
	assert.Nil(t, cfg.LastSyncAt)
}

func TestRun_PreviewWritesNothing(t *testing.T) {
	f := newFixture(t, linked())
	f.enable(t, false)
	f.fetcher.events = []entry.ExternalEvent{ev("a", "2024-01-02", 9)}

	res := f.svc.Run(context.Background())
	require.True(t, res.Success)
	sum := res.Data.(Summary)
	assert.True(t, sum.Preview)
	assert.Equal(t, 1, sum.Report.Created)
	assert.Contains(t, res.Message, "would be created")
	assert.Empty(t, ledger(t, f.store))
}

func TestRun_PartialFailureIsSuccess(t *testing.T) {
	f := newFixture(t, linked())
	f.enable(t, true)
	f.svc.reconciler = NewReconciler(&failingStore{LedgerStore: f.store, failDay: "2024-01-02"}, daykey.UTC, logging.Discard())
	f.fetcher.events = []entry.ExternalEvent{ev("a", "2024-01-02", 9), ev("b", "2024-01-03", 9)}

	res := f.svc.Run(context.Background())
	require.True(t, res.Success)
	assert.Contains(t, res.Message, "1 day will be retried")
}

func TestAvailable(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, linked())
	ok, err := f.svc.Available(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	f.enable(t, true)
	ok, err = f.svc.Available(ctx)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = newFixture(t, identity.Static{}).svc.Available(ctx)
	assert.ErrorIs(t, err, identity.ErrNotAuthenticated)
}
