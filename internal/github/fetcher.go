package github

import (
	"context"
	"net/http"
	"time"

	"github.com/GioMjds/commitly/internal/entry"
	"golang.org/x/oauth2"
)

// DefaultLookbackDays is the trailing window every fetch re-requests.
const DefaultLookbackDays = 7

// Fetcher turns a user's recent commits into external events.
//
// Every call asks for the same trailing window no matter when the last
// sync ran, because commit search is eventually consistent and may index
// commits late. Overlap is expected; the reconciler drops duplicates.
type Fetcher struct {
	BaseURL      string
	LookbackDays int

	// HTTPClient is the transport under the oauth2 layer. Nil means
	// http.DefaultClient.
	HTTPClient *http.Client
}

// Fetch returns the events in the window ending at now. On failure it
// returns a nil slice and the error; a nil error with no events means
// nothing happened.
func (f *Fetcher) Fetch(ctx context.Context, login, token string, now time.Time) ([]entry.ExternalEvent, error) {
	if f.HTTPClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, f.HTTPClient)
	}
	client := NewClient(ctx, token, f.BaseURL)

	commits, err := client.SearchCommits(ctx, login, f.Since(now))
	if err != nil {
		return nil, err
	}

	events := make([]entry.ExternalEvent, 0, len(commits))
	for _, c := range commits {
		events = append(events, entry.ExternalEvent{
			ExternalID: c.SHA,
			Summary:    entry.FirstLine(c.Message),
			Container:  c.Repo,
			Permalink:  c.URL,
			OccurredAt: c.CommittedAt,
		})
	}
	return events, nil
}

// Since is the start of the window for a fetch at now.
func (f *Fetcher) Since(now time.Time) time.Time {
	days := f.LookbackDays
	if days <= 0 {
		days = DefaultLookbackDays
	}
	return now.AddDate(0, 0, -days)
}

// Viewer resolves the login that token belongs to.
func (f *Fetcher) Viewer(ctx context.Context, token string) (string, error) {
	if f.HTTPClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, f.HTTPClient)
	}
	return NewClient(ctx, token, f.BaseURL).Viewer(ctx)
}
