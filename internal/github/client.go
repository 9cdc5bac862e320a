// Package github fetches a user's recent commits from the GitHub REST API
// and turns them into ledger events.
package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

// DefaultBaseURL is the public GitHub REST endpoint.
const DefaultBaseURL = "https://api.github.com"

const (
	perPage = 100
	// searchCap is the most results the search API will page through.
	searchCap = 1000

	requestTimeout = 30 * time.Second
)

// Sentinel errors for API failures.
var (
	ErrTokenExpired = errors.New("github token expired or revoked")
	ErrRateLimited  = errors.New("github rate limit exceeded")
	ErrAPI          = errors.New("github API error")
)

// Client is an authenticated GitHub REST client.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient returns a client that sends token as a bearer credential.
// An empty baseURL means DefaultBaseURL.
func NewClient(ctx context.Context, token, baseURL string) *Client {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	h := oauth2.NewClient(ctx, ts)
	h.Timeout = requestTimeout
	return newClient(h, baseURL)
}

func newClient(h *http.Client, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{httpClient: h, baseURL: strings.TrimRight(baseURL, "/")}
}

// Commit is one search hit.
type Commit struct {
	SHA         string
	Message     string
	Repo        string
	URL         string
	CommittedAt time.Time
}

type searchResponse struct {
	TotalCount int `json:"total_count"`
	Items      []struct {
		SHA     string `json:"sha"`
		HTMLURL string `json:"html_url"`
		Commit  struct {
			Message   string `json:"message"`
			Committer struct {
				Date time.Time `json:"date"`
			} `json:"committer"`
		} `json:"commit"`
		Repository struct {
			FullName string `json:"full_name"`
		} `json:"repository"`
	} `json:"items"`
}

// SearchCommits returns commits authored by author with a committer date on
// or after since's calendar day (UTC).
func (c *Client) SearchCommits(ctx context.Context, author string, since time.Time) ([]Commit, error) {
	q := fmt.Sprintf("author:%s committer-date:>=%s", author, since.UTC().Format("2006-01-02"))

	var all []Commit
	for page := 1; ; page++ {
		params := url.Values{}
		params.Set("q", q)
		params.Set("sort", "committer-date")
		params.Set("order", "desc")
		params.Set("per_page", strconv.Itoa(perPage))
		params.Set("page", strconv.Itoa(page))

		var res searchResponse
		if err := c.get(ctx, "/search/commits?"+params.Encode(), &res); err != nil {
			return nil, err
		}

		for _, it := range res.Items {
			all = append(all, Commit{
				SHA:         it.SHA,
				Message:     it.Commit.Message,
				Repo:        it.Repository.FullName,
				URL:         it.HTMLURL,
				CommittedAt: it.Commit.Committer.Date,
			})
		}

		seen := page * perPage
		if len(res.Items) < perPage || seen >= res.TotalCount || seen >= searchCap {
			return all, nil
		}
	}
}

// Viewer returns the login of the token's owner.
func (c *Client) Viewer(ctx context.Context) (string, error) {
	var user struct {
		Login string `json:"login"`
	}
	if err := c.get(ctx, "/user", &user); err != nil {
		return "", err
	}
	if user.Login == "" {
		return "", fmt.Errorf("%w: empty login in /user response", ErrAPI)
	}
	return user.Login, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("github request failed: %w", err)
	}
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}

	if err := statusError(resp, body); err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: decoding response: %v", ErrAPI, err)
	}
	return nil
}

func statusError(resp *http.Response, body []byte) error {
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusUnauthorized:
		return ErrTokenExpired
	case resp.StatusCode == http.StatusTooManyRequests,
		resp.StatusCode == http.StatusForbidden && resp.Header.Get("X-RateLimit-Remaining") == "0":
		if reset := resp.Header.Get("X-RateLimit-Reset"); reset != "" {
			if sec, err := strconv.ParseInt(reset, 10, 64); err == nil {
				return fmt.Errorf("%w: resets at %s", ErrRateLimited, time.Unix(sec, 0).UTC().Format(time.RFC3339))
			}
		}
		return ErrRateLimited
	default:
		return fmt.Errorf("%w %d: %s", ErrAPI, resp.StatusCode, strings.TrimSpace(string(body)))
	}
}
