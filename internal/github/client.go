// Package github is a small REST client for the pieces of the GitHub API
// the enrichment pipeline depends on: raw file download, pull request
// details, merged pull request search and pull request diffs.
package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultAPIBaseURL = "https://api.github.com"
	defaultRawBaseURL = "https://raw.githubusercontent.com"

	acceptJSON = "application/vnd.github.v3+json"
	acceptDiff = "application/vnd.github.v3.diff"
)

// DefaultTimeout bounds every request issued by the client.
const DefaultTimeout = 20 * time.Second

// ErrNotFound reports that the requested resource does not exist or is not
// visible with the supplied credential.
var ErrNotFound = errors.New("not found")

// ErrRateLimited reports that the API rate limit is exhausted.
var ErrRateLimited = errors.New("GitHub API rate limit exhausted")

// PRDetails holds the pull request fields the pipeline records.
type PRDetails struct {
	Number  int    `json:"number"`
	Title   string `json:"title"`
	Body    string `json:"body"`
	HTMLURL string `json:"html_url"`
}

// SearchResult is one hit from the merged pull request search.
type SearchResult struct {
	Number int    `json:"number"`
	Title  string `json:"title"`
}

// Client talks to the GitHub REST API for a single repository.
type Client struct {
	apiBaseURL string
	rawBaseURL string
	token      string
	owner      string
	repo       string
	httpClient *http.Client
}

// Option customizes a Client. Used by tests to point at a local server.
type Option func(*Client)

// WithBaseURLs overrides the API and raw-content endpoints.
func WithBaseURLs(apiBaseURL, rawBaseURL string) Option {
	return func(c *Client) {
		c.apiBaseURL = strings.TrimSuffix(apiBaseURL, "/")
		c.rawBaseURL = strings.TrimSuffix(rawBaseURL, "/")
	}
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) { c.httpClient = httpClient }
}

// New creates a client authenticated with the given token, scoped to
// owner/repo. The token is required: unauthenticated API calls hit rate
// limits too quickly to be useful.
func New(token, owner, repo string, opts ...Option) (*Client, error) {
	if token == "" {
		return nil, errors.New("github token must not be empty")
	}
	c := &Client{
		apiBaseURL: defaultAPIBaseURL,
		rawBaseURL: defaultRawBaseURL,
		token:      token,
		owner:      owner,
		repo:       repo,
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Owner returns the repository owner the client is scoped to.
func (c *Client) Owner() string { return c.owner }

// Repo returns the repository name the client is scoped to.
func (c *Client) Repo() string { return c.repo }

// FetchRawFile downloads the raw content of a file from a repository
// branch. The raw endpoint is public, so the request is unauthenticated.
func (c *Client) FetchRawFile(ctx context.Context, owner, repo, branch, path string) (string, error) {
	return fetchRaw(ctx, c.httpClient, c.rawBaseURL, owner, repo, branch, path)
}

// FetchRawFile downloads raw file content without a credential, for
// callers that only read public files and have no API client.
func FetchRawFile(ctx context.Context, owner, repo, branch, path string) (string, error) {
	httpClient := &http.Client{Timeout: DefaultTimeout}
	return fetchRaw(ctx, httpClient, defaultRawBaseURL, owner, repo, branch, path)
}

func fetchRaw(ctx context.Context, httpClient *http.Client, baseURL, owner, repo, branch, path string) (string, error) {
	if owner == "" || repo == "" || branch == "" || path == "" {
		return "", errors.New("owner, repo, branch and path are all required")
	}

	fileURL := fmt.Sprintf("%s/%s/%s/%s/%s", baseURL, owner, repo, branch, path)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching %s: %w", fileURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", fmt.Errorf("fetching %s: %w", fileURL, ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetching %s: unexpected status code: %d", fileURL, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", fileURL, err)
	}
	return string(body), nil
}

// PRDetails fetches title, body and link for a pull request.
func (c *Client) PRDetails(ctx context.Context, number int) (*PRDetails, error) {
	body, err := c.get(ctx, c.pullURL(number), acceptJSON, nil)
	if err != nil {
		return nil, fmt.Errorf("details for PR #%d: %w", number, err)
	}

	var details PRDetails
	if err := json.Unmarshal(body, &details); err != nil {
		return nil, fmt.Errorf("details for PR #%d: decoding response: %w", number, err)
	}
	return &details, nil
}

// PRDiff fetches the unified diff of a pull request.
func (c *Client) PRDiff(ctx context.Context, number int) (string, error) {
	body, err := c.get(ctx, c.pullURL(number), acceptDiff, nil)
	if err != nil {
		return "", fmt.Errorf("diff for PR #%d: %w", number, err)
	}
	return string(body), nil
}

// SearchMergedPRs queries the merged pull request search with a free-text
// term, most recently updated first.
func (c *Client) SearchMergedPRs(ctx context.Context, text string) ([]SearchResult, error) {
	params := url.Values{}
	params.Set("q", fmt.Sprintf("repo:%s/%s is:pr %q is:merged", c.owner, c.repo, text))
	params.Set("sort", "updated")
	params.Set("order", "desc")

	body, err := c.get(ctx, c.apiBaseURL+"/search/issues", acceptJSON, params)
	if err != nil {
		return nil, fmt.Errorf("searching merged PRs for %q: %w", text, err)
	}

	var result struct {
		Items []SearchResult `json:"items"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("searching merged PRs for %q: decoding response: %w", text, err)
	}
	return result.Items, nil
}

func (c *Client) pullURL(number int) string {
	return fmt.Sprintf("%s/repos/%s/%s/pulls/%d", c.apiBaseURL, c.owner, c.repo, number)
}

// get issues an authenticated GET and returns the response body.
// Exhausted rate limits and non-200 statuses are reported as errors.
func (c *Client) get(ctx context.Context, rawURL, accept string, params url.Values) ([]byte, error) {
	if len(params) > 0 {
		rawURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "token "+c.token)
	req.Header.Set("Accept", accept)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("making request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound
	case resp.StatusCode == http.StatusForbidden && resp.Header.Get("X-RateLimit-Remaining") == "0":
		return nil, ErrRateLimited
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	return body, nil
}
