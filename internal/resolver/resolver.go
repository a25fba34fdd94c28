// Package resolver identifies the pull request a changelog line originates
// from. Resolution runs an ordered list of strategies: a cheap, precise
// direct extraction of a "#1234" reference, then a fuzzy description search
// gated by minimum-length and uniqueness checks to avoid wrong matches.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/ariel-frischer/relnotes/internal/github"
)

const (
	// minSearchTermLen guards the fuzzy search against terms too generic
	// to identify a single pull request.
	minSearchTermLen = 10
	// maxSearchTermLen caps the search term; the search API rejects very
	// long queries and the tail adds no precision.
	maxSearchTermLen = 150

	// MethodDirect marks a resolution obtained from an explicit "#1234"
	// reference in the line.
	MethodDirect = "direct"
	// MethodSearch marks a resolution obtained from the description search.
	MethodSearch = "search"
)

var prNumberPattern = regexp.MustCompile(`#(\d+)`)

// Host is the slice of the version-control API the resolver needs.
type Host interface {
	PRDetails(ctx context.Context, number int) (*github.PRDetails, error)
	SearchMergedPRs(ctx context.Context, text string) ([]github.SearchResult, error)
}

// Resolution identifies the single pull request a line resolved to.
type Resolution struct {
	Number int
	Title  string
	Body   string
	Link   string
	Method string
}

// strategy attempts one way of resolving a line. A nil Resolution with
// next=true hands over to the following strategy; next=false makes the
// returned error final.
type strategy func(ctx context.Context, line string) (res *Resolution, next bool, err error)

// Resolver resolves changelog lines to pull requests against a Host.
type Resolver struct {
	host       Host
	owner      string
	repo       string
	strategies []strategy
}

// New creates a Resolver. owner and repo are used to build a fallback
// pull request link when the host response omits one.
func New(host Host, owner, repo string) *Resolver {
	r := &Resolver{host: host, owner: owner, repo: repo}
	r.strategies = []strategy{r.directReference, r.descriptionSearch}
	return r
}

// Resolve runs the strategies in order and returns the first successful
// resolution. When every strategy fails, the error carries the reason of
// the last strategy that produced one.
func (r *Resolver) Resolve(ctx context.Context, line string) (*Resolution, error) {
	var lastErr error
	for _, s := range r.strategies {
		res, next, err := s(ctx, line)
		if res != nil {
			return res, nil
		}
		if err != nil {
			lastErr = err
			if !next {
				return nil, err
			}
		}
	}
	if lastErr == nil {
		lastErr = errors.New("no PR reference in line and nothing to search for")
	}
	return nil, lastErr
}

// directReference extracts the first "#1234" reference and fetches its
// details. A reference whose details cannot be fetched does not fail the
// resolution: the number may be stale or wrong, so the search strategy
// still gets its turn.
func (r *Resolver) directReference(ctx context.Context, line string) (*Resolution, bool, error) {
	m := prNumberPattern.FindStringSubmatch(line)
	if m == nil {
		return nil, true, nil
	}
	number, err := strconv.Atoi(m[1])
	if err != nil {
		return nil, true, nil
	}

	details, err := r.host.PRDetails(ctx, number)
	if err != nil {
		return nil, true, fmt.Errorf("details for referenced PR #%d not retrievable: %w", number, err)
	}
	return r.resolution(details, number, MethodDirect), false, nil
}

// descriptionSearch queries the merged pull request search with a term
// derived from the line and accepts only an unambiguous single hit.
func (r *Resolver) descriptionSearch(ctx context.Context, line string) (*Resolution, bool, error) {
	term := searchTerm(line)
	if len(term) < minSearchTermLen {
		return nil, false, fmt.Errorf("search term too short: %q", term)
	}

	hits, err := r.host.SearchMergedPRs(ctx, term)
	if err != nil {
		return nil, false, fmt.Errorf("no PR found for %q: %w", term, err)
	}
	switch {
	case len(hits) == 0:
		return nil, false, fmt.Errorf("no PR found for %q", term)
	case len(hits) > 1:
		return nil, false, fmt.Errorf("ambiguous: %d PRs found for %q", len(hits), term)
	}

	hit := hits[0]
	if hit.Number == 0 {
		return nil, false, fmt.Errorf("search hit has no PR number: %q", hit.Title)
	}

	details, err := r.host.PRDetails(ctx, hit.Number)
	if err != nil {
		return nil, false, fmt.Errorf("details for PR #%d found by search not retrievable: %w", hit.Number, err)
	}
	return r.resolution(details, hit.Number, MethodSearch), false, nil
}

func (r *Resolver) resolution(details *github.PRDetails, number int, method string) *Resolution {
	link := details.HTMLURL
	if link == "" {
		link = fmt.Sprintf("https://github.com/%s/%s/pull/%d", r.owner, r.repo, number)
	}
	return &Resolution{
		Number: number,
		Title:  details.Title,
		Body:   details.Body,
		Link:   link,
		Method: method,
	}
}

// searchTerm derives the text used for the merged pull request search.
// Lines usually look like "FIX: actual description"; when the part after
// the first colon is substantial it is more selective than the whole line.
func searchTerm(line string) string {
	term := strings.TrimSpace(line)
	if _, after, found := strings.Cut(term, ":"); found {
		after = strings.TrimSpace(after)
		if len(after) > minSearchTermLen {
			term = after
		}
	}
	if len(term) > maxSearchTermLen {
		cut := maxSearchTermLen
		for cut > 0 && !utf8.RuneStart(term[cut]) {
			cut--
		}
		term = term[:cut]
	}
	return term
}
