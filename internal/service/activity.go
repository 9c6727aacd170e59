// Package service assembles a user's GitHub activity from the GraphQL API.
package service

import (
	"context"
	"fmt"

	"github.com/spiffcs/ghactivity/internal/constants"
	"github.com/spiffcs/ghactivity/internal/ghclient"
	"github.com/spiffcs/ghactivity/internal/log"
	"github.com/spiffcs/ghactivity/internal/model"
	"golang.org/x/sync/errgroup"
)

// Phase names a step of FetchActivity.
type Phase string

const (
	PhaseSummary      Phase = "summary"
	PhaseIssues       Phase = "issues"
	PhasePullRequests Phase = "pull requests"
	PhaseReviews      Phase = "pull request reviews"
)

// DrainPhases lists the concurrently paginated phases in display order.
var DrainPhases = []Phase{PhaseIssues, PhasePullRequests, PhaseReviews}

// PhaseError records which phase of a fetch failed. The wrapped error keeps
// its ghclient classification.
type PhaseError struct {
	Phase Phase
	Err   error
}

func (e *PhaseError) Error() string {
	return fmt.Sprintf("%s: %v", e.Phase, e.Err)
}

func (e *PhaseError) Unwrap() error { return e.Err }

// ProgressEvent reports the state of one phase. Nodes and Pages are running
// totals; Total is the server-reported totalCount from the summary.
type ProgressEvent struct {
	Phase Phase
	Pages int
	Nodes int
	Total int
	Done  bool
	Err   error
}

// ProgressFunc receives progress events. It is called from the drain
// goroutines and must be safe for concurrent use.
type ProgressFunc func(ProgressEvent)

// Option configures an ActivityFetcher.
type Option func(*ActivityFetcher)

// WithPageSize sets the number of nodes requested per page. Values outside
// [1, constants.MaxPageSize] are clamped.
func WithPageSize(n int) Option {
	return func(f *ActivityFetcher) {
		switch {
		case n < 1:
			n = 1
		case n > constants.MaxPageSize:
			n = constants.MaxPageSize
		}
		f.pageSize = n
	}
}

// WithProgress registers a progress callback.
func WithProgress(fn ProgressFunc) Option {
	return func(f *ActivityFetcher) {
		f.onProgress = fn
	}
}

// ActivityFetcher fetches the summary and then drains the issue, pull request
// and review connections in parallel.
type ActivityFetcher struct {
	transport  ghclient.Transport
	pageSize   int
	onProgress ProgressFunc
}

// NewActivityFetcher creates a fetcher on top of t.
func NewActivityFetcher(t ghclient.Transport, opts ...Option) *ActivityFetcher {
	f := &ActivityFetcher{
		transport: t,
		pageSize:  constants.DefaultPageSize,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *ActivityFetcher) report(ev ProgressEvent) {
	if f.onProgress != nil {
		f.onProgress(ev)
	}
}

// FetchActivity returns the complete activity of id.Username between id.From
// and id.To. Totals, the calendar and per-repository commits come from a single
// summary request; the three connections are then paginated from the start
// and their nodes replace the summary's first pages. Any failure returns a
// *PhaseError and no result.
func (f *ActivityFetcher) FetchActivity(ctx context.Context, id model.Identity) (*model.Activity, error) {
	log.Info("fetching activity summary", "user", id.Username, "from", id.From, "to", id.To, "pageSize", f.pageSize)

	if err := ctx.Err(); err != nil {
		return nil, f.fail(PhaseSummary, fmt.Errorf("%w: %w", ghclient.ErrCancelled, err))
	}

	summary, err := ghclient.Execute[model.Activity](ctx, f.transport, buildRequest(id, f.pageSize, cursors{}))
	if err != nil {
		return nil, f.fail(PhaseSummary, err)
	}
	cc := summary.Contributions()
	if cc == nil {
		return nil, f.fail(PhaseSummary, fmt.Errorf("%w: user %q not found", ghclient.ErrIntegrity, id.Username))
	}
	f.report(ProgressEvent{Phase: PhaseSummary, Pages: 1, Done: true})
	log.Info("summary fetched",
		"commits", cc.TotalCommitContributions,
		"issues", cc.IssueContributions.TotalCount,
		"pullRequests", cc.PullRequestContributions.TotalCount,
		"reviews", cc.PullRequestReviewContributions.TotalCount)

	var (
		issues  []model.IssueContribution
		prs     []model.PullRequestContribution
		reviews []model.ReviewContribution
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		nodes, err := drainConnection(gctx, f, id, PhaseIssues, cc.IssueContributions.TotalCount,
			func(c *string) cursors { return cursors{issues: c} },
			func(cc *model.ContributionsCollection) model.IssueConnection { return cc.IssueContributions })
		issues = nodes
		return err
	})

	g.Go(func() error {
		nodes, err := drainConnection(gctx, f, id, PhasePullRequests, cc.PullRequestContributions.TotalCount,
			func(c *string) cursors { return cursors{prs: c} },
			func(cc *model.ContributionsCollection) model.PullRequestConnection { return cc.PullRequestContributions })
		prs = nodes
		return err
	})

	g.Go(func() error {
		nodes, err := drainConnection(gctx, f, id, PhaseReviews, cc.PullRequestReviewContributions.TotalCount,
			func(c *string) cursors { return cursors{prReviews: c} },
			func(cc *model.ContributionsCollection) model.ReviewConnection { return cc.PullRequestReviewContributions })
		reviews = nodes
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	cc.IssueContributions.Nodes = issues
	cc.PullRequestContributions.Nodes = prs
	cc.PullRequestReviewContributions.Nodes = reviews

	log.Info("activity assembled", "issues", len(issues), "pullRequests", len(prs), "reviews", len(reviews))
	return summary, nil
}

func (f *ActivityFetcher) fail(phase Phase, err error) error {
	f.report(ProgressEvent{Phase: phase, Done: true, Err: err})
	log.Debug("phase failed", "phase", phase, "error", err)
	return &PhaseError{Phase: phase, Err: err}
}

// drainConnection paginates one connection from the first page. at maps a
// cursor to the request's cursor set; pick selects the connection from a
// decoded page.
func drainConnection[T any](
	ctx context.Context,
	f *ActivityFetcher,
	id model.Identity,
	phase Phase,
	total int,
	at func(*string) cursors,
	pick func(*model.ContributionsCollection) model.Connection[T],
) ([]T, error) {
	f.report(ProgressEvent{Phase: phase, Total: total})

	nodes, err := ghclient.Drain(ctx, f.transport, ghclient.Pager[model.Activity, T]{
		Name: string(phase),
		Request: func(c *string) ghclient.Request {
			return buildRequest(id, f.pageSize, at(c))
		},
		Select: func(a *model.Activity) (ghclient.Page[T], error) {
			cc := a.Contributions()
			if cc == nil {
				return ghclient.Page[T]{}, fmt.Errorf("%w: user %q missing from page", ghclient.ErrIntegrity, id.Username)
			}
			conn := pick(cc)
			return ghclient.Page[T]{Nodes: conn.Nodes, Info: conn.PageInfo}, nil
		},
		OnPage: func(pages, n int) {
			f.report(ProgressEvent{Phase: phase, Pages: pages, Nodes: n, Total: total})
		},
	})
	if err != nil {
		return nil, f.fail(phase, err)
	}

	if len(nodes) != total {
		log.Warn("node count differs from reported total", "connection", phase, "nodes", len(nodes), "total", total)
	}
	f.report(ProgressEvent{Phase: phase, Nodes: len(nodes), Total: total, Done: true})
	return nodes, nil
}
