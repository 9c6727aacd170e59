// Package model contains domain types for the ghactivity application.
// The JSON tags mirror the GitHub GraphQL field names so the same types
// decode API responses and serialize the JSON report.
package model

import (
	"time"
)

// Identity is the subject of an activity query: a GitHub login and the
// half-open interval [From, To) to report on.
type Identity struct {
	Username string
	From     time.Time
	To       time.Time
}

// PageInfo ends every page of a connection. EndCursor is opaque and only
// ever passed back to the server unchanged.
type PageInfo struct {
	EndCursor   *string `json:"endCursor"`
	HasNextPage bool    `json:"hasNextPage"`
}

// Connection is a server-paginated list. A nil Nodes slice means the field
// was absent on the response, which is not the same as an empty page.
type Connection[T any] struct {
	TotalCount int      `json:"totalCount"`
	PageInfo   PageInfo `json:"pageInfo"`
	Nodes      []T      `json:"nodes"`
}

// Activity is the aggregate result of a fetch. Only the three connection
// node lists are replaced after pagination; everything else comes from the
// summary request.
type Activity struct {
	User *User `json:"user"`
}

// User wraps the contributions collection for the queried login.
type User struct {
	ContributionsCollection ContributionsCollection `json:"contributionsCollection"`
}

// ContributionsCollection holds the totals, calendar and per-kind activity.
type ContributionsCollection struct {
	TotalCommitContributions            int                   `json:"totalCommitContributions"`
	TotalIssueContributions             int                   `json:"totalIssueContributions"`
	TotalPullRequestContributions       int                   `json:"totalPullRequestContributions"`
	TotalPullRequestReviewContributions int                   `json:"totalPullRequestReviewContributions"`
	ContributionCalendar                ContributionCalendar  `json:"contributionCalendar"`
	CommitContributionsByRepository     []RepositoryCommits   `json:"commitContributionsByRepository"`
	IssueContributions                  IssueConnection       `json:"issueContributions"`
	PullRequestContributions            PullRequestConnection `json:"pullRequestContributions"`
	PullRequestReviewContributions      ReviewConnection      `json:"pullRequestReviewContributions"`
}

// Connection aliases for the three paginated activity kinds.
type (
	IssueConnection       = Connection[IssueContribution]
	PullRequestConnection = Connection[PullRequestContribution]
	ReviewConnection      = Connection[ReviewContribution]
)

// ContributionCalendar is the per-day contribution grid.
type ContributionCalendar struct {
	TotalContributions int            `json:"totalContributions"`
	Weeks              []CalendarWeek `json:"weeks"`
}

// CalendarWeek is one column of the calendar.
type CalendarWeek struct {
	ContributionDays []CalendarDay `json:"contributionDays"`
}

// CalendarDay is a single day. Date is the GraphQL Date scalar (YYYY-MM-DD)
// and is kept verbatim.
type CalendarDay struct {
	Date              string `json:"date"`
	ContributionCount int    `json:"contributionCount"`
	Weekday           int    `json:"weekday"`
}

// RepositoryCommits is the commit count for one repository.
type RepositoryCommits struct {
	Repository    RepositoryRef `json:"repository"`
	Contributions Count         `json:"contributions"`
}

// Count is a bare totalCount selection.
type Count struct {
	TotalCount int `json:"totalCount"`
}

// RepositoryRef identifies a repository by owner/name.
type RepositoryRef struct {
	NameWithOwner string    `json:"nameWithOwner"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// IssueContribution is one node of issueContributions.
type IssueContribution struct {
	Issue Issue `json:"issue"`
}

// Issue is the issue payload of an IssueContribution.
type Issue struct {
	Number    int        `json:"number"`
	Title     string     `json:"title"`
	URL       string     `json:"url"`
	CreatedAt time.Time  `json:"createdAt"`
	State     string     `json:"state"`
	ClosedAt  *time.Time `json:"closedAt"`
}

// PullRequestContribution is one node of pullRequestContributions.
type PullRequestContribution struct {
	PullRequest PullRequest `json:"pullRequest"`
}

// PullRequest is the pull request payload of a PullRequestContribution.
type PullRequest struct {
	Number    int        `json:"number"`
	Title     string     `json:"title"`
	URL       string     `json:"url"`
	CreatedAt time.Time  `json:"createdAt"`
	State     string     `json:"state"`
	Merged    bool       `json:"merged"`
	MergedAt  *time.Time `json:"mergedAt"`
	ClosedAt  *time.Time `json:"closedAt"`
}

// ReviewContribution is one node of pullRequestReviewContributions.
type ReviewContribution struct {
	PullRequestReview PullRequestReview `json:"pullRequestReview"`
	OccurredAt        time.Time         `json:"occurredAt"`
}

// PullRequestReview is the review payload of a ReviewContribution.
type PullRequestReview struct {
	PullRequest PullRequestRef `json:"pullRequest"`
}

// PullRequestRef is the subset of pull request fields a review reports.
type PullRequestRef struct {
	Number int    `json:"number"`
	Title  string `json:"title"`
	URL    string `json:"url"`
}

// Contributions returns the collection, or nil when the user is absent.
func (a *Activity) Contributions() *ContributionsCollection {
	if a == nil || a.User == nil {
		return nil
	}
	return &a.User.ContributionsCollection
}
