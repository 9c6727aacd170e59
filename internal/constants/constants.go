// Package constants provides a centralized location for all configuration
// values and magic numbers used throughout the ghactivity application.
package constants

import "time"

// GitHub endpoint constants
const (
	// DefaultGraphQLURL is the public GitHub GraphQL endpoint.
	DefaultGraphQLURL = "https://api.github.com/graphql"

	// HTTPTimeout bounds a single HTTP round trip. It is independent of
	// the caller's context.
	HTTPTimeout = 30 * time.Second
)

// Pagination constants
const (
	// DefaultPageSize is the number of nodes requested per page for each
	// paginated connection.
	DefaultPageSize = 10

	// MaxPageSize is the largest page GitHub accepts for a connection.
	MaxPageSize = 100

	// MaxRepositories caps commitContributionsByRepository. That field is
	// not paginated.
	MaxRepositories = 100
)

// Report constants
const (
	// DefaultPeriod is the reporting window used when neither --period nor
	// --from is given.
	DefaultPeriod = "week"

	// MaxUsernameLength is the longest login GitHub allows.
	MaxUsernameLength = 39
)

// TUI update and display constants
const (
	// TUIUpdateInterval is the minimum time between running progress
	// updates for one task.
	TUIUpdateInterval = 50 * time.Millisecond

	// TUIErrorWidth caps the error text shown next to a failed task.
	TUIErrorWidth = 60

	// TruncationSuffixWidth is the width of the "..." suffix when truncating strings.
	TruncationSuffixWidth = 3

	// RepoColumnWidth is the width of the repository column in text output.
	RepoColumnWidth = 40
)

// Issue and pull request states as returned by GraphQL
const (
	// StateOpen indicates an issue or PR is open.
	StateOpen = "OPEN"

	// StateClosed indicates an issue or PR is closed.
	StateClosed = "CLOSED"

	// StateMerged indicates a PR has been merged.
	StateMerged = "MERGED"
)
