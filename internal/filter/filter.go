// Package filter narrows an assembled activity report by repository.
package filter

import (
	"strings"

	"github.com/spiffcs/ghactivity/internal/model"
)

// Options selects which repositories are kept. Empty fields match all.
type Options struct {
	// Repo keeps only the repository whose nameWithOwner equals it.
	Repo string
	// Org keeps only repositories owned by it.
	Org string
}

// IsZero reports whether no filter is set.
func (o Options) IsZero() bool {
	return o.Repo == "" && o.Org == ""
}

// Apply filters the per-repository commit contributions of a in place and
// returns a. Totals, calendar and the issue, pull request and review lists
// are left as reported.
func Apply(a *model.Activity, opts Options) *model.Activity {
	cc := a.Contributions()
	if cc == nil || opts.IsZero() {
		return a
	}
	cc.CommitContributionsByRepository = ByRepository(cc.CommitContributionsByRepository, opts)
	return a
}

// ByRepository returns the entries matching both Repo and Org.
func ByRepository(repos []model.RepositoryCommits, opts Options) []model.RepositoryCommits {
	filtered := make([]model.RepositoryCommits, 0, len(repos))
	for _, rc := range repos {
		name := rc.Repository.NameWithOwner
		if opts.Repo != "" && name != opts.Repo {
			continue
		}
		if opts.Org != "" && !strings.HasPrefix(name, opts.Org+"/") {
			continue
		}
		filtered = append(filtered, rc)
	}
	return filtered
}
