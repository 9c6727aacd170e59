package service

import (
	"fmt"
	"time"

	"github.com/spiffcs/ghactivity/internal/constants"
	"github.com/spiffcs/ghactivity/internal/ghclient"
	"github.com/spiffcs/ghactivity/internal/model"
)

// activityQuery is the single document used for the summary request and for
// every page of every connection. Only the variables change between calls.
var activityQuery = fmt.Sprintf(`query UserActivity(
  $username: String!
  $from: DateTime!
  $to: DateTime!
  $issuesFirst: Int!
  $issuesAfter: String
  $prsFirst: Int!
  $prsAfter: String
  $prReviewsFirst: Int!
  $prReviewsAfter: String
) {
  user(login: $username) {
    contributionsCollection(from: $from, to: $to) {
      totalCommitContributions
      totalIssueContributions
      totalPullRequestContributions
      totalPullRequestReviewContributions
      contributionCalendar {
        totalContributions
        weeks {
          contributionDays {
            date
            contributionCount
            weekday
          }
        }
      }
      commitContributionsByRepository(maxRepositories: %d) {
        repository {
          nameWithOwner
          updatedAt
        }
        contributions {
          totalCount
        }
      }
      issueContributions(first: $issuesFirst, after: $issuesAfter) {
        totalCount
        pageInfo {
          endCursor
          hasNextPage
        }
        nodes {
          issue {
            number
            title
            url
            createdAt
            state
            closedAt
          }
        }
      }
      pullRequestContributions(first: $prsFirst, after: $prsAfter) {
        totalCount
        pageInfo {
          endCursor
          hasNextPage
        }
        nodes {
          pullRequest {
            number
            title
            url
            createdAt
            state
            merged
            mergedAt
            closedAt
          }
        }
      }
      pullRequestReviewContributions(first: $prReviewsFirst, after: $prReviewsAfter) {
        totalCount
        pageInfo {
          endCursor
          hasNextPage
        }
        nodes {
          pullRequestReview {
            pullRequest {
              number
              title
              url
            }
          }
          occurredAt
        }
      }
    }
  }
}`, constants.MaxRepositories)

// variables is the full variable set sent with every request. The two
// connections not being drained carry the page size and a null cursor.
type variables struct {
	Username       string  `json:"username"`
	From           string  `json:"from"`
	To             string  `json:"to"`
	IssuesFirst    int     `json:"issuesFirst"`
	IssuesAfter    *string `json:"issuesAfter"`
	PRsFirst       int     `json:"prsFirst"`
	PRsAfter       *string `json:"prsAfter"`
	PRReviewsFirst int     `json:"prReviewsFirst"`
	PRReviewsAfter *string `json:"prReviewsAfter"`
}

// cursors selects which connection a request advances. At most one field is
// non-nil in practice.
type cursors struct {
	issues    *string
	prs       *string
	prReviews *string
}

func buildRequest(id model.Identity, pageSize int, c cursors) ghclient.Request {
	return ghclient.Request{
		Query: activityQuery,
		Variables: variables{
			Username:       id.Username,
			From:           id.From.UTC().Format(time.RFC3339),
			To:             id.To.UTC().Format(time.RFC3339),
			IssuesFirst:    pageSize,
			IssuesAfter:    c.issues,
			PRsFirst:       pageSize,
			PRsAfter:       c.prs,
			PRReviewsFirst: pageSize,
			PRReviewsAfter: c.prReviews,
		},
	}
}
