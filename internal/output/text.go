package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spiffcs/ghactivity/internal/constants"
	"github.com/spiffcs/ghactivity/internal/format"
)

// TextFormatter formats output as plain text
type TextFormatter struct {
	Color bool
}

func (f *TextFormatter) style(attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	if f.Color {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c
}

func (f *TextFormatter) state(s string) string {
	switch s {
	case constants.StateOpen:
		return f.style(color.FgGreen).Sprint(s)
	case constants.StateMerged:
		return f.style(color.FgMagenta).Sprint(s)
	case constants.StateClosed:
		return f.style(color.FgRed).Sprint(s)
	default:
		return s
	}
}

// Format outputs the report as plain text
func (f *TextFormatter) Format(r Report, w io.Writer) error {
	cc := r.Activity.Contributions()
	if cc == nil {
		_, err := fmt.Fprintln(w, "No user data available.")
		return err
	}

	heading := f.style(color.Bold, color.FgCyan)
	label := f.style(color.Bold)
	dim := f.style(color.Faint)

	var b strings.Builder

	fmt.Fprintf(&b, "%s %s\n", label.Sprint("User:"), r.Identity.Username)
	fmt.Fprintf(&b, "%s %s to %s\n", label.Sprint("Time Period:"), formatTime(r.Identity.From), formatTime(r.Identity.To))
	fmt.Fprintf(&b, "Total Commit Contributions: %d\n", cc.TotalCommitContributions)
	fmt.Fprintf(&b, "Total Issue Contributions: %d\n", cc.TotalIssueContributions)
	fmt.Fprintf(&b, "Total Pull Request Contributions: %d\n", cc.TotalPullRequestContributions)
	fmt.Fprintf(&b, "Total Pull Request Review Contributions: %d\n\n", cc.TotalPullRequestReviewContributions)

	b.WriteString(heading.Sprint("Contribution Calendar:") + "\n")
	fmt.Fprintf(&b, "  Total Contributions: %d\n", cc.ContributionCalendar.TotalContributions)
	for _, week := range cc.ContributionCalendar.Weeks {
		for _, day := range week.ContributionDays {
			fmt.Fprintf(&b, "    %s: %d contributions (weekday %d)\n", day.Date, day.ContributionCount, day.Weekday)
		}
	}
	b.WriteString("\n")

	b.WriteString(heading.Sprint("Repository Contributions:") + "\n")
	for _, rc := range cc.CommitContributionsByRepository {
		name := rc.Repository.NameWithOwner + ":"
		fmt.Fprintf(&b, "- %s %d commits\n", format.PadRight(name, format.DisplayWidth(name), constants.RepoColumnWidth), rc.Contributions.TotalCount)
	}
	b.WriteString("\n")

	b.WriteString(heading.Sprint("Issue Contributions:") + "\n")
	for _, node := range cc.IssueContributions.Nodes {
		issue := node.Issue
		fmt.Fprintf(&b, "- Issue #%d: %s\n", issue.Number, issue.Title)
		fmt.Fprintf(&b, "  URL: %s\n", dim.Sprint(issue.URL))
		fmt.Fprintf(&b, "  Created: %s\n", formatTime(issue.CreatedAt))
		fmt.Fprintf(&b, "  State: %s\n", f.state(issue.State))
		fmt.Fprintf(&b, "  Closed: %s\n", formatOptionalTime(issue.ClosedAt))
	}
	b.WriteString("\n")

	b.WriteString(heading.Sprint("Pull Request Contributions:") + "\n")
	for _, node := range cc.PullRequestContributions.Nodes {
		pr := node.PullRequest
		fmt.Fprintf(&b, "- PR #%d: %s\n", pr.Number, pr.Title)
		fmt.Fprintf(&b, "  URL: %s\n", dim.Sprint(pr.URL))
		fmt.Fprintf(&b, "  Created: %s\n", formatTime(pr.CreatedAt))
		fmt.Fprintf(&b, "  State: %s\n", f.state(pr.State))
		fmt.Fprintf(&b, "  Merged: %t\n", pr.Merged)
		fmt.Fprintf(&b, "  Merged At: %s\n", formatOptionalTime(pr.MergedAt))
		fmt.Fprintf(&b, "  Closed: %s\n", formatOptionalTime(pr.ClosedAt))
	}
	b.WriteString("\n")

	b.WriteString(heading.Sprint("Pull Request Review Contributions:") + "\n")
	for _, node := range cc.PullRequestReviewContributions.Nodes {
		pr := node.PullRequestReview.PullRequest
		fmt.Fprintf(&b, "- PR Review for PR #%d: %s\n", pr.Number, pr.Title)
		fmt.Fprintf(&b, "  URL: %s\n", dim.Sprint(pr.URL))
		fmt.Fprintf(&b, "  Occurred At: %s\n", formatTime(node.OccurredAt))
	}

	_, err := io.WriteString(w, b.String())
	return err
}
