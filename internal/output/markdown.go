package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/spiffcs/ghactivity/internal/format"
)

// MarkdownFormatter formats output as Markdown
type MarkdownFormatter struct{}

// repoColumn is the minimum width of the repository table's first column.
const repoColumn = 22

// Format outputs the report as Markdown
func (f *MarkdownFormatter) Format(r Report, w io.Writer) error {
	cc := r.Activity.Contributions()
	if cc == nil {
		_, err := fmt.Fprintln(w, "No user data available.")
		return err
	}

	var b strings.Builder

	fmt.Fprintf(&b, "# GitHub Activity Report for %s\n\n", r.Identity.Username)
	fmt.Fprintf(&b, "**Time Period:** %s to %s\n\n", formatTime(r.Identity.From), formatTime(r.Identity.To))

	b.WriteString("## Summary\n\n")
	fmt.Fprintf(&b, "- **Total Commit Contributions:** %d\n", cc.TotalCommitContributions)
	fmt.Fprintf(&b, "- **Total Issue Contributions:** %d\n", cc.TotalIssueContributions)
	fmt.Fprintf(&b, "- **Total Pull Request Contributions:** %d\n", cc.TotalPullRequestContributions)
	fmt.Fprintf(&b, "- **Total Pull Request Review Contributions:** %d\n\n", cc.TotalPullRequestReviewContributions)

	b.WriteString("## Contribution Calendar\n\n")
	fmt.Fprintf(&b, "**Total Contributions:** %d\n\n", cc.ContributionCalendar.TotalContributions)
	for _, week := range cc.ContributionCalendar.Weeks {
		for _, day := range week.ContributionDays {
			fmt.Fprintf(&b, "* %s: %d contributions (weekday %d)\n", day.Date, day.ContributionCount, day.Weekday)
		}
	}
	b.WriteString("\n")

	b.WriteString("## Repository Contributions\n\n")
	fmt.Fprintf(&b, "| %s | Commits |\n", format.PadRight("Repository", len("Repository"), repoColumn))
	fmt.Fprintf(&b, "|%s|---------|\n", strings.Repeat("-", repoColumn+2))
	for _, rc := range cc.CommitContributionsByRepository {
		name := escapeCell(rc.Repository.NameWithOwner)
		fmt.Fprintf(&b, "| %s | %7d |\n", format.PadRight(name, format.DisplayWidth(name), repoColumn), rc.Contributions.TotalCount)
	}
	b.WriteString("\n")

	b.WriteString("## Issue Contributions\n\n")
	b.WriteString("| Issue # | Title | URL | Created At | State | Closed At |\n")
	b.WriteString("|---------|-------|-----|------------|-------|-----------|\n")
	for _, node := range cc.IssueContributions.Nodes {
		issue := node.Issue
		fmt.Fprintf(&b, "| %d | %s | %s | %s | %s | %s |\n",
			issue.Number,
			escapeCell(issue.Title),
			issue.URL,
			formatTime(issue.CreatedAt),
			issue.State,
			formatOptionalTime(issue.ClosedAt))
	}
	b.WriteString("\n")

	b.WriteString("## Pull Request Contributions\n\n")
	b.WriteString("| PR # | Title | URL | Created At | State | Merged | Merged At | Closed At |\n")
	b.WriteString("|------|-------|-----|------------|-------|--------|-----------|-----------|\n")
	for _, node := range cc.PullRequestContributions.Nodes {
		pr := node.PullRequest
		fmt.Fprintf(&b, "| %d | %s | %s | %s | %s | %t | %s | %s |\n",
			pr.Number,
			escapeCell(pr.Title),
			pr.URL,
			formatTime(pr.CreatedAt),
			pr.State,
			pr.Merged,
			formatOptionalTime(pr.MergedAt),
			formatOptionalTime(pr.ClosedAt))
	}
	b.WriteString("\n")

	b.WriteString("## Pull Request Review Contributions\n\n")
	b.WriteString("| PR # | Title | URL | Occurred At |\n")
	b.WriteString("|------|-------|-----|-------------|\n")
	for _, node := range cc.PullRequestReviewContributions.Nodes {
		pr := node.PullRequestReview.PullRequest
		fmt.Fprintf(&b, "| %d | %s | %s | %s |\n",
			pr.Number,
			escapeCell(pr.Title),
			pr.URL,
			formatTime(node.OccurredAt))
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// escapeCell keeps pipes and newlines in titles from breaking the table.
func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}
