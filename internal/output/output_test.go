package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/spiffcs/ghactivity/internal/model"
)

func sampleReport() Report {
	closed := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	return Report{
		Identity: model.Identity{
			Username: "octocat",
			From:     time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC),
			To:       time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC),
		},
		Activity: &model.Activity{User: &model.User{ContributionsCollection: model.ContributionsCollection{
			TotalCommitContributions:            10,
			TotalIssueContributions:             5,
			TotalPullRequestContributions:       3,
			TotalPullRequestReviewContributions: 2,
			ContributionCalendar: model.ContributionCalendar{
				TotalContributions: 20,
				Weeks: []model.CalendarWeek{{ContributionDays: []model.CalendarDay{
					{Date: "2025-03-11", ContributionCount: 1, Weekday: 2},
				}}},
			},
			CommitContributionsByRepository: []model.RepositoryCommits{
				{Repository: model.RepositoryRef{NameWithOwner: "owner/repo"}, Contributions: model.Count{TotalCount: 5}},
			},
			IssueContributions: model.IssueConnection{TotalCount: 1, Nodes: []model.IssueContribution{
				{Issue: model.Issue{Number: 42, Title: "Test Issue", URL: "http://example.com/issue", CreatedAt: time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC), State: "OPEN"}},
			}},
			PullRequestContributions: model.PullRequestConnection{TotalCount: 1, Nodes: []model.PullRequestContribution{
				{PullRequest: model.PullRequest{Number: 7, Title: "Fix | pipes", URL: "http://example.com/pr", State: "CLOSED", ClosedAt: &closed}},
			}},
			PullRequestReviewContributions: model.ReviewConnection{TotalCount: 1, Nodes: []model.ReviewContribution{
				{PullRequestReview: model.PullRequestReview{PullRequest: model.PullRequestRef{Number: 9, Title: "Review me", URL: "http://example.com/pr/9"}}},
			}},
		}}},
	}
}

func TestTextFormatter(t *testing.T) {
	var buf bytes.Buffer
	if err := NewFormatter(FormatText, Options{}).Format(sampleReport(), &buf); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	out := buf.String()

	want := []string{
		"User: octocat",
		"Time Period: 2025-03-04T00:00:00Z to 2025-03-11T00:00:00Z",
		"Total Commit Contributions: 10",
		"Total Issue Contributions: 5",
		"Total Pull Request Contributions: 3",
		"Total Pull Request Review Contributions: 2",
		"Contribution Calendar:",
		"  Total Contributions: 20",
		"    2025-03-11: 1 contributions (weekday 2)",
		"- owner/repo:",
		"5 commits",
		"- Issue #42: Test Issue",
		"  State: OPEN",
		"  Closed: N/A",
		"- PR #7: Fix | pipes",
		"  Merged: false",
		"  Merged At: N/A",
		"  Closed: 2025-03-10T12:00:00Z",
		"- PR Review for PR #9: Review me",
	}
	for _, s := range want {
		if !strings.Contains(out, s) {
			t.Errorf("text output missing %q\n%s", s, out)
		}
	}
	if strings.Contains(out, "\x1b[") {
		t.Error("text output should not contain ANSI codes when color is disabled")
	}
}

func TestTextFormatter_LongRepositoryName(t *testing.T) {
	report := sampleReport()
	cc := report.Activity.Contributions()
	cc.CommitContributionsByRepository = []model.RepositoryCommits{
		{Repository: model.RepositoryRef{NameWithOwner: "kubernetes-sigs/cluster-api-provider-azure"}, Contributions: model.Count{TotalCount: 3}},
		{Repository: model.RepositoryRef{NameWithOwner: "owner/repo"}, Contributions: model.Count{TotalCount: 5}},
	}

	var buf bytes.Buffer
	if err := NewFormatter(FormatText, Options{}).Format(report, &buf); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	out := buf.String()

	for _, s := range []string{
		"- kubernetes-sigs/cluster-api-provider-azure: 3 commits\n",
		"- owner/repo:" + strings.Repeat(" ", 29) + " 5 commits\n",
	} {
		if !strings.Contains(out, s) {
			t.Errorf("text output missing %q\n%s", s, out)
		}
	}
	if strings.Contains(out, "...") {
		t.Errorf("repository names should not be truncated\n%s", out)
	}
}

func TestTextFormatter_Color(t *testing.T) {
	var buf bytes.Buffer
	if err := NewFormatter(FormatText, Options{Color: true}).Format(sampleReport(), &buf); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if !strings.Contains(buf.String(), "\x1b[") {
		t.Error("expected ANSI codes when color is enabled")
	}
	if !strings.Contains(buf.String(), "\x1b[32mOPEN\x1b[0m") {
		t.Error("expected open state in green")
	}
}

func TestMarkdownFormatter(t *testing.T) {
	var buf bytes.Buffer
	if err := NewFormatter(FormatMarkdown, Options{}).Format(sampleReport(), &buf); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	out := buf.String()

	want := []string{
		"# GitHub Activity Report for octocat",
		"**Time Period:** 2025-03-04T00:00:00Z to 2025-03-11T00:00:00Z",
		"- **Total Commit Contributions:** 10",
		"**Total Contributions:** 20",
		"* 2025-03-11: 1 contributions (weekday 2)",
		"| Repository             | Commits |",
		"| owner/repo             |       5 |",
		"| 42 | Test Issue | http://example.com/issue | 2025-03-09T00:00:00Z | OPEN | N/A |",
		`| 7 | Fix \| pipes |`,
		"| false | N/A | 2025-03-10T12:00:00Z |",
		"| 9 | Review me | http://example.com/pr/9 |",
	}
	for _, s := range want {
		if !strings.Contains(out, s) {
			t.Errorf("markdown output missing %q\n%s", s, out)
		}
	}
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	if err := NewFormatter(FormatJSON, Options{}).Format(sampleReport(), &buf); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	var decoded model.Activity
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	cc := decoded.Contributions()
	if cc == nil {
		t.Fatal("expected user in JSON output")
	}
	if cc.TotalCommitContributions != 10 {
		t.Errorf("totalCommitContributions = %d, want 10", cc.TotalCommitContributions)
	}
	if len(cc.IssueContributions.Nodes) != 1 || cc.IssueContributions.Nodes[0].Issue.Number != 42 {
		t.Errorf("issue nodes not preserved: %+v", cc.IssueContributions.Nodes)
	}
	if !strings.Contains(buf.String(), `"totalCommitContributions": 10`) {
		t.Error("expected indented camelCase JSON")
	}
}

func TestFormatters_NoUser(t *testing.T) {
	for _, f := range Formats {
		t.Run(string(f), func(t *testing.T) {
			var buf bytes.Buffer
			r := Report{Activity: &model.Activity{}}
			if err := NewFormatter(f, Options{}).Format(r, &buf); err != nil {
				t.Fatalf("Format() error = %v", err)
			}
			if f == FormatJSON {
				if !strings.Contains(buf.String(), `"user": null`) {
					t.Errorf("expected null user, got %q", buf.String())
				}
				return
			}
			if !strings.Contains(buf.String(), "No user data available.") {
				t.Errorf("expected no-data message, got %q", buf.String())
			}
		})
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    Format
		wantErr bool
	}{
		{"", FormatText, false},
		{"text", FormatText, false},
		{"plain", FormatText, false},
		{"Markdown", FormatMarkdown, false},
		{"md", FormatMarkdown, false},
		{"json", FormatJSON, false},
		{"yaml", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormat(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path   string
		want   Format
		wantOK bool
	}{
		{"report.md", FormatMarkdown, true},
		{"report.MARKDOWN", FormatMarkdown, true},
		{"out/report.txt", FormatText, true},
		{"report.json", FormatJSON, true},
		{"report.html", "", false},
		{"report", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, ok := FormatFromPath(tt.path)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("FormatFromPath(%q) = (%q, %v), want (%q, %v)", tt.path, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}
