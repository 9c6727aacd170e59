package cmd

import (
	"fmt"
	"io"
	"time"

	gh "github.com/google/go-github/v57/github"
	"github.com/spf13/cobra"
	"github.com/spiffcs/ghactivity/config"
	"github.com/spiffcs/ghactivity/internal/constants"
	"github.com/spiffcs/ghactivity/internal/ghclient"
)

// NewCmdRateLimit creates the ratelimit command.
func NewCmdRateLimit() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ratelimit",
		Short: "Check GitHub API rate limit status",
		Long:  `Display current GitHub API rate limit status including remaining quota and reset time.`,
	}
	cmd.AddCommand(NewCmdRateLimitStatus())
	return cmd
}

// NewCmdRateLimitStatus creates the ratelimit status subcommand.
func NewCmdRateLimitStatus() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show current rate limit status",
		Long: `Display the current GitHub API rate limit status. A full report costs one
GraphQL request for the summary plus one per additional page of issues,
pull requests and reviews.`,
		RunE: runRateLimitStatus,
	}
}

func runRateLimitStatus(cmd *cobra.Command, _ []string) error {
	if err := config.LoadEnvFile(config.DefaultEnvFile); err != nil {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ctx := cmd.Context()
	httpClient, err := ghclient.NewHTTPClient(ctx, cfg.GetGitHubToken(), constants.HTTPTimeout)
	if err != nil {
		return err
	}
	client, err := ghclient.NewClient(httpClient, cfg.APIURL)
	if err != nil {
		return err
	}

	limits, err := client.RateLimits(ctx)
	if err != nil {
		return err
	}

	printRateLimits(cmd.OutOrStdout(), limits, time.Now())
	return nil
}

// printRateLimits writes one line per resource the report command uses.
func printRateLimits(w io.Writer, limits *gh.RateLimits, now time.Time) {
	fmt.Fprintln(w, "GitHub API Rate Limits:")
	fmt.Fprintln(w)

	rows := []struct {
		label string
		rate  *gh.Rate
	}{
		{"GraphQL:", limits.GraphQL},
		{"Core API:", limits.Core},
	}
	for _, row := range rows {
		if row.rate == nil {
			continue
		}
		resetIn := max(row.rate.Reset.Sub(now).Round(time.Second), 0)
		fmt.Fprintf(w, "%-10s %d/%d remaining (resets in %s)\n",
			row.label, row.rate.Remaining, row.rate.Limit, resetIn)
	}
}
