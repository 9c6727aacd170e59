package cmd

import (
	"github.com/spf13/cobra"
)

// New creates the root command with all subcommands registered.
func New() *cobra.Command {
	opts := &Options{}

	rootCmd := &cobra.Command{
		Use:   "ghactivity",
		Short: "GitHub activity reporter",
		Long: `A CLI tool that reports what a GitHub user contributed over a time range:
commit, issue, pull request and review totals, the contribution calendar,
commits per repository, and every issue, pull request and review.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runReport(cmd, opts)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	// Add report flags to root command so `ghactivity` and `ghactivity report` work identically
	addReportFlags(rootCmd, opts)

	// Register subcommands
	rootCmd.AddCommand(NewCmdReport(opts))
	rootCmd.AddCommand(NewCmdConfig())
	rootCmd.AddCommand(NewCmdVersion())
	rootCmd.AddCommand(NewCmdRateLimit())

	return rootCmd
}
