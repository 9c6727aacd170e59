package cmd

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spiffcs/ghactivity/config"
	"github.com/spiffcs/ghactivity/internal/constants"
	"github.com/spiffcs/ghactivity/internal/daterange"
	"github.com/spiffcs/ghactivity/internal/filter"
	"github.com/spiffcs/ghactivity/internal/ghclient"
	"github.com/spiffcs/ghactivity/internal/log"
	"github.com/spiffcs/ghactivity/internal/model"
	"github.com/spiffcs/ghactivity/internal/output"
	"github.com/spiffcs/ghactivity/internal/service"
	"github.com/spiffcs/ghactivity/internal/tui"
)

// reportRuntime bundles TUI-related state that's threaded through the report command.
type reportRuntime struct {
	useTUI  bool
	events  chan tui.Event
	tuiDone chan error
}

// startTUI starts the progress display if TUI mode is enabled. Quitting the
// display early calls cancel, which abandons the fetch.
func (rt *reportRuntime) startTUI(cancel context.CancelFunc) {
	if !rt.useTUI {
		return
	}
	rt.events = make(chan tui.Event, 100)
	rt.tuiDone = make(chan error, 1)
	go func() {
		err := tui.Run(rt.events)
		cancel()
		rt.tuiDone <- err
	}()
}

// close closes the event channel and waits for the TUI to finish. It is
// safe to call more than once.
func (rt *reportRuntime) close() {
	if rt.events == nil {
		return
	}
	close(rt.events)
	rt.events = nil
	if err := <-rt.tuiDone; err != nil {
		log.Warn("progress display failed", "error", err)
	}
}

// sendEvent sends a task event to the TUI channel if it exists.
func (rt *reportRuntime) sendEvent(task tui.TaskID, status tui.TaskStatus, opts ...tui.TaskEventOption) {
	tui.SendTaskEvent(rt.events, task, status, opts...)
}

// progressFunc returns the fetch progress sink: the TUI when it is running,
// otherwise an in-place log line.
func (rt *reportRuntime) progressFunc() service.ProgressFunc {
	if !rt.useTUI {
		return newProgressLine().update
	}

	var mu sync.Mutex
	last := make(map[service.Phase]time.Time)
	return func(ev service.ProgressEvent) {
		if !ev.Done {
			mu.Lock()
			now := time.Now()
			throttled := now.Sub(last[ev.Phase]) < constants.TUIUpdateInterval
			if !throttled {
				last[ev.Phase] = now
			}
			mu.Unlock()
			if throttled {
				return
			}
		}
		tui.SendEvent(rt.events, tui.FromProgress(ev))
	}
}

// progressLine renders the three concurrent drains on a single log line.
type progressLine struct {
	mu    sync.Mutex
	state map[service.Phase]service.ProgressEvent
}

func newProgressLine() *progressLine {
	return &progressLine{state: make(map[service.Phase]service.ProgressEvent)}
}

func (p *progressLine) update(ev service.ProgressEvent) {
	if ev.Phase == service.PhaseSummary {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.state[ev.Phase] = ev
	log.Progress("Fetching activity: %s...", p.render())
}

func (p *progressLine) render() string {
	parts := make([]string, 0, len(service.DrainPhases))
	for _, phase := range service.DrainPhases {
		ev, ok := p.state[phase]
		if !ok {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s %d/%d", phase, ev.Nodes, ev.Total))
	}
	return strings.Join(parts, ", ")
}

// reportRequest is the fully resolved input of a report run.
type reportRequest struct {
	cfg      *config.Config
	username string // empty means the token's owner
	from     time.Time
	to       time.Time
	filter   filter.Options
	format   output.Format
	file     string
	pageSize int
}

// NewCmdReport creates the report command.
func NewCmdReport(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Report a user's GitHub activity (same as root ghactivity)",
		Long: `Fetches contribution totals, the contribution calendar, per-repository
commit counts and every issue, pull request and review a user contributed in
the selected time range, then renders them as text, Markdown or JSON.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runReport(cmd, opts)
		},
	}

	addReportFlags(cmd, opts)
	return cmd
}

// addReportFlags adds the report flags to a command.
func addReportFlags(cmd *cobra.Command, opts *Options) {
	cmd.Flags().StringVarP(&opts.Username, "username", "u", "", "GitHub username (default: the token's owner)")
	cmd.Flags().StringVarP(&opts.Period, "period", "p", "", "Time period ending now: day, week, month or e.g. 2w, 90d (default from config, else week)")
	cmd.Flags().StringVar(&opts.From, "from", "", "Start date (YYYY-MM-DD or RFC3339); overrides --period")
	cmd.Flags().StringVar(&opts.To, "to", "", "End date (YYYY-MM-DD inclusive, or RFC3339; default now)")
	cmd.Flags().StringVar(&opts.Repo, "repo", "", "Only count commits in this repository (owner/name)")
	cmd.Flags().StringVar(&opts.Org, "org", "", "Only count commits in repositories owned by this organization")
	cmd.Flags().StringVarP(&opts.Format, "output", "o", "", "Output format (text, markdown, json)")
	cmd.Flags().StringVarP(&opts.File, "file", "f", "", "Write the report to a file; the format follows the extension unless --output is set")
	cmd.Flags().IntVar(&opts.PageSize, "page-size", 0, fmt.Sprintf("Nodes per page, 1-%d (default from config, else %d)", constants.MaxPageSize, constants.DefaultPageSize))
	cmd.Flags().CountVarP(&opts.Verbosity, "verbose", "v", "Increase verbosity (-v info, -vv debug, -vvv trace)")

	// TUI flag with tri-state: nil = auto, true = force, false = disable
	cmd.Flags().Var(&tuiFlag{opts: opts}, "tui", "Enable/disable TUI progress (default: auto-detect)")
	cmd.Flags().Lookup("tui").NoOptDefVal = "true"

	// Profiling flags
	cmd.Flags().StringVar(&opts.CPUProfile, "cpuprofile", "", "Write CPU profile to file")
	cmd.Flags().StringVar(&opts.MemProfile, "memprofile", "", "Write memory profile to file")
	cmd.Flags().StringVar(&opts.Trace, "trace", "", "Write execution trace to file")
}

func runReport(cmd *cobra.Command, opts *Options) error {
	profiler := NewProfiler(opts.CPUProfile, opts.MemProfile, opts.Trace)
	if err := profiler.Start(); err != nil {
		return err
	}
	defer profiler.Stop()

	useTUI := shouldUseTUI(opts)

	// Suppress logs during TUI to avoid interleaving with display
	if useTUI {
		log.Initialize(opts.Verbosity, io.Discard)
	} else {
		log.Initialize(opts.Verbosity, os.Stderr)
	}
	log.With("run", uuid.NewString())

	if err := config.LoadEnvFile(config.DefaultEnvFile); err != nil {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	req, err := resolveRequest(opts, cfg, time.Now())
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	rt := &reportRuntime{useTUI: useTUI}
	rt.startTUI(cancel)
	defer rt.close()

	report, err := fetchReport(ctx, req, rt)
	if err != nil {
		return err
	}

	rt.close()
	return writeReport(cmd.OutOrStdout(), report, req)
}

// resolveRequest merges flags over config and validates the result before
// any request is made.
func resolveRequest(opts *Options, cfg *config.Config, now time.Time) (*reportRequest, error) {
	if opts.Username != "" {
		if err := validateUsername(opts.Username); err != nil {
			return nil, err
		}
	}

	period := opts.Period
	if period == "" {
		period = cfg.GetPeriod()
	}
	from, to, err := daterange.Resolve(period, opts.From, opts.To, now)
	if err != nil {
		return nil, err
	}

	format, err := resolveFormat(opts, cfg)
	if err != nil {
		return nil, err
	}

	pageSize := opts.PageSize
	if pageSize == 0 {
		pageSize = cfg.GetPageSize()
	}
	if pageSize < 1 || pageSize > constants.MaxPageSize {
		return nil, fmt.Errorf("invalid page size %d (must be between 1 and %d)", pageSize, constants.MaxPageSize)
	}

	f := filter.Options{Repo: cfg.Repo, Org: cfg.Org}
	if opts.Repo != "" {
		f.Repo = opts.Repo
	}
	if opts.Org != "" {
		f.Org = opts.Org
	}
	if f.Repo != "" && strings.Count(f.Repo, "/") != 1 {
		return nil, fmt.Errorf("invalid repo %q (use owner/name)", f.Repo)
	}

	return &reportRequest{
		cfg:      cfg,
		username: opts.Username,
		from:     from,
		to:       to,
		filter:   f,
		format:   format,
		file:     opts.File,
		pageSize: pageSize,
	}, nil
}

// resolveFormat picks the output format: --output, then the --file
// extension, then the configured default.
func resolveFormat(opts *Options, cfg *config.Config) (output.Format, error) {
	if opts.Format != "" {
		return output.ParseFormat(opts.Format)
	}
	if opts.File != "" {
		if format, ok := output.FormatFromPath(opts.File); ok {
			return format, nil
		}
	}
	return output.ParseFormat(cfg.GetFormat())
}

// fetchReport resolves the user, fetches their activity and applies the
// repository filter.
func fetchReport(ctx context.Context, req *reportRequest, rt *reportRuntime) (output.Report, error) {
	rt.sendEvent(tui.TaskAuth, tui.StatusRunning)
	httpClient, err := ghclient.NewHTTPClient(ctx, req.cfg.GetGitHubToken(), constants.HTTPTimeout)
	if err != nil {
		rt.sendEvent(tui.TaskAuth, tui.StatusError, tui.WithError(err))
		return output.Report{}, err
	}

	username := req.username
	if username == "" {
		username, err = authenticatedUser(ctx, httpClient, req.cfg.APIURL)
		if err != nil {
			rt.sendEvent(tui.TaskAuth, tui.StatusError, tui.WithError(err))
			return output.Report{}, err
		}
	}
	rt.sendEvent(tui.TaskAuth, tui.StatusComplete, tui.WithMessage(username))

	id := model.Identity{Username: username, From: req.from, To: req.to}
	endpoint := req.cfg.GetGraphQLURL()
	log.Debug("using GraphQL endpoint", "url", endpoint)

	fetcher := service.NewActivityFetcher(
		ghclient.NewGraphQLClient(endpoint, httpClient),
		service.WithPageSize(req.pageSize),
		service.WithProgress(rt.progressFunc()),
	)

	rt.sendEvent(tui.TaskSummary, tui.StatusRunning)
	activity, err := fetcher.FetchActivity(ctx, id)
	if err != nil {
		log.ProgressClear()
		return output.Report{}, err
	}
	log.ProgressDone()

	rt.sendEvent(tui.TaskRender, tui.StatusRunning)
	if !req.filter.IsZero() {
		log.Info("filtering repositories", "repo", req.filter.Repo, "org", req.filter.Org)
	}
	activity = filter.Apply(activity, req.filter)
	rt.sendEvent(tui.TaskRender, tui.StatusComplete, tui.WithCount(contributionCount(activity)))

	return output.Report{Identity: id, Activity: activity}, nil
}

// contributionCount is the number of issues, pull requests and reviews left
// in the report after filtering.
func contributionCount(a *model.Activity) int {
	cc := a.Contributions()
	if cc == nil {
		return 0
	}
	return len(cc.IssueContributions.Nodes) + len(cc.PullRequestContributions.Nodes) + len(cc.PullRequestReviewContributions.Nodes)
}

func authenticatedUser(ctx context.Context, httpClient *http.Client, apiURL string) (string, error) {
	client, err := ghclient.NewClient(httpClient, apiURL)
	if err != nil {
		return "", err
	}
	username, err := client.AuthenticatedUser(ctx)
	if err != nil {
		return "", err
	}
	log.Info("reporting on authenticated user", "user", username)
	return username, nil
}

// writeReport renders the report to stdout, or to the requested file with a
// notice on stdout.
func writeReport(stdout io.Writer, report output.Report, req *reportRequest) error {
	if req.file == "" {
		formatter := output.NewFormatter(req.format, output.Options{Color: !color.NoColor})
		return formatter.Format(report, stdout)
	}

	f, err := os.Create(req.file)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", req.file, err)
	}
	if err := output.NewFormatter(req.format, output.Options{}).Format(report, f); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write report: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	fmt.Fprintf(stdout, "Report saved to %s\n", req.file)
	return nil
}

// shouldUseTUI determines whether to use TUI based on options.
func shouldUseTUI(opts *Options) bool {
	// Disable TUI when verbose logging is requested so logs are visible
	if opts.Verbosity > 0 {
		return false
	}
	if opts.TUI != nil {
		return *opts.TUI
	}
	return tui.ShouldUseTUI()
}

// DescribeError prefixes err with the label of its failure kind, if any.
func DescribeError(err error) string {
	kind := ghclient.KindOf(err)
	if kind == ghclient.KindUnknown {
		return err.Error()
	}
	return fmt.Sprintf("%s: %v", kind, err)
}
