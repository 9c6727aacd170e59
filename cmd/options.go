package cmd

import (
	"fmt"
	"regexp"

	"github.com/spiffcs/ghactivity/internal/constants"
)

// Options holds the command-line options for the report command.
type Options struct {
	Username string
	Period   string
	From     string
	To       string
	Repo     string
	Org      string
	Format   string
	File     string
	PageSize int

	Verbosity int
	TUI       *bool // nil = auto-detect, true = force TUI, false = disable TUI

	// Profiling options
	CPUProfile string // Write CPU profile to file
	MemProfile string // Write memory profile to file
	Trace      string // Write execution trace to file
}

// usernamePattern matches a GitHub login: alphanumerics and single inner
// hyphens, no leading or trailing hyphen.
var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9](?:[a-zA-Z0-9-]*[a-zA-Z0-9])?$`)

// validateUsername rejects logins GitHub would never issue, so a typo fails
// before any request is made.
func validateUsername(name string) error {
	if name == "" {
		return fmt.Errorf("username must not be empty")
	}
	if len(name) > constants.MaxUsernameLength {
		return fmt.Errorf("invalid username %q: longer than %d characters", name, constants.MaxUsernameLength)
	}
	if !usernamePattern.MatchString(name) {
		return fmt.Errorf("invalid username %q: use letters, digits and single inner hyphens", name)
	}
	return nil
}

// tuiFlag implements pflag.Value for the tri-state --tui flag.
type tuiFlag struct {
	opts *Options
}

func (f *tuiFlag) String() string {
	if f.opts.TUI == nil {
		return "auto"
	}
	return fmt.Sprint(*f.opts.TUI)
}

func (f *tuiFlag) Set(s string) error {
	var v bool
	switch s {
	case "true", "1", "yes":
		v = true
	case "false", "0", "no":
		v = false
	case "auto":
		f.opts.TUI = nil
		return nil
	default:
		return fmt.Errorf("invalid value %q: use true, false, or auto", s)
	}
	f.opts.TUI = &v
	return nil
}

func (f *tuiFlag) Type() string {
	return "bool"
}

func (f *tuiFlag) IsBoolFlag() bool {
	return true
}
