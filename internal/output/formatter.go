// Package output renders an activity report as text, Markdown or JSON.
package output

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/spiffcs/ghactivity/internal/model"
)

// Format represents the output format
type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
)

// Formats lists the accepted values of --output.
var Formats = []Format{FormatText, FormatMarkdown, FormatJSON}

// ParseFormat validates a user-supplied format name. "plain", "md" and
// "txt" are accepted as aliases.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text", "plain", "txt":
		return FormatText, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("invalid output format %q (valid: text, markdown, json)", s)
	}
}

// FormatFromPath infers a format from a file extension. ok is false when
// the extension is not recognized.
func FormatFromPath(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return FormatMarkdown, true
	case ".txt":
		return FormatText, true
	case ".json":
		return FormatJSON, true
	default:
		return "", false
	}
}

// Report is everything a formatter needs: the assembled activity plus the
// identity it was fetched for.
type Report struct {
	Identity model.Identity
	Activity *model.Activity
}

// Formatter defines the interface for output formatters
type Formatter interface {
	Format(r Report, w io.Writer) error
}

// Options tune formatter behavior.
type Options struct {
	// Color enables ANSI styling in text output.
	Color bool
}

// NewFormatter creates a formatter for the specified format
func NewFormatter(format Format, opts Options) Formatter {
	switch format {
	case FormatJSON:
		return &JSONFormatter{Pretty: true}
	case FormatMarkdown:
		return &MarkdownFormatter{}
	default:
		return &TextFormatter{Color: opts.Color}
	}
}

const notAvailable = "N/A"

func formatTime(t time.Time) string {
	return t.Format(time.RFC3339)
}

// formatOptionalTime renders an absent timestamp as N/A.
func formatOptionalTime(t *time.Time) string {
	if t == nil {
		return notAvailable
	}
	return formatTime(*t)
}
