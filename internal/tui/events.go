package tui

import (
	"errors"
	"fmt"

	"github.com/spiffcs/ghactivity/internal/ghclient"
	"github.com/spiffcs/ghactivity/internal/service"
)

// TaskID identifies a task in the TUI progress display.
type TaskID int

const (
	TaskAuth         TaskID = iota // Resolving the user to report on
	TaskSummary                    // Fetching totals, calendar and first pages
	TaskIssues                     // Paginating issue contributions
	TaskPullRequests               // Paginating pull request contributions
	TaskReviews                    // Paginating pull request review contributions
	TaskRender                     // Filtering and rendering the report
)

// TaskStatus represents the current status of a task.
type TaskStatus int

const (
	StatusPending TaskStatus = iota
	StatusRunning
	StatusComplete
	StatusError
	StatusSkipped
)

// Event is the interface for all TUI events.
type Event interface {
	isEvent()
}

// TaskEvent represents an update to a task's status.
type TaskEvent struct {
	Task     TaskID
	Status   TaskStatus
	Message  string  // Optional message (e.g., "12/30" for progress)
	Count    int     // Count of items (e.g., issues fetched)
	Progress float64 // Progress from 0.0 to 1.0
	Error    error   // Error if status is StatusError
}

func (TaskEvent) isEvent() {}

var phaseTasks = map[service.Phase]TaskID{
	service.PhaseSummary:      TaskSummary,
	service.PhaseIssues:       TaskIssues,
	service.PhasePullRequests: TaskPullRequests,
	service.PhaseReviews:      TaskReviews,
}

// FromProgress converts a fetch progress event into a task update. A phase
// that stopped because the run was cancelled, usually after a sibling drain
// failed, is shown as skipped rather than failed.
func FromProgress(ev service.ProgressEvent) TaskEvent {
	e := TaskEvent{Task: phaseTasks[ev.Phase], Status: StatusRunning}

	switch {
	case errors.Is(ev.Err, ghclient.ErrCancelled):
		e.Status = StatusSkipped
		e.Message = "cancelled"
	case ev.Err != nil:
		e.Status = StatusError
		e.Error = ev.Err
	case ev.Done:
		e.Status = StatusComplete
		e.Count = ev.Nodes
	case ev.Total > 0:
		e.Progress = min(float64(ev.Nodes)/float64(ev.Total), 1)
		e.Message = fmt.Sprintf("%d/%d", ev.Nodes, ev.Total)
	}
	return e
}
