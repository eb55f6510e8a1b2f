package models

import "fmt"

// Status is the workflow state of a ticket
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in-progress"
	StatusDone       Status = "done"
)

// Statuses lists all ticket statuses in workflow order
var Statuses = []Status{StatusTodo, StatusInProgress, StatusDone}

// ParseStatus validates a raw status string
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusTodo, StatusInProgress, StatusDone:
		return Status(s), nil
	}
	return "", fmt.Errorf("unknown status %q", s)
}

// Label returns the display name for a status
func (s Status) Label() string {
	switch s {
	case StatusTodo:
		return "To Do"
	case StatusInProgress:
		return "In Progress"
	case StatusDone:
		return "Done"
	}
	return string(s)
}

// Next returns the following status in the workflow, wrapping around.
// The workflow order is a convention only; any status may be set directly.
func (s Status) Next() Status {
	switch s {
	case StatusTodo:
		return StatusInProgress
	case StatusInProgress:
		return StatusDone
	}
	return StatusTodo
}

// Filter selects tickets by status, or everything
type Filter string

const FilterAll Filter = "all"

// Filters lists all filter values in display order
var Filters = []Filter{FilterAll, Filter(StatusTodo), Filter(StatusInProgress), Filter(StatusDone)}

// Matches reports whether a ticket with the given status passes the filter
func (f Filter) Matches(s Status) bool {
	return f == FilterAll || Status(f) == s
}

// Label returns the display name for a filter value
func (f Filter) Label() string {
	if f == FilterAll {
		return "All"
	}
	return Status(f).Label()
}

// Ticket represents a unit of trackable work.
// Deadline is a calendar date (YYYY-MM-DD) and CreatedAt an RFC 3339
// timestamp; both travel as strings on the wire.
type Ticket struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Deadline    string `json:"deadline"`
	AssigneeID  *int64 `json:"assigneeId"`
	Status      Status `json:"status"`
	CreatedAt   string `json:"createdAt"`
}

// TeamMember represents a person eligible to be assigned tickets
type TeamMember struct {
	ID     int64    `json:"id"`
	Name   string   `json:"name"`
	Role   string   `json:"role"`
	Avatar string   `json:"avatar"`
	Skills []string `json:"skills"`
}
