package form

import (
	"errors"
	"strings"
	"time"

	"github.com/tbryant/tickboard/internal/models"
)

// Field names keying validation errors
const (
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldDeadline    = "deadline"
)

var (
	// ErrRequired marks a mandatory field left empty
	ErrRequired = errors.New("required field")
	// ErrPastDate marks a deadline before the current calendar day
	ErrPastDate = errors.New("deadline in the past")
	// ErrBadDate marks a deadline that is not a YYYY-MM-DD date
	ErrBadDate = errors.New("invalid date")
)

// Fields holds the user-editable ticket fields under validation.
type Fields struct {
	Title       string
	Description string
	Deadline    string
}

// Touched tracks which fields the user has interacted with. Errors on
// untouched fields are hidden so the form does not nag before first input.
type Touched struct {
	Title       bool
	Description bool
	Deadline    bool
}

// All returns a Touched with every flag set.
func (Touched) All() Touched {
	return Touched{Title: true, Description: true, Deadline: true}
}

// Errors maps field names to their validation failure.
type Errors map[string]error

// Visible filters errors down to touched fields.
func (e Errors) Visible(t Touched) Errors {
	out := make(Errors)
	for field, err := range e {
		switch field {
		case FieldTitle:
			if t.Title {
				out[field] = err
			}
		case FieldDescription:
			if t.Description {
				out[field] = err
			}
		case FieldDeadline:
			if t.Deadline {
				out[field] = err
			}
		}
	}
	return out
}

// Message returns the display text for a field's error.
func Message(field string, err error) string {
	switch {
	case errors.Is(err, ErrRequired):
		switch field {
		case FieldTitle:
			return "Title is required"
		case FieldDescription:
			return "Description is required"
		case FieldDeadline:
			return "Deadline is required"
		}
	case errors.Is(err, ErrPastDate):
		return "Deadline cannot be in the past"
	case errors.Is(err, ErrBadDate):
		return "Deadline must be a YYYY-MM-DD date"
	}
	return err.Error()
}

// Validate checks every field independently against the rule set. The
// deadline is compared at day granularity: today is valid, yesterday is not.
func Validate(f Fields, now time.Time) Errors {
	errs := make(Errors)

	if strings.TrimSpace(f.Title) == "" {
		errs[FieldTitle] = ErrRequired
	}
	if strings.TrimSpace(f.Description) == "" {
		errs[FieldDescription] = ErrRequired
	}

	switch deadline := strings.TrimSpace(f.Deadline); {
	case deadline == "":
		errs[FieldDeadline] = ErrRequired
	default:
		day, err := time.ParseInLocation("2006-01-02", deadline, now.Location())
		switch {
		case err != nil:
			errs[FieldDeadline] = ErrBadDate
		case day.Before(midnight(now)):
			errs[FieldDeadline] = ErrPastDate
		}
	}

	return errs
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// Candidate is a validated ticket ready for the store. ID is set only for
// edit-mode submissions.
type Candidate struct {
	ID          *int64
	Title       string
	Description string
	Deadline    string
	AssigneeID  *int64
	Status      models.Status
}

// Form tracks a candidate ticket through editing and submission.
type Form struct {
	Fields     Fields
	Touched    Touched
	AssigneeID *int64
	Status     models.Status

	editID *int64
	now    func() time.Time
}

// New creates a form in creation mode with default values.
func New() *Form {
	return &Form{Status: models.StatusTodo, now: time.Now}
}

// NewEdit creates a form pre-filled from an existing ticket.
func NewEdit(t models.Ticket) *Form {
	id := t.ID
	return &Form{
		Fields: Fields{
			Title:       t.Title,
			Description: t.Description,
			Deadline:    t.Deadline,
		},
		AssigneeID: t.AssigneeID,
		Status:     t.Status,
		editID:     &id,
		now:        time.Now,
	}
}

// Editing reports whether the form edits an existing ticket.
func (f *Form) Editing() bool { return f.editID != nil }

// Errors returns the validation errors visible right now, gated by the
// touched flags. Called on every field change for live validation.
func (f *Form) Errors() Errors {
	return Validate(f.Fields, f.now()).Visible(f.Touched)
}

// Submit marks every field touched and re-validates. With zero errors it
// returns the candidate (including the non-validated assignee and status)
// and resets a creation-mode form back to defaults; otherwise it returns
// the errors and no candidate.
func (f *Form) Submit() (*Candidate, Errors) {
	f.Touched = f.Touched.All()

	errs := Validate(f.Fields, f.now())
	if len(errs) > 0 {
		return nil, errs
	}

	c := &Candidate{
		ID:          f.editID,
		Title:       f.Fields.Title,
		Description: f.Fields.Description,
		Deadline:    f.Fields.Deadline,
		AssigneeID:  f.AssigneeID,
		Status:      f.Status,
	}

	if f.editID == nil {
		f.Fields = Fields{}
		f.Touched = Touched{}
		f.AssigneeID = nil
		f.Status = models.StatusTodo
	}

	return c, nil
}
