package views

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/tbryant/tickboard/internal/form"
	"github.com/tbryant/tickboard/internal/models"
	"github.com/tbryant/tickboard/internal/store"
	"github.com/tbryant/tickboard/internal/ui/keys"
	"github.com/tbryant/tickboard/internal/ui/styles"
)

// Form focus order
const (
	focusTitle = iota
	focusDescription
	focusDeadline
	focusAssignee
	focusStatus
	focusSave
	focusCount
)

// FormView is the ticket creation/edit form
type FormView struct {
	ctx    context.Context
	store  *store.Store
	styles *styles.Styles
	keys   keys.KeyMap

	form *form.Form

	title    textinput.Model
	desc     textarea.Model
	deadline textinput.Model

	// Assignee choices: index 0 is unassigned, then store.Members()
	members     []models.TeamMember
	assigneeIdx int
	statusIdx   int

	focusIdx int
	lastErr  string

	width  int
	height int
}

// NewFormView creates a form in creation mode, or edit mode when ticket is
// non-nil.
func NewFormView(ctx context.Context, st *store.Store, ticket *models.Ticket) *FormView {
	title := textinput.New()
	title.Placeholder = "Title"
	title.CharLimit = 200

	desc := textarea.New()
	desc.Placeholder = "Description"
	desc.CharLimit = 1000
	desc.SetWidth(50)
	desc.SetHeight(3)
	desc.ShowLineNumbers = false

	deadline := textinput.New()
	deadline.Placeholder = "YYYY-MM-DD"
	deadline.CharLimit = 10

	v := &FormView{
		ctx:      ctx,
		store:    st,
		styles:   styles.NewStyles(),
		keys:     keys.DefaultKeyMap(),
		title:    title,
		desc:     desc,
		deadline: deadline,
		members:  st.Members(),
	}

	if ticket != nil {
		v.form = form.NewEdit(*ticket)
	} else {
		v.form = form.New()
	}
	v.syncInputs()
	v.assigneeIdx = v.indexOfAssignee(v.form.AssigneeID)
	v.statusIdx = indexOfStatus(v.form.Status)
	v.focusInput(focusTitle)

	return v
}

// syncInputs copies the form state into the bubbles widgets.
func (v *FormView) syncInputs() {
	v.title.SetValue(v.form.Fields.Title)
	v.desc.SetValue(v.form.Fields.Description)
	v.deadline.SetValue(v.form.Fields.Deadline)
}

func (v *FormView) indexOfAssignee(id *int64) int {
	if id == nil {
		return 0
	}
	for i, m := range v.members {
		if m.ID == *id {
			return i + 1
		}
	}
	// Dangling reference: treat as unassigned
	return 0
}

func indexOfStatus(s models.Status) int {
	for i, st := range models.Statuses {
		if st == s {
			return i
		}
	}
	return 0
}

// Init initializes the view
func (v *FormView) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages
func (v *FormView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		contentWidth := styles.ContentWidth(v.width)
		v.desc.SetWidth(clamp(contentWidth-10, 20, 50))
		return v, nil

	case OpFailedMsg:
		v.lastErr = fmt.Sprintf("%s failed: %v", msg.Op, msg.Err)
		return v, nil

	case tea.KeyMsg:
		return v.updateKey(msg)
	}

	return v, nil
}

func (v *FormView) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		return v, func() tea.Msg { return FormClosed{} }

	case key.Matches(msg, v.keys.Tab):
		v.cycleFocus(1)
		return v, textinput.Blink

	case msg.String() == "shift+tab":
		v.cycleFocus(-1)
		return v, textinput.Blink
	}

	switch v.focusIdx {
	case focusTitle, focusDescription, focusDeadline:
		if key.Matches(msg, v.keys.Enter) && v.focusIdx != focusDescription {
			// Enter moves on; the textarea keeps it for newlines
			v.cycleFocus(1)
			return v, textinput.Blink
		}
		return v, v.updateFocusedInput(msg)

	case focusAssignee:
		switch {
		case key.Matches(msg, v.keys.PrevFilter):
			v.assigneeIdx = (v.assigneeIdx - 1 + len(v.members) + 1) % (len(v.members) + 1)
		case key.Matches(msg, v.keys.NextFilter):
			v.assigneeIdx = (v.assigneeIdx + 1) % (len(v.members) + 1)
		case key.Matches(msg, v.keys.Enter):
			v.cycleFocus(1)
		}
		v.syncAssignee()
		return v, nil

	case focusStatus:
		switch {
		case key.Matches(msg, v.keys.PrevFilter):
			v.statusIdx = (v.statusIdx - 1 + len(models.Statuses)) % len(models.Statuses)
		case key.Matches(msg, v.keys.NextFilter):
			v.statusIdx = (v.statusIdx + 1) % len(models.Statuses)
		case key.Matches(msg, v.keys.Enter):
			v.cycleFocus(1)
		}
		v.form.Status = models.Statuses[v.statusIdx]
		return v, nil

	case focusSave:
		if key.Matches(msg, v.keys.Enter) {
			return v, v.submit()
		}
		return v, nil
	}

	return v, nil
}

func (v *FormView) updateFocusedInput(msg tea.KeyMsg) tea.Cmd {
	var cmd tea.Cmd
	switch v.focusIdx {
	case focusTitle:
		v.title, cmd = v.title.Update(msg)
		v.form.Fields.Title = v.title.Value()
	case focusDescription:
		v.desc, cmd = v.desc.Update(msg)
		v.form.Fields.Description = v.desc.Value()
	case focusDeadline:
		v.deadline, cmd = v.deadline.Update(msg)
		v.form.Fields.Deadline = v.deadline.Value()
	}
	return cmd
}

func (v *FormView) syncAssignee() {
	if v.assigneeIdx == 0 {
		v.form.AssigneeID = nil
		return
	}
	id := v.members[v.assigneeIdx-1].ID
	v.form.AssigneeID = &id
}

// cycleFocus moves focus and marks the field being left as touched, which
// switches on live validation for it.
func (v *FormView) cycleFocus(dir int) {
	switch v.focusIdx {
	case focusTitle:
		v.form.Touched.Title = true
	case focusDescription:
		v.form.Touched.Description = true
	case focusDeadline:
		v.form.Touched.Deadline = true
	}

	v.focusInput((v.focusIdx + dir + focusCount) % focusCount)
}

func (v *FormView) focusInput(idx int) {
	v.focusIdx = idx

	v.title.Blur()
	v.desc.Blur()
	v.deadline.Blur()

	switch idx {
	case focusTitle:
		v.title.Focus()
	case focusDescription:
		v.desc.Focus()
	case focusDeadline:
		v.deadline.Focus()
	}
}

func (v *FormView) submit() tea.Cmd {
	candidate, errs := v.form.Submit()
	if len(errs) > 0 {
		// Every field is touched now; View picks the errors up
		return nil
	}

	// A creation-mode submit resets the form; keep the widgets in step.
	if !v.form.Editing() {
		v.syncInputs()
		v.assigneeIdx = 0
		v.statusIdx = 0
	}

	st := v.store
	ctx := v.ctx
	return func() tea.Msg {
		if candidate.ID == nil {
			_, err := st.AddTicket(ctx, store.AddTicketData{
				Title:       candidate.Title,
				Description: candidate.Description,
				Deadline:    candidate.Deadline,
				AssigneeID:  candidate.AssigneeID,
				Status:      candidate.Status,
			})
			if err != nil {
				return OpFailedMsg{Op: "create", Err: err}
			}
		} else {
			upd := store.TicketUpdate{
				Title:       &candidate.Title,
				Description: &candidate.Description,
				Deadline:    &candidate.Deadline,
				AssigneeID:  candidate.AssigneeID,
				Status:      &candidate.Status,
			}
			if _, err := st.UpdateTicket(ctx, *candidate.ID, upd); err != nil {
				return OpFailedMsg{Op: "update", Err: err}
			}
		}
		return FormClosed{}
	}
}

// View renders the form
func (v *FormView) View() string {
	if v.width == 0 {
		return "loading..."
	}

	errs := v.form.Errors()
	var b strings.Builder

	heading := "New Ticket"
	if v.form.Editing() {
		heading = "Edit Ticket"
	}
	b.WriteString(v.styles.Title.Render(heading))
	b.WriteString("\n\n")

	b.WriteString(v.renderField(focusTitle, "Title", v.title.View(), errs[form.FieldTitle], form.FieldTitle))
	b.WriteString(v.renderField(focusDescription, "Description", v.desc.View(), errs[form.FieldDescription], form.FieldDescription))
	b.WriteString(v.renderField(focusDeadline, "Deadline", v.deadline.View(), errs[form.FieldDeadline], form.FieldDeadline))

	b.WriteString(v.renderChoice(focusAssignee, "Assignee", v.assigneeLabel()))
	b.WriteString(v.renderChoice(focusStatus, "Status", models.Statuses[v.statusIdx].Label()))

	saveLabel := "Create Ticket"
	if v.form.Editing() {
		saveLabel = "Save Changes"
	}
	if v.focusIdx == focusSave {
		b.WriteString(v.styles.ButtonFocused.Render(saveLabel))
	} else {
		b.WriteString(v.styles.Button.Render(saveLabel))
	}
	b.WriteString("\n")

	if v.lastErr != "" {
		b.WriteString(v.styles.ErrorLine.Render("! " + v.lastErr))
		b.WriteString("\n")
	}

	b.WriteString(v.styles.StatusBar.Render("tab next field · ←/→ choose · enter save · esc cancel"))

	return styles.CenterView(b.String(), v.width, v.height)
}

func (v *FormView) assigneeLabel() string {
	if v.assigneeIdx == 0 {
		return "Unassigned"
	}
	m := v.members[v.assigneeIdx-1]
	return fmt.Sprintf("%s (%s)", m.Name, m.Role)
}

func (v *FormView) renderField(idx int, label, input string, err error, field string) string {
	var b strings.Builder

	labelStyle := v.styles.Label
	inputStyle := v.styles.Input
	if v.focusIdx == idx {
		labelStyle = v.styles.LabelFocused
		inputStyle = v.styles.InputFocused
	}
	if err != nil {
		inputStyle = v.styles.InputError
	}

	b.WriteString(labelStyle.Render(label))
	b.WriteString("\n")
	b.WriteString(inputStyle.Render(input))
	b.WriteString("\n")
	if err != nil {
		b.WriteString(v.styles.FieldError.Render("✗ " + form.Message(field, err)))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	return b.String()
}

func (v *FormView) renderChoice(idx int, label, value string) string {
	labelStyle := v.styles.Label
	if v.focusIdx == idx {
		labelStyle = v.styles.LabelFocused
		value = "◀ " + value + " ▶"
	}
	return fmt.Sprintf("%s  %s\n\n", labelStyle.Render(label), value)
}
