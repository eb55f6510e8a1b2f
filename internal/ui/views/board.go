package views

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tbryant/tickboard/internal/models"
	"github.com/tbryant/tickboard/internal/store"
	"github.com/tbryant/tickboard/internal/ui/keys"
	"github.com/tbryant/tickboard/internal/ui/styles"
)

// clamp returns val clamped between minVal and maxVal
func clamp(val, minVal, maxVal int) int {
	if val < minVal {
		return minVal
	}
	if val > maxVal {
		return maxVal
	}
	return val
}

// BoardView shows the filtered ticket list with the status filter bar
type BoardView struct {
	ctx    context.Context
	store  *store.Store
	styles *styles.Styles
	keys   keys.KeyMap

	width  int
	height int

	cursor  int
	scrollY int

	// Delete confirmation
	confirmingDelete bool
	deleteTargetID   int64
	deleteTargetName string

	// Last failed operation, shown on the status line
	lastErr string

	// Help popup (shown with ? at narrow widths)
	showHelpPopup bool
}

// NewBoardView creates the board over the shared ticket store
func NewBoardView(ctx context.Context, st *store.Store) *BoardView {
	return &BoardView{
		ctx:    ctx,
		store:  st,
		styles: styles.NewStyles(),
		keys:   keys.DefaultKeyMap(),
	}
}

// Init initializes the view
func (v *BoardView) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (v *BoardView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		return v, nil

	case RefreshMsg:
		v.clampCursor()
		return v, nil

	case OpFailedMsg:
		v.lastErr = fmt.Sprintf("%s failed: %v", msg.Op, msg.Err)
		return v, nil

	case opDoneMsg:
		v.lastErr = ""
		v.clampCursor()
		return v, nil

	case tea.KeyMsg:
		// Any key closes the help popup
		if v.showHelpPopup {
			v.showHelpPopup = false
			return v, nil
		}

		if v.confirmingDelete {
			return v.updateConfirmDelete(msg)
		}

		return v.updateNormal(msg)
	}

	return v, nil
}

func (v *BoardView) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	tickets := v.store.FilteredTickets()

	// The store can shrink between its notification and the refresh message
	// draining, so never trust a cursor from before this key event.
	v.cursor = clamp(v.cursor, 0, max(0, len(tickets)-1))

	switch {
	case key.Matches(msg, v.keys.Quit):
		return v, tea.Quit

	case key.Matches(msg, v.keys.Up):
		if v.cursor > 0 {
			v.cursor--
			v.ensureVisible()
		}
		return v, nil

	case key.Matches(msg, v.keys.Down):
		if v.cursor < len(tickets)-1 {
			v.cursor++
			v.ensureVisible()
		}
		return v, nil

	case key.Matches(msg, v.keys.PrevFilter):
		v.cycleFilter(-1)
		return v, nil

	case key.Matches(msg, v.keys.NextFilter):
		v.cycleFilter(1)
		return v, nil

	case key.Matches(msg, v.keys.New):
		return v, func() tea.Msg { return NewTicket{} }

	case key.Matches(msg, v.keys.Edit):
		if len(tickets) > 0 {
			t := tickets[v.cursor]
			return v, func() tea.Msg { return EditTicket{Ticket: t} }
		}
		return v, nil

	case key.Matches(msg, v.keys.Delete):
		if len(tickets) > 0 {
			v.confirmingDelete = true
			v.deleteTargetID = tickets[v.cursor].ID
			v.deleteTargetName = tickets[v.cursor].Title
		}
		return v, nil

	case key.Matches(msg, v.keys.Advance):
		if len(tickets) > 0 {
			t := tickets[v.cursor]
			return v, v.advanceStatus(t)
		}
		return v, nil

	case key.Matches(msg, v.keys.Refresh):
		return v, v.reload

	case key.Matches(msg, v.keys.Help):
		v.showHelpPopup = true
		return v, nil
	}

	return v, nil
}

func (v *BoardView) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.String() == "y", key.Matches(msg, v.keys.Enter):
		id := v.deleteTargetID
		v.confirmingDelete = false
		return v, v.deleteTicket(id)

	case msg.String() == "n", key.Matches(msg, v.keys.Back):
		v.confirmingDelete = false
		return v, nil
	}
	return v, nil
}

func (v *BoardView) cycleFilter(dir int) {
	current := v.store.Filter()
	idx := 0
	for i, f := range models.Filters {
		if f == current {
			idx = i
			break
		}
	}
	idx = (idx + dir + len(models.Filters)) % len(models.Filters)
	v.store.SetFilter(models.Filters[idx])
	v.cursor = 0
	v.scrollY = 0
}

func (v *BoardView) clampCursor() {
	n := len(v.store.FilteredTickets())
	v.cursor = clamp(v.cursor, 0, max(0, n-1))
	v.ensureVisible()
}

func (v *BoardView) deleteTicket(id int64) tea.Cmd {
	return func() tea.Msg {
		if err := v.store.DeleteTicket(v.ctx, id); err != nil {
			return OpFailedMsg{Op: "delete", Err: err}
		}
		return opDoneMsg{}
	}
}

func (v *BoardView) advanceStatus(t models.Ticket) tea.Cmd {
	next := t.Status.Next()
	return func() tea.Msg {
		upd := store.TicketUpdate{Status: &next, AssigneeID: t.AssigneeID}
		if _, err := v.store.UpdateTicket(v.ctx, t.ID, upd); err != nil {
			return OpFailedMsg{Op: "update", Err: err}
		}
		return opDoneMsg{}
	}
}

func (v *BoardView) reload() tea.Msg {
	if err := v.store.LoadInitialData(v.ctx); err != nil {
		return OpFailedMsg{Op: "refresh", Err: err}
	}
	return opDoneMsg{}
}

// listHeight returns the number of ticket rows that fit on screen
func (v *BoardView) listHeight() int {
	// title + filter bar + status bar + error line + paddings
	return max(1, v.height-8)
}

func (v *BoardView) ensureVisible() {
	h := v.listHeight()
	if v.cursor < v.scrollY {
		v.scrollY = v.cursor
	}
	if v.cursor >= v.scrollY+h {
		v.scrollY = v.cursor - h + 1
	}
}

// View renders the board
func (v *BoardView) View() string {
	if v.width == 0 {
		return "loading..."
	}

	contentWidth := styles.ContentWidth(v.width)
	var b strings.Builder

	title := v.styles.Title.Render("Tickboard")
	members := v.styles.TitleMuted.Render(fmt.Sprintf("  %d team members", len(v.store.Members())))
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Bottom, title, members))
	b.WriteString("\n\n")

	b.WriteString(v.renderFilterBar())
	b.WriteString("\n\n")

	if v.confirmingDelete {
		b.WriteString(v.renderConfirmDelete())
	} else if v.showHelpPopup {
		b.WriteString(v.renderHelp())
	} else {
		b.WriteString(v.renderList(contentWidth))
	}

	if v.lastErr != "" {
		b.WriteString("\n")
		b.WriteString(v.styles.ErrorLine.Render("! " + v.lastErr))
	}

	b.WriteString("\n")
	b.WriteString(v.styles.StatusBar.Render("n new · e edit · s advance · d delete · ←/→ filter · r refresh · ? help · q quit"))

	return styles.CenterView(b.String(), v.width, v.height)
}

func (v *BoardView) renderFilterBar() string {
	counts := v.store.Counts()
	current := v.store.Filter()

	parts := make([]string, 0, len(models.Filters))
	for _, f := range models.Filters {
		label := fmt.Sprintf("%s %s", f.Label(), v.styles.FilterCount.Render(fmt.Sprintf("%d", counts[f])))
		if f == current {
			parts = append(parts, v.styles.FilterActive.Render(label))
		} else {
			parts = append(parts, v.styles.FilterButton.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Center, parts...)
}

func (v *BoardView) renderList(contentWidth int) string {
	tickets := v.store.FilteredTickets()
	if len(tickets) == 0 {
		return v.styles.TitleMuted.Render("  No tickets. Press n to create one.")
	}

	h := v.listHeight()
	end := min(v.scrollY+h, len(tickets))

	var rows []string
	for i := v.scrollY; i < end; i++ {
		rows = append(rows, v.renderTicket(tickets[i], i == v.cursor, contentWidth))
	}
	return strings.Join(rows, "\n")
}

func (v *BoardView) renderTicket(t models.Ticket, selected bool, contentWidth int) string {
	badge := v.styles.StatusBadge.
		Foreground(styles.StatusColor(t.Status)).
		Render("[" + t.Status.Label() + "]")

	meta := v.styles.TicketMeta.Render(
		fmt.Sprintf("due %s · %s", t.Deadline, v.store.AssigneeName(t)),
	)

	line := fmt.Sprintf("%s %s  %s", badge, t.Title, meta)
	if selected {
		return v.styles.TicketSelected.Width(contentWidth - 2).Render(line)
	}
	return v.styles.TicketItem.Width(contentWidth - 2).Render(line)
}

func (v *BoardView) renderConfirmDelete() string {
	body := fmt.Sprintf("Delete ticket %q?\n\n%s",
		v.deleteTargetName,
		v.styles.TitleMuted.Render("y/enter confirm · n/esc cancel"),
	)
	return v.styles.Dialog.Render(body)
}

func (v *BoardView) renderHelp() string {
	rows := []struct{ k, d string }{
		{"↑/k ↓/j", "move"},
		{"←/h →/l", "switch status filter"},
		{"n", "new ticket"},
		{"e", "edit selected ticket"},
		{"s", "advance selected ticket's status"},
		{"d", "delete selected ticket"},
		{"r", "refetch tickets and members"},
		{"q", "quit"},
	}

	var b strings.Builder
	for _, r := range rows {
		b.WriteString(fmt.Sprintf("%s  %s\n",
			v.styles.HelpKey.Render(fmt.Sprintf("%-8s", r.k)),
			v.styles.HelpDesc.Render(r.d),
		))
	}
	return v.styles.Dialog.Render(b.String())
}
