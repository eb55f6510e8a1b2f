package views

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/tbryant/tickboard/internal/gateway"
	"github.com/tbryant/tickboard/internal/models"
	"github.com/tbryant/tickboard/internal/store"
)

// fakeGateway is a minimal in-memory gateway.Client for view tests.
type fakeGateway struct {
	tickets []models.Ticket
	members []models.TeamMember
}

func (f *fakeGateway) ListTickets(ctx context.Context) ([]models.Ticket, error) {
	return f.tickets, nil
}

func (f *fakeGateway) CreateTicket(ctx context.Context, req *gateway.CreateTicketRequest) (*models.Ticket, error) {
	return &models.Ticket{ID: 100, Title: req.Title, Status: req.Status}, nil
}

func (f *fakeGateway) UpdateTicket(ctx context.Context, id int64, req *gateway.UpdateTicketRequest) (*gateway.TicketPatch, error) {
	return &gateway.TicketPatch{Status: req.Status}, nil
}

func (f *fakeGateway) DeleteTicket(ctx context.Context, id int64) error {
	return nil
}

func (f *fakeGateway) ListTeamMembers(ctx context.Context) ([]models.TeamMember, error) {
	return f.members, nil
}

func keyMsg(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newTestBoard(t *testing.T) (*BoardView, *store.Store) {
	t.Helper()
	gw := &fakeGateway{
		tickets: []models.Ticket{
			{ID: 1, Title: "Fix login", Deadline: "2026-09-10", Status: models.StatusTodo},
			{ID: 2, Title: "Ship v2", Deadline: "2026-09-20", Status: models.StatusTodo},
		},
	}
	st := store.New(gw, zerolog.Nop())
	if err := st.LoadInitialData(context.Background()); err != nil {
		t.Fatalf("LoadInitialData() error = %v", err)
	}

	v := NewBoardView(context.Background(), st)
	v.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	return v, st
}

// The store mutates and notifies before the refresh message drains, so a
// key event can arrive while the cursor still points past the shrunken
// list. It must act on the clamped selection, not crash.
func TestBoardStaleCursorAfterDelete(t *testing.T) {
	v, st := newTestBoard(t)

	v.Update(keyMsg("j"))
	if v.cursor != 1 {
		t.Fatalf("cursor = %d, want 1", v.cursor)
	}

	// The ticket under the cursor disappears before any refresh message.
	if err := st.DeleteTicket(context.Background(), 2); err != nil {
		t.Fatalf("DeleteTicket() error = %v", err)
	}

	_, cmd := v.Update(keyMsg("e"))
	if cmd == nil {
		t.Fatal("edit produced no command")
	}
	msg := cmd()
	edit, ok := msg.(EditTicket)
	if !ok {
		t.Fatalf("command produced %T, want EditTicket", msg)
	}
	if edit.Ticket.ID != 1 {
		t.Errorf("editing ticket %d, want the remaining ticket 1", edit.Ticket.ID)
	}
}

func TestBoardStaleCursorOnEmptyList(t *testing.T) {
	v, st := newTestBoard(t)

	v.Update(keyMsg("j"))
	for _, id := range []int64{1, 2} {
		if err := st.DeleteTicket(context.Background(), id); err != nil {
			t.Fatalf("DeleteTicket(%d) error = %v", id, err)
		}
	}

	// Selection-dependent keys on an empty board do nothing.
	for _, k := range []string{"e", "d", "s"} {
		if _, cmd := v.Update(keyMsg(k)); cmd != nil {
			t.Errorf("key %q produced a command on an empty board", k)
		}
	}
	if v.confirmingDelete {
		t.Error("delete confirmation opened with no selection")
	}
}

func TestBoardStaleCursorDeleteTargetsClampedSelection(t *testing.T) {
	v, st := newTestBoard(t)

	v.Update(keyMsg("j"))
	if err := st.DeleteTicket(context.Background(), 2); err != nil {
		t.Fatalf("DeleteTicket() error = %v", err)
	}

	v.Update(keyMsg("d"))
	if !v.confirmingDelete {
		t.Fatal("delete confirmation did not open")
	}
	if v.deleteTargetID != 1 {
		t.Errorf("delete target = %d, want the remaining ticket 1", v.deleteTargetID)
	}
}
