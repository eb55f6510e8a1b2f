package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/tbryant/tickboard/internal/store"
	"github.com/tbryant/tickboard/internal/ui/views"
)

// StoreChangedMsg is pumped into the program whenever the ticket store
// notifies its subscribers.
type StoreChangedMsg struct{}

// Currently active view
type View int

const (
	ViewBoard View = iota
	ViewForm
)

type App struct {
	ctx         context.Context
	store       *store.Store
	currentView View
	board       *views.BoardView
	form        *views.FormView
	width       int
	height      int
}

// Creates a new application
func NewApp(ctx context.Context, st *store.Store) *App {
	return &App{
		ctx:         ctx,
		store:       st,
		currentView: ViewBoard,
		board:       views.NewBoardView(ctx, st),
	}
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(a.board.Init(), a.loadInitialData)
}

// loadInitialData populates the store once, at startup. A failure still
// renders the (empty) board; the refresh key retries.
func (a *App) loadInitialData() tea.Msg {
	if err := a.store.LoadInitialData(a.ctx); err != nil {
		return views.OpFailedMsg{Op: "load", Err: err}
	}
	return views.RefreshMsg{}
}

func (a *App) openForm(form *views.FormView) tea.Cmd {
	a.currentView = ViewForm
	a.form = form

	return tea.Batch(
		a.form.Init(),
		func() tea.Msg {
			return tea.WindowSizeMsg{Width: a.width, Height: a.height}
		},
	)
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		// Always size the board since it persists
		a.board.Update(msg)
		if a.form != nil {
			a.form.Update(msg)
		}
		return a, nil

	case StoreChangedMsg:
		// Re-read derived state; the re-render happens either way
		a.board.Update(views.RefreshMsg{})
		return a, nil

	case views.NewTicket:
		return a, a.openForm(views.NewFormView(a.ctx, a.store, nil))

	case views.EditTicket:
		ticket := msg.Ticket
		return a, a.openForm(views.NewFormView(a.ctx, a.store, &ticket))

	case views.FormClosed:
		a.currentView = ViewBoard
		a.form = nil
		a.board.Update(views.RefreshMsg{})
		return a, nil
	}

	var cmd tea.Cmd
	switch a.currentView {
	case ViewBoard:
		_, cmd = a.board.Update(msg)
	case ViewForm:
		_, cmd = a.form.Update(msg)
	}

	return a, cmd
}

func (a *App) View() string {
	switch a.currentView {
	case ViewForm:
		if a.form != nil {
			return a.form.View()
		}
	}
	return a.board.View()
}
