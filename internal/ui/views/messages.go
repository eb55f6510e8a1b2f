package views

import "github.com/tbryant/tickboard/internal/models"

// RefreshMsg signals that the store changed and views should re-read it
type RefreshMsg struct{}

// NewTicket signals to open the form in creation mode
type NewTicket struct{}

// EditTicket signals to open the form pre-filled with a ticket
type EditTicket struct {
	Ticket models.Ticket
}

// FormClosed signals to return to the board
type FormClosed struct{}

// OpFailedMsg reports a failed store operation for the status line
type OpFailedMsg struct {
	Op  string
	Err error
}

// opDoneMsg reports a completed store operation
type opDoneMsg struct{}
