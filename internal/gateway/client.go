package gateway

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tbryant/tickboard/internal/models"
)

// Client is the remote ticket gateway. It provides durable storage for
// tickets and the read-only team member roster.
type Client interface {
	ListTickets(ctx context.Context) ([]models.Ticket, error)
	CreateTicket(ctx context.Context, req *CreateTicketRequest) (*models.Ticket, error)
	UpdateTicket(ctx context.Context, id int64, req *UpdateTicketRequest) (*TicketPatch, error)
	DeleteTicket(ctx context.Context, id int64) error
	ListTeamMembers(ctx context.Context) ([]models.TeamMember, error)
}

// CreateTicketRequest is a ticket minus its server-assigned ID.
// AssigneeID is always serialized, as an explicit null when unset.
type CreateTicketRequest struct {
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Deadline    string        `json:"deadline"`
	AssigneeID  *int64        `json:"assigneeId"`
	Status      models.Status `json:"status"`
	CreatedAt   string        `json:"createdAt"`
}

// UpdateTicketRequest carries a partial ticket update. Nil pointer fields
// are omitted from the request body, except AssigneeID which is always
// sent (null when unset) so the gateway never sees an absent assignee.
type UpdateTicketRequest struct {
	Title       *string        `json:"title,omitempty"`
	Description *string        `json:"description,omitempty"`
	Deadline    *string        `json:"deadline,omitempty"`
	AssigneeID  *int64         `json:"assigneeId"`
	Status      *models.Status `json:"status,omitempty"`
}

// NullableID is an optional member reference that distinguishes an absent
// JSON field from an explicit null.
type NullableID struct {
	Set   bool
	Value *int64
}

func (n *NullableID) UnmarshalJSON(b []byte) error {
	n.Set = true
	if string(b) == "null" {
		n.Value = nil
		return nil
	}
	return json.Unmarshal(b, &n.Value)
}

// TicketPatch is the set of fields echoed back by an update. Nil (unset)
// fields were not part of the response and must be preserved locally.
type TicketPatch struct {
	ID          *int64         `json:"id"`
	Title       *string        `json:"title"`
	Description *string        `json:"description"`
	Deadline    *string        `json:"deadline"`
	AssigneeID  NullableID     `json:"assigneeId"`
	Status      *models.Status `json:"status"`
	CreatedAt   *string        `json:"createdAt"`
}

// APIError is a non-2xx response from the gateway.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("gateway returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("gateway returned status %d: %s", e.StatusCode, e.Message)
}
