package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/tbryant/tickboard/internal/models"
)

// testHandler captures the incoming request details and returns a canned response.
type testHandler struct {
	// captured from the request
	method        string
	path          string
	body          string
	contentType   string
	authorization string

	// canned response
	statusCode   int
	responseBody string
}

func (h *testHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.method = r.Method
	h.path = r.URL.Path
	h.contentType = r.Header.Get("Content-Type")
	h.authorization = r.Header.Get("Authorization")
	if r.Body != nil {
		data, _ := io.ReadAll(r.Body)
		h.body = string(data)
	}

	w.Header().Set("Content-Type", "application/json")
	if h.statusCode != 0 {
		w.WriteHeader(h.statusCode)
	} else {
		w.WriteHeader(http.StatusOK)
	}
	if h.responseBody != "" {
		_, _ = w.Write([]byte(h.responseBody))
	}
}

// newTestClient creates an HTTPClient pointed at a test server with the given handler.
func newTestClient(h http.Handler) (*HTTPClient, *httptest.Server) {
	srv := httptest.NewServer(h)
	c := NewHTTPClient(srv.URL, "test", 5*time.Second)
	return c, srv
}

func TestHTTPClient_ListTickets(t *testing.T) {
	h := &testHandler{
		responseBody: `[
			{"id": 1, "title": "Fix login", "description": "500 on submit", "deadline": "2026-09-10", "assigneeId": 2, "status": "todo", "createdAt": "2026-09-01T10:00:00Z"},
			{"id": 2, "title": "Ship v2", "description": "Cut a release", "deadline": "2026-09-20", "assigneeId": null, "status": "done", "createdAt": "2026-08-20T09:30:00Z"}
		]`,
	}
	c, srv := newTestClient(h)
	defer srv.Close()

	tickets, err := c.ListTickets(context.Background())
	if err != nil {
		t.Fatalf("ListTickets() error = %v", err)
	}

	if h.method != http.MethodGet {
		t.Errorf("method = %q, want GET", h.method)
	}
	if h.path != "/ticket" {
		t.Errorf("path = %q, want /ticket", h.path)
	}
	if h.authorization != "test" {
		t.Errorf("authorization = %q, want %q", h.authorization, "test")
	}

	if len(tickets) != 2 {
		t.Fatalf("len(tickets) = %d, want 2", len(tickets))
	}
	if tickets[0].ID != 1 || tickets[0].Title != "Fix login" {
		t.Errorf("tickets[0] = %+v", tickets[0])
	}
	if tickets[0].AssigneeID == nil || *tickets[0].AssigneeID != 2 {
		t.Errorf("tickets[0].AssigneeID = %v, want 2", tickets[0].AssigneeID)
	}
	if tickets[1].AssigneeID != nil {
		t.Errorf("tickets[1].AssigneeID = %v, want nil", tickets[1].AssigneeID)
	}
}

func TestHTTPClient_CreateTicket(t *testing.T) {
	h := &testHandler{
		responseBody: `{
			"id": 7,
			"title": "Write docs",
			"description": "Getting started guide",
			"deadline": "2026-09-15",
			"assigneeId": null,
			"status": "todo",
			"createdAt": "2026-09-01T12:00:00Z"
		}`,
	}
	c, srv := newTestClient(h)
	defer srv.Close()

	req := &CreateTicketRequest{
		Title:       "Write docs",
		Description: "Getting started guide",
		Deadline:    "2026-09-15",
		AssigneeID:  nil,
		Status:      models.StatusTodo,
		CreatedAt:   "2026-09-01T12:00:00Z",
	}

	ticket, err := c.CreateTicket(context.Background(), req)
	if err != nil {
		t.Fatalf("CreateTicket() error = %v", err)
	}

	if h.method != http.MethodPost {
		t.Errorf("method = %q, want POST", h.method)
	}
	if h.path != "/ticket" {
		t.Errorf("path = %q, want /ticket", h.path)
	}
	if h.contentType != "application/json" {
		t.Errorf("content-type = %q, want application/json", h.contentType)
	}

	// An unset assignee must serialize as an explicit null, never be omitted.
	var reqBody map[string]any
	if err := json.Unmarshal([]byte(h.body), &reqBody); err != nil {
		t.Fatalf("unmarshaling request body: %v", err)
	}
	if v, ok := reqBody["assigneeId"]; !ok {
		t.Error("request body is missing assigneeId")
	} else if v != nil {
		t.Errorf("assigneeId = %v, want null", v)
	}
	if _, ok := reqBody["id"]; ok {
		t.Error("request body must not carry an id")
	}

	if ticket.ID != 7 {
		t.Errorf("ticket.ID = %d, want 7", ticket.ID)
	}
}

func TestHTTPClient_UpdateTicket(t *testing.T) {
	h := &testHandler{
		responseBody: `{"id": 3, "status": "done", "assigneeId": null}`,
	}
	c, srv := newTestClient(h)
	defer srv.Close()

	status := models.StatusDone
	patch, err := c.UpdateTicket(context.Background(), 3, &UpdateTicketRequest{Status: &status})
	if err != nil {
		t.Fatalf("UpdateTicket() error = %v", err)
	}

	if h.method != http.MethodPut {
		t.Errorf("method = %q, want PUT", h.method)
	}
	if h.path != "/ticket/3" {
		t.Errorf("path = %q, want /ticket/3", h.path)
	}

	var reqBody map[string]any
	if err := json.Unmarshal([]byte(h.body), &reqBody); err != nil {
		t.Fatalf("unmarshaling request body: %v", err)
	}
	if reqBody["status"] != "done" {
		t.Errorf("status = %v, want done", reqBody["status"])
	}
	// Untouched fields stay out of the body; assigneeId is always present.
	if _, ok := reqBody["title"]; ok {
		t.Error("request body must not carry title for a status-only update")
	}
	if v, ok := reqBody["assigneeId"]; !ok {
		t.Error("request body is missing assigneeId")
	} else if v != nil {
		t.Errorf("assigneeId = %v, want null", v)
	}

	if patch.Status == nil || *patch.Status != models.StatusDone {
		t.Errorf("patch.Status = %v, want done", patch.Status)
	}
	// The echoed null assignee is a set field; the missing title is not.
	if !patch.AssigneeID.Set || patch.AssigneeID.Value != nil {
		t.Errorf("patch.AssigneeID = %+v, want explicit null", patch.AssigneeID)
	}
	if patch.Title != nil {
		t.Errorf("patch.Title = %v, want nil", *patch.Title)
	}
}

func TestHTTPClient_DeleteTicket(t *testing.T) {
	h := &testHandler{responseBody: `{"ok": true}`}
	c, srv := newTestClient(h)
	defer srv.Close()

	if err := c.DeleteTicket(context.Background(), 9); err != nil {
		t.Fatalf("DeleteTicket() error = %v", err)
	}

	if h.method != http.MethodDelete {
		t.Errorf("method = %q, want DELETE", h.method)
	}
	if h.path != "/ticket/9" {
		t.Errorf("path = %q, want /ticket/9", h.path)
	}
}

func TestHTTPClient_ListTeamMembers(t *testing.T) {
	h := &testHandler{
		responseBody: `[
			{"id": 1, "name": "Ada", "role": "Backend", "avatar": "https://example.com/ada.png", "skills": ["go", "sql"]}
		]`,
	}
	c, srv := newTestClient(h)
	defer srv.Close()

	members, err := c.ListTeamMembers(context.Background())
	if err != nil {
		t.Fatalf("ListTeamMembers() error = %v", err)
	}

	if h.path != "/team-members" {
		t.Errorf("path = %q, want /team-members", h.path)
	}
	if len(members) != 1 || members[0].Name != "Ada" || len(members[0].Skills) != 2 {
		t.Errorf("members = %+v", members)
	}
}

func TestHTTPClient_APIError(t *testing.T) {
	h := &testHandler{
		statusCode:   http.StatusNotFound,
		responseBody: `{"error": "ticket not found"}`,
	}
	c, srv := newTestClient(h)
	defer srv.Close()

	_, err := c.ListTickets(context.Background())
	if err == nil {
		t.Fatal("ListTickets() error = nil, want *APIError")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error type = %T, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusNotFound {
		t.Errorf("StatusCode = %d, want 404", apiErr.StatusCode)
	}
	if apiErr.Message != "ticket not found" {
		t.Errorf("Message = %q, want %q", apiErr.Message, "ticket not found")
	}
}

func TestHTTPClient_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close() // connection refused from here on

	c := NewHTTPClient(srv.URL, "test", time.Second)
	_, err := c.ListTickets(context.Background())
	if err == nil {
		t.Fatal("ListTickets() error = nil, want transport error")
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want a transport error, not *APIError", err)
	}
}
