package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/tbryant/tickboard/internal/models"
)

// HTTPClient implements Client against the ticket REST API.
type HTTPClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewHTTPClient creates a client targeting the given base URL
// (e.g. "http://localhost:8080"). The token is passed through verbatim
// as the Authorization header on every request. A zero timeout disables
// the request deadline.
func NewHTTPClient(baseURL, token string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) ListTickets(ctx context.Context) ([]models.Ticket, error) {
	var tickets []models.Ticket
	if err := c.doJSON(ctx, http.MethodGet, "/ticket", nil, &tickets); err != nil {
		return nil, err
	}
	return tickets, nil
}

func (c *HTTPClient) CreateTicket(ctx context.Context, req *CreateTicketRequest) (*models.Ticket, error) {
	var ticket models.Ticket
	if err := c.doJSON(ctx, http.MethodPost, "/ticket", req, &ticket); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (c *HTTPClient) UpdateTicket(ctx context.Context, id int64, req *UpdateTicketRequest) (*TicketPatch, error) {
	var patch TicketPatch
	if err := c.doJSON(ctx, http.MethodPut, "/ticket/"+strconv.FormatInt(id, 10), req, &patch); err != nil {
		return nil, err
	}
	return &patch, nil
}

func (c *HTTPClient) DeleteTicket(ctx context.Context, id int64) error {
	// The response body is a bare confirmation; ignore it.
	return c.doJSON(ctx, http.MethodDelete, "/ticket/"+strconv.FormatInt(id, 10), nil, nil)
}

func (c *HTTPClient) ListTeamMembers(ctx context.Context) ([]models.TeamMember, error) {
	var members []models.TeamMember
	if err := c.doJSON(ctx, http.MethodGet, "/team-members", nil, &members); err != nil {
		return nil, err
	}
	return members, nil
}

func (c *HTTPClient) doJSON(ctx context.Context, method, path string, body any, result any) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("performing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(respBody, &errResp) == nil && errResp.Error != "" {
			return &APIError{StatusCode: resp.StatusCode, Message: errResp.Error}
		}
		return &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(respBody))}
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}

	return nil
}
