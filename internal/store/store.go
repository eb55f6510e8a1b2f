package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/tbryant/tickboard/internal/gateway"
	"github.com/tbryant/tickboard/internal/models"
)

// Store owns the in-session ticket and team member collections. Every
// mutation goes through the gateway first and is applied locally only after
// the gateway confirms it, so there is never speculative state to roll back.
// Gateway failures are logged and returned to the caller; local state is
// left untouched.
//
// Consumers only ever see copies of the collections. Concurrent in-flight
// updates to the same ticket are not serialized: responses apply in arrival
// order, last write wins.
type Store struct {
	gw  gateway.Client
	log zerolog.Logger
	now func() time.Time

	mu       sync.RWMutex
	tickets  []models.Ticket
	members  []models.TeamMember
	filter   models.Filter
	filtered []models.Ticket

	subMu   sync.Mutex
	subs    map[int]func()
	nextSub int
}

// New creates a store with an empty collection and the "all" filter active.
func New(gw gateway.Client, log zerolog.Logger) *Store {
	return &Store{
		gw:     gw,
		log:    log,
		now:    time.Now,
		filter: models.FilterAll,
		subs:   make(map[int]func()),
	}
}

// Subscribe registers fn to run after every state change. The returned
// cancel func removes the subscription.
func (s *Store) Subscribe(fn func()) (cancel func()) {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

func (s *Store) notify() {
	s.subMu.Lock()
	fns := make([]func(), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// LoadInitialData fetches the ticket and member collections from the
// gateway. A failed fetch leaves the corresponding collection as it was and
// is logged; the other fetch still runs. The returned error is informational
// only: the dashboard renders either way.
func (s *Store) LoadInitialData(ctx context.Context) error {
	var errs []error

	tickets, err := s.gw.ListTickets(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("fetching tickets failed")
		errs = append(errs, err)
	} else {
		s.mu.Lock()
		s.tickets = tickets
		s.recomputeLocked()
		s.mu.Unlock()
	}

	members, err := s.gw.ListTeamMembers(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("fetching team members failed")
		errs = append(errs, err)
	} else {
		s.mu.Lock()
		s.members = members
		s.mu.Unlock()
	}

	s.notify()
	return errors.Join(errs...)
}

// AddTicketData holds the user-supplied fields of a new ticket.
type AddTicketData struct {
	Title       string
	Description string
	Deadline    string
	AssigneeID  *int64
	Status      models.Status
}

// AddTicket stamps the creation time, requests creation via the gateway and
// appends the confirmed ticket (carrying the server-assigned ID) to the end
// of the collection. A nil assignee is sent as an explicit null.
func (s *Store) AddTicket(ctx context.Context, data AddTicketData) (*models.Ticket, error) {
	req := &gateway.CreateTicketRequest{
		Title:       data.Title,
		Description: data.Description,
		Deadline:    data.Deadline,
		AssigneeID:  data.AssigneeID,
		Status:      data.Status,
		CreatedAt:   s.now().UTC().Format(time.RFC3339),
	}
	if req.Status == "" {
		req.Status = models.StatusTodo
	}

	created, err := s.gw.CreateTicket(ctx, req)
	if err != nil {
		s.log.Error().Err(err).Str("title", data.Title).Msg("adding ticket failed")
		return nil, err
	}

	s.mu.Lock()
	s.tickets = append(s.tickets, *created)
	s.recomputeLocked()
	s.mu.Unlock()

	s.log.Info().Int64("id", created.ID).Str("title", created.Title).Msg("ticket added")
	s.notify()
	return created, nil
}

// TicketUpdate holds a partial ticket edit. Nil fields are left unchanged,
// except AssigneeID: a nil assignee always travels as an explicit null.
type TicketUpdate struct {
	Title       *string
	Description *string
	Deadline    *string
	AssigneeID  *int64
	Status      *models.Status
}

// UpdateTicket sends a partial update via the gateway and shallow-merges the
// fields echoed back into the matching local ticket. Fields the gateway does
// not echo keep their prior local value. If no local ticket matches the id,
// the merge is a no-op and the returned ticket is nil.
func (s *Store) UpdateTicket(ctx context.Context, id int64, upd TicketUpdate) (*models.Ticket, error) {
	req := &gateway.UpdateTicketRequest{
		Title:       upd.Title,
		Description: upd.Description,
		Deadline:    upd.Deadline,
		AssigneeID:  upd.AssigneeID,
		Status:      upd.Status,
	}

	patch, err := s.gw.UpdateTicket(ctx, id, req)
	if err != nil {
		s.log.Error().Err(err).Int64("id", id).Msg("updating ticket failed")
		return nil, err
	}

	var merged *models.Ticket
	s.mu.Lock()
	for i := range s.tickets {
		if s.tickets[i].ID != id {
			continue
		}
		applyPatch(&s.tickets[i], patch)
		t := s.tickets[i]
		merged = &t
		break
	}
	s.recomputeLocked()
	s.mu.Unlock()

	if merged == nil {
		s.log.Info().Int64("id", id).Msg("ticket update matched no local ticket")
		return nil, nil
	}

	s.log.Info().Int64("id", id).Msg("ticket updated")
	s.notify()
	return merged, nil
}

func applyPatch(t *models.Ticket, p *gateway.TicketPatch) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Deadline != nil {
		t.Deadline = *p.Deadline
	}
	if p.AssigneeID.Set {
		t.AssigneeID = p.AssigneeID.Value
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.CreatedAt != nil {
		t.CreatedAt = *p.CreatedAt
	}
}

// DeleteTicket requests deletion via the gateway and removes the matching
// local ticket. Deleting an id with no local match leaves the collection
// size unchanged.
func (s *Store) DeleteTicket(ctx context.Context, id int64) error {
	if err := s.gw.DeleteTicket(ctx, id); err != nil {
		s.log.Error().Err(err).Int64("id", id).Msg("deleting ticket failed")
		return err
	}

	s.mu.Lock()
	for i := range s.tickets {
		if s.tickets[i].ID == id {
			s.tickets = append(s.tickets[:i], s.tickets[i+1:]...)
			break
		}
	}
	s.recomputeLocked()
	s.mu.Unlock()

	s.log.Info().Int64("id", id).Msg("ticket deleted")
	s.notify()
	return nil
}

// SetFilter activates a status filter and recomputes the filtered view.
func (s *Store) SetFilter(f models.Filter) {
	s.mu.Lock()
	s.filter = f
	s.recomputeLocked()
	s.mu.Unlock()
	s.notify()
}

// recomputeLocked rebuilds the filtered view. Callers hold s.mu.
func (s *Store) recomputeLocked() {
	s.filtered = s.filtered[:0]
	for _, t := range s.tickets {
		if s.filter.Matches(t.Status) {
			s.filtered = append(s.filtered, t)
		}
	}
}

// Filter returns the active filter value.
func (s *Store) Filter() models.Filter {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filter
}

// Tickets returns a copy of the full ticket collection in creation order.
func (s *Store) Tickets() []models.Ticket {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Ticket, len(s.tickets))
	copy(out, s.tickets)
	return out
}

// FilteredTickets returns a copy of the tickets passing the active filter.
func (s *Store) FilteredTickets() []models.Ticket {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Ticket, len(s.filtered))
	copy(out, s.filtered)
	return out
}

// Members returns a copy of the team member roster.
func (s *Store) Members() []models.TeamMember {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.TeamMember, len(s.members))
	copy(out, s.members)
	return out
}

// Counts returns ticket totals per filter value, for the filter bar.
func (s *Store) Counts() map[models.Filter]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := make(map[models.Filter]int, len(models.Filters))
	for _, f := range models.Filters {
		counts[f] = 0
	}
	for _, t := range s.tickets {
		counts[models.FilterAll]++
		// Unknown statuses from the gateway only show up in the total;
		// the map shape stays exactly models.Filters.
		if f := models.Filter(t.Status); f != models.FilterAll {
			if _, ok := counts[f]; ok {
				counts[f]++
			}
		}
	}
	return counts
}

// MemberByID looks up a team member. ok is false for unknown ids, including
// dangling assignee references: those are tolerated, not repaired, and the
// caller renders them as unassigned.
func (s *Store) MemberByID(id int64) (models.TeamMember, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, m := range s.members {
		if m.ID == id {
			return m, true
		}
	}
	return models.TeamMember{}, false
}

// AssigneeName resolves a ticket's assignee for display.
func (s *Store) AssigneeName(t models.Ticket) string {
	if t.AssigneeID == nil {
		return "Unassigned"
	}
	m, ok := s.MemberByID(*t.AssigneeID)
	if !ok {
		return "Unassigned"
	}
	return m.Name
}
