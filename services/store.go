package services

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"

	"eventhive/internal/status"
	"eventhive/models"
)

// Fixed snapshot slot keys. Each holds one JSON-encoded blob; writes
// overwrite the whole blob.
const (
	eventsSnapshotKey  = "eventhive:events"
	ticketsSnapshotKey = "eventhive:tickets"
)

// SnapshotStore is the persistent storage slot. Load returns (nil, nil)
// when the slot has never been written.
type SnapshotStore interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
}

// EventStore owns all event and ticket records. The in-memory state is
// authoritative for the session; persistence is best-effort and a failed
// save never rolls memory back. All mutations run under one mutex, so the
// capacity check and counter increment form a single critical section with
// no suspension point between them.
type EventStore struct {
	mu      sync.Mutex
	events  []models.Event
	tickets map[string][]models.UserTicket

	snapshots SnapshotStore
	notifier  *Notifier
}

func NewEventStore(snapshots SnapshotStore, notifier *Notifier) *EventStore {
	return &EventStore{
		tickets:   make(map[string][]models.UserTicket),
		snapshots: snapshots,
		notifier:  notifier,
	}
}

// Load restores both snapshots. It never fails: a missing or corrupt blob
// degrades to an empty state with a warning.
func (s *EventStore) Load(ctx context.Context) {
	s.mu.Lock()

	if data, err := s.snapshots.Load(ctx, eventsSnapshotKey); err != nil {
		slog.Warn("failed to load events snapshot, starting fresh", "error", err)
	} else if len(data) > 0 {
		if err := json.Unmarshal(data, &s.events); err != nil {
			slog.Warn("corrupt events snapshot, starting fresh", "error", err)
			s.events = nil
		} else {
			slog.Info("loaded events from snapshot", "count", len(s.events))
		}
	}

	if data, err := s.snapshots.Load(ctx, ticketsSnapshotKey); err != nil {
		slog.Warn("failed to load tickets snapshot, starting fresh", "error", err)
	} else if len(data) > 0 {
		if err := json.Unmarshal(data, &s.tickets); err != nil {
			slog.Warn("corrupt tickets snapshot, starting fresh", "error", err)
			s.tickets = make(map[string][]models.UserTicket)
		}
	}
	if s.tickets == nil {
		s.tickets = make(map[string][]models.UserTicket)
	}

	snapshot := s.activeEventsLocked()
	s.mu.Unlock()

	s.notifier.Publish(snapshot)
}

// Events returns a defensive copy of all active events in stored order.
func (s *EventStore) Events() []models.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeEventsLocked()
}

// Count returns the number of active events, for metrics collection.
func (s *EventStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for i := range s.events {
		if s.events[i].IsActive {
			count++
		}
	}
	return count
}

func (s *EventStore) EventByID(id string) (models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.events {
		if s.events[i].ID == id {
			return s.events[i].Clone(), nil
		}
	}
	return models.Event{}, status.ErrEventNotFound
}

func (s *EventStore) EventsByOrganizer(accountID string) []models.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Event{}
	for i := range s.events {
		if s.events[i].IsActive && s.events[i].CreatorAccountID == accountID {
			out = append(out, s.events[i].Clone())
		}
	}
	return out
}

// Search matches a case-insensitive substring over name, description,
// venue and organizer. No ranking.
func (s *EventStore) Search(query string) []models.Event {
	needle := strings.ToLower(query)

	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Event{}
	for i := range s.events {
		ev := &s.events[i]
		if !ev.IsActive {
			continue
		}
		if strings.Contains(strings.ToLower(ev.Name), needle) ||
			strings.Contains(strings.ToLower(ev.Description), needle) ||
			strings.Contains(strings.ToLower(ev.Venue), needle) ||
			strings.Contains(strings.ToLower(ev.Organizer), needle) {
			out = append(out, ev.Clone())
		}
	}
	return out
}

// Insert prepends the event, persists and notifies.
func (s *EventStore) Insert(ctx context.Context, event models.Event) {
	s.mu.Lock()
	s.events = append([]models.Event{event}, s.events...)
	s.saveEventsLocked(ctx)
	snapshot := s.activeEventsLocked()
	s.mu.Unlock()

	s.notifier.Publish(snapshot)
}

// ReplaceAll swaps the entire event table for the given list, persists and
// notifies. Subscribers never observe a partial replacement.
func (s *EventStore) ReplaceAll(ctx context.Context, events []models.Event) {
	s.mu.Lock()
	s.events = make([]models.Event, len(events))
	copy(s.events, events)
	s.saveEventsLocked(ctx)
	snapshot := s.activeEventsLocked()
	s.mu.Unlock()

	s.notifier.Publish(snapshot)
}

// Deactivate soft-deletes an event. Records are never removed.
func (s *EventStore) Deactivate(ctx context.Context, id string) error {
	s.mu.Lock()
	found := false
	for i := range s.events {
		if s.events[i].ID == id {
			s.events[i].IsActive = false
			found = true
			break
		}
	}
	if !found {
		s.mu.Unlock()
		return status.ErrEventNotFound
	}
	s.saveEventsLocked(ctx)
	snapshot := s.activeEventsLocked()
	s.mu.Unlock()

	s.notifier.Publish(snapshot)
	return nil
}

// ClearAll drops every event. Development helper.
func (s *EventStore) ClearAll(ctx context.Context) {
	s.mu.Lock()
	s.events = nil
	s.saveEventsLocked(ctx)
	snapshot := s.activeEventsLocked()
	s.mu.Unlock()

	s.notifier.Publish(snapshot)
}

// IncrementSold bumps the sold counter by exactly one if and only if
// capacity remains, for both the event and, when given, the named ticket
// type. This is the sole admission-control check in the system.
func (s *EventStore) IncrementSold(ctx context.Context, eventID, ticketTypeID string) error {
	s.mu.Lock()
	idx := s.indexOfLocked(eventID)
	if idx < 0 {
		s.mu.Unlock()
		return status.ErrEventNotFound
	}
	ev := &s.events[idx]

	var tt *models.TicketType
	if ticketTypeID != "" {
		tt = ev.TicketTypeByID(ticketTypeID)
		if tt == nil {
			s.mu.Unlock()
			return status.ErrTicketTypeNotFound
		}
		if tt.CurrentSupply >= tt.MaxSupply {
			s.mu.Unlock()
			return status.ErrSoldOut
		}
	}
	if ev.TicketsSold >= ev.MaxTickets {
		s.mu.Unlock()
		return status.ErrSoldOut
	}

	ev.TicketsSold++
	if tt != nil {
		tt.CurrentSupply++
	}
	s.saveEventsLocked(ctx)
	snapshot := s.activeEventsLocked()
	s.mu.Unlock()

	s.notifier.Publish(snapshot)
	return nil
}

// DecrementSold rolls one increment back after a failed chain update.
func (s *EventStore) DecrementSold(ctx context.Context, eventID, ticketTypeID string) error {
	s.mu.Lock()
	idx := s.indexOfLocked(eventID)
	if idx < 0 {
		s.mu.Unlock()
		return status.ErrEventNotFound
	}
	ev := &s.events[idx]

	if ev.TicketsSold > 0 {
		ev.TicketsSold--
	}
	if ticketTypeID != "" {
		if tt := ev.TicketTypeByID(ticketTypeID); tt != nil && tt.CurrentSupply > 0 {
			tt.CurrentSupply--
		}
	}
	s.saveEventsLocked(ctx)
	snapshot := s.activeEventsLocked()
	s.mu.Unlock()

	s.notifier.Publish(snapshot)
	return nil
}

// RecordTicket appends to the holder's ticket list, creating it if absent.
func (s *EventStore) RecordTicket(ctx context.Context, accountID string, ticket models.UserTicket) {
	s.mu.Lock()
	s.tickets[accountID] = append(s.tickets[accountID], ticket)
	s.saveTicketsLocked(ctx)
	s.mu.Unlock()
}

// TicketsFor returns a defensive copy of the account's tickets.
func (s *EventStore) TicketsFor(accountID string) []models.UserTicket {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.tickets[accountID]
	out := make([]models.UserTicket, len(list))
	copy(out, list)
	return out
}

// TicketFor looks one ticket up without removing it.
func (s *EventStore) TicketFor(accountID, ticketID string) (models.UserTicket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.tickets[accountID] {
		if t.ID == ticketID {
			return t, nil
		}
	}
	return models.UserTicket{}, status.ErrTicketNotFound
}

// MoveTicket reassigns a ticket between per-account lists. A ticket is
// held by exactly one account at a time.
func (s *EventStore) MoveTicket(ctx context.Context, fromAccountID, toAccountID, ticketID string) (models.UserTicket, error) {
	s.mu.Lock()
	list := s.tickets[fromAccountID]
	idx := -1
	for i := range list {
		if list[i].ID == ticketID {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return models.UserTicket{}, status.ErrTicketNotFound
	}

	ticket := list[idx]
	s.tickets[fromAccountID] = append(list[:idx], list[idx+1:]...)
	ticket.HolderAccountID = toAccountID
	s.tickets[toAccountID] = append(s.tickets[toAccountID], ticket)
	s.saveTicketsLocked(ctx)
	s.mu.Unlock()

	return ticket, nil
}

func (s *EventStore) indexOfLocked(eventID string) int {
	for i := range s.events {
		if s.events[i].ID == eventID {
			return i
		}
	}
	return -1
}

func (s *EventStore) activeEventsLocked() []models.Event {
	out := []models.Event{}
	for i := range s.events {
		if s.events[i].IsActive {
			out = append(out, s.events[i].Clone())
		}
	}
	return out
}

func (s *EventStore) saveEventsLocked(ctx context.Context) {
	data, err := json.Marshal(s.events)
	if err != nil {
		slog.Warn("failed to encode events snapshot", "error", err)
		return
	}
	if err := s.snapshots.Save(ctx, eventsSnapshotKey, data); err != nil {
		slog.Warn("failed to save events snapshot", "error", err)
	}
}

func (s *EventStore) saveTicketsLocked(ctx context.Context) {
	data, err := json.Marshal(s.tickets)
	if err != nil {
		slog.Warn("failed to encode tickets snapshot", "error", err)
		return
	}
	if err := s.snapshots.Save(ctx, ticketsSnapshotKey, data); err != nil {
		slog.Warn("failed to save tickets snapshot", "error", err)
	}
}
