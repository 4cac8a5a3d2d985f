package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"

	"eventhive/internal/status"
	"eventhive/services"
)

type EventHandler struct {
	registry    *services.Registry
	store       *services.EventStore
	environment string
}

func NewEventHandler(registry *services.Registry, store *services.EventStore, environment string) *EventHandler {
	return &EventHandler{
		registry:    registry,
		store:       store,
		environment: environment,
	}
}

// ListEvents returns active events, optionally filtered by a search query
// or organizer account.
func (h *EventHandler) ListEvents(e *core.RequestEvent) error {
	query := e.Request.URL.Query()

	events := h.store.Events()
	if q := query.Get("q"); q != "" {
		events = h.store.Search(q)
	} else if organizer := query.Get("organizer"); organizer != "" {
		events = h.store.EventsByOrganizer(organizer)
	}

	return e.JSON(http.StatusOK, map[string]any{
		"events": events,
		"total":  len(events),
	})
}

func (h *EventHandler) GetEvent(e *core.RequestEvent) error {
	eventID := e.Request.PathValue("eventId")

	event, err := h.store.EventByID(eventID)
	if err != nil {
		return apis.NewNotFoundError("Event not found", err)
	}

	return e.JSON(http.StatusOK, event)
}

func (h *EventHandler) CreateEvent(e *core.RequestEvent) error {
	var req struct {
		services.CreateEventInput
		AccountID string `json:"account_id"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}
	if req.Name == "" || req.Date == "" {
		return apis.NewBadRequestError("name and date are required", nil)
	}
	if req.AccountID == "" {
		return apis.NewBadRequestError("account_id is required", nil)
	}

	event, err := h.registry.CreateEvent(e.Request.Context(), req.CreateEventInput, req.AccountID)
	if err != nil {
		if errors.Is(err, status.ErrInvalidCapacity) {
			return apis.NewBadRequestError("max_tickets must be greater than zero", err)
		}
		return apis.NewBadRequestError("Failed to create event", err)
	}

	return e.JSON(http.StatusCreated, event)
}

// RefreshEvents forces a reconciliation against the registry contract.
func (h *EventHandler) RefreshEvents(e *core.RequestEvent) error {
	events, err := h.registry.RefreshFromChain(e.Request.Context())
	if err != nil {
		return apis.NewApiError(http.StatusBadGateway, "Failed to sync events from chain", err)
	}

	return e.JSON(http.StatusOK, map[string]any{
		"events": events,
		"total":  len(events),
		"source": syncSource(h.registry),
	})
}

func (h *EventHandler) PurchaseTicket(e *core.RequestEvent) error {
	eventID := e.Request.PathValue("eventId")

	var req struct {
		AccountID    string `json:"account_id"`
		TicketTypeID string `json:"ticket_type_id"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}
	if req.AccountID == "" {
		return apis.NewBadRequestError("account_id is required", nil)
	}

	serial, ticket, err := h.registry.PurchaseTicket(e.Request.Context(), eventID, req.TicketTypeID, req.AccountID)
	if err != nil {
		switch {
		case errors.Is(err, status.ErrEventNotFound):
			return apis.NewNotFoundError("Event not found", err)
		case errors.Is(err, status.ErrTicketTypeNotFound):
			return apis.NewNotFoundError("Ticket type not found", err)
		case errors.Is(err, status.ErrSoldOut):
			return apis.NewApiError(http.StatusConflict, "Event is sold out", err)
		case errors.Is(err, status.ErrNoSigner):
			return apis.NewBadRequestError("No wallet available for this account", err)
		case errors.Is(err, status.ErrTokenMissing):
			return apis.NewBadRequestError("Event has no ticket collection on the ledger", err)
		}
		return apis.NewApiError(http.StatusBadGateway, "Purchase failed", err)
	}

	return e.JSON(http.StatusCreated, map[string]any{
		"serial_number": serial,
		"ticket":        ticket,
	})
}

// DeactivateEvent soft-deletes an event; only its organizer may do so.
// The record survives, it just stops being listed.
func (h *EventHandler) DeactivateEvent(e *core.RequestEvent) error {
	eventID := e.Request.PathValue("eventId")

	var req struct {
		AccountID string `json:"account_id"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}
	if req.AccountID == "" {
		return apis.NewBadRequestError("account_id is required", nil)
	}

	event, err := h.store.EventByID(eventID)
	if err != nil {
		return apis.NewNotFoundError("Event not found", err)
	}
	if event.CreatorAccountID != strings.TrimSpace(req.AccountID) {
		return apis.NewForbiddenError("Only the event organizer can deactivate it", nil)
	}

	if err := h.store.Deactivate(e.Request.Context(), eventID); err != nil {
		return apis.NewNotFoundError("Event not found", err)
	}
	return e.JSON(http.StatusOK, map[string]any{"deactivated": true})
}

// ClearEvents drops every event. Development environments only.
func (h *EventHandler) ClearEvents(e *core.RequestEvent) error {
	if h.environment == "production" {
		return apis.NewForbiddenError("Not available in production", nil)
	}

	h.store.ClearAll(e.Request.Context())
	return e.JSON(http.StatusOK, map[string]any{"cleared": true})
}

func syncSource(r *services.Registry) string {
	if r.ChainConfigured() {
		return "chain"
	}
	return "local"
}
