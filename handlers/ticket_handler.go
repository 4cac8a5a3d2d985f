package handlers

import (
	"errors"
	"net/http"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"

	"eventhive/internal/status"
	"eventhive/services"
)

type TicketHandler struct {
	registry *services.Registry
	store    *services.EventStore
}

func NewTicketHandler(registry *services.Registry, store *services.EventStore) *TicketHandler {
	return &TicketHandler{
		registry: registry,
		store:    store,
	}
}

// ListTickets returns every ticket held by the given account.
func (h *TicketHandler) ListTickets(e *core.RequestEvent) error {
	accountID := e.Request.URL.Query().Get("account_id")
	if accountID == "" {
		return apis.NewBadRequestError("account_id is required", nil)
	}

	tickets := h.store.TicketsFor(accountID)
	return e.JSON(http.StatusOK, map[string]any{
		"tickets": tickets,
		"total":   len(tickets),
	})
}

func (h *TicketHandler) TransferTicket(e *core.RequestEvent) error {
	var req struct {
		FromAccountID string `json:"from_account_id"`
		ToAccountID   string `json:"to_account_id"`
		TicketID      string `json:"ticket_id"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}
	if req.FromAccountID == "" || req.ToAccountID == "" || req.TicketID == "" {
		return apis.NewBadRequestError("from_account_id, to_account_id and ticket_id are required", nil)
	}

	txID, err := h.registry.TransferTicket(e.Request.Context(), req.FromAccountID, req.ToAccountID, req.TicketID)
	if err != nil {
		switch {
		case errors.Is(err, status.ErrTicketNotFound):
			return apis.NewNotFoundError("Ticket not found", err)
		case errors.Is(err, status.ErrNoSigner):
			return apis.NewBadRequestError("No wallet available for this account", err)
		}
		return apis.NewApiError(http.StatusBadGateway, "Transfer failed", err)
	}

	return e.JSON(http.StatusOK, map[string]any{
		"transferred":    true,
		"transaction_id": txID,
	})
}

// AssociateToken links a token to the account so it can receive tickets.
func (h *TicketHandler) AssociateToken(e *core.RequestEvent) error {
	var req struct {
		AccountID string `json:"account_id"`
		TokenID   string `json:"token_id"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}
	if req.AccountID == "" || req.TokenID == "" {
		return apis.NewBadRequestError("account_id and token_id are required", nil)
	}

	txID, err := h.registry.AssociateToken(e.Request.Context(), req.AccountID, req.TokenID)
	if err != nil {
		if errors.Is(err, status.ErrNoSigner) {
			return apis.NewBadRequestError("No wallet available for this account", err)
		}
		return apis.NewApiError(http.StatusBadGateway, "Association failed", err)
	}

	return e.JSON(http.StatusOK, map[string]any{
		"associated":     true,
		"transaction_id": txID,
	})
}
