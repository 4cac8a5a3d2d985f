package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventhive/models"
)

func TestTicketHandler_ListTickets(t *testing.T) {
	_, handler, store := newTestHandlers()
	store.RecordTicket(context.Background(), "0.0.1234", models.UserTicket{ID: "ticket-1", EventID: "event-1"})

	e, _ := newRequestEvent(http.MethodGet, "/api/v1/tickets", "")
	assert.Equal(t, http.StatusBadRequest, apiErrorStatus(t, handler.ListTickets(e)))

	e, rec := newRequestEvent(http.MethodGet, "/api/v1/tickets?account_id=0.0.1234", "")
	require.NoError(t, handler.ListTickets(e))
	assert.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Tickets []models.UserTicket `json:"tickets"`
		Total   int                 `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, 1, body.Total)
	assert.Equal(t, "ticket-1", body.Tickets[0].ID)
}

func TestTicketHandler_TransferTicket_Validation(t *testing.T) {
	_, handler, _ := newTestHandlers()

	e, _ := newRequestEvent(http.MethodPost, "/api/v1/tickets/transfer", `{"from_account_id":"0.0.1111"}`)
	assert.Equal(t, http.StatusBadRequest, apiErrorStatus(t, handler.TransferTicket(e)))

	e, _ = newRequestEvent(http.MethodPost, "/api/v1/tickets/transfer",
		`{"from_account_id":"0.0.1111","to_account_id":"0.0.2222","ticket_id":"missing"}`)
	assert.Equal(t, http.StatusNotFound, apiErrorStatus(t, handler.TransferTicket(e)))
}

func TestTicketHandler_TransferTicket(t *testing.T) {
	_, handler, store := newTestHandlers()
	store.RecordTicket(context.Background(), "0.0.1111", models.UserTicket{
		ID:              "ticket-1",
		EventID:         "event-1",
		SerialNumber:    "sim-1",
		HolderAccountID: "0.0.1111",
	})

	e, rec := newRequestEvent(http.MethodPost, "/api/v1/tickets/transfer",
		`{"from_account_id":"0.0.1111","to_account_id":"0.0.2222","ticket_id":"ticket-1"}`)
	require.NoError(t, handler.TransferTicket(e))
	assert.Equal(t, http.StatusOK, rec.Code)

	assert.Empty(t, store.TicketsFor("0.0.1111"))
	assert.Len(t, store.TicketsFor("0.0.2222"), 1)
}

func TestTicketHandler_AssociateToken_Validation(t *testing.T) {
	_, handler, _ := newTestHandlers()

	e, _ := newRequestEvent(http.MethodPost, "/api/v1/tickets/associate", `{"account_id":"0.0.1234"}`)
	assert.Equal(t, http.StatusBadRequest, apiErrorStatus(t, handler.AssociateToken(e)))
}
