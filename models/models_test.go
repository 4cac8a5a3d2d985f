package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvent_SoldOut(t *testing.T) {
	event := Event{MaxTickets: 2}

	assert.False(t, event.SoldOut())

	event.TicketsSold = 1
	assert.False(t, event.SoldOut())

	event.TicketsSold = 2
	assert.True(t, event.SoldOut())
}

func TestEvent_TicketTypeByID(t *testing.T) {
	event := Event{
		TicketTypes: []TicketType{
			{ID: "general", Name: "General", Price: 10, MaxSupply: 100},
			{ID: "vip", Name: "VIP", Price: 50, MaxSupply: 20},
		},
	}

	tt := event.TicketTypeByID("vip")
	require.NotNil(t, tt)
	assert.Equal(t, "VIP", tt.Name)

	// The returned pointer aliases the event's own slice.
	tt.CurrentSupply = 5
	assert.Equal(t, 5, event.TicketTypes[1].CurrentSupply)

	assert.Nil(t, event.TicketTypeByID("backstage"))
}

func TestEvent_Clone_DetachesTicketTypes(t *testing.T) {
	event := Event{
		ID: "event-1",
		TicketTypes: []TicketType{
			{ID: "general", MaxSupply: 100},
		},
	}

	clone := event.Clone()
	clone.TicketTypes[0].CurrentSupply = 42

	assert.Equal(t, 0, event.TicketTypes[0].CurrentSupply)
	assert.Equal(t, 42, clone.TicketTypes[0].CurrentSupply)
}

func TestUserTicket_JSONSerialization(t *testing.T) {
	ticket := UserTicket{
		ID:               "ticket-1",
		EventID:          "event-1",
		TokenID:          "0.0.5001",
		SerialNumber:     "7",
		TicketNumber:     7,
		EventName:        "Test Concert",
		EventDate:        "2026-10-01",
		TicketType:       "VIP",
		PricePaid:        12.5,
		HolderAccountID:  "0.0.1234",
		PurchasedAt:      time.Now().UTC(),
		VerificationCode: "dGlja2V0",
		CheckInCode:      "A1B2C3",
	}

	jsonData, err := json.Marshal(ticket)
	require.NoError(t, err)

	var unmarshaled UserTicket
	require.NoError(t, json.Unmarshal(jsonData, &unmarshaled))

	assert.Equal(t, ticket.ID, unmarshaled.ID)
	assert.Equal(t, ticket.SerialNumber, unmarshaled.SerialNumber)
	assert.Equal(t, ticket.PricePaid, unmarshaled.PricePaid)
	assert.Equal(t, ticket.VerificationCode, unmarshaled.VerificationCode)
	assert.Equal(t, ticket.CheckInCode, unmarshaled.CheckInCode)
	assert.WithinDuration(t, ticket.PurchasedAt, unmarshaled.PurchasedAt, time.Second)
}
