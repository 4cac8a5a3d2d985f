package models

import (
	"time"
)

// TicketType is an optional admission tier on an event. MaxSupply and
// CurrentSupply are bounded the same way as the event-level counters.
type TicketType struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Description   string  `json:"description,omitempty"`
	Price         float64 `json:"price"`
	MaxSupply     int     `json:"max_supply"`
	CurrentSupply int     `json:"current_supply"`
}

type Event struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Date        string  `json:"date"`
	Venue       string  `json:"venue,omitempty"`
	Organizer   string  `json:"organizer,omitempty"`
	TicketPrice float64 `json:"ticket_price"` // in HBAR
	MaxTickets  int     `json:"max_tickets"`

	// Set only after the corresponding ledger deployment step succeeds.
	CoverImage     string `json:"cover_image,omitempty"`
	MetadataFileID string `json:"metadata_file_id,omitempty"`
	TokenID        string `json:"token_id,omitempty"`

	CreatorAccountID  string `json:"creator_account_id"`
	CreatorEvmAddress string `json:"creator_evm_address,omitempty"`

	CreatedAt   time.Time `json:"created_at"`
	TicketsSold int       `json:"tickets_sold"`
	IsActive    bool      `json:"is_active"`

	TicketTypes []TicketType `json:"ticket_types,omitempty"`
}

// SoldOut reports whether the event-level capacity is exhausted.
func (e *Event) SoldOut() bool {
	return e.TicketsSold >= e.MaxTickets
}

// TicketTypeByID returns a pointer into the event's own slice, so callers
// holding a defensive copy may mutate it freely.
func (e *Event) TicketTypeByID(id string) *TicketType {
	for i := range e.TicketTypes {
		if e.TicketTypes[i].ID == id {
			return &e.TicketTypes[i]
		}
	}
	return nil
}

// Clone returns a deep copy, detaching the ticket type slice.
func (e Event) Clone() Event {
	out := e
	if len(e.TicketTypes) > 0 {
		out.TicketTypes = make([]TicketType, len(e.TicketTypes))
		copy(out.TicketTypes, e.TicketTypes)
	}
	return out
}
