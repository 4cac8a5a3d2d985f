package models

import (
	"time"
)

// UserTicket is the denormalized record stored per purchasing account.
// The event fields are a snapshot taken at purchase time, not a live
// reference.
type UserTicket struct {
	ID           string `json:"id"`
	EventID      string `json:"event_id"`
	TokenID      string `json:"token_id,omitempty"`
	SerialNumber string `json:"serial_number"`
	TicketNumber int    `json:"ticket_number"`

	EventName        string `json:"event_name"`
	EventDescription string `json:"event_description"`
	EventDate        string `json:"event_date"`
	Venue            string `json:"venue,omitempty"`
	TicketType       string `json:"ticket_type,omitempty"`

	PricePaid       float64   `json:"price_paid"`
	HolderAccountID string    `json:"holder_account_id"`
	PurchasedAt     time.Time `json:"purchased_at"`

	// VerificationCode is the scannable payload; CheckInCode is the short
	// human-readable code door staff can read out loud.
	VerificationCode string `json:"verification_code"`
	CheckInCode      string `json:"check_in_code"`
}

// TicketAttribute mirrors the NFT metadata attribute shape.
type TicketAttribute struct {
	TraitType string `json:"trait_type"`
	Value     any    `json:"value"`
}

// TicketMetadata is the document encoded into the minted NFT.
type TicketMetadata struct {
	Name         string            `json:"name"`
	Description  string            `json:"description"`
	Image        string            `json:"image"`
	Attributes   []TicketAttribute `json:"attributes"`
	EventID      string            `json:"eventId"`
	TicketNumber int               `json:"ticketNumber"`
}
