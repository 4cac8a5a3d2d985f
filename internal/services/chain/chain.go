// Package chain talks to the external event registry contract. The contract
// is the source of truth when configured; everything here is a thin
// request/response client over its four entry points.
package chain

import (
	"context"
	"time"
)

// EventRecord is the contract's stored representation of an event, decoded
// into native types. Optional string fields are empty when unset on chain.
type EventRecord struct {
	ID                string
	Name              string
	Description       string
	Date              string
	TicketPrice       float64 // in HBAR; stored on chain in tinybar
	MaxTickets        int
	CoverImage        string
	MetadataFileID    string
	TokenID           string
	CreatorAccountID  string
	CreatorEvmAddress string
	CreatedAt         time.Time // stored on chain as unix seconds
	TicketsSold       int
}

// Registry is the contract client. Both writes are idempotent upserts keyed
// by event id.
type Registry interface {
	EventCount(ctx context.Context) (int, error)
	EventByIndex(ctx context.Context, index int) (EventRecord, error)
	CreateOrUpdateEvent(ctx context.Context, record EventRecord) error
	UpdateTicketsSold(ctx context.Context, id string, ticketsSold int) error
}
