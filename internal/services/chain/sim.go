package chain

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// SimRegistry is an in-memory stand-in for the registry contract, used in
// development mode and tests. It stores prices in tinybar and timestamps at
// second precision so reads reproduce the contract's lossy encoding.
type SimRegistry struct {
	mu      sync.Mutex
	order   []string
	records map[string]*simRecord

	// FailWrites and FailReads force errors, for exercising fail-fast
	// sync and rollback paths in tests.
	FailWrites bool
	FailReads  bool
}

type simRecord struct {
	record        EventRecord
	priceTinybar  int64
	createdAtUnix int64
	ticketsSold   int
}

func NewSimRegistry() *SimRegistry {
	return &SimRegistry{records: make(map[string]*simRecord)}
}

func (r *SimRegistry) EventCount(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.FailReads {
		return 0, fmt.Errorf("sim registry: read unavailable")
	}
	return len(r.order), nil
}

func (r *SimRegistry) EventByIndex(ctx context.Context, index int) (EventRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.FailReads {
		return EventRecord{}, fmt.Errorf("sim registry: read unavailable")
	}
	if index < 0 || index >= len(r.order) {
		return EventRecord{}, fmt.Errorf("sim registry: index %d out of range", index)
	}

	stored := r.records[r.order[index]]
	out := stored.record
	out.TicketPrice = FromTinybar(stored.priceTinybar)
	out.CreatedAt = time.Unix(stored.createdAtUnix, 0).UTC()
	out.TicketsSold = stored.ticketsSold
	return out, nil
}

func (r *SimRegistry) CreateOrUpdateEvent(ctx context.Context, record EventRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.FailWrites {
		return fmt.Errorf("sim registry: write unavailable")
	}

	existing, ok := r.records[record.ID]
	if !ok {
		r.order = append(r.order, record.ID)
		r.records[record.ID] = &simRecord{
			record:        record,
			priceTinybar:  ToTinybar(record.TicketPrice),
			createdAtUnix: time.Now().Unix(),
			ticketsSold:   record.TicketsSold,
		}
		return nil
	}

	// Upsert keeps the original creation timestamp and index position.
	existing.record = record
	existing.priceTinybar = ToTinybar(record.TicketPrice)
	existing.ticketsSold = record.TicketsSold
	return nil
}

func (r *SimRegistry) UpdateTicketsSold(ctx context.Context, id string, ticketsSold int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.FailWrites {
		return fmt.Errorf("sim registry: write unavailable")
	}

	stored, ok := r.records[id]
	if !ok {
		return fmt.Errorf("sim registry: unknown event %q", id)
	}
	stored.ticketsSold = ticketsSold
	return nil
}
