package chain

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimRegistry_CreateAndRead(t *testing.T) {
	reg := NewSimRegistry()
	ctx := context.Background()

	require.NoError(t, reg.CreateOrUpdateEvent(ctx, EventRecord{ID: "event-1", Name: "First", TicketPrice: 10.5}))
	require.NoError(t, reg.CreateOrUpdateEvent(ctx, EventRecord{ID: "event-2", Name: "Second", TicketPrice: 0.00000001}))

	count, err := reg.EventCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	first, err := reg.EventByIndex(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, "event-1", first.ID)
	assert.Equal(t, 10.5, first.TicketPrice)
	assert.False(t, first.CreatedAt.IsZero())

	second, err := reg.EventByIndex(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 0.00000001, second.TicketPrice)
}

func TestSimRegistry_UpsertKeepsPositionAndTimestamp(t *testing.T) {
	reg := NewSimRegistry()
	ctx := context.Background()

	require.NoError(t, reg.CreateOrUpdateEvent(ctx, EventRecord{ID: "event-1", Name: "Original"}))
	require.NoError(t, reg.CreateOrUpdateEvent(ctx, EventRecord{ID: "event-2", Name: "Other"}))

	created, err := reg.EventByIndex(ctx, 0)
	require.NoError(t, err)

	require.NoError(t, reg.CreateOrUpdateEvent(ctx, EventRecord{ID: "event-1", Name: "Renamed"}))

	updated, err := reg.EventByIndex(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, "event-1", updated.ID)
	assert.Equal(t, "Renamed", updated.Name)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)

	count, err := reg.EventCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestSimRegistry_UpdateTicketsSold(t *testing.T) {
	reg := NewSimRegistry()
	ctx := context.Background()

	require.NoError(t, reg.CreateOrUpdateEvent(ctx, EventRecord{ID: "event-1"}))
	require.NoError(t, reg.UpdateTicketsSold(ctx, "event-1", 3))

	record, err := reg.EventByIndex(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, record.TicketsSold)

	assert.Error(t, reg.UpdateTicketsSold(ctx, "missing", 1))
}

func TestSimRegistry_FailureSwitches(t *testing.T) {
	reg := NewSimRegistry()
	ctx := context.Background()

	require.NoError(t, reg.CreateOrUpdateEvent(ctx, EventRecord{ID: "event-1"}))

	reg.FailReads = true
	_, err := reg.EventCount(ctx)
	assert.Error(t, err)
	_, err = reg.EventByIndex(ctx, 0)
	assert.Error(t, err)
	reg.FailReads = false

	reg.FailWrites = true
	assert.Error(t, reg.CreateOrUpdateEvent(ctx, EventRecord{ID: "event-2"}))
	assert.Error(t, reg.UpdateTicketsSold(ctx, "event-1", 1))
}

func TestSimRegistry_IndexOutOfRange(t *testing.T) {
	reg := NewSimRegistry()

	_, err := reg.EventByIndex(context.Background(), 0)
	assert.Error(t, err)
}
