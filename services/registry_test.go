package services

import (
	"context"
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventhive/internal/services/chain"
	"eventhive/internal/services/wallet"
	"eventhive/internal/status"
	"eventhive/models"
)

func newTestRegistry(demoMode bool, chainRegistry chain.Registry) (*Registry, *EventStore, *wallet.SimFactory) {
	store, _ := newTestStore()
	wallets := wallet.NewSimFactory()
	return NewRegistry(store, wallets, chainRegistry, demoMode), store, wallets
}

func TestRegistry_CreateEvent_InvalidCapacity(t *testing.T) {
	registry, store, wallets := newTestRegistry(false, nil)

	_, err := registry.CreateEvent(context.Background(), CreateEventInput{
		Name:       "Broken Event",
		MaxTickets: 0,
	}, "0.0.1234")

	assert.ErrorIs(t, err, status.ErrInvalidCapacity)
	assert.Empty(t, store.Events())
	// Validation rejects before any external call is made.
	assert.Equal(t, 0, wallets.FileCreates)
	assert.Equal(t, 0, wallets.CollectionsCreated)
}

func TestRegistry_CreateEvent_Local(t *testing.T) {
	registry, store, wallets := newTestRegistry(false, nil)

	event, err := registry.CreateEvent(context.Background(), CreateEventInput{
		Name:        "Jazz Night",
		Date:        "2026-10-01",
		TicketPrice: 10.5,
		MaxTickets:  100,
	}, " 0.0.1234 ")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(event.ID, "event_"))
	assert.Equal(t, "0.0.1234", event.CreatorAccountID)
	assert.NotEmpty(t, event.MetadataFileID)
	assert.NotEmpty(t, event.TokenID)
	assert.NotEmpty(t, event.CoverImage)
	assert.True(t, event.IsActive)
	assert.Equal(t, 1, wallets.FileCreates)
	assert.Equal(t, 1, wallets.CollectionsCreated)

	stored, err := store.EventByID(event.ID)
	require.NoError(t, err)
	assert.Equal(t, event.TokenID, stored.TokenID)
}

func TestRegistry_CreateEvent_FileUploadFailureDegrades(t *testing.T) {
	registry, store, wallets := newTestRegistry(false, nil)
	wallets.FailCreateFile = true

	event, err := registry.CreateEvent(context.Background(), CreateEventInput{
		Name:       "Jazz Night",
		MaxTickets: 100,
	}, "0.0.1234")
	require.NoError(t, err)

	// No file means no collection attempt either; the event is still stored.
	assert.Empty(t, event.MetadataFileID)
	assert.Empty(t, event.TokenID)
	assert.Equal(t, 0, wallets.CollectionsCreated)
	assert.Len(t, store.Events(), 1)
}

func TestRegistry_CreateEvent_CollectionFailureDegrades(t *testing.T) {
	registry, _, wallets := newTestRegistry(false, nil)
	wallets.FailCreateNFT = true

	event, err := registry.CreateEvent(context.Background(), CreateEventInput{
		Name:       "Jazz Night",
		MaxTickets: 100,
	}, "0.0.1234")
	require.NoError(t, err)

	assert.NotEmpty(t, event.MetadataFileID)
	assert.Empty(t, event.TokenID)
}

func TestRegistry_CreateEvent_NoSignerStillCreatesLocally(t *testing.T) {
	registry, store, wallets := newTestRegistry(false, nil)
	wallets.FailSignerFor = true

	event, err := registry.CreateEvent(context.Background(), CreateEventInput{
		Name:       "Jazz Night",
		MaxTickets: 100,
	}, "0.0.1234")
	require.NoError(t, err)

	assert.Empty(t, event.TokenID)
	assert.Len(t, store.Events(), 1)
}

func TestRegistry_CreateEvent_PersistsToChain(t *testing.T) {
	chainReg := chain.NewSimRegistry()
	registry, store, _ := newTestRegistry(false, chainReg)

	event, err := registry.CreateEvent(context.Background(), CreateEventInput{
		Name:        "Jazz Night",
		Date:        "2026-10-01",
		TicketPrice: 10.5,
		MaxTickets:  100,
	}, "0.0.1234")
	require.NoError(t, err)

	count, err := chainReg.EventCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	// The stored event is the reconciled chain record, not the local draft.
	stored, err := store.EventByID(event.ID)
	require.NoError(t, err)
	assert.Equal(t, 10.5, stored.TicketPrice)
	assert.NotEmpty(t, stored.TokenID)
}

func TestRegistry_CreateEvent_ChainWriteFailureFallsBackToLocal(t *testing.T) {
	chainReg := chain.NewSimRegistry()
	chainReg.FailWrites = true
	registry, store, _ := newTestRegistry(false, chainReg)

	event, err := registry.CreateEvent(context.Background(), CreateEventInput{
		Name:       "Jazz Night",
		MaxTickets: 100,
	}, "0.0.1234")
	require.NoError(t, err)

	_, err = store.EventByID(event.ID)
	assert.NoError(t, err)
}

func TestRegistry_PurchaseTicket_DemoModeWithoutSigner(t *testing.T) {
	registry, store, wallets := newTestRegistry(true, nil)
	wallets.FailSignerFor = true
	store.Insert(context.Background(), testEvent("event-1", 5))

	serial, ticket, err := registry.PurchaseTicket(context.Background(), "event-1", "", "0.0.1234")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(serial, "sim-"))
	assert.Equal(t, serial, ticket.SerialNumber)
	assert.Equal(t, 1, ticket.TicketNumber)
	assert.Equal(t, 10.5, ticket.PricePaid)

	event, err := store.EventByID("event-1")
	require.NoError(t, err)
	assert.Equal(t, 1, event.TicketsSold)

	tickets := store.TicketsFor("0.0.1234")
	require.Len(t, tickets, 1)

	decoded, err := base64.StdEncoding.DecodeString(tickets[0].VerificationCode)
	require.NoError(t, err)
	assert.Contains(t, string(decoded), tickets[0].ID+":event-1:")

	// The readable door code travels alongside the scannable payload.
	assert.Len(t, tickets[0].CheckInCode, 6)
	assert.Equal(t, strings.ToUpper(tickets[0].CheckInCode), tickets[0].CheckInCode)
}

func TestRegistry_PurchaseTicket_NoSignerFailsOutsideDemoMode(t *testing.T) {
	registry, store, wallets := newTestRegistry(false, nil)
	wallets.FailSignerFor = true
	store.Insert(context.Background(), testEvent("event-1", 5))

	_, _, err := registry.PurchaseTicket(context.Background(), "event-1", "", "0.0.1234")
	assert.ErrorIs(t, err, status.ErrNoSigner)

	event, _ := store.EventByID("event-1")
	assert.Equal(t, 0, event.TicketsSold)
}

func TestRegistry_PurchaseTicket_MissingTokenFailsOutsideDemoMode(t *testing.T) {
	registry, store, _ := newTestRegistry(false, nil)
	store.Insert(context.Background(), testEvent("event-1", 5))

	_, _, err := registry.PurchaseTicket(context.Background(), "event-1", "", "0.0.1234")
	assert.ErrorIs(t, err, status.ErrTokenMissing)
}

func TestRegistry_PurchaseTicket_MintsAgainstCollection(t *testing.T) {
	registry, store, wallets := newTestRegistry(false, nil)

	event, err := registry.CreateEvent(context.Background(), CreateEventInput{
		Name:        "Jazz Night",
		TicketPrice: 10.5,
		MaxTickets:  2,
	}, "0.0.1234")
	require.NoError(t, err)

	serial, ticket, err := registry.PurchaseTicket(context.Background(), event.ID, "", "0.0.1234")
	require.NoError(t, err)
	assert.Equal(t, "1", serial)
	assert.Equal(t, event.TokenID, ticket.TokenID)
	assert.Equal(t, 1, wallets.Mints)

	serial, _, err = registry.PurchaseTicket(context.Background(), event.ID, "", "0.0.1234")
	require.NoError(t, err)
	assert.Equal(t, "2", serial)

	_, _, err = registry.PurchaseTicket(context.Background(), event.ID, "", "0.0.1234")
	assert.ErrorIs(t, err, status.ErrSoldOut)

	stored, _ := store.EventByID(event.ID)
	assert.Equal(t, 2, stored.TicketsSold)
	assert.Equal(t, 2, wallets.Mints)
}

func TestRegistry_PurchaseTicket_TicketTypes(t *testing.T) {
	registry, store, _ := newTestRegistry(true, nil)

	event := testEvent("event-1", 10)
	event.TicketTypes = []models.TicketType{
		{ID: "vip", Name: "VIP", Price: 50, MaxSupply: 1},
	}
	store.Insert(context.Background(), event)

	_, ticket, err := registry.PurchaseTicket(context.Background(), "event-1", "vip", "0.0.1234")
	require.NoError(t, err)
	assert.Equal(t, "VIP", ticket.TicketType)
	assert.Equal(t, float64(50), ticket.PricePaid)

	_, _, err = registry.PurchaseTicket(context.Background(), "event-1", "vip", "0.0.1234")
	assert.ErrorIs(t, err, status.ErrSoldOut)

	_, _, err = registry.PurchaseTicket(context.Background(), "event-1", "backstage", "0.0.1234")
	assert.ErrorIs(t, err, status.ErrTicketTypeNotFound)
}

func TestRegistry_PurchaseTicket_UnknownEvent(t *testing.T) {
	registry, _, _ := newTestRegistry(true, nil)

	_, _, err := registry.PurchaseTicket(context.Background(), "missing", "", "0.0.1234")
	assert.ErrorIs(t, err, status.ErrEventNotFound)
}

func TestRegistry_PurchaseTicket_ChainUpdateFailureRollsBack(t *testing.T) {
	chainReg := chain.NewSimRegistry()
	registry, store, _ := newTestRegistry(false, chainReg)

	event, err := registry.CreateEvent(context.Background(), CreateEventInput{
		Name:        "Jazz Night",
		TicketPrice: 10.5,
		MaxTickets:  5,
	}, "0.0.1234")
	require.NoError(t, err)

	chainReg.FailWrites = true
	_, _, err = registry.PurchaseTicket(context.Background(), event.ID, "", "0.0.1234")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "retry")

	// The mint cannot be unwound, but the sold counter must not diverge
	// from the chain of record.
	stored, err := store.EventByID(event.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.TicketsSold)
	assert.Empty(t, store.TicketsFor("0.0.1234"))
}

func TestRegistry_RefreshFromChain(t *testing.T) {
	chainReg := chain.NewSimRegistry()
	ctx := context.Background()
	require.NoError(t, chainReg.CreateOrUpdateEvent(ctx, chain.EventRecord{
		ID: "event-1", Name: "First", TicketPrice: 10.5, MaxTickets: 100, CoverImage: "https://example.com/a.png",
	}))
	require.NoError(t, chainReg.CreateOrUpdateEvent(ctx, chain.EventRecord{
		ID: "event-2", Name: "Second", TicketPrice: 1, MaxTickets: 50,
	}))

	registry, store, _ := newTestRegistry(false, chainReg)
	store.Insert(ctx, testEvent("stale-local", 5))

	events, err := registry.RefreshFromChain(ctx)
	require.NoError(t, err)
	require.Len(t, events, 2)

	// The chain replaces local state wholesale.
	_, err = store.EventByID("stale-local")
	assert.ErrorIs(t, err, status.ErrEventNotFound)

	for _, ev := range events {
		assert.True(t, ev.IsActive)
		assert.NotEmpty(t, ev.CoverImage, "missing cover for %s", ev.ID)
	}
}

func TestRegistry_RefreshFromChain_FailFast(t *testing.T) {
	chainReg := chain.NewSimRegistry()
	ctx := context.Background()
	require.NoError(t, chainReg.CreateOrUpdateEvent(ctx, chain.EventRecord{ID: "event-1", MaxTickets: 10}))

	registry, store, _ := newTestRegistry(false, chainReg)
	store.Insert(ctx, testEvent("local-1", 5))

	chainReg.FailReads = true
	_, err := registry.RefreshFromChain(ctx)
	require.Error(t, err)

	// A failed sync leaves the previous local state untouched.
	_, err = store.EventByID("local-1")
	assert.NoError(t, err)
}

func TestRegistry_RefreshFromChain_NoContractReturnsLocal(t *testing.T) {
	registry, store, _ := newTestRegistry(false, nil)
	store.Insert(context.Background(), testEvent("event-1", 5))

	events, err := registry.RefreshFromChain(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "event-1", events[0].ID)
}

func TestRegistry_TransferTicket(t *testing.T) {
	registry, store, wallets := newTestRegistry(false, nil)

	event, err := registry.CreateEvent(context.Background(), CreateEventInput{
		Name:       "Jazz Night",
		MaxTickets: 5,
	}, "0.0.1111")
	require.NoError(t, err)

	_, ticket, err := registry.PurchaseTicket(context.Background(), event.ID, "", "0.0.1111")
	require.NoError(t, err)

	txID, err := registry.TransferTicket(context.Background(), "0.0.1111", "0.0.2222", ticket.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, txID)
	assert.Equal(t, 1, wallets.Transfers)

	assert.Empty(t, store.TicketsFor("0.0.1111"))
	moved := store.TicketsFor("0.0.2222")
	require.Len(t, moved, 1)
	assert.Equal(t, "0.0.2222", moved[0].HolderAccountID)
}

func TestRegistry_TransferTicket_WalletFailureAborts(t *testing.T) {
	registry, store, wallets := newTestRegistry(false, nil)

	event, err := registry.CreateEvent(context.Background(), CreateEventInput{
		Name:       "Jazz Night",
		MaxTickets: 5,
	}, "0.0.1111")
	require.NoError(t, err)

	_, ticket, err := registry.PurchaseTicket(context.Background(), event.ID, "", "0.0.1111")
	require.NoError(t, err)

	wallets.FailTransfer = true
	_, err = registry.TransferTicket(context.Background(), "0.0.1111", "0.0.2222", ticket.ID)
	require.Error(t, err)

	// The failed ledger transfer leaves the ticket with its holder.
	assert.Len(t, store.TicketsFor("0.0.1111"), 1)
	assert.Empty(t, store.TicketsFor("0.0.2222"))
}

func TestRegistry_TransferTicket_LocalOnlyTicketSkipsLedger(t *testing.T) {
	registry, store, wallets := newTestRegistry(true, nil)
	wallets.FailSignerFor = true
	store.Insert(context.Background(), testEvent("event-1", 5))

	_, ticket, err := registry.PurchaseTicket(context.Background(), "event-1", "", "0.0.1111")
	require.NoError(t, err)

	// Simulated serials are not ledger serials, so no wallet call is made.
	_, err = registry.TransferTicket(context.Background(), "0.0.1111", "0.0.2222", ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, wallets.Transfers)
	assert.Len(t, store.TicketsFor("0.0.2222"), 1)
}

func TestRegistry_TransferTicket_UnknownTicket(t *testing.T) {
	registry, _, _ := newTestRegistry(false, nil)

	_, err := registry.TransferTicket(context.Background(), "0.0.1111", "0.0.2222", "missing")
	assert.ErrorIs(t, err, status.ErrTicketNotFound)
}

func TestRegistry_AssociateToken(t *testing.T) {
	registry, _, wallets := newTestRegistry(false, nil)

	txID, err := registry.AssociateToken(context.Background(), "0.0.1234", "0.0.5001")
	require.NoError(t, err)
	assert.NotEmpty(t, txID)
	assert.Equal(t, 1, wallets.Associations)

	wallets.FailSignerFor = true
	_, err = registry.AssociateToken(context.Background(), "0.0.1234", "0.0.5001")
	assert.ErrorIs(t, err, status.ErrNoSigner)
}

func TestGenerateTokenSymbol(t *testing.T) {
	assert.Equal(t, "JAZZN", generateTokenSymbol("Jazz Night"))
	assert.Equal(t, "ABC", generateTokenSymbol("abc"))
	// Too few usable characters falls back to a hashed numeric suffix.
	symbol := generateTokenSymbol("Go")
	assert.True(t, strings.HasPrefix(symbol, "EVT"))

	assert.Equal(t, generateTokenSymbol("公演"), generateTokenSymbol("公演"))
}

func TestTicketMetadata_Name(t *testing.T) {
	event := testEvent("event-1", 5)
	event.Name = "Jazz Night"

	meta := ticketMetadata(event, 3)
	assert.Equal(t, "Jazz Night • Ticket #3", meta.Name)
	assert.Equal(t, "event-1", meta.EventID)
	assert.Equal(t, 3, meta.TicketNumber)
}

func TestSelectCoverImage_Deterministic(t *testing.T) {
	first := selectCoverImage("Jazz Night")
	assert.Equal(t, first, selectCoverImage("Jazz Night"))
	assert.Contains(t, first, "unsplash.com")
}
