package services

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"eventhive/internal/services/chain"
	"eventhive/internal/services/wallet"
	"eventhive/internal/status"
	"eventhive/models"
	"eventhive/monitoring"
	"eventhive/utils"
)

// Deterministic fallback covers, selected by a hash of the event name.
var fallbackCoverImages = []string{
	"https://images.unsplash.com/photo-1529158062015-cad636e69505?auto=format&fit=crop&w=900&q=80",
	"https://images.unsplash.com/photo-1515165562835-c4c6b2c5a829?auto=format&fit=crop&w=900&q=80",
	"https://images.unsplash.com/photo-1519671282429-b44660ead0a7?auto=format&fit=crop&w=900&q=80",
	"https://images.unsplash.com/photo-1525182008055-f88b95ff7980?auto=format&fit=crop&w=900&q=80",
}

// CreateEventInput carries the caller-supplied event fields. Everything
// else (id, timestamps, counters, ledger references) is assigned here.
type CreateEventInput struct {
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Date        string              `json:"date"`
	Venue       string              `json:"venue"`
	Organizer   string              `json:"organizer"`
	TicketPrice float64             `json:"ticket_price"`
	MaxTickets  int                 `json:"max_tickets"`
	CoverImage  string              `json:"cover_image"`
	TicketTypes []models.TicketType `json:"ticket_types"`
}

// Registry implements the mutation operations and chain reconciliation on
// top of the event store. External side effects are opportunistic
// enhancements, except the on-chain sold counter which is kept strictly
// consistent by rollback-on-failure.
type Registry struct {
	store    *EventStore
	wallets  wallet.Factory
	chain    chain.Registry // nil when no contract address is configured
	demoMode bool

	lockMu     sync.Mutex
	eventLocks map[string]*sync.Mutex
}

func NewRegistry(store *EventStore, wallets wallet.Factory, chainRegistry chain.Registry, demoMode bool) *Registry {
	return &Registry{
		store:      store,
		wallets:    wallets,
		chain:      chainRegistry,
		demoMode:   demoMode,
		eventLocks: make(map[string]*sync.Mutex),
	}
}

// ChainConfigured reports whether a registry contract is in use.
func (r *Registry) ChainConfigured() bool {
	return r.chain != nil
}

// CreateEvent validates, deploys ledger artifacts opportunistically, and
// stores the event. Creation always succeeds locally once validation
// passes; every external failure downgrades the record instead of
// aborting.
func (r *Registry) CreateEvent(ctx context.Context, input CreateEventInput, accountID string) (models.Event, error) {
	if input.MaxTickets <= 0 {
		return models.Event{}, status.ErrInvalidCapacity
	}

	creator, err := r.wallets.NormalizeAccountID(accountID)
	if err != nil {
		return models.Event{}, fmt.Errorf("normalize creator account: %w", err)
	}

	event := models.Event{
		ID:               newRecordID("event"),
		Name:             input.Name,
		Description:      input.Description,
		Date:             input.Date,
		Venue:            input.Venue,
		Organizer:        input.Organizer,
		TicketPrice:      input.TicketPrice,
		MaxTickets:       input.MaxTickets,
		CoverImage:       input.CoverImage,
		CreatorAccountID: creator,
		CreatedAt:        time.Now().UTC(),
		IsActive:         true,
		TicketTypes:      input.TicketTypes,
	}
	if event.CoverImage == "" {
		event.CoverImage = selectCoverImage(event.Name)
	}

	signer, err := r.wallets.SignerFor(ctx, accountID)
	if err != nil {
		slog.Warn("could not get signer, creating event locally", "event", event.ID, "error", err)
		signer = nil
	}

	if signer != nil {
		// A metadata upload failure skips collection creation too; the
		// event is still created locally.
		fileID, err := signer.CreateFile(ctx, eventMetadataJSON(event), "Event metadata | "+event.Name)
		if err != nil {
			slog.Warn("metadata upload failed, creating event without ledger references", "event", event.ID, "error", err)
			monitoring.TrackWalletCall("create_file", "error")
		} else {
			event.MetadataFileID = fileID
			monitoring.TrackWalletCall("create_file", "success")

			tokenID, err := signer.CreateNFTCollection(ctx, wallet.NFTCreateOptions{
				Name:              event.Name + " Tickets",
				Symbol:            generateTokenSymbol(event.Name),
				MaxSupply:         int64(event.MaxTickets),
				TreasuryAccountID: signer.AccountID(),
				Memo:              "Tickets for " + event.Name,
			})
			if err != nil {
				slog.Warn("collection creation failed, creating event without token id", "event", event.ID, "error", err)
				monitoring.TrackWalletCall("create_collection", "error")
			} else {
				event.TokenID = tokenID
				monitoring.TrackWalletCall("create_collection", "success")
			}
		}
	}

	if r.chain != nil && signer != nil {
		if err := r.persistAndSync(ctx, event); err != nil {
			slog.Warn("contract persistence failed, storing locally", "event", event.ID, "error", err)
		} else {
			monitoring.TrackEventCreated("chain")
			if stored, err := r.store.EventByID(event.ID); err == nil {
				return stored, nil
			}
			return event, nil
		}
	}

	// Always store locally as the durable fallback.
	r.store.Insert(ctx, event)
	monitoring.TrackEventCreated("local")
	return event, nil
}

// PurchaseTicket mints one ticket against the event's capacity. The whole
// check+mint+increment+chain-update sequence runs under a per-event lock,
// so two concurrent purchases cannot both pass the capacity check.
func (r *Registry) PurchaseTicket(ctx context.Context, eventID, ticketTypeID, accountID string) (string, models.UserTicket, error) {
	lock := r.eventLock(eventID)
	lock.Lock()
	defer lock.Unlock()

	event, err := r.store.EventByID(eventID)
	if err != nil {
		return "", models.UserTicket{}, err
	}
	if ticketTypeID != "" {
		tt := event.TicketTypeByID(ticketTypeID)
		if tt == nil {
			return "", models.UserTicket{}, status.ErrTicketTypeNotFound
		}
		if tt.CurrentSupply >= tt.MaxSupply {
			return "", models.UserTicket{}, status.ErrSoldOut
		}
	}
	if event.SoldOut() {
		return "", models.UserTicket{}, status.ErrSoldOut
	}

	holder := strings.TrimSpace(accountID)
	if normalized, err := r.wallets.NormalizeAccountID(accountID); err == nil {
		holder = normalized
	}
	ticketNumber := event.TicketsSold + 1

	signer, err := r.wallets.SignerFor(ctx, accountID)
	if err != nil {
		// Offline/demo mode is an explicit switch, not a silent catch-all.
		if !r.demoMode {
			return "", models.UserTicket{}, err
		}
		slog.Info("demo mode: simulating purchase without a signer", "event", eventID, "account", holder)
		return r.simulatedPurchase(ctx, event, ticketTypeID, holder, ticketNumber)
	}

	if event.TokenID == "" {
		if !r.demoMode {
			return "", models.UserTicket{}, status.ErrTokenMissing
		}
		slog.Info("demo mode: event has no token, simulating purchase", "event", eventID)
		return r.simulatedPurchase(ctx, event, ticketTypeID, holder, ticketNumber)
	}

	metadata, err := json.Marshal(ticketMetadata(event, ticketNumber))
	if err != nil {
		return "", models.UserTicket{}, fmt.Errorf("encode ticket metadata: %w", err)
	}

	serial, err := signer.MintNFT(ctx, wallet.MintOptions{TokenID: event.TokenID, Metadata: metadata})
	if err != nil {
		monitoring.TrackWalletCall("mint", "error")
		return "", models.UserTicket{}, fmt.Errorf("mint ticket: %w", err)
	}
	monitoring.TrackWalletCall("mint", "success")

	if err := r.store.IncrementSold(ctx, eventID, ticketTypeID); err != nil {
		return "", models.UserTicket{}, err
	}

	if r.chain != nil {
		if err := r.chain.UpdateTicketsSold(ctx, eventID, ticketNumber); err != nil {
			// The one external failure that must not be absorbed: roll the
			// local counter back so sold counts never silently diverge
			// from the chain of record.
			if rbErr := r.store.DecrementSold(ctx, eventID, ticketTypeID); rbErr != nil {
				slog.Error("rollback after failed chain update also failed", "event", eventID, "error", rbErr)
			}
			return "", models.UserTicket{}, fmt.Errorf("ticket minted but failed to update chain state, please retry: %w", err)
		}
		if err := r.syncFromChain(ctx); err != nil {
			slog.Warn("post-purchase sync failed", "event", eventID, "error", err)
		}
	}

	ticket := buildTicket(event, ticketTypeID, serial, ticketNumber, holder)
	r.store.RecordTicket(ctx, holder, ticket)
	monitoring.TrackTicketSold(eventID, "chain")
	return serial, ticket, nil
}

func (r *Registry) simulatedPurchase(ctx context.Context, event models.Event, ticketTypeID, holder string, ticketNumber int) (string, models.UserTicket, error) {
	serial := "sim-" + strconv.FormatInt(time.Now().UnixMilli(), 10) + "-" + idSuffix(4)
	if err := r.store.IncrementSold(ctx, event.ID, ticketTypeID); err != nil {
		return "", models.UserTicket{}, err
	}
	ticket := buildTicket(event, ticketTypeID, serial, ticketNumber, holder)
	r.store.RecordTicket(ctx, holder, ticket)
	monitoring.TrackTicketSold(event.ID, "simulated")
	return serial, ticket, nil
}

// RefreshFromChain reconciles local state against the contract. Without a
// configured contract it is a no-op returning the current snapshot.
func (r *Registry) RefreshFromChain(ctx context.Context) ([]models.Event, error) {
	if r.chain == nil {
		return r.store.Events(), nil
	}
	if err := r.syncFromChain(ctx); err != nil {
		return nil, err
	}
	return r.store.Events(), nil
}

// TransferTicket moves a ticket to another account. The ledger transfer
// runs first; its failure aborts the local move.
func (r *Registry) TransferTicket(ctx context.Context, fromAccountID, toAccountID, ticketID string) (string, error) {
	from := strings.TrimSpace(fromAccountID)
	ticket, err := r.store.TicketFor(from, ticketID)
	if err != nil {
		return "", err
	}

	to, err := r.wallets.NormalizeAccountID(toAccountID)
	if err != nil {
		return "", fmt.Errorf("normalize receiver account: %w", err)
	}

	txID := ""
	if serial, serr := strconv.ParseInt(ticket.SerialNumber, 10, 64); serr == nil && ticket.TokenID != "" {
		signer, err := r.wallets.SignerFor(ctx, fromAccountID)
		if err != nil {
			if !r.demoMode {
				return "", err
			}
			slog.Info("demo mode: transferring ticket locally without a signer", "ticket", ticketID)
		} else {
			txID, err = signer.TransferNFT(ctx, ticket.TokenID, serial, to)
			if err != nil {
				monitoring.TrackWalletCall("transfer", "error")
				return "", fmt.Errorf("transfer ticket: %w", err)
			}
			monitoring.TrackWalletCall("transfer", "success")
		}
	}

	if _, err := r.store.MoveTicket(ctx, from, to, ticketID); err != nil {
		return "", err
	}
	return txID, nil
}

// AssociateToken associates a token with the account, a prerequisite for
// receiving its NFTs.
func (r *Registry) AssociateToken(ctx context.Context, accountID, tokenID string) (string, error) {
	signer, err := r.wallets.SignerFor(ctx, accountID)
	if err != nil {
		return "", err
	}
	txID, err := signer.AssociateToken(ctx, tokenID)
	if err != nil {
		monitoring.TrackWalletCall("associate", "error")
		return "", fmt.Errorf("associate token: %w", err)
	}
	monitoring.TrackWalletCall("associate", "success")
	return txID, nil
}

func (r *Registry) persistAndSync(ctx context.Context, event models.Event) error {
	if err := r.chain.CreateOrUpdateEvent(ctx, chainRecordFromEvent(event)); err != nil {
		return err
	}
	return r.syncFromChain(ctx)
}

// syncFromChain replaces the entire local event table with the contract's
// records. Any single fetch failure aborts the whole sync and leaves the
// previous local state in effect; the next trigger retries the full scan.
func (r *Registry) syncFromChain(ctx context.Context) error {
	start := time.Now()

	count, err := r.chain.EventCount(ctx)
	if err != nil {
		monitoring.TrackChainSync("error")
		return fmt.Errorf("fetch event count: %w", err)
	}

	events := make([]models.Event, 0, count)
	for i := 0; i < count; i++ {
		record, err := r.chain.EventByIndex(ctx, i)
		if err != nil {
			monitoring.TrackChainSync("error")
			return fmt.Errorf("fetch event at index %d: %w", i, err)
		}
		events = append(events, eventFromChainRecord(record))
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].CreatedAt.After(events[j].CreatedAt)
	})

	r.store.ReplaceAll(ctx, events)
	monitoring.TrackChainSync("success")
	monitoring.ObserveChainSyncDuration(time.Since(start))
	return nil
}

func (r *Registry) eventLock(eventID string) *sync.Mutex {
	r.lockMu.Lock()
	defer r.lockMu.Unlock()
	lock, ok := r.eventLocks[eventID]
	if !ok {
		lock = &sync.Mutex{}
		r.eventLocks[eventID] = lock
	}
	return lock
}

func chainRecordFromEvent(event models.Event) chain.EventRecord {
	return chain.EventRecord{
		ID:               event.ID,
		Name:             event.Name,
		Description:      event.Description,
		Date:             event.Date,
		TicketPrice:      event.TicketPrice,
		MaxTickets:       event.MaxTickets,
		CoverImage:       event.CoverImage,
		MetadataFileID:   event.MetadataFileID,
		TokenID:          event.TokenID,
		CreatorAccountID: event.CreatorAccountID,
		TicketsSold:      event.TicketsSold,
	}
}

func eventFromChainRecord(record chain.EventRecord) models.Event {
	cover := record.CoverImage
	if cover == "" {
		cover = selectCoverImage(record.Name)
	}
	return models.Event{
		ID:                record.ID,
		Name:              record.Name,
		Description:       record.Description,
		Date:              record.Date,
		TicketPrice:       record.TicketPrice,
		MaxTickets:        record.MaxTickets,
		CoverImage:        cover,
		MetadataFileID:    record.MetadataFileID,
		TokenID:           record.TokenID,
		CreatorAccountID:  record.CreatorAccountID,
		CreatorEvmAddress: record.CreatorEvmAddress,
		CreatedAt:         record.CreatedAt,
		TicketsSold:       record.TicketsSold,
		IsActive:          true,
	}
}

func buildTicket(event models.Event, ticketTypeID, serial string, ticketNumber int, holder string) models.UserTicket {
	ticketID := newRecordID("ticket")
	price := event.TicketPrice
	typeName := ""
	if tt := event.TicketTypeByID(ticketTypeID); tt != nil {
		price = tt.Price
		typeName = tt.Name
	}

	return models.UserTicket{
		ID:               ticketID,
		EventID:          event.ID,
		TokenID:          event.TokenID,
		SerialNumber:     serial,
		TicketNumber:     ticketNumber,
		EventName:        event.Name,
		EventDescription: event.Description,
		EventDate:        event.Date,
		Venue:            event.Venue,
		TicketType:       typeName,
		PricePaid:        price,
		HolderAccountID:  holder,
		PurchasedAt:      time.Now().UTC(),
		VerificationCode: verificationCode(ticketID, event.ID),
		CheckInCode:      newCheckInCode(),
	}
}

func ticketMetadata(event models.Event, ticketNumber int) models.TicketMetadata {
	image := event.CoverImage
	if image == "" {
		image = selectCoverImage(event.Name)
	}
	return models.TicketMetadata{
		Name:        fmt.Sprintf("%s • Ticket #%d", event.Name, ticketNumber),
		Description: "Access pass for " + event.Name,
		Image:       image,
		Attributes: []models.TicketAttribute{
			{TraitType: "Event ID", Value: event.ID},
			{TraitType: "Ticket Number", Value: ticketNumber},
			{TraitType: "Price (HBAR)", Value: event.TicketPrice},
			{TraitType: "Event Date", Value: event.Date},
		},
		EventID:      event.ID,
		TicketNumber: ticketNumber,
	}
}

func eventMetadataJSON(event models.Event) []byte {
	data, _ := json.Marshal(map[string]any{
		"name":        event.Name,
		"description": event.Description,
		"eventDate":   event.Date,
		"ticketPrice": event.TicketPrice,
		"maxTickets":  event.MaxTickets,
		"createdAt":   event.CreatedAt,
		"creator":     event.CreatorAccountID,
	})
	return data
}

// selectCoverImage picks a deterministic fallback cover from the rune sum
// of the event name.
func selectCoverImage(name string) string {
	hash := 0
	for _, r := range name {
		hash += int(r)
	}
	return fallbackCoverImages[hash%len(fallbackCoverImages)]
}

// generateTokenSymbol derives a collection symbol from the event name.
func generateTokenSymbol(name string) string {
	var b strings.Builder
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	uppercase := strings.ToUpper(b.String())
	if len(uppercase) >= 3 {
		if len(uppercase) > 5 {
			return uppercase[:5]
		}
		return uppercase
	}

	hash := 0
	for _, r := range name {
		hash += int(r)
	}
	digits := strconv.Itoa(hash)
	if len(digits) > 3 {
		digits = digits[:3]
	}
	return "EVT" + digits
}

// newCheckInCode makes the short uppercase code printed next to the
// scannable verification payload.
func newCheckInCode() string {
	code, err := utils.GenerateCode(3)
	if err != nil {
		return strings.ToUpper(idSuffix(6))
	}
	return code
}

// verificationCode derives the scannable code printed on a ticket.
func verificationCode(ticketID, eventID string) string {
	payload := fmt.Sprintf("%s:%s:%d", ticketID, eventID, time.Now().UnixMilli())
	return base64.StdEncoding.EncodeToString([]byte(payload))
}

func newRecordID(kind string) string {
	return fmt.Sprintf("%s_%d_%s", kind, time.Now().UnixMilli(), idSuffix(9))
}

func idSuffix(length int) string {
	suffix, err := utils.GenerateIDSuffix(length)
	if err != nil {
		// crypto/rand failing is effectively fatal elsewhere; fall back to
		// a UUID fragment rather than panic.
		return strings.ReplaceAll(uuid.New().String(), "-", "")[:length]
	}
	return suffix
}
