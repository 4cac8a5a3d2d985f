package chain

import (
	"context"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math/big"
	"time"

	"github.com/hashgraph/hedera-sdk-go/v2"

	"eventhive/utils"
)

// Gas and fee settings match what the registry contract was deployed
// against; raising them is safe, lowering them makes calls revert.
const (
	gasEventCount     = 300_000
	gasEventByIndex   = 500_000
	gasCreateOrUpdate = 400_000
	gasUpdateSold     = 200_000
)

// HederaRegistry reads and writes the on-chain event registry through the
// Hedera SDK. Reads go through a circuit breaker so a flapping network
// fails fast instead of hammering the mirror nodes; an open breaker aborts
// the surrounding sync like any other read error.
type HederaRegistry struct {
	client     *hedera.Client
	contractID hedera.ContractID
	breaker    *utils.CircuitBreaker
}

func NewHederaRegistry(network, contractID, operatorID, operatorKey string, breakerSettings utils.BreakerSettings) (*HederaRegistry, error) {
	client, err := hedera.ClientForName(network)
	if err != nil {
		return nil, fmt.Errorf("create hedera client: %w", err)
	}

	operator, err := hedera.AccountIDFromString(operatorID)
	if err != nil {
		return nil, fmt.Errorf("parse operator account id: %w", err)
	}
	key, err := hedera.PrivateKeyFromString(operatorKey)
	if err != nil {
		return nil, fmt.Errorf("parse operator key: %w", err)
	}
	client.SetOperator(operator, key)

	contract, err := hedera.ContractIDFromString(contractID)
	if err != nil {
		return nil, fmt.Errorf("parse contract id: %w", err)
	}

	return &HederaRegistry{
		client:     client,
		contractID: contract,
		breaker:    utils.NewCircuitBreaker("event-registry", breakerSettings),
	}, nil
}

func (r *HederaRegistry) EventCount(ctx context.Context) (int, error) {
	result, err := r.breaker.Execute(ctx, func() (interface{}, error) {
		return hedera.NewContractCallQuery().
			SetContractID(r.contractID).
			SetGas(gasEventCount).
			SetQueryPayment(hedera.NewHbar(2)).
			SetFunction("getEventCount", nil).
			Execute(r.client)
	})
	if err != nil {
		return 0, fmt.Errorf("getEventCount: %w", err)
	}

	callResult := result.(hedera.ContractFunctionResult)
	count := new(big.Int).SetBytes(callResult.GetUint256(0))
	return int(count.Int64()), nil
}

func (r *HederaRegistry) EventByIndex(ctx context.Context, index int) (EventRecord, error) {
	params := hedera.NewContractFunctionParameters().
		AddUint256(uint256FromInt(int64(index)))

	result, err := r.breaker.Execute(ctx, func() (interface{}, error) {
		return hedera.NewContractCallQuery().
			SetContractID(r.contractID).
			SetGas(gasEventByIndex).
			SetQueryPayment(hedera.NewHbar(4)).
			SetFunction("getEventByIndex", params).
			Execute(r.client)
	})
	if err != nil {
		return EventRecord{}, fmt.Errorf("getEventByIndex(%d): %w", index, err)
	}

	callResult := result.(hedera.ContractFunctionResult)

	priceTinybar := new(big.Int).SetBytes(callResult.GetUint256(4))
	maxTickets := new(big.Int).SetBytes(callResult.GetUint256(5))
	createdAt := new(big.Int).SetBytes(callResult.GetUint256(11))
	ticketsSold := new(big.Int).SetBytes(callResult.GetUint256(12))

	return EventRecord{
		ID:                callResult.GetString(0),
		Name:              callResult.GetString(1),
		Description:       callResult.GetString(2),
		Date:              callResult.GetString(3),
		TicketPrice:       FromTinybar(priceTinybar.Int64()),
		MaxTickets:        int(maxTickets.Int64()),
		CoverImage:        SanitizeOptional(callResult.GetString(6)),
		MetadataFileID:    SanitizeOptional(callResult.GetString(7)),
		TokenID:           SanitizeOptional(callResult.GetString(8)),
		CreatorEvmAddress: hex.EncodeToString(callResult.GetAddress(9)),
		CreatorAccountID:  callResult.GetString(10),
		CreatedAt:         time.Unix(createdAt.Int64(), 0).UTC(),
		TicketsSold:       int(ticketsSold.Int64()),
	}, nil
}

func (r *HederaRegistry) CreateOrUpdateEvent(ctx context.Context, record EventRecord) error {
	params := hedera.NewContractFunctionParameters().
		AddString(record.ID).
		AddString(record.Name).
		AddString(record.Description).
		AddString(record.Date).
		AddUint256(uint256FromInt(ToTinybar(record.TicketPrice))).
		AddUint256(uint256FromInt(int64(record.MaxTickets))).
		AddString(record.CoverImage).
		AddString(record.MetadataFileID).
		AddString(record.TokenID).
		AddString(record.CreatorAccountID).
		AddUint256(uint256FromInt(int64(record.TicketsSold)))

	response, err := hedera.NewContractExecuteTransaction().
		SetContractID(r.contractID).
		SetGas(gasCreateOrUpdate).
		SetFunction("createOrUpdateEvent", params).
		SetMaxTransactionFee(hedera.NewHbar(4)).
		Execute(r.client)
	if err != nil {
		return fmt.Errorf("createOrUpdateEvent: %w", err)
	}

	if _, err := response.GetReceipt(r.client); err != nil {
		return fmt.Errorf("createOrUpdateEvent receipt: %w", err)
	}
	return nil
}

func (r *HederaRegistry) UpdateTicketsSold(ctx context.Context, id string, ticketsSold int) error {
	params := hedera.NewContractFunctionParameters().
		AddString(id).
		AddUint256(uint256FromInt(int64(ticketsSold)))

	response, err := hedera.NewContractExecuteTransaction().
		SetContractID(r.contractID).
		SetGas(gasUpdateSold).
		SetFunction("updateTicketsSold", params).
		SetMaxTransactionFee(hedera.NewHbar(2)).
		Execute(r.client)
	if err != nil {
		return fmt.Errorf("updateTicketsSold: %w", err)
	}

	if _, err := response.GetReceipt(r.client); err != nil {
		return fmt.Errorf("updateTicketsSold receipt: %w", err)
	}
	return nil
}

// uint256FromInt encodes a non-negative integer as a 32-byte big-endian
// word for the contract ABI.
func uint256FromInt(v int64) []byte {
	word := make([]byte, 32)
	binary.BigEndian.PutUint64(word[24:], uint64(v))
	return word
}
