package wallet

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"

	"eventhive/internal/status"
)

// SimFactory hands out simulated signers that fabricate ledger identifiers
// without any network traffic. Failure switches let tests exercise every
// degradation path.
type SimFactory struct {
	mu         sync.Mutex
	nextEntity int64
	serials    map[string]int64

	// Per-operation failure switches.
	FailSignerFor  bool
	FailCreateFile bool
	FailCreateNFT  bool
	FailMint       bool
	FailTransfer   bool
	FailAssociate  bool

	// Invocation counters, for asserting which external calls ran.
	FileCreates        int
	CollectionsCreated int
	Mints              int
	Transfers          int
	Associations       int
}

func NewSimFactory() *SimFactory {
	return &SimFactory{
		nextEntity: 5_000_000,
		serials:    make(map[string]int64),
	}
}

func (f *SimFactory) Provider() Provider {
	return ProviderSimulated
}

func (f *SimFactory) NormalizeAccountID(accountID string) (string, error) {
	trimmed := strings.TrimSpace(accountID)
	if trimmed == "" {
		return "", fmt.Errorf("account id must not be empty")
	}
	return trimmed, nil
}

func (f *SimFactory) SignerFor(ctx context.Context, accountID string) (Signer, error) {
	if f.FailSignerFor {
		return nil, status.ErrNoSigner
	}
	normalized, err := f.NormalizeAccountID(accountID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", status.ErrNoSigner, err)
	}
	return &simSigner{factory: f, accountID: normalized}, nil
}

func (f *SimFactory) Close(ctx context.Context) error {
	return nil
}

// newEntityID fabricates a plausible "0.0.N" ledger entity id.
func (f *SimFactory) newEntityID() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextEntity++
	return "0.0." + strconv.FormatInt(f.nextEntity, 10)
}

type simSigner struct {
	factory   *SimFactory
	accountID string
}

func (s *simSigner) AccountID() string {
	return s.accountID
}

func (s *simSigner) CreateFile(ctx context.Context, contents []byte, memo string) (string, error) {
	f := s.factory
	if f.FailCreateFile {
		return "", fmt.Errorf("sim wallet: file service unavailable")
	}
	id := f.newEntityID()
	f.mu.Lock()
	f.FileCreates++
	f.mu.Unlock()
	return id, nil
}

func (s *simSigner) CreateNFTCollection(ctx context.Context, opts NFTCreateOptions) (string, error) {
	f := s.factory
	if f.FailCreateNFT {
		return "", fmt.Errorf("sim wallet: token service unavailable")
	}
	id := f.newEntityID()
	f.mu.Lock()
	f.CollectionsCreated++
	f.serials[id] = 0
	f.mu.Unlock()
	return id, nil
}

func (s *simSigner) MintNFT(ctx context.Context, opts MintOptions) (string, error) {
	f := s.factory
	if f.FailMint {
		return "", fmt.Errorf("sim wallet: mint rejected")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Mints++
	f.serials[opts.TokenID]++
	return strconv.FormatInt(f.serials[opts.TokenID], 10), nil
}

func (s *simSigner) TransferNFT(ctx context.Context, tokenID string, serialNumber int64, toAccountID string) (string, error) {
	f := s.factory
	if f.FailTransfer {
		return "", fmt.Errorf("sim wallet: transfer rejected")
	}
	f.mu.Lock()
	f.Transfers++
	f.mu.Unlock()
	return uuid.New().String(), nil
}

func (s *simSigner) AssociateToken(ctx context.Context, tokenID string) (string, error) {
	f := s.factory
	if f.FailAssociate {
		return "", fmt.Errorf("sim wallet: associate rejected")
	}
	f.mu.Lock()
	f.Associations++
	f.mu.Unlock()
	return uuid.New().String(), nil
}
