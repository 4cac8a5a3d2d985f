// Package wallet abstracts "can authorize and submit a transaction on
// behalf of an account". Two concrete adapters exist, a real Hedera
// adapter and a simulation, chosen by configuration at construction time
// rather than runtime shape-sniffing.
package wallet

import (
	"context"
)

// Provider represents different signing capability providers
type Provider string

const (
	ProviderHedera    Provider = "hedera"
	ProviderSimulated Provider = "simulated"
)

// NFTCreateOptions describes a new NFT ticket collection.
type NFTCreateOptions struct {
	Name              string
	Symbol            string
	MaxSupply         int64
	TreasuryAccountID string
	Memo              string
}

// MintOptions describes minting one serial into an existing collection.
type MintOptions struct {
	TokenID  string
	Metadata []byte
}

// Signer submits signed transactions for one account. Every call may
// suspend for arbitrary wall-clock time and returns an opaque identifier
// from the ledger or an error.
type Signer interface {
	// AccountID returns the normalized account this signer acts for.
	AccountID() string

	// CreateFile stores a document on the ledger's file service and
	// returns its file id.
	CreateFile(ctx context.Context, contents []byte, memo string) (string, error)

	// CreateNFTCollection creates a finite NFT collection and returns its
	// token id.
	CreateNFTCollection(ctx context.Context, opts NFTCreateOptions) (string, error)

	// MintNFT mints one serial and returns it as a decimal string.
	MintNFT(ctx context.Context, opts MintOptions) (string, error)

	// TransferNFT moves a serial to another account, returning the
	// transaction id.
	TransferNFT(ctx context.Context, tokenID string, serialNumber int64, toAccountID string) (string, error)

	// AssociateToken associates a token with the signer's account,
	// returning the transaction id.
	AssociateToken(ctx context.Context, tokenID string) (string, error)
}

// Factory resolves signers per account for one provider.
type Factory interface {
	Provider() Provider

	// SignerFor returns a signer able to act for the given account, or an
	// error when none is available (the caller decides how to degrade).
	SignerFor(ctx context.Context, accountID string) (Signer, error)

	// NormalizeAccountID canonicalizes an account reference.
	NormalizeAccountID(accountID string) (string, error)

	// Close gracefully closes any connections
	Close(ctx context.Context) error
}
