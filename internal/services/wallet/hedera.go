package wallet

import (
	"context"
	"fmt"
	"strconv"

	"github.com/hashgraph/hedera-sdk-go/v2"

	"eventhive/internal/status"
)

// HederaFactory signs with the configured operator credentials. Only the
// operator account has a signer; requests for any other account fail and
// the caller degrades to local-only behavior.
type HederaFactory struct {
	client      *hedera.Client
	operatorID  hedera.AccountID
	operatorKey hedera.PrivateKey
}

func NewHederaFactory(network, operatorID, operatorKey string) (*HederaFactory, error) {
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

	return &HederaFactory{
		client:      client,
		operatorID:  operator,
		operatorKey: key,
	}, nil
}

func (f *HederaFactory) Provider() Provider {
	return ProviderHedera
}

func (f *HederaFactory) NormalizeAccountID(accountID string) (string, error) {
	parsed, err := hedera.AccountIDFromString(accountID)
	if err != nil {
		return "", fmt.Errorf("parse account id %q: %w", accountID, err)
	}
	return parsed.String(), nil
}

func (f *HederaFactory) SignerFor(ctx context.Context, accountID string) (Signer, error) {
	normalized, err := f.NormalizeAccountID(accountID)
	if err != nil {
		return nil, err
	}
	if normalized != f.operatorID.String() {
		return nil, fmt.Errorf("%w: account %s is not the configured operator", status.ErrNoSigner, normalized)
	}

	return &hederaSigner{factory: f}, nil
}

func (f *HederaFactory) Close(ctx context.Context) error {
	return f.client.Close()
}

type hederaSigner struct {
	factory *HederaFactory
}

func (s *hederaSigner) AccountID() string {
	return s.factory.operatorID.String()
}

func (s *hederaSigner) CreateFile(ctx context.Context, contents []byte, memo string) (string, error) {
	response, err := hedera.NewFileCreateTransaction().
		SetKeys(s.factory.operatorKey.PublicKey()).
		SetContents(contents).
		SetMemo(memo).
		SetMaxTransactionFee(hedera.NewHbar(1)).
		Execute(s.factory.client)
	if err != nil {
		return "", fmt.Errorf("file create: %w", err)
	}

	receipt, err := response.GetReceipt(s.factory.client)
	if err != nil {
		return "", fmt.Errorf("file create receipt: %w", err)
	}
	if receipt.FileID == nil {
		return "", fmt.Errorf("file create returned no file id")
	}
	return receipt.FileID.String(), nil
}

func (s *hederaSigner) CreateNFTCollection(ctx context.Context, opts NFTCreateOptions) (string, error) {
	treasury, err := hedera.AccountIDFromString(opts.TreasuryAccountID)
	if err != nil {
		return "", fmt.Errorf("parse treasury account id: %w", err)
	}

	response, err := hedera.NewTokenCreateTransaction().
		SetTokenName(opts.Name).
		SetTokenSymbol(opts.Symbol).
		SetTokenType(hedera.TokenTypeNonFungibleUnique).
		SetSupplyType(hedera.TokenSupplyTypeFinite).
		SetMaxSupply(opts.MaxSupply).
		SetDecimals(0).
		SetTreasuryAccountID(treasury).
		SetAdminKey(s.factory.operatorKey.PublicKey()).
		SetSupplyKey(s.factory.operatorKey.PublicKey()).
		SetFreezeDefault(false).
		SetTokenMemo(opts.Memo).
		SetMaxTransactionFee(hedera.NewHbar(2)).
		Execute(s.factory.client)
	if err != nil {
		return "", fmt.Errorf("token create: %w", err)
	}

	receipt, err := response.GetReceipt(s.factory.client)
	if err != nil {
		return "", fmt.Errorf("token create receipt: %w", err)
	}
	if receipt.TokenID == nil {
		return "", fmt.Errorf("token create returned no token id")
	}
	return receipt.TokenID.String(), nil
}

func (s *hederaSigner) MintNFT(ctx context.Context, opts MintOptions) (string, error) {
	tokenID, err := hedera.TokenIDFromString(opts.TokenID)
	if err != nil {
		return "", fmt.Errorf("parse token id: %w", err)
	}

	response, err := hedera.NewTokenMintTransaction().
		SetTokenID(tokenID).
		SetMetadatas([][]byte{opts.Metadata}).
		SetMaxTransactionFee(hedera.NewHbar(1)).
		Execute(s.factory.client)
	if err != nil {
		return "", fmt.Errorf("token mint: %w", err)
	}

	receipt, err := response.GetReceipt(s.factory.client)
	if err != nil {
		return "", fmt.Errorf("token mint receipt: %w", err)
	}
	if len(receipt.SerialNumbers) == 0 {
		return "", fmt.Errorf("token mint did not return a serial number")
	}
	return strconv.FormatInt(receipt.SerialNumbers[0], 10), nil
}

func (s *hederaSigner) TransferNFT(ctx context.Context, tokenIDRaw string, serialNumber int64, toAccountID string) (string, error) {
	tokenID, err := hedera.TokenIDFromString(tokenIDRaw)
	if err != nil {
		return "", fmt.Errorf("parse token id: %w", err)
	}
	receiver, err := hedera.AccountIDFromString(toAccountID)
	if err != nil {
		return "", fmt.Errorf("parse receiver account id: %w", err)
	}

	nftID := hedera.NftID{TokenID: tokenID, SerialNumber: serialNumber}

	response, err := hedera.NewTransferTransaction().
		AddNftTransfer(nftID, s.factory.operatorID, receiver).
		SetMaxTransactionFee(hedera.NewHbar(1)).
		Execute(s.factory.client)
	if err != nil {
		return "", fmt.Errorf("nft transfer: %w", err)
	}

	if _, err := response.GetReceipt(s.factory.client); err != nil {
		return "", fmt.Errorf("nft transfer receipt: %w", err)
	}
	return response.TransactionID.String(), nil
}

func (s *hederaSigner) AssociateToken(ctx context.Context, tokenIDRaw string) (string, error) {
	tokenID, err := hedera.TokenIDFromString(tokenIDRaw)
	if err != nil {
		return "", fmt.Errorf("parse token id: %w", err)
	}

	response, err := hedera.NewTokenAssociateTransaction().
		SetAccountID(s.factory.operatorID).
		SetTokenIDs(tokenID).
		SetMaxTransactionFee(hedera.NewHbar(1)).
		Execute(s.factory.client)
	if err != nil {
		return "", fmt.Errorf("token associate: %w", err)
	}

	if _, err := response.GetReceipt(s.factory.client); err != nil {
		return "", fmt.Errorf("token associate receipt: %w", err)
	}
	return response.TransactionID.String(), nil
}
