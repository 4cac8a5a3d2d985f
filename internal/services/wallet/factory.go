package wallet

import (
	"context"
	"fmt"

	"eventhive/config"
)

// New creates a signing capability factory for the configured provider.
func New(ctx context.Context, provider Provider, cfg *config.Config) (Factory, error) {
	switch provider {
	case ProviderHedera:
		if cfg.WalletConnectProjectID == "" {
			return nil, fmt.Errorf("WALLETCONNECT_PROJECT_ID is required to initialize the hedera wallet provider")
		}
		if cfg.HederaOperatorID == "" || cfg.HederaOperatorKey == "" {
			return nil, fmt.Errorf("HEDERA_OPERATOR_ID and HEDERA_OPERATOR_KEY are required for the hedera wallet provider")
		}
		return NewHederaFactory(cfg.HederaNetwork, cfg.HederaOperatorID, cfg.HederaOperatorKey)

	case ProviderSimulated:
		return NewSimFactory(), nil

	default:
		return nil, fmt.Errorf("unsupported wallet provider: %s", provider)
	}
}

// SupportedProviders returns the providers New accepts.
func SupportedProviders() []Provider {
	return []Provider{
		ProviderHedera,
		ProviderSimulated,
	}
}
