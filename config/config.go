package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Server configuration
	Port        string
	Environment string

	// Redis configuration
	RedisURL      string
	RedisPassword string
	RedisDB       int

	// PubNub configuration
	PubNubPublishKey   string
	PubNubSubscribeKey string
	PubNubSecretKey    string
	PubNubChannel      string

	// Hedera configuration
	HederaNetwork           string
	HederaOperatorID        string
	HederaOperatorKey       string
	WalletConnectProjectID  string
	EventRegistryContractID string

	// Wallet configuration
	WalletProvider string
	DemoMode       bool

	// Registry configuration
	SeedSampleEvents bool

	// Rate limiting
	PurchaseRateLimit  int
	PurchaseRateWindow time.Duration

	// Chain read circuit breaker
	BreakerMaxRequests  int
	BreakerInterval     time.Duration
	BreakerTimeout      time.Duration
	BreakerFailureRatio float64

	// Monitoring
	EnableMetrics bool
	MetricsPort   string
}

func LoadConfig() *Config {
	return &Config{
		// Server
		Port:        getEnv("PORT", "8090"),
		Environment: getEnv("ENVIRONMENT", "development"),

		// Redis
		RedisURL:      getEnv("REDIS_URL", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		// PubNub
		PubNubPublishKey:   getEnv("PUBNUB_PUBLISH_KEY", ""),
		PubNubSubscribeKey: getEnv("PUBNUB_SUBSCRIBE_KEY", ""),
		PubNubSecretKey:    getEnv("PUBNUB_SECRET_KEY", ""),
		PubNubChannel:      getEnv("PUBNUB_CHANNEL", "eventhive-registry"),

		// Hedera
		HederaNetwork:           getEnv("HEDERA_NETWORK", "testnet"),
		HederaOperatorID:        getEnv("HEDERA_OPERATOR_ID", ""),
		HederaOperatorKey:       getEnv("HEDERA_OPERATOR_KEY", ""),
		WalletConnectProjectID:  getEnv("WALLETCONNECT_PROJECT_ID", ""),
		EventRegistryContractID: getEnv("EVENT_REGISTRY_CONTRACT_ID", ""),

		// Wallet
		WalletProvider: getEnv("WALLET_PROVIDER", "simulated"),
		DemoMode:       getEnvAsBool("DEMO_MODE", true),

		// Registry
		SeedSampleEvents: getEnvAsBool("SEED_SAMPLE_EVENTS", false),

		// Rate limiting
		PurchaseRateLimit:  getEnvAsInt("PURCHASE_RATE_LIMIT", 30),
		PurchaseRateWindow: getEnvAsDuration("PURCHASE_RATE_WINDOW", "1m"),

		// Chain read circuit breaker
		BreakerMaxRequests:  getEnvAsInt("CHAIN_BREAKER_MAX_REQUESTS", 100),
		BreakerInterval:     getEnvAsDuration("CHAIN_BREAKER_INTERVAL", "1m"),
		BreakerTimeout:      getEnvAsDuration("CHAIN_BREAKER_TIMEOUT", "1m"),
		BreakerFailureRatio: getEnvAsFloat("CHAIN_BREAKER_FAILURE_RATIO", 0.6),

		// Monitoring
		EnableMetrics: getEnvAsBool("ENABLE_METRICS", true),
		MetricsPort:   getEnv("METRICS_PORT", "9090"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	// If parsing fails, try to parse default value
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}
