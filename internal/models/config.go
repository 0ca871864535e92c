package models

import "time"

// Config represents the application configuration
type Config struct {
	Database DatabaseConfig
	Node     NodeConfig
	Wallet   WalletConfig
	Listener ListenerConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Path            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	PingTimeout     time.Duration
}

// NodeConfig holds bitcoind RPC connection settings.
type NodeConfig struct {
	RPCHost    string
	RPCUser    string
	RPCPass    string
	RPCTimeout time.Duration
}

// WalletConfig holds accounting and reconciliation settings.
type WalletConfig struct {
	// Network selects the chain parameters used to decode output addresses
	// (mainnet, testnet, signet, regtest).
	Network string

	// MinConfirmations is the confirmation count at which an incoming
	// transaction is credited. Anything below is surfaced as pending only.
	MinConfirmations int64

	// LookBackBlocks bounds node transaction listings to the recent chain.
	LookBackBlocks int64

	// FunderAccountId is the account that pays onboarding rewards.
	FunderAccountId string

	// RewardsFile is the YAML table of quiz reward amounts.
	RewardsFile string

	// PriceRatioSats and PriceRatioCents define the sats/cents ratio used
	// to annotate entries with display-currency values when no live price
	// feed is wired in.
	PriceRatioSats  int64
	PriceRatioCents int64
}

// ListenerConfig holds reconciliation listener settings
type ListenerConfig struct {
	PollingInterval time.Duration
	MaxConcurrent   int
}
