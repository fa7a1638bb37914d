package config

import "time"

const (
	defaultNetwork           = "anvil"
	defaultChainID           = 31337
	defaultABI               = "regtoken"
	defaultDecimals          = 18
	defaultLogLevel          = "info"
	defaultConfirmTimeout    = 3 * time.Minute
	defaultPollInterval      = 2 * time.Second
	defaultChainPollInterval = 5 * time.Second

	configFile  = "config.json"
	walletsFile = "wallets.json"
	keyringDir  = "keyring"

	// EnvConfigDir overrides the config directory.
	EnvConfigDir = "W3REG_CONFIG_DIR"
	// EnvPrefix prefixes every field override, e.g. W3REG_RPC_URL.
	EnvPrefix = "W3REG_"
)
