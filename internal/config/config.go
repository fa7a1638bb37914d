// Package config loads, validates and persists the w3reg config directory.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Errors.
var (
	ErrConfigValidation = errors.New("config validation error")
	ErrUnknownKey       = errors.New("unknown config key")
)

var validate = validator.New()

// Keys lists the settable config keys in display order.
var Keys = []string{
	"network", "rpc_url", "contract_address", "chain_id", "abi", "decimals", "symbol",
	"confirm_timeout", "poll_interval", "chain_poll_interval",
	"default_wallet", "log_level", "log_json",
}

// DefaultDir returns $W3REG_CONFIG_DIR or ~/.w3reg.
func DefaultDir() (string, error) {
	if dir := os.Getenv(EnvConfigDir); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home dir: %w", err)
	}
	return filepath.Join(home, ".w3reg"), nil
}

// LoadDotEnv loads KEY=VALUE pairs from path into the process environment.
// Variables already set are kept. A missing file is not an error.
func LoadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("loading %s: %w", path, err)
}

// Load reads config from dir (or creates defaults) and applies W3REG_*
// environment overrides. dir defaults to DefaultDir().
func Load(dir string) (*Config, error) {
	if dir == "" {
		d, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("could not create config dir: %w", err)
	}

	cfg := defaults(dir)

	data, err := os.ReadFile(filepath.Join(dir, configFile))
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, fmt.Errorf("reading config: %w", err)
	default:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.configDir = dir
	return cfg, nil
}

// Validate checks every field against its validation tag.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrConfigValidation, err)
	}
	return nil
}

// Save writes the config to disk.
func (c *Config) Save() error {
	if err := os.MkdirAll(c.configDir, 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.configDir, configFile), data, 0o600)
}

// Set assigns a single key from its string form.
func (c *Config) Set(key, value string) error {
	if !slices.Contains(Keys, key) {
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	return c.set(key, value)
}

// Get returns the string form of a key.
func (c *Config) Get(key string) (string, error) {
	switch key {
	case "network":
		return c.Network, nil
	case "rpc_url":
		return c.RPCURL, nil
	case "contract_address":
		return c.ContractAddress, nil
	case "chain_id":
		return strconv.FormatInt(c.ChainID, 10), nil
	case "abi":
		return c.ABI, nil
	case "decimals":
		return strconv.Itoa(int(c.Decimals)), nil
	case "symbol":
		return c.Symbol, nil
	case "confirm_timeout":
		return c.ConfirmTimeout.String(), nil
	case "poll_interval":
		return c.PollInterval.String(), nil
	case "chain_poll_interval":
		return c.ChainPollInterval.String(), nil
	case "default_wallet":
		return c.DefaultWallet, nil
	case "log_level":
		return c.LogLevel, nil
	case "log_json":
		return strconv.FormatBool(c.LogJSON), nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownKey, key)
}

// SetDeployment records the contract address deployed on chainID.
func (c *Config) SetDeployment(chainID int64, address string) {
	if c.Deployments == nil {
		c.Deployments = make(map[string]string)
	}
	c.Deployments[strconv.FormatInt(chainID, 10)] = address
}

// Deployment returns the contract address for chainID: the primary
// contract_address when chainID is chain_id, else the deployments entry.
func (c *Config) Deployment(chainID int64) (string, bool) {
	if chainID == c.ChainID && c.ContractAddress != "" {
		return c.ContractAddress, true
	}
	addr, ok := c.Deployments[strconv.FormatInt(chainID, 10)]
	return addr, ok && addr != ""
}

// Dir returns the config directory.
func (c *Config) Dir() string {
	return c.configDir
}

// WalletsPath is where the local wallet provider keeps wallet metadata.
func (c *Config) WalletsPath() string {
	return filepath.Join(c.configDir, walletsFile)
}

// KeyringDir is the directory used by the encrypted-file keyring backend.
func (c *Config) KeyringDir() string {
	return filepath.Join(c.configDir, keyringDir)
}

// --- helpers ---

func defaults(dir string) *Config {
	return &Config{
		Network:           defaultNetwork,
		ChainID:           defaultChainID,
		ABI:               defaultABI,
		Decimals:          defaultDecimals,
		LogLevel:          defaultLogLevel,
		ConfirmTimeout:    Duration(defaultConfirmTimeout),
		PollInterval:      Duration(defaultPollInterval),
		ChainPollInterval: Duration(defaultChainPollInterval),
		configDir:         dir,
	}
}

func (c *Config) applyEnv() error {
	for _, key := range Keys {
		v, ok := os.LookupEnv(EnvPrefix + strings.ToUpper(key))
		if !ok {
			continue
		}
		if err := c.set(key, v); err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, strings.ToUpper(key), err)
		}
	}
	return nil
}

func (c *Config) set(key, value string) error {
	switch key {
	case "network":
		c.Network = value
	case "rpc_url":
		c.RPCURL = value
	case "contract_address":
		c.ContractAddress = value
	case "chain_id":
		id, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("chain_id: %w", err)
		}
		c.ChainID = id
	case "abi":
		c.ABI = value
	case "decimals":
		d, err := strconv.ParseUint(value, 10, 8)
		if err != nil {
			return fmt.Errorf("decimals: %w", err)
		}
		c.Decimals = uint8(d)
	case "symbol":
		c.Symbol = value
	case "confirm_timeout", "poll_interval", "chain_poll_interval":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		switch key {
		case "confirm_timeout":
			c.ConfirmTimeout = Duration(d)
		case "poll_interval":
			c.PollInterval = Duration(d)
		default:
			c.ChainPollInterval = Duration(d)
		}
	case "default_wallet":
		c.DefaultWallet = value
	case "log_level":
		c.LogLevel = value
	case "log_json":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("log_json: %w", err)
		}
		c.LogJSON = b
	default:
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	return nil
}
