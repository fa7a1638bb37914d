package config

import (
	"encoding/json"
	"fmt"
	"time"
)

// Config holds all w3reg configuration.
//
// Validation tags: https://pkg.go.dev/github.com/go-playground/validator/v10
type Config struct {
	Network         string            `json:"network"           validate:"required"`
	RPCURL          string            `json:"rpc_url,omitempty" validate:"omitempty,url"`
	ContractAddress string            `json:"contract_address"  validate:"omitempty,eth_addr"`
	ChainID         int64             `json:"chain_id"          validate:"gte=0"`
	ABI             string            `json:"abi"               validate:"required"` // builtin id or path to an ABI JSON file
	Decimals        uint8             `json:"decimals"          validate:"lte=77"`
	Symbol          string            `json:"symbol,omitempty"  validate:"omitempty,max=11"`
	Deployments     map[string]string `json:"deployments,omitempty" validate:"omitempty,dive,keys,numeric,endkeys,eth_addr"` // chain id -> contract address

	ConfirmTimeout    Duration `json:"confirm_timeout"     validate:"gte=0"`
	PollInterval      Duration `json:"poll_interval"       validate:"gt=0"`
	ChainPollInterval Duration `json:"chain_poll_interval" validate:"gte=0"`

	DefaultWallet string `json:"default_wallet,omitempty"`
	LogLevel      string `json:"log_level" validate:"omitempty,oneof=debug info warn error"`
	LogJSON       bool   `json:"log_json"`

	// internal: config dir path used for Save()
	configDir string
}

// Duration is a time.Duration written as a Go duration string ("3m", "2s").
type Duration time.Duration

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) String() string { return time.Duration(d).String() }

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		// Bare numbers are seconds.
		var secs int64
		if err2 := json.Unmarshal(b, &secs); err2 != nil {
			return fmt.Errorf("duration must be a string like \"30s\": %w", err)
		}
		*d = Duration(time.Duration(secs) * time.Second)
		return nil
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}
