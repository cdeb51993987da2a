package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	NetworkTestnet = "testnet"
	NetworkMainnet = "mainnet"
)

// Credential kinds supported by the ledger signer. New key representations
// are added here as new kinds, not as string sniffing at call sites.
const (
	CredentialKeystore   = "keystore"   // base64 of scheme flag || 32-byte seed
	CredentialSuiPrivkey = "suiprivkey" // bech32 "suiprivkey1..." export string
	CredentialHexSeed    = "hex"        // hex-encoded 32-byte ed25519 seed
)

// Credential is the operator signing key, resolved exactly once at startup.
type Credential struct {
	Kind  string
	Value string
}

type ManagerConfig struct {
	Key      string `yaml:"key"`
	Address  string `yaml:"address"`
	TradeCap string `yaml:"trade_cap"`
}

// OrderIntent is the fixed order the bot attempts every cycle. Quantities
// and prices are in smallest units.
type OrderIntent struct {
	Side           string `yaml:"side"` // "bid" or "ask"
	Kind           string `yaml:"kind"` // "limit" or "market"
	Quantity       uint64 `yaml:"quantity"`
	Price          uint64 `yaml:"price"`
	PayFeeWithBase bool   `yaml:"pay_fee_with_base"`
}

type Config struct {
	Network     string        `yaml:"network"`
	FullnodeURL string        `yaml:"fullnode_url"` // optional; derived from network when empty
	Manager     ManagerConfig `yaml:"balance_manager"`
	Assets      []string      `yaml:"assets"`
	PoolKey     string        `yaml:"pool_key"`
	Order       OrderIntent   `yaml:"order"`
	// MinBalances optionally gates the cycle: any listed asset below its
	// floor skips the cycle instead of trading.
	MinBalances map[string]uint64 `yaml:"min_balances"`
	Schedule    struct {
		Cron string `yaml:"cron"`
	} `yaml:"schedule"`
	Trading struct {
		CallTimeoutSec int `yaml:"call_timeout_sec"`
	} `yaml:"trading"`
	Credential struct {
		Kind string `yaml:"kind"`
		Env  string `yaml:"env"`
	} `yaml:"credential"`
	Journal struct {
		Path string `yaml:"path"`
	} `yaml:"journal"`
	Logging struct {
		Level string `yaml:"level"`
		File  string `yaml:"file"` // optional; log to this file in addition to stderr
	} `yaml:"logging"`
}

func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Network != NetworkTestnet && c.Network != NetworkMainnet {
		return fmt.Errorf("network must be %q or %q, got %q", NetworkTestnet, NetworkMainnet, c.Network)
	}
	if c.Manager.Key == "" || c.Manager.Address == "" {
		return fmt.Errorf("balance_manager key and address are required")
	}
	if len(c.Assets) == 0 {
		return fmt.Errorf("at least one asset is required")
	}
	if c.PoolKey == "" {
		return fmt.Errorf("pool_key is required")
	}
	if c.Schedule.Cron == "" {
		return fmt.Errorf("schedule.cron is required")
	}
	if c.Order.Quantity == 0 {
		return fmt.Errorf("order.quantity must be positive")
	}
	if c.Order.Side != "bid" && c.Order.Side != "ask" {
		return fmt.Errorf("order.side must be \"bid\" or \"ask\", got %q", c.Order.Side)
	}
	if c.Order.Kind != "limit" && c.Order.Kind != "market" {
		return fmt.Errorf("order.kind must be \"limit\" or \"market\", got %q", c.Order.Kind)
	}
	switch c.Credential.Kind {
	case CredentialKeystore, CredentialSuiPrivkey, CredentialHexSeed:
	default:
		return fmt.Errorf("credential.kind must be %q, %q or %q, got %q",
			CredentialKeystore, CredentialSuiPrivkey, CredentialHexSeed, c.Credential.Kind)
	}
	return nil
}

// CallTimeout is the bound imposed on every remote call within a cycle.
func (c *Config) CallTimeout() time.Duration {
	if c.Trading.CallTimeoutSec <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.Trading.CallTimeoutSec) * time.Second
}

const defaultCredentialEnv = "PLATFORM_PRIVATE_KEY"

// LoadCredential reads the signing key from the environment variable named
// in the config. This is the only env read in the program; it happens once
// at startup.
func (c *Config) LoadCredential() (Credential, error) {
	env := c.Credential.Env
	if env == "" {
		env = defaultCredentialEnv
	}
	value := os.Getenv(env)
	if value == "" {
		return Credential{}, fmt.Errorf("%s is not set", env)
	}
	return Credential{Kind: c.Credential.Kind, Value: value}, nil
}
