package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/ethereum/go-ethereum/common"
)

type Config struct {
	RPCAddress      string `toml:"RPCAddress"`
	DataDir         string `toml:"DataDir"`
	NetworkName     string `toml:"NetworkName"`
	AdminAddress    string `toml:"AdminAddress"`
	TreasuryAddress string `toml:"TreasuryAddress"`
	RPCAuthToken    string `toml:"RPCAuthToken"`
	RPCAuthTokenEnv string `toml:"RPCAuthTokenEnv"`
	RPCReadTimeout  int64  `toml:"RPCReadTimeout"`
	RPCWriteTimeout int64  `toml:"RPCWriteTimeout"`
	RPCIdleTimeout  int64  `toml:"RPCIdleTimeout"`
	LogFormat       string `toml:"LogFormat"`
	LogLevel        string `toml:"LogLevel"`
}

// Load loads the configuration from the given path, writing a default file
// when none exists yet.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path)
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	applyDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if strings.TrimSpace(cfg.RPCAddress) == "" {
		cfg.RPCAddress = ":8080"
	}
	if strings.TrimSpace(cfg.DataDir) == "" {
		cfg.DataDir = "./passhub-data"
	}
	if strings.TrimSpace(cfg.NetworkName) == "" {
		cfg.NetworkName = "passhub-local"
	}
	if cfg.RPCReadTimeout <= 0 {
		cfg.RPCReadTimeout = 15
	}
	if cfg.RPCWriteTimeout <= 0 {
		cfg.RPCWriteTimeout = 15
	}
	if cfg.RPCIdleTimeout <= 0 {
		cfg.RPCIdleTimeout = 60
	}
	if strings.TrimSpace(cfg.LogFormat) == "" {
		cfg.LogFormat = "json"
	}
	if strings.TrimSpace(cfg.LogLevel) == "" {
		cfg.LogLevel = "info"
	}
}

// Validate rejects configurations that cannot produce a working node.
func (c *Config) Validate() error {
	if c.AdminAddress != "" && !common.IsHexAddress(c.AdminAddress) {
		return fmt.Errorf("AdminAddress %q is not a hex address", c.AdminAddress)
	}
	if c.TreasuryAddress != "" && !common.IsHexAddress(c.TreasuryAddress) {
		return fmt.Errorf("TreasuryAddress %q is not a hex address", c.TreasuryAddress)
	}
	switch strings.ToLower(strings.TrimSpace(c.LogFormat)) {
	case "json", "text":
	default:
		return fmt.Errorf("LogFormat %q must be json or text", c.LogFormat)
	}
	return nil
}

// Admin returns the configured protocol admin address, zero when unset.
func (c *Config) Admin() [20]byte {
	return common.HexToAddress(c.AdminAddress)
}

// Treasury returns the configured treasury address, zero when unset.
func (c *Config) Treasury() [20]byte {
	return common.HexToAddress(c.TreasuryAddress)
}

// AuthToken resolves the bearer token guarding privileged RPC methods. The
// environment variable takes precedence over the inline value.
func (c *Config) AuthToken() string {
	if env := strings.TrimSpace(c.RPCAuthTokenEnv); env != "" {
		if token := strings.TrimSpace(os.Getenv(env)); token != "" {
			return token
		}
	}
	return strings.TrimSpace(c.RPCAuthToken)
}

// createDefault creates and saves a default configuration file.
func createDefault(path string) (*Config, error) {
	cfg := &Config{}
	applyDefaults(cfg)
	cfg.RPCAuthTokenEnv = "PASSHUB_RPC_TOKEN"
	if err := persist(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func persist(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_TRUNC|os.O_CREATE, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}
