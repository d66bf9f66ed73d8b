package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadParsesSettings(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	contents := `RPCAddress = "0.0.0.0:9000"
DataDir = "./data"
NetworkName = "testnet"
AdminAddress = "0x00000000000000000000000000000000000000aa"
TreasuryAddress = "0x00000000000000000000000000000000000000bb"
RPCAuthToken = "swordfish"
RPCReadTimeout = 30
RPCWriteTimeout = 25
RPCIdleTimeout = 90
LogFormat = "text"
LogLevel = "debug"
`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.RPCAddress != "0.0.0.0:9000" {
		t.Fatalf("unexpected RPCAddress %q", cfg.RPCAddress)
	}
	if cfg.NetworkName != "testnet" {
		t.Fatalf("unexpected NetworkName %q", cfg.NetworkName)
	}
	admin := cfg.Admin()
	if admin[19] != 0xaa {
		t.Fatalf("unexpected admin address %x", admin)
	}
	treasury := cfg.Treasury()
	if treasury[19] != 0xbb {
		t.Fatalf("unexpected treasury address %x", treasury)
	}
	if cfg.AuthToken() != "swordfish" {
		t.Fatalf("unexpected auth token %q", cfg.AuthToken())
	}
	if cfg.RPCReadTimeout != 30 || cfg.RPCWriteTimeout != 25 || cfg.RPCIdleTimeout != 90 {
		t.Fatalf("unexpected timeouts %d/%d/%d", cfg.RPCReadTimeout, cfg.RPCWriteTimeout, cfg.RPCIdleTimeout)
	}
}

func TestLoadCreatesDefaultFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.RPCAddress != ":8080" {
		t.Fatalf("unexpected default RPCAddress %q", cfg.RPCAddress)
	}
	if cfg.DataDir != "./passhub-data" {
		t.Fatalf("unexpected default DataDir %q", cfg.DataDir)
	}
	if cfg.RPCAuthTokenEnv != "PASSHUB_RPC_TOKEN" {
		t.Fatalf("unexpected default token env %q", cfg.RPCAuthTokenEnv)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected default file to be written: %v", err)
	}
}

func TestLoadRejectsBadAddress(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	contents := `AdminAddress = "not-an-address"`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "AdminAddress") {
		t.Fatalf("expected AdminAddress error, got %v", err)
	}
}

func TestAuthTokenEnvOverride(t *testing.T) {
	cfg := &Config{RPCAuthToken: "inline", RPCAuthTokenEnv: "PASSHUB_TEST_TOKEN"}
	t.Setenv("PASSHUB_TEST_TOKEN", "from-env")
	if cfg.AuthToken() != "from-env" {
		t.Fatalf("expected env token, got %q", cfg.AuthToken())
	}
	t.Setenv("PASSHUB_TEST_TOKEN", "")
	if cfg.AuthToken() != "inline" {
		t.Fatalf("expected inline token fallback, got %q", cfg.AuthToken())
	}
}
