package config

import (
	"testing"
	"time"
)

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("FUNDME_WALLET_URL", "http://127.0.0.1:1248")
	t.Setenv("FUNDME_CONTRACT_ADDRESS", "0xe7f1725E7734CE288F8367e1Bb143E90bb3F0512")
	t.Setenv("FUNDME_CHAIN_RPC", "http://a:8545, ,http://b:8545")
	t.Setenv("FUNDME_STATUS_DELAY", "1500")
	t.Setenv("FUNDME_RECEIPT_POLL", "not-a-number")
	t.Setenv("FUNDME_DEMO_STATS", "true")

	cfg := NewConfig()
	cfg.LoadFromEnvironment()

	if cfg.WalletURL != "http://127.0.0.1:1248" {
		t.Fatalf("unexpected wallet url %q", cfg.WalletURL)
	}
	if cfg.ContractAddress != "0xe7f1725E7734CE288F8367e1Bb143E90bb3F0512" {
		t.Fatalf("unexpected contract address %q", cfg.ContractAddress)
	}
	if len(cfg.ChainRPCURLs) != 2 || cfg.ChainRPCURLs[1] != "http://b:8545" {
		t.Fatalf("unexpected rpc urls %v", cfg.ChainRPCURLs)
	}
	if cfg.StatusDelay != 1500*time.Millisecond {
		t.Fatalf("unexpected status delay %v", cfg.StatusDelay)
	}
	if cfg.ReceiptPoll != 2*time.Second {
		t.Fatalf("invalid poll value should keep default, got %v", cfg.ReceiptPoll)
	}
	if !cfg.DemoStats {
		t.Fatalf("expected demo stats enabled")
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestDefaultsHaveNoProvider(t *testing.T) {
	t.Setenv("FUNDME_WALLET_URL", "")

	cfg := NewConfig()
	cfg.LoadFromEnvironment()

	if cfg.WalletURL != "" {
		t.Fatalf("default config must not have a provider, got %q", cfg.WalletURL)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad address", func(c *Config) { c.ContractAddress = "0x1234" }},
		{"no rpc", func(c *Config) { c.ChainRPCURLs = nil }},
		{"zero decimals", func(c *Config) { c.Decimals = 0 }},
		{"zero status delay", func(c *Config) { c.StatusDelay = 0 }},
		{"negative poll", func(c *Config) { c.ReceiptPoll = -time.Second }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := NewConfig()
			tc.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}
