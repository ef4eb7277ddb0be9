package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

const (
	// DefaultContractAddress is the first contract a fresh local dev node deploys.
	DefaultContractAddress = "0x5FbDB2315678afecb367f032d93F642f64180aa3"
	DefaultChainRPC        = "http://localhost:8545"
)

// Config holds all application configuration
type Config struct {
	// Wallet provider settings
	WalletURL  string
	PrivateKey string

	// Contract settings
	ContractAddress string
	ABIPath         string

	// Network descriptor settings, applied to every chain id
	ChainName      string
	ChainRPCURLs   []string
	CurrencyName   string
	CurrencySymbol string
	Decimals       int

	// UI settings
	StatusDelay time.Duration
	ReceiptPoll time.Duration
	DemoStats   bool
	LogDir      string
}

// NewConfig creates a new configuration with default values
func NewConfig() *Config {
	return &Config{
		ContractAddress: DefaultContractAddress,
		ChainName:       "Custom Chain",
		ChainRPCURLs:    []string{DefaultChainRPC},
		CurrencyName:    "Ether",
		CurrencySymbol:  "ETH",
		Decimals:        18,
		StatusDelay:     5 * time.Second,
		ReceiptPoll:     2 * time.Second,
		LogDir:          "logs",
	}
}

// LoadFromEnvironment loads configuration from environment variables
func (c *Config) LoadFromEnvironment() {
	if walletURL := os.Getenv("FUNDME_WALLET_URL"); walletURL != "" {
		c.WalletURL = walletURL
	}

	if key := os.Getenv("FUNDME_PRIVATE_KEY"); key != "" {
		c.PrivateKey = key
	}

	if address := os.Getenv("FUNDME_CONTRACT_ADDRESS"); address != "" {
		c.ContractAddress = address
	}

	if abiPath := os.Getenv("FUNDME_ABI_PATH"); abiPath != "" {
		c.ABIPath = abiPath
	}

	if name := os.Getenv("FUNDME_CHAIN_NAME"); name != "" {
		c.ChainName = name
	}

	if rpcs := os.Getenv("FUNDME_CHAIN_RPC"); rpcs != "" {
		c.ChainRPCURLs = SplitList(rpcs)
	}

	if symbol := os.Getenv("FUNDME_CURRENCY_SYMBOL"); symbol != "" {
		c.CurrencySymbol = symbol
	}

	if delay := os.Getenv("FUNDME_STATUS_DELAY"); delay != "" {
		if d, err := strconv.Atoi(delay); err == nil {
			c.StatusDelay = time.Duration(d) * time.Millisecond
		}
	}

	if poll := os.Getenv("FUNDME_RECEIPT_POLL"); poll != "" {
		if p, err := strconv.Atoi(poll); err == nil {
			c.ReceiptPoll = time.Duration(p) * time.Millisecond
		}
	}

	if demo := os.Getenv("FUNDME_DEMO_STATS"); demo != "" {
		if b, err := strconv.ParseBool(demo); err == nil {
			c.DemoStats = b
		}
	}

	if logDir := os.Getenv("FUNDME_LOG_DIR"); logDir != "" {
		c.LogDir = logDir
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if !common.IsHexAddress(c.ContractAddress) {
		return fmt.Errorf("invalid contract address: %q", c.ContractAddress)
	}

	if len(c.ChainRPCURLs) == 0 {
		return fmt.Errorf("at least one chain RPC URL is required")
	}

	if c.Decimals <= 0 {
		return fmt.Errorf("currency decimals must be positive, got: %d", c.Decimals)
	}

	if c.StatusDelay <= 0 {
		return fmt.Errorf("status delay must be positive, got: %v", c.StatusDelay)
	}

	if c.ReceiptPoll <= 0 {
		return fmt.Errorf("receipt poll interval must be positive, got: %v", c.ReceiptPoll)
	}

	return nil
}

// SplitList splits a comma separated list, dropping empty entries
func SplitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
