package wallet

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/crypto"

	"github.com/kelsos/fundme/internal/client"
	"github.com/kelsos/fundme/internal/config"
	"github.com/kelsos/fundme/internal/logger"
)

// Provider detects the configured wallet provider and hands out connections to it
type Provider struct {
	url string
	key *ecdsa.PrivateKey

	mu     sync.Mutex
	client *client.Client
	keyed  *KeyedSession
}

// NewProvider creates a provider from configuration. A configured private key is parsed
// eagerly so a typo fails at startup rather than on the first transaction.
func NewProvider(cfg *config.Config) (*Provider, error) {
	p := &Provider{url: strings.TrimSpace(cfg.WalletURL)}

	if cfg.PrivateKey != "" {
		key, err := parsePrivateKey(cfg.PrivateKey)
		if err != nil {
			return nil, err
		}
		p.key = key
	}

	return p, nil
}

func parsePrivateKey(hexKey string) (*ecdsa.PrivateKey, error) {
	hexKey = strings.TrimPrefix(strings.TrimSpace(hexKey), "0x")
	key, err := crypto.HexToECDSA(hexKey)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}
	return key, nil
}

// Available reports whether a provider endpoint is configured
func (p *Provider) Available() bool {
	return p.url != ""
}

// Detect returns a connection to the provider, or ErrProviderUnavailable
func (p *Provider) Detect(ctx context.Context) (*Connection, error) {
	if !p.Available() {
		return nil, ErrProviderUnavailable
	}

	c, err := p.dial(ctx)
	if err != nil {
		return nil, err
	}

	if p.key != nil {
		return &Connection{Session: p.keyedSession(c), Reader: c}, nil
	}
	return &Connection{Session: NewRPCSession(c), Reader: c}, nil
}

// keyedSession returns the one signing session of this provider so nonces are tracked across actions
func (p *Provider) keyedSession(c *client.Client) *KeyedSession {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.keyed == nil {
		p.keyed = NewKeyedSession(p.key, c)
	}
	return p.keyed
}

// Ping dials the provider and checks that it answers
func (p *Provider) Ping(ctx context.Context) error {
	if !p.Available() {
		return ErrProviderUnavailable
	}

	c, err := p.dial(ctx)
	if err != nil {
		return err
	}
	if err := c.Ping(ctx); err != nil {
		return fmt.Errorf("provider %s: %w", c.URL(), err)
	}
	logger.Debug("Wallet provider at %s answered", c.URL())
	return nil
}

func (p *Provider) dial(ctx context.Context) (*client.Client, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.client != nil {
		return p.client, nil
	}

	c, err := client.Dial(ctx, p.url)
	if err != nil {
		return nil, err
	}
	logger.Info("Wallet provider detected at %s", p.url)
	p.client = c
	return c, nil
}

// Close releases the provider connection
func (p *Provider) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.client != nil {
		p.client.Close()
		p.client = nil
	}
	p.keyed = nil
}
