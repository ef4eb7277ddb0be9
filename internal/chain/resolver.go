package chain

import (
	"context"
	"fmt"
	"math/big"

	"github.com/kelsos/fundme/internal/config"
	"github.com/kelsos/fundme/internal/logger"
	"github.com/kelsos/fundme/internal/models"
)

// IDSource is anything that can report the active chain id, usually a wallet session
type IDSource interface {
	ChainID(ctx context.Context) (*big.Int, error)
}

// Resolver turns the active chain id into a network descriptor. Every id maps to the same
// configured name, currency and endpoints; the endpoints are not checked for reachability.
type Resolver struct {
	name     string
	currency models.NativeCurrency
	rpcURLs  []string
}

func NewResolver(cfg *config.Config) *Resolver {
	return &Resolver{
		name: cfg.ChainName,
		currency: models.NativeCurrency{
			Name:     cfg.CurrencyName,
			Symbol:   cfg.CurrencySymbol,
			Decimals: cfg.Decimals,
		},
		rpcURLs: append([]string(nil), cfg.ChainRPCURLs...),
	}
}

// Resolve queries the chain id and builds a fresh descriptor for it
func (r *Resolver) Resolve(ctx context.Context, source IDSource) (models.Network, error) {
	id, err := source.ChainID(ctx)
	if err != nil {
		return models.Network{}, fmt.Errorf("resolve chain: %w", err)
	}
	if id == nil || id.Sign() <= 0 {
		return models.Network{}, fmt.Errorf("resolve chain: invalid chain id %v", id)
	}

	logger.Debug("Resolved chain %s (%s)", id, r.name)

	return models.Network{
		ID:             new(big.Int).Set(id),
		Name:           r.name,
		NativeCurrency: r.currency,
		RPCURLs:        append([]string(nil), r.rpcURLs...),
	}, nil
}

// Currency returns the configured native currency
func (r *Resolver) Currency() models.NativeCurrency {
	return r.currency
}
