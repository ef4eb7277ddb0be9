package chain

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/kelsos/fundme/internal/config"
)

type staticID struct {
	id  *big.Int
	err error
}

func (s staticID) ChainID(context.Context) (*big.Int, error) {
	return s.id, s.err
}

func TestResolveMapsEveryChainToConfiguredEndpoint(t *testing.T) {
	r := NewResolver(config.NewConfig())

	for _, id := range []int64{1, 11155111, 31337} {
		network, err := r.Resolve(context.Background(), staticID{id: big.NewInt(id)})
		if err != nil {
			t.Fatalf("resolve %d: %v", id, err)
		}
		if network.ID.Int64() != id {
			t.Fatalf("unexpected id %s", network.ID)
		}
		if network.DefaultRPC() != config.DefaultChainRPC {
			t.Fatalf("unexpected endpoint %q", network.DefaultRPC())
		}
		if network.Name != "Custom Chain" || network.NativeCurrency.Symbol != "ETH" || network.NativeCurrency.Decimals != 18 {
			t.Fatalf("unexpected descriptor %+v", network)
		}
	}
}

func TestResolveReturnsFreshDescriptors(t *testing.T) {
	r := NewResolver(config.NewConfig())
	id := big.NewInt(5)

	first, _ := r.Resolve(context.Background(), staticID{id: id})
	first.RPCURLs[0] = "mutated"
	first.ID.SetInt64(99)

	second, err := r.Resolve(context.Background(), staticID{id: big.NewInt(5)})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if second.DefaultRPC() != config.DefaultChainRPC {
		t.Fatalf("descriptor shares state with a previous one")
	}
	if id.Int64() != 5 {
		t.Fatalf("source id was mutated")
	}
}

func TestResolveErrors(t *testing.T) {
	r := NewResolver(config.NewConfig())

	boom := errors.New("boom")
	if _, err := r.Resolve(context.Background(), staticID{err: boom}); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
	if _, err := r.Resolve(context.Background(), staticID{id: big.NewInt(0)}); err == nil {
		t.Fatalf("expected error for zero chain id")
	}
}

func TestCurrencyFollowsConfiguration(t *testing.T) {
	cfg := config.NewConfig()
	cfg.CurrencySymbol = "SEP"
	cfg.Decimals = 6

	currency := NewResolver(cfg).Currency()
	if currency.Symbol != "SEP" || currency.Decimals != 6 {
		t.Fatalf("unexpected currency %+v", currency)
	}
}
