// Package wallet wraps the wallet provider endpoint: account access, chain id and signing.
package wallet

import (
	"context"
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/kelsos/fundme/internal/models"
)

var (
	// ErrProviderUnavailable means no wallet provider is configured.
	ErrProviderUnavailable = errors.New("wallet provider not detected")
	ErrNoAccounts          = errors.New("wallet returned no accounts")
)

// Session is an active connection to a wallet that can sign
type Session interface {
	RequestAccounts(ctx context.Context) ([]common.Address, error)
	ChainID(ctx context.Context) (*big.Int, error)
	SendTransaction(ctx context.Context, req models.TransactionRequest) (common.Hash, error)
}

// Reader is the read-only half of the provider
type Reader interface {
	CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	EstimateGas(ctx context.Context, call ethereum.CallMsg) (uint64, error)
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
}

// Connection bundles the signing session and the reader backed by the same provider
type Connection struct {
	Session Session
	Reader  Reader
}

// PrimaryAccount requests accounts and returns the first one
func PrimaryAccount(ctx context.Context, s Session) (common.Address, error) {
	accounts, err := s.RequestAccounts(ctx)
	if err != nil {
		return common.Address{}, err
	}
	if len(accounts) == 0 {
		return common.Address{}, ErrNoAccounts
	}
	return accounts[0], nil
}
