package wallet

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/kelsos/fundme/internal/models"
)

type keyedBackend interface {
	ChainID(ctx context.Context) (*big.Int, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	EstimateGas(ctx context.Context, call ethereum.CallMsg) (uint64, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
}

// KeyedSession signs locally with a private key and broadcasts raw transactions
// through the provider endpoint. Sends are serialised so overlapping requests get
// consecutive nonces.
type KeyedSession struct {
	key     *ecdsa.PrivateKey
	address common.Address
	backend keyedBackend

	mu        sync.Mutex
	nextNonce uint64
	hasNonce  bool
}

func NewKeyedSession(key *ecdsa.PrivateKey, backend keyedBackend) *KeyedSession {
	return &KeyedSession{
		key:     key,
		address: crypto.PubkeyToAddress(key.PublicKey),
		backend: backend,
	}
}

func (s *KeyedSession) RequestAccounts(context.Context) ([]common.Address, error) {
	return []common.Address{s.address}, nil
}

func (s *KeyedSession) ChainID(ctx context.Context) (*big.Int, error) {
	id, err := s.backend.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("chain id: %w", err)
	}
	return id, nil
}

func (s *KeyedSession) SendTransaction(ctx context.Context, req models.TransactionRequest) (common.Hash, error) {
	if req.From != s.address {
		return common.Hash{}, fmt.Errorf("request from %s cannot be signed by %s", req.From.Hex(), s.address.Hex())
	}

	chainID := req.Network.ID
	if chainID == nil {
		var err error
		if chainID, err = s.ChainID(ctx); err != nil {
			return common.Hash{}, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	nonce, err := s.backend.PendingNonceAt(ctx, s.address)
	if err != nil {
		return common.Hash{}, fmt.Errorf("fetch nonce: %w", err)
	}
	// the node may not count a transaction we just sent as pending yet
	if s.hasNonce && s.nextNonce > nonce {
		nonce = s.nextNonce
	}

	gasPrice, err := s.backend.SuggestGasPrice(ctx)
	if err != nil {
		return common.Hash{}, fmt.Errorf("suggest gas price: %w", err)
	}

	value := new(big.Int)
	if req.Value != nil {
		value.Set(req.Value)
	}

	gas := req.Gas
	if gas == 0 {
		to := req.To
		gas, err = s.backend.EstimateGas(ctx, ethereum.CallMsg{From: s.address, To: &to, Value: value, Data: req.Data})
		if err != nil {
			return common.Hash{}, fmt.Errorf("estimate gas: %w", err)
		}
	}

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		To:       &req.To,
		Value:    value,
		Gas:      gas,
		GasPrice: gasPrice,
		Data:     req.Data,
	})

	signed, err := types.SignTx(tx, types.LatestSignerForChainID(chainID), s.key)
	if err != nil {
		return common.Hash{}, fmt.Errorf("sign transaction: %w", err)
	}

	if err := s.backend.SendTransaction(ctx, signed); err != nil {
		return common.Hash{}, fmt.Errorf("send transaction: %w", err)
	}
	s.nextNonce = nonce + 1
	s.hasNonce = true
	return signed.Hash(), nil
}
