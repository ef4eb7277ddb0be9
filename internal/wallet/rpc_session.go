package wallet

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"

	"github.com/kelsos/fundme/internal/logger"
	"github.com/kelsos/fundme/internal/models"
)

const methodNotFound = -32601

type caller interface {
	Call(ctx context.Context, result interface{}, method string, args ...interface{}) error
}

// RPCSession lets the provider manage keys: accounts are requested from it and
// transactions are signed by it.
type RPCSession struct {
	rpc caller
}

func NewRPCSession(c caller) *RPCSession {
	return &RPCSession{rpc: c}
}

// sendTxArgs mirrors the eth_sendTransaction parameter object
type sendTxArgs struct {
	From    common.Address  `json:"from"`
	To      *common.Address `json:"to"`
	Gas     *hexutil.Uint64 `json:"gas,omitempty"`
	Value   *hexutil.Big    `json:"value,omitempty"`
	Data    hexutil.Bytes   `json:"data,omitempty"`
	ChainID *hexutil.Big    `json:"chainId,omitempty"`
}

// RequestAccounts asks the provider for account access. Providers without
// eth_requestAccounts fall back to eth_accounts.
func (s *RPCSession) RequestAccounts(ctx context.Context) ([]common.Address, error) {
	var accounts []common.Address
	err := s.rpc.Call(ctx, &accounts, "eth_requestAccounts")

	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) && rpcErr.ErrorCode() == methodNotFound {
		logger.Debug("eth_requestAccounts unsupported, falling back to eth_accounts")
		err = s.rpc.Call(ctx, &accounts, "eth_accounts")
	}
	if err != nil {
		return nil, fmt.Errorf("request accounts: %w", err)
	}

	return accounts, nil
}

func (s *RPCSession) ChainID(ctx context.Context) (*big.Int, error) {
	var id hexutil.Big
	if err := s.rpc.Call(ctx, &id, "eth_chainId"); err != nil {
		return nil, fmt.Errorf("chain id: %w", err)
	}
	return id.ToInt(), nil
}

// SendTransaction hands the request to the provider for signing and broadcast
func (s *RPCSession) SendTransaction(ctx context.Context, req models.TransactionRequest) (common.Hash, error) {
	to := req.To
	args := sendTxArgs{
		From: req.From,
		To:   &to,
		Data: req.Data,
	}
	if req.Gas > 0 {
		gas := hexutil.Uint64(req.Gas)
		args.Gas = &gas
	}
	if req.HasValue() {
		args.Value = (*hexutil.Big)(req.Value)
	}
	if req.Network.ID != nil {
		args.ChainID = (*hexutil.Big)(req.Network.ID)
	}

	var hash common.Hash
	if err := s.rpc.Call(ctx, &hash, "eth_sendTransaction", args); err != nil {
		return common.Hash{}, fmt.Errorf("send transaction: %w", err)
	}
	return hash, nil
}
