package contract

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/kelsos/fundme/internal/logger"
	"github.com/kelsos/fundme/internal/models"
	"github.com/kelsos/fundme/internal/units"
)

// Backend is the read side of the provider
type Backend interface {
	CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	EstimateGas(ctx context.Context, call ethereum.CallMsg) (uint64, error)
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
}

// Signer signs and broadcasts a prepared request
type Signer interface {
	SendTransaction(ctx context.Context, req models.TransactionRequest) (common.Hash, error)
}

// Gateway talks to the single deployed contract
type Gateway struct {
	address  common.Address
	abi      abi.ABI
	decimals int
}

type Option func(*Gateway)

// WithDecimals sets the exponent used to format native balances
func WithDecimals(decimals int) Option {
	return func(g *Gateway) {
		g.decimals = decimals
	}
}

func NewGateway(address common.Address, parsed abi.ABI, opts ...Option) *Gateway {
	g := &Gateway{address: address, abi: parsed, decimals: units.EtherDecimals}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Gateway) Address() common.Address {
	return g.address
}

// Simulate dry-runs method against the latest state and returns a request that is ready to
// be signed. State is never modified.
func (g *Gateway) Simulate(ctx context.Context, b Backend, method string, from common.Address, network models.Network, value *big.Int) (models.TransactionRequest, error) {
	m, ok := g.abi.Methods[method]
	if !ok {
		return models.TransactionRequest{}, &TransactionError{Method: method, Stage: StageSimulate, Err: fmt.Errorf("method not in abi")}
	}
	if value != nil && value.Sign() > 0 && !m.IsPayable() {
		return models.TransactionRequest{}, &TransactionError{Method: method, Stage: StageSimulate, Err: fmt.Errorf("method is not payable")}
	}

	data, err := g.abi.Pack(method)
	if err != nil {
		return models.TransactionRequest{}, &TransactionError{Method: method, Stage: StageSimulate, Err: err}
	}

	to := g.address
	msg := ethereum.CallMsg{From: from, To: &to, Value: value, Data: data}

	if _, err := b.CallContract(ctx, msg, nil); err != nil {
		reason := revertReason(g.abi, err)
		logger.Warn("Simulation of %s from %s reverted: %v", method, from.Hex(), err)
		return models.TransactionRequest{}, &TransactionError{Method: method, Stage: StageSimulate, Reason: reason, Err: err}
	}

	gas, err := b.EstimateGas(ctx, msg)
	if err != nil {
		return models.TransactionRequest{}, &TransactionError{Method: method, Stage: StageEstimate, Reason: revertReason(g.abi, err), Err: err}
	}

	return models.TransactionRequest{
		From:    from,
		To:      to,
		Method:  method,
		Data:    data,
		Value:   value,
		Gas:     gas,
		Network: network,
	}, nil
}

// Submit sends a simulated request for signature and broadcast
func (g *Gateway) Submit(ctx context.Context, s Signer, req models.TransactionRequest) (common.Hash, error) {
	hash, err := s.SendTransaction(ctx, req)
	if err != nil {
		return common.Hash{}, &TransactionError{Method: req.Method, Stage: StageSubmit, Err: err}
	}

	logger.Info("Submitted %s transaction %s on chain %s", req.Method, hash.Hex(), req.Network.ID)
	return hash, nil
}

// SimulateAndSubmit simulates method and, only if that succeeds, submits it
func (g *Gateway) SimulateAndSubmit(ctx context.Context, b Backend, s Signer, method string, from common.Address, network models.Network, value *big.Int) (common.Hash, error) {
	req, err := g.Simulate(ctx, b, method, from, network, value)
	if err != nil {
		return common.Hash{}, err
	}
	return g.Submit(ctx, s, req)
}

// BalanceWei returns the contract's native balance in base units
func (g *Gateway) BalanceWei(ctx context.Context, b Backend) (*big.Int, error) {
	balance, err := b.BalanceAt(ctx, g.address, nil)
	if err != nil {
		return nil, &QueryError{Query: "balance", Err: err}
	}
	return balance, nil
}

// ReadBalance returns the contract's native balance as a decimal string
func (g *Gateway) ReadBalance(ctx context.Context, b Backend) (string, error) {
	balance, err := g.BalanceWei(ctx, b)
	if err != nil {
		return "", err
	}
	return units.FormatUnits(balance, g.decimals), nil
}

// ReadOwner returns the address allowed to withdraw
func (g *Gateway) ReadOwner(ctx context.Context, b Backend) (common.Address, error) {
	var owner common.Address
	if err := g.view(ctx, b, &owner, MethodOwner); err != nil {
		return common.Address{}, err
	}
	return owner, nil
}

// AmountFunded returns how much account has funded so far, in base units
func (g *Gateway) AmountFunded(ctx context.Context, b Backend, account common.Address) (*big.Int, error) {
	amount := new(big.Int)
	if err := g.view(ctx, b, &amount, MethodAmountFunded, account); err != nil {
		return nil, err
	}
	return amount, nil
}

func (g *Gateway) view(ctx context.Context, b Backend, out interface{}, method string, args ...interface{}) error {
	if _, ok := g.abi.Methods[method]; !ok {
		return &QueryError{Query: method, Err: fmt.Errorf("method not in abi")}
	}

	data, err := g.abi.Pack(method, args...)
	if err != nil {
		return &QueryError{Query: method, Err: err}
	}

	to := g.address
	result, err := b.CallContract(ctx, ethereum.CallMsg{To: &to, Data: data}, nil)
	if err != nil {
		return &QueryError{Query: method, Err: err}
	}

	if err := g.abi.UnpackIntoInterface(out, method, result); err != nil {
		return &QueryError{Query: method, Err: err}
	}
	return nil
}
