package actions

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/kelsos/fundme/internal/chain"
	"github.com/kelsos/fundme/internal/contract"
	"github.com/kelsos/fundme/internal/logger"
	"github.com/kelsos/fundme/internal/models"
	"github.com/kelsos/fundme/internal/units"
	"github.com/kelsos/fundme/internal/wallet"
)

type Provider interface {
	Detect(ctx context.Context) (*wallet.Connection, error)
}

type Resolver interface {
	Resolve(ctx context.Context, source chain.IDSource) (models.Network, error)
}

type Gateway interface {
	SimulateAndSubmit(ctx context.Context, b contract.Backend, s contract.Signer, method string, from common.Address, network models.Network, value *big.Int) (common.Hash, error)
	ReadBalance(ctx context.Context, b contract.Backend) (string, error)
}

// Observer is told about every state transition of a running handler
type Observer func(action Action, state State)

type Option func(*Handlers)

func WithObserver(observer Observer) Option {
	return func(h *Handlers) {
		h.observe = observer
	}
}

func WithCurrencySymbol(symbol string) Option {
	return func(h *Handlers) {
		h.symbol = symbol
	}
}

// Handlers orchestrates the wallet, chain resolver and gateway for each user action.
// Handlers are safe to run concurrently; nothing prevents two overlapping funds.
type Handlers struct {
	provider Provider
	resolver Resolver
	gateway  Gateway
	symbol   string
	observe  Observer
}

func New(provider Provider, resolver Resolver, gateway Gateway, opts ...Option) *Handlers {
	h := &Handlers{
		provider: provider,
		resolver: resolver,
		gateway:  gateway,
		symbol:   "ETH",
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handlers) transition(action Action, state State) {
	logger.Debug("%s: %s", action, state)
	if h.observe != nil {
		h.observe(action, state)
	}
}

func (h *Handlers) fail(action Action, kind Kind, text string, err error) Outcome {
	h.transition(action, StateIdle)
	logger.Error("%s error: %v", action, err)
	return Outcome{
		Action: action,
		Text:   text,
		Err:    &Error{Kind: kind, Action: action, Err: err},
	}
}

func (h *Handlers) detect(ctx context.Context, action Action, failText string) (*wallet.Connection, *Outcome) {
	h.transition(action, StateAwaitingProviderCheck)

	conn, err := h.provider.Detect(ctx)
	if errors.Is(err, wallet.ErrProviderUnavailable) {
		outcome := h.fail(action, KindProviderUnavailable, msgProviderMissing, err)
		return nil, &outcome
	}
	if err != nil {
		outcome := h.fail(action, KindActionFailed, failText, err)
		return nil, &outcome
	}
	return conn, nil
}

// Connect requests account access from the provider
func (h *Handlers) Connect(ctx context.Context) Outcome {
	conn, failed := h.detect(ctx, ActionConnect, msgConnectFailed)
	if failed != nil {
		return *failed
	}

	h.transition(ActionConnect, StateAwaitingWalletResponse)
	account, err := wallet.PrimaryAccount(ctx, conn.Session)
	if err != nil {
		return h.fail(ActionConnect, KindActionFailed, msgConnectFailed, err)
	}

	h.transition(ActionConnect, StateIdle)
	logger.Info("Connected account %s", account.Hex())
	return Outcome{
		Action:  ActionConnect,
		Text:    msgConnected,
		Success: true,
		Account: account,
	}
}

// ValidateAmount checks a fund amount and converts it to wei
func ValidateAmount(input string) (*big.Int, error) {
	return units.ParsePositive(input, units.EtherDecimals)
}

// Fund validates the amount, then simulates and submits a payable fund call
func (h *Handlers) Fund(ctx context.Context, input string) Outcome {
	amount := strings.TrimSpace(input)

	wei, err := ValidateAmount(amount)
	if err != nil {
		logger.Warn("Rejected fund amount %q: %v", input, err)
		return Outcome{
			Action: ActionFund,
			Text:   fmt.Sprintf(msgInvalidAmount, h.symbol),
			Err:    &Error{Kind: KindActionFailed, Action: ActionFund, Err: err},
		}
	}

	logger.Info("Funding with %s wei...", wei)

	hash, account, failed := h.submit(ctx, ActionFund, contract.MethodFund, wei, msgFundFailed)
	if failed != nil {
		return *failed
	}

	return Outcome{
		Action:  ActionFund,
		Text:    fmt.Sprintf(msgFunded, amount, h.symbol),
		Success: true,
		Account: account,
		TxHash:  hash,
		Amount:  amount,
		Wei:     wei,
	}
}

// Withdraw simulates and submits the owner-only withdraw call
func (h *Handlers) Withdraw(ctx context.Context) Outcome {
	logger.Info("Withdrawing funds...")

	hash, account, failed := h.submit(ctx, ActionWithdraw, contract.MethodWithdraw, nil, msgWithdrawFailed)
	if failed != nil {
		return *failed
	}

	return Outcome{
		Action:  ActionWithdraw,
		Text:    msgWithdrawn,
		Success: true,
		Account: account,
		TxHash:  hash,
	}
}

// GetBalance reads the contract balance. It never asks for accounts or signatures.
func (h *Handlers) GetBalance(ctx context.Context) Outcome {
	conn, failed := h.detect(ctx, ActionBalance, msgBalanceFailed)
	if failed != nil {
		return *failed
	}

	h.transition(ActionBalance, StateAwaitingGateway)
	balance, err := h.gateway.ReadBalance(ctx, conn.Reader)
	if err != nil {
		return h.fail(ActionBalance, KindActionFailed, msgBalanceFailed, err)
	}

	h.transition(ActionBalance, StateIdle)
	logger.Info("Contract balance: %s %s", balance, h.symbol)
	return Outcome{
		Action:  ActionBalance,
		Text:    fmt.Sprintf(msgBalance, balance, h.symbol),
		Success: true,
		Balance: balance,
	}
}

// submit runs the shared write flow; a non-nil outcome means it stopped early
func (h *Handlers) submit(ctx context.Context, action Action, method string, value *big.Int, failText string) (common.Hash, common.Address, *Outcome) {
	conn, failed := h.detect(ctx, action, failText)
	if failed != nil {
		return common.Hash{}, common.Address{}, failed
	}

	abort := func(err error) (common.Hash, common.Address, *Outcome) {
		outcome := h.fail(action, KindActionFailed, failText, err)
		return common.Hash{}, common.Address{}, &outcome
	}

	h.transition(action, StateAwaitingWalletResponse)
	account, err := wallet.PrimaryAccount(ctx, conn.Session)
	if err != nil {
		return abort(err)
	}

	h.transition(action, StateAwaitingChainResolution)
	network, err := h.resolver.Resolve(ctx, conn.Session)
	if err != nil {
		return abort(err)
	}
	logger.Debug("Chain %s resolved to %s via %s", network.ID, network.Name, network.DefaultRPC())

	h.transition(action, StateAwaitingGateway)
	hash, err := h.gateway.SimulateAndSubmit(ctx, conn.Reader, conn.Session, method, account, network, value)
	if err != nil {
		return abort(err)
	}

	h.transition(action, StateIdle)
	logger.Info("%s transaction hash: %s", action, hash.Hex())
	return hash, account, nil
}
