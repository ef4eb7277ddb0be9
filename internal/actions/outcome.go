package actions

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

type Action string

const (
	ActionConnect  Action = "connect"
	ActionFund     Action = "fund"
	ActionBalance  Action = "balance"
	ActionWithdraw Action = "withdraw"
)

// State is a step of the shared handler flow
type State string

const (
	StateIdle                    State = "idle"
	StateAwaitingProviderCheck   State = "awaiting-provider-check"
	StateAwaitingWalletResponse  State = "awaiting-wallet-response"
	StateAwaitingChainResolution State = "awaiting-chain-resolution"
	StateAwaitingGateway         State = "awaiting-gateway-response"
)

// Kind classifies failures reported to the user
type Kind int

const (
	KindNone Kind = iota
	KindProviderUnavailable
	KindActionFailed
)

func (k Kind) String() string {
	switch k {
	case KindProviderUnavailable:
		return "provider-unavailable"
	case KindActionFailed:
		return "action-failed"
	default:
		return "none"
	}
}

// Error is the only error type that leaves a handler
type Error struct {
	Kind   Kind
	Action Action
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Action, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Outcome is what a handler reports back to the UI. The UI applies it; handlers never touch
// UI state themselves.
type Outcome struct {
	Action  Action
	Text    string
	Success bool
	Err     error

	Account common.Address
	TxHash  common.Hash
	Amount  string
	Wei     *big.Int
	Balance string
}

// Kind returns the failure kind, KindNone on success
func (o Outcome) Kind() Kind {
	var actionErr *Error
	if errors.As(o.Err, &actionErr) {
		return actionErr.Kind
	}
	if o.Err != nil {
		return KindActionFailed
	}
	return KindNone
}

// PromptInstall reports whether the connect control should turn into an install prompt.
// The balance query reports a missing provider without touching the control.
func (o Outcome) PromptInstall() bool {
	return o.Kind() == KindProviderUnavailable && o.Action != ActionBalance
}

// Donated reports whether this outcome should bump the donation counters
func (o Outcome) Donated() bool {
	return o.Success && o.Action == ActionFund && o.Wei != nil
}
