package models

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// TransactionRequest is a simulated contract call that is ready to be signed and sent
type TransactionRequest struct {
	From    common.Address
	To      common.Address
	Method  string
	Data    []byte
	Value   *big.Int
	Gas     uint64
	Network Network
}

// HasValue reports whether native currency is attached to the call
func (r TransactionRequest) HasValue() bool {
	return r.Value != nil && r.Value.Sign() > 0
}
