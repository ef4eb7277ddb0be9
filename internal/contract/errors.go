package contract

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
)

type Stage string

const (
	StageSimulate Stage = "simulate"
	StageEstimate Stage = "estimate"
	StageSubmit   Stage = "submit"
)

// TransactionError is returned when a write call fails anywhere between simulation and
// broadcast. Reason carries the decoded revert, if there was one.
type TransactionError struct {
	Method string
	Stage  Stage
	Reason string
	Err    error
}

func (e *TransactionError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s %s failed (%s): %v", e.Method, e.Stage, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s %s failed: %v", e.Method, e.Stage, e.Err)
}

func (e *TransactionError) Unwrap() error {
	return e.Err
}

// QueryError is returned when a read-only query fails
type QueryError struct {
	Query string
	Err   error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("%s query failed: %v", e.Query, e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// revertReason decodes Error(string) reverts and custom errors declared in the ABI
func revertReason(parsed abi.ABI, err error) string {
	var dataErr rpc.DataError
	if !errors.As(err, &dataErr) {
		return ""
	}

	hexData, ok := dataErr.ErrorData().(string)
	if !ok {
		return ""
	}
	data, decodeErr := hexutil.Decode(hexData)
	if decodeErr != nil {
		return ""
	}

	if reason, unpackErr := abi.UnpackRevert(data); unpackErr == nil {
		return reason
	}

	if len(data) >= 4 {
		for name, customErr := range parsed.Errors {
			if bytes.Equal(customErr.ID[:4], data[:4]) {
				return name
			}
		}
	}
	return ""
}
