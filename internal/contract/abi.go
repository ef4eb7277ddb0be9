package contract

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

const (
	MethodFund         = "fund"
	MethodWithdraw     = "withdraw"
	MethodOwner        = "getOwner"
	MethodAmountFunded = "getAddressToAmountFunded"
)

//go:embed fundme.abi.json
var fundMeABI []byte

// LoadABI parses the ABI at path, or the bundled one when path is empty
func LoadABI(path string) (abi.ABI, error) {
	raw := fundMeABI
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return abi.ABI{}, fmt.Errorf("read abi %s: %w", path, err)
		}
		raw = data
	}

	parsed, err := abi.JSON(bytes.NewReader(raw))
	if err != nil {
		return abi.ABI{}, fmt.Errorf("parse abi: %w", err)
	}

	for _, required := range []string{MethodFund, MethodWithdraw} {
		if _, ok := parsed.Methods[required]; !ok {
			return abi.ABI{}, fmt.Errorf("abi has no %s method", required)
		}
	}
	return parsed, nil
}
