package models

import "math/big"

// NativeCurrency describes the chain's native token
type NativeCurrency struct {
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Decimals int    `json:"decimals"`
}

// Network is the descriptor handed to the contract gateway. It is built for a single
// operation and never stored.
type Network struct {
	ID             *big.Int       `json:"id"`
	Name           string         `json:"name"`
	NativeCurrency NativeCurrency `json:"nativeCurrency"`
	RPCURLs        []string       `json:"rpcUrls"`
}

// DefaultRPC returns the first configured endpoint, or an empty string
func (n Network) DefaultRPC() string {
	if len(n.RPCURLs) == 0 {
		return ""
	}
	return n.RPCURLs[0]
}
