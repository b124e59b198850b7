package registry

import (
	"fmt"
	"strings"
)

// TokenKey identifies a token or contract by chain and address.
type TokenKey interface {
	fmt.Stringer

	// ChainID returns the chain identifier, e.g. "1" for Ethereum mainnet or "solana".
	ChainID() string

	// Address returns the normalized contract address.
	Address() string

	// Equals returns true if both keys identify the same chain and address.
	Equals(other TokenKey) bool
}

var _ TokenKey = tokenKey{}

type tokenKey struct {
	chainID string
	address string
}

func (k tokenKey) ChainID() string { return k.chainID }

func (k tokenKey) Address() string { return k.address }

func (k tokenKey) Equals(other TokenKey) bool {
	return k.chainID == other.ChainID() && k.address == other.Address()
}

func (k tokenKey) String() string {
	return k.chainID + ":" + k.address
}

// NewTokenKey creates a TokenKey. Hex addresses (0x prefixed) compare case-insensitively,
// any other encoding (base58, bech32) is kept verbatim.
func NewTokenKey(chainID, address string) TokenKey {
	return newTokenKey(chainID, address)
}

func newTokenKey(chainID, address string) tokenKey {
	return tokenKey{
		chainID: strings.TrimSpace(chainID),
		address: NormalizeAddress(address),
	}
}

// NormalizeAddress lowercases 0x prefixed hex addresses and trims surrounding space.
func NormalizeAddress(address string) string {
	address = strings.TrimSpace(address)
	if strings.HasPrefix(address, "0x") || strings.HasPrefix(address, "0X") {
		return "0x" + strings.ToLower(address[2:])
	}

	return address
}
