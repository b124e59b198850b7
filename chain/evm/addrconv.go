package evm

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// ParseAddress parses a hex address.
func ParseAddress(address string) (common.Address, error) {
	if !common.IsHexAddress(address) {
		return common.Address{}, fmt.Errorf("invalid EVM address format: %s", address)
	}

	return common.HexToAddress(address), nil
}

// keyAddress is the lowercase form used in dispatch keys.
func keyAddress(addr common.Address) string {
	return strings.ToLower(addr.Hex())
}
