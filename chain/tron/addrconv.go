package tron

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/fbsobreira/gotron-sdk/pkg/address"
)

const (
	// AddressLength is the length of a Tron address: the 0x41 prefix and 20 bytes.
	AddressLength = 21

	addressPrefix = 0x41
)

// EncodeAddress returns the base58check form of a 21 byte address as carried in contracts.
func EncodeAddress(b []byte) (string, error) {
	if len(b) != AddressLength || b[0] != addressPrefix {
		return "", fmt.Errorf("invalid Tron address bytes %x", b)
	}

	return address.Address(b).String(), nil
}

// FromEVMAddress returns the Tron address of an ABI encoded address argument.
func FromEVMAddress(a common.Address) string {
	return address.Address(append([]byte{addressPrefix}, a.Bytes()...)).String()
}
