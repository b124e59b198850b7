package sui

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/block-vision/sui-go-sdk/models"
)

// AddressLength is the byte length of Sui addresses and object ids.
const AddressLength = 32

// NormalizeAddress returns the long form of a possibly shortened address, e.g. "0x2"
// becomes "0x0000...0002".
func NormalizeAddress(address string) (models.SuiAddress, error) {
	s := strings.ToLower(strings.TrimPrefix(address, "0x"))
	if s == "" || len(s) > 2*AddressLength {
		return "", fmt.Errorf("invalid Sui address %q", address)
	}
	s = strings.Repeat("0", 2*AddressLength-len(s)) + s
	if _, err := hex.DecodeString(s); err != nil {
		return "", fmt.Errorf("invalid Sui address %q: %w", address, err)
	}

	return models.SuiAddress("0x" + s), nil
}

// ShortAddress strips the leading zeros of an address, e.g. "0x2" for the framework
// package. Move call keys use this form.
func ShortAddress(address models.SuiAddress) string {
	s := strings.TrimLeft(strings.TrimPrefix(string(address), "0x"), "0")
	if s == "" {
		s = "0"
	}

	return "0x" + s
}

// truncateAddress shortens an address for titles, e.g. "0xd6e9...cac2".
func truncateAddress(address models.SuiAddress) string {
	s := string(address)
	if len(s) <= 10 {
		return s
	}

	return s[:6] + "..." + s[len(s)-4:]
}
