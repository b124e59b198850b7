package aptos

import (
	"fmt"

	aptoslib "github.com/aptos-labs/aptos-go-sdk"
)

// ParseAddress parses a short or long hex address, with or without 0x prefix.
func ParseAddress(address string) (aptoslib.AccountAddress, error) {
	var addr aptoslib.AccountAddress
	if err := addr.ParseStringRelaxed(address); err != nil {
		return aptoslib.AccountAddress{}, fmt.Errorf("invalid Aptos address format: %s, error: %w", address, err)
	}

	return addr, nil
}

// ModuleName renders a module id as "0x1::coin". Special addresses use the short form.
func ModuleName(m aptoslib.ModuleId) string {
	return m.Address.String() + "::" + m.Name
}
