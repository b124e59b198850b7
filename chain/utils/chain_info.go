package utils

import (
	"strings"

	chain_selectors "github.com/smartcontractkit/chain-selectors"
)

// ChainInfo returns the chain-selectors details of chainID in family.
func ChainInfo(family, chainID string) (chain_selectors.ChainDetails, error) {
	return chain_selectors.GetChainDetailsByChainIDAndFamily(chainID, family)
}

// NetworkName returns a display name for chainID, e.g. "Ethereum Mainnet" for ("evm", "1").
// Chains unknown to chain-selectors are shown as fallback.
func NetworkName(family, chainID, fallback string) string {
	info, err := ChainInfo(family, chainID)
	if err != nil || info.ChainName == "" {
		return fallback
	}

	return DisplayName(info.ChainName)
}

// DisplayName turns a chain-selectors name such as "ethereum-mainnet-arbitrum-1" into
// "Ethereum Mainnet Arbitrum 1".
func DisplayName(name string) string {
	words := strings.FieldsFunc(name, func(r rune) bool { return r == '-' || r == '_' })
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}

	return strings.Join(words, " ")
}
