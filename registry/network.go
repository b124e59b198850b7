package registry

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrUnknownNetwork is returned for network identifiers without a chain mapping.
var ErrUnknownNetwork = errors.New("unknown network id")

// Chain identifiers of non EVM networks. EVM chains use their decimal chain id.
const (
	ChainIDSolana  = "solana"
	ChainIDSui     = "sui"
	ChainIDTron    = "tron"
	ChainIDAptos   = "aptos"
	ChainIDBitcoin = "bitcoin"
)

var networkChainIDs = map[string]string{
	"ETHEREUM_MAINNET": "1",
	"OPTIMISM_MAINNET": "10",
	"POLYGON_MAINNET":  "137",
	"BASE_MAINNET":     "8453",
	"ARBITRUM_MAINNET": "42161",
	"SOLANA_MAINNET":   ChainIDSolana,
	"SUI_MAINNET":      ChainIDSui,
	"TRON_MAINNET":     ChainIDTron,
	"APTOS_MAINNET":    ChainIDAptos,
	"BITCOIN_MAINNET":  ChainIDBitcoin,
}

// ParseNetworkID maps a wallet network identifier such as "ETHEREUM_MAINNET" to a chain
// id. Bare decimal chain ids are accepted as is.
func ParseNetworkID(networkID string) (string, error) {
	if id, ok := networkChainIDs[networkID]; ok {
		return id, nil
	}
	if n, err := strconv.ParseUint(networkID, 10, 64); err == nil && n > 0 {
		return strconv.FormatUint(n, 10), nil
	}

	return "", fmt.Errorf("%w: %q", ErrUnknownNetwork, networkID)
}
