package parser

import (
	"fmt"
	"strings"

	chain_selectors "github.com/smartcontractkit/chain-selectors"

	"github.com/smartcontractkit/visualsign-go/chain"
)

// Chain is the chain a ParseRequest payload belongs to.
type Chain int32

const (
	ChainUnspecified Chain = iota
	ChainEthereum
	ChainSolana
	ChainSui
	ChainBitcoin
	ChainTron
	ChainAptos
)

var chainNames = map[Chain]string{
	ChainUnspecified: "unspecified",
	ChainEthereum:    "ethereum",
	ChainSolana:      "solana",
	ChainSui:         "sui",
	ChainBitcoin:     "bitcoin",
	ChainTron:        "tron",
	ChainAptos:       "aptos",
}

var chainFamilies = map[Chain]string{
	ChainEthereum: chain_selectors.FamilyEVM,
	ChainSolana:   chain_selectors.FamilySolana,
	ChainSui:      chain_selectors.FamilySui,
	ChainBitcoin:  chain.FamilyBitcoin,
	ChainTron:     chain_selectors.FamilyTron,
	ChainAptos:    chain_selectors.FamilyAptos,
}

// detectOrder is the order chains are tried for a payload without a chain. Strictly
// framed encodings go first; protobuf accepts almost any input and goes last.
var detectOrder = []Chain{ChainEthereum, ChainBitcoin, ChainSui, ChainAptos, ChainSolana, ChainTron}

// Chains returns every supported chain in enum order.
func Chains() []Chain {
	return []Chain{ChainEthereum, ChainSolana, ChainSui, ChainBitcoin, ChainTron, ChainAptos}
}

// ParseChain parses a chain name case-insensitively. The "CHAIN_" prefix of the wire enum
// names is accepted, so "CHAIN_ETHEREUM", "Ethereum" and "ethereum" are equivalent.
// "unspecified" and "auto" select ChainUnspecified, which Parse detects from the payload.
func ParseChain(s string) (Chain, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	name = strings.TrimPrefix(name, "chain_")
	if name == "auto" {
		return ChainUnspecified, nil
	}
	for c, n := range chainNames {
		if n == name {
			return c, nil
		}
	}

	return ChainUnspecified, fmt.Errorf("%w: %q", ErrUnsupportedChain, s)
}

func (c Chain) String() string {
	if n, ok := chainNames[c]; ok {
		return n
	}

	return fmt.Sprintf("Chain(%d)", int32(c))
}

// Family returns the chain-selectors family of the decoder handling c.
func (c Chain) Family() (string, bool) {
	f, ok := chainFamilies[c]

	return f, ok
}

// MarshalText implements encoding.TextMarshaler.
func (c Chain) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Chain) UnmarshalText(b []byte) error {
	parsed, err := ParseChain(string(b))
	if err != nil {
		return err
	}
	*c = parsed

	return nil
}

// Set implements pflag.Value.
func (c *Chain) Set(s string) error { return c.UnmarshalText([]byte(s)) }

// Type implements pflag.Value.
func (c *Chain) Type() string { return "chain" }
