package registry

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// TokenList is the YAML document format of a static token and contract list:
//
//	tokens:
//	  - chain_id: "1"
//	    symbol: USDC
//	    name: USD Coin
//	    standard: ERC20
//	    contract_address: "0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48"
//	    decimals: 6
//	contracts:
//	  - chain_id: "1"
//	    type: UniversalRouter
//	    addresses: ["0x66a9893cc07d91d95644aedd05d03f95e1dba8af"]
type TokenList struct {
	Tokens    []TokenEntry    `yaml:"tokens"`
	Contracts []ContractEntry `yaml:"contracts"`
}

// TokenEntry is a token of a TokenList.
type TokenEntry struct {
	ChainID       string `yaml:"chain_id"`
	TokenMetadata `yaml:",inline"`
}

// ContractEntry is a contract type of a TokenList.
type ContractEntry struct {
	ChainID   string   `yaml:"chain_id"`
	Type      string   `yaml:"type"`
	Addresses []string `yaml:"addresses"`
}

// LoadTokenListFile reads a YAML token list from path into r.
func (r *Registry) LoadTokenListFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open token list: %w", err)
	}
	defer f.Close()

	return r.LoadTokenList(f)
}

// LoadTokenList decodes a YAML token list from rd and registers its entries in order.
func (r *Registry) LoadTokenList(rd io.Reader) error {
	var list TokenList
	dec := yaml.NewDecoder(rd)
	dec.KnownFields(true)
	if err := dec.Decode(&list); err != nil && err != io.EOF {
		return fmt.Errorf("decode token list: %w", err)
	}

	for i, t := range list.Tokens {
		if err := r.RegisterToken(t.ChainID, t.TokenMetadata); err != nil {
			return fmt.Errorf("token %d: %w", i, err)
		}
	}
	for i, c := range list.Contracts {
		if err := r.RegisterContract(c.ChainID, c.Type, c.Addresses...); err != nil {
			return fmt.Errorf("contract %d: %w", i, err)
		}
	}

	return nil
}
