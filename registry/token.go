package registry

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidMetadata is returned when token metadata fails validation.
var ErrInvalidMetadata = errors.New("invalid token metadata")

// Standard is the token standard a contract implements.
type Standard string

const (
	StandardUnspecified Standard = ""
	StandardERC20       Standard = "ERC20"
	StandardERC721      Standard = "ERC721"
	StandardERC1155     Standard = "ERC1155"
	StandardNative      Standard = "NATIVE"
	StandardSPL         Standard = "SPL"
	StandardSuiCoin     Standard = "SUI_COIN"
	StandardTRC20       Standard = "TRC20"
	StandardAptosCoin   Standard = "APTOS_COIN"
)

// standardNumbers is the protobuf enum numbering used by metadata blobs.
var standardNumbers = []Standard{
	StandardUnspecified,
	StandardERC20,
	StandardERC721,
	StandardERC1155,
	StandardNative,
	StandardSPL,
	StandardSuiCoin,
	StandardTRC20,
	StandardAptosCoin,
}

func standardFromNumber(n uint64) (Standard, error) {
	if n >= uint64(len(standardNumbers)) {
		return StandardUnspecified, fmt.Errorf("%w: unknown token standard %d", ErrInvalidMetadata, n)
	}

	return standardNumbers[n], nil
}

func (s Standard) number() uint64 {
	for i, std := range standardNumbers {
		if std == s {
			return uint64(i)
		}
	}

	return 0
}

// TokenMetadata is the canonical description of a token contract.
type TokenMetadata struct {
	Symbol          string   `yaml:"symbol" validate:"required,printascii,max=32"`
	Name            string   `yaml:"name" validate:"omitempty,printascii"`
	Standard        Standard `yaml:"standard" validate:"required,oneof=ERC20 ERC721 ERC1155 NATIVE SPL SUI_COIN TRC20 APTOS_COIN"`
	ContractAddress string   `yaml:"contract_address" validate:"required"`
	Decimals        uint8    `yaml:"decimals" validate:"lte=77"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the metadata for required fields and displayable values.
func (m TokenMetadata) Validate() error {
	if err := validate.Struct(m); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidMetadata, m.ContractAddress, err)
	}

	return nil
}
