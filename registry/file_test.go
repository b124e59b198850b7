package registry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tokenListYAML = `tokens:
  - chain_id: "1"
    symbol: USDC
    name: USD Coin
    standard: ERC20
    contract_address: "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"
    decimals: 6
contracts:
  - chain_id: "1"
    type: UniversalRouter
    addresses: ["0x66a9893cc07d91d95644aedd05d03f95e1dba8af"]
`

func TestRegistry_LoadTokenList(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		give    string
		wantLen int
		wantErr string
	}{
		{name: "tokens and contracts", give: tokenListYAML, wantLen: 1},
		{name: "empty document", give: "", wantLen: 0},
		{
			name:    "unknown field",
			give:    "tokens:\n  - chain_id: \"1\"\n    symbol: X\n    colour: red\n",
			wantErr: "decode token list",
		},
		{
			name:    "invalid token",
			give:    "tokens:\n  - chain_id: \"1\"\n    symbol: X\n    standard: ERC20\n",
			wantErr: "token 0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := New()
			err := r.LoadTokenList(strings.NewReader(tt.give))
			if tt.wantErr != "" {
				require.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantLen, r.Len())
		})
	}
}

func TestRegistry_LoadTokenListFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "tokens.yml")
	require.NoError(t, os.WriteFile(path, []byte(tokenListYAML), 0o600))

	r := New()
	require.NoError(t, r.LoadTokenListFile(path))

	md, ok := r.Lookup("1", "0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48")
	require.True(t, ok)
	assert.Equal(t, "USDC", md.Symbol)

	typ, ok := r.ContractType("1", "0x66A9893cC07D91D95644AEDD05D03f95e1dBA8Af")
	require.True(t, ok)
	assert.Equal(t, "UniversalRouter", typ)

	err := New().LoadTokenListFile(filepath.Join(t.TempDir(), "missing.yml"))
	require.ErrorContains(t, err, "open token list")
}
