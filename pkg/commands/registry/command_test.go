package registry

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vsregistry "github.com/smartcontractkit/visualsign-go/registry"
)

func testBlob() []byte {
	return vsregistry.EncodeChainMetadata(vsregistry.ChainMetadata{
		NetworkID: "ETHEREUM_MAINNET",
		Assets: map[string]vsregistry.TokenMetadata{
			"WETH": {
				Symbol: "WETH", Standard: vsregistry.StandardERC20,
				ContractAddress: "0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2", Decimals: 18,
			},
			"USDC": {
				Symbol: "USDC", Standard: vsregistry.StandardERC20,
				ContractAddress: "0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48", Decimals: 6,
			},
		},
	})
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	blob := testBlob()
	cmd := NewCommand(Config{Deps: Deps{ReadFile: func(path string) ([]byte, error) {
		if path != "eth.pb" {
			return nil, os.ErrNotExist
		}

		return blob, nil
	}}})
	out := new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs(args)

	err := cmd.Execute()

	return out.String(), err
}

func TestNewCommand_Structure(t *testing.T) {
	t.Parallel()

	cmd := NewCommand(Config{})

	assert.Equal(t, "registry", cmd.Use)
	subs := cmd.Commands()
	require.Len(t, subs, 2)
	assert.Equal(t, "hash <file>", subs[0].Use)
	assert.Equal(t, "inspect <file>", subs[1].Use)
	assert.NotNil(t, subs[1].Flags().Lookup("hash"))
}

func TestHash(t *testing.T) {
	t.Parallel()

	out, err := execute(t, "hash", "eth.pb")
	require.NoError(t, err)
	assert.Equal(t, vsregistry.ComputeMetadataHash(testBlob())+"\n", out)

	_, err = execute(t, "hash", "missing.pb")
	require.ErrorIs(t, err, os.ErrNotExist)

	_, err = execute(t, "hash")
	require.ErrorContains(t, err, "accepts 1 arg(s)")
}

func TestInspect(t *testing.T) {
	t.Parallel()

	hash := vsregistry.ComputeMetadataHash(testBlob())

	tests := []struct {
		name    string
		give    []string
		wantErr error
	}{
		{name: "without hash", give: []string{"inspect", "eth.pb"}},
		{name: "matching hash", give: []string{"inspect", "eth.pb", "--hash", "0x" + hash}},
		{
			name:    "tampered hash",
			give:    []string{"inspect", "eth.pb", "--hash", vsregistry.ComputeMetadataHash(nil)},
			wantErr: vsregistry.ErrIntegrityHash,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			out, err := execute(t, tt.give...)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Contains(t, out, "network_id: ETHEREUM_MAINNET\n")
			assert.Contains(t, out, "hash: "+hash+"\n")
			assert.Less(t, bytes.Index([]byte(out), []byte("key: USDC")), bytes.Index([]byte(out), []byte("key: WETH")))
			assert.Contains(t, out, "decimals: 18")
		})
	}
}
