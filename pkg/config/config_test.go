package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartcontractkit/visualsign-go/registry"
)

var (
	// fileCfg is the config that is loaded from the testdata/config.yml file.
	fileCfg = &Config{
		LogLevel:     "debug",
		MaxCallDepth: 4,
		ABISigner:    "0x8ba1f109551bD432803012645Ac136ddd64DBA72",
		Networks: NetworksConfig{
			SolanaGenesisHash: "EtWTRABZaYq6iMfeYKouRu166VU2xqa1wcaWoxPkrZBG",
			Sui:               "sui-testnet",
			Tron:              "tron-testnet-nile",
			Bitcoin:           "testnet3",
		},
		Registry: RegistryConfig{
			TokensFile: "./testdata/tokens.yml",
		},
	}

	envVars = map[string]string{
		"VISUALSIGN_LOG_LEVEL":                    "warn",
		"VISUALSIGN_MAX_CALL_DEPTH":               "2",
		"VISUALSIGN_ABI_SIGNER":                   "0x0000000000000000000000000000000000000001",
		"VISUALSIGN_NETWORKS_SOLANA_GENESIS_HASH": "4uhcVJyU9pJkvQyS88uRDiswHXSCkY3zQawwpjk2NsNY",
		"VISUALSIGN_NETWORKS_SUI":                 "sui-mainnet",
		"VISUALSIGN_NETWORKS_TRON":                "tron-mainnet",
		"VISUALSIGN_NETWORKS_BITCOIN":             "mainnet",
		"VISUALSIGN_REGISTRY_TOKENS_FILE":         "/etc/visualsign/tokens.yml",
	}

	envCfg = &Config{
		LogLevel:     "warn",
		MaxCallDepth: 2,
		ABISigner:    "0x0000000000000000000000000000000000000001",
		Networks: NetworksConfig{
			SolanaGenesisHash: "4uhcVJyU9pJkvQyS88uRDiswHXSCkY3zQawwpjk2NsNY",
			Sui:               "sui-mainnet",
			Tron:              "tron-mainnet",
			Bitcoin:           "mainnet",
		},
		Registry: RegistryConfig{
			TokensFile: "/etc/visualsign/tokens.yml",
		},
	}
)

func Test_Load(t *testing.T) { //nolint:paralleltest // env vars are process wide
	tests := []struct {
		name       string
		beforeFunc func(t *testing.T)
		givePath   string
		want       *Config
		wantErr    string
	}{
		{
			name:     "load from file",
			givePath: "./testdata/config.yml",
			want:     fileCfg,
		},
		{
			name:     "load from empty file",
			givePath: "./testdata/empty.yml",
			want:     &Config{},
		},
		{
			name: "override with env",
			beforeFunc: func(t *testing.T) {
				t.Helper()

				setupEnvVars(t, envVars)
			},
			givePath: "./testdata/config.yml",
			want:     envCfg,
		},
		{
			name: "fallback to env when file not found",
			beforeFunc: func(t *testing.T) {
				t.Helper()

				setupEnvVars(t, envVars)
			},
			givePath: "./testdata/missing.yml",
			want:     envCfg,
		},
		{
			name: "invalid log level",
			beforeFunc: func(t *testing.T) {
				t.Helper()

				t.Setenv("VISUALSIGN_LOG_LEVEL", "chatty")
			},
			givePath: "./testdata/empty.yml",
			wantErr:  "invalid config",
		},
		{
			name: "invalid bitcoin network",
			beforeFunc: func(t *testing.T) {
				t.Helper()

				t.Setenv("VISUALSIGN_NETWORKS_BITCOIN", "moonnet")
			},
			givePath: "./testdata/empty.yml",
			wantErr:  "Config.Networks.Bitcoin",
		},
		{
			name: "invalid abi signer",
			beforeFunc: func(t *testing.T) {
				t.Helper()

				t.Setenv("VISUALSIGN_ABI_SIGNER", "0x1234")
			},
			givePath: "./testdata/empty.yml",
			wantErr:  "Config.ABISigner",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.beforeFunc != nil {
				tt.beforeFunc(t)
			}

			got, err := Load(tt.givePath)
			if tt.wantErr != "" {
				require.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConfig_Validate_MetadataBlobs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		give    MetadataBlobConfig
		wantErr string
	}{
		{name: "valid", give: MetadataBlobConfig{Path: "a.pb", Hash: "0xab12"}},
		{name: "missing path", give: MetadataBlobConfig{Hash: "ab12"}, wantErr: "Path"},
		{name: "missing hash", give: MetadataBlobConfig{Path: "a.pb"}, wantErr: "Hash"},
		{name: "hash not hex", give: MetadataBlobConfig{Path: "a.pb", Hash: "zz"}, wantErr: "Hash"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := &Config{Registry: RegistryConfig{MetadataBlobs: []MetadataBlobConfig{tt.give}}}
			err := cfg.Validate()
			if tt.wantErr != "" {
				require.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestConfig_BuildRegistry(t *testing.T) {
	t.Parallel()

	blob := registry.EncodeChainMetadata(registry.ChainMetadata{
		NetworkID: "SOLANA_MAINNET",
		Assets: map[string]registry.TokenMetadata{
			"USDC": {
				Symbol:          "USDC",
				Standard:        registry.StandardSPL,
				ContractAddress: "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v",
				Decimals:        6,
			},
		},
	})
	blobPath := filepath.Join(t.TempDir(), "solana.pb")
	require.NoError(t, os.WriteFile(blobPath, blob, 0o600))

	cfg := &Config{Registry: RegistryConfig{
		TokensFile:    "./testdata/tokens.yml",
		MetadataBlobs: []MetadataBlobConfig{{Path: blobPath, Hash: registry.ComputeMetadataHash(blob)}},
	}}

	r, err := cfg.BuildRegistry()
	require.NoError(t, err)
	assert.True(t, r.Frozen())
	assert.Equal(t, 3, r.Len())

	_, ok := r.Lookup(registry.ChainIDSolana, "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v")
	assert.True(t, ok)

	cfg.Registry.MetadataBlobs[0].Hash = registry.ComputeMetadataHash([]byte("other"))
	_, err = cfg.BuildRegistry()
	require.ErrorIs(t, err, registry.ErrIntegrityHash)

	cfg.Registry.MetadataBlobs[0].Path = filepath.Join(t.TempDir(), "missing.pb")
	_, err = cfg.BuildRegistry()
	require.ErrorContains(t, err, "read metadata blob")
}

func TestConfig_Logger(t *testing.T) {
	t.Parallel()

	lggr, err := (&Config{LogLevel: "warn"}).Logger()
	require.NoError(t, err)
	require.NotNil(t, lggr)

	lggr, err = (&Config{}).Logger()
	require.NoError(t, err)
	require.NotNil(t, lggr)
}

// setupEnvVars sets the environment variables for the test.
func setupEnvVars(t *testing.T, envVars map[string]string) {
	t.Helper()

	for k, v := range envVars {
		t.Setenv(k, v)
	}
}
