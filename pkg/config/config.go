// Package config loads the visualsign runtime configuration from a YAML file with
// environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/smartcontractkit/visualsign-go/pkg/logger"
	"github.com/smartcontractkit/visualsign-go/registry"
)

// NetworksConfig selects the network a decoder displays when the transaction itself does not
// carry one.
type NetworksConfig struct {
	SolanaGenesisHash string `mapstructure:"solana_genesis_hash" yaml:"solana_genesis_hash" validate:"omitempty,alphanum"`
	Sui               string `mapstructure:"sui" yaml:"sui"`
	Tron              string `mapstructure:"tron" yaml:"tron"`
	Bitcoin           string `mapstructure:"bitcoin" yaml:"bitcoin" validate:"omitempty,oneof=mainnet testnet3 regtest signet"`
}

// MetadataBlobConfig is a protobuf ChainMetadata file and its expected SHA-256 hash.
type MetadataBlobConfig struct {
	Path string `mapstructure:"path" yaml:"path" validate:"required"`
	Hash string `mapstructure:"hash" yaml:"hash" validate:"required,hexadecimal"`
}

// RegistryConfig lists the sources of the shared token registry.
type RegistryConfig struct {
	TokensFile    string               `mapstructure:"tokens_file" yaml:"tokens_file"`
	MetadataBlobs []MetadataBlobConfig `mapstructure:"metadata_blobs" yaml:"metadata_blobs" validate:"dive"`
}

// Config wraps the entire configuration of visualsign.
type Config struct {
	LogLevel     string         `mapstructure:"log_level" yaml:"log_level" validate:"omitempty,oneof=debug info warn error"`
	MaxCallDepth int            `mapstructure:"max_call_depth" yaml:"max_call_depth" validate:"gte=0,lte=32"`
	ABISigner    string         `mapstructure:"abi_signer" yaml:"abi_signer" validate:"omitempty,eth_addr"`
	Networks     NetworksConfig `mapstructure:"networks" yaml:"networks"`
	Registry     RegistryConfig `mapstructure:"registry" yaml:"registry"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the loaded values.
func (c *Config) Validate() error {
	return validate.Struct(c)
}

// Load loads the config from the file path, falling back to env vars if the file does not exist.
// If the file exists, any env vars that are set will override the values loaded from the file.
func Load(filePath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(filePath)

	if err := bindEnvs(v); err != nil {
		return nil, err
	}

	if _, err := os.Stat(filePath); !errors.Is(err, fs.ErrNotExist) {
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// envBindings maps config keys to the environment variables that can provide them.
var envBindings = map[string][]string{
	"log_level":                    {"VISUALSIGN_LOG_LEVEL"},
	"max_call_depth":               {"VISUALSIGN_MAX_CALL_DEPTH"},
	"abi_signer":                   {"VISUALSIGN_ABI_SIGNER"},
	"networks.solana_genesis_hash": {"VISUALSIGN_NETWORKS_SOLANA_GENESIS_HASH"},
	"networks.sui":                 {"VISUALSIGN_NETWORKS_SUI"},
	"networks.tron":                {"VISUALSIGN_NETWORKS_TRON"},
	"networks.bitcoin":             {"VISUALSIGN_NETWORKS_BITCOIN"},
	"registry.tokens_file":         {"VISUALSIGN_REGISTRY_TOKENS_FILE"},
}

func bindEnvs(v *viper.Viper) error {
	for key, envs := range envBindings {
		inputs := slices.Insert(slices.Clone(envs), 0, key)

		if err := v.BindEnv(inputs...); err != nil {
			return err
		}
	}

	return nil
}

// Logger builds a production logger at the configured level.
func (c *Config) Logger() (logger.Logger, error) {
	if c.LogLevel == "" {
		return logger.New()
	}
	lvl, err := logger.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, err
	}
	lc := logger.Config{Level: lvl}

	return lc.New()
}

// BuildRegistry loads the token list file and every metadata blob into a new frozen registry.
// Blobs whose hash does not match fail the whole load.
func (c *Config) BuildRegistry() (*registry.Registry, error) {
	r := registry.New()
	if c.Registry.TokensFile != "" {
		if err := r.LoadTokenListFile(c.Registry.TokensFile); err != nil {
			return nil, err
		}
	}
	for _, b := range c.Registry.MetadataBlobs {
		blob, err := os.ReadFile(b.Path)
		if err != nil {
			return nil, fmt.Errorf("read metadata blob: %w", err)
		}
		if err := r.LoadMetadataBlob(blob, b.Hash); err != nil {
			return nil, fmt.Errorf("metadata blob %s: %w", b.Path, err)
		}
	}

	return r.Freeze(), nil
}
