// Package registry provides CLI commands for token metadata blobs.
package registry

import (
	"fmt"
	"maps"
	"os"
	"slices"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	vsregistry "github.com/smartcontractkit/visualsign-go/registry"
)

// Deps holds the injectable dependencies for registry commands.
type Deps struct {
	// ReadFile reads a metadata blob.
	// Default: os.ReadFile
	ReadFile func(path string) ([]byte, error)
}

func (d *Deps) applyDefaults() {
	if d.ReadFile == nil {
		d.ReadFile = os.ReadFile
	}
}

// Config holds the configuration for registry commands.
type Config struct {
	Deps Deps
}

func (c *Config) deps() *Deps {
	c.Deps.applyDefaults()

	return &c.Deps
}

// NewCommand creates the registry command group.
func NewCommand(cfg Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "registry",
		Short: "Token metadata commands",
	}

	cmd.AddCommand(newHashCmd(cfg), newInspectCmd(cfg))

	return cmd
}

func newHashCmd(cfg Config) *cobra.Command {
	return &cobra.Command{
		Use:   "hash <file>",
		Short: "Print the SHA-256 integrity hash of a metadata blob",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			blob, err := cfg.deps().ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read metadata blob: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), vsregistry.ComputeMetadataHash(blob))

			return nil
		},
	}
}

// inspectedToken is one asset of an inspected blob.
type inspectedToken struct {
	Key                      string `yaml:"key"`
	vsregistry.TokenMetadata `yaml:",inline"`
}

type inspectedBlob struct {
	NetworkID string           `yaml:"network_id"`
	Hash      string           `yaml:"hash"`
	Assets    []inspectedToken `yaml:"assets"`
}

func newInspectCmd(cfg Config) *cobra.Command {
	var expectedHash string

	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Decode a metadata blob and print its assets",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			blob, err := cfg.deps().ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read metadata blob: %w", err)
			}
			if expectedHash != "" {
				if err := vsregistry.VerifyMetadataHash(blob, expectedHash); err != nil {
					return err
				}
			}
			cm, err := vsregistry.DecodeChainMetadata(blob)
			if err != nil {
				return err
			}

			out := inspectedBlob{NetworkID: cm.NetworkID, Hash: vsregistry.ComputeMetadataHash(blob)}
			for _, k := range slices.Sorted(maps.Keys(cm.Assets)) {
				out.Assets = append(out.Assets, inspectedToken{Key: k, TokenMetadata: cm.Assets[k]})
			}

			b, err := yaml.Marshal(out)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), string(b))

			return nil
		},
	}

	cmd.Flags().StringVar(&expectedHash, "hash", "", "Fail unless the blob matches this SHA-256 hash")

	return cmd
}
