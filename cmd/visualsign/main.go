// Package main is the visualsign CLI. Configuration is read from the file named by
// VISUALSIGN_CONFIG (default visualsign.yml) with VISUALSIGN_* environment overrides.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/smartcontractkit/visualsign-go/parser"
	"github.com/smartcontractkit/visualsign-go/pkg/commands"
	"github.com/smartcontractkit/visualsign-go/pkg/commands/parse"
	"github.com/smartcontractkit/visualsign-go/pkg/config"
	"github.com/smartcontractkit/visualsign-go/pkg/logger"
	"github.com/smartcontractkit/visualsign-go/registry"
)

const defaultConfigPath = "visualsign.yml"

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	path := os.Getenv("VISUALSIGN_CONFIG")
	if path == "" {
		path = defaultConfigPath
	}
	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	lggr, err := cfg.Logger()
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = lggr.Sync() }()

	root := newRootCmd(lggr, cfg)
	root.SetArgs(args)

	return root.Execute()
}

func newRootCmd(lggr logger.Logger, cfg *config.Config) *cobra.Command {
	root := &cobra.Command{
		Use:           "visualsign",
		Short:         "Human readable previews of unsigned transactions",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmds := commands.New(lggr)
	root.AddCommand(
		cmds.Parse(commands.ParseConfig{ParserFactory: parserFactory(cfg)}),
		cmds.Registry(),
	)

	return root
}

// parserFactory builds a parser from the configured decoders, token registry and ABI signer.
func parserFactory(cfg *config.Config) parse.ParserFactoryFunc {
	return func(lggr logger.Logger) (parse.Parser, error) {
		decoders, err := parser.NewDecoders(lggr, parser.DecoderOptions{
			MaxCallDepth:      cfg.MaxCallDepth,
			SolanaGenesisHash: cfg.Networks.SolanaGenesisHash,
			SuiNetwork:        cfg.Networks.Sui,
			TronNetwork:       cfg.Networks.Tron,
			BitcoinNetwork:    cfg.Networks.Bitcoin,
		})
		if err != nil {
			return nil, err
		}
		reg, err := cfg.BuildRegistry()
		if err != nil {
			return nil, err
		}

		opts := []parser.Option{
			parser.WithDecoders(decoders),
			parser.WithRegistry(registry.NewHolder(reg)),
		}
		if cfg.ABISigner != "" {
			opts = append(opts, parser.WithABISigner(cfg.ABISigner))
		}

		return parser.New(lggr, opts...)
	}
}
