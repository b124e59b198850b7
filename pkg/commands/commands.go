// Package commands provides the CLI command packages of visualsign.
//
// There are two ways to use commands from this package:
//
// 1. Via the Commands factory (recommended for most use cases):
//
//	cmds := commands.New(lggr)
//	rootCmd.AddCommand(
//	    cmds.Parse(commands.ParseConfig{ParserFactory: newParser}),
//	    cmds.Registry(),
//	)
//
// 2. Via direct package imports (for advanced DI/testing):
//
//	import "github.com/smartcontractkit/visualsign-go/pkg/commands/parse"
//
//	rootCmd.AddCommand(parse.NewCommand(parse.Config{
//	    Logger: lggr,
//	    Deps:   parse.Deps{...}, // inject fakes for testing
//	}))
package commands

import (
	"github.com/spf13/cobra"

	"github.com/smartcontractkit/visualsign-go/pkg/commands/parse"
	"github.com/smartcontractkit/visualsign-go/pkg/commands/registry"
	"github.com/smartcontractkit/visualsign-go/pkg/logger"
)

// Commands provides a factory for creating CLI commands with shared configuration.
// This allows setting the logger once and reusing it across all commands.
type Commands struct {
	lggr logger.Logger
}

// New creates a new Commands factory with the given logger.
// The logger will be shared across all commands created by this factory.
func New(lggr logger.Logger) *Commands {
	return &Commands{lggr: lggr}
}

// ParseConfig holds configuration for the parse command.
type ParseConfig struct {
	// ParserFactory builds the parser. Nil selects the built-in decoders with an empty
	// registry.
	ParserFactory parse.ParserFactoryFunc
}

// Parse creates the parse command.
func (c *Commands) Parse(cfg ParseConfig) *cobra.Command {
	return parse.NewCommand(parse.Config{
		Logger: c.lggr,
		Deps:   parse.Deps{ParserFactory: cfg.ParserFactory},
	})
}

// Registry creates the registry command group for token metadata blobs.
func (c *Commands) Registry() *cobra.Command {
	return registry.NewCommand(registry.Config{})
}
