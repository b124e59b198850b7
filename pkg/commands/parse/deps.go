// Package parse provides the CLI command that visualizes one unsigned transaction.
package parse

import (
	"context"
	"os"

	"github.com/smartcontractkit/visualsign-go/parser"
	"github.com/smartcontractkit/visualsign-go/pkg/logger"
)

// Parser is the parse operation the command drives.
type Parser interface {
	Parse(ctx context.Context, req parser.ParseRequest) (parser.ParsedTransaction, error)
}

// ParserFactoryFunc builds the Parser used by one command invocation.
type ParserFactoryFunc func(lggr logger.Logger) (Parser, error)

// FileReaderFunc reads a file referenced by a flag.
type FileReaderFunc func(path string) ([]byte, error)

// defaultParserFactory builds a parser with the built-in decoders and an empty registry.
func defaultParserFactory(lggr logger.Logger) (Parser, error) {
	return parser.New(lggr)
}

// Deps holds the injectable dependencies for the parse command.
// All fields are optional; nil values will use production defaults.
type Deps struct {
	// ParserFactory builds the parser.
	// Default: parser.New with built-in decoders.
	ParserFactory ParserFactoryFunc

	// ReadFile reads ABI and token metadata files.
	// Default: os.ReadFile
	ReadFile FileReaderFunc
}

// applyDefaults fills in nil dependencies with production defaults.
func (d *Deps) applyDefaults() {
	if d.ParserFactory == nil {
		d.ParserFactory = defaultParserFactory
	}
	if d.ReadFile == nil {
		d.ReadFile = os.ReadFile
	}
}
