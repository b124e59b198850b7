package parse

import (
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/smartcontractkit/visualsign-go/parser"
	"github.com/smartcontractkit/visualsign-go/pkg/logger"
)

// Output formats of the parse command.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Config holds the configuration for the parse command.
type Config struct {
	// Logger is the logger passed to the parser. Required.
	Logger logger.Logger

	// Deps holds optional dependencies that can be overridden.
	// If fields are nil, production defaults are used.
	Deps Deps
}

// deps returns the Deps with defaults applied.
func (c *Config) deps() *Deps {
	c.Deps.applyDefaults()

	return &c.Deps
}

type flags struct {
	chain        parser.Chain
	input        string
	name         string
	format       string
	abiFile      string
	abiSignature string
	tokensFile   string
	tokensHash   string
}

// NewCommand creates the parse command.
//
// Usage:
//
//	rootCmd.AddCommand(parse.NewCommand(parse.Config{
//	    Logger: lggr,
//	}))
func NewCommand(cfg Config) *cobra.Command {
	var f flags

	cmd := &cobra.Command{
		Use:   "parse",
		Short: "Visualize an unsigned transaction",
		Long: `Decode an unsigned transaction and print its signable payload.

The input is hex (optionally 0x prefixed) or standard base64. Without --chain the
chain is detected by trying each decoder in turn.`,
		Example: `  visualsign parse --chain ethereum --input 0xf86c...
  visualsign parse -c solana -i AQAB... --format yaml
  visualsign parse -i 0200000001...`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runParse(cmd, cfg, f)
		},
	}

	cmd.Flags().VarP(&f.chain, "chain", "c", "Chain of the transaction (ethereum, solana, sui, bitcoin, tron, aptos), detected when unset")
	cmd.Flags().StringVarP(&f.input, "input", "i", "", "Unsigned transaction as hex or base64")
	cmd.Flags().StringVarP(&f.name, "name", "n", "", "Transaction name shown as the payload title")
	cmd.Flags().StringVarP(&f.format, "format", "f", FormatJSON, "Output format (json, yaml)")
	cmd.Flags().StringVar(&f.abiFile, "abi-file", "", "Contract ABI JSON file of the called contract (ethereum only)")
	cmd.Flags().StringVar(&f.abiSignature, "abi-signature", "", "Hex signature over the keccak256 hash of the ABI")
	cmd.Flags().StringVar(&f.tokensFile, "tokens-file", "", "Token metadata blob applied to this transaction only")
	cmd.Flags().StringVar(&f.tokensHash, "tokens-hash", "", "Expected SHA-256 hash of the token metadata blob")
	_ = cmd.MarkFlagRequired("input")
	cmd.MarkFlagsRequiredTogether("tokens-file", "tokens-hash")

	return cmd
}

// runParse executes the parse command logic.
func runParse(cmd *cobra.Command, cfg Config, f flags) error {
	if f.format != FormatJSON && f.format != FormatYAML {
		return fmt.Errorf("unsupported format %q", f.format)
	}
	deps := cfg.deps()

	raw, err := DecodeInput(f.input)
	if err != nil {
		return err
	}

	req := parser.ParseRequest{
		UnsignedPayload: raw,
		Chain:           f.chain,
		TransactionName: f.name,
	}
	md, err := loadMetadata(deps, f)
	if err != nil {
		return err
	}
	req.Metadata = md

	p, err := deps.ParserFactory(cfg.Logger)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}
	parsed, err := p.Parse(cmd.Context(), req)
	if err != nil {
		return fmt.Errorf("failed to parse transaction: %w", err)
	}

	out := parsed.JSON
	if f.format == FormatYAML {
		out, err = ToYAML(parsed.JSON)
		if err != nil {
			return err
		}
	}
	fmt.Fprintln(cmd.OutOrStdout(), strings.TrimRight(out, "\n"))

	return nil
}

func loadMetadata(deps *Deps, f flags) (*parser.ChainMetadata, error) {
	if f.abiFile == "" && f.tokensFile == "" {
		if f.abiSignature != "" {
			return nil, errors.New("--abi-signature requires --abi-file")
		}

		return nil, nil //nolint:nilnil // no metadata supplied
	}

	md := &parser.ChainMetadata{}
	if f.abiFile != "" {
		abiJSON, err := deps.ReadFile(f.abiFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read abi file: %w", err)
		}
		md.ABI = &parser.ContractABI{Value: string(abiJSON)}
		if f.abiSignature != "" {
			sig, err := hex.DecodeString(strings.TrimPrefix(f.abiSignature, "0x"))
			if err != nil {
				return nil, fmt.Errorf("invalid abi signature: %w", err)
			}
			md.ABI.Signature = sig
		}
	}
	if f.tokensFile != "" {
		blob, err := deps.ReadFile(f.tokensFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read token metadata: %w", err)
		}
		md.Tokens = &parser.TokenMetadataBlob{Blob: blob, Hash: f.tokensHash}
	}

	return md, nil
}

// DecodeInput decodes a transaction given as hex, with or without 0x prefix, or as
// standard base64. Input that is valid hex is always read as hex.
func DecodeInput(s string) ([]byte, error) {
	s = strings.Join(strings.Fields(s), "")
	if s == "" {
		return nil, errors.New("empty input")
	}
	trimmed := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if b, err := hex.DecodeString(trimmed); err == nil {
		return b, nil
	}
	if b, err := base64.StdEncoding.DecodeString(s); err == nil {
		return b, nil
	}

	return nil, errors.New("input is neither hex nor base64")
}

// ToYAML renders canonical payload JSON as block style YAML, keeping the JSON key order.
func ToYAML(jsonText string) (string, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(jsonText), &doc); err != nil {
		return "", fmt.Errorf("failed to read payload json: %w", err)
	}
	blockStyle(&doc)

	out, err := yaml.Marshal(&doc)
	if err != nil {
		return "", fmt.Errorf("failed to render yaml: %w", err)
	}

	return string(out), nil
}

func blockStyle(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		blockStyle(c)
	}
}
