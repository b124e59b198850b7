package parse

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"os"
	"testing"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartcontractkit/visualsign-go/parser"
	"github.com/smartcontractkit/visualsign-go/pkg/logger"
)

// fakeParser records the last request and returns a fixed result.
type fakeParser struct {
	got    parser.ParseRequest
	result parser.ParsedTransaction
	err    error
}

func (f *fakeParser) Parse(_ context.Context, req parser.ParseRequest) (parser.ParsedTransaction, error) {
	f.got = req
	return f.result, f.err
}

func fakeDeps(p *fakeParser, files map[string][]byte) Deps {
	return Deps{
		ParserFactory: func(logger.Logger) (Parser, error) { return p, nil },
		ReadFile: func(path string) ([]byte, error) {
			b, ok := files[path]
			if !ok {
				return nil, os.ErrNotExist
			}

			return b, nil
		},
	}
}

func execute(t *testing.T, cfg Config, args ...string) (string, error) {
	t.Helper()

	cmd := NewCommand(cfg)
	out := new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs(args)

	err := cmd.Execute()

	return out.String(), err
}

func bitcoinTx(t *testing.T) []byte {
	t.Helper()

	tx := wire.NewMsgTx(2)
	tx.AddTxIn(wire.NewTxIn(wire.NewOutPoint(&chainhash.Hash{0x01}, 0), nil, nil))
	tx.AddTxOut(wire.NewTxOut(50_000, []byte{0x6a, 0x02, 'h', 'i'}))
	var buf bytes.Buffer
	require.NoError(t, tx.Serialize(&buf))

	return buf.Bytes()
}

func TestNewCommand_Structure(t *testing.T) {
	t.Parallel()

	cmd := NewCommand(Config{Logger: logger.Nop()})

	assert.Equal(t, "parse", cmd.Use)
	assert.Equal(t, "Visualize an unsigned transaction", cmd.Short)

	tests := []struct {
		name          string
		giveFlag      string
		wantShorthand string
		wantDefault   string
	}{
		{name: "chain", giveFlag: "chain", wantShorthand: "c", wantDefault: "unspecified"},
		{name: "input", giveFlag: "input", wantShorthand: "i"},
		{name: "name", giveFlag: "name", wantShorthand: "n"},
		{name: "format", giveFlag: "format", wantShorthand: "f", wantDefault: "json"},
		{name: "abi file", giveFlag: "abi-file"},
		{name: "abi signature", giveFlag: "abi-signature"},
		{name: "tokens file", giveFlag: "tokens-file"},
		{name: "tokens hash", giveFlag: "tokens-hash"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := cmd.Flags().Lookup(tt.giveFlag)
			require.NotNil(t, f)
			assert.Equal(t, tt.wantShorthand, f.Shorthand)
			assert.Equal(t, tt.wantDefault, f.DefValue)
		})
	}
}

func TestParse_RequiredFlags(t *testing.T) {
	t.Parallel()

	_, err := execute(t, Config{Logger: logger.Nop()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `required flag(s) "input" not set`)

	_, err = execute(t, Config{Logger: logger.Nop()}, "-c", "bitcoin", "-i", "00", "--tokens-file", "a.pb")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tokens-hash")

	_, err = execute(t, Config{Logger: logger.Nop()}, "-c", "dogecoin", "-i", "00")
	require.ErrorContains(t, err, `invalid argument "dogecoin"`)
}

func TestParse_Request(t *testing.T) {
	t.Parallel()

	abiJSON := []byte(`[{"type":"function","name":"store","inputs":[],"outputs":[]}]`)
	sig := bytes.Repeat([]byte{0x11}, 65)

	tests := []struct {
		name    string
		give    []string
		want    parser.ParseRequest
		wantErr string
	}{
		{
			name: "hex input",
			give: []string{"-c", "ethereum", "-i", "0xdeadbeef", "-n", "Swap"},
			want: parser.ParseRequest{
				UnsignedPayload: []byte{0xde, 0xad, 0xbe, 0xef},
				Chain:           parser.ChainEthereum,
				TransactionName: "Swap",
			},
		},
		{
			name: "base64 input",
			give: []string{"--chain", "SOLANA", "--input", "AQID+A=="},
			want: parser.ParseRequest{UnsignedPayload: []byte{1, 2, 3, 0xf8}, Chain: parser.ChainSolana},
		},
		{
			name: "abi with signature",
			give: []string{"-c", "ethereum", "-i", "00", "--abi-file", "store.json", "--abi-signature", "0x" + hex.EncodeToString(sig)},
			want: parser.ParseRequest{
				UnsignedPayload: []byte{0},
				Chain:           parser.ChainEthereum,
				Metadata: &parser.ChainMetadata{
					ABI: &parser.ContractABI{Value: string(abiJSON), Signature: sig},
				},
			},
		},
		{
			name: "token metadata",
			give: []string{"-c", "sui", "-i", "00", "--tokens-file", "tokens.pb", "--tokens-hash", "abcd"},
			want: parser.ParseRequest{
				UnsignedPayload: []byte{0},
				Chain:           parser.ChainSui,
				Metadata: &parser.ChainMetadata{
					Tokens: &parser.TokenMetadataBlob{Blob: []byte{0x0a, 0x00}, Hash: "abcd"},
				},
			},
		},
		{
			name: "chain omitted",
			give: []string{"-i", "0xdeadbeef"},
			want: parser.ParseRequest{UnsignedPayload: []byte{0xde, 0xad, 0xbe, 0xef}},
		},
		{
			name: "auto chain",
			give: []string{"-c", "auto", "-i", "00"},
			want: parser.ParseRequest{UnsignedPayload: []byte{0}, Chain: parser.ChainUnspecified},
		},
		{
			name:    "signature without abi",
			give:    []string{"-c", "ethereum", "-i", "00", "--abi-signature", "00"},
			wantErr: "--abi-signature requires --abi-file",
		},
		{
			name:    "missing abi file",
			give:    []string{"-c", "ethereum", "-i", "00", "--abi-file", "missing.json"},
			wantErr: "failed to read abi file",
		},
		{
			name:    "invalid input",
			give:    []string{"-c", "ethereum", "-i", "not base64!"},
			wantErr: "neither hex nor base64",
		},
		{
			name:    "unknown format",
			give:    []string{"-c", "ethereum", "-i", "00", "-f", "xml"},
			wantErr: `unsupported format "xml"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := &fakeParser{result: parser.ParsedTransaction{JSON: `{"Title":"T"}`}}
			files := map[string][]byte{"store.json": abiJSON, "tokens.pb": {0x0a, 0x00}}

			out, err := execute(t, Config{Logger: logger.Nop(), Deps: fakeDeps(p, files)}, tt.give...)
			if tt.wantErr != "" {
				require.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.got)
			assert.Equal(t, "{\"Title\":\"T\"}\n", out)
		})
	}
}

func TestParse_ParserErrors(t *testing.T) {
	t.Parallel()

	p := &fakeParser{err: parser.ErrEmptyPayload}
	_, err := execute(t, Config{Logger: logger.Nop(), Deps: fakeDeps(p, nil)}, "-c", "tron", "-i", "00")
	require.ErrorIs(t, err, parser.ErrEmptyPayload)

	deps := Deps{ParserFactory: func(logger.Logger) (Parser, error) { return nil, errors.New("boom") }}
	_, err = execute(t, Config{Logger: logger.Nop(), Deps: deps}, "-c", "tron", "-i", "00")
	require.ErrorContains(t, err, "failed to create parser: boom")
}

func TestParse_Bitcoin(t *testing.T) {
	t.Parallel()

	raw := hex.EncodeToString(bitcoinTx(t))

	out, err := execute(t, Config{Logger: logger.Test(t)}, "-c", "bitcoin", "-i", raw)
	require.NoError(t, err)
	assert.Contains(t, out, `"PayloadType":"BitcoinTx"`)
	assert.Contains(t, out, `"Title":"Bitcoin Transaction"`)

	out, err = execute(t, Config{Logger: logger.Test(t)}, "-c", "bitcoin", "-i", raw, "-f", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "PayloadType: BitcoinTx\n")
	assert.Contains(t, out, "Version: \"0\"\n")
	assert.NotContains(t, out, "{")
}

func TestDecodeInput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		give    string
		want    []byte
		wantErr bool
	}{
		{name: "hex", give: "0a0b", want: []byte{0x0a, 0x0b}},
		{name: "prefixed hex", give: "0X0A0B", want: []byte{0x0a, 0x0b}},
		{name: "hex with whitespace", give: " 0a 0b\n", want: []byte{0x0a, 0x0b}},
		{name: "base64", give: "AQID", want: []byte{1, 2, 3}},
		{name: "empty", give: "  ", wantErr: true},
		{name: "garbage", give: "zz-zz", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := DecodeInput(tt.give)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestToYAML(t *testing.T) {
	t.Parallel()

	got, err := ToYAML(`{"Title":"Send","Fields":[{"Label":"Amount","Number":"1.5"}],"Version":"0"}`)
	require.NoError(t, err)
	assert.Equal(t, "Title: Send\nFields:\n    - Label: Amount\n      Number: \"1.5\"\nVersion: \"0\"\n", got)

	_, err = ToYAML(`{"Title":`)
	require.Error(t, err)
}
