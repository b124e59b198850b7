package evm

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"slices"
	"strconv"
	"strings"
	"unicode"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"

	"github.com/smartcontractkit/visualsign-go/payload"
	"github.com/smartcontractkit/visualsign-go/visualizer"
)

func mustParseABI(def string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(def))
	if err != nil {
		panic(err)
	}

	return parsed
}

func mustType(t string) abi.Type {
	typ, err := abi.NewType(t, "", nil)
	if err != nil {
		panic(err)
	}

	return typ
}

func selector(data []byte) string {
	if len(data) < 4 {
		return ""
	}

	return hex.EncodeToString(data[:4])
}

// callKey is the dispatch key of a call: the lowercase contract and the selector.
func callKey(contract common.Address, data []byte) visualizer.Key {
	return visualizer.ProgramKey(keyAddress(contract), selector(data))
}

// selectorKeys returns a key per method of a on the given contract (or visualizer.Any),
// in method name order.
func selectorKeys(contract string, a abi.ABI) []visualizer.Key {
	names := make([]string, 0, len(a.Methods))
	for name := range a.Methods {
		names = append(names, name)
	}
	slices.Sort(names)

	keys := make([]visualizer.Key, 0, len(names))
	for _, name := range names {
		keys = append(keys, visualizer.ProgramKey(contract, hex.EncodeToString(a.Methods[name].ID)))
	}

	return keys
}

// unpackCall resolves the method of data and returns ins with Args set to its arguments.
func unpackCall(a abi.ABI, ins visualizer.Instruction) (*abi.Method, visualizer.Instruction, error) {
	if len(ins.Data) < 4 {
		return nil, ins, fmt.Errorf("%w: calldata shorter than a selector", visualizer.ErrMissingData)
	}
	method, err := a.MethodById(ins.Data[:4])
	if err != nil {
		return nil, ins, fmt.Errorf("%w: %w", visualizer.ErrMissingData, err)
	}
	args, err := method.Inputs.Unpack(ins.Data[4:])
	if err != nil {
		return nil, ins, fmt.Errorf("%w: %s arguments: %w", visualizer.ErrMissingData, method.Name, err)
	}
	ins.Args = args

	return method, ins, nil
}

// tokenName returns the registry symbol of token, if known.
func tokenName(ctx *visualizer.Context, token common.Address) string {
	if md, ok := ctx.Registry.Lookup(ctx.ChainID, token.Hex()); ok {
		return md.Symbol
	}

	return ""
}

// contractName returns a display name for addr from the registry or the built-in table.
func contractName(ctx *visualizer.Context, addr common.Address) string {
	if name := tokenName(ctx, addr); name != "" {
		return name
	}
	if t, ok := ctx.Registry.ContractType(ctx.ChainID, addr.Hex()); ok {
		return t
	}

	return knownContracts[addr]
}

// formatTokenAmount renders amount of token as "1.5 USDC", or the raw integer and the
// token address when the token is unknown.
func formatTokenAmount(ctx *visualizer.Context, token common.Address, amount *big.Int) string {
	if token == (common.Address{}) {
		return formatEther(amount) + " ETH"
	}
	if s, sym, ok := ctx.Registry.FormatAmount(ctx.ChainID, token.Hex(), amount); ok {
		return s + " " + sym
	}

	return amount.String() + " of " + token.Hex()
}

// argField renders one decoded ABI argument.
func argField(label string, v any) payload.Field {
	switch x := v.(type) {
	case common.Address:
		return payload.NewAddressField(label, x.Hex(), "")
	case *big.Int:
		f, err := payload.NewNumberField(label, x.String(), "")
		if err == nil {
			return f
		}
	case bool:
		return payload.NewTextField(label, strconv.FormatBool(x))
	case string:
		return payload.NewTextField(label, displayText(x))
	case []byte:
		return payload.NewTextField(label, "0x"+hex.EncodeToString(x))
	case [32]byte:
		return payload.NewTextField(label, "0x"+hex.EncodeToString(x[:]))
	case uint8, uint16, uint32, uint64, int8, int16, int32, int64:
		f, err := payload.NewNumberField(label, fmt.Sprint(x), "")
		if err == nil {
			return f
		}
	}

	return payload.NewTextField(label, displayText(fmt.Sprint(v)))
}

// displayText returns s when it is printable ASCII and its hex otherwise.
func displayText(s string) string {
	for _, r := range s {
		if r > unicode.MaxASCII || !unicode.IsPrint(r) {
			return "0x" + hex.EncodeToString([]byte(s))
		}
	}

	return s
}

func isUnlimited(amount *big.Int) bool {
	return amount.Cmp(math.MaxBig256) == 0
}
