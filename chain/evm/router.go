package evm

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/smartcontractkit/visualsign-go/payload"
	"github.com/smartcontractkit/visualsign-go/visualizer"
)

// UniversalRouterAddress is the Uniswap Universal Router on Ethereum mainnet.
var UniversalRouterAddress = common.HexToAddress("0x66a9893cc07d91d95644aedd05d03f95e1dba8af")

const universalRouterJSON = `[
	{"type":"function","name":"execute","stateMutability":"payable","inputs":[{"name":"commands","type":"bytes"},{"name":"inputs","type":"bytes[]"},{"name":"deadline","type":"uint256"}],"outputs":[]},
	{"type":"function","name":"execute","stateMutability":"payable","inputs":[{"name":"commands","type":"bytes"},{"name":"inputs","type":"bytes[]"}],"outputs":[]}
]`

var universalRouterABI = mustParseABI(universalRouterJSON)

// Command types of the Universal Router. The high bit of a command byte allows the command
// to revert; the low six bits select the command.
const (
	commandFlagAllowRevert = 0x80
	commandTypeMask        = 0x3f
)

var routerCommands = map[byte]string{
	0x00: "V3_SWAP_EXACT_IN",
	0x01: "V3_SWAP_EXACT_OUT",
	0x02: "PERMIT2_TRANSFER_FROM",
	0x03: "PERMIT2_PERMIT_BATCH",
	0x04: "SWEEP",
	0x05: "TRANSFER",
	0x06: "PAY_PORTION",
	0x08: "V2_SWAP_EXACT_IN",
	0x09: "V2_SWAP_EXACT_OUT",
	0x0a: "PERMIT2_PERMIT",
	0x0b: "WRAP_ETH",
	0x0c: "UNWRAP_WETH",
	0x0d: "PERMIT2_TRANSFER_FROM_BATCH",
	0x0e: "BALANCE_CHECK_ERC20",
	0x10: "V4_SWAP",
	0x11: "V3_POSITION_MANAGER_PERMIT",
	0x12: "V3_POSITION_MANAGER_CALL",
	0x13: "V4_INITIALIZE_POOL",
	0x14: "V4_POSITION_MANAGER_CALL",
	0x21: "EXECUTE_SUB_PLAN",
}

var (
	addressT   = mustType("address")
	uint256T   = mustType("uint256")
	bytesT     = mustType("bytes")
	boolT      = mustType("bool")
	addressesT = mustType("address[]")

	v3SwapArgs = abi.Arguments{
		{Name: "recipient", Type: addressT},
		{Name: "amount", Type: uint256T},
		{Name: "limit", Type: uint256T},
		{Name: "path", Type: bytesT},
		{Name: "payerIsUser", Type: boolT},
	}
	v2SwapArgs = abi.Arguments{
		{Name: "recipient", Type: addressT},
		{Name: "amount", Type: uint256T},
		{Name: "limit", Type: uint256T},
		{Name: "path", Type: addressesT},
		{Name: "payerIsUser", Type: boolT},
	}
	wrapArgs = abi.Arguments{
		{Name: "recipient", Type: addressT},
		{Name: "amount", Type: uint256T},
	}
	tokenTransferArgs = abi.Arguments{
		{Name: "token", Type: addressT},
		{Name: "recipient", Type: addressT},
		{Name: "amount", Type: uint256T},
	}
)

// UniversalRouterVisualizer renders execute calls to UniversalRouterAddress, with and
// without deadline: a summary, the deadline and one field per command.
func UniversalRouterVisualizer() visualizer.Visualizer {
	return visualizer.New("uniswap-universal-router", selectorKeys(keyAddress(UniversalRouterAddress), universalRouterABI), visualizeRouter)
}

func visualizeRouter(ctx *visualizer.Context, ins visualizer.Instruction) ([]payload.Field, error) {
	_, ins, err := unpackCall(universalRouterABI, ins)
	if err != nil {
		return nil, err
	}
	commands, err := visualizer.ArgAt[[]byte](0).Get(ins)
	if err != nil {
		return nil, err
	}
	inputs, err := visualizer.ArgAt[[][]byte](1).Get(ins)
	if err != nil {
		return nil, err
	}
	if len(inputs) != len(commands) {
		return nil, fmt.Errorf("%w: %d commands with %d inputs", visualizer.ErrMissingData, len(commands), len(inputs))
	}

	summary := fmt.Sprintf("%d commands", len(commands))
	fallback := "Universal Router Execute: " + summary
	deadline, derr := visualizer.ArgAt[*big.Int](2).Get(ins)
	if derr == nil {
		fallback += ", deadline " + deadline.String()
	}
	fields := []payload.Field{payload.NewTextFieldWithFallback("Universal Router", summary, fallback)}
	if derr == nil {
		fields = append(fields, payload.NewTextField("Deadline", formatDeadline(deadline)))
	}

	for i, c := range commands {
		fields = append(fields, commandField(ctx, i, c, inputs[i]))
	}

	return fields, nil
}

func formatDeadline(deadline *big.Int) string {
	if !deadline.IsInt64() {
		return deadline.String()
	}

	return time.Unix(deadline.Int64(), 0).UTC().Format(time.RFC3339)
}

// commandField renders one router command. Commands whose input cannot be decoded show
// their name and raw input.
func commandField(ctx *visualizer.Context, i int, command byte, input []byte) payload.Field {
	label := fmt.Sprintf("Command %d", i+1)
	name, ok := routerCommands[command&commandTypeMask]
	if !ok {
		name = fmt.Sprintf("UNKNOWN_0x%02x", command&commandTypeMask)
	}
	if command&commandFlagAllowRevert != 0 {
		name += " (allow revert)"
	}

	if text, ok := describeCommand(ctx, command&commandTypeMask, input); ok {
		return payload.NewTextFieldWithFallback(label, text, name+": "+text)
	}

	return payload.NewTextField(label, name+" 0x"+hex.EncodeToString(input))
}

func describeCommand(ctx *visualizer.Context, command byte, input []byte) (string, bool) {
	switch command {
	case 0x00, 0x01:
		args, err := v3SwapArgs.Unpack(input)
		if err != nil {
			return "", false
		}
		path := args[3].([]byte)
		if len(path) < 2*common.AddressLength {
			return "", false
		}
		first := common.BytesToAddress(path[:common.AddressLength])
		last := common.BytesToAddress(path[len(path)-common.AddressLength:])
		if command == 0x01 {
			// Exact output paths are encoded output first.
			first, last = last, first
		}

		return describeSwap(ctx, command == 0x00, first, last, args[1].(*big.Int), args[2].(*big.Int)), true
	case 0x08, 0x09:
		args, err := v2SwapArgs.Unpack(input)
		if err != nil {
			return "", false
		}
		path := args[3].([]common.Address)
		if len(path) < 2 {
			return "", false
		}

		return describeSwap(ctx, command == 0x08, path[0], path[len(path)-1], args[1].(*big.Int), args[2].(*big.Int)), true
	case 0x0b, 0x0c:
		args, err := wrapArgs.Unpack(input)
		if err != nil {
			return "", false
		}
		verb := "Wrap"
		if command == 0x0c {
			verb = "Unwrap at least"
		}

		return fmt.Sprintf("%s %s ETH for %s", verb, formatEther(args[1].(*big.Int)), args[0].(common.Address).Hex()), true
	case 0x04, 0x05:
		args, err := tokenTransferArgs.Unpack(input)
		if err != nil {
			return "", false
		}
		verb := "Transfer"
		if command == 0x04 {
			verb = "Sweep at least"
		}
		token := args[0].(common.Address)

		return fmt.Sprintf("%s %s to %s", verb, formatTokenAmount(ctx, token, args[2].(*big.Int)), args[1].(common.Address).Hex()), true
	}

	return "", false
}

func describeSwap(ctx *visualizer.Context, exactIn bool, tokenIn, tokenOut common.Address, amount, limit *big.Int) string {
	if exactIn {
		return fmt.Sprintf("Swap %s for at least %s", formatTokenAmount(ctx, tokenIn, amount), formatTokenAmount(ctx, tokenOut, limit))
	}

	return fmt.Sprintf("Swap at most %s for %s", formatTokenAmount(ctx, tokenIn, limit), formatTokenAmount(ctx, tokenOut, amount))
}
