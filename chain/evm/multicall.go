package evm

import (
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/smartcontractkit/visualsign-go/payload"
	"github.com/smartcontractkit/visualsign-go/visualizer"
)

// Multicall3Address is the deterministic deployment address of Multicall3.
var Multicall3Address = common.HexToAddress("0xcA11bde05977b3631167028862bE2a173976CA11")

const multicall3JSON = `[
	{"type":"function","name":"aggregate","stateMutability":"payable","inputs":[{"name":"calls","type":"tuple[]","components":[{"name":"target","type":"address"},{"name":"callData","type":"bytes"}]}],"outputs":[]},
	{"type":"function","name":"aggregate3","stateMutability":"payable","inputs":[{"name":"calls","type":"tuple[]","components":[{"name":"target","type":"address"},{"name":"allowFailure","type":"bool"},{"name":"callData","type":"bytes"}]}],"outputs":[]}
]`

var multicall3ABI = mustParseABI(multicall3JSON)

type multicallCall struct {
	Target   common.Address
	CallData []byte
}

type multicallCall3 struct {
	Target       common.Address
	AllowFailure bool
	CallData     []byte
}

// Multicall3Visualizer renders aggregate and aggregate3 batches sent to Multicall3Address.
// Each inner call is visualized in a nested context after the summary field.
func Multicall3Visualizer() visualizer.Visualizer {
	return visualizer.New("multicall3", selectorKeys(keyAddress(Multicall3Address), multicall3ABI), visualizeMulticall)
}

func visualizeMulticall(ctx *visualizer.Context, ins visualizer.Instruction) ([]payload.Field, error) {
	method, ins, err := unpackCall(multicall3ABI, ins)
	if err != nil {
		return nil, err
	}
	raw, err := visualizer.ArgAt[any](0).Get(ins)
	if err != nil {
		return nil, err
	}

	var calls []multicallCall3
	switch method.Name {
	case "aggregate3":
		calls = *abi.ConvertType(raw, new([]multicallCall3)).(*[]multicallCall3)
	case "aggregate":
		for _, c := range *abi.ConvertType(raw, new([]multicallCall)).(*[]multicallCall) {
			calls = append(calls, multicallCall3{Target: c.Target, CallData: c.CallData})
		}
	}

	summary := fmt.Sprintf("%d calls", len(calls))
	fields := []payload.Field{payload.NewTextFieldWithFallback("Multicall", summary, "Multicall: "+summary)}
	for i, c := range calls {
		label := fmt.Sprintf("Call %d", i+1)
		if c.AllowFailure {
			label += " (may fail)"
		}
		fields = append(fields, payload.NewAddressField(label+" Target", c.Target.Hex(), contractName(ctx, c.Target)))
		fields = append(fields, ctx.VisualizeNested(visualizer.Instruction{
			Key:     callKey(c.Target, c.CallData),
			Index:   i,
			Label:   label,
			Program: c.Target.Hex(),
			Data:    c.CallData,
		})...)
	}

	return fields, nil
}
