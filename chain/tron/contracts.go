package tron

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"
	"unicode"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/fbsobreira/gotron-sdk/pkg/proto/core"

	"github.com/smartcontractkit/visualsign-go/payload"
	"github.com/smartcontractkit/visualsign-go/registry"
	"github.com/smartcontractkit/visualsign-go/visualizer"
)

// trxDecimals is the number of decimals of TRX: one TRX is 1e6 sun.
const trxDecimals = 6

const trc20JSON = `[
	{"type":"function","name":"transfer","inputs":[{"name":"to","type":"address"},{"name":"value","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]},
	{"type":"function","name":"approve","inputs":[{"name":"spender","type":"address"},{"name":"value","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]},
	{"type":"function","name":"transferFrom","inputs":[{"name":"from","type":"address"},{"name":"to","type":"address"},{"name":"value","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]}
]`

var trc20ABI = func() abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(trc20JSON))
	if err != nil {
		panic(err)
	}

	return parsed
}()

func trxAmountField(label string, sun int64) (payload.Field, error) {
	if sun < 0 {
		return payload.Field{}, fmt.Errorf("%w: negative amount %d", visualizer.ErrMissingData, sun)
	}

	return payload.NewAmountField(label, registry.FormatUnits(big.NewInt(sun), trxDecimals), "TRX")
}

// Visualizers returns the built-in contract visualizers in registration order.
func Visualizers() []visualizer.Visualizer {
	return []visualizer.Visualizer{
		TransferVisualizer(),
		TransferAssetVisualizer(),
		TRC20Visualizer(),
	}
}

// TransferVisualizer renders TRX transfers.
func TransferVisualizer() visualizer.Visualizer {
	return visualizer.New("tron-transfer", []visualizer.Key{ContractKey(core.Transaction_Contract_TransferContract)}, visualizeTransfer)
}

func visualizeTransfer(_ *visualizer.Context, ins visualizer.Instruction) ([]payload.Field, error) {
	c, err := visualizer.ArgAt[*core.TransferContract](0).Get(ins)
	if err != nil {
		return nil, err
	}
	from, err := EncodeAddress(c.GetOwnerAddress())
	if err != nil {
		return nil, fmt.Errorf("%w: owner: %w", visualizer.ErrMissingData, err)
	}
	to, err := EncodeAddress(c.GetToAddress())
	if err != nil {
		return nil, fmt.Errorf("%w: recipient: %w", visualizer.ErrMissingData, err)
	}
	amount, err := trxAmountField("Amount", c.GetAmount())
	if err != nil {
		return nil, err
	}
	title := "Transfer " + amount.FallbackText

	return []payload.Field{payload.NewPreviewLayoutField(payload.PreviewLayoutParams{
		Label:     ins.Label,
		Fallback:  title + " to " + to,
		Title:     title,
		Subtitle:  "to " + to,
		Condensed: []payload.Field{amount},
		Expanded: []payload.Field{
			payload.NewAddressField("From", from, ""),
			payload.NewAddressField("To", to, ""),
			amount,
		},
	})}, nil
}

// TransferAssetVisualizer renders TRC-10 asset transfers. Asset amounts are raw units.
func TransferAssetVisualizer() visualizer.Visualizer {
	return visualizer.New("tron-transfer-asset", []visualizer.Key{ContractKey(core.Transaction_Contract_TransferAssetContract)}, visualizeTransferAsset)
}

func visualizeTransferAsset(_ *visualizer.Context, ins visualizer.Instruction) ([]payload.Field, error) {
	c, err := visualizer.ArgAt[*core.TransferAssetContract](0).Get(ins)
	if err != nil {
		return nil, err
	}
	from, err := EncodeAddress(c.GetOwnerAddress())
	if err != nil {
		return nil, fmt.Errorf("%w: owner: %w", visualizer.ErrMissingData, err)
	}
	to, err := EncodeAddress(c.GetToAddress())
	if err != nil {
		return nil, fmt.Errorf("%w: recipient: %w", visualizer.ErrMissingData, err)
	}
	if c.GetAmount() < 0 {
		return nil, fmt.Errorf("%w: negative amount %d", visualizer.ErrMissingData, c.GetAmount())
	}
	asset := displayBytes(c.GetAssetName())
	amount, err := payload.NewAmountField("Amount", big.NewInt(c.GetAmount()).String(), "units")
	if err != nil {
		return nil, err
	}
	title := fmt.Sprintf("Transfer %s of asset %s", amount.FallbackText, asset)

	return []payload.Field{payload.NewPreviewLayoutField(payload.PreviewLayoutParams{
		Label:     ins.Label,
		Fallback:  title + " to " + to,
		Title:     title,
		Subtitle:  "to " + to,
		Condensed: []payload.Field{amount},
		Expanded: []payload.Field{
			payload.NewAddressField("From", from, ""),
			payload.NewAddressField("To", to, ""),
			payload.NewTextField("Asset", asset),
			amount,
		},
	})}, nil
}

// TRC20Visualizer renders transfer, approve and transferFrom calls on any contract.
func TRC20Visualizer() visualizer.Visualizer {
	keys := make([]visualizer.Key, 0, len(trc20ABI.Methods))
	for _, name := range []string{"approve", "transfer", "transferFrom"} {
		keys = append(keys, visualizer.ProgramKey(visualizer.Any, hex.EncodeToString(trc20ABI.Methods[name].ID)))
	}

	return visualizer.New("trc20", keys, visualizeTRC20)
}

func visualizeTRC20(ctx *visualizer.Context, ins visualizer.Instruction) ([]payload.Field, error) {
	if len(ins.Data) < 4 {
		return nil, fmt.Errorf("%w: calldata shorter than a selector", visualizer.ErrMissingData)
	}
	method, err := trc20ABI.MethodById(ins.Data[:4])
	if err != nil {
		return nil, fmt.Errorf("%w: %w", visualizer.ErrMissingData, err)
	}
	args, err := method.Inputs.Unpack(ins.Data[4:])
	if err != nil {
		return nil, fmt.Errorf("%w: %s arguments: %w", visualizer.ErrMissingData, method.Name, err)
	}
	ins.Args = args

	var parties []string
	verb := "Transfer"
	switch method.Name {
	case "transfer":
		parties = []string{"To"}
	case "approve":
		parties = []string{"Spender"}
		verb = "Approve"
	case "transferFrom":
		parties = []string{"From", "To"}
	}

	token := ins.Program
	symbol := ""
	if md, ok := ctx.Registry.Lookup(ctx.ChainID, token); ok {
		symbol = md.Symbol
	}
	expanded := []payload.Field{payload.NewAddressField("Token", token, symbol)}
	var counterparty string
	for i, label := range parties {
		a, err := visualizer.ArgAt[common.Address](i).Get(ins)
		if err != nil {
			return nil, err
		}
		counterparty = FromEVMAddress(a)
		expanded = append(expanded, payload.NewAddressField(label, counterparty, ""))
	}
	value, err := visualizer.ArgAt[*big.Int](len(parties)).Get(ins)
	if err != nil {
		return nil, err
	}
	label := "Amount"
	if method.Name == "approve" {
		label = "Allowance"
	}
	amount, err := ctx.TokenAmountField(label, token, value, "units")
	if err != nil {
		return nil, err
	}
	expanded = append(expanded, amount)

	title := verb + " " + amount.FallbackText
	subtitle := "to " + counterparty
	if method.Name == "approve" {
		subtitle = "for " + counterparty
	}

	return []payload.Field{payload.NewPreviewLayoutField(payload.PreviewLayoutParams{
		Label:     ins.Label,
		Fallback:  title + " " + subtitle,
		Title:     title,
		Subtitle:  subtitle,
		Condensed: []payload.Field{amount},
		Expanded:  expanded,
	})}, nil
}

// UnknownContractField renders a contract no visualizer could interpret: the contract type
// and its parameter bytes, or the target and calldata of a smart contract call.
func UnknownContractField(ins visualizer.Instruction, _ error) payload.Field {
	title := ins.Key.Function
	var expanded []payload.Field
	if trigger, err := visualizer.ArgAt[*core.TriggerSmartContract](0).Get(ins); err == nil {
		title = "Trigger Smart Contract"
		if owner, err := EncodeAddress(trigger.GetOwnerAddress()); err == nil {
			expanded = append(expanded, payload.NewAddressField("Owner", owner, ""))
		}
		if ins.Program != "" {
			expanded = append(expanded, payload.NewAddressField("Contract", ins.Program, ""))
		}
		if v, err := trxAmountField("Call Value", trigger.GetCallValue()); err == nil {
			expanded = append(expanded, v)
		}
	}
	data := "empty"
	if len(ins.Data) > 0 {
		data = hex.EncodeToString(ins.Data)
	}
	expanded = append(expanded, payload.NewTextField("Data", data))

	return payload.NewPreviewLayoutField(payload.PreviewLayoutParams{
		Label:    ins.Label,
		Fallback: fmt.Sprintf("Contract: %s\nData: %s", title, data),
		Title:    title,
		Expanded: expanded,
	})
}

// displayBytes shows printable asset names as text and anything else as hex.
func displayBytes(b []byte) string {
	s := string(b)
	if s != "" && !strings.ContainsFunc(s, func(r rune) bool { return r > unicode.MaxASCII || !unicode.IsPrint(r) }) {
		return s
	}

	return "0x" + hex.EncodeToString(b)
}
