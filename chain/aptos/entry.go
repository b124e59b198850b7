package aptos

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"

	aptoslib "github.com/aptos-labs/aptos-go-sdk"

	"github.com/smartcontractkit/visualsign-go/payload"
	"github.com/smartcontractkit/visualsign-go/registry"
	"github.com/smartcontractkit/visualsign-go/visualizer"
)

const (
	// AptosCoinType is the type tag of the native coin.
	AptosCoinType = "0x1::aptos_coin::AptosCoin"

	// aptDecimals is the number of decimals of APT: one APT is 1e8 octas.
	aptDecimals = 8
)

func aptAmountField(label string, octas uint64) (payload.Field, error) {
	return payload.NewAmountField(label, registry.FormatUnits(new(big.Int).SetUint64(octas), aptDecimals), "APT")
}

// Visualizers returns the built-in entry function visualizers in registration order.
func Visualizers() []visualizer.Visualizer {
	return []visualizer.Visualizer{
		CoinTransferVisualizer(),
	}
}

// CoinTransferVisualizer renders aptos_account::transfer, aptos_account::transfer_coins and
// coin::transfer.
func CoinTransferVisualizer() visualizer.Visualizer {
	keys := []visualizer.Key{
		visualizer.NewKey("0x1", "aptos_account", "transfer"),
		visualizer.NewKey("0x1", "aptos_account", "transfer_coins"),
		visualizer.NewKey("0x1", "coin", "transfer"),
	}

	return visualizer.New("aptos-coin-transfer", keys, visualizeCoinTransfer)
}

func visualizeCoinTransfer(ctx *visualizer.Context, ins visualizer.Instruction) ([]payload.Field, error) {
	ef, err := visualizer.ArgAt[*aptoslib.EntryFunction](0).Get(ins)
	if err != nil {
		return nil, err
	}

	coinType := AptosCoinType
	wantTypeArgs := 1
	if ins.Key.Module == "aptos_account" && ins.Key.Function == "transfer" {
		wantTypeArgs = 0
	}
	if len(ef.ArgTypes) != wantTypeArgs {
		return nil, fmt.Errorf("%w: %s takes %d type arguments, got %d", visualizer.ErrMissingData, ef.Function, wantTypeArgs, len(ef.ArgTypes))
	}
	if wantTypeArgs == 1 {
		coinType = ef.ArgTypes[0].String()
	}
	if len(ef.Args) != 2 {
		return nil, fmt.Errorf("%w: %s takes 2 arguments, got %d", visualizer.ErrMissingData, ef.Function, len(ef.Args))
	}
	to, err := decodeAddressArg(ef.Args[0])
	if err != nil {
		return nil, err
	}
	raw, err := decodeU64Arg(ef.Args[1])
	if err != nil {
		return nil, err
	}

	var amount payload.Field
	if coinType == AptosCoinType {
		amount, err = aptAmountField("Amount", raw)
	} else {
		amount, err = ctx.TokenAmountField("Amount", coinType, new(big.Int).SetUint64(raw), "units")
	}
	if err != nil {
		return nil, err
	}
	title := "Transfer " + amount.FallbackText

	return []payload.Field{payload.NewPreviewLayoutField(payload.PreviewLayoutParams{
		Label:     ins.Label,
		Fallback:  title + " to " + to.String(),
		Title:     title,
		Subtitle:  "to " + to.String(),
		Condensed: []payload.Field{amount},
		Expanded: []payload.Field{
			payload.NewAddressField("From", ctx.Sender, ""),
			payload.NewAddressField("To", to.String(), ""),
			payload.NewTextField("Coin Type", coinType),
			amount,
		},
	})}, nil
}

// UnknownPayloadField renders a payload no visualizer could interpret. Entry functions show
// their fully qualified name with type and value arguments; other payloads show their bytes.
func UnknownPayloadField(ins visualizer.Instruction, _ error) payload.Field {
	title := ins.Label
	var expanded []payload.Field
	if ef, err := visualizer.ArgAt[*aptoslib.EntryFunction](0).Get(ins); err == nil {
		title = ModuleName(ef.Module) + "::" + ef.Function
		expanded = append(expanded, payload.NewTextField("Function", title))
		if len(ef.ArgTypes) > 0 {
			types := make([]string, 0, len(ef.ArgTypes))
			for _, t := range ef.ArgTypes {
				types = append(types, t.String())
			}
			expanded = append(expanded, payload.NewTextField("Type Arguments", strings.Join(types, ", ")))
		}
		for i, arg := range ef.Args {
			expanded = append(expanded, payload.NewTextField(fmt.Sprintf("Argument %d", i), "0x"+hex.EncodeToString(arg)))
		}
	}
	data := "empty"
	if len(ins.Data) > 0 {
		data = hex.EncodeToString(ins.Data)
	}
	expanded = append(expanded, payload.NewTextField("Data", data))

	return payload.NewPreviewLayoutField(payload.PreviewLayoutParams{
		Label:    ins.Label,
		Fallback: fmt.Sprintf("%s: %s\nData: %s", ins.Label, title, data),
		Title:    title,
		Expanded: expanded,
	})
}
