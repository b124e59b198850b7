package bitcoin

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/txscript"

	"github.com/smartcontractkit/visualsign-go/payload"
	"github.com/smartcontractkit/visualsign-go/registry"
	"github.com/smartcontractkit/visualsign-go/visualizer"
)

// btcDecimals is the number of decimals of BTC: one BTC is 1e8 satoshi.
const btcDecimals = 8

var scriptTypeNames = map[txscript.ScriptClass]string{
	txscript.PubKeyTy:              "P2PK",
	txscript.PubKeyHashTy:          "P2PKH",
	txscript.ScriptHashTy:          "P2SH",
	txscript.WitnessV0PubKeyHashTy: "P2WPKH",
	txscript.WitnessV0ScriptHashTy: "P2WSH",
	txscript.WitnessV1TaprootTy:    "P2TR",
	txscript.MultiSigTy:            "Bare Multisig",
	txscript.NullDataTy:            "OP_RETURN",
	txscript.WitnessUnknownTy:      "Unknown Witness Program",
	txscript.NonStandardTy:         "Nonstandard",
}

func scriptTypeName(class txscript.ScriptClass) string {
	if name, ok := scriptTypeNames[class]; ok {
		return name
	}

	return class.String()
}

func btcAmountField(label string, v btcutil.Amount) (payload.Field, error) {
	return payload.NewAmountField(label, registry.FormatUnits(big.NewInt(int64(v)), btcDecimals), "BTC")
}

func outputFallback(o Output) string {
	return fmt.Sprintf("Output %d: %d sat to script %s", o.Index+1, int64(o.Value), scriptHex(o.Script))
}

func scriptHex(b []byte) string {
	if len(b) == 0 {
		return "empty"
	}

	return hex.EncodeToString(b)
}

// Visualizers returns the built-in output visualizers in registration order.
func Visualizers() []visualizer.Visualizer {
	return []visualizer.Visualizer{
		PaymentVisualizer(),
		MultisigVisualizer(),
		NullDataVisualizer(),
	}
}

// PaymentVisualizer renders outputs paying to a single address.
func PaymentVisualizer() visualizer.Visualizer {
	keys := []visualizer.Key{
		OutputKey(txscript.PubKeyTy),
		OutputKey(txscript.PubKeyHashTy),
		OutputKey(txscript.ScriptHashTy),
		OutputKey(txscript.WitnessV0PubKeyHashTy),
		OutputKey(txscript.WitnessV0ScriptHashTy),
		OutputKey(txscript.WitnessV1TaprootTy),
	}

	return visualizer.New("bitcoin-payment", keys, visualizePayment)
}

func visualizePayment(_ *visualizer.Context, ins visualizer.Instruction) ([]payload.Field, error) {
	o, err := visualizer.ArgAt[Output](0).Get(ins)
	if err != nil {
		return nil, err
	}
	if len(o.Addresses) != 1 {
		return nil, fmt.Errorf("%w: %d addresses for %s output", visualizer.ErrMissingData, len(o.Addresses), o.Class)
	}
	to := o.Addresses[0].EncodeAddress()
	amount, err := btcAmountField("Amount", o.Value)
	if err != nil {
		return nil, err
	}
	title := "Send " + amount.FallbackText
	scriptType := payload.NewTextField("Script Type", scriptTypeName(o.Class))

	return []payload.Field{payload.NewPreviewLayoutField(payload.PreviewLayoutParams{
		Label:     ins.Label,
		Fallback:  title + " to " + to,
		Title:     title,
		Subtitle:  "to " + to,
		Condensed: []payload.Field{amount},
		Expanded:  []payload.Field{payload.NewAddressField("To", to, ""), amount, scriptType},
	})}, nil
}

// MultisigVisualizer renders bare multisig outputs with their public keys.
func MultisigVisualizer() visualizer.Visualizer {
	return visualizer.New("bitcoin-multisig", []visualizer.Key{OutputKey(txscript.MultiSigTy)}, visualizeMultisig)
}

func visualizeMultisig(_ *visualizer.Context, ins visualizer.Instruction) ([]payload.Field, error) {
	o, err := visualizer.ArgAt[Output](0).Get(ins)
	if err != nil {
		return nil, err
	}
	if len(o.Addresses) == 0 {
		return nil, fmt.Errorf("%w: multisig public keys", visualizer.ErrMissingData)
	}
	amount, err := btcAmountField("Amount", o.Value)
	if err != nil {
		return nil, err
	}
	policy := fmt.Sprintf("%d-of-%d multisig", o.RequiredSigs, len(o.Addresses))
	title := "Send " + amount.FallbackText

	expanded := []payload.Field{amount, payload.NewTextField("Policy", policy)}
	for i, key := range o.Addresses {
		expanded = append(expanded, payload.NewAddressField(fmt.Sprintf("Public Key %d", i+1), key.String(), ""))
	}

	return []payload.Field{payload.NewPreviewLayoutField(payload.PreviewLayoutParams{
		Label:     ins.Label,
		Fallback:  title + " to " + policy,
		Title:     title,
		Subtitle:  "to " + policy,
		Condensed: []payload.Field{amount},
		Expanded:  expanded,
	})}, nil
}

// NullDataVisualizer renders OP_RETURN outputs. Printable pushes are shown as a memo,
// anything else as hex.
func NullDataVisualizer() visualizer.Visualizer {
	return visualizer.New("bitcoin-op-return", []visualizer.Key{OutputKey(txscript.NullDataTy)}, visualizeNullData)
}

func visualizeNullData(_ *visualizer.Context, ins visualizer.Instruction) ([]payload.Field, error) {
	o, err := visualizer.ArgAt[Output](0).Get(ins)
	if err != nil {
		return nil, err
	}
	pushes, err := txscript.PushedData(o.Script)
	if err != nil {
		return nil, err
	}
	data := make([]byte, 0, len(o.Script))
	for _, p := range pushes {
		data = append(data, p...)
	}

	var title string
	var memo payload.Field
	if text := string(data); text != "" && isPrintable(text) {
		title = "Memo: " + text
		memo = payload.NewTextField("Memo", text)
	} else {
		title = "OP_RETURN Data"
		memo = payload.NewTextField("Data", scriptHex(data))
	}
	expanded := []payload.Field{memo}
	if o.Value != 0 {
		burned, err := btcAmountField("Burned Amount", o.Value)
		if err != nil {
			return nil, err
		}
		expanded = append(expanded, burned)
	}

	return []payload.Field{payload.NewPreviewLayoutField(payload.PreviewLayoutParams{
		Label:     ins.Label,
		Fallback:  title,
		Title:     title,
		Subtitle:  "Data Output",
		Condensed: []payload.Field{memo},
		Expanded:  expanded,
	})}, nil
}

func isPrintable(s string) bool {
	return !strings.ContainsFunc(s, func(r rune) bool { return r < 0x20 || r > 0x7e })
}

// UnknownOutputField renders an output whose script no visualizer understood.
func UnknownOutputField(ins visualizer.Instruction, _ error) payload.Field {
	o, err := visualizer.ArgAt[Output](0).Get(ins)
	if err != nil {
		return payload.NewTextField(ins.Label, scriptHex(ins.Data))
	}
	title := scriptTypeName(o.Class) + " Output"
	expanded := []payload.Field{payload.NewTextField("Script", scriptHex(o.Script))}
	if amount, err := btcAmountField("Amount", o.Value); err == nil {
		expanded = append([]payload.Field{amount}, expanded...)
	}

	return payload.NewPreviewLayoutField(payload.PreviewLayoutParams{
		Label:    ins.Label,
		Fallback: outputFallback(o),
		Title:    title,
		Subtitle: fmt.Sprintf("%d sat", int64(o.Value)),
		Expanded: expanded,
	})
}
