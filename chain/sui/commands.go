package sui

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/block-vision/sui-go-sdk/models"

	"github.com/smartcontractkit/visualsign-go/payload"
	"github.com/smartcontractkit/visualsign-go/registry"
	"github.com/smartcontractkit/visualsign-go/visualizer"
)

const (
	// SUICoinType is the coin type of the gas coin.
	SUICoinType = "0x2::sui::SUI"

	// suiDecimals is the number of decimals of SUI: one SUI is 1e9 MIST.
	suiDecimals = 9
)

var packageNames = map[string]string{
	"0x1": "Move Stdlib",
	"0x2": "Sui Framework",
	"0x3": "Sui System",

	CetusPackage:    "Cetus CLMM",
	SuilendPackage:  "Suilend",
	MomentumPackage: "Momentum",
}

// suiAmountField shows MIST in SUI. A registry entry for the SUI coin type takes
// precedence over the built-in decimals.
func suiAmountField(ctx *visualizer.Context, label string, mist uint64) (payload.Field, error) {
	return coinTypeAmountField(ctx, label, SUICoinType, new(big.Int).SetUint64(mist))
}

// coinTypeAmountField shows raw units of coinType. SUI falls back to its built-in
// decimals; other coins unknown to the registry show raw units.
func coinTypeAmountField(ctx *visualizer.Context, label, coinType string, raw *big.Int) (payload.Field, error) {
	if coinType == SUICoinType {
		if _, ok := ctx.Registry.Lookup(ctx.ChainID, SUICoinType); !ok {
			return payload.NewAmountField(label, registry.FormatUnits(raw, suiDecimals), "SUI")
		}
	}

	return ctx.TokenAmountField(label, coinType, raw, "units")
}

func mistField(label string, mist uint64) (payload.Field, error) {
	return payload.NewAmountField(label, strconv.FormatUint(mist, 10), "MIST")
}

// coinAmountField shows an amount split off coin. Only the gas coin has a known type;
// amounts of other coins are raw units.
func coinAmountField(ctx *visualizer.Context, label string, coin Value, amount uint64) (payload.Field, error) {
	if coin.IsGasCoin() {
		return suiAmountField(ctx, label, amount)
	}

	return payload.NewAmountField(label, strconv.FormatUint(amount, 10), "units")
}

// valueField shows an object input as an address and anything else as text.
func valueField(label string, v Value) payload.Field {
	if id, err := v.ObjectID(); err == nil {
		return payload.NewAddressField(label, string(id), "")
	}

	return payload.NewTextField(label, v.String())
}

func displayValue(v Value) string {
	if id, err := v.ObjectID(); err == nil {
		return truncateAddress(id)
	}

	return v.String()
}

func commandFallback(title string, ins visualizer.Instruction) string {
	return fmt.Sprintf("Command: %s\nData: %s", title, hex.EncodeToString(ins.Data))
}

// commandLayout wraps the fields of one command in a preview layout. The summary is the
// condensed view and heads the expanded one.
func commandLayout(ins visualizer.Instruction, title, subtitle string, details ...payload.Field) payload.Field {
	head := payload.NewTextField("Summary", strings.TrimSpace(title+" "+subtitle))

	return payload.NewPreviewLayoutField(payload.PreviewLayoutParams{
		Label:     ins.Label,
		Fallback:  commandFallback(title, ins),
		Title:     title,
		Subtitle:  subtitle,
		Condensed: []payload.Field{head},
		Expanded:  append([]payload.Field{head}, details...),
	})
}

// Visualizers returns the built-in command visualizers in registration order.
func Visualizers() []visualizer.Visualizer {
	return []visualizer.Visualizer{
		TransferVisualizer(),
		SplitCoinsVisualizer(),
		MergeCoinsVisualizer(),
		PublishVisualizer(),
		NativeStakingVisualizer(),
		CetusVisualizer(),
		SuilendVisualizer(),
		MomentumVisualizer(),
	}
}

// TransferVisualizer renders TransferObjects, one layout per transferred object. Coins
// split off in an earlier command are shown with their amount.
func TransferVisualizer() visualizer.Visualizer {
	return visualizer.New("sui-transfer-objects", []visualizer.Key{CommandKey(CommandTransferObjects)}, visualizeTransfer)
}

func visualizeTransfer(ctx *visualizer.Context, ins visualizer.Instruction) ([]payload.Field, error) {
	target, err := visualizer.ArgAt[Value](0).Get(ins)
	if err != nil {
		return nil, err
	}
	recipient, err := target.Address()
	if err != nil {
		return nil, err
	}
	if len(ins.Args) < 2 {
		return nil, fmt.Errorf("%w: transferred objects", visualizer.ErrMissingData)
	}

	fields := make([]payload.Field, 0, len(ins.Args)-1)
	for i := 1; i < len(ins.Args); i++ {
		object, err := visualizer.ArgAt[Value](i).Get(ins)
		if err != nil {
			return nil, err
		}
		f, err := transferField(ctx, ins, object, recipient)
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)
	}

	return fields, nil
}

func transferField(ctx *visualizer.Context, ins visualizer.Instruction, object Value, recipient models.SuiAddress) (payload.Field, error) {
	var title string
	var details []payload.Field
	if coin, amount, ok := object.Coin(); ok {
		amountField, err := coinAmountField(ctx, "Amount", coin, amount)
		if err != nil {
			return payload.Field{}, err
		}
		title = "Transfer " + amountField.FallbackText
		details = []payload.Field{amountField, valueField("Coin", coin)}
	} else {
		title = "Transfer Object"
		if object.IsGasCoin() {
			title = "Transfer Gas Coin"
		}
		details = []payload.Field{valueField("Object", object)}
	}

	sender := models.SuiAddress(ctx.Sender)
	route := fmt.Sprintf("From %s to %s", truncateAddress(sender), truncateAddress(recipient))
	head := payload.NewTextField("Summary", title+" "+strings.ToLower(route[:1])+route[1:])
	expanded := append([]payload.Field{
		head,
		payload.NewAddressField("From", ctx.Sender, ""),
		payload.NewAddressField("To", string(recipient), ""),
	}, details...)

	return payload.NewPreviewLayoutField(payload.PreviewLayoutParams{
		Label:     "Transfer Command",
		Fallback:  title,
		Title:     title,
		Subtitle:  route,
		Condensed: []payload.Field{head},
		Expanded:  expanded,
	}), nil
}

// SplitCoinsVisualizer renders SplitCoins with the split amounts.
func SplitCoinsVisualizer() visualizer.Visualizer {
	return visualizer.New("sui-split-coins", []visualizer.Key{CommandKey(CommandSplitCoins)}, visualizeSplit)
}

func visualizeSplit(ctx *visualizer.Context, ins visualizer.Instruction) ([]payload.Field, error) {
	coin, err := visualizer.ArgAt[Value](0).Get(ins)
	if err != nil {
		return nil, err
	}
	if len(ins.Args) < 2 {
		return nil, fmt.Errorf("%w: split amounts", visualizer.ErrMissingData)
	}

	details := []payload.Field{valueField("Coin", coin)}
	for i := 1; i < len(ins.Args); i++ {
		v, err := visualizer.ArgAt[Value](i).Get(ins)
		if err != nil {
			return nil, err
		}
		amount, err := v.U64()
		if err != nil {
			return nil, err
		}
		f, err := coinAmountField(ctx, fmt.Sprintf("Amount %d", i), coin, amount)
		if err != nil {
			return nil, err
		}
		details = append(details, f)
	}

	title := fmt.Sprintf("Split %d coins", len(ins.Args)-1)
	if len(details) == 2 {
		title = "Split " + details[1].FallbackText
	}

	return []payload.Field{commandLayout(ins, title, "from "+displayValue(coin), details...)}, nil
}

// MergeCoinsVisualizer renders MergeCoins.
func MergeCoinsVisualizer() visualizer.Visualizer {
	return visualizer.New("sui-merge-coins", []visualizer.Key{CommandKey(CommandMergeCoins)}, visualizeMerge)
}

func visualizeMerge(_ *visualizer.Context, ins visualizer.Instruction) ([]payload.Field, error) {
	destination, err := visualizer.ArgAt[Value](0).Get(ins)
	if err != nil {
		return nil, err
	}
	if len(ins.Args) < 2 {
		return nil, fmt.Errorf("%w: merged coins", visualizer.ErrMissingData)
	}

	details := []payload.Field{valueField("Destination", destination)}
	for i := 1; i < len(ins.Args); i++ {
		v, err := visualizer.ArgAt[Value](i).Get(ins)
		if err != nil {
			return nil, err
		}
		details = append(details, valueField(fmt.Sprintf("Coin %d", i), v))
	}
	title := fmt.Sprintf("Merge %d coins", len(ins.Args)-1)

	return []payload.Field{commandLayout(ins, title, "into "+displayValue(destination), details...)}, nil
}

// PublishVisualizer renders Publish and Upgrade.
func PublishVisualizer() visualizer.Visualizer {
	keys := []visualizer.Key{CommandKey(CommandPublish), CommandKey(CommandUpgrade)}

	return visualizer.New("sui-publish", keys, visualizePublish)
}

func visualizePublish(_ *visualizer.Context, ins visualizer.Instruction) ([]payload.Field, error) {
	upgrade := ins.Key == CommandKey(CommandUpgrade)
	offset := 0
	if upgrade {
		offset = 1
	}
	modules, err := visualizer.ArgAt[[][]byte](offset).Get(ins)
	if err != nil {
		return nil, err
	}
	deps, err := visualizer.ArgAt[[]models.SuiAddress](offset + 1).Get(ins)
	if err != nil {
		return nil, err
	}

	title := "Publish Package"
	var details []payload.Field
	if upgrade {
		ticket, err := visualizer.ArgAt[Value](0).Get(ins)
		if err != nil {
			return nil, err
		}
		title = "Upgrade Package"
		details = append(details,
			payload.NewAddressField("Package", ins.Program, ""),
			valueField("Upgrade Ticket", ticket),
		)
	}
	count, err := payload.NewNumberField("Modules", strconv.Itoa(len(modules)), "modules")
	if err != nil {
		return nil, err
	}
	details = append(details, count)
	for i, dep := range deps {
		details = append(details, payload.NewAddressField(fmt.Sprintf("Dependency %d", i+1), string(dep), packageNames[ShortAddress(dep)]))
	}

	return []payload.Field{commandLayout(ins, title, fmt.Sprintf("with %d modules", len(modules)), details...)}, nil
}

// UnknownCommandField renders a command no visualizer could interpret: the call target,
// type arguments, arguments and the command bytes.
func UnknownCommandField(ins visualizer.Instruction, _ error) payload.Field {
	title := ins.Key.Function
	subtitle := "Command"
	var details []payload.Field
	if ins.Key.Package != CommandPackage {
		title = ins.Key.Package + "::" + ins.Key.Module + "::" + ins.Key.Function
		subtitle = "Move Call"
		details = append(details,
			payload.NewAddressField("Package", ins.Program, packageNames[ins.Key.Package]),
			payload.NewTextField("Module", ins.Key.Module),
			payload.NewTextField("Function", ins.Key.Function),
		)
	}
	for i, t := range ins.TypeArgs {
		details = append(details, payload.NewTextField(fmt.Sprintf("Type Argument %d", i+1), t))
	}
	for i, a := range ins.Args {
		if v, ok := a.(Value); ok {
			details = append(details, payload.NewTextField(fmt.Sprintf("Argument %d", i+1), v.String()))
		}
	}
	if len(ins.Data) > 0 {
		details = append(details, payload.NewTextField("Command Data", hex.EncodeToString(ins.Data)))
	}

	return commandLayout(ins, title, subtitle, details...)
}
