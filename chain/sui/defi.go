package sui

import (
	"fmt"
	"maps"
	"math/big"
	"slices"
	"strconv"
	"strings"

	"github.com/block-vision/sui-go-sdk/models"

	"github.com/smartcontractkit/visualsign-go/payload"
	"github.com/smartcontractkit/visualsign-go/visualizer"
)

// argKind is how a Move call argument is decoded and shown.
type argKind int

const (
	argNumber    argKind = iota // pure u64
	argLiquidity                // pure u128
	argTick                     // pure u32 holding a signed tick index
	argFlag                     // pure bool
	argAmount                   // pure u64 amount of a coin type
	argCoin                     // coin object, with its amount when split off in the transaction
	argObject                   // object input
	argType                     // type argument, shown in full
)

// moveArg is one displayed argument of a Move call. For argType, index is the type
// argument index.
type moveArg struct {
	label string
	index int
	kind  argKind
	// coin is the type argument index of the coin of an argAmount or argCoin.
	coin int
}

// moveCallPreset renders a Move call from a fixed argument layout. The title is the
// protocol and action, followed by the headline amount when there is one, else by the
// symbol of the coin type argument when showCoin is set.
type moveCallPreset struct {
	action   string
	headline string
	showCoin bool
	coin     int
	args     []moveArg
}

func (p moveCallPreset) render(ctx *visualizer.Context, ins visualizer.Instruction, protocol string) ([]payload.Field, error) {
	title := protocol + " " + p.action
	named := false
	details := []payload.Field{payload.NewAddressField("User", ctx.Sender, "")}
	for _, a := range p.args {
		f, err := a.field(ctx, ins)
		if err != nil {
			return nil, err
		}
		details = append(details, f)
		if _, ok := f.Value.(payload.AmountV2); ok && a.label == p.headline {
			title += " " + f.FallbackText
			named = true
		}
	}
	if p.showCoin && !named {
		coinType, err := typeArgAt(ins, p.coin)
		if err != nil {
			return nil, err
		}
		title += " (" + coinSymbol(ctx, coinType) + ")"
	}

	return []payload.Field{commandLayout(ins, title, senderSubtitle(ctx), details...)}, nil
}

func (a moveArg) field(ctx *visualizer.Context, ins visualizer.Instruction) (payload.Field, error) {
	switch a.kind {
	case argNumber:
		n, err := pureArg(ins, a.index, Value.U64)
		if err != nil {
			return payload.Field{}, err
		}

		return payload.NewNumberField(a.label, strconv.FormatUint(n, 10), "")
	case argLiquidity:
		n, err := pureArg(ins, a.index, Value.U128)
		if err != nil {
			return payload.Field{}, err
		}

		return payload.NewNumberField(a.label, n.String(), "")
	case argTick:
		n, err := pureArg(ins, a.index, Value.U32)
		if err != nil {
			return payload.Field{}, err
		}

		return payload.NewNumberField(a.label, strconv.Itoa(int(int32(n))), "")
	case argFlag:
		b, err := pureArg(ins, a.index, Value.Bool)
		if err != nil {
			return payload.Field{}, err
		}

		return payload.NewTextField(a.label, strconv.FormatBool(b)), nil
	case argAmount:
		n, err := pureArg(ins, a.index, Value.U64)
		if err != nil {
			return payload.Field{}, err
		}

		return typeArgAmountField(ctx, ins, a.label, a.coin, n)
	case argCoin:
		v, err := visualizer.ArgAt[Value](a.index).Get(ins)
		if err != nil {
			return payload.Field{}, err
		}
		if _, amount, ok := v.Coin(); ok {
			return typeArgAmountField(ctx, ins, a.label, a.coin, amount)
		}

		return valueField(a.label, v), nil
	case argObject:
		v, err := visualizer.ArgAt[Value](a.index).Get(ins)
		if err != nil {
			return payload.Field{}, err
		}

		return valueField(a.label, v), nil
	case argType:
		t, err := typeArgAt(ins, a.index)
		if err != nil {
			return payload.Field{}, err
		}

		return payload.NewTextField(a.label, t), nil
	default:
		return payload.Field{}, fmt.Errorf("unknown argument kind %d", a.kind)
	}
}

// swap trades coinIn for coinOut. amount is exact on the input side when exactIn and on
// the output side otherwise; limit, when set, bounds the other side.
type swap struct {
	coinIn, coinOut string
	exactIn         bool
	amount          uint64
	limit           *uint64
	sqrtPriceLimit  *big.Int
}

func (s swap) render(ctx *visualizer.Context, ins visualizer.Instruction, protocol string, extra ...payload.Field) ([]payload.Field, error) {
	exactLabel, limitLabel, exactCoin, limitCoin := "Output Amount", "Maximum Input Amount", s.coinOut, s.coinIn
	if s.exactIn {
		exactLabel, limitLabel, exactCoin, limitCoin = "Input Amount", "Minimum Output Amount", s.coinIn, s.coinOut
	}
	exact, err := coinTypeAmountField(ctx, exactLabel, exactCoin, new(big.Int).SetUint64(s.amount))
	if err != nil {
		return nil, err
	}
	details := []payload.Field{
		payload.NewAddressField("User", ctx.Sender, ""),
		payload.NewTextField("Input Coin", s.coinIn),
		payload.NewTextField("Output Coin", s.coinOut),
		exact,
	}

	var summary string
	switch {
	case s.limit != nil:
		limit, err := coinTypeAmountField(ctx, limitLabel, limitCoin, new(big.Int).SetUint64(*s.limit))
		if err != nil {
			return nil, err
		}
		details = append(details, limit)
		if s.exactIn {
			summary = fmt.Sprintf("Swap %s for at least %s", exact.FallbackText, limit.FallbackText)
		} else {
			summary = fmt.Sprintf("Swap at most %s for %s", limit.FallbackText, exact.FallbackText)
		}
	case s.exactIn:
		summary = fmt.Sprintf("Swap %s for %s", exact.FallbackText, coinSymbol(ctx, s.coinOut))
	default:
		summary = fmt.Sprintf("Swap %s for %s", coinSymbol(ctx, s.coinIn), exact.FallbackText)
	}
	if s.sqrtPriceLimit != nil {
		f, err := payload.NewNumberField("Sqrt Price Limit", s.sqrtPriceLimit.String(), "")
		if err != nil {
			return nil, err
		}
		details = append(details, f)
	}
	details = append(details, extra...)

	return []payload.Field{commandLayout(ins, protocol+" "+summary, senderSubtitle(ctx), details...)}, nil
}

// pairSwap builds a swap between the first two type arguments of a pool call.
func pairSwap(ins visualizer.Instruction, aToB, exactIn bool, amount uint64) (swap, error) {
	a, err := typeArgAt(ins, 0)
	if err != nil {
		return swap{}, err
	}
	b, err := typeArgAt(ins, 1)
	if err != nil {
		return swap{}, err
	}
	s := swap{coinIn: a, coinOut: b, exactIn: exactIn, amount: amount}
	if !aToB {
		s.coinIn, s.coinOut = b, a
	}

	return s, nil
}

func pureArg[T any](ins visualizer.Instruction, i int, decode func(Value) (T, error)) (T, error) {
	v, err := visualizer.ArgAt[Value](i).Get(ins)
	if err != nil {
		var zero T
		return zero, err
	}

	return decode(v)
}

func typeArgAt(ins visualizer.Instruction, i int) (string, error) {
	if i >= len(ins.TypeArgs) {
		return "", fmt.Errorf("%w: type argument %d of %s", visualizer.ErrMissingData, i, ins.Key)
	}

	return ins.TypeArgs[i], nil
}

func typeArgAmountField(ctx *visualizer.Context, ins visualizer.Instruction, label string, coin int, amount uint64) (payload.Field, error) {
	coinType, err := typeArgAt(ins, coin)
	if err != nil {
		return payload.Field{}, err
	}

	return coinTypeAmountField(ctx, label, coinType, new(big.Int).SetUint64(amount))
}

// coinSymbol names coinType: its registry symbol, else the struct name, e.g. "SUI" for
// "0x2::sui::SUI".
func coinSymbol(ctx *visualizer.Context, coinType string) string {
	if md, ok := ctx.Registry.Lookup(ctx.ChainID, coinType); ok {
		return md.Symbol
	}
	name, _, _ := strings.Cut(coinType, "<")
	if i := strings.LastIndex(name, "::"); i >= 0 {
		name = name[i+2:]
	}

	return name
}

func senderSubtitle(ctx *visualizer.Context) string {
	return "From " + truncateAddress(models.SuiAddress(ctx.Sender))
}

func sortedKeys[V any](m map[visualizer.Key]V) []visualizer.Key {
	return slices.SortedFunc(maps.Keys(m), func(a, b visualizer.Key) int {
		return strings.Compare(a.String(), b.String())
	})
}

// presetFor returns the preset of a dispatched call.
func presetFor(presets map[visualizer.Key]moveCallPreset, ins visualizer.Instruction) (moveCallPreset, error) {
	p, ok := presets[ins.Key]
	if !ok {
		return moveCallPreset{}, fmt.Errorf("%w: no layout for %s", visualizer.ErrMissingData, ins.Key)
	}

	return p, nil
}
