package sui

import (
	"slices"

	"github.com/smartcontractkit/visualsign-go/payload"
	"github.com/smartcontractkit/visualsign-go/visualizer"
)

// CetusPackage is the Cetus CLMM integration package on mainnet.
const CetusPackage = "0xb2db7142fa83210a7d78d9c12ac49c043b3cbbd482224fea6e3da00aa5a5ae2d"

func cetusKey(module, function string) visualizer.Key {
	return visualizer.NewKey(CetusPackage, module, function)
}

// cetusPoolSwap locates the swap arguments of a pool script: by_amount_in sits at first,
// followed by the amount, the amount limit and the sqrt price limit.
type cetusPoolSwap struct {
	aToB  bool
	first int
}

var cetusPoolSwaps = map[visualizer.Key]cetusPoolSwap{
	cetusKey("pool_script", "swap_a2b"):                 {aToB: true, first: 3},
	cetusKey("pool_script", "swap_b2a"):                 {first: 3},
	cetusKey("pool_script", "swap_a2b_with_partner"):    {aToB: true, first: 4},
	cetusKey("pool_script", "swap_b2a_with_partner"):    {first: 4},
	cetusKey("pool_script_v2", "swap_a2b"):              {aToB: true, first: 4},
	cetusKey("pool_script_v2", "swap_b2a"):              {first: 4},
	cetusKey("pool_script_v2", "swap_a2b_with_partner"): {aToB: true, first: 5},
	cetusKey("pool_script_v2", "swap_b2a_with_partner"): {first: 5},
}

var cetusRouterSwap = cetusKey("router", "swap")

var (
	cetusPair = []moveArg{
		{label: "Coin A", index: 0, kind: argType},
		{label: "Coin B", index: 1, kind: argType},
	}
	cetusPosition = []moveArg{
		{label: "Pool", index: 1, kind: argObject},
		{label: "Position", index: 2, kind: argObject},
	}
	cetusOpenPosition = []moveArg{
		{label: "Pool", index: 1, kind: argObject},
		{label: "Lower Tick", index: 2, kind: argTick},
		{label: "Upper Tick", index: 3, kind: argTick},
		{label: "Amount A", index: 6, kind: argAmount},
		{label: "Amount B", index: 7, kind: argAmount, coin: 1},
		{label: "Fix Amount A", index: 8, kind: argFlag},
	}
)

var cetusPresets = map[visualizer.Key]moveCallPreset{
	cetusKey("pool_script", "close_position"): {action: "Close Position", args: slices.Concat(cetusPair, cetusPosition, []moveArg{
		{label: "Minimum Amount A", index: 3, kind: argAmount},
		{label: "Minimum Amount B", index: 4, kind: argAmount, coin: 1},
	})},
	cetusKey("pool_script", "remove_liquidity"): {action: "Remove Liquidity", args: slices.Concat(cetusPair, cetusPosition, []moveArg{
		{label: "Liquidity", index: 3, kind: argLiquidity},
		{label: "Minimum Amount A", index: 4, kind: argAmount},
		{label: "Minimum Amount B", index: 5, kind: argAmount, coin: 1},
	})},
	cetusKey("pool_script", "open_position_with_liquidity_with_all"): {
		action: "Open Position With Liquidity", args: slices.Concat(cetusPair, cetusOpenPosition),
	},
	cetusKey("pool_script_v2", "open_position_with_liquidity_by_fix_coin"): {
		action: "Open Position With Liquidity", args: slices.Concat(cetusPair, cetusOpenPosition),
	},
	cetusKey("pool_script_v2", "add_liquidity_by_fix_coin"): {action: "Add Liquidity", args: slices.Concat(cetusPair, cetusPosition, []moveArg{
		{label: "Amount A", index: 5, kind: argAmount},
		{label: "Amount B", index: 6, kind: argAmount, coin: 1},
		{label: "Fix Amount A", index: 7, kind: argFlag},
	})},
	cetusKey("pool_script_v2", "collect_fee"):    {action: "Collect Fee", args: slices.Concat(cetusPair, cetusPosition)},
	cetusKey("pool_script_v3", "collect_fee"):    {action: "Collect Fee", args: slices.Concat(cetusPair, cetusPosition)},
	cetusKey("pool_script_v2", "collect_reward"): {
		action: "Collect Reward", showCoin: true, coin: 2,
		args: slices.Concat(cetusPair, cetusPosition, []moveArg{{label: "Reward Coin", index: 2, kind: argType}}),
	},
	cetusKey("pool_script_v3", "collect_reward"): {
		action: "Collect Reward", showCoin: true, coin: 2,
		args: slices.Concat(cetusPair, cetusPosition, []moveArg{{label: "Reward Coin", index: 2, kind: argType}}),
	},
	cetusKey("router", "check_coin_threshold"): {action: "Check Coin Threshold", headline: "Minimum Balance", args: []moveArg{
		{label: "Coin Type", index: 0, kind: argType},
		{label: "Coin", index: 0, kind: argObject},
		{label: "Minimum Balance", index: 1, kind: argAmount},
	}},
	cetusKey("utils", "transfer_coin_to_sender"): {action: "Transfer to Sender", showCoin: true, args: []moveArg{
		{label: "Coin Type", index: 0, kind: argType},
		{label: "Coin", index: 0, kind: argCoin},
	}},
}

// CetusVisualizer renders Cetus CLMM swaps and liquidity management. Coin A and coin B
// are the first two type arguments of every pool call.
func CetusVisualizer() visualizer.Visualizer {
	keys := append(sortedKeys(cetusPoolSwaps), cetusRouterSwap)
	keys = append(keys, sortedKeys(cetusPresets)...)

	return visualizer.New("sui-cetus", keys, visualizeCetus)
}

func visualizeCetus(ctx *visualizer.Context, ins visualizer.Instruction) ([]payload.Field, error) {
	if layout, ok := cetusPoolSwaps[ins.Key]; ok {
		return visualizeCetusPoolSwap(ctx, ins, layout)
	}
	if ins.Key == cetusRouterSwap {
		return visualizeCetusRouterSwap(ctx, ins)
	}
	p, err := presetFor(cetusPresets, ins)
	if err != nil {
		return nil, err
	}

	return p.render(ctx, ins, "Cetus")
}

func visualizeCetusPoolSwap(ctx *visualizer.Context, ins visualizer.Instruction, layout cetusPoolSwap) ([]payload.Field, error) {
	byAmountIn, err := pureArg(ins, layout.first, Value.Bool)
	if err != nil {
		return nil, err
	}
	amount, err := pureArg(ins, layout.first+1, Value.U64)
	if err != nil {
		return nil, err
	}
	limit, err := pureArg(ins, layout.first+2, Value.U64)
	if err != nil {
		return nil, err
	}
	sqrtPriceLimit, err := pureArg(ins, layout.first+3, Value.U128)
	if err != nil {
		return nil, err
	}
	s, err := pairSwap(ins, layout.aToB, byAmountIn, amount)
	if err != nil {
		return nil, err
	}
	s.limit = &limit
	s.sqrtPriceLimit = sqrtPriceLimit

	return s.render(ctx, ins, "Cetus")
}

// visualizeCetusRouterSwap renders router::swap, which carries no amount limit: the
// router checks it in a later check_coin_threshold call.
func visualizeCetusRouterSwap(ctx *visualizer.Context, ins visualizer.Instruction) ([]payload.Field, error) {
	aToB, err := pureArg(ins, 4, Value.Bool)
	if err != nil {
		return nil, err
	}
	byAmountIn, err := pureArg(ins, 5, Value.Bool)
	if err != nil {
		return nil, err
	}
	amount, err := pureArg(ins, 6, Value.U64)
	if err != nil {
		return nil, err
	}
	sqrtPriceLimit, err := pureArg(ins, 7, Value.U128)
	if err != nil {
		return nil, err
	}
	useAll, err := (moveArg{label: "Use All Coin", index: 8, kind: argFlag}).field(ctx, ins)
	if err != nil {
		return nil, err
	}
	s, err := pairSwap(ins, aToB, byAmountIn, amount)
	if err != nil {
		return nil, err
	}
	s.sqrtPriceLimit = sqrtPriceLimit

	return s.render(ctx, ins, "Cetus", useAll)
}
