package sui

import (
	"github.com/smartcontractkit/visualsign-go/payload"
	"github.com/smartcontractkit/visualsign-go/visualizer"
)

// MomentumPackage is the Momentum CLMM package on mainnet.
const MomentumPackage = "0xcf60a40f45d46fc1e828871a647c1e25a0915dec860d2662eb10fdb382c3c1d1"

func momentumKey(module, function string) visualizer.Key {
	return visualizer.NewKey(MomentumPackage, module, function)
}

var momentumFlashSwap = momentumKey("trade", "flash_swap")

var (
	momentumPool  = moveArg{label: "Pool", index: 0, kind: argObject}
	momentumCoinX = moveArg{label: "Coin X", index: 0, kind: argType}
	momentumCoinY = moveArg{label: "Coin Y", index: 1, kind: argType}
)

var momentumPresets = map[visualizer.Key]moveCallPreset{
	momentumKey("trade", "flash_loan"): {action: "Flash Loan", args: []moveArg{
		momentumPool, momentumCoinX, momentumCoinY,
		{label: "Amount X", index: 1, kind: argAmount},
		{label: "Amount Y", index: 2, kind: argAmount, coin: 1},
	}},
	momentumKey("trade", "repay_flash_loan"):   {action: "Repay Flash Loan", args: []moveArg{momentumPool, momentumCoinX, momentumCoinY}},
	momentumKey("trade", "repay_flash_swap"):   {action: "Repay Flash Swap", args: []moveArg{momentumPool, momentumCoinX, momentumCoinY}},
	momentumKey("trade", "swap_receipt_debts"): {action: "Swap Receipt Debts", args: []moveArg{{label: "Receipt", index: 0, kind: argObject}}},
	momentumKey("liquidity", "open_position"):  {action: "Open Position", args: []moveArg{
		momentumPool, momentumCoinX, momentumCoinY,
		{label: "Lower Tick", index: 1, kind: argTick},
		{label: "Upper Tick", index: 2, kind: argTick},
	}},
	momentumKey("liquidity", "add_liquidity"): {action: "Add Liquidity", args: []moveArg{
		momentumPool, momentumCoinX, momentumCoinY,
		{label: "Position", index: 1, kind: argObject},
		{label: "Coin X Amount", index: 2, kind: argCoin},
		{label: "Coin Y Amount", index: 3, kind: argCoin, coin: 1},
		{label: "Minimum Amount X", index: 4, kind: argAmount},
		{label: "Minimum Amount Y", index: 5, kind: argAmount, coin: 1},
	}},
	momentumKey("liquidity", "remove_liquidity"): {action: "Remove Liquidity", args: []moveArg{
		momentumPool, momentumCoinX, momentumCoinY,
		{label: "Position", index: 1, kind: argObject},
		{label: "Liquidity", index: 2, kind: argLiquidity},
		{label: "Minimum Amount X", index: 3, kind: argAmount},
		{label: "Minimum Amount Y", index: 4, kind: argAmount, coin: 1},
	}},
	momentumKey("liquidity", "close_position"): {action: "Close Position", args: []moveArg{{label: "Position", index: 0, kind: argObject}}},
	momentumKey("collect", "fee"):              {action: "Collect Fee", args: []moveArg{
		momentumPool, momentumCoinX, momentumCoinY,
		{label: "Position", index: 1, kind: argObject},
	}},
	momentumKey("collect", "reward"): {action: "Collect Reward", showCoin: true, coin: 2, args: []moveArg{
		momentumPool,
		{label: "Reward Coin", index: 2, kind: argType},
		{label: "Position", index: 1, kind: argObject},
	}},
}

// MomentumVisualizer renders Momentum CLMM swaps, flash loans and position management.
// Pool calls take coin X and coin Y as their first two type arguments.
func MomentumVisualizer() visualizer.Visualizer {
	keys := append([]visualizer.Key{momentumFlashSwap}, sortedKeys(momentumPresets)...)

	return visualizer.New("sui-momentum", keys, visualizeMomentum)
}

func visualizeMomentum(ctx *visualizer.Context, ins visualizer.Instruction) ([]payload.Field, error) {
	if ins.Key == momentumFlashSwap {
		return visualizeMomentumSwap(ctx, ins)
	}
	p, err := presetFor(momentumPresets, ins)
	if err != nil {
		return nil, err
	}

	return p.render(ctx, ins, "Momentum")
}

// visualizeMomentumSwap renders trade::flash_swap(pool, is_x_to_y, exact_input,
// amount_specified, sqrt_price_limit, ...). The amount owed is settled by a later
// repay_flash_swap, so there is no limit to show.
func visualizeMomentumSwap(ctx *visualizer.Context, ins visualizer.Instruction) ([]payload.Field, error) {
	xToY, err := pureArg(ins, 1, Value.Bool)
	if err != nil {
		return nil, err
	}
	exactIn, err := pureArg(ins, 2, Value.Bool)
	if err != nil {
		return nil, err
	}
	amount, err := pureArg(ins, 3, Value.U64)
	if err != nil {
		return nil, err
	}
	sqrtPriceLimit, err := pureArg(ins, 4, Value.U128)
	if err != nil {
		return nil, err
	}
	pool, err := momentumPool.field(ctx, ins)
	if err != nil {
		return nil, err
	}
	s, err := pairSwap(ins, xToY, exactIn, amount)
	if err != nil {
		return nil, err
	}
	s.sqrtPriceLimit = sqrtPriceLimit

	return s.render(ctx, ins, "Momentum", pool)
}
