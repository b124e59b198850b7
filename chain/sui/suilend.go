package sui

import (
	"slices"

	"github.com/smartcontractkit/visualsign-go/payload"
	"github.com/smartcontractkit/visualsign-go/visualizer"
)

// SuilendPackage is the Suilend lending package on mainnet.
const SuilendPackage = "0xdf6df8a1e16c58b66d5c432cc6a5a8981c9982f111723ec0894d152be57b3e7e"

const suilendModule = "lending_market"

// Lending market calls take the market type and the reserve coin type as type arguments.
const suilendCoin = 1

func suilendKey(function string) visualizer.Key {
	return visualizer.NewKey(SuilendPackage, suilendModule, function)
}

var (
	suilendMarket  = moveArg{label: "Lending Market", index: 0, kind: argObject}
	suilendReserve = moveArg{label: "Reserve Index", index: 1, kind: argNumber}
	suilendCoinArg = moveArg{label: "Coin Type", index: suilendCoin, kind: argType}
)

// suilendReserveCall is the layout of calls on one reserve, followed by extra arguments.
func suilendReserveCall(action string, extra ...moveArg) moveCallPreset {
	return moveCallPreset{
		action:   action,
		showCoin: true,
		coin:     suilendCoin,
		args:     slices.Concat([]moveArg{suilendMarket, suilendReserve, suilendCoinArg}, extra),
	}
}

var suilendPresets = map[visualizer.Key]moveCallPreset{
	suilendKey("create_obligation"): {action: "Create Obligation", args: []moveArg{suilendMarket}},
	suilendKey("borrow_request"):    withHeadline(suilendReserveCall("Borrow",
		moveArg{label: "Obligation Owner Cap", index: 2, kind: argObject},
		moveArg{label: "Amount", index: 4, kind: argAmount, coin: suilendCoin},
	), "Amount"),
	suilendKey("repay"): withHeadline(suilendReserveCall("Repay",
		moveArg{label: "Obligation", index: 2, kind: argObject},
		moveArg{label: "Amount", index: 4, kind: argCoin, coin: suilendCoin},
	), "Amount"),
	suilendKey("deposit_liquidity_and_mint_ctokens"): withHeadline(suilendReserveCall("Deposit",
		moveArg{label: "Amount", index: 3, kind: argCoin, coin: suilendCoin},
	), "Amount"),
	suilendKey("deposit_ctokens_into_obligation"): suilendReserveCall("Deposit cTokens",
		moveArg{label: "Obligation Owner Cap", index: 2, kind: argObject},
		moveArg{label: "cTokens", index: 4, kind: argObject},
	),
	suilendKey("withdraw_ctokens"): suilendReserveCall("Withdraw cTokens",
		moveArg{label: "Obligation Owner Cap", index: 2, kind: argObject},
		moveArg{label: "cToken Amount", index: 4, kind: argNumber},
	),
	suilendKey("redeem_ctokens_and_withdraw_liquidity_request"): suilendReserveCall("Redeem cTokens",
		moveArg{label: "cTokens", index: 3, kind: argObject},
	),
	suilendKey("fulfill_liquidity_request"): suilendReserveCall("Fulfill Liquidity Request",
		moveArg{label: "Liquidity Request", index: 2, kind: argObject},
	),
	suilendKey("refresh_reserve_price"): suilendReserveCall("Refresh Reserve Price",
		moveArg{label: "Price Info", index: 3, kind: argObject},
	),
	suilendKey("claim_rewards"): {action: "Claim Rewards", showCoin: true, coin: suilendCoin, args: []moveArg{
		suilendMarket,
		{label: "Obligation Owner Cap", index: 1, kind: argObject},
		{label: "Reward Coin", index: suilendCoin, kind: argType},
		{label: "Reserve Index", index: 3, kind: argNumber},
		{label: "Reward Index", index: 4, kind: argNumber},
		{label: "Deposit Reward", index: 5, kind: argFlag},
	}},
	suilendKey("claim_rewards_and_deposit"): {action: "Claim Rewards and Deposit", showCoin: true, coin: suilendCoin, args: []moveArg{
		suilendMarket,
		{label: "Obligation", index: 1, kind: argObject},
		{label: "Reward Coin", index: suilendCoin, kind: argType},
		{label: "Reward Reserve Index", index: 3, kind: argNumber},
		{label: "Reward Index", index: 4, kind: argNumber},
		{label: "Deposit Reward", index: 5, kind: argFlag},
		{label: "Deposit Reserve Index", index: 6, kind: argNumber},
	}},
	suilendKey("rebalance_staker"): {action: "Rebalance Staker", args: []moveArg{
		suilendMarket,
		{label: "SUI Reserve Index", index: 1, kind: argNumber},
	}},
	suilendKey("unstake_sui_from_staker"): {action: "Unstake SUI from Staker", args: []moveArg{
		suilendMarket,
		{label: "SUI Reserve Index", index: 1, kind: argNumber},
		{label: "Liquidity Request", index: 2, kind: argObject},
	}},
}

func withHeadline(p moveCallPreset, label string) moveCallPreset {
	p.headline = label

	return p
}

// SuilendVisualizer renders Suilend lending market calls: deposits, borrows, repayments,
// withdrawals and reward claims.
func SuilendVisualizer() visualizer.Visualizer {
	return visualizer.New("sui-suilend", sortedKeys(suilendPresets), visualizeSuilend)
}

func visualizeSuilend(ctx *visualizer.Context, ins visualizer.Instruction) ([]payload.Field, error) {
	p, err := presetFor(suilendPresets, ins)
	if err != nil {
		return nil, err
	}

	return p.render(ctx, ins, "Suilend")
}
