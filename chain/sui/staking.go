package sui

import (
	"fmt"

	"github.com/block-vision/sui-go-sdk/models"

	"github.com/smartcontractkit/visualsign-go/payload"
	"github.com/smartcontractkit/visualsign-go/visualizer"
)

const (
	systemPackage = "0x3"
	systemModule  = "sui_system"
)

// NativeStakingVisualizer renders sui_system stake requests and withdrawals.
func NativeStakingVisualizer() visualizer.Visualizer {
	keys := []visualizer.Key{
		visualizer.NewKey(systemPackage, systemModule, "request_add_stake"),
		visualizer.NewKey(systemPackage, systemModule, "request_withdraw_stake"),
	}

	return visualizer.New("sui-native-staking", keys, visualizeStaking)
}

func visualizeStaking(ctx *visualizer.Context, ins visualizer.Instruction) ([]payload.Field, error) {
	if ins.Key.Function == "request_withdraw_stake" {
		return visualizeWithdrawStake(ctx, ins)
	}

	// request_add_stake(state, coin, validator)
	coin, err := visualizer.ArgAt[Value](1).Get(ins)
	if err != nil {
		return nil, err
	}
	validatorArg, err := visualizer.ArgAt[Value](2).Get(ins)
	if err != nil {
		return nil, err
	}
	validator, err := validatorArg.Address()
	if err != nil {
		return nil, err
	}

	title := "Stake Command"
	var amountField payload.Field
	if _, mist, ok := coin.Coin(); ok {
		title = fmt.Sprintf("Stake: %d MIST", mist)
		if amountField, err = mistField("Amount", mist); err != nil {
			return nil, err
		}
	} else {
		amountField = valueField("Coin", coin)
	}
	from := payload.NewAddressField("From", ctx.Sender, "")

	return []payload.Field{payload.NewPreviewLayoutField(payload.PreviewLayoutParams{
		Label:     "Stake Command",
		Fallback:  title,
		Title:     title,
		Subtitle:  fmt.Sprintf("From %s to validator %s", truncateAddress(models.SuiAddress(ctx.Sender)), truncateAddress(validator)),
		Condensed: []payload.Field{amountField},
		Expanded:  []payload.Field{from, payload.NewAddressField("Validator", string(validator), ""), amountField},
	})}, nil
}

func visualizeWithdrawStake(ctx *visualizer.Context, ins visualizer.Instruction) ([]payload.Field, error) {
	// request_withdraw_stake(state, staked_sui)
	staked, err := visualizer.ArgAt[Value](1).Get(ins)
	if err != nil {
		return nil, err
	}
	from := payload.NewAddressField("From", ctx.Sender, "")
	const title = "Withdraw Stake"

	return []payload.Field{payload.NewPreviewLayoutField(payload.PreviewLayoutParams{
		Label:     "Withdraw Command",
		Fallback:  title,
		Title:     title,
		Subtitle:  "From " + truncateAddress(models.SuiAddress(ctx.Sender)),
		Condensed: []payload.Field{from},
		Expanded:  []payload.Field{from, valueField("Staked SUI", staked)},
	})}, nil
}
