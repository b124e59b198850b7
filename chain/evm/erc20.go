package evm

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/smartcontractkit/visualsign-go/payload"
	"github.com/smartcontractkit/visualsign-go/visualizer"
)

const erc20JSON = `[
	{"type":"function","name":"transfer","inputs":[{"name":"to","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]},
	{"type":"function","name":"approve","inputs":[{"name":"spender","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]},
	{"type":"function","name":"transferFrom","inputs":[{"name":"from","type":"address"},{"name":"to","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]}
]`

var erc20ABI = mustParseABI(erc20JSON)

// ERC20Visualizer renders transfer, approve and transferFrom on any contract. Amounts of
// tokens known to the registry are shown in token units.
func ERC20Visualizer() visualizer.Visualizer {
	return visualizer.New("erc20", selectorKeys(visualizer.Any, erc20ABI), visualizeERC20)
}

func visualizeERC20(ctx *visualizer.Context, ins visualizer.Instruction) ([]payload.Field, error) {
	method, ins, err := unpackCall(erc20ABI, ins)
	if err != nil {
		return nil, err
	}

	token := common.HexToAddress(ins.Program)
	fields := []payload.Field{payload.NewAddressField("Token", token.Hex(), tokenName(ctx, token))}

	var (
		parties []string
		amount  *big.Int
	)
	switch method.Name {
	case "transfer":
		parties = []string{"Recipient"}
	case "approve":
		parties = []string{"Spender"}
	case "transferFrom":
		parties = []string{"From", "Recipient"}
	}
	for i, label := range parties {
		addr, err := visualizer.ArgAt[common.Address](i).Get(ins)
		if err != nil {
			return nil, err
		}
		fields = append(fields, payload.NewAddressField(label, addr.Hex(), contractName(ctx, addr)))
	}
	amount, err = visualizer.ArgAt[*big.Int](len(parties)).Get(ins)
	if err != nil {
		return nil, err
	}

	if method.Name == "approve" && isUnlimited(amount) {
		return append(fields, payload.NewTextField("Allowance", "Unlimited")), nil
	}
	label := "Amount"
	if method.Name == "approve" {
		label = "Allowance"
	}
	amountField, err := ctx.TokenAmountField(label, token.Hex(), amount, "units")
	if err != nil {
		return nil, err
	}

	return append(fields, amountField), nil
}
