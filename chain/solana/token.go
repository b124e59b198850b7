package solana

import (
	"fmt"
	"math/big"

	sollib "github.com/gagliardetto/solana-go"
	soltoken "github.com/gagliardetto/solana-go/programs/token"

	"github.com/smartcontractkit/visualsign-go/payload"
	"github.com/smartcontractkit/visualsign-go/registry"
	"github.com/smartcontractkit/visualsign-go/visualizer"
)

// tokenDiscriminators are the SPL Token instructions shared by the Token and Token-2022
// programs that the token visualizer renders.
var tokenDiscriminators = []string{
	"03", // Transfer
	"04", // Approve
	"07", // MintTo
	"08", // Burn
	"09", // CloseAccount
	"0c", // TransferChecked
}

// TokenVisualizer renders SPL Token and Token-2022 transfers, approvals, mints, burns and
// account closures. Amounts of mints known to the registry are shown in token units.
func TokenVisualizer() visualizer.Visualizer {
	keys := append(programKeys(sollib.TokenProgramID, tokenDiscriminators...), programKeys(sollib.Token2022ProgramID, tokenDiscriminators...)...)

	return visualizer.New("solana-spl-token", keys, visualizeToken)
}

type tokenLayout struct {
	verb     string
	accounts []string
	// mint is the index of the mint account, or -1 when the instruction does not name it.
	mint int
}

func visualizeToken(ctx *visualizer.Context, ins visualizer.Instruction) ([]payload.Field, error) {
	inst, err := soltoken.DecodeInstruction(accountMetas(ins.Accounts), ins.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: token instruction: %w", visualizer.ErrMissingData, err)
	}

	var (
		layout   tokenLayout
		amount   *uint64
		decimals *uint8
	)
	switch impl := inst.Impl.(type) {
	case *soltoken.Transfer:
		layout = tokenLayout{"Transfer", []string{"Source", "Destination", "Owner"}, -1}
		amount = impl.Amount
	case *soltoken.TransferChecked:
		layout = tokenLayout{"Transfer", []string{"Source", "Mint", "Destination", "Owner"}, 1}
		amount, decimals = impl.Amount, impl.Decimals
	case *soltoken.Approve:
		layout = tokenLayout{"Approve", []string{"Source", "Delegate", "Owner"}, -1}
		amount = impl.Amount
	case *soltoken.MintTo:
		layout = tokenLayout{"Mint", []string{"Mint", "Destination", "Mint Authority"}, 0}
		amount = impl.Amount
	case *soltoken.Burn:
		layout = tokenLayout{"Burn", []string{"Account", "Mint", "Owner"}, 1}
		amount = impl.Amount
	case *soltoken.CloseAccount:
		fields, err := accountFields(ins, "Account", "Destination", "Owner")
		if err != nil {
			return nil, err
		}

		return instructionLayout(ins, "Close Token Account", fields...), nil
	default:
		return nil, fmt.Errorf("%w: unsupported token instruction %T", visualizer.ErrMissingData, inst.Impl)
	}
	if amount == nil {
		return nil, fmt.Errorf("%w: token amount", visualizer.ErrMissingData)
	}

	fields, err := accountFields(ins, layout.accounts...)
	if err != nil {
		return nil, err
	}
	var mint string
	if layout.mint >= 0 {
		mint = ins.Accounts[layout.mint]
		if md, ok := ctx.Registry.Lookup(ctx.ChainID, mint); ok {
			fields[layout.mint] = payload.NewAddressField("Mint", mint, md.Symbol)
		}
	}
	amountField, err := tokenAmountField(ctx, mint, *amount, decimals)
	if err != nil {
		return nil, err
	}
	summary := layout.verb + " " + amountField.FallbackText

	return instructionLayout(ins, summary, append(fields, amountField)...), nil
}

// tokenAmountField formats amount with the registry metadata of mint, else with the
// decimals carried by the instruction, else as raw units.
func tokenAmountField(ctx *visualizer.Context, mint string, amount uint64, decimals *uint8) (payload.Field, error) {
	raw := new(big.Int).SetUint64(amount)
	if mint != "" {
		if _, _, ok := ctx.Registry.FormatAmount(ctx.ChainID, mint, raw); ok {
			return ctx.TokenAmountField("Amount", mint, raw, "")
		}
	}
	if decimals != nil {
		return payload.NewAmountField("Amount", registry.FormatUnits(raw, *decimals), "")
	}

	return payload.NewAmountField("Amount", raw.String(), "units")
}
