package solana

import (
	"fmt"

	sollib "github.com/gagliardetto/solana-go"

	"github.com/smartcontractkit/visualsign-go/payload"
	"github.com/smartcontractkit/visualsign-go/visualizer"
)

// AssociatedTokenAccountVisualizer renders associated token account creation. The legacy
// Create instruction carries no data at all.
func AssociatedTokenAccountVisualizer() visualizer.Visualizer {
	return visualizer.New("solana-associated-token-account",
		programKeys(sollib.SPLAssociatedTokenAccountProgramID, "", "00", "01"), visualizeATA)
}

func visualizeATA(ctx *visualizer.Context, ins visualizer.Instruction) ([]payload.Field, error) {
	summary := "Create Associated Token Account"
	if len(ins.Data) > 0 && ins.Data[0] == 0x01 {
		summary = "Create Associated Token Account (idempotent)"
	}

	fields, err := accountFields(ins, "Payer", "Associated Account", "Wallet", "Mint")
	if err != nil {
		return nil, err
	}
	mint := ins.Accounts[3]
	if md, ok := ctx.Registry.Lookup(ctx.ChainID, mint); ok {
		fields[3] = payload.NewAddressField("Mint", mint, md.Symbol)
		summary = fmt.Sprintf("%s for %s", summary, md.Symbol)
	}

	return instructionLayout(ins, summary, fields...), nil
}
