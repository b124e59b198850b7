package solana

import (
	"fmt"

	sollib "github.com/gagliardetto/solana-go"
	solsystem "github.com/gagliardetto/solana-go/programs/system"

	"github.com/smartcontractkit/visualsign-go/payload"
	"github.com/smartcontractkit/visualsign-go/visualizer"
)

// SystemVisualizer renders transfers, account creation and nonce instructions of the
// System Program.
func SystemVisualizer() visualizer.Visualizer {
	keys := programKeys(sollib.SystemProgramID,
		"00000000", // CreateAccount
		"01000000", // Assign
		"02000000", // Transfer
		"04000000", // AdvanceNonceAccount
		"05000000", // WithdrawNonceAccount
		"08000000", // Allocate
	)

	return visualizer.New("solana-system", keys, visualizeSystem)
}

func visualizeSystem(_ *visualizer.Context, ins visualizer.Instruction) ([]payload.Field, error) {
	inst, err := solsystem.DecodeInstruction(accountMetas(ins.Accounts), ins.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: system instruction: %w", visualizer.ErrMissingData, err)
	}

	switch impl := inst.Impl.(type) {
	case *solsystem.Transfer:
		return lamportsInstruction(ins, "Transfer", impl.Lamports, "From", "To")
	case *solsystem.WithdrawNonceAccount:
		return lamportsInstruction(ins, "Withdraw Nonce Account", impl.Lamports, "Nonce Account", "To")
	case *solsystem.CreateAccount:
		if impl.Lamports == nil || impl.Space == nil || impl.Owner == nil {
			return nil, fmt.Errorf("%w: create account parameters", visualizer.ErrMissingData)
		}
		fields, err := accountFields(ins, "Payer", "New Account")
		if err != nil {
			return nil, err
		}
		rent, err := amountField("Rent", *impl.Lamports)
		if err != nil {
			return nil, err
		}
		space, err := payload.NewNumberField("Space", fmt.Sprint(*impl.Space), "bytes")
		if err != nil {
			return nil, err
		}
		owner := impl.Owner.String()
		fields = append(fields, rent, space, payload.NewAddressField("Owner Program", owner, programNames[owner]))

		return instructionLayout(ins, "Create Account", fields...), nil
	case *solsystem.Assign:
		if impl.Owner == nil {
			return nil, fmt.Errorf("%w: assign owner", visualizer.ErrMissingData)
		}
		fields, err := accountFields(ins, "Account")
		if err != nil {
			return nil, err
		}
		owner := impl.Owner.String()
		fields = append(fields, payload.NewAddressField("Owner Program", owner, programNames[owner]))

		return instructionLayout(ins, "Assign Account", fields...), nil
	case *solsystem.Allocate:
		if impl.Space == nil {
			return nil, fmt.Errorf("%w: allocate space", visualizer.ErrMissingData)
		}
		fields, err := accountFields(ins, "Account")
		if err != nil {
			return nil, err
		}
		space, err := payload.NewNumberField("Space", fmt.Sprint(*impl.Space), "bytes")
		if err != nil {
			return nil, err
		}

		return instructionLayout(ins, "Allocate Space", append(fields, space)...), nil
	case *solsystem.AdvanceNonceAccount:
		fields, err := accountFields(ins, "Nonce Account")
		if err != nil {
			return nil, err
		}

		return instructionLayout(ins, "Advance Nonce Account", fields...), nil
	}

	return nil, fmt.Errorf("%w: unsupported system instruction %T", visualizer.ErrMissingData, inst.Impl)
}

func lamportsInstruction(ins visualizer.Instruction, verb string, lamports *uint64, from, to string) ([]payload.Field, error) {
	if lamports == nil {
		return nil, fmt.Errorf("%w: lamports", visualizer.ErrMissingData)
	}
	fields, err := accountFields(ins, from, to)
	if err != nil {
		return nil, err
	}
	amount, err := amountField("Amount", *lamports)
	if err != nil {
		return nil, err
	}
	summary := fmt.Sprintf("%s %s SOL", verb, formatSOL(*lamports))

	return instructionLayout(ins, summary, append(fields, amount)...), nil
}
