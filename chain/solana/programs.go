package solana

import (
	"encoding/hex"
	"fmt"
	"math/big"

	sollib "github.com/gagliardetto/solana-go"

	"github.com/smartcontractkit/visualsign-go/payload"
	"github.com/smartcontractkit/visualsign-go/registry"
	"github.com/smartcontractkit/visualsign-go/visualizer"
)

// Program ids of the visualized programs. solana-go names the rest.
var (
	ComputeBudgetProgramID = sollib.ComputeBudget
	MemoProgramID          = sollib.MemoProgramID
	MemoV1ProgramID        = sollib.MustPublicKeyFromBase58("Memo1UhkJRfHyvLMcVucJwxXeuD728EqVDDwQDxFMNo")
	JupiterProgramID       = sollib.MustPublicKeyFromBase58("JUP6LkbZbjS1jKKwapdHNy74zcZ3tLUZoi5QNyVTaV4")
	StakePoolProgramID     = sollib.MustPublicKeyFromBase58("SPoo1Ku8WFXoNDMHPsrGSTSG1Y47rzgn41SLUNakuHy")
)

var programNames = map[string]string{
	sollib.SystemProgramID.String():                    "System Program",
	ComputeBudgetProgramID.String():                    "Compute Budget Program",
	sollib.TokenProgramID.String():                     "Token Program",
	sollib.Token2022ProgramID.String():                 "Token-2022 Program",
	sollib.SPLAssociatedTokenAccountProgramID.String(): "Associated Token Account Program",
	MemoProgramID.String():                             "Memo Program",
	MemoV1ProgramID.String():                           "Memo Program",
	JupiterProgramID.String():                          "Jupiter Aggregator v6",
	StakePoolProgramID.String():                        "Stake Pool Program",
}

// solDecimals is the number of decimals of SOL: one SOL is 1e9 lamports.
const solDecimals = 9

func formatSOL(lamports uint64) string {
	return registry.FormatUnits(new(big.Int).SetUint64(lamports), solDecimals)
}

// instructionFallback is the fallback text of every instruction layout: the program id and
// the hex of the instruction data.
func instructionFallback(ins visualizer.Instruction) string {
	return fmt.Sprintf("Program ID: %s\nData: %s", ins.Program, hex.EncodeToString(ins.Data))
}

// instructionLayout wraps the fields of one instruction in its preview layout. The summary
// is the title and the condensed view; the expanded view adds the program id, details and
// the raw instruction data.
func instructionLayout(ins visualizer.Instruction, summary string, details ...payload.Field) []payload.Field {
	head := payload.NewTextField("Instruction", summary)
	expanded := append([]payload.Field{head, payload.NewAddressField("Program ID", ins.Program, programNames[ins.Program])}, details...)
	if len(ins.Data) > 0 {
		expanded = append(expanded, payload.NewTextField("Instruction Data", hex.EncodeToString(ins.Data)))
	}

	return []payload.Field{payload.NewPreviewLayoutField(payload.PreviewLayoutParams{
		Label:     ins.Label,
		Fallback:  instructionFallback(ins),
		Title:     summary,
		Subtitle:  programNames[ins.Program],
		Condensed: []payload.Field{head},
		Expanded:  expanded,
	})}
}

// UnknownProgramField renders an instruction no visualizer could interpret.
func UnknownProgramField(ins visualizer.Instruction, _ error) payload.Field {
	name := programNames[ins.Program]
	if name == "" {
		name = ins.Program
	}

	return instructionLayout(ins, name)[0]
}

func amountField(label string, lamports uint64) (payload.Field, error) {
	return payload.NewAmountField(label, formatSOL(lamports), "SOL")
}

func accountField(ins visualizer.Instruction, label string, i int) (payload.Field, error) {
	a, err := visualizer.AccountAt(i).Get(ins)
	if err != nil {
		return payload.Field{}, err
	}

	return payload.NewAddressField(label, a, programNames[a]), nil
}

// accountFields renders the named accounts of ins in order.
func accountFields(ins visualizer.Instruction, labels ...string) ([]payload.Field, error) {
	fields := make([]payload.Field, 0, len(labels))
	for i, label := range labels {
		f, err := accountField(ins, label, i)
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)
	}

	return fields, nil
}

func programKeys(program sollib.PublicKey, discriminators ...string) []visualizer.Key {
	keys := make([]visualizer.Key, 0, len(discriminators))
	for _, d := range discriminators {
		keys = append(keys, visualizer.ProgramKey(program.String(), d))
	}

	return keys
}
