package solana

import (
	"fmt"

	bin "github.com/gagliardetto/binary"

	"github.com/smartcontractkit/visualsign-go/payload"
	"github.com/smartcontractkit/visualsign-go/visualizer"
)

// Compute Budget Program instructions, identified by their first byte.
const (
	requestHeapFrame               = 0x01
	setComputeUnitLimit            = 0x02
	setComputeUnitPrice            = 0x03
	setLoadedAccountsDataSizeLimit = 0x04
)

// ComputeBudgetVisualizer renders compute unit limits and priority fees.
func ComputeBudgetVisualizer() visualizer.Visualizer {
	return visualizer.New("solana-compute-budget", programKeys(ComputeBudgetProgramID, "01", "02", "03", "04"), visualizeComputeBudget)
}

func visualizeComputeBudget(_ *visualizer.Context, ins visualizer.Instruction) ([]payload.Field, error) {
	if len(ins.Data) == 0 {
		return nil, fmt.Errorf("%w: compute budget discriminator", visualizer.ErrMissingData)
	}
	dec := bin.NewBinDecoder(ins.Data[1:])

	var (
		summary string
		detail  payload.Field
		err     error
	)
	switch ins.Data[0] {
	case setComputeUnitPrice:
		var price uint64
		if price, err = dec.ReadUint64(bin.LE); err != nil {
			break
		}
		summary = fmt.Sprintf("Set Compute Unit Price: %d micro-lamports per compute unit", price)
		detail, err = payload.NewNumberField("Price per Compute Unit", fmt.Sprint(price), "micro-lamports")
	default:
		var n uint32
		if n, err = dec.ReadUint32(bin.LE); err != nil {
			break
		}
		summary, detail, err = computeBudgetU32(ins.Data[0], n)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: compute budget: %w", visualizer.ErrMissingData, err)
	}

	return instructionLayout(ins, summary, detail), nil
}

func computeBudgetU32(discriminator byte, n uint32) (string, payload.Field, error) {
	var format, label, unit string
	switch discriminator {
	case requestHeapFrame:
		format, label, unit = "Request Heap Frame: %d bytes", "Heap Frame Size", "bytes"
	case setComputeUnitLimit:
		format, label, unit = "Set Compute Unit Limit: %d units", "Compute Unit Limit", "units"
	case setLoadedAccountsDataSizeLimit:
		format, label, unit = "Set Loaded Accounts Data Size Limit: %d bytes", "Data Size Limit", "bytes"
	default:
		return "", payload.Field{}, fmt.Errorf("unknown instruction 0x%02x", discriminator)
	}
	f, err := payload.NewNumberField(label, fmt.Sprint(n), unit)

	return fmt.Sprintf(format, n), f, err
}
