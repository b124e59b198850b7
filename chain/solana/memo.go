package solana

import (
	"unicode/utf8"

	"github.com/smartcontractkit/visualsign-go/payload"
	"github.com/smartcontractkit/visualsign-go/visualizer"
)

// MemoVisualizer renders the text of memo instructions. Memos that are not printable
// ASCII are left to the fallback.
func MemoVisualizer() visualizer.Visualizer {
	keys := append(programKeys(MemoProgramID, visualizer.Any), programKeys(MemoV1ProgramID, visualizer.Any)...)

	return visualizer.New("solana-memo", keys, visualizeMemo)
}

func visualizeMemo(_ *visualizer.Context, ins visualizer.Instruction) ([]payload.Field, error) {
	if len(ins.Data) == 0 || !utf8.Valid(ins.Data) || payload.ValidateCharset(string(ins.Data)) != nil {
		return nil, visualizer.ErrMissingData
	}
	memo := string(ins.Data)

	return instructionLayout(ins, "Memo: "+memo, payload.NewTextField("Memo", memo)), nil
}
