package bitcoin

import (
	"bytes"
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"

	"github.com/smartcontractkit/visualsign-go/visualizer"
)

// OutputPackage is the Package of every output dispatch key. The Function is the script
// class, e.g. "witness_v0_keyhash".
const (
	OutputPackage = "bitcoin"
	outputModule  = "output"
)

// OutputKey returns the dispatch key of outputs paying to scripts of class.
func OutputKey(class txscript.ScriptClass) visualizer.Key {
	return visualizer.NewKey(OutputPackage, outputModule, class.String())
}

// Output is one transaction output with its script classified against a network.
type Output struct {
	Index        int
	Value        btcutil.Amount
	Script       []byte
	Class        txscript.ScriptClass
	Addresses    []btcutil.Address
	RequiredSigs int
}

// DecodeTransaction decodes a serialized transaction, with or without witness data. Every
// byte must be consumed, and the transaction must have inputs and outputs with values in
// the valid money range.
func DecodeTransaction(raw []byte) (tx *wire.MsgTx, err error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: empty transaction", visualizer.ErrStructuralDecode)
	}
	defer func() {
		if r := recover(); r != nil {
			tx, err = nil, fmt.Errorf("%w: %v", visualizer.ErrStructuralDecode, r)
		}
	}()

	tx = wire.NewMsgTx(wire.TxVersion)
	rd := bytes.NewReader(raw)
	if err := tx.Deserialize(rd); err != nil {
		return nil, fmt.Errorf("%w: %w", visualizer.ErrStructuralDecode, err)
	}
	if rd.Len() != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes", visualizer.ErrStructuralDecode, rd.Len())
	}
	if len(tx.TxIn) == 0 {
		return nil, fmt.Errorf("%w: transaction has no inputs", visualizer.ErrStructuralDecode)
	}
	if len(tx.TxOut) == 0 {
		return nil, fmt.Errorf("%w: transaction has no outputs", visualizer.ErrStructuralDecode)
	}

	var total btcutil.Amount
	for i, out := range tx.TxOut {
		v := btcutil.Amount(out.Value)
		if v < 0 || v > btcutil.MaxSatoshi {
			return nil, fmt.Errorf("%w: output %d value %d out of range", visualizer.ErrStructuralDecode, i, out.Value)
		}
		total += v
		if total > btcutil.MaxSatoshi {
			return nil, fmt.Errorf("%w: total output value out of range", visualizer.ErrStructuralDecode)
		}
	}

	return tx, nil
}

// Outputs classifies the output scripts of tx. Scripts that do not parse are nonstandard.
func Outputs(tx *wire.MsgTx, params *chaincfg.Params) []Output {
	out := make([]Output, 0, len(tx.TxOut))
	for i, txOut := range tx.TxOut {
		o := Output{Index: i, Value: btcutil.Amount(txOut.Value), Script: txOut.PkScript}
		class, addrs, required, err := txscript.ExtractPkScriptAddrs(txOut.PkScript, params)
		if err != nil {
			class, addrs, required = txscript.NonStandardTy, nil, 0
		}
		o.Class, o.Addresses, o.RequiredSigs = class, addrs, required
		out = append(out, o)
	}

	return out
}

// Instructions returns one dispatchable instruction per output.
func Instructions(outputs []Output) []visualizer.Instruction {
	out := make([]visualizer.Instruction, 0, len(outputs))
	for _, o := range outputs {
		out = append(out, visualizer.Instruction{
			Key:   OutputKey(o.Class),
			Index: o.Index,
			Label: fmt.Sprintf("Output %d", o.Index+1),
			Data:  o.Script,
			Args:  []any{o},
		})
	}

	return out
}
