package aptos

import (
	"errors"
	"fmt"

	aptoslib "github.com/aptos-labs/aptos-go-sdk"
	"github.com/aptos-labs/aptos-go-sdk/bcs"

	"github.com/smartcontractkit/visualsign-go/visualizer"
)

// PayloadPackage is the Package of dispatch keys of payloads other than entry functions.
const PayloadPackage = "aptos"

// EntryKey returns the dispatch key of an entry function, e.g. ("0x1", "coin", "transfer").
func EntryKey(module aptoslib.ModuleId, function string) visualizer.Key {
	return visualizer.NewKey(module.Address.String(), module.Name, function)
}

// Transaction is a decoded Aptos transaction.
type Transaction struct {
	Raw    *aptoslib.RawTransaction
	Signed bool
}

// DecodeTransaction decodes a BCS RawTransaction or SignedTransaction. Trailing bytes are
// rejected.
func DecodeTransaction(raw []byte) (tx *Transaction, err error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: empty transaction", visualizer.ErrStructuralDecode)
	}
	defer func() {
		if r := recover(); r != nil {
			tx = nil
			err = fmt.Errorf("%w: %v", visualizer.ErrStructuralDecode, r)
		}
	}()

	var rawTx aptoslib.RawTransaction
	rawErr := deserialize(raw, &rawTx)
	if rawErr == nil {
		tx = &Transaction{Raw: &rawTx}
	} else {
		var signed aptoslib.SignedTransaction
		if err := deserialize(raw, &signed); err != nil {
			return nil, fmt.Errorf("%w: %w", visualizer.ErrStructuralDecode, errors.Join(rawErr, err))
		}
		tx = &Transaction{Raw: signed.Transaction, Signed: true}
	}
	if tx.Raw == nil || tx.Raw.Payload.Payload == nil {
		return nil, fmt.Errorf("%w: transaction has no payload", visualizer.ErrStructuralDecode)
	}

	return tx, nil
}

func deserialize(b []byte, v bcs.Unmarshaler) error {
	des := bcs.NewDeserializer(b)
	des.Struct(v)
	if err := des.Error(); err != nil {
		return err
	}
	if n := des.Remaining(); n > 0 {
		return fmt.Errorf("%d trailing bytes", n)
	}

	return nil
}

// Instructions returns the single dispatchable instruction of the transaction payload.
// Entry functions carry the *aptoslib.EntryFunction as their only argument.
func Instructions(tx *Transaction) []visualizer.Instruction {
	impl := tx.Raw.Payload.Payload
	ins := visualizer.Instruction{
		Key:   visualizer.ProgramKey(PayloadPackage, "payload"),
		Label: "Payload",
		Args:  []any{impl},
	}
	if data, err := bcs.Serialize(impl); err == nil {
		ins.Data = data
	}
	switch p := impl.(type) {
	case *aptoslib.EntryFunction:
		ins.Key = EntryKey(p.Module, p.Function)
		ins.Program = p.Module.Address.String()
		ins.Label = "Entry Function"
	case *aptoslib.Script:
		ins.Key = visualizer.ProgramKey(PayloadPackage, "script")
		ins.Label = "Script"
	}

	return []visualizer.Instruction{ins}
}

func decodeAddressArg(b []byte) (aptoslib.AccountAddress, error) {
	var addr aptoslib.AccountAddress
	if err := deserialize(b, &addr); err != nil {
		return addr, fmt.Errorf("%w: address argument: %w", visualizer.ErrMissingData, err)
	}

	return addr, nil
}

func decodeU64Arg(b []byte) (uint64, error) {
	des := bcs.NewDeserializer(b)
	v := des.U64()
	if err := des.Error(); err != nil {
		return 0, fmt.Errorf("%w: u64 argument: %w", visualizer.ErrMissingData, err)
	}
	if n := des.Remaining(); n > 0 {
		return 0, fmt.Errorf("%w: u64 argument has %d trailing bytes", visualizer.ErrMissingData, n)
	}

	return v, nil
}
