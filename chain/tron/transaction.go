package tron

import (
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/fbsobreira/gotron-sdk/pkg/proto/core"
	"google.golang.org/protobuf/proto"

	"github.com/smartcontractkit/visualsign-go/visualizer"
)

// ContractPackage is the Package of dispatch keys of system contracts. Their Function is
// the contract type, e.g. "TransferContract". Smart contract calls are keyed by contract
// address and selector instead.
const ContractPackage = "tron"

// ContractKey returns the dispatch key of a system contract type.
func ContractKey(t core.Transaction_Contract_ContractType) visualizer.Key {
	return visualizer.ProgramKey(ContractPackage, t.String())
}

// Transaction is a decoded Tron transaction.
type Transaction struct {
	Raw    *core.TransactionRaw
	Signed bool
}

// DecodeTransaction decodes a protobuf Transaction or a bare Transaction.raw, the bytes
// whose hash is signed. Unknown fields are rejected.
func DecodeTransaction(raw []byte) (*Transaction, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: empty transaction", visualizer.ErrStructuralDecode)
	}

	var tx core.Transaction
	txErr := unmarshalStrict(raw, &tx)
	if txErr == nil && tx.GetRawData() != nil && len(tx.GetRawData().GetContract()) > 0 {
		if err := checkRaw(tx.GetRawData()); err != nil {
			return nil, err
		}

		return &Transaction{Raw: tx.GetRawData(), Signed: len(tx.GetSignature()) > 0}, nil
	}

	var txRaw core.TransactionRaw
	if err := unmarshalStrict(raw, &txRaw); err != nil {
		return nil, fmt.Errorf("%w: %w", visualizer.ErrStructuralDecode, errors.Join(txErr, err))
	}
	if err := checkRaw(&txRaw); err != nil {
		return nil, err
	}

	return &Transaction{Raw: &txRaw}, nil
}

func unmarshalStrict(raw []byte, m proto.Message) error {
	if err := proto.Unmarshal(raw, m); err != nil {
		return err
	}
	if unknown := m.ProtoReflect().GetUnknown(); len(unknown) > 0 {
		return fmt.Errorf("%d bytes of unknown fields", len(unknown))
	}

	return nil
}

func checkRaw(raw *core.TransactionRaw) error {
	if len(raw.GetContract()) == 0 {
		return fmt.Errorf("%w: transaction has no contracts", visualizer.ErrStructuralDecode)
	}
	for i, c := range raw.GetContract() {
		if c.GetParameter() == nil {
			return fmt.Errorf("%w: contract %d has no parameter", visualizer.ErrStructuralDecode, i)
		}
		if got, want := string(c.GetParameter().MessageName()), "protocol."+c.GetType().String(); got != want {
			return fmt.Errorf("%w: contract %d of type %s carries %q", visualizer.ErrStructuralDecode, i, c.GetType(), got)
		}
	}
	if raw.GetFeeLimit() < 0 {
		return fmt.Errorf("%w: negative fee limit", visualizer.ErrStructuralDecode)
	}

	return nil
}

// Instructions returns one dispatchable instruction per contract. Args holds the decoded
// contract message; contracts whose parameter does not decode keep Args empty and are
// rendered opaquely.
func Instructions(tx *Transaction) []visualizer.Instruction {
	contracts := tx.Raw.GetContract()
	out := make([]visualizer.Instruction, 0, len(contracts))
	for i, c := range contracts {
		ins := visualizer.Instruction{
			Key:   ContractKey(c.GetType()),
			Index: i,
			Label: fmt.Sprintf("Contract %d", i+1),
			Data:  c.GetParameter().GetValue(),
		}
		msg, err := c.GetParameter().UnmarshalNew()
		if err == nil {
			ins.Args = []any{msg}
		}
		if trigger, ok := msg.(*core.TriggerSmartContract); ok && err == nil {
			if contract, err := EncodeAddress(trigger.GetContractAddress()); err == nil {
				ins.Program = contract
				ins.Key = visualizer.ProgramKey(contract, selector(trigger.GetData()))
				ins.Data = trigger.GetData()
			}
		}
		out = append(out, ins)
	}

	return out
}

func selector(data []byte) string {
	if len(data) < 4 {
		return ""
	}

	return hex.EncodeToString(data[:4])
}
