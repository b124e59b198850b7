package solana

import (
	"encoding/hex"
	"fmt"

	bin "github.com/gagliardetto/binary"
	sollib "github.com/gagliardetto/solana-go"

	"github.com/smartcontractkit/visualsign-go/payload"
	"github.com/smartcontractkit/visualsign-go/visualizer"
)

// DecodeMessage decodes a serialized transaction, signed or with empty signature slots,
// or a bare legacy or v0 message.
func DecodeMessage(raw []byte) (msg *sollib.Message, err error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: empty transaction", visualizer.ErrStructuralDecode)
	}
	// solana-go indexes into its input without bounds checks on some paths.
	defer func() {
		if r := recover(); r != nil {
			msg, err = nil, fmt.Errorf("%w: %v", visualizer.ErrStructuralDecode, r)
		}
	}()

	if tx, ok := decodeTransaction(raw); ok {
		msg = &tx.Message
	} else {
		msg = new(sollib.Message)
		dec := bin.NewBinDecoder(raw)
		if err := msg.UnmarshalWithDecoder(dec); err != nil {
			return nil, fmt.Errorf("%w: solana message: %w", visualizer.ErrStructuralDecode, err)
		}
		if dec.Remaining() > 0 {
			return nil, fmt.Errorf("%w: %d trailing bytes", visualizer.ErrStructuralDecode, dec.Remaining())
		}
	}

	if err := checkMessage(msg); err != nil {
		return nil, err
	}

	return msg, nil
}

// decodeTransaction accepts raw as a transaction only when it consumes every byte and
// carries no signatures or exactly the required number.
func decodeTransaction(raw []byte) (tx *sollib.Transaction, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			tx, ok = nil, false
		}
	}()

	dec := bin.NewBinDecoder(raw)
	tx, err := sollib.TransactionFromDecoder(dec)
	if err != nil || dec.Remaining() > 0 {
		return nil, false
	}
	if n := len(tx.Signatures); n != 0 && n != int(tx.Message.Header.NumRequiredSignatures) {
		return nil, false
	}

	return tx, true
}

func checkMessage(msg *sollib.Message) error {
	if len(msg.AccountKeys) == 0 {
		return fmt.Errorf("%w: message has no account keys", visualizer.ErrStructuralDecode)
	}
	total := len(msg.AccountKeys) + lookupCount(msg)
	for i, ix := range msg.Instructions {
		if int(ix.ProgramIDIndex) >= len(msg.AccountKeys) {
			return fmt.Errorf("%w: instruction %d program index %d out of range", visualizer.ErrStructuralDecode, i, ix.ProgramIDIndex)
		}
		for _, a := range ix.Accounts {
			if int(a) >= total {
				return fmt.Errorf("%w: instruction %d account index %d out of range", visualizer.ErrStructuralDecode, i, a)
			}
		}
	}

	return nil
}

func lookupCount(msg *sollib.Message) int {
	var n int
	for _, l := range msg.AddressTableLookups {
		n += len(l.WritableIndexes) + len(l.ReadonlyIndexes)
	}

	return n
}

// lookupAccounts names the accounts loaded from address lookup tables, in runtime order:
// every writable entry, then every readonly entry.
func lookupAccounts(msg *sollib.Message) []string {
	var writable, readonly []string
	for _, l := range msg.AddressTableLookups {
		for _, i := range l.WritableIndexes {
			writable = append(writable, fmt.Sprintf("%s[%d]", l.AccountKey, i))
		}
		for _, i := range l.ReadonlyIndexes {
			readonly = append(readonly, fmt.Sprintf("%s[%d]", l.AccountKey, i))
		}
	}

	return append(writable, readonly...)
}

// Instructions returns the dispatchable instructions of msg.
func Instructions(msg *sollib.Message) []visualizer.Instruction {
	accounts := make([]string, 0, len(msg.AccountKeys)+lookupCount(msg))
	for _, k := range msg.AccountKeys {
		accounts = append(accounts, k.String())
	}
	accounts = append(accounts, lookupAccounts(msg)...)

	out := make([]visualizer.Instruction, 0, len(msg.Instructions))
	for i, ix := range msg.Instructions {
		program := msg.AccountKeys[ix.ProgramIDIndex]
		ins := visualizer.Instruction{
			Key:     instructionKey(program, ix.Data),
			Index:   i,
			Program: program.String(),
			Data:    ix.Data,
		}
		for _, a := range ix.Accounts {
			ins.Accounts = append(ins.Accounts, accounts[a])
		}
		out = append(out, ins)
	}

	return out
}

// discriminatorLen is the length of the instruction discriminator of each known program.
// Programs not listed are assumed to use 8 byte Anchor discriminators.
var discriminatorLen = map[sollib.PublicKey]int{
	sollib.SystemProgramID:                    4,
	ComputeBudgetProgramID:                    1,
	sollib.TokenProgramID:                     1,
	sollib.Token2022ProgramID:                 1,
	sollib.SPLAssociatedTokenAccountProgramID: 1,
	MemoProgramID:                             0,
	MemoV1ProgramID:                           0,
	StakePoolProgramID:                        1,
}

func instructionKey(program sollib.PublicKey, data []byte) visualizer.Key {
	n, ok := discriminatorLen[program]
	if !ok {
		n = 8
	}
	n = min(n, len(data))

	return visualizer.ProgramKey(program.String(), hex.EncodeToString(data[:n]))
}

func messageVersion(msg *sollib.Message) string {
	if msg.IsVersioned() {
		return "v0"
	}

	return "legacy"
}

func endorsedParams(msg *sollib.Message) payload.EndorsedParams {
	keys := make([]string, 0, len(msg.AccountKeys))
	for _, k := range msg.AccountKeys {
		keys = append(keys, k.String())
	}
	lookups := make([]any, 0, len(msg.AddressTableLookups))
	for _, l := range msg.AddressTableLookups {
		lookups = append(lookups, map[string]any{
			"account_key":      l.AccountKey.String(),
			"readonly_indexes": []byte(l.ReadonlyIndexes),
			"writable_indexes": []byte(l.WritableIndexes),
		})
	}

	return payload.EndorsedParams{
		"account_keys":          keys,
		"address_table_lookups": lookups,
		"header": map[string]any{
			"num_readonly_signed_accounts":   msg.Header.NumReadonlySignedAccounts,
			"num_readonly_unsigned_accounts": msg.Header.NumReadonlyUnsignedAccounts,
			"num_required_signatures":        msg.Header.NumRequiredSignatures,
		},
		"recent_blockhash": msg.RecentBlockhash.String(),
		"version":          messageVersion(msg),
	}
}
