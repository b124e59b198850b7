package visualizer

import (
	"encoding/binary"
	"fmt"
)

// Instruction is one chain native instruction, call or command presented for dispatch.
type Instruction struct {
	// Key is the identity used to select a visualizer.
	Key Key
	// Index is the position of the instruction in its transaction or parent call.
	Index int
	// Label is the display label; Dispatch defaults it to "Instruction <Index+1>".
	Label string
	// Program is the program id, contract or package address, for display.
	Program string
	// Data holds the raw instruction bytes or calldata.
	Data []byte
	// Accounts lists referenced accounts in instruction order.
	Accounts []string
	// Args holds arguments already decoded by the chain decoder.
	Args []any
	// TypeArgs holds type arguments of Move calls.
	TypeArgs []string
}

// Indexer extracts one typed value from an instruction. Indexers fail with ErrMissingData
// when the value is absent.
type Indexer[T any] func(ins Instruction) (T, error)

// Get applies the indexer.
func (ix Indexer[T]) Get(ins Instruction) (T, error) { return ix(ins) }

// AccountAt returns the account at position i.
func AccountAt(i int) Indexer[string] {
	return func(ins Instruction) (string, error) {
		if i < 0 || i >= len(ins.Accounts) {
			return "", fmt.Errorf("%w: account %d of %d", ErrMissingData, i, len(ins.Accounts))
		}

		return ins.Accounts[i], nil
	}
}

// TypeArgAt returns the type argument at position i.
func TypeArgAt(i int) Indexer[string] {
	return func(ins Instruction) (string, error) {
		if i < 0 || i >= len(ins.TypeArgs) {
			return "", fmt.Errorf("%w: type argument %d of %d", ErrMissingData, i, len(ins.TypeArgs))
		}

		return ins.TypeArgs[i], nil
	}
}

// ArgAt returns the decoded argument at position i as a T.
func ArgAt[T any](i int) Indexer[T] {
	return func(ins Instruction) (T, error) {
		var zero T
		if i < 0 || i >= len(ins.Args) {
			return zero, fmt.Errorf("%w: argument %d of %d", ErrMissingData, i, len(ins.Args))
		}
		v, ok := ins.Args[i].(T)
		if !ok {
			return zero, fmt.Errorf("%w: argument %d is %T, want %T", ErrMissingData, i, ins.Args[i], zero)
		}

		return v, nil
	}
}

// BytesAt returns n bytes of instruction data starting at offset.
func BytesAt(offset, n int) Indexer[[]byte] {
	return func(ins Instruction) ([]byte, error) {
		if offset < 0 || n < 0 || offset+n > len(ins.Data) {
			return nil, fmt.Errorf("%w: %d bytes at offset %d of %d", ErrMissingData, n, offset, len(ins.Data))
		}

		return ins.Data[offset : offset+n], nil
	}
}

// Uint32LE returns the little endian uint32 at offset.
func Uint32LE(offset int) Indexer[uint32] {
	return func(ins Instruction) (uint32, error) {
		b, err := BytesAt(offset, 4)(ins)
		if err != nil {
			return 0, err
		}

		return binary.LittleEndian.Uint32(b), nil
	}
}

// Uint64LE returns the little endian uint64 at offset.
func Uint64LE(offset int) Indexer[uint64] {
	return func(ins Instruction) (uint64, error) {
		b, err := BytesAt(offset, 8)(ins)
		if err != nil {
			return 0, err
		}

		return binary.LittleEndian.Uint64(b), nil
	}
}
