package evm

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/smartcontractkit/visualsign-go/payload"
	"github.com/smartcontractkit/visualsign-go/visualizer"
)

var (
	ErrInvalidABI   = errors.New("invalid contract abi")
	ErrABISignature = errors.New("abi signature verification failed")
)

// ABIHash returns the keccak256 hash a contract ABI is signed over.
func ABIHash(abiJSON string) common.Hash {
	return crypto.Keccak256Hash([]byte(abiJSON))
}

// VerifyABISignature checks that signature is a secp256k1 signature of ABIHash(abiJSON) by
// signer. Both 0/1 and 27/28 recovery ids are accepted.
func VerifyABISignature(abiJSON string, signature []byte, signer string) error {
	want, err := ParseAddress(signer)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrABISignature, err)
	}
	if len(signature) != crypto.SignatureLength {
		return fmt.Errorf("%w: signature is %d bytes", ErrABISignature, len(signature))
	}

	sig := append([]byte(nil), signature...)
	if sig[crypto.RecoveryIDOffset] >= 27 {
		sig[crypto.RecoveryIDOffset] -= 27
	}
	pub, err := crypto.SigToPub(ABIHash(abiJSON).Bytes(), sig)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrABISignature, err)
	}
	if got := crypto.PubkeyToAddress(*pub); got != want {
		return fmt.Errorf("%w: signed by %s, want %s", ErrABISignature, got.Hex(), want.Hex())
	}

	return nil
}

// NewABIVisualizer returns a visualizer for the methods of a user supplied ABI on contract.
// Selectors already claimed in builtins are left to the built-in visualizers.
func NewABIVisualizer(abiJSON string, contract common.Address, builtins *visualizer.Dispatcher) (visualizer.Visualizer, error) {
	parsed, err := abi.JSON(strings.NewReader(abiJSON))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidABI, err)
	}

	var keys []visualizer.Key
	for _, k := range selectorKeys(keyAddress(contract), parsed) {
		if builtins != nil {
			if _, ok := builtins.Match(k); ok {
				continue
			}
		}
		keys = append(keys, k)
	}

	return visualizer.New("abi:"+keyAddress(contract), keys, func(_ *visualizer.Context, ins visualizer.Instruction) ([]payload.Field, error) {
		method, ins, err := unpackCall(parsed, ins)
		if err != nil {
			return nil, err
		}

		expanded := []payload.Field{payload.NewTextField("Function", method.Sig)}
		for i, input := range method.Inputs {
			name := input.Name
			if name == "" {
				name = fmt.Sprintf("arg%d", i)
			}
			v, err := visualizer.ArgAt[any](i).Get(ins)
			if err != nil {
				return nil, err
			}
			expanded = append(expanded, argField(name, v))
		}

		return []payload.Field{payload.NewPreviewLayoutField(payload.PreviewLayoutParams{
			Label:     ins.Label,
			Fallback:  method.Sig,
			Title:     method.Name,
			Subtitle:  "Contract ABI",
			Condensed: expanded[:1],
			Expanded:  expanded,
		})}, nil
	}), nil
}
