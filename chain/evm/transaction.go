package evm

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/smartcontractkit/visualsign-go/visualizer"
)

// Transaction is an EVM transaction as presented for signing. A signature, when present,
// is accepted and ignored.
type Transaction struct {
	Type       uint8
	ChainID    *big.Int
	Nonce      uint64
	GasPrice   *big.Int
	GasTipCap  *big.Int
	GasFeeCap  *big.Int
	Gas        uint64
	To         *common.Address
	Value      *big.Int
	Data       []byte
	AccessList types.AccessList
}

type legacyFields struct {
	Nonce    uint64
	GasPrice *big.Int
	Gas      uint64
	To       *common.Address `rlp:"nil"`
	Value    *big.Int
	Data     []byte
	Tail     []*big.Int `rlp:"tail"`
}

type accessListFields struct {
	ChainID    *big.Int
	Nonce      uint64
	GasPrice   *big.Int
	Gas        uint64
	To         *common.Address `rlp:"nil"`
	Value      *big.Int
	Data       []byte
	AccessList types.AccessList
	Signature  []*big.Int `rlp:"tail"`
}

type dynamicFeeFields struct {
	ChainID    *big.Int
	Nonce      uint64
	GasTipCap  *big.Int
	GasFeeCap  *big.Int
	Gas        uint64
	To         *common.Address `rlp:"nil"`
	Value      *big.Int
	Data       []byte
	AccessList types.AccessList
	Signature  []*big.Int `rlp:"tail"`
}

// DecodeTransaction decodes a legacy, EIP-2930 or EIP-1559 transaction. Blob and set code
// transactions are rejected.
func DecodeTransaction(raw []byte) (*Transaction, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: empty transaction", visualizer.ErrStructuralDecode)
	}
	if raw[0] > 0x7f {
		return decodeLegacy(raw)
	}

	switch raw[0] {
	case types.AccessListTxType:
		var f accessListFields
		if err := rlp.DecodeBytes(raw[1:], &f); err != nil {
			return nil, fmt.Errorf("%w: eip-2930 transaction: %w", visualizer.ErrStructuralDecode, err)
		}
		if err := checkSignature(f.Signature); err != nil {
			return nil, err
		}

		return &Transaction{
			Type:       types.AccessListTxType,
			ChainID:    f.ChainID,
			Nonce:      f.Nonce,
			GasPrice:   f.GasPrice,
			Gas:        f.Gas,
			To:         f.To,
			Value:      f.Value,
			Data:       f.Data,
			AccessList: f.AccessList,
		}, nil
	case types.DynamicFeeTxType:
		var f dynamicFeeFields
		if err := rlp.DecodeBytes(raw[1:], &f); err != nil {
			return nil, fmt.Errorf("%w: eip-1559 transaction: %w", visualizer.ErrStructuralDecode, err)
		}
		if err := checkSignature(f.Signature); err != nil {
			return nil, err
		}

		return &Transaction{
			Type:       types.DynamicFeeTxType,
			ChainID:    f.ChainID,
			Nonce:      f.Nonce,
			GasTipCap:  f.GasTipCap,
			GasFeeCap:  f.GasFeeCap,
			Gas:        f.Gas,
			To:         f.To,
			Value:      f.Value,
			Data:       f.Data,
			AccessList: f.AccessList,
		}, nil
	case types.BlobTxType:
		return nil, fmt.Errorf("%w: unsupported variant eip-4844", visualizer.ErrStructuralDecode)
	case types.SetCodeTxType:
		return nil, fmt.Errorf("%w: unsupported variant eip-7702", visualizer.ErrStructuralDecode)
	default:
		return nil, fmt.Errorf("%w: unknown transaction type 0x%02x", visualizer.ErrStructuralDecode, raw[0])
	}
}

func decodeLegacy(raw []byte) (*Transaction, error) {
	var f legacyFields
	if err := rlp.DecodeBytes(raw, &f); err != nil {
		return nil, fmt.Errorf("%w: legacy transaction: %w", visualizer.ErrStructuralDecode, err)
	}

	tx := &Transaction{
		Type:     types.LegacyTxType,
		Nonce:    f.Nonce,
		GasPrice: f.GasPrice,
		Gas:      f.Gas,
		To:       f.To,
		Value:    f.Value,
		Data:     f.Data,
	}

	switch len(f.Tail) {
	case 0:
	case 3:
		v, r, s := f.Tail[0], f.Tail[1], f.Tail[2]
		switch {
		case r.Sign() == 0 && s.Sign() == 0:
			// EIP-155 signing form: chain id, 0, 0.
			tx.ChainID = v
		case v.Cmp(big.NewInt(35)) >= 0:
			tx.ChainID = new(big.Int).Rsh(new(big.Int).Sub(v, big.NewInt(35)), 1)
		}
	default:
		return nil, fmt.Errorf("%w: legacy transaction has %d trailing elements", visualizer.ErrStructuralDecode, len(f.Tail))
	}

	return tx, nil
}

func checkSignature(sig []*big.Int) error {
	if len(sig) != 0 && len(sig) != 3 {
		return fmt.Errorf("%w: signature has %d elements", visualizer.ErrStructuralDecode, len(sig))
	}

	return nil
}

// ChainIDString returns the decimal chain id, or "" for a pre EIP-155 legacy transaction.
func (t *Transaction) ChainIDString() string {
	if t.ChainID == nil {
		return ""
	}

	return t.ChainID.String()
}

// SigningHash returns the hash a signer signs for t.
func (t *Transaction) SigningHash() common.Hash {
	if t.ChainID == nil {
		return types.HomesteadSigner{}.Hash(t.geth())
	}

	return types.LatestSignerForChainID(t.ChainID).Hash(t.geth())
}

func (t *Transaction) geth() *types.Transaction {
	switch t.Type {
	case types.AccessListTxType:
		return types.NewTx(&types.AccessListTx{
			ChainID:    t.ChainID,
			Nonce:      t.Nonce,
			GasPrice:   t.GasPrice,
			Gas:        t.Gas,
			To:         t.To,
			Value:      t.Value,
			Data:       t.Data,
			AccessList: t.AccessList,
		})
	case types.DynamicFeeTxType:
		return types.NewTx(&types.DynamicFeeTx{
			ChainID:    t.ChainID,
			Nonce:      t.Nonce,
			GasTipCap:  t.GasTipCap,
			GasFeeCap:  t.GasFeeCap,
			Gas:        t.Gas,
			To:         t.To,
			Value:      t.Value,
			Data:       t.Data,
			AccessList: t.AccessList,
		})
	default:
		return types.NewTx(&types.LegacyTx{
			Nonce:    t.Nonce,
			GasPrice: t.GasPrice,
			Gas:      t.Gas,
			To:       t.To,
			Value:    t.Value,
			Data:     t.Data,
		})
	}
}

// accessList renders the access list for endorsement.
func (t *Transaction) accessList() []any {
	out := make([]any, 0, len(t.AccessList))
	for _, tuple := range t.AccessList {
		keys := make([]string, 0, len(tuple.StorageKeys))
		for _, k := range tuple.StorageKeys {
			keys = append(keys, k.Hex())
		}
		out = append(out, map[string]any{
			"address":      keyAddress(tuple.Address),
			"storage_keys": keys,
		})
	}

	return out
}
