package evm

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartcontractkit/visualsign-go/visualizer"
)

var (
	dead      = common.HexToAddress("0x000000000000000000000000000000000000dEaD")
	recipient = common.HexToAddress("0x1111111111111111111111111111111111111111")
)

func toField(to *common.Address) []byte {
	if to == nil {
		return []byte{}
	}

	return to.Bytes()
}

// unsignedLegacy returns the EIP-155 signing form of a legacy transaction.
func unsignedLegacy(t *testing.T, chainID int64, to *common.Address, value *big.Int, data []byte) []byte {
	t.Helper()

	raw, err := rlp.EncodeToBytes([]any{
		uint64(42), big.NewInt(20_000_000_000), uint64(21000), toField(to), value, data,
		big.NewInt(chainID), uint(0), uint(0),
	})
	require.NoError(t, err)

	return raw
}

// unsignedDynamicFee returns the signing form of an EIP-1559 transaction.
func unsignedDynamicFee(t *testing.T, to *common.Address, data []byte, accessList []any) []byte {
	t.Helper()

	if accessList == nil {
		accessList = []any{}
	}
	raw, err := rlp.EncodeToBytes([]any{
		big.NewInt(1), uint64(7), big.NewInt(1_000_000_000), big.NewInt(30_000_000_000), uint64(100_000),
		toField(to), big.NewInt(0), data, accessList,
	})
	require.NoError(t, err)

	return append([]byte{types.DynamicFeeTxType}, raw...)
}

func TestDecodeTransaction(t *testing.T) {
	t.Parallel()

	preEIP155, err := rlp.EncodeToBytes([]any{uint64(1), big.NewInt(1), uint64(21000), dead.Bytes(), big.NewInt(5), []byte{}})
	require.NoError(t, err)
	accessList, err := rlp.EncodeToBytes([]any{
		big.NewInt(10), uint64(3), big.NewInt(2), uint64(50000), dead.Bytes(), big.NewInt(0), []byte{0x01},
		[]any{[]any{recipient.Bytes(), []any{common.HexToHash("0x01").Bytes()}}},
	})
	require.NoError(t, err)

	tests := []struct {
		name        string
		give        []byte
		wantType    uint8
		wantChainID string
		wantTo      *common.Address
		wantErr     error
	}{
		{
			name:        "legacy eip-155 signing form",
			give:        unsignedLegacy(t, 1, &dead, big.NewInt(1), nil),
			wantType:    types.LegacyTxType,
			wantChainID: "1",
			wantTo:      &dead,
		},
		{
			name:     "legacy pre eip-155",
			give:     preEIP155,
			wantType: types.LegacyTxType,
			wantTo:   &dead,
		},
		{
			name:        "contract creation",
			give:        unsignedLegacy(t, 1, nil, big.NewInt(0), []byte{0x60, 0x80}),
			wantType:    types.LegacyTxType,
			wantChainID: "1",
		},
		{
			name:        "eip-2930",
			give:        append([]byte{types.AccessListTxType}, accessList...),
			wantType:    types.AccessListTxType,
			wantChainID: "10",
			wantTo:      &dead,
		},
		{
			name:        "eip-1559",
			give:        unsignedDynamicFee(t, &dead, nil, nil),
			wantType:    types.DynamicFeeTxType,
			wantChainID: "1",
			wantTo:      &dead,
		},
		{name: "empty", give: nil, wantErr: visualizer.ErrStructuralDecode},
		{name: "blob transaction", give: []byte{types.BlobTxType, 0xc0}, wantErr: visualizer.ErrStructuralDecode},
		{name: "set code transaction", give: []byte{types.SetCodeTxType, 0xc0}, wantErr: visualizer.ErrStructuralDecode},
		{name: "unknown type", give: []byte{0x05, 0xc0}, wantErr: visualizer.ErrStructuralDecode},
		{name: "truncated", give: unsignedDynamicFee(t, &dead, nil, nil)[:20], wantErr: visualizer.ErrStructuralDecode},
		{name: "trailing bytes", give: append(unsignedLegacy(t, 1, &dead, big.NewInt(1), nil), 0x00), wantErr: visualizer.ErrStructuralDecode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tx, err := DecodeTransaction(tt.give)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantType, tx.Type)
			assert.Equal(t, tt.wantChainID, tx.ChainIDString())
			assert.Equal(t, tt.wantTo, tx.To)
		})
	}
}

func TestDecodeTransaction_AccessList(t *testing.T) {
	t.Parallel()

	raw := unsignedDynamicFee(t, &dead, nil, []any{[]any{recipient.Bytes(), []any{common.HexToHash("0x01").Bytes()}}})
	tx, err := DecodeTransaction(raw)
	require.NoError(t, err)

	require.Len(t, tx.AccessList, 1)
	assert.Equal(t, recipient, tx.AccessList[0].Address)
	assert.Equal(t, []any{map[string]any{
		"address":      "0x1111111111111111111111111111111111111111",
		"storage_keys": []string{"0x0000000000000000000000000000000000000000000000000000000000000001"},
	}}, tx.accessList())
}

func TestDecodeTransaction_Signed(t *testing.T) {
	t.Parallel()

	key, err := crypto.GenerateKey()
	require.NoError(t, err)

	t.Run("legacy", func(t *testing.T) {
		t.Parallel()

		signer := types.NewEIP155Signer(big.NewInt(137))
		signed, err := types.SignTx(types.NewTx(&types.LegacyTx{
			Nonce: 1, GasPrice: big.NewInt(30), Gas: 21000, To: &dead, Value: big.NewInt(1),
		}), signer, key)
		require.NoError(t, err)
		raw, err := signed.MarshalBinary()
		require.NoError(t, err)

		tx, err := DecodeTransaction(raw)
		require.NoError(t, err)
		assert.Equal(t, "137", tx.ChainIDString())
		assert.Equal(t, signer.Hash(signed), tx.SigningHash())
	})

	t.Run("dynamic fee", func(t *testing.T) {
		t.Parallel()

		signer := types.NewLondonSigner(big.NewInt(1))
		signed, err := types.SignTx(types.NewTx(&types.DynamicFeeTx{
			ChainID: big.NewInt(1), Nonce: 2, GasTipCap: big.NewInt(1), GasFeeCap: big.NewInt(2), Gas: 21000,
			To: &dead, Value: big.NewInt(1), Data: []byte{0xab},
		}), signer, key)
		require.NoError(t, err)
		raw, err := signed.MarshalBinary()
		require.NoError(t, err)

		tx, err := DecodeTransaction(raw)
		require.NoError(t, err)
		assert.Equal(t, []byte{0xab}, tx.Data)
		assert.Equal(t, signer.Hash(signed), tx.SigningHash())
	})
}
