package sui

import (
	"encoding/hex"
	"fmt"
	"math/big"

	"github.com/block-vision/sui-go-sdk/models"

	"github.com/smartcontractkit/visualsign-go/visualizer"
)

// Value is a command argument resolved against the transaction inputs and earlier commands.
type Value struct {
	Argument Argument
	// Input is the referenced input of an Input argument.
	Input *CallArg
	// Split is set when the argument is a coin produced by SplitCoins.
	Split *Split
}

// Split is a coin split off another coin.
type Split struct {
	Coin   Value
	Amount Value
}

// IsGasCoin reports whether v is the gas coin.
func (v Value) IsGasCoin() bool { return v.Argument.Kind == ArgGasCoin }

// Pure returns the bytes of a pure input.
func (v Value) Pure() ([]byte, error) {
	if v.Input == nil || v.Input.Object != nil {
		return nil, fmt.Errorf("%w: %s is not a pure input", visualizer.ErrMissingData, v.Argument)
	}

	return v.Input.Pure, nil
}

// Address decodes a pure address input.
func (v Value) Address() (models.SuiAddress, error) {
	b, err := v.Pure()
	if err != nil {
		return "", err
	}
	if len(b) != AddressLength {
		return "", fmt.Errorf("%w: %s holds %d bytes, want an address", visualizer.ErrMissingData, v.Argument, len(b))
	}

	return models.SuiAddress("0x" + hex.EncodeToString(b)), nil
}

// U64 decodes a pure u64 input.
func (v Value) U64() (uint64, error) {
	return decodePure(v, "u64", (*bcsReader).u64)
}

// U32 decodes a pure u32 input.
func (v Value) U32() (uint32, error) {
	return decodePure(v, "u32", (*bcsReader).u32)
}

// U128 decodes a pure u128 input.
func (v Value) U128() (*big.Int, error) {
	return decodePure(v, "u128", (*bcsReader).u128)
}

// Bool decodes a pure bool input.
func (v Value) Bool() (bool, error) {
	return decodePure(v, "bool", (*bcsReader).bool)
}

// decodePure reads one value from a pure input, which must hold nothing else.
func decodePure[T any](v Value, kind string, read func(*bcsReader) (T, error)) (T, error) {
	var zero T
	b, err := v.Pure()
	if err != nil {
		return zero, err
	}
	r := newBCSReader(b)
	out, err := read(r)
	if err != nil || r.remaining() != 0 {
		return zero, fmt.Errorf("%w: %s holds %d bytes, want a %s", visualizer.ErrMissingData, v.Argument, len(b), kind)
	}

	return out, nil
}

// ObjectID returns the id of an object input.
func (v Value) ObjectID() (models.SuiAddress, error) {
	if v.Input == nil || v.Input.Object == nil {
		return "", fmt.Errorf("%w: %s is not an object input", visualizer.ErrMissingData, v.Argument)
	}

	return v.Input.Object.Ref.ObjectID, nil
}

// Coin returns the coin v was split from and the split amount.
func (v Value) Coin() (Value, uint64, bool) {
	if v.Split == nil {
		return Value{}, 0, false
	}
	amount, err := v.Split.Amount.U64()
	if err != nil {
		return Value{}, 0, false
	}

	return v.Split.Coin, amount, true
}

// String describes v for display, e.g. "Gas Coin" or the object id of an object input.
func (v Value) String() string {
	switch {
	case v.Input != nil && v.Input.Object != nil:
		return string(v.Input.Object.Ref.ObjectID)
	case v.Input != nil:
		return "0x" + hex.EncodeToString(v.Input.Pure)
	default:
		return v.Argument.String()
	}
}
