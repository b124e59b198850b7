package sui

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBCSReader_Uleb(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		give    []byte
		want    uint64
		wantErr string
	}{
		{name: "zero", give: []byte{0x00}, want: 0},
		{name: "one byte", give: []byte{0x7f}, want: 127},
		{name: "two bytes", give: []byte{0x80, 0x01}, want: 128},
		{name: "max u32", give: []byte{0xff, 0xff, 0xff, 0xff, 0x0f}, want: 1<<32 - 1},
		{name: "padded zero", give: []byte{0x80, 0x00}, wantErr: "non canonical"},
		{name: "padded one", give: []byte{0x81, 0x80, 0x00}, wantErr: "non canonical"},
		{name: "continuation on the last byte", give: []byte{0xff, 0xff, 0xff, 0xff, 0x8f}, wantErr: "non canonical"},
		{name: "above u32", give: []byte{0xff, 0xff, 0xff, 0xff, 0x1f}, wantErr: "max u32"},
		{name: "truncated", give: []byte{0x80}, wantErr: "not enough bytes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := newBCSReader(tt.give).uleb()
			if tt.wantErr != "" {
				require.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBCSReader_Bounds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		give    []byte
		read    func(*bcsReader) error
		wantErr string
	}{
		{
			name:    "length beyond input",
			give:    []byte{0x05, 0x01, 0x02},
			read:    func(r *bcsReader) error { _, err := r.bytes(); return err },
			wantErr: "exceeds remaining",
		},
		{
			name:    "short address",
			give:    make([]byte, AddressLength-1),
			read:    func(r *bcsReader) error { _, err := r.address(); return err },
			wantErr: "remaining",
		},
		{
			name:    "bool out of range",
			give:    []byte{0x02},
			read:    func(r *bcsReader) error { _, err := r.bool(); return err },
			wantErr: "bool",
		},
		{
			name:    "short u64",
			give:    []byte{0x01, 0x02},
			read:    func(r *bcsReader) error { _, err := r.u64(); return err },
			wantErr: "not enough bytes",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			require.ErrorContains(t, tt.read(newBCSReader(tt.give)), tt.wantErr)
		})
	}
}

func TestValue_Pure(t *testing.T) {
	t.Parallel()

	pureValue := func(b []byte) Value { return Value{Input: &CallArg{Pure: b}} }

	t.Run("u64", func(t *testing.T) {
		t.Parallel()

		got, err := pureValue(u64(42)).U64()
		require.NoError(t, err)
		assert.Equal(t, uint64(42), got)

		_, err = pureValue(cat(u64(42), []byte{0})).U64()
		require.Error(t, err)
	})

	t.Run("u128", func(t *testing.T) {
		t.Parallel()

		got, err := pureValue(cat(u64(7), u64(1))).U128()
		require.NoError(t, err)
		assert.Equal(t, "18446744073709551623", got.String())
	})

	t.Run("bool", func(t *testing.T) {
		t.Parallel()

		got, err := pureValue([]byte{1}).Bool()
		require.NoError(t, err)
		assert.True(t, got)

		_, err = pureValue([]byte{2}).Bool()
		require.Error(t, err)
	})
}
