package aptos

import (
	"testing"

	aptoslib "github.com/aptos-labs/aptos-go-sdk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAddress(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		give       string
		wantModule string
		wantErr    bool
	}{
		{name: "special address", give: "0x1", wantModule: "0x1::coin"},
		{name: "padded special address", give: "0x0000000000000000000000000000000000000000000000000000000000000001", wantModule: "0x1::coin"},
		{
			name:       "regular address keeps the long form",
			give:       "0xa1",
			wantModule: "0x00000000000000000000000000000000000000000000000000000000000000a1::coin",
		},
		{name: "invalid", give: "0xzz", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			addr, err := ParseAddress(tt.give)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantModule, ModuleName(aptoslib.ModuleId{Address: addr, Name: "coin"}))
		})
	}
}
