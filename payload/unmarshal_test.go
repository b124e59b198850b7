package payload

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnmarshal_RoundTrip(t *testing.T) {
	t.Parallel()

	gas, err := NewNumberField("Gas Limit", "21000", "gas")
	require.NoError(t, err)
	value, err := NewAmountField("Value", "0.01", "ETH")
	require.NoError(t, err)

	p := New("Ethereum Transaction", "EthereumTx").Append(
		NewTextField("Network", "Ethereum Mainnet"),
		NewAddressField("To", "0x0000000000000000000000000000000000000001", ""),
		value,
		gas,
		NewDividerField(),
		NewUnknownField("Call", "deadbeef", "unknown selector"),
		NewPreviewLayoutField(PreviewLayoutParams{
			Label:     "Instruction 1",
			Fallback:  "Transfer",
			Title:     "Transfer",
			Subtitle:  "System Program",
			Condensed: []Field{NewTextField("Program", "System")},
			Expanded:  []Field{NewTextField("Program", "System"), NewRawDataField([]byte{0x02})},
		}),
	)
	p.Subtitle = "to 0x0000000000000000000000000000000000000001"

	want, err := p.ToJSON()
	require.NoError(t, err)

	decoded, err := Unmarshal([]byte(want))
	require.NoError(t, err)

	got, err := decoded.ToJSON()
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, FieldTypePreviewLayout, decoded.Fields[6].Type())
}

func TestUnmarshal_DeprecatedVariants(t *testing.T) {
	t.Parallel()

	give := `{"Fields":[` +
		`{"FallbackText":"hi","Label":"Greeting","Text":{"Text":"hi"},"Type":"text"},` +
		`{"Address":{"Address":"0x01","Name":"one"},"FallbackText":"0x01","Label":"To","Type":"address"},` +
		`{"Amount":{"Abbreviation":"ETH","Amount":"1"},"FallbackText":"1 ETH","Label":"Value","Type":"amount"}` +
		`],"Title":"Legacy","Version":"0"}`

	p, err := Unmarshal([]byte(give))
	require.NoError(t, err)
	require.Len(t, p.Fields, 3)
	assert.Equal(t, Text{Text: "hi"}, p.Fields[0].Value)
	assert.Equal(t, Address{Address: "0x01", Name: "one"}, p.Fields[1].Value)
	assert.Equal(t, Amount{Amount: "1", Abbreviation: "ETH"}, p.Fields[2].Value)
	for _, f := range p.Fields {
		assert.True(t, f.Type().Deprecated())
	}

	// Re-serialization is byte identical.
	got, err := p.ToJSON()
	require.NoError(t, err)
	assert.Equal(t, give, got)
}

func TestUnmarshal_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		give    string
		wantErr error
	}{
		{
			name:    "extra variant key",
			give:    `{"Fields":[{"FallbackText":"a","Label":"L","Text":{"Text":"a"},"TextV2":{"Text":"a"},"Type":"text"}],"Title":"T","Version":"0"}`,
			wantErr: ErrFieldVerification,
		},
		{
			name:    "unknown type",
			give:    `{"Fields":[{"FallbackText":"a","Label":"L","Type":"bogus"}],"Title":"T","Version":"0"}`,
			wantErr: ErrFieldVerification,
		},
		{
			name:    "missing title",
			give:    `{"Fields":[],"Version":"0"}`,
			wantErr: ErrFieldVerification,
		},
		{
			name:    "unexpected payload key",
			give:    `{"Fields":[],"Title":"T","Version":"0","Extra":"x"}`,
			wantErr: ErrFieldVerification,
		},
		{
			name:    "invalid amount",
			give:    `{"Fields":[{"AmountV2":{"Amount":"1e3"},"FallbackText":"a","Label":"L","Type":"amount_v2"}],"Title":"T","Version":"0"}`,
			wantErr: ErrInvalidNumber,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Unmarshal([]byte(tt.give))
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestUnmarshal_KeepsListAnnotations(t *testing.T) {
	t.Parallel()

	give := `{"Fields":[{"FallbackText":"x","Label":"List","ListLayout":{"Fields":[` +
		`{"FallbackText":"a","Label":"A","StaticAnnotation":{"Text":"note"},"TextV2":{"Text":"a"},"Type":"text_v2"}` +
		`]},"Type":"list_layout"}],"Title":"T","Version":"0"}`

	p, err := Unmarshal([]byte(give))
	require.NoError(t, err)

	list, ok := p.Fields[0].Value.(ListLayout)
	require.True(t, ok)
	require.Len(t, list.Fields, 1)
	require.NotNil(t, list.Fields[0].StaticAnnotation)
	assert.Equal(t, "note", list.Fields[0].StaticAnnotation.Text)
}
