package payload

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignablePayload_ToJSON(t *testing.T) {
	t.Parallel()

	p := New("Test", "Test").Append(NewTextField("Network", "Ethereum Mainnet"))

	got, err := p.ToJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"Fields": [{
			"FallbackText": "Ethereum Mainnet",
			"Label": "Network",
			"TextV2": {"Text": "Ethereum Mainnet"},
			"Type": "text_v2"
		}],
		"PayloadType": "Test",
		"Title": "Test",
		"Version": "0"
	}`, got)
	assert.Equal(t,
		`{"Fields":[{"FallbackText":"Ethereum Mainnet","Label":"Network","TextV2":{"Text":"Ethereum Mainnet"},"Type":"text_v2"}],"PayloadType":"Test","Title":"Test","Version":"0"}`,
		got,
	)
}

func TestSignablePayload_Deterministic(t *testing.T) {
	t.Parallel()

	build := func() *SignablePayload {
		amount, err := NewAmountField("Value", "1.5", "ETH")
		require.NoError(t, err)

		return New("Ethereum Transaction", "EthereumTx").Append(
			NewAddressField("To", "0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48", "USDC"),
			amount,
			NewPreviewLayoutField(PreviewLayoutParams{
				Label:     "Instruction 1",
				Fallback:  "Program ID: 11111111111111111111111111111111",
				Title:     "Transfer",
				Condensed: []Field{NewTextField("Program", "System")},
				Expanded:  []Field{NewTextField("Program", "System"), NewTextField("Data", "02000000")},
			}),
		)
	}

	first, err := build().ToJSON()
	require.NoError(t, err)
	second, err := build().ToJSON()
	require.NoError(t, err)
	assert.Equal(t, first, second)

	// Same layout built directly rather than through the builder.
	amount, err := NewAmountField("Value", "1.5", "ETH")
	require.NoError(t, err)
	direct := SignablePayload{
		Fields: []Field{
			{Label: "To", FallbackText: "USDC (0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48)", Value: AddressV2{Name: "USDC", Address: "0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48"}},
			amount,
			{
				Label:        "Instruction 1",
				FallbackText: "Program ID: 11111111111111111111111111111111",
				Value: PreviewLayout{
					Expanded: &ListLayout{Fields: Annotate(NewTextField("Program", "System"), NewTextField("Data", "02000000"))},
					Condensed: &ListLayout{Fields: Annotate(NewTextField("Program", "System"))},
					Title:     &TextV2{Text: "Transfer"},
				},
			},
		},
		PayloadType: "EthereumTx",
		Version:     DefaultVersion,
		Title:       "Ethereum Transaction",
	}
	third, err := direct.ToJSON()
	require.NoError(t, err)
	assert.Equal(t, first, third)
}

func TestSignablePayload_OptionalKeys(t *testing.T) {
	t.Parallel()

	p := New("T", "")
	p.Subtitle = "Sub"
	p.EndorsedParamsDigest = "00ff"

	got, err := p.ToJSON()
	require.NoError(t, err)
	assert.Equal(t, `{"EndorsedParamsDigest":"00ff","Fields":[],"Subtitle":"Sub","Title":"T","Version":"0"}`, got)
}

func TestSignablePayload_EmptyFallbackRejected(t *testing.T) {
	t.Parallel()

	p := New("T", "T").Append(Field{Label: "Memo", Value: TextV2{}}, NewDividerField())

	_, err := p.ToJSON()
	require.ErrorIs(t, err, ErrEmptyFallback)
}

func TestSignablePayload_ToValidatedJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		give    string
		wantErr error
	}{
		{name: "printable ascii", give: "Swap <1 ETH> & more"},
		{name: "newline is escaped by json", give: "line one\nline two"},
		{name: "non ascii", give: "café", wantErr: ErrRestrictedCharacters},
		{name: "control character", give: "bell\x07", wantErr: ErrRestrictedCharacters},
		{name: "line separator", give: "a\u2028b", wantErr: ErrRestrictedCharacters},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := New("T", "T").Append(NewTextField("Label", tt.give))
			got, err := p.ToValidatedJSON()
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Contains(t, got, `"Label":"Label"`)
		})
	}
}

func TestValidateCharset(t *testing.T) {
	t.Parallel()

	require.NoError(t, ValidateCharset("{\"a\":\"b c\"}\n"))
	require.ErrorIs(t, ValidateCharset(`{"a":"\u0041"}`), ErrRestrictedCharacters)
	require.ErrorIs(t, ValidateCharset("\x00"), ErrRestrictedCharacters)
}

func TestSignablePayload_MarshalAnnotatedJSON(t *testing.T) {
	t.Parallel()

	field := AnnotatedField{
		Field:             NewTextField("Recipient", "alice"),
		StaticAnnotation:  &StaticAnnotation{Text: "known contact"},
		DynamicAnnotation: &DynamicAnnotation{ID: "risk", Type: "badge", Params: []string{"low"}},
	}
	p := New("T", "T").Append(NewListLayoutField("Details", "alice", []AnnotatedField{field}))

	wire, err := p.ToJSON()
	require.NoError(t, err)
	assert.NotContains(t, wire, "StaticAnnotation")
	assert.NotContains(t, wire, "DynamicAnnotation")

	annotated, err := p.MarshalAnnotatedJSON()
	require.NoError(t, err)
	assert.Contains(t, string(annotated), `"StaticAnnotation":{"Text":"known contact"}`)
	assert.Contains(t, string(annotated), `"DynamicAnnotation":{"ID":"risk","Params":["low"],"Type":"badge"}`)
}
