package chain

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartcontractkit/visualsign-go/payload"
)

type stubDecoder struct{ family string }

func (s stubDecoder) Family() string { return s.family }

func (s stubDecoder) Decode(context.Context, Request) (*payload.SignablePayload, error) {
	return payload.New("Stub", "Stub"), nil
}

func TestDecoders(t *testing.T) {
	t.Parallel()

	decoders, err := NewDecoders(stubDecoder{"solana"}, stubDecoder{"evm"})
	require.NoError(t, err)

	assert.Equal(t, []string{"evm", "solana"}, decoders.Families())
	assert.True(t, decoders.Exists("evm"))
	assert.False(t, decoders.Exists("ton"))

	dec, err := decoders.Get("solana")
	require.NoError(t, err)
	assert.Equal(t, "solana", dec.Family())

	_, err = decoders.Get("ton")
	require.ErrorIs(t, err, ErrDecoderNotFound)

	_, err = NewDecoders(stubDecoder{"evm"}, stubDecoder{"evm"})
	require.ErrorContains(t, err, "duplicate decoder for family evm")
}

func TestFinish(t *testing.T) {
	t.Parallel()

	p, err := Finish(payload.New("T", "T"), []byte{0xca, 0xfe}, payload.EndorsedParams{"nonce": 1})
	require.NoError(t, err)

	last := p.Fields[len(p.Fields)-1]
	assert.Equal(t, payload.RawDataLabel, last.Label)
	assert.Equal(t, payload.TextV2{Text: "cafe"}, last.Value)
	require.NoError(t, payload.VerifyDigest(payload.EndorsedParams{"nonce": 1}, p.EndorsedParamsDigest))
}

func TestRequest_Title(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Ethereum Transaction", Request{}.Title("Ethereum Transaction"))
	assert.Equal(t, "Swap", Request{TransactionName: "Swap"}.Title("Ethereum Transaction"))
}
