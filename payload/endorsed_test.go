package payload

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEndorsedParams_Digest(t *testing.T) {
	t.Parallel()

	a := EndorsedParams{}
	a["nonce"] = uint64(7)
	a["chain_id"] = big.NewInt(1)
	a["access_list"] = []any{map[string]any{"storage_keys": []string{"0x01"}, "address": "0xab"}}

	b := EndorsedParams{}
	b["access_list"] = []any{map[string]any{"address": "0xab", "storage_keys": []string{"0x01"}}}
	b["chain_id"] = big.NewInt(1)
	b["nonce"] = uint64(7)

	da, err := a.Digest()
	require.NoError(t, err)
	db, err := b.Digest()
	require.NoError(t, err)
	assert.Equal(t, da, db)
	assert.Len(t, da.String(), 64)

	again, err := a.Digest()
	require.NoError(t, err)
	assert.Equal(t, da, again)

	b["nonce"] = uint64(8)
	dc, err := b.Digest()
	require.NoError(t, err)
	assert.NotEqual(t, da, dc)
}

func TestEndorsedParams_CanonicalJSON(t *testing.T) {
	t.Parallel()

	params := EndorsedParams{"z": "last", "a": []byte{0xde, 0xad}, "m": map[string]string{"y": "1", "x": "2"}}

	got, err := Marshal(params)
	require.NoError(t, err)
	assert.Equal(t, `{"a":"dead","m":{"x":"2","y":"1"},"z":"last"}`, string(got))
}

func TestEndorsedParams_RejectsFloats(t *testing.T) {
	t.Parallel()

	_, err := EndorsedParams{"fee": 0.1}.Digest()
	require.ErrorIs(t, err, ErrNotCanonical)
}

func TestVerifyDigest(t *testing.T) {
	t.Parallel()

	params := EndorsedParams{"nonce": 1}
	d, err := params.Digest()
	require.NoError(t, err)

	require.NoError(t, VerifyDigest(params, d.String()))
	require.NoError(t, VerifyDigest(params, "0x"+d.String()))

	err = VerifyDigest(EndorsedParams{"nonce": 2}, d.String())
	require.ErrorIs(t, err, ErrDigestMismatch)
}

func TestSignablePayload_Endorse(t *testing.T) {
	t.Parallel()

	p := New("T", "T")
	require.NoError(t, p.Endorse(nil))
	assert.Empty(t, p.EndorsedParamsDigest)

	params := EndorsedParams{"nonce": 1}
	require.NoError(t, p.Endorse(params))
	require.NoError(t, VerifyDigest(params, p.EndorsedParamsDigest))

	got, err := p.ToJSON()
	require.NoError(t, err)
	assert.Contains(t, got, `"EndorsedParamsDigest":"`+p.EndorsedParamsDigest+`"`)
}
