package payload

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// ErrDigestMismatch is returned when a recomputed endorsed params digest differs from the
// declared one.
var ErrDigestMismatch = errors.New("endorsed params digest mismatch")

// EndorsedParams holds transaction parameters that are not displayed but affect what is
// signed: fees, nonces, replay protection values, ABI or IDL blobs.
type EndorsedParams map[string]any

// Canonical returns the params as a canonical tree, rejecting values without a stable
// representation.
func (e EndorsedParams) Canonical() (map[string]any, error) {
	out := make(map[string]any, len(e))
	for k, v := range e {
		c, err := canonicalize(v)
		if err != nil {
			return nil, fmt.Errorf("endorsed param %s: %w", k, err)
		}
		out[k] = c
	}

	return out, nil
}

// Digest is the SHA-256 of the canonical JSON of an EndorsedParams value.
type Digest [sha256.Size]byte

// String returns the lowercase hex encoding of the digest.
func (d Digest) String() string { return hex.EncodeToString(d[:]) }

// Digest computes the digest of the canonical serialization of e.
func (e EndorsedParams) Digest() (Digest, error) {
	b, err := Marshal(e)
	if err != nil {
		return Digest{}, err
	}

	return sha256.Sum256(b), nil
}

// VerifyDigest recomputes the digest of params and compares it with declared.
func VerifyDigest(params EndorsedParams, declared string) error {
	d, err := params.Digest()
	if err != nil {
		return err
	}

	got := d.String()
	want := strings.ToLower(strings.TrimPrefix(declared, "0x"))
	if subtle.ConstantTimeCompare([]byte(got), []byte(want)) != 1 {
		return fmt.Errorf("%w: computed %s, declared %s", ErrDigestMismatch, got, declared)
	}

	return nil
}
