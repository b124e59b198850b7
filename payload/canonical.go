package payload

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strings"
)

var (
	// ErrRestrictedCharacters is returned when serialized output contains escapes or
	// characters outside printable ASCII.
	ErrRestrictedCharacters = errors.New("restricted characters detected")

	// ErrNotCanonical is returned for values that have no deterministic representation.
	ErrNotCanonical = errors.New("value is not canonically serializable")
)

// CanonicallySerializable is implemented by every value allowed into a signable payload.
// Canonical returns a tree of maps, slices and scalars; maps are emitted with their keys
// in alphabetical order at every depth.
type CanonicallySerializable interface {
	Canonical() (map[string]any, error)
}

// Marshal serializes v to compact canonical JSON.
func Marshal(v CanonicallySerializable) ([]byte, error) {
	m, err := v.Canonical()
	if err != nil {
		return nil, err
	}

	return encode(m)
}

// MarshalValidated serializes v and rejects output that fails ValidateCharset.
func MarshalValidated(v CanonicallySerializable) ([]byte, error) {
	b, err := Marshal(v)
	if err != nil {
		return nil, err
	}
	if err := ValidateCharset(string(b)); err != nil {
		return nil, err
	}

	return b, nil
}

// encode writes the canonical tree as JSON. encoding/json sorts map keys, and HTML
// escaping is disabled so that '<', '>' and '&' are emitted verbatim.
func encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("encode canonical json: %w", err)
	}

	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// ValidateCharset rejects JSON containing unicode escapes, non-ASCII characters or ASCII
// control characters other than whitespace.
func ValidateCharset(s string) error {
	if strings.Contains(s, `\u`) {
		return fmt.Errorf("%w: unicode escape sequence", ErrRestrictedCharacters)
	}
	for i, r := range s {
		if !isASCIIGraphic(r) && !isASCIIWhitespace(r) {
			return fmt.Errorf("%w: %U at offset %d", ErrRestrictedCharacters, r, i)
		}
	}

	return nil
}

func isASCIIGraphic(r rune) bool { return r >= '!' && r <= '~' }

func isASCIIWhitespace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\f', '\r':
		return true
	default:
		return false
	}
}

// canonicalize converts v into a tree of canonical JSON values. Floats are rejected since
// their textual form is not stable across implementations.
func canonicalize(v any) (any, error) {
	switch x := v.(type) {
	case nil:
		return nil, nil
	case string, bool,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64:
		return x, nil
	case *big.Int:
		if x == nil {
			return nil, nil
		}

		return x.String(), nil
	case []byte:
		return hex.EncodeToString(x), nil
	case []string:
		out := make([]any, 0, len(x))
		for _, s := range x {
			out = append(out, s)
		}

		return out, nil
	case []any:
		out := make([]any, 0, len(x))
		for i, e := range x {
			c, err := canonicalize(e)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			out = append(out, c)
		}

		return out, nil
	case map[string]string:
		out := make(map[string]any, len(x))
		for k, s := range x {
			out[k] = s
		}

		return out, nil
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			c, err := canonicalize(e)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", k, err)
			}
			out[k] = c
		}

		return out, nil
	case CanonicallySerializable:
		return x.Canonical()
	default:
		return nil, fmt.Errorf("%w: %T", ErrNotCanonical, v)
	}
}
