package registry

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"maps"
	"math"
	"slices"
	"strings"

	"google.golang.org/protobuf/encoding/protowire"
)

// ErrIntegrityHash is returned when a metadata blob does not match its declared hash.
var ErrIntegrityHash = errors.New("metadata blob integrity hash mismatch")

// ChainMetadata is the wallet supplied token list of one network. On the wire it is the
// protobuf message
//
//	message ChainMetadata { string network_id = 1; map<string, TokenMetadata> assets = 2; }
//	message TokenMetadata {
//	  string symbol = 1; string name = 2; TokenStandard standard = 3;
//	  string contract_address = 4; uint32 decimals = 5;
//	}
type ChainMetadata struct {
	NetworkID string
	Assets    map[string]TokenMetadata
}

// ComputeMetadataHash returns the lowercase hex SHA-256 of the raw blob bytes.
func ComputeMetadataHash(blob []byte) string {
	sum := sha256.Sum256(blob)

	return hex.EncodeToString(sum[:])
}

// VerifyMetadataHash checks blob against expectedHash (hex, optional 0x prefix).
func VerifyMetadataHash(blob []byte, expectedHash string) error {
	got := ComputeMetadataHash(blob)
	want := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(expectedHash), "0x"))
	if subtle.ConstantTimeCompare([]byte(got), []byte(want)) != 1 {
		return fmt.Errorf("%w: computed %s, declared %s", ErrIntegrityHash, got, expectedHash)
	}

	return nil
}

// LoadMetadataBlob verifies the blob hash, decodes it and registers every token. The hash
// is verified before anything is parsed, and tokens are registered all or nothing: on any
// error the registry is left unchanged.
func (r *Registry) LoadMetadataBlob(blob []byte, expectedHash string) error {
	if r.frozen {
		return ErrFrozen
	}
	if err := VerifyMetadataHash(blob, expectedHash); err != nil {
		return err
	}

	cm, err := DecodeChainMetadata(blob)
	if err != nil {
		return err
	}

	return r.LoadChainMetadata(cm)
}

// LoadChainMetadata registers every asset of cm, all or nothing.
func (r *Registry) LoadChainMetadata(cm ChainMetadata) error {
	if r.frozen {
		return ErrFrozen
	}

	chainID, err := ParseNetworkID(cm.NetworkID)
	if err != nil {
		return err
	}

	staged := make(map[tokenKey]TokenMetadata, len(cm.Assets))
	for _, name := range slices.Sorted(maps.Keys(cm.Assets)) {
		key, md, err := prepareToken(chainID, cm.Assets[name])
		if err != nil {
			return fmt.Errorf("asset %s: %w", name, err)
		}
		if err := r.checkConflict(key, md); err != nil {
			return fmt.Errorf("asset %s: %w", name, err)
		}
		if prev, ok := staged[key]; ok && prev != md {
			return fmt.Errorf("asset %s: %w: %s listed twice with different metadata", name, ErrRegistryConflict, key)
		}
		staged[key] = md
	}

	maps.Copy(r.tokens, staged)

	return nil
}

// DecodeChainMetadata parses the protobuf encoding of ChainMetadata.
func DecodeChainMetadata(b []byte) (ChainMetadata, error) {
	cm := ChainMetadata{Assets: map[string]TokenMetadata{}}
	err := consumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch {
		case num == 1 && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(b)
			cm.NetworkID = v

			return n, nil
		case num == 2 && typ == protowire.BytesType:
			entry, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return n, nil
			}
			name, md, err := decodeAssetEntry(entry)
			if err != nil {
				return 0, err
			}
			cm.Assets[name] = md

			return n, nil
		default:
			return protowire.ConsumeFieldValue(num, typ, b), nil
		}
	})
	if err != nil {
		return ChainMetadata{}, fmt.Errorf("decode chain metadata: %w", err)
	}

	return cm, nil
}

func decodeAssetEntry(b []byte) (string, TokenMetadata, error) {
	var (
		name string
		md   TokenMetadata
	)
	err := consumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch {
		case num == 1 && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(b)
			name = v

			return n, nil
		case num == 2 && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return n, nil
			}
			decoded, err := decodeTokenMetadata(v)
			if err != nil {
				return 0, err
			}
			md = decoded

			return n, nil
		default:
			return protowire.ConsumeFieldValue(num, typ, b), nil
		}
	})

	return name, md, err
}

func decodeTokenMetadata(b []byte) (TokenMetadata, error) {
	var md TokenMetadata
	err := consumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch {
		case num == 1 && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(b)
			md.Symbol = v

			return n, nil
		case num == 2 && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(b)
			md.Name = v

			return n, nil
		case num == 3 && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return n, nil
			}
			std, err := standardFromNumber(v)
			if err != nil {
				return 0, err
			}
			md.Standard = std

			return n, nil
		case num == 4 && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(b)
			md.ContractAddress = v

			return n, nil
		case num == 5 && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n >= 0 && v > math.MaxUint8 {
				return 0, fmt.Errorf("%w: decimals %d out of range", ErrInvalidMetadata, v)
			}
			md.Decimals = uint8(v)

			return n, nil
		default:
			return protowire.ConsumeFieldValue(num, typ, b), nil
		}
	})

	return md, err
}

// consumeFields walks the fields of a protobuf message. fn consumes the value of one field
// and returns the number of bytes read, or a negative protowire error code.
func consumeFields(b []byte, fn func(protowire.Number, protowire.Type, []byte) (int, error)) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]

		m, err := fn(num, typ, b)
		if err != nil {
			return err
		}
		if m < 0 {
			return protowire.ParseError(m)
		}
		b = b[m:]
	}

	return nil
}

// EncodeChainMetadata returns the protobuf encoding of cm with assets in sorted order.
func EncodeChainMetadata(cm ChainMetadata) []byte {
	var b []byte
	if cm.NetworkID != "" {
		b = protowire.AppendTag(b, 1, protowire.BytesType)
		b = protowire.AppendString(b, cm.NetworkID)
	}
	for _, name := range slices.Sorted(maps.Keys(cm.Assets)) {
		var entry []byte
		entry = protowire.AppendTag(entry, 1, protowire.BytesType)
		entry = protowire.AppendString(entry, name)
		entry = protowire.AppendTag(entry, 2, protowire.BytesType)
		entry = protowire.AppendBytes(entry, encodeTokenMetadata(cm.Assets[name]))

		b = protowire.AppendTag(b, 2, protowire.BytesType)
		b = protowire.AppendBytes(b, entry)
	}

	return b
}

func encodeTokenMetadata(md TokenMetadata) []byte {
	var b []byte
	b = protowire.AppendTag(b, 1, protowire.BytesType)
	b = protowire.AppendString(b, md.Symbol)
	b = protowire.AppendTag(b, 2, protowire.BytesType)
	b = protowire.AppendString(b, md.Name)
	b = protowire.AppendTag(b, 3, protowire.VarintType)
	b = protowire.AppendVarint(b, md.Standard.number())
	b = protowire.AppendTag(b, 4, protowire.BytesType)
	b = protowire.AppendString(b, md.ContractAddress)
	b = protowire.AppendTag(b, 5, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(md.Decimals))

	return b
}
