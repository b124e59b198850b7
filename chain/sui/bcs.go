package sui

import (
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"unicode/utf8"

	"github.com/aptos-labs/aptos-go-sdk/bcs"
	"github.com/block-vision/sui-go-sdk/models"
)

// maxTypeDepth bounds the nesting of decoded type tags.
const maxTypeDepth = 16

var errNonCanonical = errors.New("non canonical uleb128")

// bcsReader reads BCS values. Lengths and enum tags are canonical ULEB128.
type bcsReader struct {
	buf []byte
	des *bcs.Deserializer
}

func newBCSReader(b []byte) *bcsReader {
	return &bcsReader{buf: b, des: bcs.NewDeserializer(b)}
}

// pos is the offset of the next unread byte.
func (r *bcsReader) pos() int { return len(r.buf) - r.des.Remaining() }

func (r *bcsReader) remaining() int { return r.des.Remaining() }

// uleb reads a ULEB128 value. The encoding must be the shortest one and end on a byte
// without the continuation bit.
func (r *bcsReader) uleb() (uint64, error) {
	start := r.pos()
	v := r.des.Uleb128()
	if err := r.des.Error(); err != nil {
		return 0, err
	}
	canonical, err := bcs.SerializeUleb128(v)
	if err != nil {
		return 0, err
	}
	if r.pos()-start != len(canonical) || r.buf[r.pos()-1]&0x80 != 0 {
		return 0, errNonCanonical
	}

	return uint64(v), nil
}

// length reads a sequence length. Every element takes at least one byte, so a length
// beyond the remaining input is rejected before anything is allocated.
func (r *bcsReader) length() (int, error) {
	n, err := r.uleb()
	if err != nil {
		return 0, err
	}
	if n > uint64(r.remaining()) {
		return 0, fmt.Errorf("length %d exceeds remaining %d bytes", n, r.remaining())
	}

	return int(n), nil
}

func (r *bcsReader) variant(max uint64) (uint64, error) {
	tag, err := r.uleb()
	if err != nil {
		return 0, err
	}
	if tag > max {
		return 0, fmt.Errorf("unknown variant %d", tag)
	}

	return tag, nil
}

func (r *bcsReader) u8() (uint8, error) {
	v := r.des.U8()

	return v, r.des.Error()
}

func (r *bcsReader) u16() (uint16, error) {
	v := r.des.U16()

	return v, r.des.Error()
}

func (r *bcsReader) u32() (uint32, error) {
	v := r.des.U32()

	return v, r.des.Error()
}

func (r *bcsReader) u64() (uint64, error) {
	v := r.des.U64()

	return v, r.des.Error()
}

func (r *bcsReader) u128() (*big.Int, error) {
	v := r.des.U128()
	if err := r.des.Error(); err != nil {
		return nil, err
	}

	return &v, nil
}

func (r *bcsReader) bool() (bool, error) {
	v := r.des.Bool()

	return v, r.des.Error()
}

// fixed reads n bytes without a length prefix.
func (r *bcsReader) fixed(n int) ([]byte, error) {
	if n > r.remaining() {
		return nil, fmt.Errorf("need %d bytes, %d remaining", n, r.remaining())
	}
	b := r.des.ReadFixedBytes(n)

	return b, r.des.Error()
}

func (r *bcsReader) bytes() ([]byte, error) {
	n, err := r.length()
	if err != nil {
		return nil, err
	}

	return r.fixed(n)
}

func (r *bcsReader) string() (string, error) {
	b, err := r.bytes()
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", errors.New("invalid utf-8 string")
	}

	return string(b), nil
}

var identifierPattern = regexp.MustCompile(`^([A-Za-z][A-Za-z0-9_]*|_[A-Za-z0-9_]+)$`)

// identifier reads a Move identifier such as a module or function name.
func (r *bcsReader) identifier() (string, error) {
	s, err := r.string()
	if err != nil {
		return "", err
	}
	if !identifierPattern.MatchString(s) {
		return "", fmt.Errorf("invalid identifier %q", s)
	}

	return s, nil
}

func (r *bcsReader) address() (models.SuiAddress, error) {
	b, err := r.fixed(AddressLength)
	if err != nil {
		return "", err
	}

	return models.SuiAddress("0x" + hex.EncodeToString(b)), nil
}

// typeTag reads a Move type tag and renders it, e.g. "0x2::coin::Coin<0x2::sui::SUI>".
func (r *bcsReader) typeTag(depth int) (string, error) {
	if depth > maxTypeDepth {
		return "", fmt.Errorf("type tag nested deeper than %d", maxTypeDepth)
	}
	tag, err := r.variant(10)
	if err != nil {
		return "", err
	}
	switch tag {
	case 6:
		inner, err := r.typeTag(depth + 1)
		if err != nil {
			return "", err
		}

		return "vector<" + inner + ">", nil
	case 7:
		return r.structTag(depth)
	default:
		return primitiveTypes[tag], nil
	}
}

var primitiveTypes = map[uint64]string{
	0: "bool", 1: "u8", 2: "u64", 3: "u128", 4: "address", 5: "signer", 8: "u16", 9: "u32", 10: "u256",
}

func (r *bcsReader) structTag(depth int) (string, error) {
	addr, err := r.address()
	if err != nil {
		return "", err
	}
	module, err := r.identifier()
	if err != nil {
		return "", err
	}
	name, err := r.identifier()
	if err != nil {
		return "", err
	}
	n, err := r.length()
	if err != nil {
		return "", err
	}
	s := ShortAddress(addr) + "::" + module + "::" + name
	for i := range n {
		param, err := r.typeTag(depth + 1)
		if err != nil {
			return "", err
		}
		if i == 0 {
			s += "<" + param
		} else {
			s += ", " + param
		}
	}
	if n > 0 {
		s += ">"
	}

	return s, nil
}
