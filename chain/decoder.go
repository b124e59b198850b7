package chain

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/smartcontractkit/visualsign-go/payload"
	"github.com/smartcontractkit/visualsign-go/registry"
)

var ErrDecoderNotFound = errors.New("decoder not found")

// FamilyBitcoin is the family of the Bitcoin decoder. chain-selectors has no Bitcoin family.
const FamilyBitcoin = "bitcoin"

// Decoder turns the unsigned bytes of one chain family into a SignablePayload.
//
// A malformed top level structure fails the whole request with
// visualizer.ErrStructuralDecode. Instructions the decoder cannot interpret never fail the
// request; they are rendered opaquely.
type Decoder interface {
	// Family returns the chain-selectors family the decoder handles, e.g. "evm".
	Family() string
	// Decode returns the payload of req.Raw.
	Decode(ctx context.Context, req Request) (*payload.SignablePayload, error)
}

// Request is one decode request.
type Request struct {
	// Raw holds the unsigned transaction bytes.
	Raw []byte
	// Registry resolves token metadata. A nil registry is treated as empty.
	Registry registry.Reader
	// TransactionName overrides the default payload title.
	TransactionName string
	// ContractABI is a JSON ABI used for EVM calls no built-in visualizer recognises.
	ContractABI string
}

// Title returns the request title override, or def.
func (r Request) Title(def string) string {
	if r.TransactionName != "" {
		return r.TransactionName
	}

	return def
}

// Decoders is the static set of decoders, keyed by family.
type Decoders struct {
	decoders map[string]Decoder
}

// NewDecoders returns a collection of decoders. Registering two decoders for one family is
// an error.
func NewDecoders(decoders ...Decoder) (Decoders, error) {
	m := make(map[string]Decoder, len(decoders))
	for _, d := range decoders {
		if _, ok := m[d.Family()]; ok {
			return Decoders{}, fmt.Errorf("duplicate decoder for family %s", d.Family())
		}
		m[d.Family()] = d
	}

	return Decoders{decoders: m}, nil
}

// Get returns the decoder of family.
func (d Decoders) Get(family string) (Decoder, error) {
	if dec, ok := d.decoders[family]; ok {
		return dec, nil
	}

	return nil, fmt.Errorf("%w: %s", ErrDecoderNotFound, family)
}

// Exists reports whether a decoder is registered for family.
func (d Decoders) Exists(family string) bool {
	_, ok := d.decoders[family]

	return ok
}

// Families returns the registered families in sorted order.
func (d Decoders) Families() []string {
	return slices.Sorted(maps.Keys(d.decoders))
}

// Finish appends the Raw Data field and binds params to p through its endorsed digest.
func Finish(p *payload.SignablePayload, raw []byte, params payload.EndorsedParams) (*payload.SignablePayload, error) {
	p.Append(payload.NewRawDataField(raw))
	if err := p.Endorse(params); err != nil {
		return nil, fmt.Errorf("endorse params: %w", err)
	}

	return p, nil
}
