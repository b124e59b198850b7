package payload

import (
	"errors"
	"fmt"
)

// DefaultVersion is the payload version emitted by the chain decoders.
const DefaultVersion = "0"

const (
	keyFields               = "Fields"
	keyTitle                = "Title"
	keyVersion              = "Version"
	keySubtitle             = "Subtitle"
	keyPayloadType          = "PayloadType"
	keyEndorsedParamsDigest = "EndorsedParamsDigest"
)

var (
	payloadRequiredKeys = []string{keyFields, keyTitle, keyVersion}
	payloadOptionalKeys = []string{keyEndorsedParamsDigest, keyPayloadType, keySubtitle}
)

// ErrEmptyFallback is returned when a top level field cannot be displayed on its own.
var ErrEmptyFallback = errors.New("field has no fallback text")

// SignablePayload is the structured description of a transaction shown to a signer.
// Fields are emitted in construction order.
type SignablePayload struct {
	Version              string
	Title                string
	Subtitle             string
	PayloadType          string
	Fields               []Field
	EndorsedParamsDigest string
}

// New returns an empty payload with the default version.
func New(title, payloadType string) *SignablePayload {
	return &SignablePayload{
		Version:     DefaultVersion,
		Title:       title,
		PayloadType: payloadType,
	}
}

// Append adds fields in display order.
func (p *SignablePayload) Append(fields ...Field) *SignablePayload {
	p.Fields = append(p.Fields, fields...)

	return p
}

// Endorse binds hidden parameters to the payload by their digest. Empty params leave the
// payload unendorsed.
func (p *SignablePayload) Endorse(params EndorsedParams) error {
	if len(params) == 0 {
		p.EndorsedParamsDigest = ""

		return nil
	}

	d, err := params.Digest()
	if err != nil {
		return err
	}
	p.EndorsedParamsDigest = d.String()

	return nil
}

// Canonical returns the wire representation of the payload with annotations stripped.
func (p SignablePayload) Canonical() (map[string]any, error) {
	return p.canonical(false)
}

func (p SignablePayload) canonical(annotated bool) (map[string]any, error) {
	fields := make([]any, 0, len(p.Fields))
	for i, f := range p.Fields {
		if f.FallbackText == "" && f.Type() != FieldTypeDivider {
			return nil, fmt.Errorf("field %d (%q): %w", i, f.Label, ErrEmptyFallback)
		}
		m, err := f.canonical(annotated)
		if err != nil {
			return nil, fmt.Errorf("field %d: %w", i, err)
		}
		fields = append(fields, m)
	}

	m := map[string]any{
		keyFields:  fields,
		keyTitle:   p.Title,
		keyVersion: p.Version,
	}
	if p.Subtitle != "" {
		m[keySubtitle] = p.Subtitle
	}
	if p.PayloadType != "" {
		m[keyPayloadType] = p.PayloadType
	}
	if p.EndorsedParamsDigest != "" {
		m[keyEndorsedParamsDigest] = p.EndorsedParamsDigest
	}

	if err := diffKeys("", payloadRequiredKeys, payloadOptionalKeys, keysOf(m)); err != nil {
		return nil, err
	}

	return m, nil
}

// ToJSON returns the compact canonical JSON of the payload.
func (p SignablePayload) ToJSON() (string, error) {
	b, err := Marshal(p)
	if err != nil {
		return "", err
	}

	return string(b), nil
}

// ToValidatedJSON returns the canonical JSON after checking it for restricted characters.
func (p SignablePayload) ToValidatedJSON() (string, error) {
	b, err := MarshalValidated(p)
	if err != nil {
		return "", err
	}

	return string(b), nil
}

// MarshalAnnotatedJSON returns the canonical JSON including wallet local annotations.
// The result is not a wire payload and must not be compared across implementations.
func (p SignablePayload) MarshalAnnotatedJSON() ([]byte, error) {
	m, err := p.canonical(true)
	if err != nil {
		return nil, err
	}

	return encode(m)
}
