package payload

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
)

// Unmarshal decodes a canonical payload JSON document, including the deprecated v1
// variants. Every field is checked against its declared key set and the decoded payload
// is re-verified as if it were about to be serialized.
func Unmarshal(data []byte) (*SignablePayload, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	if err := diffKeys("", payloadRequiredKeys, payloadOptionalKeys, rawKeys(raw)); err != nil {
		return nil, err
	}

	p := &SignablePayload{}
	for key, dst := range map[string]*string{
		keyVersion:              &p.Version,
		keyTitle:                &p.Title,
		keySubtitle:             &p.Subtitle,
		keyPayloadType:          &p.PayloadType,
		keyEndorsedParamsDigest: &p.EndorsedParamsDigest,
	} {
		if v, ok := raw[key]; ok {
			if err := json.Unmarshal(v, dst); err != nil {
				return nil, fmt.Errorf("decode %s: %w", key, err)
			}
		}
	}

	var fields []json.RawMessage
	if err := json.Unmarshal(raw[keyFields], &fields); err != nil {
		return nil, fmt.Errorf("decode %s: %w", keyFields, err)
	}
	for i, f := range fields {
		af, err := decodeField(f, false)
		if err != nil {
			return nil, fmt.Errorf("field %d: %w", i, err)
		}
		p.Fields = append(p.Fields, af.Field)
	}

	if _, err := p.Canonical(); err != nil {
		return nil, err
	}

	return p, nil
}

func decodeField(data json.RawMessage, allowAnnotations bool) (AnnotatedField, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return AnnotatedField{}, fmt.Errorf("decode field: %w", err)
	}

	var af AnnotatedField
	if allowAnnotations {
		if v, ok := raw[keyStaticAnnotation]; ok {
			af.StaticAnnotation = &StaticAnnotation{}
			if err := decodeStrict(v, af.StaticAnnotation); err != nil {
				return AnnotatedField{}, fmt.Errorf("decode %s: %w", keyStaticAnnotation, err)
			}
			delete(raw, keyStaticAnnotation)
		}
		if v, ok := raw[keyDynamicAnnotation]; ok {
			af.DynamicAnnotation = &DynamicAnnotation{}
			if err := decodeStrict(v, af.DynamicAnnotation); err != nil {
				return AnnotatedField{}, fmt.Errorf("decode %s: %w", keyDynamicAnnotation, err)
			}
			delete(raw, keyDynamicAnnotation)
		}
	}

	var t FieldType
	if v, ok := raw[keyType]; ok {
		if err := json.Unmarshal(v, &t); err != nil {
			return AnnotatedField{}, fmt.Errorf("decode %s: %w", keyType, err)
		}
	}
	if err := VerifyKeys(t, rawKeys(raw)); err != nil {
		return AnnotatedField{}, err
	}

	if err := json.Unmarshal(raw[keyLabel], &af.Label); err != nil {
		return AnnotatedField{}, fmt.Errorf("decode %s: %w", keyLabel, err)
	}
	if err := json.Unmarshal(raw[keyFallbackText], &af.FallbackText); err != nil {
		return AnnotatedField{}, fmt.Errorf("decode %s: %w", keyFallbackText, err)
	}

	v, err := decodeVariant(t, raw[t.VariantKey()])
	if err != nil {
		return AnnotatedField{}, wrapFieldError(af.Label, err)
	}
	af.Value = v

	return af, nil
}

type rawList struct {
	Fields []json.RawMessage
}

func (l *rawList) decode() (*ListLayout, error) {
	if l == nil {
		return nil, nil
	}

	out := &ListLayout{}
	for i, f := range l.Fields {
		af, err := decodeField(f, true)
		if err != nil {
			return nil, fmt.Errorf("list field %d: %w", i, err)
		}
		out.Fields = append(out.Fields, af)
	}

	return out, nil
}

func decodeVariant(t FieldType, data json.RawMessage) (Variant, error) {
	switch t {
	case FieldTypeTextV2:
		return decodeInto[TextV2](data)
	case FieldTypeAmountV2:
		return decodeInto[AmountV2](data)
	case FieldTypeNumber:
		return decodeInto[Number](data)
	case FieldTypeAddressV2:
		return decodeInto[AddressV2](data)
	case FieldTypeDivider:
		return decodeInto[Divider](data)
	case FieldTypeUnknown:
		return decodeInto[Unknown](data)
	case FieldTypeText:
		return decodeInto[Text](data)
	case FieldTypeAddress:
		return decodeInto[Address](data)
	case FieldTypeAmount:
		return decodeInto[Amount](data)
	case FieldTypeListLayout:
		var l rawList
		if err := decodeStrict(data, &l); err != nil {
			return nil, err
		}
		out, err := l.decode()
		if err != nil {
			return nil, err
		}

		return *out, nil
	case FieldTypePreviewLayout:
		var raw struct {
			Title     *TextV2
			Subtitle  *TextV2
			Condensed *rawList
			Expanded  *rawList
		}
		if err := decodeStrict(data, &raw); err != nil {
			return nil, err
		}
		condensed, err := raw.Condensed.decode()
		if err != nil {
			return nil, err
		}
		expanded, err := raw.Expanded.decode()
		if err != nil {
			return nil, err
		}

		return PreviewLayout{Title: raw.Title, Subtitle: raw.Subtitle, Condensed: condensed, Expanded: expanded}, nil
	default:
		return nil, &FieldVerificationError{Type: t, Reason: "unknown field type"}
	}
}

func decodeInto[T Variant](data []byte) (Variant, error) {
	var v T
	if err := decodeStrict(data, &v); err != nil {
		return nil, err
	}

	return v, nil
}

func decodeStrict(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode variant: %w", err)
	}

	return nil
}

func rawKeys(m map[string]json.RawMessage) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	return keys
}
