// Package payload defines the signable payload field protocol: the closed set of field
// variants, their canonical (alphabetically ordered) serialization and the per-variant
// expected key sets checked on every serialization.
package payload

// FieldType is the discriminator emitted under the "Type" key of every field.
type FieldType string

const (
	FieldTypeText          FieldType = "text"
	FieldTypeTextV2        FieldType = "text_v2"
	FieldTypeAddress       FieldType = "address"
	FieldTypeAddressV2     FieldType = "address_v2"
	FieldTypeNumber        FieldType = "number"
	FieldTypeAmount        FieldType = "amount"
	FieldTypeAmountV2      FieldType = "amount_v2"
	FieldTypeDivider       FieldType = "divider"
	FieldTypePreviewLayout FieldType = "preview_layout"
	FieldTypeListLayout    FieldType = "list_layout"
	FieldTypeUnknown       FieldType = "unknown"
)

// FieldTypes returns every member of the closed variant set, deprecated ones included.
func FieldTypes() []FieldType {
	return []FieldType{
		FieldTypeText,
		FieldTypeTextV2,
		FieldTypeAddress,
		FieldTypeAddressV2,
		FieldTypeNumber,
		FieldTypeAmount,
		FieldTypeAmountV2,
		FieldTypeDivider,
		FieldTypePreviewLayout,
		FieldTypeListLayout,
		FieldTypeUnknown,
	}
}

// VariantKey returns the JSON key that carries the variant specific payload, or an empty
// string for an unknown type.
func (t FieldType) VariantKey() string {
	switch t {
	case FieldTypeText:
		return "Text"
	case FieldTypeTextV2:
		return "TextV2"
	case FieldTypeAddress:
		return "Address"
	case FieldTypeAddressV2:
		return "AddressV2"
	case FieldTypeNumber:
		return "Number"
	case FieldTypeAmount:
		return "Amount"
	case FieldTypeAmountV2:
		return "AmountV2"
	case FieldTypeDivider:
		return "Divider"
	case FieldTypePreviewLayout:
		return "PreviewLayout"
	case FieldTypeListLayout:
		return "ListLayout"
	case FieldTypeUnknown:
		return "Unknown"
	default:
		return ""
	}
}

// Deprecated reports whether t is a v1 variant kept only for decoding older payloads.
func (t FieldType) Deprecated() bool {
	return t == FieldTypeText || t == FieldTypeAddress || t == FieldTypeAmount
}

const (
	keyFallbackText      = "FallbackText"
	keyLabel             = "Label"
	keyType              = "Type"
	keyStaticAnnotation  = "StaticAnnotation"
	keyDynamicAnnotation = "DynamicAnnotation"
)

// Variant is one member of the closed set of field payloads. The unexported methods keep
// the set closed to this package.
type Variant interface {
	CanonicallySerializable

	// FieldType returns the discriminator of the variant.
	FieldType() FieldType

	canonical(annotated bool) (map[string]any, error)
}

// Field is a single displayable unit of a signable payload.
type Field struct {
	Label        string
	FallbackText string
	Value        Variant
}

// Type returns the discriminator of the field value, or an empty FieldType when unset.
func (f Field) Type() FieldType {
	if f.Value == nil {
		return ""
	}

	return f.Value.FieldType()
}

// Canonical returns the wire representation of the field after verifying its key set.
func (f Field) Canonical() (map[string]any, error) {
	return f.canonical(false)
}

func (f Field) canonical(annotated bool) (map[string]any, error) {
	if f.Value == nil {
		return nil, &FieldVerificationError{Label: f.Label, Missing: []string{keyType}}
	}

	t := f.Value.FieldType()
	inner, err := f.Value.canonical(annotated)
	if err != nil {
		return nil, wrapFieldError(f.Label, err)
	}

	m := map[string]any{
		keyFallbackText: f.FallbackText,
		keyLabel:        f.Label,
		keyType:         string(t),
		t.VariantKey():  inner,
	}
	if err := VerifyKeys(t, keysOf(m)); err != nil {
		return nil, wrapFieldError(f.Label, err)
	}

	return m, nil
}

// StaticAnnotation is a fixed, wallet supplied note attached to a field.
type StaticAnnotation struct {
	Text string
}

// DynamicAnnotation references a wallet side lookup (for example a risk badge) that is
// resolved at display time.
type DynamicAnnotation struct {
	ID     string
	Type   string
	Params []string
}

// AnnotatedField wraps a Field with wallet local annotations. Annotations are not part of
// the wire protocol: Canonical strips them and only MarshalAnnotatedJSON emits them.
type AnnotatedField struct {
	Field

	StaticAnnotation  *StaticAnnotation
	DynamicAnnotation *DynamicAnnotation
}

// Annotate wraps plain fields without any annotation.
func Annotate(fields ...Field) []AnnotatedField {
	out := make([]AnnotatedField, 0, len(fields))
	for _, f := range fields {
		out = append(out, AnnotatedField{Field: f})
	}

	return out
}

// Canonical returns the wire representation with annotations stripped.
func (a AnnotatedField) Canonical() (map[string]any, error) {
	return a.canonical(false)
}

func (a AnnotatedField) canonical(annotated bool) (map[string]any, error) {
	m, err := a.Field.canonical(annotated)
	if err != nil {
		return nil, err
	}
	if !annotated {
		return m, nil
	}

	if a.StaticAnnotation != nil {
		m[keyStaticAnnotation] = map[string]any{"Text": a.StaticAnnotation.Text}
	}
	if a.DynamicAnnotation != nil {
		params := make([]any, 0, len(a.DynamicAnnotation.Params))
		for _, p := range a.DynamicAnnotation.Params {
			params = append(params, p)
		}
		m[keyDynamicAnnotation] = map[string]any{
			"ID":     a.DynamicAnnotation.ID,
			"Params": params,
			"Type":   a.DynamicAnnotation.Type,
		}
	}

	return m, nil
}
