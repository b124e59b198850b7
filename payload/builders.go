package payload

import (
	"encoding/hex"
	"strings"
)

// RawDataLabel is the label of the field carrying the hex of the decoded input.
const RawDataLabel = "Raw Data"

// NewTextField returns a TextV2 field whose fallback text is the text itself.
func NewTextField(label, text string) Field {
	return NewTextFieldWithFallback(label, text, text)
}

// NewTextFieldWithFallback returns a TextV2 field with a distinct fallback text.
func NewTextFieldWithFallback(label, text, fallback string) Field {
	return Field{Label: label, FallbackText: fallback, Value: TextV2{Text: text}}
}

// NewAmountField returns an AmountV2 field. The amount must be a plain decimal number.
func NewAmountField(label, amount, abbreviation string) (Field, error) {
	if err := ValidateNumber(amount); err != nil {
		return Field{}, err
	}

	return Field{
		Label:        label,
		FallbackText: strings.TrimSpace(amount + " " + abbreviation),
		Value:        AmountV2{Amount: amount, Abbreviation: abbreviation},
	}, nil
}

// NewNumberField returns a Number field with an optional unit.
func NewNumberField(label, number, unit string) (Field, error) {
	if err := ValidateNumber(number); err != nil {
		return Field{}, err
	}

	return Field{
		Label:        label,
		FallbackText: strings.TrimSpace(number + " " + unit),
		Value:        Number{Number: number, Unit: unit},
	}, nil
}

// NewAddressField returns an AddressV2 field. The fallback shows the name, when known,
// next to the address.
func NewAddressField(label, address, name string) Field {
	fallback := address
	if name != "" {
		fallback = name + " (" + address + ")"
	}

	return Field{Label: label, FallbackText: fallback, Value: AddressV2{Address: address, Name: name}}
}

// NewDividerField returns a thin divider.
func NewDividerField() Field {
	return Field{Value: Divider{Style: DividerStyleThin}}
}

// NewUnknownField returns a field for data the producer could not interpret.
func NewUnknownField(label, data, explanation string) Field {
	return Field{
		Label:        label,
		FallbackText: data,
		Value:        Unknown{Data: data, Explanation: explanation},
	}
}

// NewRawDataField returns the TextV2 field holding the lowercase hex of raw.
func NewRawDataField(raw []byte) Field {
	return NewTextField(RawDataLabel, hex.EncodeToString(raw))
}

// NewListLayoutField returns a ListLayout field.
func NewListLayoutField(label, fallback string, fields []AnnotatedField) Field {
	return Field{Label: label, FallbackText: fallback, Value: ListLayout{Fields: fields}}
}

// PreviewLayoutParams describes a preview layout field.
type PreviewLayoutParams struct {
	Label     string
	Fallback  string
	Title     string
	Subtitle  string
	Condensed []Field
	Expanded  []Field
}

// NewPreviewLayoutField returns a PreviewLayout field. Empty title or subtitle are omitted,
// as are empty condensed or expanded lists.
func NewPreviewLayoutField(p PreviewLayoutParams) Field {
	var layout PreviewLayout
	if p.Title != "" {
		layout.Title = &TextV2{Text: p.Title}
	}
	if p.Subtitle != "" {
		layout.Subtitle = &TextV2{Text: p.Subtitle}
	}
	if len(p.Condensed) > 0 {
		layout.Condensed = &ListLayout{Fields: Annotate(p.Condensed...)}
	}
	if len(p.Expanded) > 0 {
		layout.Expanded = &ListLayout{Fields: Annotate(p.Expanded...)}
	}

	return Field{Label: p.Label, FallbackText: p.Fallback, Value: layout}
}
