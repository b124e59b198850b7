package payload

// TextV2 is a plain text value.
type TextV2 struct {
	Text string
}

func (TextV2) FieldType() FieldType { return FieldTypeTextV2 }

func (v TextV2) Canonical() (map[string]any, error) { return v.canonical(false) }

func (v TextV2) canonical(bool) (map[string]any, error) {
	return map[string]any{"Text": v.Text}, nil
}

// AmountV2 is a decimal amount with an optional unit abbreviation (symbol).
type AmountV2 struct {
	Amount       string
	Abbreviation string
}

func (AmountV2) FieldType() FieldType { return FieldTypeAmountV2 }

func (v AmountV2) Canonical() (map[string]any, error) { return v.canonical(false) }

func (v AmountV2) canonical(bool) (map[string]any, error) {
	if v.Amount == "" {
		return nil, &FieldVerificationError{Type: FieldTypeAmountV2, Missing: []string{"Amount"}}
	}
	if err := ValidateNumber(v.Amount); err != nil {
		return nil, err
	}

	m := map[string]any{"Amount": v.Amount}
	if v.Abbreviation != "" {
		m["Abbreviation"] = v.Abbreviation
	}

	return m, nil
}

// Number is a numeric value with an optional unit.
type Number struct {
	Number string
	Unit   string
}

func (Number) FieldType() FieldType { return FieldTypeNumber }

func (v Number) Canonical() (map[string]any, error) { return v.canonical(false) }

func (v Number) canonical(bool) (map[string]any, error) {
	if v.Number == "" {
		return nil, &FieldVerificationError{Type: FieldTypeNumber, Missing: []string{"Number"}}
	}
	if err := ValidateNumber(v.Number); err != nil {
		return nil, err
	}

	m := map[string]any{"Number": v.Number}
	if v.Unit != "" {
		m["Unit"] = v.Unit
	}

	return m, nil
}

// AddressV2 is an account, contract or object address with optional labelling.
type AddressV2 struct {
	Address    string
	Name       string
	Memo       string
	AssetLabel string
	BadgeText  string
}

func (AddressV2) FieldType() FieldType { return FieldTypeAddressV2 }

func (v AddressV2) Canonical() (map[string]any, error) { return v.canonical(false) }

func (v AddressV2) canonical(bool) (map[string]any, error) {
	if v.Address == "" {
		return nil, &FieldVerificationError{Type: FieldTypeAddressV2, Missing: []string{"Address"}}
	}

	m := map[string]any{"Address": v.Address}
	for k, s := range map[string]string{
		"Name":       v.Name,
		"Memo":       v.Memo,
		"AssetLabel": v.AssetLabel,
		"BadgeText":  v.BadgeText,
	} {
		if s != "" {
			m[k] = s
		}
	}

	return m, nil
}

// DividerStyle selects how a divider is drawn.
type DividerStyle string

// DividerStyleThin is the default divider.
const DividerStyleThin DividerStyle = ""

// Divider separates groups of fields.
type Divider struct {
	Style DividerStyle
}

func (Divider) FieldType() FieldType { return FieldTypeDivider }

func (v Divider) Canonical() (map[string]any, error) { return v.canonical(false) }

func (v Divider) canonical(bool) (map[string]any, error) {
	return map[string]any{"Style": string(v.Style)}, nil
}

// Unknown carries data the producer could not interpret, with an explanation.
type Unknown struct {
	Data        string
	Explanation string
}

func (Unknown) FieldType() FieldType { return FieldTypeUnknown }

func (v Unknown) Canonical() (map[string]any, error) { return v.canonical(false) }

func (v Unknown) canonical(bool) (map[string]any, error) {
	return map[string]any{"Data": v.Data, "Explanation": v.Explanation}, nil
}

// ListLayout is an ordered list of annotated fields.
type ListLayout struct {
	Fields []AnnotatedField
}

func (ListLayout) FieldType() FieldType { return FieldTypeListLayout }

func (v ListLayout) Canonical() (map[string]any, error) { return v.canonical(false) }

func (v ListLayout) canonical(annotated bool) (map[string]any, error) {
	fields := make([]any, 0, len(v.Fields))
	for _, f := range v.Fields {
		m, err := f.canonical(annotated)
		if err != nil {
			return nil, err
		}
		fields = append(fields, m)
	}

	return map[string]any{"Fields": fields}, nil
}

// PreviewLayout groups fields under a title, with a condensed view and an expanded view.
// The expanded view must carry every field of the condensed one.
type PreviewLayout struct {
	Title     *TextV2
	Subtitle  *TextV2
	Condensed *ListLayout
	Expanded  *ListLayout
}

func (PreviewLayout) FieldType() FieldType { return FieldTypePreviewLayout }

func (v PreviewLayout) Canonical() (map[string]any, error) { return v.canonical(false) }

func (v PreviewLayout) canonical(annotated bool) (map[string]any, error) {
	if err := v.verifyCondensed(); err != nil {
		return nil, err
	}

	m := map[string]any{}
	if v.Title != nil {
		m["Title"] = map[string]any{"Text": v.Title.Text}
	}
	if v.Subtitle != nil {
		m["Subtitle"] = map[string]any{"Text": v.Subtitle.Text}
	}
	if v.Condensed != nil {
		c, err := v.Condensed.canonical(annotated)
		if err != nil {
			return nil, err
		}
		m["Condensed"] = c
	}
	if v.Expanded != nil {
		e, err := v.Expanded.canonical(annotated)
		if err != nil {
			return nil, err
		}
		m["Expanded"] = e
	}

	return m, nil
}

func (v PreviewLayout) verifyCondensed() error {
	if v.Condensed == nil || len(v.Condensed.Fields) == 0 {
		return nil
	}

	type labelled struct{ label, fallback string }
	expanded := map[labelled]bool{}
	if v.Expanded != nil {
		for _, f := range v.Expanded.Fields {
			expanded[labelled{f.Label, f.FallbackText}] = true
		}
	}

	var missing []string
	for _, f := range v.Condensed.Fields {
		if !expanded[labelled{f.Label, f.FallbackText}] {
			missing = append(missing, f.Label)
		}
	}
	if len(missing) > 0 {
		return &FieldVerificationError{Type: FieldTypePreviewLayout, Missing: missing, Reason: "condensed fields absent from expanded view"}
	}

	return nil
}

// Text is the v1 text variant. It is decoded for compatibility and never built by new code.
type Text struct {
	Text string
}

func (Text) FieldType() FieldType { return FieldTypeText }

func (v Text) Canonical() (map[string]any, error) { return v.canonical(false) }

func (v Text) canonical(bool) (map[string]any, error) {
	return map[string]any{"Text": v.Text}, nil
}

// Address is the v1 address variant.
type Address struct {
	Address string
	Name    string
}

func (Address) FieldType() FieldType { return FieldTypeAddress }

func (v Address) Canonical() (map[string]any, error) { return v.canonical(false) }

func (v Address) canonical(bool) (map[string]any, error) {
	return map[string]any{"Address": v.Address, "Name": v.Name}, nil
}

// Amount is the v1 amount variant.
type Amount struct {
	Amount       string
	Abbreviation string
}

func (Amount) FieldType() FieldType { return FieldTypeAmount }

func (v Amount) Canonical() (map[string]any, error) { return v.canonical(false) }

func (v Amount) canonical(bool) (map[string]any, error) {
	return map[string]any{"Abbreviation": v.Abbreviation, "Amount": v.Amount}, nil
}

var (
	_ Variant = TextV2{}
	_ Variant = AmountV2{}
	_ Variant = Number{}
	_ Variant = AddressV2{}
	_ Variant = Divider{}
	_ Variant = Unknown{}
	_ Variant = ListLayout{}
	_ Variant = PreviewLayout{}
	_ Variant = Text{}
	_ Variant = Address{}
	_ Variant = Amount{}
)
