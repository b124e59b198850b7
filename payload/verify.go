package payload

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"
)

var (
	// ErrFieldVerification is returned when a serialized value does not carry exactly the
	// keys its type declares. It always indicates a programming defect.
	ErrFieldVerification = errors.New("field verification failed")

	// ErrInvalidNumber is returned for numeric strings outside the accepted grammar.
	ErrInvalidNumber = errors.New("invalid number")
)

// expectedKeys is the declared key set of every variant. It is kept as a literal table,
// independent of VariantKey, so that a variant wired into one but not the other fails.
var expectedKeys = map[FieldType][]string{
	FieldTypeText:          {"FallbackText", "Label", "Text", "Type"},
	FieldTypeTextV2:        {"FallbackText", "Label", "TextV2", "Type"},
	FieldTypeAddress:       {"Address", "FallbackText", "Label", "Type"},
	FieldTypeAddressV2:     {"AddressV2", "FallbackText", "Label", "Type"},
	FieldTypeNumber:        {"FallbackText", "Label", "Number", "Type"},
	FieldTypeAmount:        {"Amount", "FallbackText", "Label", "Type"},
	FieldTypeAmountV2:      {"AmountV2", "FallbackText", "Label", "Type"},
	FieldTypeDivider:       {"Divider", "FallbackText", "Label", "Type"},
	FieldTypePreviewLayout: {"FallbackText", "Label", "PreviewLayout", "Type"},
	FieldTypeListLayout:    {"FallbackText", "Label", "ListLayout", "Type"},
	FieldTypeUnknown:       {"FallbackText", "Label", "Type", "Unknown"},
}

// ExpectedKeys returns the sorted key set a serialized field of type t must carry.
func ExpectedKeys(t FieldType) ([]string, bool) {
	keys, ok := expectedKeys[t]
	if !ok {
		return nil, false
	}

	return slices.Clone(keys), true
}

// FieldVerificationError describes a mismatch between the keys a value declares and the
// keys it actually produced.
type FieldVerificationError struct {
	Type       FieldType
	Label      string
	Missing    []string
	Unexpected []string
	Reason     string
}

func (e *FieldVerificationError) Error() string {
	var b strings.Builder
	b.WriteString(ErrFieldVerification.Error())
	if e.Type != "" {
		fmt.Fprintf(&b, " for %s", e.Type)
	}
	if e.Label != "" {
		fmt.Fprintf(&b, " %q", e.Label)
	}
	if len(e.Missing) > 0 {
		fmt.Fprintf(&b, ": missing [%s]", strings.Join(e.Missing, ", "))
	}
	if len(e.Unexpected) > 0 {
		fmt.Fprintf(&b, ": unexpected [%s]", strings.Join(e.Unexpected, ", "))
	}
	if e.Reason != "" {
		fmt.Fprintf(&b, ": %s", e.Reason)
	}

	return b.String()
}

func (e *FieldVerificationError) Unwrap() error { return ErrFieldVerification }

// VerifyKeys compares actual against the declared key set of t.
func VerifyKeys(t FieldType, actual []string) error {
	expected, ok := expectedKeys[t]
	if !ok {
		return &FieldVerificationError{Type: t, Reason: "no expected key set declared"}
	}

	return diffKeys(t, expected, nil, actual)
}

func diffKeys(t FieldType, required, optional, actual []string) error {
	var missing, unexpected []string
	for _, k := range required {
		if !slices.Contains(actual, k) {
			missing = append(missing, k)
		}
	}
	for _, k := range actual {
		if !slices.Contains(required, k) && !slices.Contains(optional, k) {
			unexpected = append(unexpected, k)
		}
	}
	if len(missing) == 0 && len(unexpected) == 0 {
		return nil
	}
	slices.Sort(missing)
	slices.Sort(unexpected)

	return &FieldVerificationError{Type: t, Missing: missing, Unexpected: unexpected}
}

func keysOf(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	return keys
}

// wrapFieldError attaches the field label to verification errors that lack one.
func wrapFieldError(label string, err error) error {
	var fve *FieldVerificationError
	if errors.As(err, &fve) && fve.Label == "" {
		cp := *fve
		cp.Label = label

		return &cp
	}

	return err
}

var numberPattern = regexp.MustCompile(`^([-+]?[0-9]+(\.[0-9]+)?|[-+]?0)$`)

// ValidateNumber checks that s is a plain decimal number, optionally signed.
func ValidateNumber(s string) error {
	if !numberPattern.MatchString(s) {
		return fmt.Errorf("%w: %q", ErrInvalidNumber, s)
	}

	return nil
}
