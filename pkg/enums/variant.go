package enums

import "fmt"

// Variant identifies a concrete payment-method kind. All variants share the
// payment_methods table; behavior differences live in the gateway capability
// table keyed by this value.
type Variant string

const (
	VariantCreditCard  Variant = "credit_card"
	VariantStoreCredit Variant = "store_credit"
	VariantCheck       Variant = "check"
)

var validVariants = []Variant{
	VariantCreditCard,
	VariantStoreCredit,
	VariantCheck,
}

// String implements fmt.Stringer.
func (v Variant) String() string {
	return string(v)
}

// MethodType is the lowercase tag used to locate per-variant presentation
// templates on the storefront and admin.
func (v Variant) MethodType() string {
	return string(v)
}

// IsStoreCredit reports whether this is the store-credit variant.
func (v Variant) IsStoreCredit() bool {
	return v == VariantStoreCredit
}

// IsValid reports whether the value is a known Variant.
func (v Variant) IsValid() bool {
	for _, candidate := range validVariants {
		if candidate == v {
			return true
		}
	}
	return false
}

// ParseVariant converts the raw string to Variant.
func ParseVariant(value string) (Variant, error) {
	for _, candidate := range validVariants {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment method variant %q", value)
}
