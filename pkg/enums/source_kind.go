package enums

import "fmt"

// SourceKind classifies the reusable payment sources a variant can vault.
// SourceKindNone is the sentinel for manual/offline variants that cannot
// store sources at all.
type SourceKind string

const (
	SourceKindCard        SourceKind = "card"
	SourceKindStoreCredit SourceKind = "store_credit"
	SourceKindNone        SourceKind = "none"
)

var validSourceKinds = []SourceKind{
	SourceKindCard,
	SourceKindStoreCredit,
	SourceKindNone,
}

// IsValid reports whether the value is a known SourceKind.
func (s SourceKind) IsValid() bool {
	for _, candidate := range validSourceKinds {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseSourceKind converts the raw string to SourceKind.
func ParseSourceKind(value string) (SourceKind, error) {
	for _, candidate := range validSourceKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid source kind %q", value)
}
