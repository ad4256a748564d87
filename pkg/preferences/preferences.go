package preferences

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/harborpay/harborpay-backend/pkg/enums"
	pkgerrors "github.com/harborpay/harborpay-backend/pkg/errors"
)

// Kind is the declared type of a preference value.
type Kind string

const (
	KindString Kind = "string"
	KindBool   Kind = "bool"
	KindInt    Kind = "int"
)

// Definition declares one accepted preference key: its type and the value
// used when the key is absent.
type Definition struct {
	Kind    Kind
	Default any
}

// Schema is the full set of keys a variant accepts. Keys outside the schema
// are rejected.
type Schema map[string]Definition

// Store holds the configured preference values for one payment method
// record, validated against its variant schema.
type Store struct {
	variant enums.Variant
	schema  Schema
	values  map[string]any
}

// NewStore returns an empty store for the variant; reads resolve to the
// schema defaults until keys are set.
func NewStore(variant enums.Variant) (*Store, error) {
	schema, err := schemaFor(variant)
	if err != nil {
		return nil, err
	}
	return &Store{variant: variant, schema: schema, values: map[string]any{}}, nil
}

// FromJSON rebuilds a store from the persisted preference blob.
func FromJSON(variant enums.Variant, raw json.RawMessage) (*Store, error) {
	store, err := NewStore(variant)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return store, nil
	}
	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode preferences")
	}
	for key, value := range decoded {
		if err := store.Set(key, value); err != nil {
			return nil, err
		}
	}
	return store, nil
}

// Set stores a value after validating the key is declared and the value
// matches the declared kind. A nil value is accepted and clears back to the
// default at read time.
func (s *Store) Set(key string, value any) error {
	def, ok := s.schema[key]
	if !ok {
		return pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("preference %q is not accepted by variant %s", key, s.variant)).
			WithDetails(map[string]any{"key": key, "variant": s.variant.String()})
	}
	if value != nil {
		coerced, err := coerce(def.Kind, value)
		if err != nil {
			return pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("preference %q must be a %s", key, def.Kind))
		}
		value = coerced
	}
	s.values[key] = value
	return nil
}

// Get resolves a key to its configured value or the declared default.
func (s *Store) Get(key string) (any, bool) {
	def, ok := s.schema[key]
	if !ok {
		return nil, false
	}
	if value, set := s.values[key]; set && value != nil {
		return value, true
	}
	return def.Default, true
}

// GetString resolves a string-kinded key.
func (s *Store) GetString(key string) string {
	value, ok := s.Get(key)
	if !ok || value == nil {
		return ""
	}
	str, _ := value.(string)
	return str
}

// GetBool resolves a bool-kinded key.
func (s *Store) GetBool(key string) bool {
	value, ok := s.Get(key)
	if !ok || value == nil {
		return false
	}
	b, _ := value.(bool)
	return b
}

// Options snapshots the effective preference values handed to gateway
// construction. Keys resolving to nil are dropped, so a login configured as
// null never reaches a gateway.
func (s *Store) Options() map[string]any {
	snapshot := make(map[string]any, len(s.schema))
	for key := range s.schema {
		value, _ := s.Get(key)
		if value == nil {
			continue
		}
		snapshot[key] = value
	}
	return snapshot
}

// ToJSON serializes only the explicitly-set values; defaults stay in code.
func (s *Store) ToJSON() (json.RawMessage, error) {
	data, err := json.Marshal(s.values)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode preferences")
	}
	return json.RawMessage(data), nil
}

// Fingerprint hashes the effective options snapshot. Gateway caches compare
// fingerprints so a preference change rebuilds the gateway.
func (s *Store) Fingerprint() string {
	data, err := json.Marshal(s.Options())
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func coerce(kind Kind, value any) (any, error) {
	switch kind {
	case KindString:
		if str, ok := value.(string); ok {
			return str, nil
		}
	case KindBool:
		if b, ok := value.(bool); ok {
			return b, nil
		}
	case KindInt:
		switch v := value.(type) {
		case int:
			return v, nil
		case int64:
			return int(v), nil
		case float64:
			if v == float64(int(v)) {
				return int(v), nil
			}
		}
	}
	return nil, fmt.Errorf("value %v is not a %s", value, kind)
}
