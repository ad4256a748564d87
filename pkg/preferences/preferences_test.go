package preferences

import (
	"encoding/json"
	"testing"

	"github.com/harborpay/harborpay-backend/pkg/enums"
	pkgerrors "github.com/harborpay/harborpay-backend/pkg/errors"
)

func TestNewStoreResolvesDeclaredDefaults(t *testing.T) {
	store, err := NewStore(enums.VariantCreditCard)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	if got := store.GetString(KeyServer); got != ServerTest {
		t.Fatalf("expected server default %q, got %q", ServerTest, got)
	}
	if !store.GetBool(KeyTestMode) {
		t.Fatal("expected test_mode default true")
	}
}

func TestSetRejectsUnknownKey(t *testing.T) {
	store, _ := NewStore(enums.VariantCreditCard)

	err := store.Set("merchant_pin", "1234")
	if err == nil {
		t.Fatal("expected unknown key to be rejected")
	}
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSetRejectsWrongType(t *testing.T) {
	store, _ := NewStore(enums.VariantCreditCard)

	if err := store.Set(KeyTestMode, "yes"); err == nil {
		t.Fatal("expected type mismatch to be rejected")
	}
	if err := store.Set(KeyServer, ServerLive); err != nil {
		t.Fatalf("valid set failed: %v", err)
	}
}

func TestOptionsDropsNullLogin(t *testing.T) {
	store, _ := NewStore(enums.VariantCreditCard)
	if err := store.Set(KeyLogin, nil); err != nil {
		t.Fatalf("set nil login: %v", err)
	}

	opts := store.Options()
	if _, present := opts[KeyLogin]; present {
		t.Fatal("options must never contain a null login")
	}
	if opts[KeyServer] != ServerTest {
		t.Fatal("expected defaults in snapshot")
	}
}

func TestOptionsIncludesConfiguredLogin(t *testing.T) {
	store, _ := NewStore(enums.VariantCreditCard)
	if err := store.Set(KeyLogin, "merchant-a"); err != nil {
		t.Fatalf("set login: %v", err)
	}

	if got := store.Options()[KeyLogin]; got != "merchant-a" {
		t.Fatalf("expected configured login, got %v", got)
	}
}

func TestFromJSONRoundTrip(t *testing.T) {
	store, _ := NewStore(enums.VariantCreditCard)
	_ = store.Set(KeyServer, ServerLive)
	_ = store.Set(KeyLogin, "merchant-a")

	raw, err := store.ToJSON()
	if err != nil {
		t.Fatalf("to json: %v", err)
	}

	restored, err := FromJSON(enums.VariantCreditCard, raw)
	if err != nil {
		t.Fatalf("from json: %v", err)
	}
	if restored.GetString(KeyServer) != ServerLive {
		t.Fatal("expected server to survive round trip")
	}
	if restored.GetString(KeyLogin) != "merchant-a" {
		t.Fatal("expected login to survive round trip")
	}
}

func TestFromJSONRejectsUnknownKeys(t *testing.T) {
	raw := json.RawMessage(`{"server":"test","bogus":1}`)
	if _, err := FromJSON(enums.VariantCreditCard, raw); err == nil {
		t.Fatal("expected unknown persisted key to be rejected")
	}
}

func TestFingerprintChangesWithPreferences(t *testing.T) {
	store, _ := NewStore(enums.VariantCreditCard)
	before := store.Fingerprint()

	if err := store.Set(KeyServer, ServerLive); err != nil {
		t.Fatalf("set server: %v", err)
	}
	after := store.Fingerprint()

	if before == after {
		t.Fatal("expected fingerprint to change when a preference changes")
	}
}

func TestCheckVariantAcceptsNothing(t *testing.T) {
	store, err := NewStore(enums.VariantCheck)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if err := store.Set(KeyServer, ServerTest); err == nil {
		t.Fatal("check variant declares no preferences")
	}
	if len(store.Options()) != 0 {
		t.Fatal("expected empty snapshot for check variant")
	}
}
