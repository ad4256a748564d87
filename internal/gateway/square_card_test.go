package gateway

import (
	"testing"

	sq "github.com/square/square-go-sdk"

	pkgerrors "github.com/harborpay/harborpay-backend/pkg/errors"
)

func storedCard(id string) *sq.Card {
	card := &sq.Card{}
	card.ID = &id
	brand := sq.CardBrandVisa
	card.CardBrand = &brand
	last4 := "4242"
	card.Last4 = &last4
	expMonth := int64(12)
	card.ExpMonth = &expMonth
	expYear := int64(2030)
	card.ExpYear = &expYear
	return card
}

func TestVaultedCardFromSquare(t *testing.T) {
	vaulted, err := vaultedCardFromSquare(storedCard("ccof:abc"))
	if err != nil {
		t.Fatalf("vaulted card: %v", err)
	}
	if vaulted.GatewaySourceID != "ccof:abc" {
		t.Fatalf("expected card id, got %q", vaulted.GatewaySourceID)
	}
	if vaulted.Brand == nil || *vaulted.Brand != string(sq.CardBrandVisa) {
		t.Fatalf("expected visa brand, got %v", vaulted.Brand)
	}
	if vaulted.Last4 == nil || *vaulted.Last4 != "4242" {
		t.Fatalf("expected last4 4242, got %v", vaulted.Last4)
	}
	if vaulted.ExpMonth == nil || *vaulted.ExpMonth != 12 {
		t.Fatalf("expected exp month 12, got %v", vaulted.ExpMonth)
	}
	if vaulted.ExpYear == nil || *vaulted.ExpYear != 2030 {
		t.Fatalf("expected exp year 2030, got %v", vaulted.ExpYear)
	}
}

func TestVaultedCardFromSquareMissingID(t *testing.T) {
	if _, err := vaultedCardFromSquare(nil); !pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error for nil card, got %v", err)
	}
	if _, err := vaultedCardFromSquare(&sq.Card{}); !pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error for card without id, got %v", err)
	}
}
