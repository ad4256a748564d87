package square

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	sqcore "github.com/square/square-go-sdk/core"

	pkgerrors "github.com/harborpay/harborpay-backend/pkg/errors"
	"github.com/harborpay/harborpay-backend/pkg/logger"
)

func TestNewClientRejectsUnknownMode(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "test"})
	if _, err := NewClient(context.Background(), "token", "staging", logg); err == nil {
		t.Fatal("expected unknown mode to be rejected")
	}
}

func TestNewClientDefaultsToTestMode(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "test"})
	c, err := NewClient(context.Background(), "token", "", logg)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if c.Mode() != ModeTest {
		t.Fatalf("expected test mode, got %q", c.Mode())
	}
	if c.baseURL != baseURLs[ModeTest] {
		t.Fatalf("expected sandbox base url, got %q", c.baseURL)
	}
}

func TestTwoClientsKeepIndependentModes(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "test"})
	testClient, err := NewClient(context.Background(), "token-a", ModeTest, logg)
	if err != nil {
		t.Fatalf("test client: %v", err)
	}
	liveClient, err := NewClient(context.Background(), "token-b", ModeLive, logg)
	if err != nil {
		t.Fatalf("live client: %v", err)
	}

	if testClient.Mode() == liveClient.Mode() {
		t.Fatal("expected modes to stay per-instance")
	}
	if testClient.baseURL == liveClient.baseURL {
		t.Fatal("expected base urls to stay per-instance")
	}
}

func TestEnsureIdempotencyKey(t *testing.T) {
	c := &Client{}
	if got := c.ensureIdempotencyKey("pref", "custom-key"); got != "custom-key" {
		t.Fatalf("expected provided key, got %q", got)
	}
	if got := c.ensureIdempotencyKey("prefix", ""); !strings.HasPrefix(got, "prefix-") {
		t.Fatalf("generated idempotency key %q missing prefix", got)
	}
}

func TestRedact(t *testing.T) {
	c := &Client{}
	if out := c.redact("verification_token", "abc123"); out != "[REDACTED]" {
		t.Fatalf("expected redacted value, got %v", out)
	}
	if v := c.redact("status", "ok"); v != "ok" {
		t.Fatalf("unexpected redaction for safe key")
	}
}

func TestDomainCodeForStatus(t *testing.T) {
	tests := []struct {
		status int
		code   pkgerrors.Code
	}{
		{http.StatusNotFound, pkgerrors.CodeNotFound},
		{http.StatusConflict, pkgerrors.CodeConflict},
		{http.StatusBadRequest, pkgerrors.CodeValidation},
		{http.StatusUnprocessableEntity, pkgerrors.CodeStateConflict},
		{http.StatusTooManyRequests, pkgerrors.CodeValidation},
		{http.StatusInternalServerError, pkgerrors.CodeDependency},
	}
	for _, tt := range tests {
		if got := domainCodeForStatus(tt.status); got != tt.code {
			t.Fatalf("status %d expected %s got %s", tt.status, tt.code, got)
		}
	}
}

func TestMapSquareErrorIdempotencyReuse(t *testing.T) {
	c := &Client{}
	payload := `{"errors":[{"category":"API_ERROR","code":"IDEMPOTENCY_KEY_REUSED"}]}`
	err := sqcore.NewAPIError(http.StatusConflict, errors.New(payload))

	mapped := c.mapSquareError(err, "create payment")
	typed := pkgerrors.As(mapped)
	if typed == nil {
		t.Fatal("expected typed error")
	}
	if typed.Code() != pkgerrors.CodeIdempotency {
		t.Fatalf("expected idempotency code, got %s", typed.Code())
	}
}

func TestMapSquareErrorPlainErrorIsDependency(t *testing.T) {
	c := &Client{}
	mapped := c.mapSquareError(errors.New("dial tcp: timeout"), "refund payment")
	if !pkgerrors.IsCode(mapped, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency code, got %v", mapped)
	}
}
