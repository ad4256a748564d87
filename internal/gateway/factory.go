package gateway

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/harborpay/harborpay-backend/pkg/db/models"
)

type cachedGateway struct {
	fingerprint string
	gateway     Gateway
}

// Factory builds gateways per payment method record and caches them keyed by
// record ID. A cached instance is reused only while the record's preference
// fingerprint is unchanged; any preference edit produces a new fingerprint
// and therefore a fresh gateway on the next resolve.
type Factory struct {
	table *CapabilityTable

	mu    sync.RWMutex
	cache map[uuid.UUID]cachedGateway
}

func NewFactory(table *CapabilityTable) *Factory {
	return &Factory{
		table: table,
		cache: make(map[uuid.UUID]cachedGateway),
	}
}

func (f *Factory) Capability(method *models.PaymentMethod) (Capability, error) {
	return f.table.For(method.Variant)
}

// Resolve returns the gateway for a record, building one if the cache has no
// entry for the record's current preference fingerprint.
func (f *Factory) Resolve(ctx context.Context, method *models.PaymentMethod) (Gateway, error) {
	prefs, err := method.PreferenceStore()
	if err != nil {
		return nil, err
	}
	fp := prefs.Fingerprint()

	f.mu.RLock()
	entry, ok := f.cache[method.ID]
	f.mu.RUnlock()
	if ok && entry.fingerprint == fp {
		return entry.gateway, nil
	}

	capability, err := f.table.For(method.Variant)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if entry, ok := f.cache[method.ID]; ok && entry.fingerprint == fp {
		return entry.gateway, nil
	}
	gw, err := capability.BuildGateway(ctx, method, prefs)
	if err != nil {
		return nil, err
	}
	f.cache[method.ID] = cachedGateway{fingerprint: fp, gateway: gw}
	return gw, nil
}

// Invalidate drops the cached gateway for a record. Callers invoke it after
// deleting a record; preference edits invalidate implicitly via fingerprint.
func (f *Factory) Invalidate(id uuid.UUID) {
	f.mu.Lock()
	delete(f.cache, id)
	f.mu.Unlock()
}
