package shared

import "context"

// Capability interfaces for external marketplace collaborators. The pooling
// core depends on the shapes only; concrete clients live outside this module
// and are injected at the application boundary.

// LedgerService records marketplace events on the (simulated) trade ledger.
// Recording is best-effort and must never influence a business outcome.
type LedgerService interface {
	RecordShipmentConsolidated(ctx context.Context, shipmentRef string, orderRefs []string) error
}

// InferenceService is the opaque text/vision inference collaborator used by
// the listing and negotiation flows. The pooling subsystem never calls it.
type InferenceService interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// NoopLedger is the default LedgerService used when no ledger client is
// configured.
type NoopLedger struct{}

// RecordShipmentConsolidated implements LedgerService as a no-op.
func (NoopLedger) RecordShipmentConsolidated(ctx context.Context, shipmentRef string, orderRefs []string) error {
	return nil
}
