package ports

import (
	"context"
	"errors"

	"github.com/kevin07696/cybersource-adapter/internal/domain"
)

// ErrRecordNotFound is returned when no audit record matches
var ErrRecordNotFound = errors.New("audit record not found")

// TransactionStore persists audit records of gateway round-trips.
// Persistence is a host concern; the payment service works without one.
type TransactionStore interface {
	// Save writes one audit record
	Save(ctx context.Context, rec *domain.AuditRecord) error

	// GetByTransactionID returns the most recent record for a gateway
	// transaction id
	GetByTransactionID(ctx context.Context, transactionID string) (*domain.AuditRecord, error)

	// ListByReference returns all records sharing a client reference code,
	// newest first
	ListByReference(ctx context.Context, reference string) ([]*domain.AuditRecord, error)
}
