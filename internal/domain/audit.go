package domain

import (
	"time"

	"github.com/google/uuid"
)

// Operation names the gateway operation an audit record belongs to
type Operation string

const (
	OperationAuthorize Operation = "authorize"
	OperationCharge    Operation = "charge"
	OperationCapture   Operation = "capture"
	OperationVoid      Operation = "void"
	OperationRefund    Operation = "refund"
	OperationRetrieve  Operation = "retrieve"
)

// AuditRecord is the persistence-shaped view of one gateway round-trip.
// Storage is optional; the core emits records and a TransactionStore decides
// where they go.
type AuditRecord struct {
	CreatedAt        time.Time
	ID               uuid.UUID
	TransactionID    string
	Reference        string
	Operation        Operation
	Status           string
	Amount           string
	Currency         string
	ResponseCode     string
	ApprovalCode     string
	ReconciliationID string
	RawResponse      []byte
}

// NewAuditRecord builds an audit record from a normalized transaction
func NewAuditRecord(op Operation, tx *Transaction) *AuditRecord {
	rec := &AuditRecord{
		ID:        uuid.New(),
		Operation: op,
		CreatedAt: time.Now().UTC(),
	}
	rec.TransactionID, _ = tx.ID()
	rec.Status, _ = tx.Status()
	rec.Reference, _ = tx.Reference()
	rec.Amount, _ = tx.Amount()
	rec.Currency, _ = tx.Currency()
	rec.ResponseCode, _ = tx.ResponseCode()
	rec.ApprovalCode, _ = tx.ApprovalCode()
	rec.ReconciliationID, _ = tx.ReconciliationID()
	rec.RawResponse = tx.RawResponse()
	return rec
}
