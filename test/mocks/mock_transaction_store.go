package mocks

import (
	"context"

	"github.com/kevin07696/cybersource-adapter/internal/domain"
)

// MockTransactionStore is a mock implementation of the TransactionStore port
// for testing
type MockTransactionStore struct {
	SaveFunc               func(ctx context.Context, rec *domain.AuditRecord) error
	GetByTransactionIDFunc func(ctx context.Context, transactionID string) (*domain.AuditRecord, error)
	ListByReferenceFunc    func(ctx context.Context, reference string) ([]*domain.AuditRecord, error)
	Saved                  []*domain.AuditRecord
}

// NewMockTransactionStore creates a new mock store
func NewMockTransactionStore() *MockTransactionStore {
	return &MockTransactionStore{Saved: []*domain.AuditRecord{}}
}

// Save captures the record and executes the mock function
func (m *MockTransactionStore) Save(ctx context.Context, rec *domain.AuditRecord) error {
	m.Saved = append(m.Saved, rec)
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, rec)
	}
	return nil
}

// GetByTransactionID executes the mock function
func (m *MockTransactionStore) GetByTransactionID(ctx context.Context, transactionID string) (*domain.AuditRecord, error) {
	if m.GetByTransactionIDFunc != nil {
		return m.GetByTransactionIDFunc(ctx, transactionID)
	}
	return nil, nil
}

// ListByReference executes the mock function
func (m *MockTransactionStore) ListByReference(ctx context.Context, reference string) ([]*domain.AuditRecord, error) {
	if m.ListByReferenceFunc != nil {
		return m.ListByReferenceFunc(ctx, reference)
	}
	return nil, nil
}

// Reset clears captured records
func (m *MockTransactionStore) Reset() {
	m.Saved = []*domain.AuditRecord{}
}
