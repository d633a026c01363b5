package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kevin07696/cybersource-adapter/internal/domain"
	"github.com/kevin07696/cybersource-adapter/internal/domain/ports"
)

// TransactionStore implements ports.TransactionStore on PostgreSQL
type TransactionStore struct {
	pool *pgxpool.Pool
}

// NewTransactionStore creates a new audit store
func NewTransactionStore(pool *pgxpool.Pool) *TransactionStore {
	return &TransactionStore{pool: pool}
}

const insertRecordSQL = `
INSERT INTO cybersource_transactions (
	id, transaction_id, reference, operation, status, amount, currency,
	response_code, approval_code, reconciliation_id, raw_response, created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

const selectRecordSQL = `
SELECT id, COALESCE(transaction_id, ''), COALESCE(reference, ''), operation,
	COALESCE(status, ''), COALESCE(amount::text, ''), COALESCE(currency, ''),
	COALESCE(response_code, ''), COALESCE(approval_code, ''),
	COALESCE(reconciliation_id, ''), COALESCE(raw_response, '{}'), created_at
FROM cybersource_transactions`

// Save writes one audit record
func (s *TransactionStore) Save(ctx context.Context, rec *domain.AuditRecord) error {
	var amount interface{}
	if rec.Amount != "" {
		numeric := pgtype.Numeric{}
		if err := numeric.Scan(rec.Amount); err != nil {
			return fmt.Errorf("convert amount: %w", err)
		}
		amount = numeric
	}

	raw := rec.RawResponse
	if len(raw) == 0 {
		raw = []byte("{}")
	}

	_, err := s.pool.Exec(ctx, insertRecordSQL,
		rec.ID,
		nullText(rec.TransactionID),
		nullText(rec.Reference),
		string(rec.Operation),
		nullText(rec.Status),
		amount,
		nullText(rec.Currency),
		nullText(rec.ResponseCode),
		nullText(rec.ApprovalCode),
		nullText(rec.ReconciliationID),
		raw,
		rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert audit record: %w", err)
	}
	return nil
}

// GetByTransactionID returns the most recent record for a gateway
// transaction id
func (s *TransactionStore) GetByTransactionID(ctx context.Context, transactionID string) (*domain.AuditRecord, error) {
	row := s.pool.QueryRow(ctx,
		selectRecordSQL+` WHERE transaction_id = $1 ORDER BY created_at DESC LIMIT 1`,
		transactionID,
	)
	rec, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ports.ErrRecordNotFound
		}
		return nil, fmt.Errorf("query audit record: %w", err)
	}
	return rec, nil
}

// ListByReference returns all records sharing a client reference code,
// newest first
func (s *TransactionStore) ListByReference(ctx context.Context, reference string) ([]*domain.AuditRecord, error) {
	rows, err := s.pool.Query(ctx,
		selectRecordSQL+` WHERE reference = $1 ORDER BY created_at DESC`,
		reference,
	)
	if err != nil {
		return nil, fmt.Errorf("query audit records: %w", err)
	}
	defer rows.Close()

	var records []*domain.AuditRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan audit record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit records: %w", err)
	}
	return records, nil
}

func scanRecord(row pgx.Row) (*domain.AuditRecord, error) {
	rec := &domain.AuditRecord{}
	var id uuid.UUID
	var operation string
	err := row.Scan(
		&id,
		&rec.TransactionID,
		&rec.Reference,
		&operation,
		&rec.Status,
		&rec.Amount,
		&rec.Currency,
		&rec.ResponseCode,
		&rec.ApprovalCode,
		&rec.ReconciliationID,
		&rec.RawResponse,
		&rec.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	rec.ID = id
	rec.Operation = domain.Operation(operation)
	return rec, nil
}

func nullText(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
