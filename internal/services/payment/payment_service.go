package payment

import (
	"context"
	"time"

	"github.com/kevin07696/cybersource-adapter/internal/domain"
	"github.com/kevin07696/cybersource-adapter/internal/domain/ports"
	"github.com/kevin07696/cybersource-adapter/pkg/errors"
	"github.com/kevin07696/cybersource-adapter/pkg/observability"
)

// Service is the caller-facing facade over the gateway. It sequences request
// construction, the gateway round-trip and transaction normalization, and
// maps every failure into a single PaymentError. It is explicitly
// constructed and dependency-injected; no process-wide singleton.
//
// The service holds no per-call mutable state and is safe for concurrent
// use. It never retries: a retry of capture or refund without fresh
// idempotent references risks duplicate financial effects, so retry policy
// belongs to the caller.
type Service struct {
	gateway ports.Gateway
	store   ports.TransactionStore
	logger  ports.Logger
}

// NewService creates a payment service. The store is optional; pass nil to
// skip audit persistence.
func NewService(gateway ports.Gateway, store ports.TransactionStore, logger ports.Logger) *Service {
	return &Service{
		gateway: gateway,
		store:   store,
		logger:  logger,
	}
}

// Authorize reserves funds without capturing them
func (s *Service) Authorize(ctx context.Context, intent *domain.PaymentIntent) (*domain.Transaction, error) {
	return s.createPayment(ctx, domain.OperationAuthorize, intent, false)
}

// Charge authorizes and immediately captures funds
func (s *Service) Charge(ctx context.Context, intent *domain.PaymentIntent) (*domain.Transaction, error) {
	return s.createPayment(ctx, domain.OperationCharge, intent, true)
}

func (s *Service) createPayment(ctx context.Context, op domain.Operation, intent *domain.PaymentIntent, capture bool) (*domain.Transaction, error) {
	normalized := *intent
	normalized.Capture = capture

	start := time.Now()
	raw, err := s.gateway.CreatePayment(ctx, &normalized)
	if err != nil {
		return nil, s.fail(op, start, err)
	}
	return s.finish(ctx, op, start, raw), nil
}

// Capture transfers previously authorized funds. An empty amount captures
// the full authorized amount.
func (s *Service) Capture(ctx context.Context, transactionID, amount string, opts domain.RequestOptions) (*domain.Transaction, error) {
	start := time.Now()
	raw, err := s.gateway.CapturePayment(ctx, transactionID, amount, opts)
	if err != nil {
		return nil, s.fail(domain.OperationCapture, start, err)
	}
	return s.finish(ctx, domain.OperationCapture, start, raw), nil
}

// Void cancels an authorization or capture before settlement
func (s *Service) Void(ctx context.Context, transactionID string, opts domain.RequestOptions) (*domain.Transaction, error) {
	start := time.Now()
	raw, err := s.gateway.VoidPayment(ctx, transactionID, opts)
	if err != nil {
		return nil, s.fail(domain.OperationVoid, start, err)
	}
	return s.finish(ctx, domain.OperationVoid, start, raw), nil
}

// Refund returns previously captured funds. An empty amount refunds the full
// captured amount.
func (s *Service) Refund(ctx context.Context, transactionID, amount string, opts domain.RequestOptions) (*domain.Transaction, error) {
	start := time.Now()
	raw, err := s.gateway.RefundPayment(ctx, transactionID, amount, opts)
	if err != nil {
		return nil, s.fail(domain.OperationRefund, start, err)
	}
	return s.finish(ctx, domain.OperationRefund, start, raw), nil
}

// RetrieveTransaction fetches a transaction by gateway id. No request build,
// no audit write.
func (s *Service) RetrieveTransaction(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	start := time.Now()
	raw, err := s.gateway.GetPayment(ctx, transactionID)
	if err != nil {
		return nil, s.fail(domain.OperationRetrieve, start, err)
	}
	tx := domain.NewTransaction(raw)
	status, _ := tx.Status()
	observability.RecordGatewayRequest(string(domain.OperationRetrieve), status, time.Since(start))
	return tx, nil
}

// AuditRecord returns the most recent stored audit record for a gateway
// transaction id. Fails when no audit store is configured.
func (s *Service) AuditRecord(ctx context.Context, transactionID string) (*domain.AuditRecord, error) {
	if s.store == nil {
		return nil, errors.NewPaymentError("AUDIT_DISABLED", "audit store is not configured", errors.CategoryInternal)
	}
	return s.store.GetByTransactionID(ctx, transactionID)
}

// AuditTrail returns all stored audit records sharing a client reference
// code, newest first
func (s *Service) AuditTrail(ctx context.Context, reference string) ([]*domain.AuditRecord, error) {
	if s.store == nil {
		return nil, errors.NewPaymentError("AUDIT_DISABLED", "audit store is not configured", errors.CategoryInternal)
	}
	return s.store.ListByReference(ctx, reference)
}

func (s *Service) finish(ctx context.Context, op domain.Operation, start time.Time, raw *domain.RawResponse) *domain.Transaction {
	tx := domain.NewTransaction(raw)
	status, _ := tx.Status()
	observability.RecordGatewayRequest(string(op), status, time.Since(start))

	id, _ := tx.ID()
	s.logger.Info("payment operation completed",
		ports.String("operation", string(op)),
		ports.String("transaction_id", id),
		ports.String("status", status),
		ports.Bool("successful", tx.IsSuccessful()),
	)

	s.audit(ctx, op, tx)
	return tx
}

func (s *Service) fail(op domain.Operation, start time.Time, err error) error {
	paymentErr := errors.WrapPaymentError(err)
	observability.RecordGatewayRequest(string(op), string(paymentErr.Category), time.Since(start))
	s.logger.Error("payment operation failed",
		ports.String("operation", string(op)),
		ports.String("code", paymentErr.Code),
		ports.Err(err),
	)
	return paymentErr
}

// audit writes a record of the round-trip when a store is configured. Store
// failures are logged and counted, never surfaced: the payment already
// happened.
func (s *Service) audit(ctx context.Context, op domain.Operation, tx *domain.Transaction) {
	if s.store == nil {
		return
	}
	rec := domain.NewAuditRecord(op, tx)
	if err := s.store.Save(ctx, rec); err != nil {
		observability.RecordAuditWriteFailure()
		s.logger.Error("audit store write failed",
			ports.String("operation", string(op)),
			ports.String("transaction_id", rec.TransactionID),
			ports.Err(err),
		)
	}
}
