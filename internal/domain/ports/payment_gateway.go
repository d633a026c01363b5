package ports

import (
	"context"

	"github.com/kevin07696/cybersource-adapter/internal/domain"
)

// Gateway defines the authenticated transport boundary to CyberSource. One
// method per remote operation; every call is a single network round-trip
// returning the normalized response envelope or a GatewayError. Retrieval
// always hits the gateway; there is no local caching.
type Gateway interface {
	// CreatePayment authorizes (or authorizes and captures, per the intent's
	// capture flag) a new payment
	CreatePayment(ctx context.Context, intent *domain.PaymentIntent) (*domain.RawResponse, error)

	// CapturePayment captures a previously authorized payment. An empty
	// amount defers to the gateway's default, the full authorized amount.
	CapturePayment(ctx context.Context, transactionID, amount string, opts domain.RequestOptions) (*domain.RawResponse, error)

	// VoidPayment cancels a transaction before settlement
	VoidPayment(ctx context.Context, transactionID string, opts domain.RequestOptions) (*domain.RawResponse, error)

	// RefundPayment returns previously captured funds
	RefundPayment(ctx context.Context, transactionID, amount string, opts domain.RequestOptions) (*domain.RawResponse, error)

	// GetPayment retrieves a transaction by gateway id
	GetPayment(ctx context.Context, transactionID string) (*domain.RawResponse, error)
}
