package mocks

import (
	"context"

	"github.com/kevin07696/cybersource-adapter/internal/domain"
)

// GatewayCall captures one invocation of a gateway method
type GatewayCall struct {
	Method        string
	TransactionID string
	Amount        string
	Intent        *domain.PaymentIntent
	Options       domain.RequestOptions
}

// MockGateway is a mock implementation of the Gateway port for testing
type MockGateway struct {
	CreatePaymentFunc  func(ctx context.Context, intent *domain.PaymentIntent) (*domain.RawResponse, error)
	CapturePaymentFunc func(ctx context.Context, transactionID, amount string, opts domain.RequestOptions) (*domain.RawResponse, error)
	VoidPaymentFunc    func(ctx context.Context, transactionID string, opts domain.RequestOptions) (*domain.RawResponse, error)
	RefundPaymentFunc  func(ctx context.Context, transactionID, amount string, opts domain.RequestOptions) (*domain.RawResponse, error)
	GetPaymentFunc     func(ctx context.Context, transactionID string) (*domain.RawResponse, error)
	Calls              []GatewayCall
}

// NewMockGateway creates a new mock gateway
func NewMockGateway() *MockGateway {
	return &MockGateway{Calls: []GatewayCall{}}
}

// CreatePayment executes the mock function and captures the call
func (m *MockGateway) CreatePayment(ctx context.Context, intent *domain.PaymentIntent) (*domain.RawResponse, error) {
	m.Calls = append(m.Calls, GatewayCall{Method: "CreatePayment", Intent: intent})
	if m.CreatePaymentFunc != nil {
		return m.CreatePaymentFunc(ctx, intent)
	}
	return &domain.RawResponse{}, nil
}

// CapturePayment executes the mock function and captures the call
func (m *MockGateway) CapturePayment(ctx context.Context, transactionID, amount string, opts domain.RequestOptions) (*domain.RawResponse, error) {
	m.Calls = append(m.Calls, GatewayCall{Method: "CapturePayment", TransactionID: transactionID, Amount: amount, Options: opts})
	if m.CapturePaymentFunc != nil {
		return m.CapturePaymentFunc(ctx, transactionID, amount, opts)
	}
	return &domain.RawResponse{}, nil
}

// VoidPayment executes the mock function and captures the call
func (m *MockGateway) VoidPayment(ctx context.Context, transactionID string, opts domain.RequestOptions) (*domain.RawResponse, error) {
	m.Calls = append(m.Calls, GatewayCall{Method: "VoidPayment", TransactionID: transactionID, Options: opts})
	if m.VoidPaymentFunc != nil {
		return m.VoidPaymentFunc(ctx, transactionID, opts)
	}
	return &domain.RawResponse{}, nil
}

// RefundPayment executes the mock function and captures the call
func (m *MockGateway) RefundPayment(ctx context.Context, transactionID, amount string, opts domain.RequestOptions) (*domain.RawResponse, error) {
	m.Calls = append(m.Calls, GatewayCall{Method: "RefundPayment", TransactionID: transactionID, Amount: amount, Options: opts})
	if m.RefundPaymentFunc != nil {
		return m.RefundPaymentFunc(ctx, transactionID, amount, opts)
	}
	return &domain.RawResponse{}, nil
}

// GetPayment executes the mock function and captures the call
func (m *MockGateway) GetPayment(ctx context.Context, transactionID string) (*domain.RawResponse, error) {
	m.Calls = append(m.Calls, GatewayCall{Method: "GetPayment", TransactionID: transactionID})
	if m.GetPaymentFunc != nil {
		return m.GetPaymentFunc(ctx, transactionID)
	}
	return &domain.RawResponse{}, nil
}

// Reset clears captured calls
func (m *MockGateway) Reset() {
	m.Calls = []GatewayCall{}
}
