package cybersource

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kevin07696/cybersource-adapter/internal/domain"
	pkgerrors "github.com/kevin07696/cybersource-adapter/pkg/errors"
)

// Wire schema for the pts/v2 payment endpoints. Optional fields carry
// omitempty so an absent security code or address line never serializes as
// null or empty.

// ClientReferenceInformation carries the caller's reference code
type ClientReferenceInformation struct {
	Code string `json:"code"`
}

// ProcessingInformation carries the capture flag
type ProcessingInformation struct {
	Capture bool `json:"capture"`
}

// CardInformation is the card block of a create request
type CardInformation struct {
	Number          string `json:"number"`
	ExpirationMonth string `json:"expirationMonth"`
	ExpirationYear  string `json:"expirationYear"`
	SecurityCode    string `json:"securityCode,omitempty"`
}

// PaymentInformation wraps the card block
type PaymentInformation struct {
	Card CardInformation `json:"card"`
}

// AmountDetails holds amount and currency as decimal strings. Amounts pass
// through byte-identical; no float conversion happens anywhere in the
// builder.
type AmountDetails struct {
	TotalAmount string `json:"totalAmount,omitempty"`
	Currency    string `json:"currency,omitempty"`
}

// BillTo is the billing identity block of a create request
type BillTo struct {
	FirstName          string `json:"firstName"`
	LastName           string `json:"lastName"`
	Address1           string `json:"address1"`
	Address2           string `json:"address2,omitempty"`
	Locality           string `json:"locality"`
	AdministrativeArea string `json:"administrativeArea,omitempty"`
	PostalCode         string `json:"postalCode"`
	Country            string `json:"country"`
	Email              string `json:"email"`
	PhoneNumber        string `json:"phoneNumber,omitempty"`
}

// OrderInformation groups amounts and billing identity
type OrderInformation struct {
	AmountDetails AmountDetails `json:"amountDetails"`
	BillTo        *BillTo       `json:"billTo,omitempty"`
}

// CreatePaymentRequest is the body of POST /pts/v2/payments
type CreatePaymentRequest struct {
	ClientReferenceInformation ClientReferenceInformation `json:"clientReferenceInformation"`
	ProcessingInformation      ProcessingInformation      `json:"processingInformation"`
	PaymentInformation         PaymentInformation         `json:"paymentInformation"`
	OrderInformation           OrderInformation           `json:"orderInformation"`
}

// CapturePaymentRequest is the body of POST /pts/v2/payments/{id}/captures.
// OrderInformation is omitted entirely when no amount resolves; the gateway
// then captures the full authorized amount.
type CapturePaymentRequest struct {
	OrderInformation           *OrderInformation          `json:"orderInformation,omitempty"`
	ClientReferenceInformation ClientReferenceInformation `json:"clientReferenceInformation"`
}

// VoidPaymentRequest is the body of POST /pts/v2/payments/{id}/voids.
// Voids carry no amount.
type VoidPaymentRequest struct {
	ClientReferenceInformation ClientReferenceInformation `json:"clientReferenceInformation"`
}

// RefundPaymentRequest is the body of POST /pts/v2/payments/{id}/refunds
type RefundPaymentRequest struct {
	OrderInformation           *OrderInformation          `json:"orderInformation,omitempty"`
	ClientReferenceInformation ClientReferenceInformation `json:"clientReferenceInformation"`
}

// BuildCreateRequest translates a payment intent into the create schema.
// Defaults are applied before validation: empty amount falls back to "0.00",
// empty currency to the configured default, then "USD".
func BuildCreateRequest(intent *domain.PaymentIntent, defaultCurrency string) (*CreatePaymentRequest, error) {
	normalized := *intent
	if normalized.Amount == "" {
		normalized.Amount = "0.00"
	}
	normalized.Currency = resolveCurrency(normalized.Currency, "", defaultCurrency)
	if err := normalized.Validate(); err != nil {
		return nil, err
	}

	card := CardInformation{
		Number:          normalized.Card.Number,
		ExpirationMonth: normalized.Card.ExpirationMonth,
		ExpirationYear:  normalized.Card.ExpirationYear,
	}
	if normalized.Card.SecurityCode != "" {
		card.SecurityCode = normalized.Card.SecurityCode
	}

	return &CreatePaymentRequest{
		ClientReferenceInformation: ClientReferenceInformation{Code: normalized.Reference()},
		ProcessingInformation:      ProcessingInformation{Capture: normalized.Capture},
		PaymentInformation:         PaymentInformation{Card: card},
		OrderInformation: OrderInformation{
			AmountDetails: AmountDetails{
				TotalAmount: normalized.Amount,
				Currency:    normalized.Currency,
			},
			BillTo: &BillTo{
				FirstName:          normalized.Billing.FirstName,
				LastName:           normalized.Billing.LastName,
				Address1:           normalized.Billing.Address1,
				Address2:           normalized.Billing.Address2,
				Locality:           normalized.Billing.Locality,
				AdministrativeArea: normalized.Billing.AdministrativeArea,
				PostalCode:         normalized.Billing.PostalCode,
				Country:            normalized.Billing.Country,
				Email:              normalized.Billing.Email,
				PhoneNumber:        normalized.Billing.Phone,
			},
		},
	}, nil
}

// BuildCaptureRequest builds a capture request. Amount precedence: explicit
// override, then options amount, then none (gateway captures the full
// authorized amount).
func BuildCaptureRequest(transactionID, amountOverride string, opts domain.RequestOptions, defaultCurrency string) (*CapturePaymentRequest, error) {
	if transactionID == "" {
		return nil, pkgerrors.NewValidationError("transaction_id", "transaction id is required")
	}
	order, err := resolveOrderInformation(amountOverride, opts, defaultCurrency)
	if err != nil {
		return nil, err
	}
	return &CapturePaymentRequest{
		ClientReferenceInformation: ClientReferenceInformation{Code: resolveReference(opts.Reference, "capture")},
		OrderInformation:           order,
	}, nil
}

// BuildVoidRequest builds a void request: a reference code and nothing else
func BuildVoidRequest(transactionID string, opts domain.RequestOptions) (*VoidPaymentRequest, error) {
	if transactionID == "" {
		return nil, pkgerrors.NewValidationError("transaction_id", "transaction id is required")
	}
	return &VoidPaymentRequest{
		ClientReferenceInformation: ClientReferenceInformation{Code: resolveReference(opts.Reference, "void")},
	}, nil
}

// BuildRefundRequest builds a refund request with the same amount resolution
// rule as capture
func BuildRefundRequest(transactionID, amountOverride string, opts domain.RequestOptions, defaultCurrency string) (*RefundPaymentRequest, error) {
	if transactionID == "" {
		return nil, pkgerrors.NewValidationError("transaction_id", "transaction id is required")
	}
	order, err := resolveOrderInformation(amountOverride, opts, defaultCurrency)
	if err != nil {
		return nil, err
	}
	return &RefundPaymentRequest{
		ClientReferenceInformation: ClientReferenceInformation{Code: resolveReference(opts.Reference, "refund")},
		OrderInformation:           order,
	}, nil
}

func resolveReference(reference, prefix string) string {
	if reference != "" {
		return reference
	}
	return fmt.Sprintf("%s-%d", prefix, time.Now().Unix())
}

func resolveOrderInformation(amountOverride string, opts domain.RequestOptions, defaultCurrency string) (*OrderInformation, error) {
	amount := amountOverride
	if amount == "" {
		amount = opts.Amount
	}
	if amount == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, pkgerrors.NewValidationError("amount", fmt.Sprintf("%q is not a valid decimal amount", amount))
	}
	if d.IsNegative() {
		return nil, pkgerrors.NewValidationError("amount", "amount must not be negative")
	}

	currency := resolveCurrency(opts.Currency, "", defaultCurrency)
	if err := domain.ValidateCurrency(currency); err != nil {
		return nil, err
	}

	return &OrderInformation{
		AmountDetails: AmountDetails{
			TotalAmount: amount,
			Currency:    currency,
		},
	}, nil
}

func resolveCurrency(candidates ...string) string {
	for _, c := range candidates {
		if c != "" {
			return strings.ToUpper(c)
		}
	}
	return "USD"
}
