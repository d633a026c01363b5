package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/kevin07696/cybersource-adapter/pkg/errors"
)

// Card holds the card block sent on create requests. Card data is never
// retained beyond construction of the single outbound request.
type Card struct {
	Number          string
	ExpirationMonth string // "01".."12"
	ExpirationYear  string // four digits, e.g. "2031"
	SecurityCode    string // optional; omitted from the wire when empty
}

// Last4 returns the last four digits of the card number for logging.
// The full PAN must never be logged.
func (c Card) Last4() string {
	if len(c.Number) < 4 {
		return c.Number
	}
	return c.Number[len(c.Number)-4:]
}

// BillingInfo holds the billing identity sent with create requests
type BillingInfo struct {
	FirstName          string
	LastName           string
	Address1           string
	Address2           string // optional
	Locality           string
	AdministrativeArea string
	PostalCode         string
	Country            string // two-letter code
	Email              string
	Phone              string
}

// RequestOptions carries optional overrides for capture/void/refund requests
type RequestOptions struct {
	Reference string
	Amount    string
	Currency  string
}

// PaymentIntent is the normalized representation of what the caller wants to
// pay: amount, currency, card and billing data, plus the capture flag. It is
// built per call and discarded after request construction.
type PaymentIntent struct {
	ReferenceCode string // idempotency/correlation key; synthesized when empty
	Amount        string // decimal string, never a float
	Currency      string // ISO 4217 three-letter code
	Card          Card
	Billing       BillingInfo
	Capture       bool
}

// Reference returns the client reference code, synthesizing one from the
// clock when the caller supplied none.
func (p *PaymentIntent) Reference() string {
	if p.ReferenceCode != "" {
		return p.ReferenceCode
	}
	return fmt.Sprintf("payment-%d", time.Now().Unix())
}

// Validate checks the intent against local constraints. It runs before any
// network I/O and returns a ValidationError on the first failing field.
func (p *PaymentIntent) Validate() error {
	if err := validateAmount(p.Amount); err != nil {
		return err
	}
	if err := ValidateCurrency(p.Currency); err != nil {
		return err
	}
	if err := p.Card.validate(); err != nil {
		return err
	}
	return p.Billing.validate()
}

func validateAmount(amount string) error {
	if amount == "" {
		return pkgerrors.NewValidationError("amount", "amount is required")
	}
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return pkgerrors.NewValidationError("amount", fmt.Sprintf("%q is not a valid decimal amount", amount))
	}
	if d.IsNegative() {
		return pkgerrors.NewValidationError("amount", "amount must not be negative")
	}
	return nil
}

// ValidateCurrency checks for a three-letter ISO 4217 code
func ValidateCurrency(currency string) error {
	if len(currency) != 3 {
		return pkgerrors.NewValidationError("currency", "currency must be a three-letter ISO 4217 code")
	}
	for _, r := range currency {
		if r < 'A' || r > 'Z' {
			return pkgerrors.NewValidationError("currency", "currency must be uppercase letters")
		}
	}
	return nil
}

func (c Card) validate() error {
	if c.Number == "" {
		return pkgerrors.NewValidationError("card.number", "card number is required")
	}
	for _, r := range c.Number {
		if r < '0' || r > '9' {
			return pkgerrors.NewValidationError("card.number", "card number must contain only digits")
		}
	}

	month, ok := parseCardMonth(c.ExpirationMonth)
	if !ok {
		return pkgerrors.NewValidationError("card.expiration_month", "expiration month must be 01-12")
	}
	if len(c.ExpirationYear) != 4 {
		return pkgerrors.NewValidationError("card.expiration_year", "expiration year must be four digits")
	}
	year := 0
	for _, r := range c.ExpirationYear {
		if r < '0' || r > '9' {
			return pkgerrors.NewValidationError("card.expiration_year", "expiration year must be four digits")
		}
		year = year*10 + int(r-'0')
	}

	now := time.Now().UTC()
	if year < now.Year() || (year == now.Year() && month < int(now.Month())) {
		return pkgerrors.NewValidationError("card.expiration", "card is expired")
	}
	return nil
}

func parseCardMonth(s string) (int, bool) {
	if len(s) != 2 {
		return 0, false
	}
	if s[0] < '0' || s[0] > '9' || s[1] < '0' || s[1] > '9' {
		return 0, false
	}
	month := int(s[0]-'0')*10 + int(s[1]-'0')
	if month < 1 || month > 12 {
		return 0, false
	}
	return month, true
}

func (b BillingInfo) validate() error {
	required := []struct {
		field string
		value string
	}{
		{"billing.first_name", b.FirstName},
		{"billing.last_name", b.LastName},
		{"billing.address1", b.Address1},
		{"billing.locality", b.Locality},
		{"billing.postal_code", b.PostalCode},
		{"billing.country", b.Country},
		{"billing.email", b.Email},
	}
	for _, f := range required {
		if f.value == "" {
			return pkgerrors.NewValidationError(f.field, "field is required")
		}
	}
	if len(b.Country) != 2 {
		return pkgerrors.NewValidationError("billing.country", "country must be a two-letter code")
	}
	if !strings.Contains(b.Email, "@") {
		return pkgerrors.NewValidationError("billing.email", "invalid email address")
	}
	return nil
}
