package domain

// Transaction statuses in the gateway's vocabulary
const (
	StatusAuthorized  = "AUTHORIZED"
	StatusPending     = "PENDING"
	StatusTransmitted = "TRANSMITTED"
	StatusCompleted   = "COMPLETED"
	StatusSettled     = "SETTLED"
	StatusDeclined    = "DECLINED"
	StatusVoided      = "VOIDED"
	StatusReversed    = "REVERSED"
)

// successStatuses is the closed set of statuses classified as successful.
// Anything outside it, including statuses the gateway adds later, is
// not-successful.
var successStatuses = map[string]struct{}{
	StatusAuthorized:  {},
	StatusPending:     {},
	StatusTransmitted: {},
	StatusCompleted:   {},
	StatusSettled:     {},
}

// Transaction is the stable, caller-facing record of one gateway round-trip.
// It is constructed once from the normalized response and is immutable.
// Accessors return (value, false) when the gateway did not echo the field;
// they never panic on absent paths.
type Transaction struct {
	raw *RawResponse
}

// NewTransaction normalizes a raw gateway response into a Transaction
func NewTransaction(raw *RawResponse) *Transaction {
	if raw == nil {
		raw = &RawResponse{}
	}
	return &Transaction{raw: raw}
}

// ID returns the gateway-assigned transaction id
func (t *Transaction) ID() (string, bool) {
	return t.raw.ID, t.raw.ID != ""
}

// Status returns the gateway status string
func (t *Transaction) Status() (string, bool) {
	return t.raw.Status, t.raw.Status != ""
}

// IsSuccessful reports whether the status is in the known success set.
// Declined and unrecognized statuses classify as not-successful.
func (t *Transaction) IsSuccessful() bool {
	_, ok := successStatuses[t.raw.Status]
	return ok
}

// IsAuthorized reports whether funds were reserved
func (t *Transaction) IsAuthorized() bool {
	return t.raw.Status == StatusAuthorized
}

// IsPending reports whether the gateway is still processing
func (t *Transaction) IsPending() bool {
	return t.raw.Status == StatusPending
}

// IsDeclined reports whether the processor declined the payment
func (t *Transaction) IsDeclined() bool {
	return t.raw.Status == StatusDeclined
}

// Amount returns the echoed total amount. Absent for operations that do not
// echo amounts, such as void.
func (t *Transaction) Amount() (string, bool) {
	if t.raw.OrderInformation == nil || t.raw.OrderInformation.AmountDetails == nil {
		return "", false
	}
	a := t.raw.OrderInformation.AmountDetails.TotalAmount
	return a, a != ""
}

// Currency returns the echoed currency code
func (t *Transaction) Currency() (string, bool) {
	if t.raw.OrderInformation == nil || t.raw.OrderInformation.AmountDetails == nil {
		return "", false
	}
	c := t.raw.OrderInformation.AmountDetails.Currency
	return c, c != ""
}

// Reference returns the client reference code echoed by the gateway
func (t *Transaction) Reference() (string, bool) {
	if t.raw.ClientReferenceInformation == nil {
		return "", false
	}
	code := t.raw.ClientReferenceInformation.Code
	return code, code != ""
}

// ResponseCode returns the processor response code
func (t *Transaction) ResponseCode() (string, bool) {
	if t.raw.ProcessorInformation == nil {
		return "", false
	}
	c := t.raw.ProcessorInformation.ResponseCode
	return c, c != ""
}

// ApprovalCode returns the processor approval code
func (t *Transaction) ApprovalCode() (string, bool) {
	if t.raw.ProcessorInformation == nil {
		return "", false
	}
	c := t.raw.ProcessorInformation.ApprovalCode
	return c, c != ""
}

// ReconciliationID returns the id used for back-office settlement matching
func (t *Transaction) ReconciliationID() (string, bool) {
	return t.raw.ReconciliationID, t.raw.ReconciliationID != ""
}

// CaptureURL returns the capture action link when the gateway offered one
func (t *Transaction) CaptureURL() (string, bool) {
	return t.link(func(l *Links) *Link { return l.Capture })
}

// VoidURL returns the void action link when the gateway offered one
func (t *Transaction) VoidURL() (string, bool) {
	return t.link(func(l *Links) *Link { return l.Void })
}

// RefundURL returns the refund action link when the gateway offered one
func (t *Transaction) RefundURL() (string, bool) {
	return t.link(func(l *Links) *Link { return l.Refund })
}

func (t *Transaction) link(pick func(*Links) *Link) (string, bool) {
	if t.raw.Links == nil {
		return "", false
	}
	l := pick(t.raw.Links)
	if l == nil || l.Href == "" {
		return "", false
	}
	return l.Href, true
}

// RawResponse returns the opaque response payload, retained for audit and
// debugging
func (t *Transaction) RawResponse() []byte {
	return t.raw.Raw
}

// Envelope returns the normalized response the transaction was built from
func (t *Transaction) Envelope() *RawResponse {
	return t.raw
}
