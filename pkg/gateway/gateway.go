package gateway

import (
	"context"
	"errors"
	"strings"
)

var (
	// ErrUnavailable means the gateway cannot be called at all (credentials absent).
	ErrUnavailable = errors.New("gateway unavailable: missing credentials")
	// ErrRejected means the remote call failed or the gateway returned an error status.
	ErrRejected = errors.New("gateway rejected the request")
	// ErrNoPaymentURL means the gateway replied but no usable payment link was found.
	ErrNoPaymentURL = errors.New("gateway response contains no payment url")
)

type InitiateRequest struct {
	AmountXAF   int64
	Email       string
	UserRef     string
	ExternalID  string // our composite transaction token
	Description string
}

type InitiateResponse struct {
	PaymentURL    string
	TransactionID string // gateway-side id (fapshi transId / lygos payment id)
}

// Gateway is one external payment processor. Implementations hide differing
// request and response shapes behind this contract.
type Gateway interface {
	Name() string
	Initiate(ctx context.Context, req InitiateRequest) (*InitiateResponse, error)
	// QueryStatus polls the gateway for the raw status string of a transaction.
	QueryStatus(ctx context.Context, ref string) (string, error)
}

// Outcome is the normalized meaning of a gateway status signal.
type Outcome int

const (
	// OutcomeUnknown: the payload carried no status at all.
	OutcomeUnknown Outcome = iota
	// OutcomePending: recognized but not final; acknowledged without crediting.
	OutcomePending
	// OutcomeSuccess: the payment went through; crediting may proceed.
	OutcomeSuccess
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomePending:
		return "pending"
	default:
		return "unknown"
	}
}

// FapshiOutcome normalizes a Fapshi status value, which may arrive as a
// string, a number or a boolean. Anything unrecognized is pending, never an
// error: gateways add statuses without warning.
func FapshiOutcome(status any) Outcome {
	switch v := status.(type) {
	case nil:
		return OutcomeUnknown
	case bool:
		if v {
			return OutcomeSuccess
		}
		return OutcomePending
	case float64: // json numbers decode as float64
		if v == 1 {
			return OutcomeSuccess
		}
		return OutcomePending
	case int:
		if v == 1 {
			return OutcomeSuccess
		}
		return OutcomePending
	case string:
		if v == "" {
			return OutcomeUnknown
		}
		s := strings.ToLower(v)
		if strings.Contains(s, "success") || strings.Contains(s, "complete") ||
			s == "successful" || s == "paid" || s == "1" {
			return OutcomeSuccess
		}
		return OutcomePending
	default:
		return OutcomePending
	}
}

// LygosOutcome normalizes a Lygos status string (exact matches only).
func LygosOutcome(status string) Outcome {
	if status == "" {
		return OutcomeUnknown
	}
	switch strings.ToLower(status) {
	case "deposit_completed", "success", "accepted", "completed":
		return OutcomeSuccess
	default:
		return OutcomePending
	}
}

// paymentURLFields are the synonymous keys under which a gateway may expose
// the checkout link. All of them are probed before giving up.
var paymentURLFields = []string{"link", "paymentUrl", "payment_url", "url", "checkout_url", "redirect_url"}

func extractPaymentURL(body map[string]any) string {
	for _, key := range paymentURLFields {
		if v, ok := body[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}
