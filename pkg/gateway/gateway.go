package gateway

import (
	"context"
	"fmt"
	"strings"
	"time"

	"spa-booking-be/pkg/money"

	"github.com/google/uuid"
)

type CheckoutRequest struct {
	OrderCode    string
	Amount       money.Amount
	Description  string
	CustomerName string
	ReturnURL    string
	CancelURL    string
}

// Validate rejects amounts the gateway cannot charge exactly.
func (r CheckoutRequest) Validate() error {
	if !r.Amount.IsPositive() {
		return fmt.Errorf("checkout amount must be positive, got %s", r.Amount.Decimal())
	}
	if !r.Amount.IsWhole() {
		return fmt.Errorf("checkout amount must be whole units, got %s", r.Amount.Decimal())
	}
	return nil
}

type CheckoutLink struct {
	OrderCode   string
	CheckoutURL string
	Token       string
}

type PaymentState string

const (
	StatePaid    PaymentState = "paid"
	StatePending PaymentState = "pending"
	StateFailed  PaymentState = "failed"
)

// Verification is the gateway's own answer about an order, independent of any redirect.
type Verification struct {
	OrderCode string
	State     PaymentState
	RawStatus string
	Raw       []byte
}

func (v *Verification) Paid() bool {
	return v != nil && v.State == StatePaid
}

// Gateway is the external payment provider. Calls are made outside database transactions.
type Gateway interface {
	CreateCheckoutLink(ctx context.Context, req CheckoutRequest) (*CheckoutLink, error)
	VerifyPayment(ctx context.Context, orderCode string) (*Verification, error)
}

// NewOrderCode builds a unique, gateway-safe order id (midtrans allows 50 chars).
func NewOrderCode(prefix string, now time.Time) string {
	short := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:10])
	return fmt.Sprintf("%s-%d-%s", prefix, now.Unix(), short)
}

// ReturnURLs derives the success and cancel redirect targets for an order.
func ReturnURLs(base, orderCode string) (returnURL, cancelURL string) {
	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	returnURL = fmt.Sprintf("%s%sorderCode=%s", base, sep, orderCode)
	cancelURL = returnURL + "&status=CANCELLED"
	return returnURL, cancelURL
}
