package gateway

import (
	"context"
	"fmt"
	"sync"
)

// Fake is an in-memory Gateway for tests and local runs without credentials.
type Fake struct {
	mu          sync.Mutex
	states      map[string]PaymentState
	Links       []CheckoutRequest
	Verified    []string
	FailCreate  error
	FailVerify  error
	CheckoutURL string
}

func NewFake() *Fake {
	return &Fake{
		states:      make(map[string]PaymentState),
		CheckoutURL: "https://pay.example.test/checkout",
	}
}

// SetState decides what VerifyPayment reports for an order.
func (f *Fake) SetState(orderCode string, state PaymentState) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.states[orderCode] = state
}

// LastOrderCode returns the order code of the most recent checkout link.
func (f *Fake) LastOrderCode() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.Links) == 0 {
		return ""
	}
	return f.Links[len(f.Links)-1].OrderCode
}

func (f *Fake) CreateCheckoutLink(ctx context.Context, req CheckoutRequest) (*CheckoutLink, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailCreate != nil {
		return nil, f.FailCreate
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	f.Links = append(f.Links, req)
	if _, ok := f.states[req.OrderCode]; !ok {
		f.states[req.OrderCode] = StatePending
	}
	return &CheckoutLink{
		OrderCode:   req.OrderCode,
		CheckoutURL: fmt.Sprintf("%s/%s", f.CheckoutURL, req.OrderCode),
	}, nil
}

func (f *Fake) VerifyPayment(ctx context.Context, orderCode string) (*Verification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Verified = append(f.Verified, orderCode)
	if f.FailVerify != nil {
		return nil, f.FailVerify
	}
	state, ok := f.states[orderCode]
	if !ok {
		state = StatePending
	}
	return &Verification{
		OrderCode: orderCode,
		State:     state,
		RawStatus: string(state),
		Raw:       []byte(fmt.Sprintf(`{"order_id":%q,"state":%q}`, orderCode, state)),
	}, nil
}
