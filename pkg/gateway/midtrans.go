package gateway

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/coreapi"
	"github.com/midtrans/midtrans-go/snap"
)

// MidtransGateway creates checkout links through Snap and verifies orders through the Core API.
type MidtransGateway struct {
	snap snap.Client
	core coreapi.Client
}

func NewMidtransGateway(serverKey string, isProduction bool) *MidtransGateway {
	env := midtrans.Sandbox
	if isProduction {
		env = midtrans.Production
	}

	g := &MidtransGateway{}
	g.snap.New(serverKey, env)
	g.core.New(serverKey, env)
	return g
}

func (g *MidtransGateway) CreateCheckoutLink(ctx context.Context, req CheckoutRequest) (*CheckoutLink, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	snapReq := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  req.OrderCode,
			GrossAmt: req.Amount.Int64(),
		},
		CreditCard: &snap.CreditCardDetails{
			Secure: true,
		},
		Callbacks: &snap.Callbacks{
			Finish: req.ReturnURL,
		},
		CustomerDetail: &midtrans.CustomerDetails{
			FName: req.CustomerName,
		},
		Items: &[]midtrans.ItemDetails{
			{
				ID:    req.OrderCode,
				Price: req.Amount.Int64(),
				Qty:   1,
				Name:  truncate(req.Description, 50),
			},
		},
		EnabledPayments: snap.AllSnapPaymentType,
	}

	resp, midErr := g.snap.CreateTransaction(snapReq)
	if midErr != nil {
		return nil, fmt.Errorf("midtrans error: %s", midErr.GetMessage())
	}

	return &CheckoutLink{
		OrderCode:   req.OrderCode,
		CheckoutURL: resp.RedirectURL,
		Token:       resp.Token,
	}, nil
}

func (g *MidtransGateway) VerifyPayment(ctx context.Context, orderCode string) (*Verification, error) {
	resp, midErr := g.core.CheckTransaction(orderCode)
	if midErr != nil {
		return nil, fmt.Errorf("midtrans error: %s", midErr.GetMessage())
	}

	raw, _ := json.Marshal(resp)
	return &Verification{
		OrderCode: orderCode,
		State:     StateFromTransactionStatus(resp.TransactionStatus, resp.FraudStatus),
		RawStatus: resp.TransactionStatus,
		Raw:       raw,
	}, nil
}

// StateFromTransactionStatus maps midtrans statuses: capture/settlement are paid,
// deny/cancel/expire/failure are failed, everything else is still pending.
func StateFromTransactionStatus(status, fraudStatus string) PaymentState {
	switch status {
	case "capture":
		if fraudStatus == "challenge" || fraudStatus == "deny" {
			return StatePending
		}
		return StatePaid
	case "settlement":
		return StatePaid
	case "deny", "cancel", "expire", "failure":
		return StateFailed
	default:
		return StatePending
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
