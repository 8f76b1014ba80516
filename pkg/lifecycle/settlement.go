package lifecycle

// SettlementMethod is how a cashier closes the balance of a completed appointment.
// Exactly one of Cash or GatewayQR.
type SettlementMethod interface {
	settlement()
	Name() string
}

// Cash is settled at the counter and recorded synchronously.
type Cash struct{}

// GatewayQR defers to a second checkout link. OrderCode is filled in once the link exists.
type GatewayQR struct {
	OrderCode string
}

func (Cash) settlement()      {}
func (GatewayQR) settlement() {}

func (Cash) Name() string      { return "cash" }
func (GatewayQR) Name() string { return "qr" }

// ParseSettlement maps the wire name to a method.
func ParseSettlement(name string) (SettlementMethod, bool) {
	switch name {
	case "cash":
		return Cash{}, true
	case "qr", "transfer":
		return GatewayQR{}, true
	}
	return nil, false
}
