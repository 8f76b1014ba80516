package revenue

import (
	"sort"
	"time"

	"spa-booking-be/internal/entity"
	"spa-booking-be/pkg/money"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CashierStats is one bucket of the report. A nil CashierId collects payments that
// were completed directly on the gateway without a cashier.
type CashierStats struct {
	CashierId  *uuid.UUID
	Total      money.Amount
	Cash       money.Amount
	Transfer   money.Amount
	Count      int
	Percentage decimal.Decimal
}

type Report struct {
	From           time.Time
	To             time.Time
	TotalCash      money.Amount
	TotalTransfer  money.Amount
	TotalCollected money.Amount
	CountInvoices  int
	Cashiers       []CashierStats
}

// DefaultRange is the last days days ending at now.
func DefaultRange(now time.Time, days int) (time.Time, time.Time) {
	return now.AddDate(0, 0, -days), now
}

// Aggregate folds paid invoices created in [from, to]. Refunded and unpaid invoices
// do not count.
func Aggregate(invoices []*entity.Invoice, from, to time.Time) Report {
	report := Report{
		From:           from,
		To:             to,
		TotalCash:      money.Zero,
		TotalTransfer:  money.Zero,
		TotalCollected: money.Zero,
		Cashiers:       []CashierStats{},
	}

	buckets := make(map[uuid.UUID]*CashierStats)
	var direct *CashierStats

	for _, inv := range invoices {
		if inv == nil || inv.PaymentStatus != entity.PaymentStatusPaid {
			continue
		}
		if inv.CreatedAt.Before(from) || inv.CreatedAt.After(to) {
			continue
		}

		var bucket *CashierStats
		if inv.CashierId == nil {
			if direct == nil {
				direct = newBucket(nil)
			}
			bucket = direct
		} else {
			bucket = buckets[*inv.CashierId]
			if bucket == nil {
				id := *inv.CashierId
				bucket = newBucket(&id)
				buckets[id] = bucket
			}
		}

		amount := inv.FinalAmount
		bucket.Total = bucket.Total.Add(amount)
		bucket.Count++
		report.CountInvoices++
		report.TotalCollected = report.TotalCollected.Add(amount)

		if inv.PaymentMethod == entity.PaymentMethodCash {
			bucket.Cash = bucket.Cash.Add(amount)
			report.TotalCash = report.TotalCash.Add(amount)
		} else {
			bucket.Transfer = bucket.Transfer.Add(amount)
			report.TotalTransfer = report.TotalTransfer.Add(amount)
		}
	}

	named := make([]CashierStats, 0, len(buckets))
	for _, b := range buckets {
		named = append(named, *b)
	}
	sort.Slice(named, func(i, j int) bool {
		if c := named[i].Total.Cmp(named[j].Total); c != 0 {
			return c > 0
		}
		return named[i].CashierId.String() < named[j].CashierId.String()
	})

	if direct != nil {
		report.Cashiers = append(report.Cashiers, *direct)
	}
	report.Cashiers = append(report.Cashiers, named...)

	for i := range report.Cashiers {
		report.Cashiers[i].Percentage = report.Cashiers[i].Total.Percent(report.TotalCollected)
	}
	return report
}

func newBucket(id *uuid.UUID) *CashierStats {
	return &CashierStats{
		CashierId: id,
		Total:     money.Zero,
		Cash:      money.Zero,
		Transfer:  money.Zero,
	}
}
