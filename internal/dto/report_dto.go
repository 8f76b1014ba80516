package dto

import (
	"time"

	"spa-booking-be/pkg/money"

	"github.com/google/uuid"
)

type CashierRevenueItem struct {
	CashierId  *uuid.UUID   `json:"cashierId"`
	Total      money.Amount `json:"total"`
	Cash       money.Amount `json:"cash"`
	Transfer   money.Amount `json:"transfer"`
	Count      int          `json:"count"`
	Percentage float64      `json:"percentage"`
}

type CashierRevenueResponse struct {
	From           time.Time            `json:"from"`
	To             time.Time            `json:"to"`
	TotalCash      money.Amount         `json:"totalCash"`
	TotalTransfer  money.Amount         `json:"totalTransfer"`
	TotalCollected money.Amount         `json:"totalCollected"`
	CountInvoices  int                  `json:"countInvoices"`
	Cashiers       []CashierRevenueItem `json:"cashiers"`
}
