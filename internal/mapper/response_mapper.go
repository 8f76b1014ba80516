package mapper

import (
	"spa-booking-be/internal/dto"
	"spa-booking-be/internal/entity"
	"spa-booking-be/pkg/revenue"
)

// AppointmentToResponse converts entity to response DTO. Invoices are optional.
func AppointmentToResponse(a *entity.Appointment, invoices []*entity.Invoice) *dto.AppointmentResponse {
	if a == nil {
		return nil
	}
	collected := entity.AmountCollected(invoices)
	res := &dto.AppointmentResponse{
		Id:              a.Id,
		CustomerId:      a.CustomerId,
		DoctorId:        a.DoctorId,
		StaffId:         a.StaffId,
		VoucherId:       a.VoucherId,
		Status:          string(a.Status),
		AppointmentDate: a.AppointmentDate,
		StartTime:       a.StartTime,
		EndTime:         a.EndTime,
		Note:            a.Note,
		CancelReason:    a.CancelReason,
		CancelledAt:     a.CancelledAt,
		OrderCode:       a.OrderCode,
		DiscountAmount:  a.DiscountAmount,
		TotalAmount:     a.TotalAmount,
		DepositAmount:   a.DepositAmount,
		AmountCollected: collected,
		Balance:         a.TotalAmount.Sub(collected),
		Details:         make([]dto.AppointmentDetailResponse, 0, len(a.Details)),
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}
	for _, d := range a.Details {
		res.Details = append(res.Details, dto.AppointmentDetailResponse{
			Id:        d.Id,
			ServiceId: d.ServiceId,
			Quantity:  d.Quantity,
			Price:     d.Price,
		})
	}
	for _, inv := range invoices {
		res.Invoices = append(res.Invoices, *InvoiceToResponse(inv))
	}
	return res
}

func InvoiceToResponse(i *entity.Invoice) *dto.InvoiceResponse {
	if i == nil {
		return nil
	}
	return &dto.InvoiceResponse{
		Id:            i.Id,
		InvoiceType:   string(i.InvoiceType),
		Total:         i.Total,
		Discount:      i.Discount,
		FinalAmount:   i.FinalAmount,
		Status:        string(i.Status),
		PaymentStatus: string(i.PaymentStatus),
		PaymentMethod: string(i.PaymentMethod),
		CashierId:     i.CashierId,
		OrderCode:     i.OrderCode,
		CreatedAt:     i.CreatedAt,
	}
}

func HistoryToResponses(items []*entity.AppointmentHistory) []*dto.AppointmentHistoryResponse {
	res := make([]*dto.AppointmentHistoryResponse, 0, len(items))
	for _, h := range items {
		res = append(res, &dto.AppointmentHistoryResponse{
			OldStatus: string(h.OldStatus),
			NewStatus: string(h.NewStatus),
			ActorId:   h.ActorId,
			ActorRole: h.ActorRole,
			Reason:    h.Reason,
			ChangedAt: h.ChangedAt,
		})
	}
	return res
}

func RefundToResponse(r *entity.RefundRecord) *dto.RefundResponse {
	if r == nil {
		return nil
	}
	return &dto.RefundResponse{
		Id:            r.Id,
		AppointmentId: r.AppointmentId,
		RefundAmount:  r.RefundAmount,
		RefundMethod:  string(r.RefundMethod),
		RefundStatus:  string(r.RefundStatus),
		RefundReason:  r.RefundReason,
		StaffId:       r.StaffId,
		ProcessedAt:   r.ProcessedAt,
		CreatedAt:     r.CreatedAt,
	}
}

func RefundsToResponse(items []*entity.RefundRecord) []*dto.RefundResponse {
	res := make([]*dto.RefundResponse, 0, len(items))
	for _, r := range items {
		res = append(res, RefundToResponse(r))
	}
	return res
}

// CancelRequestToResponse fills the appointment-derived fields when appt is known.
func CancelRequestToResponse(r *entity.DoctorCancelRequest, appt *entity.Appointment, expired bool) *dto.CancelRequestResponse {
	if r == nil {
		return nil
	}
	res := &dto.CancelRequestResponse{
		Id:            r.Id,
		AppointmentId: r.AppointmentId,
		DoctorId:      r.DoctorId,
		Reason:        r.Reason,
		Status:        string(r.Status),
		ReviewedBy:    r.ReviewedBy,
		ReviewedAt:    r.ReviewedAt,
		CreatedAt:     r.CreatedAt,
		Expired:       expired,
	}
	if appt != nil {
		end := appt.EndTime
		res.AppointmentStatus = string(appt.Status)
		res.AppointmentEnd = &end
	}
	return res
}

func RevenueToResponse(r revenue.Report) *dto.CashierRevenueResponse {
	res := &dto.CashierRevenueResponse{
		From:           r.From,
		To:             r.To,
		TotalCash:      r.TotalCash,
		TotalTransfer:  r.TotalTransfer,
		TotalCollected: r.TotalCollected,
		CountInvoices:  r.CountInvoices,
		Cashiers:       make([]dto.CashierRevenueItem, 0, len(r.Cashiers)),
	}
	for _, c := range r.Cashiers {
		pct, _ := c.Percentage.Float64()
		res.Cashiers = append(res.Cashiers, dto.CashierRevenueItem{
			CashierId:  c.CashierId,
			Total:      c.Total,
			Cash:       c.Cash,
			Transfer:   c.Transfer,
			Count:      c.Count,
			Percentage: pct,
		})
	}
	return res
}
