// Package lifecycle is the appointment status state machine. Apply is the only code in the
// service that assigns Appointment.Status; persistence then stores the result with a
// compare-and-swap on the previous status.
package lifecycle

import (
	"strings"
	"time"

	"spa-booking-be/internal/entity"
	"spa-booking-be/internal/pkg/exceptions"
)

// Operation names an action on an appointment.
type Operation string

const (
	OpConfirm          Operation = "confirm"
	OpReject           Operation = "reject"
	OpReconcileDeposit Operation = "reconcile_deposit"
	OpApprove          Operation = "approve"
	OpMarkCompleted    Operation = "mark_completed"
	OpSettleCash       Operation = "settle_cash"
	OpReconcileFinal   Operation = "reconcile_final"
	OpCancel           Operation = "cancel"

	// Guard-only operations. They check status but never change it.
	OpCreateDepositLink Operation = "create_deposit_link"
	OpSettleQR          Operation = "settle_qr"
	OpRequestComplete   Operation = "request_complete"
)

type rule struct {
	from []entity.AppointmentStatus
	to   entity.AppointmentStatus // empty for guard-only operations
}

var table = map[Operation]rule{
	OpConfirm:          {from: statuses(entity.AppointmentStatusPending), to: entity.AppointmentStatusConfirmed},
	OpReject:           {from: statuses(entity.AppointmentStatusPending), to: entity.AppointmentStatusRejected},
	OpReconcileDeposit: {from: statuses(entity.AppointmentStatusConfirmed), to: entity.AppointmentStatusDeposited},
	OpApprove:          {from: statuses(entity.AppointmentStatusDeposited), to: entity.AppointmentStatusApproved},
	OpMarkCompleted:    {from: statuses(entity.AppointmentStatusDeposited, entity.AppointmentStatusApproved), to: entity.AppointmentStatusCompleted},
	OpSettleCash:       {from: statuses(entity.AppointmentStatusCompleted), to: entity.AppointmentStatusPaid},
	OpReconcileFinal:   {from: statuses(entity.AppointmentStatusCompleted), to: entity.AppointmentStatusPaid},
	OpCancel: {from: statuses(
		entity.AppointmentStatusConfirmed,
		entity.AppointmentStatusDeposited,
		entity.AppointmentStatusApproved,
	), to: entity.AppointmentStatusCancelled},

	OpCreateDepositLink: {from: statuses(entity.AppointmentStatusConfirmed)},
	OpSettleQR:          {from: statuses(entity.AppointmentStatusCompleted)},
	OpRequestComplete:   {from: statuses(entity.AppointmentStatusDeposited, entity.AppointmentStatusApproved)},
}

func statuses(s ...entity.AppointmentStatus) []entity.AppointmentStatus { return s }

// Transition is the outcome of a successful Apply.
type Transition struct {
	Op   Operation
	From entity.AppointmentStatus
	To   entity.AppointmentStatus
	At   time.Time
}

// Input carries the optional data some operations record.
type Input struct {
	Reason string
	Now    time.Time
}

// Allowed reports whether op may run while the appointment is in status s.
func Allowed(op Operation, s entity.AppointmentStatus) bool {
	r, ok := table[op]
	if !ok {
		return false
	}
	for _, f := range r.from {
		if f == s {
			return true
		}
	}
	return false
}

// Require checks a precondition without changing anything.
func Require(op Operation, appt *entity.Appointment) error {
	if !Allowed(op, appt.Status) {
		return invalid(op, appt.Status, "")
	}
	return nil
}

// Apply runs op against appt, mutating Status (and the cancellation fields for
// reject/cancel). On error appt is left untouched.
func Apply(appt *entity.Appointment, op Operation, in Input) (Transition, error) {
	r, ok := table[op]
	if !ok || r.to == "" {
		return Transition{}, invalid(op, appt.Status, "not a status transition")
	}
	if !Allowed(op, appt.Status) {
		return Transition{}, invalid(op, appt.Status, "")
	}
	if err := appt.Breakdown().Validate(); err != nil {
		return Transition{}, invalid(op, appt.Status, err.Error())
	}

	now := in.Now
	if now.IsZero() {
		now = time.Now()
	}

	t := Transition{Op: op, From: appt.Status, To: r.to, At: now}
	appt.Status = r.to
	appt.UpdatedAt = now

	if op == OpReject || op == OpCancel {
		reason := strings.TrimSpace(in.Reason)
		appt.CancelReason = &reason
		appt.CancelledAt = &now
	}
	return t, nil
}

func invalid(op Operation, current entity.AppointmentStatus, reason string) error {
	return &exceptions.InvalidTransitionError{Op: string(op), Current: string(current), Reason: reason}
}
