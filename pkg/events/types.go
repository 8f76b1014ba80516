package events

const (
	AppointmentCreated   = "APPOINTMENT_CREATED"
	AppointmentConfirmed = "APPOINTMENT_CONFIRMED"
	AppointmentRejected  = "APPOINTMENT_REJECTED"
	AppointmentDeposited = "APPOINTMENT_DEPOSITED"
	AppointmentApproved  = "APPOINTMENT_APPROVED"
	AppointmentCompleted = "APPOINTMENT_COMPLETED"
	AppointmentPaid      = "APPOINTMENT_PAID"
	AppointmentCancelled = "APPOINTMENT_CANCELLED"

	// DoctorReminder asks the assigned doctor to mark the appointment completed.
	DoctorReminder = "DOCTOR_REMINDER"

	CancelRequestCreated  = "CANCEL_REQUEST_CREATED"
	CancelRequestRejected = "CANCEL_REQUEST_REJECTED"

	PaymentLinkCreated = "PAYMENT_LINK_CREATED"
	RefundIssued       = "REFUND_ISSUED"

	// PaymentReceivedLate is a verified payment recorded without a status change,
	// e.g. a deposit paid after the appointment was cancelled.
	PaymentReceivedLate = "PAYMENT_RECEIVED_LATE"
)
