package contract

import (
	"context"

	"spa-booking-be/internal/entity"
	"spa-booking-be/internal/repository/specification"

	"github.com/google/uuid"
)

type InvoiceRepository interface {
	Create(ctx context.Context, invoice *entity.Invoice) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Invoice, error)
	// MarkRefunded moves the given paid invoices to refunded. Rows no longer paid are skipped.
	MarkRefunded(ctx context.Context, ids []uuid.UUID) (int64, error)
}
