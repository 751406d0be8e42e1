package ports

import (
	"context"
	"time"

	"github.com/siteworks/records-api/internal/core/domain"
)

// ListRecordsFilter carries all query parameters for listing records.
// CreatorID is set by the service layer when the caller's role is
// owner-scoped; handlers never populate it directly.
type ListRecordsFilter struct {
	Kind      domain.RecordKind
	CreatorID string                // empty = no owner filter
	Statuses  []domain.RecordStatus // empty = no status filter
	DateFrom  time.Time             // optional: submitted_at >= DateFrom
	DateTo    time.Time             // optional: submitted_at <= DateTo
}

// ReviewUpdate is applied atomically when a record leaves the pending state.
type ReviewUpdate struct {
	Decision   domain.RecordStatus
	ReviewedBy string
	ReviewedAt time.Time
	Comment    string
}

// RecordRepository defines persistence operations for workflow records.
type RecordRepository interface {
	Create(ctx context.Context, rec *domain.Record) error
	FindByID(ctx context.Context, id string) (*domain.Record, error)
	// FindPaymentByPaymentID looks a payment record up by its externally
	// assigned payment id.
	FindPaymentByPaymentID(ctx context.Context, paymentID string) (*domain.Record, error)
	// List returns records matching filter ordered by submitted_at descending,
	// ties resolved by insertion order.
	List(ctx context.Context, filter ListRecordsFilter) ([]*domain.Record, error)
	// ApplyReview sets status and review fields in a single conditional write
	// guarded on the record still being pending. Returns the updated record,
	// domain.ErrRecordNotFound for an unknown id, or domain.ErrInvalidState
	// when the guard fails (someone else already decided).
	ApplyReview(ctx context.Context, id string, upd ReviewUpdate) (*domain.Record, error)
	// DeleteIfPending removes the record only while it is pending, with the
	// same error contract as ApplyReview.
	DeleteIfPending(ctx context.Context, id string) error
	// SetBundleKey attaches the built archive reference to a progress record.
	SetBundleKey(ctx context.Context, id, bundleKey string) error
}

// CommentRepository defines persistence for record comment threads.
type CommentRepository interface {
	Create(ctx context.Context, c *domain.Comment) error
	// ListByItem returns the thread ordered by created_at ascending, ties
	// resolved by insertion order.
	ListByItem(ctx context.Context, itemID string, kind domain.RecordKind) ([]*domain.Comment, error)
}
