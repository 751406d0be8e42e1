package ports

import (
	"context"
	"time"

	"github.com/siteworks/records-api/internal/core/domain"
)

// SubmitRecordInput carries everything needed to create a record in the
// pending state. Kind-specific fields are validated by the workflow engine.
type SubmitRecordInput struct {
	Kind        domain.RecordKind
	Date        time.Time
	Description string

	// Payment fields.
	PaymentID string
	Amount    float64
	Remarks   string

	// Progress fields: opaque storage keys for uploaded media.
	PhotoKeys []string
	VideoKey  string
}

// ListRecordsInput carries the caller-facing list parameters. Status is
// optional; when empty the engine applies the role's default visibility.
type ListRecordsInput struct {
	Kind     domain.RecordKind
	Status   domain.RecordStatus
	DateFrom time.Time
	DateTo   time.Time
}

// WorkflowService is the state machine over progress and payment records.
// Every call takes the resolved caller identity explicitly.
type WorkflowService interface {
	Submit(ctx context.Context, caller domain.Identity, in SubmitRecordInput) (*domain.Record, error)
	Transition(ctx context.Context, caller domain.Identity, recordID string, decision domain.RecordStatus, comment string) (*domain.Record, error)
	// TransitionByPaymentID resolves a payment record via its external payment
	// id, then applies the same transition semantics.
	TransitionByPaymentID(ctx context.Context, caller domain.Identity, paymentID string, decision domain.RecordStatus, comment string) (*domain.Record, error)
	List(ctx context.Context, caller domain.Identity, in ListRecordsInput) ([]*domain.Record, error)
	Delete(ctx context.Context, caller domain.Identity, recordID string) error
	AddComment(ctx context.Context, caller domain.Identity, itemID string, kind domain.RecordKind, text string) (*domain.Comment, error)
	ListComments(ctx context.Context, caller domain.Identity, itemID string, kind domain.RecordKind) ([]*domain.Comment, error)
}

// BundleJob asks for the attachment set of an approved progress record to be
// packed into a downloadable archive.
type BundleJob struct {
	RecordID string
}

// BundleEnqueuer is how the workflow engine hands bundle jobs to the
// background dispatcher without blocking the transition.
type BundleEnqueuer interface {
	Enqueue(job BundleJob)
}

// BundleService builds the archive for a single job.
type BundleService interface {
	Process(ctx context.Context, job BundleJob) error
}
