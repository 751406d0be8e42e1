package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/siteworks/records-api/internal/core/domain"
	"github.com/siteworks/records-api/internal/core/policy"
	"github.com/siteworks/records-api/internal/core/ports"
)

// maxPhotoKeys mirrors the upload limit of the submission form.
const maxPhotoKeys = 10

// WorkflowService is the state machine over progress and payment records.
// Every operation checks the access policy against the caller identity before
// touching the store; atomicity of transitions is delegated to the record
// repository's conditional writes.
type WorkflowService struct {
	records  ports.RecordRepository
	comments ports.CommentRepository
	bundles  ports.BundleEnqueuer
	log      zerolog.Logger

	now func() time.Time
}

func NewWorkflowService(records ports.RecordRepository, comments ports.CommentRepository, bundles ports.BundleEnqueuer, log zerolog.Logger) *WorkflowService {
	return &WorkflowService{
		records:  records,
		comments: comments,
		bundles:  bundles,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *WorkflowService) Submit(ctx context.Context, caller domain.Identity, in ports.SubmitRecordInput) (*domain.Record, error) {
	if !in.Kind.Valid() {
		return nil, domain.ErrValidation
	}
	if !policy.CanCreate(caller.Role, in.Kind) {
		return nil, domain.ErrForbidden
	}
	if err := validateSubmit(in); err != nil {
		return nil, err
	}

	rec := &domain.Record{
		ID:          uuid.NewString(),
		Kind:        in.Kind,
		CreatorID:   caller.UserID,
		SubmittedAt: s.now(),
		Date:        in.Date,
		Description: strings.TrimSpace(in.Description),
		Status:      domain.StatusPending,
	}
	switch in.Kind {
	case domain.KindPayment:
		rec.PaymentID = strings.TrimSpace(in.PaymentID)
		rec.Amount = in.Amount
		rec.Remarks = strings.TrimSpace(in.Remarks)
	case domain.KindProgress:
		rec.Attachments = domain.AttachmentSet{PhotoKeys: in.PhotoKeys, VideoKey: in.VideoKey}
	}

	if err := s.records.Create(ctx, rec); err != nil {
		s.log.Error().Err(err).Str("kind", string(in.Kind)).Msg("failed to create record")
		return nil, err
	}

	s.log.Info().
		Str("record_id", rec.ID).
		Str("kind", string(rec.Kind)).
		Str("creator_id", rec.CreatorID).
		Msg("record submitted")

	return rec, nil
}

func validateSubmit(in ports.SubmitRecordInput) error {
	if in.Date.IsZero() || strings.TrimSpace(in.Description) == "" {
		return domain.ErrValidation
	}
	switch in.Kind {
	case domain.KindPayment:
		if strings.TrimSpace(in.PaymentID) == "" || in.Amount <= 0 {
			return domain.ErrValidation
		}
	case domain.KindProgress:
		if len(in.PhotoKeys) > maxPhotoKeys {
			return domain.ErrValidation
		}
	}
	return nil
}

func (s *WorkflowService) Transition(ctx context.Context, caller domain.Identity, recordID string, decision domain.RecordStatus, comment string) (*domain.Record, error) {
	if !policy.Allows(caller.Role, policy.ActionReview) {
		return nil, domain.ErrForbidden
	}
	if !domain.StatusPending.CanTransitionTo(decision) {
		return nil, domain.ErrValidation
	}

	// The repository performs the write conditioned on status still being
	// pending: of two concurrent transitions exactly one wins, the loser
	// observes ErrInvalidState.
	rec, err := s.records.ApplyReview(ctx, recordID, ports.ReviewUpdate{
		Decision:   decision,
		ReviewedBy: caller.UserID,
		ReviewedAt: s.now(),
		Comment:    strings.TrimSpace(comment),
	})
	if err != nil {
		return nil, err
	}

	if rec.Kind == domain.KindProgress && decision == domain.StatusApproved && !rec.Attachments.Empty() {
		s.bundles.Enqueue(ports.BundleJob{RecordID: rec.ID})
	}

	s.log.Info().
		Str("record_id", rec.ID).
		Str("decision", string(decision)).
		Str("reviewed_by", caller.UserID).
		Msg("record reviewed")

	return rec, nil
}

func (s *WorkflowService) TransitionByPaymentID(ctx context.Context, caller domain.Identity, paymentID string, decision domain.RecordStatus, comment string) (*domain.Record, error) {
	if !policy.Allows(caller.Role, policy.ActionReview) {
		return nil, domain.ErrForbidden
	}
	rec, err := s.records.FindPaymentByPaymentID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	return s.Transition(ctx, caller, rec.ID, decision, comment)
}

func (s *WorkflowService) List(ctx context.Context, caller domain.Identity, in ports.ListRecordsInput) ([]*domain.Record, error) {
	if !in.Kind.Valid() {
		return nil, domain.ErrValidation
	}

	filter := ports.ListRecordsFilter{
		Kind:     in.Kind,
		DateFrom: in.DateFrom,
		DateTo:   in.DateTo,
	}

	switch {
	case policy.OwnerScoped(caller.Role):
		// Engineers and paying authorities only ever see their own records,
		// in any status.
		filter.CreatorID = caller.UserID
		if in.Status != "" {
			filter.Statuses = []domain.RecordStatus{in.Status}
		}
	case caller.Role == domain.RoleAdmin:
		if in.Status != "" {
			filter.Statuses = []domain.RecordStatus{in.Status}
		} else {
			filter.Statuses = []domain.RecordStatus{domain.StatusApproved, domain.StatusRejected}
		}
	case caller.Role == domain.RoleViewer:
		// Viewers never see pending records, including by explicit request.
		if in.Status == domain.StatusPending {
			return nil, domain.ErrForbidden
		}
		if in.Status != "" {
			filter.Statuses = []domain.RecordStatus{in.Status}
		} else {
			filter.Statuses = []domain.RecordStatus{domain.StatusApproved, domain.StatusRejected}
		}
	default:
		return nil, domain.ErrForbidden
	}

	return s.records.List(ctx, filter)
}

func (s *WorkflowService) Delete(ctx context.Context, caller domain.Identity, recordID string) error {
	rec, err := s.records.FindByID(ctx, recordID)
	if err != nil {
		return err
	}
	if !policy.CanDelete(caller.Role, caller.UserID, rec.CreatorID) {
		return domain.ErrForbidden
	}
	// Ordering matters for reviewed records: a non-owner gets Forbidden above
	// before the state is considered, the owner gets InvalidState here.
	if err := s.records.DeleteIfPending(ctx, recordID); err != nil {
		return err
	}

	s.log.Info().Str("record_id", recordID).Str("deleted_by", caller.UserID).Msg("pending record deleted")
	return nil
}

func (s *WorkflowService) AddComment(ctx context.Context, caller domain.Identity, itemID string, kind domain.RecordKind, text string) (*domain.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" || !kind.Valid() {
		return nil, domain.ErrValidation
	}

	rec, err := s.records.FindByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if rec.Kind != kind {
		return nil, domain.ErrRecordNotFound
	}
	if !policy.CanViewRecord(caller.Role, caller.UserID, rec) {
		return nil, domain.ErrForbidden
	}

	c := &domain.Comment{
		ID:        uuid.NewString(),
		ItemID:    rec.ID,
		ItemKind:  kind,
		AuthorID:  caller.UserID,
		Author:    caller.Username,
		Text:      text,
		CreatedAt: s.now(),
	}
	if err := s.comments.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *WorkflowService) ListComments(ctx context.Context, caller domain.Identity, itemID string, kind domain.RecordKind) ([]*domain.Comment, error) {
	if !kind.Valid() {
		return nil, domain.ErrValidation
	}
	rec, err := s.records.FindByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if rec.Kind != kind {
		return nil, domain.ErrRecordNotFound
	}
	if !policy.CanViewRecord(caller.Role, caller.UserID, rec) {
		return nil, domain.ErrForbidden
	}
	return s.comments.ListByItem(ctx, itemID, kind)
}
