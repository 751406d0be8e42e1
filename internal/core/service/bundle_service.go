package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/siteworks/records-api/internal/core/domain"
	"github.com/siteworks/records-api/internal/core/ports"
)

// BundleService resolves the attachment set of an approved progress record
// into a downloadable archive reference. The actual blob packing is the
// storage layer's concern; this service derives the bundle key and records it
// so clients can render a download link.
type bundleService struct {
	records ports.RecordRepository
	log     zerolog.Logger
}

// NewBundleService returns a BundleService persisting bundle keys through the
// record repository.
func NewBundleService(records ports.RecordRepository, log zerolog.Logger) ports.BundleService {
	return &bundleService{records: records, log: log}
}

func (s *bundleService) Process(ctx context.Context, job ports.BundleJob) error {
	rec, err := s.records.FindByID(ctx, job.RecordID)
	if err != nil {
		return fmt.Errorf("bundle job: %w", err)
	}

	if rec.Kind != domain.KindProgress || rec.Status != domain.StatusApproved {
		// The record changed between enqueue and processing; nothing to build.
		s.log.Debug().Str("record_id", job.RecordID).Msg("bundle job skipped")
		return nil
	}
	if rec.Attachments.Empty() || rec.Attachments.BundleKey != "" {
		return nil
	}

	key := bundleKey(rec.ID)
	if err := s.records.SetBundleKey(ctx, rec.ID, key); err != nil {
		return fmt.Errorf("bundle job: set key: %w", err)
	}

	s.log.Info().
		Str("record_id", rec.ID).
		Str("bundle_key", key).
		Int("photos", len(rec.Attachments.PhotoKeys)).
		Msg("attachment bundle ready")
	return nil
}

func bundleKey(recordID string) string {
	return fmt.Sprintf("bundles/%s.zip", recordID)
}
