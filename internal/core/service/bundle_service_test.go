package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/siteworks/records-api/internal/core/domain"
	"github.com/siteworks/records-api/internal/core/ports"
)

func seedRecord(t *testing.T, repo *stubRecordRepo, rec *domain.Record) {
	t.Helper()
	if rec.SubmittedAt.IsZero() {
		rec.SubmittedAt = time.Now().UTC()
	}
	if err := repo.Create(context.Background(), rec); err != nil {
		t.Fatalf("seed: %v", err)
	}
}

func TestBundle_Process_SetsKey(t *testing.T) {
	repo := newStubRecordRepo()
	seedRecord(t, repo, &domain.Record{
		ID:     "r1",
		Kind:   domain.KindProgress,
		Status: domain.StatusApproved,
		Attachments: domain.AttachmentSet{
			PhotoKeys: []string{"photos/a.jpg", "photos/b.jpg"},
		},
	})
	svc := NewBundleService(repo, discardLogger)

	if err := svc.Process(context.Background(), ports.BundleJob{RecordID: "r1"}); err != nil {
		t.Fatalf("process failed: %v", err)
	}

	rec, _ := repo.FindByID(context.Background(), "r1")
	if rec.Attachments.BundleKey != "bundles/r1.zip" {
		t.Fatalf("bundle key: got %q", rec.Attachments.BundleKey)
	}
}

func TestBundle_Process_SkipsIneligibleRecords(t *testing.T) {
	repo := newStubRecordRepo()
	seedRecord(t, repo, &domain.Record{ID: "pending", Kind: domain.KindProgress, Status: domain.StatusPending,
		Attachments: domain.AttachmentSet{PhotoKeys: []string{"photos/a.jpg"}}})
	seedRecord(t, repo, &domain.Record{ID: "payment", Kind: domain.KindPayment, Status: domain.StatusApproved})
	seedRecord(t, repo, &domain.Record{ID: "no-media", Kind: domain.KindProgress, Status: domain.StatusApproved})
	seedRecord(t, repo, &domain.Record{ID: "bundled", Kind: domain.KindProgress, Status: domain.StatusApproved,
		Attachments: domain.AttachmentSet{PhotoKeys: []string{"photos/a.jpg"}, BundleKey: "bundles/bundled.zip"}})
	svc := NewBundleService(repo, discardLogger)
	ctx := context.Background()

	for _, id := range []string{"pending", "payment", "no-media", "bundled"} {
		if err := svc.Process(ctx, ports.BundleJob{RecordID: id}); err != nil {
			t.Fatalf("%s: process failed: %v", id, err)
		}
	}
	for _, id := range []string{"pending", "payment", "no-media"} {
		rec, _ := repo.FindByID(ctx, id)
		if rec.Attachments.BundleKey != "" {
			t.Errorf("%s: bundle key must stay empty, got %q", id, rec.Attachments.BundleKey)
		}
	}
	rec, _ := repo.FindByID(ctx, "bundled")
	if rec.Attachments.BundleKey != "bundles/bundled.zip" {
		t.Error("existing bundle key must not be overwritten")
	}
}

func TestBundle_Process_UnknownRecord(t *testing.T) {
	svc := NewBundleService(newStubRecordRepo(), discardLogger)
	if err := svc.Process(context.Background(), ports.BundleJob{RecordID: "ghost"}); !errors.Is(err, domain.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
}
