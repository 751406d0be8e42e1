package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/siteworks/records-api/internal/core/domain"
	"github.com/siteworks/records-api/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory stub repositories
// ---------------------------------------------------------------------------

// stubRecordRepo mirrors the conditional-write contract of the Mongo
// repository, including the status guard on ApplyReview and DeleteIfPending.
type stubRecordRepo struct {
	mu      sync.Mutex
	records map[string]*domain.Record
	seq     map[string]int64
	nextSeq int64
}

func newStubRecordRepo() *stubRecordRepo {
	return &stubRecordRepo{
		records: make(map[string]*domain.Record),
		seq:     make(map[string]int64),
	}
}

func (r *stubRecordRepo) Create(_ context.Context, rec *domain.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *rec
	r.records[rec.ID] = &clone
	r.nextSeq++
	r.seq[rec.ID] = r.nextSeq
	return nil
}

func (r *stubRecordRepo) FindByID(_ context.Context, id string) (*domain.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[id]
	if !ok {
		return nil, domain.ErrRecordNotFound
	}
	clone := *rec
	return &clone, nil
}

func (r *stubRecordRepo) FindPaymentByPaymentID(_ context.Context, paymentID string) (*domain.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.records {
		if rec.Kind == domain.KindPayment && rec.PaymentID == paymentID {
			clone := *rec
			return &clone, nil
		}
	}
	return nil, domain.ErrRecordNotFound
}

func (r *stubRecordRepo) List(_ context.Context, f ports.ListRecordsFilter) ([]*domain.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var matched []*domain.Record
	for _, rec := range r.records {
		if rec.Kind != f.Kind {
			continue
		}
		if f.CreatorID != "" && rec.CreatorID != f.CreatorID {
			continue
		}
		if len(f.Statuses) > 0 {
			ok := false
			for _, st := range f.Statuses {
				if rec.Status == st {
					ok = true
					break
				}
			}
			if !ok {
				continue
			}
		}
		if !f.DateFrom.IsZero() && rec.SubmittedAt.Before(f.DateFrom) {
			continue
		}
		if !f.DateTo.IsZero() && rec.SubmittedAt.After(f.DateTo) {
			continue
		}
		clone := *rec
		matched = append(matched, &clone)
	}

	// submitted_at descending, insertion order for ties.
	sort.SliceStable(matched, func(i, j int) bool {
		if !matched[i].SubmittedAt.Equal(matched[j].SubmittedAt) {
			return matched[i].SubmittedAt.After(matched[j].SubmittedAt)
		}
		return r.seq[matched[i].ID] < r.seq[matched[j].ID]
	})
	return matched, nil
}

func (r *stubRecordRepo) ApplyReview(_ context.Context, id string, upd ports.ReviewUpdate) (*domain.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[id]
	if !ok {
		return nil, domain.ErrRecordNotFound
	}
	if rec.Status != domain.StatusPending {
		return nil, domain.ErrInvalidState
	}
	rec.Status = upd.Decision
	rec.ReviewedBy = upd.ReviewedBy
	reviewedAt := upd.ReviewedAt
	rec.ReviewedAt = &reviewedAt
	rec.ReviewerComment = upd.Comment
	clone := *rec
	return &clone, nil
}

func (r *stubRecordRepo) DeleteIfPending(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[id]
	if !ok {
		return domain.ErrRecordNotFound
	}
	if rec.Status != domain.StatusPending {
		return domain.ErrInvalidState
	}
	delete(r.records, id)
	return nil
}

func (r *stubRecordRepo) SetBundleKey(_ context.Context, id, bundleKey string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[id]
	if !ok {
		return domain.ErrRecordNotFound
	}
	rec.Attachments.BundleKey = bundleKey
	return nil
}

type stubCommentRepo struct {
	mu       sync.Mutex
	comments []*domain.Comment
}

func (r *stubCommentRepo) Create(_ context.Context, c *domain.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *c
	r.comments = append(r.comments, &clone)
	return nil
}

func (r *stubCommentRepo) ListByItem(_ context.Context, itemID string, kind domain.RecordKind) ([]*domain.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Comment
	for _, c := range r.comments {
		if c.ItemID == itemID && c.ItemKind == kind {
			clone := *c
			out = append(out, &clone)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

type stubBundleEnqueuer struct {
	mu   sync.Mutex
	jobs []ports.BundleJob
}

func (s *stubBundleEnqueuer) Enqueue(job ports.BundleJob) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs = append(s.jobs, job)
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

var discardLogger = zerolog.Nop()

var (
	adminCaller    = domain.Identity{UserID: "u-admin", Username: "admin", Role: domain.RoleAdmin}
	engineerCaller = domain.Identity{UserID: "u-eng", Username: "eng", Role: domain.RoleSiteEngineer}
	engineerPeerCaller = domain.Identity{UserID: "u-eng2", Username: "eng2", Role: domain.RoleSiteEngineer}
	payerCaller    = domain.Identity{UserID: "u-pay", Username: "payer", Role: domain.RolePayingAuthority}
	viewerCaller   = domain.Identity{UserID: "u-view", Username: "viewer", Role: domain.RoleViewer}
)

func newTestWorkflow() (*WorkflowService, *stubRecordRepo, *stubCommentRepo, *stubBundleEnqueuer) {
	records := newStubRecordRepo()
	comments := &stubCommentRepo{}
	bundles := &stubBundleEnqueuer{}
	svc := NewWorkflowService(records, comments, bundles, discardLogger)
	return svc, records, comments, bundles
}

func progressInput(desc string) ports.SubmitRecordInput {
	return ports.SubmitRecordInput{
		Kind:        domain.KindProgress,
		Date:        time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		Description: desc,
		PhotoKeys:   []string{"photos/a.jpg"},
	}
}

func paymentInput(paymentID string, amount float64) ports.SubmitRecordInput {
	return ports.SubmitRecordInput{
		Kind:        domain.KindPayment,
		Date:        time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		Description: "invoice",
		PaymentID:   paymentID,
		Amount:      amount,
	}
}

// ---------------------------------------------------------------------------
// Submit
// ---------------------------------------------------------------------------

func TestWorkflow_Submit_ProgressSuccess(t *testing.T) {
	svc, repo, _, _ := newTestWorkflow()

	rec, err := svc.Submit(context.Background(), engineerCaller, progressInput("poured foundation"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Status != domain.StatusPending {
		t.Errorf("expected status pending, got %q", rec.Status)
	}
	if rec.CreatorID != engineerCaller.UserID {
		t.Errorf("creator not set: %q", rec.CreatorID)
	}
	if rec.SubmittedAt.IsZero() {
		t.Error("SubmittedAt must not be zero")
	}
	if _, err := repo.FindByID(context.Background(), rec.ID); err != nil {
		t.Errorf("record not stored: %v", err)
	}
}

func TestWorkflow_Submit_RoleGates(t *testing.T) {
	svc, _, _, _ := newTestWorkflow()
	ctx := context.Background()

	cases := []struct {
		name   string
		caller domain.Identity
		input  ports.SubmitRecordInput
		want   error
	}{
		{"engineer cannot submit payment", engineerCaller, paymentInput("PAY-1", 500), domain.ErrForbidden},
		{"payer cannot submit progress", payerCaller, progressInput("x"), domain.ErrForbidden},
		{"admin cannot submit progress", adminCaller, progressInput("x"), domain.ErrForbidden},
		{"viewer cannot submit payment", viewerCaller, paymentInput("PAY-2", 10), domain.ErrForbidden},
		{"payer submits payment", payerCaller, paymentInput("PAY-3", 500), nil},
	}
	for _, tc := range cases {
		_, err := svc.Submit(ctx, tc.caller, tc.input)
		if !errors.Is(err, tc.want) && !(tc.want == nil && err == nil) {
			t.Errorf("%s: got %v, want %v", tc.name, err, tc.want)
		}
	}
}

func TestWorkflow_Submit_Validation(t *testing.T) {
	svc, _, _, _ := newTestWorkflow()
	ctx := context.Background()

	missingDate := progressInput("ok")
	missingDate.Date = time.Time{}
	if _, err := svc.Submit(ctx, engineerCaller, missingDate); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("missing date: got %v", err)
	}

	if _, err := svc.Submit(ctx, engineerCaller, progressInput("   ")); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("blank description: got %v", err)
	}

	if _, err := svc.Submit(ctx, payerCaller, paymentInput("", 100)); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("missing payment id: got %v", err)
	}

	if _, err := svc.Submit(ctx, payerCaller, paymentInput("PAY-9", 0)); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("zero amount: got %v", err)
	}

	tooManyPhotos := progressInput("ok")
	tooManyPhotos.PhotoKeys = make([]string, 11)
	if _, err := svc.Submit(ctx, engineerCaller, tooManyPhotos); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("photo limit: got %v", err)
	}
}

// ---------------------------------------------------------------------------
// Transition
// ---------------------------------------------------------------------------

func TestWorkflow_Transition_ApproveSetsReviewFieldsOnce(t *testing.T) {
	svc, repo, _, _ := newTestWorkflow()
	ctx := context.Background()

	rec, _ := svc.Submit(ctx, engineerCaller, progressInput("slab work"))

	approved, err := svc.Transition(ctx, adminCaller, rec.ID, domain.StatusApproved, "looks good")
	if err != nil {
		t.Fatalf("transition failed: %v", err)
	}
	if approved.Status != domain.StatusApproved {
		t.Errorf("status: got %q", approved.Status)
	}
	if approved.ReviewedBy != adminCaller.UserID {
		t.Errorf("reviewedBy: got %q", approved.ReviewedBy)
	}
	if approved.ReviewedAt == nil || approved.ReviewedAt.IsZero() {
		t.Error("reviewedAt must be set")
	}
	if approved.ReviewerComment != "looks good" {
		t.Errorf("comment: got %q", approved.ReviewerComment)
	}

	// Second transition on any decision must fail: terminal state.
	if _, err := svc.Transition(ctx, adminCaller, rec.ID, domain.StatusRejected, ""); !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}

	stored, _ := repo.FindByID(ctx, rec.ID)
	if stored.Status != domain.StatusApproved || stored.ReviewerComment != "looks good" {
		t.Error("losing transition must not mutate the record")
	}
}

func TestWorkflow_Transition_OnlyAdmin(t *testing.T) {
	svc, _, _, _ := newTestWorkflow()
	ctx := context.Background()

	rec, _ := svc.Submit(ctx, payerCaller, paymentInput("PAY-7", 250))

	for _, caller := range []domain.Identity{engineerCaller, payerCaller, viewerCaller} {
		if _, err := svc.Transition(ctx, caller, rec.ID, domain.StatusApproved, ""); !errors.Is(err, domain.ErrForbidden) {
			t.Errorf("%s: expected ErrForbidden, got %v", caller.Role, err)
		}
	}
}

func TestWorkflow_Transition_UnknownRecord(t *testing.T) {
	svc, _, _, _ := newTestWorkflow()
	if _, err := svc.Transition(context.Background(), adminCaller, "no-such-id", domain.StatusApproved, ""); !errors.Is(err, domain.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestWorkflow_Transition_InvalidDecision(t *testing.T) {
	svc, _, _, _ := newTestWorkflow()
	ctx := context.Background()
	rec, _ := svc.Submit(ctx, engineerCaller, progressInput("x"))

	if _, err := svc.Transition(ctx, adminCaller, rec.ID, domain.StatusPending, ""); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("pending is not a decision: got %v", err)
	}
}

func TestWorkflow_Transition_ConcurrentExactlyOneWins(t *testing.T) {
	svc, _, _, _ := newTestWorkflow()
	ctx := context.Background()

	rec, _ := svc.Submit(ctx, engineerCaller, progressInput("rebar inspection"))

	const callers = 8
	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			decision := domain.StatusApproved
			if i%2 == 1 {
				decision = domain.StatusRejected
			}
			_, errs[i] = svc.Transition(ctx, adminCaller, rec.ID, decision, "")
		}(i)
	}
	wg.Wait()

	wins, conflicts := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, domain.ErrInvalidState):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if wins != 1 {
		t.Fatalf("expected exactly one winner, got %d", wins)
	}
	if conflicts != callers-1 {
		t.Fatalf("expected %d conflicts, got %d", callers-1, conflicts)
	}
}

func TestWorkflow_Transition_ApprovedProgressEnqueuesBundle(t *testing.T) {
	svc, _, _, bundles := newTestWorkflow()
	ctx := context.Background()

	rec, _ := svc.Submit(ctx, engineerCaller, progressInput("formwork"))
	if _, err := svc.Transition(ctx, adminCaller, rec.ID, domain.StatusApproved, ""); err != nil {
		t.Fatalf("transition failed: %v", err)
	}
	if len(bundles.jobs) != 1 || bundles.jobs[0].RecordID != rec.ID {
		t.Fatalf("expected one bundle job for %s, got %+v", rec.ID, bundles.jobs)
	}

	// Rejected progress and payments never enqueue bundles.
	rec2, _ := svc.Submit(ctx, engineerCaller, progressInput("more formwork"))
	_, _ = svc.Transition(ctx, adminCaller, rec2.ID, domain.StatusRejected, "")
	pay, _ := svc.Submit(ctx, payerCaller, paymentInput("PAY-20", 99))
	_, _ = svc.Transition(ctx, adminCaller, pay.ID, domain.StatusApproved, "")
	if len(bundles.jobs) != 1 {
		t.Fatalf("expected no extra bundle jobs, got %d", len(bundles.jobs))
	}
}

func TestWorkflow_TransitionByPaymentID(t *testing.T) {
	svc, _, _, _ := newTestWorkflow()
	ctx := context.Background()

	_, _ = svc.Submit(ctx, payerCaller, paymentInput("PAY-42", 1200))

	rec, err := svc.TransitionByPaymentID(ctx, adminCaller, "PAY-42", domain.StatusApproved, "ok")
	if err != nil {
		t.Fatalf("transition by payment id failed: %v", err)
	}
	if rec.Status != domain.StatusApproved {
		t.Errorf("status: got %q", rec.Status)
	}

	if _, err := svc.TransitionByPaymentID(ctx, adminCaller, "PAY-404", domain.StatusApproved, ""); !errors.Is(err, domain.ErrRecordNotFound) {
		t.Errorf("unknown payment id: got %v", err)
	}
	if _, err := svc.TransitionByPaymentID(ctx, viewerCaller, "PAY-42", domain.StatusApproved, ""); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("viewer transition: got %v", err)
	}
}

// ---------------------------------------------------------------------------
// List
// ---------------------------------------------------------------------------

func TestWorkflow_List_OrderingAndTies(t *testing.T) {
	svc, _, _, _ := newTestWorkflow()
	ctx := context.Background()

	t0 := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	t1 := t0.Add(time.Hour)

	// Inject fixed submission times to exercise the tie-break.
	times := []time.Time{t0, t1, t1}
	i := 0
	svc.now = func() time.Time { t := times[i]; i++; return t }

	a, _ := svc.Submit(ctx, engineerCaller, progressInput("first"))
	b, _ := svc.Submit(ctx, engineerCaller, progressInput("second"))
	c, _ := svc.Submit(ctx, engineerCaller, progressInput("third"))

	got, err := svc.List(ctx, engineerCaller, ports.ListRecordsInput{Kind: domain.KindProgress})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 records, got %d", len(got))
	}
	// t1 ties sort by insertion order (b before c), t0 last.
	if got[0].ID != b.ID || got[1].ID != c.ID || got[2].ID != a.ID {
		t.Fatalf("wrong order: %s %s %s", got[0].Description, got[1].Description, got[2].Description)
	}
}

func TestWorkflow_List_OwnerScoping(t *testing.T) {
	svc, _, _, _ := newTestWorkflow()
	ctx := context.Background()

	mine, _ := svc.Submit(ctx, engineerCaller, progressInput("mine"))
	_, _ = svc.Submit(ctx, engineerPeerCaller, progressInput("theirs"))

	got, err := svc.List(ctx, engineerCaller, ports.ListRecordsInput{Kind: domain.KindProgress, Status: domain.StatusPending})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(got) != 1 || got[0].ID != mine.ID {
		t.Fatalf("engineer must only see own records, got %d", len(got))
	}
}

func TestWorkflow_List_ViewerNeverSeesPending(t *testing.T) {
	svc, _, _, _ := newTestWorkflow()
	ctx := context.Background()

	pending, _ := svc.Submit(ctx, engineerCaller, progressInput("pending work"))
	approved, _ := svc.Submit(ctx, engineerCaller, progressInput("approved work"))
	_, _ = svc.Transition(ctx, adminCaller, approved.ID, domain.StatusApproved, "")

	got, err := svc.List(ctx, viewerCaller, ports.ListRecordsInput{Kind: domain.KindProgress})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	for _, rec := range got {
		if rec.ID == pending.ID {
			t.Fatal("viewer must not see pending records")
		}
	}
	if len(got) != 1 || got[0].ID != approved.ID {
		t.Fatalf("viewer should see the approved record, got %d", len(got))
	}

	// Asking for pending explicitly is refused outright.
	if _, err := svc.List(ctx, viewerCaller, ports.ListRecordsInput{Kind: domain.KindProgress, Status: domain.StatusPending}); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestWorkflow_List_AdminDefaultsToReviewed(t *testing.T) {
	svc, _, _, _ := newTestWorkflow()
	ctx := context.Background()

	pending, _ := svc.Submit(ctx, payerCaller, paymentInput("PAY-1", 100))
	approved, _ := svc.Submit(ctx, payerCaller, paymentInput("PAY-2", 200))
	_, _ = svc.Transition(ctx, adminCaller, approved.ID, domain.StatusApproved, "")

	got, _ := svc.List(ctx, adminCaller, ports.ListRecordsInput{Kind: domain.KindPayment})
	if len(got) != 1 || got[0].ID != approved.ID {
		t.Fatalf("admin default must exclude pending, got %d", len(got))
	}

	// The explicit pending path is available to the admin.
	got, _ = svc.List(ctx, adminCaller, ports.ListRecordsInput{Kind: domain.KindPayment, Status: domain.StatusPending})
	if len(got) != 1 || got[0].ID != pending.ID {
		t.Fatalf("admin pending listing failed, got %d", len(got))
	}
}

func TestWorkflow_List_DateRange(t *testing.T) {
	svc, _, _, _ := newTestWorkflow()
	ctx := context.Background()

	t0 := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	times := []time.Time{t0, t0.AddDate(0, 0, 5), t0.AddDate(0, 0, 10)}
	i := 0
	svc.now = func() time.Time { t := times[i]; i++; return t }

	early, _ := svc.Submit(ctx, engineerCaller, progressInput("early"))
	mid, _ := svc.Submit(ctx, engineerCaller, progressInput("mid"))
	late, _ := svc.Submit(ctx, engineerCaller, progressInput("late"))

	got, _ := svc.List(ctx, engineerCaller, ports.ListRecordsInput{
		Kind:     domain.KindProgress,
		DateFrom: t0.AddDate(0, 0, 5), // inclusive
		DateTo:   t0.AddDate(0, 0, 10),
	})
	if len(got) != 2 || got[0].ID != late.ID || got[1].ID != mid.ID {
		t.Fatalf("inclusive range wrong: got %d records", len(got))
	}

	// Lower bound alone.
	got, _ = svc.List(ctx, engineerCaller, ports.ListRecordsInput{Kind: domain.KindProgress, DateFrom: t0.AddDate(0, 0, 1)})
	if len(got) != 2 {
		t.Fatalf("open upper bound wrong: got %d", len(got))
	}
	// Upper bound alone.
	got, _ = svc.List(ctx, engineerCaller, ports.ListRecordsInput{Kind: domain.KindProgress, DateTo: t0})
	if len(got) != 1 || got[0].ID != early.ID {
		t.Fatalf("open lower bound wrong: got %d", len(got))
	}
}

// ---------------------------------------------------------------------------
// Delete
// ---------------------------------------------------------------------------

func TestWorkflow_Delete_OwnerWhilePending(t *testing.T) {
	svc, repo, _, _ := newTestWorkflow()
	ctx := context.Background()

	rec, _ := svc.Submit(ctx, payerCaller, paymentInput("PAY-D1", 500))
	if err := svc.Delete(ctx, payerCaller, rec.ID); err != nil {
		t.Fatalf("owner delete failed: %v", err)
	}
	if _, err := repo.FindByID(ctx, rec.ID); !errors.Is(err, domain.ErrRecordNotFound) {
		t.Fatal("record should be gone")
	}
}

func TestWorkflow_Delete_ApprovedFailsInvalidState(t *testing.T) {
	svc, _, _, _ := newTestWorkflow()
	ctx := context.Background()

	rec, _ := svc.Submit(ctx, payerCaller, paymentInput("PAY-D2", 500))
	_, _ = svc.Transition(ctx, adminCaller, rec.ID, domain.StatusApproved, "")

	if err := svc.Delete(ctx, payerCaller, rec.ID); !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
}

func TestWorkflow_Delete_NonOwnerForbidden(t *testing.T) {
	svc, _, _, _ := newTestWorkflow()
	ctx := context.Background()

	rec, _ := svc.Submit(ctx, payerCaller, paymentInput("PAY-D3", 500))

	other := domain.Identity{UserID: "u-pay2", Username: "payer2", Role: domain.RolePayingAuthority}
	if err := svc.Delete(ctx, other, rec.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	// Admin may delete a pending record.
	if err := svc.Delete(ctx, adminCaller, rec.ID); err != nil {
		t.Fatalf("admin delete failed: %v", err)
	}
}

// ---------------------------------------------------------------------------
// Comments
// ---------------------------------------------------------------------------

func TestWorkflow_AddComment_EmptyTextRejected(t *testing.T) {
	svc, _, comments, _ := newTestWorkflow()
	ctx := context.Background()

	rec, _ := svc.Submit(ctx, engineerCaller, progressInput("wall framing"))

	for _, text := range []string{"", "   ", "\n\t"} {
		if _, err := svc.AddComment(ctx, engineerCaller, rec.ID, domain.KindProgress, text); !errors.Is(err, domain.ErrValidation) {
			t.Errorf("text %q: expected ErrValidation, got %v", text, err)
		}
	}
	if len(comments.comments) != 0 {
		t.Fatal("nothing must be appended on validation failure")
	}
}

func TestWorkflow_AddComment_VisibilityGate(t *testing.T) {
	svc, _, _, _ := newTestWorkflow()
	ctx := context.Background()

	rec, _ := svc.Submit(ctx, engineerCaller, progressInput("pending work"))

	// Pending record of another engineer is invisible, so commenting is forbidden.
	if _, err := svc.AddComment(ctx, engineerPeerCaller, rec.ID, domain.KindProgress, "hi"); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	// The viewer cannot see pending either.
	if _, err := svc.AddComment(ctx, viewerCaller, rec.ID, domain.KindProgress, "hi"); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("viewer on pending: expected ErrForbidden, got %v", err)
	}
	// Owner and admin can.
	if _, err := svc.AddComment(ctx, engineerCaller, rec.ID, domain.KindProgress, "on track"); err != nil {
		t.Fatalf("owner comment failed: %v", err)
	}
	if _, err := svc.AddComment(ctx, adminCaller, rec.ID, domain.KindProgress, "noted"); err != nil {
		t.Fatalf("admin comment failed: %v", err)
	}

	// After approval the record becomes visible to the viewer.
	_, _ = svc.Transition(ctx, adminCaller, rec.ID, domain.StatusApproved, "")
	if _, err := svc.AddComment(ctx, viewerCaller, rec.ID, domain.KindProgress, "nice work"); err != nil {
		t.Fatalf("viewer comment on approved record failed: %v", err)
	}
}

func TestWorkflow_ListComments_OrderedByCreation(t *testing.T) {
	svc, _, _, _ := newTestWorkflow()
	ctx := context.Background()

	rec, _ := svc.Submit(ctx, engineerCaller, progressInput("roofing"))

	base := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	times := []time.Time{base.Add(2 * time.Minute), base, base} // out of order, with a tie
	i := 0
	svc.now = func() time.Time { t := times[i]; i++; return t }

	first, _ := svc.AddComment(ctx, engineerCaller, rec.ID, domain.KindProgress, "third by time")
	second, _ := svc.AddComment(ctx, engineerCaller, rec.ID, domain.KindProgress, "tie a")
	third, _ := svc.AddComment(ctx, adminCaller, rec.ID, domain.KindProgress, "tie b")

	got, err := svc.ListComments(ctx, adminCaller, rec.ID, domain.KindProgress)
	if err != nil {
		t.Fatalf("list comments failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 comments, got %d", len(got))
	}
	if got[0].ID != second.ID || got[1].ID != third.ID || got[2].ID != first.ID {
		t.Fatalf("wrong order: %q %q %q", got[0].Text, got[1].Text, got[2].Text)
	}
}

func TestWorkflow_Comments_KindMismatchIsNotFound(t *testing.T) {
	svc, _, _, _ := newTestWorkflow()
	ctx := context.Background()

	rec, _ := svc.Submit(ctx, engineerCaller, progressInput("grading"))
	if _, err := svc.AddComment(ctx, engineerCaller, rec.ID, domain.KindPayment, "wrong kind"); !errors.Is(err, domain.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// End-to-end review scenario
// ---------------------------------------------------------------------------

func TestWorkflow_ReviewScenario(t *testing.T) {
	svc, _, _, _ := newTestWorkflow()
	ctx := context.Background()

	// Engineer E submits progress record P.
	p, err := svc.Submit(ctx, engineerCaller, progressInput("site cleared"))
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	// Admin approves with a comment.
	p, err = svc.Transition(ctx, adminCaller, p.ID, domain.StatusApproved, "looks good")
	if err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if p.Status != domain.StatusApproved || p.ReviewedBy != adminCaller.UserID || p.ReviewerComment != "looks good" {
		t.Fatal("review fields not set")
	}

	// Second decision fails.
	if _, err := svc.Transition(ctx, adminCaller, p.ID, domain.StatusRejected, ""); !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}

	// Viewer sees the approved record.
	visible, _ := svc.List(ctx, viewerCaller, ports.ListRecordsInput{Kind: domain.KindProgress})
	if len(visible) != 1 || visible[0].ID != p.ID {
		t.Fatal("viewer must see the approved record")
	}

	// Another engineer sees none of E's records, pending or otherwise.
	other, _ := svc.List(ctx, engineerPeerCaller, ports.ListRecordsInput{Kind: domain.KindProgress, Status: domain.StatusPending})
	if len(other) != 0 {
		t.Fatalf("foreign engineer must see nothing, got %d", len(other))
	}
}
