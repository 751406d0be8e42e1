package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/siteworks/records-api/internal/core/domain"
	"github.com/siteworks/records-api/internal/core/ports"
)

const (
	recordsCollection  = "records"
	countersCollection = "counters"
)

// RecordRepository stores both record kinds in one collection tagged by kind.
// A per-collection sequence number captures insertion order so equal
// submission timestamps sort deterministically.
type RecordRepository struct {
	coll     *mongo.Collection
	counters *mongo.Collection
}

func NewRecordRepository(db *mongo.Database) *RecordRepository {
	return &RecordRepository{
		coll:     db.Collection(recordsCollection),
		counters: db.Collection(countersCollection),
	}
}

type mongoRecord struct {
	ID          string               `bson:"_id"`
	Seq         int64                `bson:"seq"`
	Kind        string               `bson:"kind"`
	CreatorID   string               `bson:"creator_id"`
	SubmittedAt time.Time            `bson:"submitted_at"`
	Date        time.Time            `bson:"date"`
	Description string               `bson:"description"`
	Status      string               `bson:"status"`
	PaymentID   string               `bson:"payment_id,omitempty"`
	Amount      float64              `bson:"amount,omitempty"`
	Remarks     string               `bson:"remarks,omitempty"`
	Attachments domain.AttachmentSet `bson:"attachments,omitempty"`

	ReviewedBy      string     `bson:"reviewed_by,omitempty"`
	ReviewedAt      *time.Time `bson:"reviewed_at,omitempty"`
	ReviewerComment string     `bson:"reviewer_comment,omitempty"`
}

func (mr mongoRecord) toDomain() *domain.Record {
	return &domain.Record{
		ID:              mr.ID,
		Kind:            domain.RecordKind(mr.Kind),
		CreatorID:       mr.CreatorID,
		SubmittedAt:     mr.SubmittedAt,
		Date:            mr.Date,
		Description:     mr.Description,
		Status:          domain.RecordStatus(mr.Status),
		PaymentID:       mr.PaymentID,
		Amount:          mr.Amount,
		Remarks:         mr.Remarks,
		Attachments:     mr.Attachments,
		ReviewedBy:      mr.ReviewedBy,
		ReviewedAt:      mr.ReviewedAt,
		ReviewerComment: mr.ReviewerComment,
	}
}

// nextSeq atomically increments and returns the named counter.
func nextSeq(ctx context.Context, counters *mongo.Collection, name string) (int64, error) {
	after := options.After
	res := counters.FindOneAndUpdate(ctx,
		bson.M{"_id": name},
		bson.M{"$inc": bson.M{"value": int64(1)}},
		options.FindOneAndUpdate().SetReturnDocument(after).SetUpsert(true),
	)
	var doc struct {
		Value int64 `bson:"value"`
	}
	if err := res.Decode(&doc); err != nil {
		return 0, fmt.Errorf("next seq: %w", err)
	}
	return doc.Value, nil
}

func (r *RecordRepository) Create(ctx context.Context, rec *domain.Record) error {
	seq, err := nextSeq(ctx, r.counters, recordsCollection)
	if err != nil {
		return err
	}

	doc := mongoRecord{
		ID:          rec.ID,
		Seq:         seq,
		Kind:        string(rec.Kind),
		CreatorID:   rec.CreatorID,
		SubmittedAt: rec.SubmittedAt,
		Date:        rec.Date,
		Description: rec.Description,
		Status:      string(rec.Status),
		PaymentID:   rec.PaymentID,
		Amount:      rec.Amount,
		Remarks:     rec.Remarks,
		Attachments: rec.Attachments,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrInvalidState
		}
		return fmt.Errorf("insert record: %w", err)
	}
	return nil
}

func (r *RecordRepository) FindByID(ctx context.Context, id string) (*domain.Record, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *RecordRepository) FindPaymentByPaymentID(ctx context.Context, paymentID string) (*domain.Record, error) {
	return r.findOne(ctx, bson.M{"kind": string(domain.KindPayment), "payment_id": paymentID})
}

func (r *RecordRepository) findOne(ctx context.Context, filter bson.M) (*domain.Record, error) {
	var mr mongoRecord
	if err := r.coll.FindOne(ctx, filter).Decode(&mr); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrRecordNotFound
		}
		return nil, fmt.Errorf("find record: %w", err)
	}
	return mr.toDomain(), nil
}

func (r *RecordRepository) List(ctx context.Context, filter ports.ListRecordsFilter) ([]*domain.Record, error) {
	query := bson.M{"kind": string(filter.Kind)}
	if filter.CreatorID != "" {
		query["creator_id"] = filter.CreatorID
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, 0, len(filter.Statuses))
		for _, st := range filter.Statuses {
			statuses = append(statuses, string(st))
		}
		query["status"] = bson.M{"$in": statuses}
	}
	dateRange := bson.M{}
	if !filter.DateFrom.IsZero() {
		dateRange["$gte"] = filter.DateFrom
	}
	if !filter.DateTo.IsZero() {
		dateRange["$lte"] = filter.DateTo
	}
	if len(dateRange) > 0 {
		query["submitted_at"] = dateRange
	}

	// submitted_at descending; insertion order breaks ties.
	sort := bson.D{{Key: "submitted_at", Value: -1}, {Key: "seq", Value: 1}}
	cur, err := r.coll.Find(ctx, query, options.Find().SetSort(sort))
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer cur.Close(ctx)

	var records []*domain.Record
	for cur.Next(ctx) {
		var mr mongoRecord
		if err := cur.Decode(&mr); err != nil {
			return nil, fmt.Errorf("decode record: %w", err)
		}
		records = append(records, mr.toDomain())
	}
	return records, cur.Err()
}

// ApplyReview performs the transition as a single conditional update guarded
// on status still being pending. Between two concurrent reviewers exactly one
// update matches; the other caller is told the record already left pending.
func (r *RecordRepository) ApplyReview(ctx context.Context, id string, upd ports.ReviewUpdate) (*domain.Record, error) {
	after := options.After
	res := r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "status": string(domain.StatusPending)},
		bson.M{"$set": bson.M{
			"status":           string(upd.Decision),
			"reviewed_by":      upd.ReviewedBy,
			"reviewed_at":      upd.ReviewedAt,
			"reviewer_comment": upd.Comment,
		}},
		options.FindOneAndUpdate().SetReturnDocument(after),
	)

	var mr mongoRecord
	if err := res.Decode(&mr); err != nil {
		if err != mongo.ErrNoDocuments {
			return nil, fmt.Errorf("apply review: %w", err)
		}
		// Distinguish "never existed" from "already decided".
		if _, findErr := r.FindByID(ctx, id); findErr != nil {
			return nil, findErr
		}
		return nil, domain.ErrInvalidState
	}
	return mr.toDomain(), nil
}

func (r *RecordRepository) DeleteIfPending(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id, "status": string(domain.StatusPending)})
	if err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	if res.DeletedCount == 0 {
		if _, findErr := r.FindByID(ctx, id); findErr != nil {
			return findErr
		}
		return domain.ErrInvalidState
	}
	return nil
}

func (r *RecordRepository) SetBundleKey(ctx context.Context, id, bundleKey string) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"attachments.bundle_key": bundleKey}},
	)
	if err != nil {
		return fmt.Errorf("set bundle key: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrRecordNotFound
	}
	return nil
}
