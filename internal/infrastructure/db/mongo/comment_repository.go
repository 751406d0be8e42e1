package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/siteworks/records-api/internal/core/domain"
)

const commentsCollection = "comments"

// CommentRepository is append-only: comments are never updated or removed,
// the thread is kept for audit.
type CommentRepository struct {
	coll     *mongo.Collection
	counters *mongo.Collection
}

func NewCommentRepository(db *mongo.Database) *CommentRepository {
	return &CommentRepository{
		coll:     db.Collection(commentsCollection),
		counters: db.Collection(countersCollection),
	}
}

type mongoComment struct {
	ID        string    `bson:"_id"`
	Seq       int64     `bson:"seq"`
	ItemID    string    `bson:"item_id"`
	ItemKind  string    `bson:"item_kind"`
	AuthorID  string    `bson:"author_id"`
	Author    string    `bson:"author,omitempty"`
	Text      string    `bson:"text"`
	CreatedAt time.Time `bson:"created_at"`
}

func (mc mongoComment) toDomain() *domain.Comment {
	return &domain.Comment{
		ID:        mc.ID,
		ItemID:    mc.ItemID,
		ItemKind:  domain.RecordKind(mc.ItemKind),
		AuthorID:  mc.AuthorID,
		Author:    mc.Author,
		Text:      mc.Text,
		CreatedAt: mc.CreatedAt,
	}
}

func (r *CommentRepository) Create(ctx context.Context, c *domain.Comment) error {
	seq, err := nextSeq(ctx, r.counters, commentsCollection)
	if err != nil {
		return err
	}

	doc := mongoComment{
		ID:        c.ID,
		Seq:       seq,
		ItemID:    c.ItemID,
		ItemKind:  string(c.ItemKind),
		AuthorID:  c.AuthorID,
		Author:    c.Author,
		Text:      c.Text,
		CreatedAt: c.CreatedAt,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert comment: %w", err)
	}
	return nil
}

func (r *CommentRepository) ListByItem(ctx context.Context, itemID string, kind domain.RecordKind) ([]*domain.Comment, error) {
	query := bson.M{"item_id": itemID, "item_kind": string(kind)}
	sort := bson.D{{Key: "created_at", Value: 1}, {Key: "seq", Value: 1}}

	cur, err := r.coll.Find(ctx, query, options.Find().SetSort(sort))
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer cur.Close(ctx)

	var comments []*domain.Comment
	for cur.Next(ctx) {
		var mc mongoComment
		if err := cur.Decode(&mc); err != nil {
			return nil, fmt.Errorf("decode comment: %w", err)
		}
		comments = append(comments, mc.toDomain())
	}
	return comments, cur.Err()
}
