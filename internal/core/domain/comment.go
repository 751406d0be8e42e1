package domain

import "time"

// Comment is an append-only note on a record's thread. Comments are never
// edited or deleted; the thread is retained for audit even after review.
type Comment struct {
	ID        string     `json:"id" bson:"_id,omitempty"`
	ItemID    string     `json:"item_id" bson:"item_id"`
	ItemKind  RecordKind `json:"item_kind" bson:"item_kind"`
	AuthorID  string     `json:"author_id" bson:"author_id"`
	Author    string     `json:"author,omitempty" bson:"author,omitempty"`
	Text      string     `json:"text" bson:"text"`
	CreatedAt time.Time  `json:"created_at" bson:"created_at"`
}
