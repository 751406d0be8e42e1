package domain

import "time"

// RecordKind distinguishes the two record types moving through the workflow.
type RecordKind string

const (
	KindProgress RecordKind = "progress"
	KindPayment  RecordKind = "payment"
)

// Valid reports whether k is one of the known record kinds.
func (k RecordKind) Valid() bool {
	return k == KindProgress || k == KindPayment
}

// RecordStatus represents the review state of a record.
type RecordStatus string

const (
	StatusPending  RecordStatus = "pending"
	StatusApproved RecordStatus = "approved"
	StatusRejected RecordStatus = "rejected"
)

// validTransitions defines the allowed state machine transitions.
// Approved and rejected are terminal.
var validTransitions = map[RecordStatus][]RecordStatus{
	StatusPending: {StatusApproved, StatusRejected},
}

// CanTransitionTo reports whether a transition from status s to next is valid.
func (s RecordStatus) CanTransitionTo(next RecordStatus) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transition is possible out of s.
func (s RecordStatus) Terminal() bool {
	return len(validTransitions[s]) == 0
}

// AttachmentSet references the uploaded media of a progress record. The keys
// are opaque storage references; the bundle key is set when an approved
// record's attachments have been packed into a downloadable archive.
type AttachmentSet struct {
	PhotoKeys []string `json:"photo_keys,omitempty" bson:"photo_keys,omitempty"`
	VideoKey  string   `json:"video_key,omitempty" bson:"video_key,omitempty"`
	BundleKey string   `json:"bundle_key,omitempty" bson:"bundle_key,omitempty"`
}

// Empty reports whether the set references no media at all.
func (a AttachmentSet) Empty() bool {
	return len(a.PhotoKeys) == 0 && a.VideoKey == ""
}

// Record is the core aggregate: a progress or payment submission moving
// from pending to its approved or rejected terminal state.
//
// Review fields (ReviewedBy, ReviewedAt, ReviewerComment) are unset while the
// record is pending and written exactly once, atomically with the status
// change.
type Record struct {
	ID          string       `json:"id" bson:"_id,omitempty"`
	Kind        RecordKind   `json:"kind" bson:"kind"`
	CreatorID   string       `json:"creator_id" bson:"creator_id"`
	SubmittedAt time.Time    `json:"submitted_at" bson:"submitted_at"`
	Date        time.Time    `json:"date" bson:"date"`
	Description string       `json:"description" bson:"description"`
	Status      RecordStatus `json:"status" bson:"status"`

	// Payment-only fields.
	PaymentID string  `json:"payment_id,omitempty" bson:"payment_id,omitempty"`
	Amount    float64 `json:"amount,omitempty" bson:"amount,omitempty"`
	Remarks   string  `json:"remarks,omitempty" bson:"remarks,omitempty"`

	// Progress-only field.
	Attachments AttachmentSet `json:"attachments,omitempty" bson:"attachments,omitempty"`

	ReviewedBy      string     `json:"reviewed_by,omitempty" bson:"reviewed_by,omitempty"`
	ReviewedAt      *time.Time `json:"reviewed_at,omitempty" bson:"reviewed_at,omitempty"`
	ReviewerComment string     `json:"reviewer_comment,omitempty" bson:"reviewer_comment,omitempty"`
}

// Reviewed reports whether the record has left the pending state.
func (r *Record) Reviewed() bool {
	return r.Status != StatusPending
}
