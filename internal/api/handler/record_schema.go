package handler

import "time"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Request types ---

type createProgressRequest struct {
	Date        time.Time `json:"date"         validate:"required"`
	Description string    `json:"description"  validate:"required"`
	PhotoKeys   []string  `json:"photo_keys"   validate:"max=10"`
	VideoKey    string    `json:"video_key"`
}

type createPaymentRequest struct {
	PaymentID   string    `json:"payment_id"   validate:"required"`
	Date        time.Time `json:"date"         validate:"required"`
	Amount      float64   `json:"amount"       validate:"required,gt=0"`
	Description string    `json:"description"  validate:"required"`
	Remarks     string    `json:"remarks"`
}

type reviewRequest struct {
	Status  string `json:"status"   validate:"required,oneof=approved rejected"`
	Comment string `json:"comments"`
}

// --- Response types ---
// Owned by the transport layer so the JSON contract is not coupled to
// internal service changes.

type attachmentsResponse struct {
	PhotoKeys []string `json:"photo_keys,omitempty"`
	VideoKey  string   `json:"video_key,omitempty"`
	BundleKey string   `json:"bundle_key,omitempty"`
}

type recordResponse struct {
	ID          string    `json:"id"`
	Kind        string    `json:"kind"`
	CreatorID   string    `json:"creator_id"`
	SubmittedAt time.Time `json:"submitted_at"`
	Date        time.Time `json:"date"`
	Description string    `json:"description"`
	Status      string    `json:"status"`

	PaymentID string  `json:"payment_id,omitempty"`
	Amount    float64 `json:"amount,omitempty"`
	Remarks   string  `json:"remarks,omitempty"`

	Attachments *attachmentsResponse `json:"attachments,omitempty"`

	ReviewedBy      string     `json:"reviewed_by,omitempty"`
	ReviewedAt      *time.Time `json:"reviewed_at,omitempty"`
	ReviewerComment string     `json:"reviewer_comment,omitempty"`
}
