package handler

import "github.com/siteworks/records-api/internal/core/domain"

// toRecordResponse maps a domain record to its transport view.
func toRecordResponse(rec *domain.Record) recordResponse {
	resp := recordResponse{
		ID:              rec.ID,
		Kind:            string(rec.Kind),
		CreatorID:       rec.CreatorID,
		SubmittedAt:     rec.SubmittedAt,
		Date:            rec.Date,
		Description:     rec.Description,
		Status:          string(rec.Status),
		PaymentID:       rec.PaymentID,
		Amount:          rec.Amount,
		Remarks:         rec.Remarks,
		ReviewedBy:      rec.ReviewedBy,
		ReviewedAt:      rec.ReviewedAt,
		ReviewerComment: rec.ReviewerComment,
	}
	if rec.Kind == domain.KindProgress && !rec.Attachments.Empty() {
		resp.Attachments = &attachmentsResponse{
			PhotoKeys: rec.Attachments.PhotoKeys,
			VideoKey:  rec.Attachments.VideoKey,
			BundleKey: rec.Attachments.BundleKey,
		}
	}
	return resp
}

func toRecordResponses(records []*domain.Record) []recordResponse {
	out := make([]recordResponse, 0, len(records))
	for _, rec := range records {
		out = append(out, toRecordResponse(rec))
	}
	return out
}
