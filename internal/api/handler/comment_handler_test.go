package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/siteworks/records-api/internal/core/domain"
)

func TestCommentHandler_Create(t *testing.T) {
	workflow := &stubWorkflow{
		addCommentFn: func(_ context.Context, caller domain.Identity, itemID string, kind domain.RecordKind, text string) (*domain.Comment, error) {
			if itemID != "r1" || kind != domain.KindProgress || text != "on schedule" {
				t.Fatalf("wrong call: %q %q %q", itemID, kind, text)
			}
			return &domain.Comment{
				ID:        "c1",
				ItemID:    itemID,
				ItemKind:  kind,
				AuthorID:  caller.UserID,
				Author:    caller.Username,
				Text:      text,
				CreatedAt: time.Now().UTC(),
			}, nil
		},
	}
	h := NewCommentHandler(workflow)

	body := `{"item_id":"r1","type":"progress","text":"on schedule"}`
	c, rec := newTestContext(http.MethodPost, "/v1/comments", body, &testEngineer)

	if err := h.Create(c); err != nil {
		t.Fatalf("handler failed: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("status: got %d", rec.Code)
	}
	got := decodeBody(t, rec)
	if got["id"] != "c1" || got["author_id"] != testEngineer.UserID || got["text"] != "on schedule" {
		t.Fatalf("wrong body: %v", got)
	}
}

func TestCommentHandler_Create_Validation(t *testing.T) {
	h := NewCommentHandler(&stubWorkflow{})

	cases := []struct {
		name string
		body string
	}{
		{"missing item id", `{"type":"progress","text":"x"}`},
		{"missing text", `{"item_id":"r1","type":"progress"}`},
		{"bad type", `{"item_id":"r1","type":"invoice","text":"x"}`},
	}
	for _, tc := range cases {
		c, _ := newTestContext(http.MethodPost, "/v1/comments", tc.body, &testEngineer)
		err := h.Create(c)
		var he *echo.HTTPError
		if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %v", tc.name, err)
		}
	}
}

func TestCommentHandler_Create_ForbiddenPassesThrough(t *testing.T) {
	workflow := &stubWorkflow{
		addCommentFn: func(_ context.Context, _ domain.Identity, _ string, _ domain.RecordKind, _ string) (*domain.Comment, error) {
			return nil, domain.ErrForbidden
		},
	}
	h := NewCommentHandler(workflow)

	body := `{"item_id":"r1","type":"progress","text":"hi"}`
	c, _ := newTestContext(http.MethodPost, "/v1/comments", body, &testEngineer)
	if err := h.Create(c); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestCommentHandler_List(t *testing.T) {
	workflow := &stubWorkflow{
		listCommentsFn: func(_ context.Context, _ domain.Identity, itemID string, kind domain.RecordKind) ([]*domain.Comment, error) {
			if itemID != "r1" || kind != domain.KindPayment {
				t.Fatalf("wrong call: %q %q", itemID, kind)
			}
			return []*domain.Comment{
				{ID: "c1", ItemID: itemID, ItemKind: kind, Text: "first"},
				{ID: "c2", ItemID: itemID, ItemKind: kind, Text: "second"},
			}, nil
		},
	}
	h := NewCommentHandler(workflow)

	c, rec := newTestContext(http.MethodGet, "/v1/comments?item_id=r1&type=payment", "", &testAdmin)
	if err := h.List(c); err != nil {
		t.Fatalf("handler failed: %v", err)
	}
	var got []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("invalid body: %v", err)
	}
	if len(got) != 2 || got[0]["text"] != "first" || got[1]["text"] != "second" {
		t.Fatalf("wrong body: %v", got)
	}
}

func TestCommentHandler_List_BadParams(t *testing.T) {
	h := NewCommentHandler(&stubWorkflow{})

	for _, target := range []string{
		"/v1/comments",
		"/v1/comments?item_id=r1",
		"/v1/comments?item_id=r1&type=invoice",
		"/v1/comments?type=progress",
	} {
		c, _ := newTestContext(http.MethodGet, target, "", &testAdmin)
		err := h.List(c)
		var he *echo.HTTPError
		if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %v", target, err)
		}
	}
}
