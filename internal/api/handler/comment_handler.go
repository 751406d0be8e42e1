package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/siteworks/records-api/internal/api/metrics"
	"github.com/siteworks/records-api/internal/core/domain"
	"github.com/siteworks/records-api/internal/core/ports"
)

// CommentHandler serves record comment threads.
type CommentHandler struct {
	workflow ports.WorkflowService
}

func NewCommentHandler(workflow ports.WorkflowService) *CommentHandler {
	return &CommentHandler{workflow: workflow}
}

type createCommentRequest struct {
	ItemID string `json:"item_id" validate:"required"`
	Type   string `json:"type"    validate:"required,oneof=progress payment"`
	Text   string `json:"text"    validate:"required"`
}

type commentResponse struct {
	ID        string    `json:"id"`
	ItemID    string    `json:"item_id"`
	ItemKind  string    `json:"item_kind"`
	AuthorID  string    `json:"author_id"`
	Author    string    `json:"author,omitempty"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

func toCommentResponse(c *domain.Comment) commentResponse {
	return commentResponse{
		ID:        c.ID,
		ItemID:    c.ItemID,
		ItemKind:  string(c.ItemKind),
		AuthorID:  c.AuthorID,
		Author:    c.Author,
		Text:      c.Text,
		CreatedAt: c.CreatedAt,
	}
}

// List handles GET /v1/comments?item_id=&type=.
//
// @Summary      List the comment thread of a record
// @Tags         comments
// @Produce      json
// @Security     BearerAuth
// @Param        item_id  query     string  true  "Record id"
// @Param        type     query     string  true  "Record kind (progress|payment)"
// @Success      200      {array}   commentResponse
// @Failure      400      {object}  errorResponse
// @Failure      403      {object}  errorResponse
// @Failure      404      {object}  errorResponse
// @Router       /v1/comments [get]
func (h *CommentHandler) List(c echo.Context) error {
	caller, err := callerIdentity(c)
	if err != nil {
		return err
	}

	itemID := c.QueryParam("item_id")
	kind := domain.RecordKind(c.QueryParam("type"))
	if itemID == "" || !kind.Valid() {
		return echo.NewHTTPError(http.StatusBadRequest, "item_id and type are required")
	}

	comments, err := h.workflow.ListComments(c.Request().Context(), caller, itemID, kind)
	if err != nil {
		return err
	}

	out := make([]commentResponse, 0, len(comments))
	for _, cm := range comments {
		out = append(out, toCommentResponse(cm))
	}
	return c.JSON(http.StatusOK, out)
}

// Create handles POST /v1/comments.
//
// @Summary      Append a comment to a visible record
// @Tags         comments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createCommentRequest  true  "Comment"
// @Success      201   {object}  commentResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /v1/comments [post]
func (h *CommentHandler) Create(c echo.Context) error {
	caller, err := callerIdentity(c)
	if err != nil {
		return err
	}

	var req createCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	comment, err := h.workflow.AddComment(c.Request().Context(), caller, req.ItemID, domain.RecordKind(req.Type), req.Text)
	if err != nil {
		return err
	}

	metrics.CommentsTotal.WithLabelValues(req.Type).Inc()
	return c.JSON(http.StatusCreated, toCommentResponse(comment))
}
