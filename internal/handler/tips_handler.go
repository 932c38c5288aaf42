package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/seniortech/backend/internal/model"
)

// TipsServiceInterface はティップスハンドラーが必要とするサービスインターフェース。
type TipsServiceInterface interface {
	// ListRecent は公開日の新しい順に最大limit件の記事を返す。
	ListRecent(ctx context.Context, limit int) ([]*model.Tip, error)
}

// TipsHandler はシニア向けテック記事のHTTPハンドラー。
type TipsHandler struct {
	service TipsServiceInterface
}

// NewTipsHandler はTipsHandlerを生成する。
func NewTipsHandler(service TipsServiceInterface) *TipsHandler {
	return &TipsHandler{service: service}
}

// tipResponse はティップス記事のAPIレスポンス。
type tipResponse struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Link        string     `json:"link"`
	Summary     string     `json:"summary"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
}

// tipsListResponse はティップス一覧のAPIレスポンス。
type tipsListResponse struct {
	Tips []tipResponse `json:"tips"`
}

// List は最近のティップス記事一覧を返す。
// GET /api/tips?limit=20
func (h *TipsHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeAPIErrorResponse(w, http.StatusBadRequest, &model.APIError{
				Code:     "INVALID_REQUEST",
				Message:  "The limit parameter must be a positive number.",
				Category: "validation",
				Action:   "Please adjust the request and try again.",
			})
			return
		}
		limit = parsed
	}

	tips, err := h.service.ListRecent(r.Context(), limit)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := tipsListResponse{Tips: make([]tipResponse, 0, len(tips))}
	for _, tip := range tips {
		resp.Tips = append(resp.Tips, tipResponse{
			ID:          tip.ID,
			Title:       tip.Title,
			Link:        tip.Link,
			Summary:     tip.Summary,
			PublishedAt: tip.PublishedAt,
		})
	}

	writeJSON(w, resp)
}
