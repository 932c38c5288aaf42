package handler

import (
	"context"
	"net/http"

	"github.com/seniortech/backend/internal/middleware"
	"github.com/seniortech/backend/internal/model"
	"github.com/seniortech/backend/internal/portal"
)

// PortalServiceInterface はポータルハンドラーが必要とするサービスインターフェース。
type PortalServiceInterface interface {
	// Summary はプリンシパルのポータルサマリーを取得する。
	Summary(ctx context.Context, principal *model.Principal) (*portal.Summary, error)
}

// PortalHandler は認証済みクライアント向けポータルのHTTPハンドラー。
type PortalHandler struct {
	service PortalServiceInterface
}

// NewPortalHandler はPortalHandlerを生成する。
func NewPortalHandler(service PortalServiceInterface) *PortalHandler {
	return &PortalHandler{service: service}
}

// portalSummaryResponse はポータルサマリーのAPIレスポンス。
type portalSummaryResponse struct {
	Principal    principalResponse    `json:"principal"`
	Testimonials []*model.Testimonial `json:"testimonials"`
}

// Summary はポータルのトップ画面データを返す。
// GET /api/portal
// 認証済みプリンシパルのみアクセス可能（RequireAuthミドルウェアでガード）。
func (h *PortalHandler) Summary(w http.ResponseWriter, r *http.Request) {
	principal, err := middleware.PrincipalFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	summary, err := h.service.Summary(r.Context(), principal)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	testimonials := summary.Testimonials
	if testimonials == nil {
		testimonials = []*model.Testimonial{}
	}

	writeJSON(w, portalSummaryResponse{
		Principal:    toPrincipalResponse(summary.Principal),
		Testimonials: testimonials,
	})
}
