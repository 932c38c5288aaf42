package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/seniortech/backend/internal/model"
)

// ContentServiceInterface はページコンテンツハンドラーが必要とするサービスインターフェース。
type ContentServiceInterface interface {
	HomeHighlights() []model.HomeHighlight
	ServiceOfferings() []model.ServiceOffering
	ServiceOfferingBySlug(slug string) *model.ServiceOffering
	TeamMembers() []model.TeamMember
	FAQ() []model.FAQItem
	Contact() model.ContactInfo
}

// ContentHandler はマーケティングページコンテンツのHTTPハンドラー。
// コンテンツはデプロイ時に固定されるため、全エンドポイントは読み取り専用。
type ContentHandler struct {
	service ContentServiceInterface
}

// NewContentHandler はContentHandlerを生成する。
func NewContentHandler(service ContentServiceInterface) *ContentHandler {
	return &ContentHandler{service: service}
}

// Home はトップページのハイライトを返す。
// GET /api/content/home
func (h *ContentHandler) Home(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]interface{}{
		"highlights": h.service.HomeHighlights(),
	})
}

// Services はサービス一覧を返す。
// GET /api/content/services
func (h *ContentHandler) Services(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]interface{}{
		"services": h.service.ServiceOfferings(),
	})
}

// ServiceBySlug はスラッグ指定のサービス詳細を返す。
// GET /api/content/services/{slug}
func (h *ContentHandler) ServiceBySlug(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	offering := h.service.ServiceOfferingBySlug(slug)
	if offering == nil {
		writeAPIErrorResponse(w, http.StatusNotFound, &model.APIError{
			Code:     "SERVICE_NOT_FOUND",
			Message:  "We could not find that service.",
			Category: "validation",
			Action:   "Please check the address and try again.",
		})
		return
	}

	writeJSON(w, offering)
}

// Team はスタッフ紹介を返す。
// GET /api/content/team
func (h *ContentHandler) Team(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]interface{}{
		"team": h.service.TeamMembers(),
	})
}

// FAQ はよくある質問を返す。
// GET /api/content/faq
func (h *ContentHandler) FAQ(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]interface{}{
		"faq": h.service.FAQ(),
	})
}

// Contact は連絡先情報を返す。
// GET /api/content/contact
func (h *ContentHandler) Contact(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.service.Contact())
}

// writeJSON はJSONレスポンスを書き込む。
func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
