package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/seniortech/backend/internal/middleware"
	"github.com/seniortech/backend/internal/model"
)

// TestimonialServiceInterface は体験談ハンドラーが必要とするサービスインターフェース。
type TestimonialServiceInterface interface {
	// List はデプロイメントの全体験談を新しい順で返す。
	List(ctx context.Context) ([]*model.Testimonial, error)
	// Submit は体験談を検証・サニタイズして保存する。
	Submit(ctx context.Context, principalID string, draft model.TestimonialDraft) (*model.Testimonial, error)
}

// SubmissionMetrics は体験談投稿の結果を記録するインターフェース。
type SubmissionMetrics interface {
	RecordTestimonialSubmission(outcome string)
}

// TestimonialHandler は体験談のHTTPハンドラー。
type TestimonialHandler struct {
	service TestimonialServiceInterface
	metrics SubmissionMetrics
}

// NewTestimonialHandler はTestimonialHandlerを生成する。metricsはnil可。
func NewTestimonialHandler(service TestimonialServiceInterface, metrics SubmissionMetrics) *TestimonialHandler {
	return &TestimonialHandler{
		service: service,
		metrics: metrics,
	}
}

// submitTestimonialRequest は体験談投稿リクエストのボディ。
type submitTestimonialRequest struct {
	Quote  string `json:"quote"`
	Author string `json:"author"`
	City   string `json:"city"`
}

// testimonialListResponse は体験談一覧のAPIレスポンス。
type testimonialListResponse struct {
	Testimonials []*model.Testimonial `json:"testimonials"`
}

// List は体験談一覧を返す。
// GET /api/testimonials
func (h *TestimonialHandler) List(w http.ResponseWriter, r *http.Request) {
	testimonials, err := h.service.List(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	if testimonials == nil {
		testimonials = []*model.Testimonial{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(testimonialListResponse{Testimonials: testimonials})
}

// Submit は体験談投稿を処理する。
// POST /api/testimonials
// レスポンスは作成されたレコードのみを返す。一覧への反映はSSEストリーム経由で
// 全クライアントに配信される。
func (h *TestimonialHandler) Submit(w http.ResponseWriter, r *http.Request) {
	principal, err := middleware.PrincipalFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusConflict, model.NewNotReadyError())
		return
	}

	var req submitTestimonialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, &model.APIError{
			Code:     "INVALID_REQUEST",
			Message:  "The request body could not be read.",
			Category: "validation",
			Action:   "Please try again.",
		})
		return
	}

	draft := model.TestimonialDraft{
		Quote:  req.Quote,
		Author: req.Author,
		City:   req.City,
	}

	testimonial, err := h.service.Submit(r.Context(), principal.ID, draft)
	if err != nil {
		h.recordSubmission("rejected")
		handleServiceError(w, err)
		return
	}
	h.recordSubmission("accepted")

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(testimonial)
}

func (h *TestimonialHandler) recordSubmission(outcome string) {
	if h.metrics != nil {
		h.metrics.RecordTestimonialSubmission(outcome)
	}
}

// --- ヘルパー関数 ---

// writeAPIErrorResponse は統一エラーフォーマットでエラーレスポンスを書き込む。
func writeAPIErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(apiErr)
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		statusCode := mapAPIErrorToHTTPStatus(apiErr)
		writeAPIErrorResponse(w, statusCode, apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error", slog.String("error", err.Error()))
	writeAPIErrorResponse(w, http.StatusInternalServerError, &model.APIError{
		Code:     "INTERNAL_ERROR",
		Message:  "Something went wrong on our end.",
		Category: "system",
		Action:   "Please wait a moment and try again.",
	})
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeValidation, model.ErrCodeWeakPassword:
		return http.StatusBadRequest
	case model.ErrCodeInvalidCredentials, model.ErrCodeUnauthorized, model.ErrCodeInvalidBootstrap:
		return http.StatusUnauthorized
	case model.ErrCodeNotReady, model.ErrCodeEmailInUse:
		return http.StatusConflict
	case model.ErrCodeNetworkError:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
