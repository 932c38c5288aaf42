// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/seniortech/backend/internal/middleware"
	"github.com/seniortech/backend/internal/model"
)

// bootstrapTokenHeader は事前発行セッショントークンを運ぶリクエストヘッダー。
const bootstrapTokenHeader = "X-Bootstrap-Token"

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	// Bootstrap はセッションを確立する。providedTokenが空でない場合は
	// 設定済みトークンとの照合を行う。
	Bootstrap(ctx context.Context, providedToken string) (*model.Session, error)
	// SignUp はユーザーを登録し、セッションを認証済みに昇格する。
	SignUp(ctx context.Context, sessionID, email, password string) (*model.Principal, error)
	// SignIn は資格情報を検証し、セッションを認証済みに昇格する。
	SignIn(ctx context.Context, sessionID, email, password string) (*model.Principal, error)
	// SignOut はセッションを匿名プリンシパルに戻す。
	SignOut(ctx context.Context, sessionID string) (*model.Principal, error)
	// CurrentPrincipal はセッションの現在のプリンシパルを返す。
	CurrentPrincipal(ctx context.Context, sessionID string) (*model.Principal, error)
}

// AuthMetrics は認証操作の結果を記録するインターフェース。
type AuthMetrics interface {
	RecordAuthOperation(operation, outcome string)
}

// AuthHandlerConfig は認証ハンドラーの設定。
type AuthHandlerConfig struct {
	CookieDomain  string
	CookieSecure  bool
	SessionMaxAge int // セッションCookieの有効期間（秒）
}

// AuthHandler はセッション/認証関連のHTTPハンドラー。
type AuthHandler struct {
	service AuthServiceInterface
	config  AuthHandlerConfig
	metrics AuthMetrics
}

// NewAuthHandler はAuthHandlerを生成する。metricsはnil可。
func NewAuthHandler(service AuthServiceInterface, config AuthHandlerConfig, metrics AuthMetrics) *AuthHandler {
	return &AuthHandler{
		service: service,
		config:  config,
		metrics: metrics,
	}
}

// credentialsRequest はサインイン/サインアップリクエストのボディ。
type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// principalResponse はプリンシパル情報のAPIレスポンス。
type principalResponse struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
	State string `json:"state"`
}

func toPrincipalResponse(p *model.Principal) principalResponse {
	return principalResponse{
		ID:    p.ID,
		Email: p.Email,
		State: string(p.State),
	}
}

// Bootstrap はセッションを確立する。
// POST /api/auth/session
// X-Bootstrap-Tokenヘッダーがある場合はトークン照合を行う。
func (h *AuthHandler) Bootstrap(w http.ResponseWriter, r *http.Request) {
	providedToken := r.Header.Get(bootstrapTokenHeader)

	session, err := h.service.Bootstrap(r.Context(), providedToken)
	if err != nil {
		h.recordAuth("bootstrap", "failure")
		handleServiceError(w, err)
		return
	}
	h.recordAuth("bootstrap", "success")

	h.setSessionCookie(w, session.ID)

	principal, err := h.service.CurrentPrincipal(r.Context(), session.ID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(toPrincipalResponse(principal))
}

// SignUp は新規ユーザーを登録しサインインする。
// POST /api/auth/signup
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.requireSessionCookie(w, r)
	if !ok {
		return
	}

	req, ok := decodeCredentials(w, r)
	if !ok {
		return
	}

	principal, err := h.service.SignUp(r.Context(), sessionID, req.Email, req.Password)
	if err != nil {
		h.recordAuth("signup", "failure")
		handleServiceError(w, err)
		return
	}
	h.recordAuth("signup", "success")

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(toPrincipalResponse(principal))
}

// SignIn は資格情報を検証しサインインする。
// POST /api/auth/signin
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.requireSessionCookie(w, r)
	if !ok {
		return
	}

	req, ok := decodeCredentials(w, r)
	if !ok {
		return
	}

	principal, err := h.service.SignIn(r.Context(), sessionID, req.Email, req.Password)
	if err != nil {
		h.recordAuth("signin", "failure")
		handleServiceError(w, err)
		return
	}
	h.recordAuth("signin", "success")

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toPrincipalResponse(principal))
}

// SignOut はセッションを匿名プリンシパルに戻す。
// POST /api/auth/signout
// セッション自体は破棄しない。Cookieもそのまま有効。
func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.requireSessionCookie(w, r)
	if !ok {
		return
	}

	principal, err := h.service.SignOut(r.Context(), sessionID)
	if err != nil {
		h.recordAuth("signout", "failure")
		handleServiceError(w, err)
		return
	}
	h.recordAuth("signout", "success")

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toPrincipalResponse(principal))
}

// Me は現在のプリンシパル情報を返す。
// GET /api/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.requireSessionCookie(w, r)
	if !ok {
		return
	}

	principal, err := h.service.CurrentPrincipal(r.Context(), sessionID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toPrincipalResponse(principal))
}

// requireSessionCookie はセッションCookieを取得する。
// 見つからない場合はUNAUTHORIZEDを書き込み、falseを返す。
func (h *AuthHandler) requireSessionCookie(w http.ResponseWriter, r *http.Request) (string, bool) {
	cookie, err := r.Cookie(middleware.SessionCookieName)
	if err != nil || cookie.Value == "" {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return "", false
	}
	return cookie.Value, true
}

// setSessionCookie はセッションIDをHTTP Only Cookieとして設定する。
func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, sessionID string) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    sessionID,
		Path:     "/",
		Domain:   h.config.CookieDomain,
		MaxAge:   h.config.SessionMaxAge,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) recordAuth(operation, outcome string) {
	if h.metrics != nil {
		h.metrics.RecordAuthOperation(operation, outcome)
	}
}

// decodeCredentials はリクエストボディから資格情報を読み取る。
// 失敗時はエラーレスポンスを書き込みfalseを返す。
func decodeCredentials(w http.ResponseWriter, r *http.Request) (credentialsRequest, bool) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("failed to decode credentials request", slog.String("error", err.Error()))
		writeAPIErrorResponse(w, http.StatusBadRequest, &model.APIError{
			Code:     "INVALID_REQUEST",
			Message:  "The request body could not be read.",
			Category: "validation",
			Action:   "Please try again.",
		})
		return credentialsRequest{}, false
	}
	return req, true
}
