package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/seniortech/backend/internal/middleware"
	"github.com/seniortech/backend/internal/stream"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	PrincipalResolver middleware.PrincipalResolver
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	CSRFConfig        middleware.CSRFConfig
	Logger            *slog.Logger

	// 認証
	AuthService AuthServiceInterface
	AuthConfig  AuthHandlerConfig

	// 体験談
	TestimonialService TestimonialServiceInterface
	Hub                *stream.Hub

	// ページコンテンツ
	ContentService ContentServiceInterface

	// ティップス
	TipsService TipsServiceInterface

	// ポータル
	PortalService PortalServiceInterface

	// メトリクス（nil可）
	AuthMetrics       AuthMetrics
	SubmissionMetrics SubmissionMetrics
	StreamMetrics     StreamMetrics
	StatusMetrics     middleware.HTTPStatusRecorder
	MetricsHandler    http.Handler
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	CORS → SecurityHeaders → Recovery → Logging → StatusMetrics → (Session → RateLimit)
//
// 認証ルート（/api/auth/*）はセッションミドルウェアの外に配置する。
// Cookie確立前のブートストラップを通すため、セッション解決はハンドラー内で行う。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewRecoveryMiddleware())
	if deps.Logger != nil {
		r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	}
	if deps.StatusMetrics != nil {
		r.Use(middleware.NewStatusMetricsMiddleware(deps.StatusMetrics))
	}

	authHandler := NewAuthHandler(deps.AuthService, deps.AuthConfig, deps.AuthMetrics)
	testimonialHandler := NewTestimonialHandler(deps.TestimonialService, deps.SubmissionMetrics)
	streamHandler := NewStreamHandler(deps.Hub, deps.StreamMetrics)
	contentHandler := NewContentHandler(deps.ContentService)
	tipsHandler := NewTipsHandler(deps.TipsService)
	portalHandler := NewPortalHandler(deps.PortalService)

	// --- セッション不要のルート ---

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	if deps.MetricsHandler != nil {
		r.Handle("/metrics", deps.MetricsHandler)
	}

	r.Method(http.MethodGet, "/api/csrf-token", middleware.NewCSRFTokenHandler(deps.CSRFConfig))

	// ページコンテンツ
	r.Route("/api/content", func(r chi.Router) {
		r.Get("/home", contentHandler.Home)
		r.Get("/services", contentHandler.Services)
		r.Get("/services/{slug}", contentHandler.ServiceBySlug)
		r.Get("/team", contentHandler.Team)
		r.Get("/faq", contentHandler.FAQ)
		r.Get("/contact", contentHandler.Contact)
	})

	// ティップス
	r.Get("/api/tips", tipsHandler.List)

	// 認証ルート（セッション確立・昇格・降格）
	// セッションミドルウェアの外: ブートストラップはCookieなしで到達する。
	r.Route("/api/auth", func(r chi.Router) {
		r.Use(middleware.NewCSRFMiddleware(deps.CSRFConfig))
		r.Post("/session", authHandler.Bootstrap)
		r.Post("/signup", authHandler.SignUp)
		r.Post("/signin", authHandler.SignIn)
		r.Post("/signout", authHandler.SignOut)
		r.Get("/me", authHandler.Me)
	})

	// --- セッションが必要なルート ---
	// ミドルウェアスタック: Session → RateLimit
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewSessionMiddleware(deps.PrincipalResolver))
		if deps.RateLimiter != nil {
			r.Use(deps.RateLimiter.Middleware())
		}

		// 体験談
		r.Route("/api/testimonials", func(r chi.Router) {
			r.Get("/", testimonialHandler.List)
			r.Get("/stream", streamHandler.Stream)
			r.With(middleware.NewCSRFMiddleware(deps.CSRFConfig)).Post("/", testimonialHandler.Submit)
		})

		// ポータル（認証済みのみ）
		r.Group(func(r chi.Router) {
			r.Use(middleware.NewRequireAuthMiddleware())
			r.Get("/api/portal", portalHandler.Summary)
		})
	})

	return r
}
