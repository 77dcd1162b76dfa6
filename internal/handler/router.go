package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/polilog/internal/metrics"
	"github.com/hitoshi/polilog/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	HealthChecker     HealthChecker
	SessionFinder     middleware.SessionFinder
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter

	// メトリクス。MetricsGathererがnilの場合は/metricsを公開しない。
	// HTTPMetricsがnilの場合はリクエストメトリクスを記録しない。
	MetricsGatherer prometheus.Gatherer
	HTTPMetrics     middleware.HTTPMetricsRecorder

	// ドメインサービス
	AuthService       AuthServiceInterface
	StatementService  StatementServiceInterface
	PoliticianService PoliticianServiceInterface
	PartyService      PartyServiceInterface
	ProfileService    ProfileServiceInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → SecurityHeaders → CORS → Logging
//
// の共通チェーンの内側に、ルートグループごとに
// 認証（必須/任意）とレート制限（一般/書き込み）を重ねる。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	// 共通ミドルウェア（全ルートに効く）
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewLoggingMiddleware(slog.Default()))
	if deps.HTTPMetrics != nil {
		r.Use(middleware.NewMetricsMiddleware(deps.HTTPMetrics))
	}

	healthHandler := NewHealthHandler(deps.HealthChecker)
	authHandler := NewAuthHandler(deps.AuthService)
	statementHandler := NewStatementHandler(deps.StatementService)
	politicianHandler := NewPoliticianHandler(deps.PoliticianService, deps.StatementService)
	partyHandler := NewPartyHandler(deps.PartyService)
	profileHandler := NewProfileHandler(deps.ProfileService)

	// --- 運用エンドポイント ---

	r.Get("/health", healthHandler.Check)

	if deps.MetricsGatherer != nil {
		r.Handle("/metrics", metrics.SetupMetricsRoute(deps.MetricsGatherer))
	}

	// --- 認証ルート ---
	// 登録・ログインは総当たり対策として書き込みレート制限を適用する。
	r.Route("/auth", func(r chi.Router) {
		r.With(deps.RateLimiter.WriteMiddleware()).Post("/signup", authHandler.SignUp)
		r.With(deps.RateLimiter.WriteMiddleware()).Post("/signin", authHandler.SignIn)
		r.Post("/signout", authHandler.SignOut)
		r.Get("/me", authHandler.Me)
	})

	// --- 公開の読み取りルート ---
	// 認証は任意。トークンがあればレート制限キーがユーザー単位になる。
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewOptionalAuthMiddleware(deps.SessionFinder))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		r.Get("/api/statements", statementHandler.List)
		r.Get("/api/statements/{id}", statementHandler.Get)

		r.Get("/api/politicians", politicianHandler.List)
		r.Get("/api/politicians/{id}", politicianHandler.Get)
		r.Get("/api/politicians/{id}/statements", politicianHandler.Timeline)

		r.Get("/api/parties", partyHandler.List)
		r.Get("/api/parties/{id}", partyHandler.Get)

		r.Get("/api/profiles/{id}", profileHandler.Public)
	})

	// --- 認証が必要なルート ---
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewAuthMiddleware(deps.SessionFinder))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		r.Get("/api/profiles/me", profileHandler.Me)

		// 書き込みは追加のレート制限を適用する
		r.Group(func(r chi.Router) {
			r.Use(deps.RateLimiter.WriteMiddleware())

			r.Post("/api/statements", statementHandler.Create)
			r.Patch("/api/statements/{id}", statementHandler.Update)
			r.Delete("/api/statements/{id}", statementHandler.Delete)

			r.Post("/api/politicians", politicianHandler.Create)
			r.Post("/api/parties", partyHandler.Create)

			r.Patch("/api/profiles/me", profileHandler.UpdateMe)
		})
	})

	return r
}
