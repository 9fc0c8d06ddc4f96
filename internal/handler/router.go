package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"sealed-mail/internal/middleware"
)

// NewRouter はルーターを生成する。
func NewRouter(nh *NotificationHandler, kh *KeyHandler) http.Handler {
	r := chi.NewRouter()

	// ミドルウェア
	r.Use(chimiddleware.RequestID)
	r.Use(middleware.RequestLogger)
	r.Use(chimiddleware.Recoverer)

	// ルート定義
	r.Get("/healthz", Health)
	r.Post("/v1/notifications", nh.ReceiveNotification)
	r.Route("/v1/keys", func(r chi.Router) {
		r.Get("/current", kh.GetCurrentPublicKey)
		r.Get("/{key_id}", kh.GetPublicKey)
	})

	return otelhttp.NewHandler(r, "sealed-mail")
}
