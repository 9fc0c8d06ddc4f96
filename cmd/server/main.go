// Package main は通知受信サーバーのエントリポイント。
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"sealed-mail/config"
	"sealed-mail/internal/handler"
	"sealed-mail/internal/infra"
	"sealed-mail/internal/repository"
	"sealed-mail/internal/usecase"
)

func main() {
	ctx := context.Background()

	// .envファイルを読み込む（存在しない場合は無視）
	// 既存の環境変数は上書きしない
	_ = godotenv.Load()

	cfg := config.Load()

	// トレーサー初期化（ロガー設定の前に実行）
	tp, err := infra.InitTracer(ctx, cfg, "server")
	if err != nil {
		slog.Error("failed to init tracer", "error", err)
		os.Exit(1)
	}
	if tp != nil {
		defer func() {
			if err := tp.Shutdown(ctx); err != nil {
				slog.Error("failed to shutdown tracer", "error", err)
			}
		}()
	}

	// トレース情報付きロガーを設定
	infra.SetupLogger(os.Stdout, cfg)

	// 鍵ストア初期化
	db, err := infra.NewDB(cfg.KeystoreDSN, cfg)
	if err != nil {
		slog.Error("failed to init key store", "error", err)
		os.Exit(1)
	}
	applied, err := usecase.NewMigrationService(repository.NewMigrationRepository(db), repository.Migrations, "migrations").ApplyMigrations(ctx)
	if err != nil {
		slog.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}
	if applied > 0 {
		slog.Info("applied key store migrations", "count", applied)
	}

	wrapper, closeWrapper, err := infra.NewKeyWrapper(ctx, cfg)
	if err != nil {
		slog.Error("failed to init key wrapper", "error", err, "key_wrapper", cfg.KeyWrapper)
		os.Exit(1)
	}
	defer func() {
		if closeErr := closeWrapper(); closeErr != nil {
			slog.Error("failed to close key wrapper", "error", closeErr)
		}
	}()

	// DI
	keyManager := usecase.NewServiceKeyManager(repository.NewKeyRepository(db), wrapper, cfg.KeyRingID)
	router := handler.NewRouter(
		handler.NewNotificationHandler(usecase.NewNotificationService(keyManager)),
		handler.NewKeyHandler(keyManager),
	)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
		<-sigCh

		slog.Info("shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	slog.Info("starting server", "port", cfg.Port, "key_ring_id", cfg.KeyRingID)
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
