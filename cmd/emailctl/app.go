package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"sealed-mail/config"
	"sealed-mail/internal/infra"
	"sealed-mail/internal/repository"
	"sealed-mail/internal/usecase"
)

// app はコマンド実行に必要な依存を保持する。
type app struct {
	cfg        *config.Config
	keyManager *usecase.ServiceKeyManager
	client     *usecase.EmailClient
	closers    []func() error
}

// newApp は依存を初期化する。backend が false の場合はGraphQLとS3に接続せず、鍵操作のみ行える。
func newApp(ctx context.Context, backend bool) (*app, error) {
	cfg := config.Load()
	a := &app{cfg: cfg}

	// CLIではログを標準エラーに出力する
	infra.SetupLogger(os.Stderr, cfg)

	tp, err := infra.InitTracer(ctx, cfg, "emailctl")
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}
	if tp != nil {
		a.closers = append(a.closers, func() error { return tp.Shutdown(context.Background()) })
	}

	db, err := infra.NewDB(cfg.KeystoreDSN, cfg)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("connecting to key store: %w", err)
	}
	if _, err := usecase.NewMigrationService(repository.NewMigrationRepository(db), repository.Migrations, "migrations").ApplyMigrations(ctx); err != nil {
		a.close()
		return nil, fmt.Errorf("migrating key store: %w", err)
	}

	wrapper, closeWrapper, err := infra.NewKeyWrapper(ctx, cfg)
	if err != nil {
		a.close()
		return nil, err
	}
	a.closers = append(a.closers, closeWrapper)
	a.keyManager = usecase.NewServiceKeyManager(repository.NewKeyRepository(db), wrapper, cfg.KeyRingID)
	archiver := infra.NewKeyArchiver(archivePassphrase)

	if !backend {
		a.client = usecase.NewEmailClient(nil, nil, nil, a.keyManager, nil, archiver)
		return a, nil
	}
	if cfg.GraphQLURL == "" {
		a.close()
		return nil, fmt.Errorf("GRAPHQL_URL is required")
	}
	identity, err := infra.NewStaticIdentity(cfg.OwnerID, cfg.IdentityID)
	if err != nil {
		a.close()
		return nil, err
	}
	s3Client, err := infra.NewS3Client(cfg.AWSRegion, cfg.S3Endpoint)
	if err != nil {
		a.close()
		return nil, err
	}

	a.client = usecase.NewEmailClient(
		infra.NewGraphQLClient(cfg.GraphQLURL, cfg.APIToken, nil),
		infra.NewS3Store(s3Client, cfg.EmailBucket, cfg.AWSRegion),
		infra.NewS3Store(s3Client, cfg.TransientBucket, cfg.AWSRegion),
		a.keyManager,
		identity,
		archiver,
	)
	return a, nil
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			slog.Warn("failed to close resource", "error", err)
		}
	}
}

// run はappを生成してfnを実行する。--timeout をコンテキストに設定する。
func run(cmd *cobra.Command, fn func(ctx context.Context, a *app) error) error {
	return runWith(cmd, true, fn)
}

// runLocal は鍵ストアのみを使うコマンド用の run。
func runLocal(cmd *cobra.Command, fn func(ctx context.Context, a *app) error) error {
	return runWith(cmd, false, fn)
}

func runWith(cmd *cobra.Command, backend bool, fn func(ctx context.Context, a *app) error) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	a, err := newApp(ctx, backend)
	if err != nil {
		return err
	}
	defer a.close()
	return fn(ctx, a)
}
