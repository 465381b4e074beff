package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
	"github.com/rs/cors"

	"dmrelay/internal/auth"
	"dmrelay/internal/config"
	"dmrelay/internal/database"
	"dmrelay/internal/handler"
	"dmrelay/internal/store"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// .envファイルを読み込み
	envErr := godotenv.Load()

	// 環境変数を読み込み
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log := logs.GetLoggerFromString(cfg.LogLevel)
	if envErr != nil {
		log.Warn(".env file not found, using environment and defaults", "error", envErr)
	}

	// 開発環境ではシークレット未設定でも起動できるよう一時的な値を使う
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = uuid.NewString()
		log.Warn("JWT_SECRET is empty, using an ephemeral secret; tokens will not survive a restart")
	}

	// データベース接続を初期化
	db, err := database.Init(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	// ハンドラー初期化
	h := handler.New(log, store.New(db), cfg, auth.NewTokens(cfg.JWTSecret, cfg.TokenTTL))

	// プレゼンスのブロードキャスターを開始
	go h.HandleBroadcast()
	defer h.Hub.Stop()

	// CORS対応
	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		ExposedHeaders:   []string{"Content-Length"},
		MaxAge:           300,
		AllowCredentials: true,
	})

	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           c.Handler(h.SetupRouter()),
		ReadHeaderTimeout: 10 * time.Second,
	}

	fmt.Println("========================================")
	fmt.Println("  dmrelay Server")
	fmt.Println("========================================")
	fmt.Printf("  Environment: %s\n", cfg.Env)
	fmt.Printf("  Server: http://localhost:%s\n", cfg.ServerPort)
	fmt.Printf("  WebSocket: ws://localhost:%s/ws\n", cfg.ServerPort)
	if cfg.DBDriver == config.DriverSQLite {
		fmt.Printf("  Database: sqlite3 %s\n", cfg.SQLitePath)
	} else if cfg.DBName != "" {
		fmt.Printf("  Database: %s@%s:%s/%s\n", cfg.DBUser, cfg.DBHost, cfg.DBPort, cfg.DBName)
	}
	fmt.Printf("  Allowed Origins: %v\n", cfg.AllowedOrigins)
	fmt.Println("========================================")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("🚀 Server started successfully", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	// Shutdown は hijack された WebSocket を追跡しないため、
	// DB を閉じる前にハブ側で読み込みループの終了を待つ
	return errors.Join(
		server.Shutdown(shutdownCtx),
		h.Hub.Shutdown(shutdownCtx),
	)
}
