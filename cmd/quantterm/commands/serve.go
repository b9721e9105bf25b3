package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/quantterm/backend/internal/api"
	"github.com/quantterm/backend/internal/api/handlers"
	"github.com/quantterm/backend/internal/backtest"
	"github.com/quantterm/backend/internal/external/eastmoney"
	"github.com/quantterm/backend/internal/external/yahoo"
	"github.com/quantterm/backend/internal/history"
	"github.com/quantterm/backend/internal/market"
	"github.com/quantterm/backend/internal/query"
	"github.com/quantterm/backend/internal/scan"
	"github.com/quantterm/backend/internal/scheduler"
	"github.com/quantterm/backend/pkg/config"
	"github.com/quantterm/backend/pkg/database"
	"github.com/quantterm/backend/pkg/httputil"
	"github.com/quantterm/backend/pkg/logger"
	"github.com/quantterm/backend/pkg/redis"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "APIサーバ起動",
	Long: `REST APIサーバとナイトリースキャンのスケジューラを起動します。

Endpoints:
  GET  /health          - Health check
  GET  /api/query       - 基準日解決
  GET  /api/backtest    - 月次ローテーション検証
  GET  /api/rankings    - スキャン結果ランキング
  POST /api/scan        - スキャン手動トリガー
  WS   /api/scan/ws     - スキャン進捗

Example:
  go run ./cmd/quantterm serve
  go run ./cmd/quantterm serve --port 8087`,
	RunE: runServe,
}

var (
	servePort string
	noSched   bool
)

func init() {
	rootCmd.AddCommand(serveCmd)

	// Flags
	serveCmd.Flags().StringVar(&servePort, "port", "", "APIサーバポート (default: PORT env)")
	serveCmd.Flags().BoolVar(&noSched, "no-scheduler", false, "ナイトリースキャンを無効化")
}

func runServe(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Quantterm API Server ===")

	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Override port if flag is set
	if servePort != "" {
		cfg.Port = servePort
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	log.WithFields(map[string]interface{}{
		"port": cfg.Port,
		"env":  cfg.Env,
	}).Info("Initializing API server")

	// 3. Connect to Redis (no-op client when disabled)
	redisClient, err := redis.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer redisClient.Close()

	cache := redis.NewCache(redisClient, "quantterm")

	// 4. Connect to the price archive when configured
	var repo *history.Repo
	if cfg.HasDatabase() {
		db, err := database.New(cfg)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer db.Close()

		repo = history.NewRepo(db.Pool)
		log.Info("Connected to price archive")
	} else {
		log.Info("Price archive disabled (no DATABASE_URL)")
	}

	// 5. Create upstream clients, one rate-limited HTTP client each
	emHTTP := httputil.New(log).WithRateLimit(cfg.Eastmoney.RatePerSec)
	yhHTTP := httputil.New(log).WithRateLimit(cfg.Yahoo.RatePerSec)

	providers := map[market.Market]history.Provider{
		market.CN:     eastmoney.NewClient(emHTTP, log, cfg.Eastmoney.BaseURL),
		market.Global: yahoo.NewClient(yhHTTP, log, cfg.Yahoo.BaseURL),
	}

	// 6. Create services
	hist := history.NewService(providers, cache, cfg.SeriesCacheTTL, repo, log)
	engine := backtest.NewEngine(log)
	querySvc := query.NewService(hist, log)

	// 7. Create the scanner and wire its progress into the websocket hub
	hub := api.NewHub(log)
	scanner := scan.NewScanner(hist, engine, cfg.ScanDir, log)
	scanner.OnProgress(func(p scan.Progress) {
		hub.BroadcastJSON(p)
	})

	// 8. Create handlers
	queryHandler := handlers.NewQueryHandler(querySvc, log)
	backtestHandler := handlers.NewBacktestHandler(hist, engine, log)
	rankingHandler := handlers.NewRankingHandler(cfg.ScanDir, log)
	scanHandler := handlers.NewScanHandler(scanner, cfg.UniverseDir, nil, log)

	// 9. Create router and server
	router := api.NewRouter(queryHandler, backtestHandler, rankingHandler, scanHandler, hub, log)
	server := api.New(cfg, log, router)

	// 10. Start the nightly scan scheduler
	sched := scheduler.New(log)
	if !noSched {
		job := scan.NewJob(scanner, cfg.UniverseDir, cfg.ScanSchedule, nil, log)
		if err := sched.AddJob(job); err != nil {
			return fmt.Errorf("add scan job: %w", err)
		}
		sched.Start()
		defer sched.Stop()
	}

	// 11. Start server with graceful shutdown
	go func() {
		if err := server.Start(); err != nil {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	log.Info("API server started successfully")
	fmt.Printf("\n✅ Server running on http://localhost:%s\n", cfg.Port)
	fmt.Println("\nAvailable endpoints:")
	fmt.Println("  GET  /health")
	fmt.Println("  GET  /api/query")
	fmt.Println("  GET  /api/backtest")
	fmt.Println("  GET  /api/rankings")
	fmt.Println("  POST /api/scan")
	fmt.Println("  WS   /api/scan/ws")
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
