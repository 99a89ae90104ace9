package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/Vovarama1992/go-utils/httputil"
	"github.com/Vovarama1992/go-utils/logger"

	"github.com/Vovarama1992/gpt_buddy/internal/ai"
	"github.com/Vovarama1992/gpt_buddy/internal/config"
	"github.com/Vovarama1992/gpt_buddy/internal/delivery"
	"github.com/Vovarama1992/gpt_buddy/internal/dialog"
	"github.com/Vovarama1992/gpt_buddy/internal/infra"
	"github.com/Vovarama1992/gpt_buddy/internal/ledger"
	"github.com/Vovarama1992/gpt_buddy/internal/notificator"
	"github.com/Vovarama1992/gpt_buddy/internal/prompt"
	"github.com/Vovarama1992/gpt_buddy/internal/session"
	"github.com/Vovarama1992/gpt_buddy/internal/telegram"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

func main() {

	// =========================================================================
	// ENV / DB INIT
	// =========================================================================

	_ = godotenv.Load()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		log.Fatalf("db ping failed: %v", err)
	}
	defer db.Close()

	baseLogger, _ := zap.NewProduction()
	defer baseLogger.Sync()
	zl := logger.NewZapLogger(baseLogger.Sugar())

	// =========================================================================
	// CONFIG (режимы, каталог моделей, прайс)
	// =========================================================================

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.ini"
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// =========================================================================
	// INFRASTRUCTURE
	// =========================================================================

	photoStorage, err := infra.NewPhotoStorage()
	if err != nil {
		log.Fatalf("failed to init s3: %v", err)
	}

	// =========================================================================
	// REPOSITORIES
	// =========================================================================

	dialogRepo := dialog.NewRepo(db)
	ledgerRepo := ledger.NewRepo(db)

	// =========================================================================
	// ERROR NOTIFICATION
	// =========================================================================

	errInfra := notificator.NewInfra(nil)
	errService := notificator.NewService(errInfra)

	// =========================================================================
	// CLIENTS (AI)
	// =========================================================================

	openAIClient := ai.NewOpenAIClient()

	// =========================================================================
	// DOMAIN SERVICES
	// =========================================================================

	dialogStore := dialog.NewStore(dialogRepo, dialog.Defaults{
		Model:    cfg.DefaultModel,
		ChatMode: cfg.DefaultMode,
	})

	ledgerService := ledger.NewService(ledgerRepo, cfg)

	assembler := prompt.NewAssembler(
		os.Getenv("STRICT_HISTORY") == "",
		cfg.MaxHistoryTokens,
	)

	sessionController := session.NewController(
		dialogStore,
		ledgerService,
		openAIClient,
		assembler,
		cfg,
	)

	// =========================================================================
	// TELEGRAM BOT
	// =========================================================================

	botApp := telegram.NewBotApp(
		dialogStore,
		ledgerService,
		sessionController,
		openAIClient,
		photoStorage,
		cfg,
		errService,
	)

	token := os.Getenv("TELEGRAM_TOKEN")
	if token == "" {
		log.Fatal("TELEGRAM_TOKEN is not set")
	}

	if err := botApp.InitBot(token); err != nil {
		log.Fatalf("failed to init telegram bot: %v", err)
	}

	errInfra.SetBot(botApp.GetBot())

	go botApp.Run()

	// =========================================================================
	// HTTP ROUTER
	// =========================================================================

	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))

	authService := delivery.NewAuthService(
		os.Getenv("ADMIN_PASSWORD"),
		os.Getenv("AUTH_SECRET"),
	)
	handler := delivery.NewHandler(dialogStore, ledgerService, authService)

	delivery.RegisterRoutes(r, handler, authService)

	r.With(httputil.RecoverMiddleware).Get("/ping", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(200)
		w.Write([]byte("pong"))
	})

	// =========================================================================
	// START SERVER
	// =========================================================================

	addr := ":" + port
	zl.Log(logger.LogEntry{
		Level:   "info",
		Message: "listening at " + addr,
		Service: "gpt_buddy",
	})

	if err := http.ListenAndServe(addr, r); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
