package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jpay/wallet/docs"
	"github.com/jpay/wallet/internal/audit"
	"github.com/jpay/wallet/internal/clock"
	"github.com/jpay/wallet/internal/config"
	"github.com/jpay/wallet/internal/credentials"
	"github.com/jpay/wallet/internal/database"
	"github.com/jpay/wallet/internal/events"
	"github.com/jpay/wallet/internal/handlers"
	"github.com/jpay/wallet/internal/journal"
	"github.com/jpay/wallet/internal/ledger"
	"github.com/jpay/wallet/internal/metrics"
	"github.com/jpay/wallet/internal/models"
	"github.com/jpay/wallet/internal/scheduler"
	"github.com/jpay/wallet/internal/services"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// @title J pay Wallet API
// @version 1.0
// @description Wallet ledger, transfers, bill payments and recurring payments
// @host localhost:8080
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg := config.Load(".env")

	// Initialize Swagger docs
	docs.SwaggerInfo.Title = "J pay Wallet API"
	docs.SwaggerInfo.Version = "1.0"
	docs.SwaggerInfo.Host = "localhost:" + cfg.Server.Port
	docs.SwaggerInfo.BasePath = "/api/v1"
	docs.SwaggerInfo.Schemes = []string{"http", "https"}

	commissionBps, err := cfg.CommissionBps()
	if err != nil {
		log.Fatalf("Invalid pricing config: %v", err)
	}
	openingBalance, err := models.ParseAmount(cfg.OpeningBalance)
	if err != nil {
		log.Fatalf("Invalid SIGNUP_OPENING_BALANCE %q: %v", cfg.OpeningBalance, err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	publisher := events.Connect(cfg.AMQPURL, cfg.AMQPExchange)
	defer publisher.Close()

	clk := clock.RealClock{}
	auditLogger := audit.NewAuditLogger(clk)

	// Redis backs one-time codes and QR payment requests; both fall back to memory
	rdb := database.OpenRedis(context.Background(), cfg.Redis)
	if rdb != nil {
		defer rdb.Close()
	}

	var codeStore credentials.CodeStore
	if cfg.OTP.Backend == "redis" && rdb != nil {
		codeStore = credentials.NewRedisCodeStore(rdb, clk)
	}
	otp := credentials.NewOTPService(codeStore, clk, cfg.OTP.Length, cfg.OTP.TTL)

	var j journal.Journal = journal.Nop{}
	if cfg.JournalEnabled {
		db, err := database.OpenPostgres(cfg.Database)
		if err != nil {
			log.Fatalf("Failed to open journal database: %v", err)
		}
		defer db.Close()

		pj := journal.NewPostgresJournal(db)
		if err := pj.EnsureSchema(context.Background()); err != nil {
			log.Fatalf("Failed to prepare journal schema: %v", err)
		}
		j = pj
	}

	// Initialize services
	store := ledger.NewStore(clk)
	catalog := services.NewCatalogService()
	authService := services.NewAuthService(store, credentials.NewHasher(cfg.HashParams()), otp, publisher, auditLogger, m, clk, services.AuthConfig{
		JWTSecret:      cfg.JWT.SecretKey,
		TokenTTL:       time.Duration(cfg.JWT.ExpiryHours) * time.Hour,
		OpeningBalance: openingBalance,
	})
	if cfg.SeedDemoUsers {
		if err := authService.SeedDemoUsers(); err != nil {
			log.Fatalf("Failed to seed demo users: %v", err)
		}
	}

	transferService := services.NewTransferService(store, j, auditLogger, m, publisher, clk)
	accountService := services.NewAccountService(store, catalog, m, cfg.VerificationTimeout)
	sched := scheduler.New(clk)
	recurringService := services.NewRecurringService(store, sched, auditLogger)
	savingsService := services.NewSavingsService(store, transferService)
	paymentService := services.NewPaymentService(catalog, accountService, authService, transferService, recurringService, m, clk, commissionBps)

	qrService := services.NewQRService(store, rdb, clk)

	sweeper := scheduler.NewDueSweeper(cfg.DueSweepSchedule, store, sched, publisher)
	if err := sweeper.Start(); err != nil {
		log.Printf("Warning: recurring reminders disabled: %v", err)
	} else {
		defer func() { <-sweeper.Stop().Done() }()
	}

	// Setup router
	router := handlers.NewRouter(handlers.RouterConfig{
		Auth:       handlers.NewAuthHandler(authService),
		Wallet:     handlers.NewWalletHandler(authService, transferService, savingsService, recurringService, accountService, catalog),
		Payments:   handlers.NewPaymentHandler(paymentService),
		QR:         handlers.NewQRHandler(qrService),
		JWTSecret:  cfg.JWT.SecretKey,
		Metrics:    promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
		LogoDir:    "./static/logos",
		Timeout:    60 * time.Second,
		SwaggerURL: "http://localhost:" + cfg.Server.Port + "/swagger/doc.json",
	})

	// Start server
	server := &http.Server{
		Addr:         cfg.ListenAddr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on %s", cfg.ListenAddr())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}
