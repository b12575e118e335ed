package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	mW "github.com/jpay/wallet/internal/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

type RouterConfig struct {
	Auth      *AuthHandler
	Wallet    *WalletHandler
	Payments  *PaymentHandler
	QR        *QRHandler
	JWTSecret string

	// optional
	Metrics    http.Handler
	LogoDir    string
	Timeout    time.Duration
	SwaggerURL string
}

// NewRouter mounts the wallet API under /api/v1.
func NewRouter(cfg RouterConfig) http.Handler {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}

	r := chi.NewRouter()

	r.Use(mW.SecurityHeaders)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(cfg.Timeout))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
	})

	if cfg.Metrics != nil {
		r.Handle("/metrics", cfg.Metrics)
	}
	if cfg.SwaggerURL != "" {
		r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL(cfg.SwaggerURL)))
	}
	if cfg.LogoDir != "" {
		r.Handle("/static/logos/*", http.StripPrefix("/static/logos/", mW.LogoServer(cfg.LogoDir)))
	}

	r.Route("/api/v1", func(r chi.Router) {
		// Public endpoints
		r.Post("/auth/signup", cfg.Auth.SignUp)
		r.Post("/auth/verify", cfg.Auth.VerifySignup)
		r.Post("/auth/login", cfg.Auth.Login)
		r.Post("/auth/login/biometric", cfg.Auth.LoginWithBiometrics)
		r.Post("/auth/password/forgot", cfg.Auth.ForgotPassword)
		r.Post("/auth/password/reset", cfg.Auth.ResetPassword)
		r.Get("/catalog", cfg.Wallet.Catalog)

		// Protected endpoints
		r.Group(func(r chi.Router) {
			r.Use(mW.AuthMiddleware(cfg.JWTSecret))

			r.Post("/auth/password/check", cfg.Auth.CheckPassword)
			r.Get("/account", cfg.Auth.GetAccount)
			r.Put("/account/profile", cfg.Auth.UpdateProfile)
			r.Put("/account/biometrics", cfg.Auth.SetBiometrics)

			r.Get("/wallet/transactions", cfg.Wallet.Transactions)
			r.Post("/wallet/debit", cfg.Wallet.Debit)
			r.Post("/wallet/credit", cfg.Wallet.Credit)
			r.Post("/wallet/transfer", cfg.Wallet.Transfer)

			r.Post("/savings/goals", cfg.Wallet.CreateGoal)
			r.Post("/savings/goals/{goalID}/contribute", cfg.Wallet.Contribute)

			r.Get("/recurring", cfg.Wallet.ListRecurring)
			r.Delete("/recurring/{id}", cfg.Wallet.CancelRecurring)
			r.Post("/recurring/{id}/edit", cfg.Payments.StartEdit)

			r.Get("/resolve/account", cfg.Wallet.ResolveAccount)
			r.Get("/resolve/meter", cfg.Wallet.VerifyMeter)

			r.Post("/payments", cfg.Payments.Start)
			r.Get("/payments/{flowID}", cfg.Payments.Get)
			r.Post("/payments/{flowID}/submit", cfg.Payments.Submit)
			r.Post("/payments/{flowID}/back", cfg.Payments.Back)
			r.Post("/payments/{flowID}/proceed", cfg.Payments.Proceed)
			r.Post("/payments/{flowID}/confirm", cfg.Payments.Confirm)
			r.Post("/payments/{flowID}/cancel", cfg.Payments.Cancel)

			r.Post("/qr/generate", cfg.QR.GenerateQR)
			r.Post("/qr/process", cfg.QR.ProcessQR)
		})
	})

	return r
}
