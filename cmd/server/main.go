package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/roviproject/rovi-backend/internal/server/api"
	"github.com/roviproject/rovi-backend/internal/server/services"
	"github.com/roviproject/rovi-backend/internal/server/setup"
	"github.com/roviproject/rovi-backend/internal/server/storage"
	"github.com/roviproject/rovi-backend/pkg/version"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "rovi-server",
	Short: "ROVI Project backend - device registration and linking API",
	Long:  "Backend for the ROVI Project: user onboarding, device provisioning and controllable coordinate lookups for MQTT-driven devices",
	// Default to serve command if no subcommand provided
	Run: func(cmd *cobra.Command, args []string) {
		runServe(cmd, args)
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	Run:   runServe,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.GetVersion("rovi-server"))
	},
}

func init() {
	rootCmd.AddCommand(serveCmd, adminCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, args []string) {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	log.Printf("=== ROVI Backend ===")
	log.Printf("%s", version.GetVersion("rovi-server"))

	if err := setup.CheckEnv(); err != nil {
		log.Fatalf("Environment check failed: %v", err)
	}

	log.Println("Connecting to database...")
	db, err := storage.NewPostgresDB()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("✓ Database connected")

	log.Println("Running database migrations...")
	if err := storage.RunMigrations(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("✓ Migrations complete")

	// Initialize repositories
	userRepo := storage.NewUserRepository(db)
	registrationRepo := storage.NewRegistrationRepository(db)
	otpRepo := storage.NewOTPRepository(db)
	deviceRepo := storage.NewDeviceRepository(db)
	controllableRepo := storage.NewControllableRepository(db)

	// Initialize services
	emailService, err := services.NewEmailService()
	if err != nil {
		log.Fatalf("Failed to initialize email service: %v", err)
	}

	onboardingService := services.NewOnboardingService(userRepo, registrationRepo, otpRepo, emailService)
	deviceService := services.NewDeviceService(deviceRepo)
	controllableService := services.NewControllableService(controllableRepo, deviceRepo, userRepo)

	// Initialize handlers
	userHandler := api.NewUserHandler(onboardingService, deviceService, controllableService)
	deviceHandler := api.NewDeviceHandler(deviceService, controllableService)

	// Setup router
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)

	// Health check stays outside the API key gate.
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy","service":"rovi-backend"}`))
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(api.APIKeyMiddleware)

		r.Route("/user", func(r chi.Router) {
			r.Post("/registration", userHandler.Registration)
			r.Post("/confirm_registration", userHandler.ConfirmRegistration)
			r.Post("/setup_registration", userHandler.SetupRegistration)
			r.Post("/password_login", userHandler.PasswordLogin)
			r.Post("/otp_login", userHandler.OTPLogin)
			r.Post("/otp_login_verify", userHandler.OTPLoginVerify)

			// Session-scoped endpoints
			r.Group(func(r chi.Router) {
				r.Use(api.SessionMiddleware)
				r.Get("/get", userHandler.GetUser)
				r.Post("/create_device", userHandler.CreateDevice)
				r.Post("/create_controllable", userHandler.CreateControllable)
			})
		})

		r.Route("/device", func(r chi.Router) {
			r.Post("/initialization", deviceHandler.Initialization)
			r.Post("/get_controllable", deviceHandler.GetControllable)
		})
	})

	host := os.Getenv("API_HOST")
	if host == "" {
		host = "0.0.0.0"
	}
	port := os.Getenv("API_PORT")
	if port == "" {
		port = "8080"
	}
	addr := fmt.Sprintf("%s:%s", host, port)

	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Background purge of expired registrations and OTP codes
	go cleanupExpired(onboardingService)

	go func() {
		log.Printf("Server starting on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}

func cleanupExpired(onboardingService *services.OnboardingService) {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		ctx := context.Background()
		if err := onboardingService.CleanupExpired(ctx); err != nil {
			log.Printf("Failed to cleanup expired rows: %v", err)
		}
	}
}
