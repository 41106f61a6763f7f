package main

import (
	"context"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	"github.com/repotrack/backend/internal/auth"
	"github.com/repotrack/backend/internal/config"
	"github.com/repotrack/backend/internal/database"
	"github.com/repotrack/backend/internal/handlers"
	"github.com/repotrack/backend/internal/middleware"
	"github.com/repotrack/backend/internal/routes"
	"github.com/repotrack/backend/internal/services"
	"github.com/repotrack/backend/internal/store"
)

func main() {
	// Load env
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	cfg := config.Load()

	// Connect to PostgreSQL
	log.Printf("Connecting to PostgreSQL...")
	if err := database.ConnectPostgres(cfg.PostgresURI); err != nil {
		log.Fatal("Failed to connect to PostgreSQL:", err)
	}
	defer database.DisconnectPostgres()

	// Connect to Redis
	log.Printf("Connecting to Redis...")
	if err := database.ConnectRedis(cfg.RedisURI); err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}
	defer database.DisconnectRedis()

	// Connect to MongoDB
	log.Printf("Connecting to MongoDB...")
	if err := database.Connect(cfg.MongoURI); err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer database.Disconnect()

	// Stores
	users := store.NewUserStore(database.PostgresDB)
	vehicles := store.NewVehicleStore(database.PostgresDB)
	otps := store.NewOTPStore(database.PostgresDB)
	backOffice := store.NewBackOfficeStore(database.PostgresDB)
	money := store.NewMoneyStore(database.PostgresDB)
	appVersions := store.NewAppVersionStore(database.PostgresDB)
	excel := store.NewExcelStore(database.DB)
	notifications := store.NewNotificationStore(database.DB)

	// Services
	jwtService := auth.NewJWTService(cfg.JWTSecret)
	sessions := auth.NewSessionStore(database.RedisClient)
	otpService := services.NewOTPService(otps)
	statsService := services.NewStatsService(users, vehicles)
	notifier := services.NewNotifier(notifications)

	var cloudinaryService *services.CloudinaryService
	if cfg.CloudinaryName != "" && cfg.CloudinaryAPIKey != "" && cfg.CloudinaryAPISecret != "" {
		svc, err := services.NewCloudinaryService(cfg.CloudinaryName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
		if err != nil {
			log.Printf("Warning: Failed to initialize Cloudinary: %v", err)
			log.Println("File uploads will not be available")
		} else {
			cloudinaryService = svc
			log.Println("✅ Cloudinary service initialized")
		}
	} else {
		log.Println("Warning: Cloudinary credentials not found. File uploads will not be available")
	}

	// Start the Redis notification fan-out
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	services.StartRedisNotifySubscriber(ctx)

	// Setup router
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Production: SecurityHeaders → GlobalRateLimit → LoginRateLimit
	// Non-production: Redis-based rate limit only
	if cfg.IsProduction() {
		for _, mw := range middleware.ProductionSecurity() {
			r.Use(mw)
		}
		log.Println("✅ Production security enabled (security headers, per-IP + login rate limiting)")
	} else {
		r.Use(middleware.RateLimitMiddleware)
	}

	// Health check (no auth)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	authenticator := middleware.NewAuthenticator(jwtService, sessions)
	routes.SetupRoutes(r, routes.Handlers{
		Auth:          authenticator,
		AuthH:         handlers.NewAuthHandler(users, otpService, jwtService, sessions),
		OTP:           handlers.NewOTPHandler(otpService, users),
		Users:         handlers.NewUserHandler(users, statsService, notifier),
		Vehicles:      handlers.NewVehicleHandler(vehicles, users, statsService, notifier),
		Excel:         handlers.NewExcelHandler(excel, cloudinaryService, notifier),
		BackOffice:    handlers.NewBackOfficeHandler(backOffice),
		Money:         handlers.NewMoneyHandler(money),
		AppVersions:   handlers.NewAppVersionHandler(appVersions, cloudinaryService),
		Notifications: handlers.NewNotificationHandler(notifications, jwtService, sessions),
	})

	log.Printf("🚀 Repotrack backend running on :%s", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
