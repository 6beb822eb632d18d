package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	clerk "github.com/clerk/clerk-sdk-go/v2"
	gorilllaHandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"vitaminderAPI/handlers"
	"vitaminderAPI/internal/notification"
	"vitaminderAPI/internal/workers"
	"vitaminderAPI/middleware"
	"vitaminderAPI/services"

	_ "net/http/pprof"
)

var (
	dbPool                *pgxpool.Pool
	userService           *services.UserService
	pointsService         *services.PointsService
	reminderService       *services.ReminderService
	supplementService     *services.SupplementService
	reportService         *services.ReportService
	catalogService        *services.CatalogService
	reviewService         *services.ReviewService
	recommendationService *services.RecommendationService
	fcmService            *notification.FCMService
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	clerkSecretKey := os.Getenv("CLERK_SECRET_KEY")
	if clerkSecretKey == "" {
		log.Fatal("CLERK_SECRET_KEY environment variable is not set")
	}
	clerk.SetKey(clerkSecretKey)
	log.Println("Clerk initialized successfully")

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	poolConfig, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		log.Fatal("Failed to parse database URL:", err)
	}

	poolConfig.MaxConns = 25
	poolConfig.MinConns = 5
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	dbPool, err = pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		log.Fatal("Failed to create connection pool:", err)
	}

	if err := dbPool.Ping(ctx); err != nil {
		log.Fatal("Failed to ping database:", err)
	}

	log.Println("Successfully connected to database")

	userService = services.NewUserService(dbPool)
	pointsService = services.NewPointsService(dbPool)
	reminderService = services.NewReminderService(dbPool)
	supplementService = services.NewSupplementService(dbPool, pointsService, reminderService)
	reportService = services.NewReportService(dbPool, pointsService)
	catalogService = services.NewCatalogService(dbPool)
	reviewService = services.NewReviewService(dbPool, pointsService)
	recommendationService = services.NewRecommendationService(dbPool, catalogService, os.Getenv("GEMINI_API_KEY"))

	fcmService, err = notification.NewFCMService("./serviceAccountKey.json")
	if err != nil {
		log.Printf("Warning: Could not initialize FCM: %v", err)
	} else {
		reminderService.SetPushProvider(fcmService)
		pointsService.SetPushProvider(fcmService)
		log.Println("FCM Push Provider initialized successfully")
	}

	middleware.InitPrometheus()
}

func main() {
	defer func() {
		log.Println("Closing database connection pool...")
		dbPool.Close()
	}()

	userHandler := handlers.NewUserHandler(userService)
	supplementHandler := handlers.NewSupplementHandler(supplementService)
	reportHandler := handlers.NewReportHandler(reportService)
	catalogHandler := handlers.NewCatalogHandler(catalogService)
	reviewHandler := handlers.NewReviewHandler(reviewService)
	recommendationHandler := handlers.NewRecommendationHandler(recommendationService)
	reminderHandler := handlers.NewReminderHandler(reminderService)
	webhookHandler := handlers.NewWebhookHandler(userService)

	r := mux.NewRouter()

	standardRouter := r.PathPrefix("/").Subrouter()

	go middleware.CleanupVisitors()

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()
	workers.StartReminderWorker(workerCtx, reminderService)

	standardRouter.Use(middleware.RateLimitMiddleware)
	standardRouter.Use(middleware.MonitorMiddleware)

	standardRouter.Handle("/metrics", middleware.BasicAuthMiddleware(promhttp.Handler()))
	standardRouter.PathPrefix("/debug/pprof/").Handler(middleware.PprofSecurityMiddleware(http.DefaultServeMux))

	standardRouter.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := dbPool.Ping(ctx); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status": "unhealthy", "error": "database connection failed"}`))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy", "service": "vitaminder-api"}`))
	}).Methods("GET")

	standardRouter.HandleFunc("/webhooks/clerk", webhookHandler.HandleClerkWebhook).Methods("POST")

	// -------------------------------------------------------------------------
	// API V1 SUBROUTER
	// -------------------------------------------------------------------------
	api := standardRouter.PathPrefix("/api/v1").Subrouter()

	// -------------------------------------------------------------------------
	// PROTECTED ROUTES (REQUIRE AUTH HEADER)
	// -------------------------------------------------------------------------
	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.ClerkAuthMiddleware)

	protected.HandleFunc("/user", userHandler.GetProfile).Methods("GET")
	protected.HandleFunc("/user/update-profile", userHandler.UpdateProfile).Methods("PUT")
	protected.HandleFunc("/user/delete-account", userHandler.DeleteAccount).Methods("DELETE")
	protected.HandleFunc("/user/points", userHandler.GetPoints).Methods("GET")
	protected.HandleFunc("/user/ranking", userHandler.GetRanking).Methods("GET")
	protected.HandleFunc("/user/rank", userHandler.GetRank).Methods("GET")

	protected.HandleFunc("/supplements", supplementHandler.GetSupplements).Methods("GET")
	protected.HandleFunc("/supplements", supplementHandler.CreateSupplement).Methods("POST")
	protected.HandleFunc("/supplements/today", supplementHandler.GetToday).Methods("GET")
	protected.HandleFunc("/supplements/intakes", supplementHandler.GetIntakes).Methods("GET")
	protected.HandleFunc("/supplements/{id}", supplementHandler.UpdateSupplement).Methods("PUT")
	protected.HandleFunc("/supplements/{id}", supplementHandler.DeleteSupplement).Methods("DELETE")
	protected.HandleFunc("/supplements/{id}/taken", supplementHandler.MarkTaken).Methods("POST")
	protected.HandleFunc("/supplements/{id}/adherence", supplementHandler.GetAdherence).Methods("GET")

	protected.HandleFunc("/reports/weekly", reportHandler.GenerateWeeklyReport).Methods("POST")
	protected.HandleFunc("/reports", reportHandler.GetReports).Methods("GET")

	protected.HandleFunc("/catalog", catalogHandler.GetCatalog).Methods("GET")
	protected.HandleFunc("/catalog", catalogHandler.AddCatalogSupplement).Methods("POST")
	protected.HandleFunc("/catalog/recommendations", recommendationHandler.GetRecommendations).Methods("GET")
	protected.HandleFunc("/catalog/{id}", catalogHandler.GetCatalogSupplement).Methods("GET")
	protected.HandleFunc("/catalog/{id}", catalogHandler.UpdateCatalogSupplement).Methods("PUT")
	protected.HandleFunc("/catalog/{id}", catalogHandler.RemoveCatalogSupplement).Methods("DELETE")

	protected.HandleFunc("/catalog/{id}/reviews", reviewHandler.GetReviews).Methods("GET")
	protected.HandleFunc("/catalog/{id}/reviews", reviewHandler.SubmitReview).Methods("POST")
	protected.HandleFunc("/reviews/recent", reviewHandler.GetRecentReviews).Methods("GET")
	protected.HandleFunc("/reviews/{id}", reviewHandler.DeleteReview).Methods("DELETE")

	protected.HandleFunc("/reminders", reminderHandler.GetReminders).Methods("GET")
	protected.HandleFunc("/reminders/register-device", reminderHandler.RegisterDevice).Methods("POST")
	protected.HandleFunc("/reminders/unregister-device", reminderHandler.UnregisterDevice).Methods("DELETE")

	// CORS configuration
	corsHandler := gorilllaHandlers.CORS(
		gorilllaHandlers.AllowedOrigins([]string{"*"}),
		gorilllaHandlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		gorilllaHandlers.AllowedHeaders([]string{"Content-Type", "Authorization", "X-Pprof-Secret"}),
		gorilllaHandlers.ExposedHeaders([]string{"Content-Length"}),
		gorilllaHandlers.AllowCredentials(),
	)

	port := os.Getenv("PORT")
	if port == "" {
		port = "3333"
	}
	port = ":" + port

	server := http.Server{
		Addr:         port,
		Handler:      corsHandler(r),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 35 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("Starting server on port %s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Error starting server:", err)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)

	sig := <-sigChan
	log.Println("Got signal:", sig)

	workerCancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server shutdown complete")
}
