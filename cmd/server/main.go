package main

import (
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stemquest/internal/assets"
	"stemquest/internal/config"
	"stemquest/internal/database"
	"stemquest/internal/game"
	"stemquest/internal/handlers"
	"stemquest/internal/repository"
	"stemquest/internal/security"
	"stemquest/internal/service"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database (supports sqlite, postgres, mysql)
	db, err := database.Initialize(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	log.Printf("Database connection established (type: %s)", cfg.DatabaseType)

	// Run migrations
	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Migrations completed successfully")

	// Seed the subject/topic catalog
	if err := db.SeedCatalog(cfg.CatalogPath); err != nil {
		log.Printf("Warning: Failed to seed catalog: %v", err)
	}

	// Load the game registry
	registry, err := game.LoadRegistry(cfg.RegistryPath)
	if err != nil {
		log.Fatalf("Failed to load game registry: %v", err)
	}

	log.Println("Game registry loaded successfully")

	// Offline lesson assets
	lessons, err := assets.NewOfflineLessons(cfg.OfflineAssetsPath, cfg.OfflineAssetDir)
	if err != nil {
		log.Fatalf("Failed to load offline assets: %v", err)
	}

	// Initialize repositories
	educatorRepo := repository.NewEducatorRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	historyRepo := repository.NewHistoryRepository(db)
	catalogRepo := repository.NewCatalogRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)

	// Initialize services
	authService := service.NewAuthService(educatorRepo, cfg.SessionDuration)
	tokens := security.NewPlayTokenIssuer(cfg.PlayTokenSecret, cfg.SessionDuration)
	studentService := service.NewStudentService(studentRepo, tokens)
	assignmentService := service.NewAssignmentService(assignmentRepo, catalogRepo, studentRepo)

	progress := service.NewRepoProgressStore(studentRepo)
	timers := service.NewTimerManager(progress, cfg.TimerTickInterval, cfg.SessionIdleLimit)
	playService := service.NewPlayService(progress, studentRepo, historyRepo, catalogRepo, assignmentRepo, registry, timers)

	emailService, err := service.NewEmailService(cfg.AWSRegion, cfg.ReportFromEmail, cfg.ReportFromName, cfg.AppBaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize email service: %v", err)
	}
	reportService := service.NewReportService(emailService, educatorRepo, studentRepo, historyRepo)
	backupService := service.NewBackupService(db)
	chat := service.NewCannedResponder()

	// Initialize handlers
	limiter := security.NewRateLimiter(10, time.Minute)
	csrf := security.NewCSRFGenerator(cfg.CSRFSecret)
	google := handlers.NewGoogleOAuth(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.OAuthRedirectBaseURL, cfg.AppBaseURL)

	middleware := handlers.NewMiddleware(authService, studentService, limiter, csrf)
	authHandler := handlers.NewAuthHandler(authService, emailService, csrf, google)
	playHandler := handlers.NewPlayHandler(studentService, playService, catalogRepo, chat)
	educatorHandler := handlers.NewEducatorHandler(studentService, assignmentService, historyRepo, backupService, reportService)
	assetsHandler := handlers.NewAssetsHandler(lessons, catalogRepo)

	// Setup routes
	mux := http.NewServeMux()

	// Educator auth
	mux.HandleFunc("POST /api/auth/register", middleware.RateLimit(authHandler.Register))
	mux.HandleFunc("POST /api/auth/login", middleware.RateLimit(authHandler.Login))
	mux.HandleFunc("POST /api/auth/logout", authHandler.Logout)
	mux.HandleFunc("GET /api/auth/me", middleware.RequireEducatorAuth(authHandler.Me))
	mux.HandleFunc("GET /auth/google/start", authHandler.StartOAuth)
	mux.HandleFunc("GET /auth/google/callback", authHandler.OAuthCallback)

	// Student sign-in and play session
	mux.HandleFunc("POST /api/student/login", middleware.RateLimit(playHandler.Login))
	mux.HandleFunc("POST /api/student/logout", middleware.RequireStudentAuth(playHandler.Logout))
	mux.HandleFunc("GET /api/student/dashboard", middleware.RequireStudentAuth(playHandler.Dashboard))
	mux.HandleFunc("POST /api/student/heartbeat", middleware.RequireStudentAuth(playHandler.Heartbeat))

	// Navigation
	mux.HandleFunc("POST /api/student/nav/start-learning", middleware.RequireStudentAuth(playHandler.StartLearning))
	mux.HandleFunc("POST /api/student/nav/assignments", middleware.RequireStudentAuth(playHandler.OpenAssignments))
	mux.HandleFunc("POST /api/student/nav/subjects/{subject}", middleware.RequireStudentAuth(playHandler.ChooseSubject))
	mux.HandleFunc("POST /api/student/nav/topics/{topic}", middleware.RequireStudentAuth(playHandler.ChooseTopic))
	mux.HandleFunc("POST /api/student/nav/topics/{topic}/quiz", middleware.RequireStudentAuth(playHandler.StartQuiz))
	mux.HandleFunc("POST /api/student/nav/games/{game}", middleware.RequireStudentAuth(playHandler.ChooseGame))
	mux.HandleFunc("POST /api/student/nav/back", middleware.RequireStudentAuth(playHandler.Back))

	// Catalog, completion and performance
	mux.HandleFunc("GET /api/student/subjects", middleware.RequireStudentAuth(playHandler.Subjects))
	mux.HandleFunc("GET /api/student/subjects/{subject}/topics", middleware.RequireStudentAuth(playHandler.Topics))
	mux.HandleFunc("POST /api/student/complete", middleware.RequireStudentAuth(playHandler.CompleteGame))
	mux.HandleFunc("GET /api/student/performance", middleware.RequireStudentAuth(playHandler.OverallPerformance))
	mux.HandleFunc("POST /api/student/chat", middleware.RequireStudentAuth(playHandler.Chat))

	// Offline lesson assets
	mux.HandleFunc("GET /api/student/assets", middleware.RequireStudentAuth(assetsHandler.AssetMap))
	mux.HandleFunc("GET /api/student/assets/{topic}", middleware.RequireStudentAuth(assetsHandler.TopicLesson))
	mux.HandleFunc("GET /offline/{filename}", assetsHandler.Download)

	// Educator console
	mux.HandleFunc("GET /api/educator/students", middleware.RequireEducatorAuth(educatorHandler.Roster))
	mux.HandleFunc("POST /api/educator/students", middleware.RequireEducatorAuth(middleware.CSRFProtect(educatorHandler.EnrollStudent)))
	mux.HandleFunc("GET /api/educator/students/{id}", middleware.RequireEducatorAuth(educatorHandler.StudentProgress))
	mux.HandleFunc("PUT /api/educator/students/{id}", middleware.RequireEducatorAuth(middleware.CSRFProtect(educatorHandler.UpdateStudent)))
	mux.HandleFunc("POST /api/educator/students/{id}/reset-password", middleware.RequireEducatorAuth(middleware.CSRFProtect(educatorHandler.ResetStudentPassword)))
	mux.HandleFunc("DELETE /api/educator/students/{id}", middleware.RequireEducatorAuth(middleware.CSRFProtect(educatorHandler.DeleteStudent)))
	mux.HandleFunc("GET /api/educator/assignments", middleware.RequireEducatorAuth(educatorHandler.Assignments))
	mux.HandleFunc("POST /api/educator/assignments", middleware.RequireEducatorAuth(middleware.CSRFProtect(educatorHandler.CreateAssignment)))
	mux.HandleFunc("DELETE /api/educator/assignments/{id}", middleware.RequireEducatorAuth(middleware.CSRFProtect(educatorHandler.DeleteAssignment)))

	// Admin maintenance
	mux.HandleFunc("GET /api/admin/backup", middleware.RequireAdmin(educatorHandler.ExportBackup))
	mux.HandleFunc("POST /api/admin/backup", middleware.RequireAdmin(middleware.CSRFProtect(educatorHandler.ImportBackup)))
	mux.HandleFunc("POST /api/admin/send-reports", middleware.RequireAdmin(middleware.CSRFProtect(educatorHandler.SendReports)))

	// Wrap with logging middleware
	handler := handlers.Logging(mux)

	// Start server
	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start background session cleanup
	go cleanupExpiredSessions(authService)

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on http://localhost%s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")

	// Flush pending playtime before exit
	timers.StopAll()
}

// cleanupExpiredSessions periodically removes expired educator sessions
func cleanupExpiredSessions(authService *service.AuthService) {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		if err := authService.CleanupExpiredSessions(); err != nil {
			log.Printf("Error cleaning up expired sessions: %v", err)
		} else {
			log.Println("Expired sessions cleaned up")
		}
	}
}
