package main

import (
	"context"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"slugtree/internal/auth"
	"slugtree/internal/config"
	"slugtree/internal/handler"
	"slugtree/internal/middleware"
	"slugtree/internal/repository/postgres"
	"slugtree/internal/service"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	cfg := config.Load()

	// Setup structured logging
	logLevel := slog.LevelInfo
	if cfg.Debug {
		logLevel = slog.LevelDebug
	}

	var logOut io.Writer = os.Stdout
	if cfg.LogDir != "" {
		logFile, err := config.SetupLogFile(cfg.LogDir, cfg.LogMaxFiles)
		if err != nil {
			log.Fatalf("Failed to set up log file: %v", err)
		}
		defer logFile.Close()
		logOut = io.MultiWriter(os.Stdout, logFile)
	}

	logger := slog.New(slog.NewJSONHandler(logOut, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"table_prefix", cfg.TablePrefix,
	)

	// JWT verification is optional: with no JWKS URL the host application is
	// expected to gate access before requests reach this service.
	var jwtVerifier auth.JWTVerifier
	if cfg.JWKSURL != "" {
		verifier, err := auth.NewJWTVerifier(cfg.JWKSURL, logger)
		if err != nil {
			log.Fatalf("Failed to create JWT verifier: %v", err)
		}
		defer verifier.Close()
		jwtVerifier = verifier
	} else {
		logger.Warn("JWKS_URL not set, authentication disabled")
	}

	// Create pgx connection pool
	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to create connection pool: %v", err)
	}
	defer pool.Close()

	logger.Info("database connected",
		"max_conns", 25,
		"min_conns", 5,
	)

	// Load the collection registry and keep only collections whose backing
	// tables exist in this deployment.
	collections, err := config.LoadCollections(cfg.CollectionsFile)
	if err != nil {
		log.Fatalf("Failed to load collections config: %v", err)
	}
	collections, err = postgres.FilterExistingCollections(ctx, pool, cfg.TablePrefix, collections)
	if err != nil {
		log.Fatalf("Failed to filter collections: %v", err)
	}
	if len(collections) == 0 {
		logger.Warn("no configured collection has a backing table; document operations will fail")
	}
	names := make([]string, 0, len(collections))
	for _, c := range collections {
		names = append(names, c.Name)
	}
	logger.Info("collections configured", "collections", names)

	// Create repositories
	repoConfig := &postgres.RepositoryConfig{
		Pool:        pool,
		TablePrefix: cfg.TablePrefix,
		Collections: collections,
		Logger:      logger,
	}
	folderRepo := postgres.NewFolderRepository(repoConfig)
	docRepo := postgres.NewDocumentRepository(repoConfig)
	txManager := postgres.NewTransactionManager(pool)

	// Create services
	pathResolver := service.NewPathResolver(folderRepo, logger)
	slugService := service.NewSlugService(pathResolver, logger)
	cascadeService := service.NewCascadeService(pathResolver, slugService, docRepo, logger)
	mutationService := service.NewMutationService(folderRepo, docRepo, pathResolver, slugService, cascadeService, txManager, logger)
	treeService := service.NewTreeService(folderRepo, docRepo, logger)
	redirectService := service.NewRedirectService(docRepo, logger)

	// Create handlers
	treeHandler := handler.NewTreeHandler(treeService, logger)
	mutationHandler := handler.NewMutationHandler(mutationService, logger)
	redirectHandler := handler.NewRedirectHandler(redirectService, logger)

	logger.Info("services initialized")

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /health", treeHandler.HealthCheck)

	// Tree read
	mux.HandleFunc("GET /api/tree", treeHandler.GetTree)

	// Tree mutations
	mux.HandleFunc("POST /api/tree/move", mutationHandler.Move)
	mux.HandleFunc("POST /api/tree/reorder", mutationHandler.Reorder)
	mux.HandleFunc("POST /api/tree/create", mutationHandler.Create)
	mux.HandleFunc("DELETE /api/tree/item", mutationHandler.Delete)
	mux.HandleFunc("POST /api/tree/duplicate", mutationHandler.Duplicate)
	mux.HandleFunc("POST /api/tree/status", mutationHandler.SetStatus)
	mux.HandleFunc("POST /api/tree/rename", mutationHandler.Rename)
	mux.HandleFunc("POST /api/tree/regenerate", mutationHandler.Regenerate)
	mux.HandleFunc("POST /api/tree/migrate", mutationHandler.Migrate)
	mux.HandleFunc("POST /api/tree/restore-slug", mutationHandler.RestoreSlug)
	mux.HandleFunc("POST /api/tree/segment", mutationHandler.EditSegment)

	// Redirect map
	mux.HandleFunc("GET /api/tree/redirects", redirectHandler.GetRedirects)

	// Build middleware chain
	var root http.Handler = mux

	// Apply middleware in reverse order (they wrap each other)
	// Order: CORS → Recovery → Auth → Routes
	root = middleware.Auth(jwtVerifier)(root)
	root = middleware.Recovery(logger)(root)

	// CORS - Must be before auth to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
	})
	root = corsHandler.Handler(root)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      root,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("server listening", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}
}
