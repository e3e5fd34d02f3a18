package main

import (
	"log"
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"

	"github.com/xaytheon/xaytheon-backend/internal/api/handlers"
	"github.com/xaytheon/xaytheon-backend/internal/api/middleware"
	"github.com/xaytheon/xaytheon-backend/internal/config"
	"github.com/xaytheon/xaytheon-backend/internal/database"
	"github.com/xaytheon/xaytheon-backend/internal/services"
	"github.com/xaytheon/xaytheon-backend/internal/services/cards"
	"github.com/xaytheon/xaytheon-backend/internal/services/contributions"
	"github.com/xaytheon/xaytheon-backend/internal/services/events"
	"github.com/xaytheon/xaytheon-backend/internal/services/scene"
)

func main() {
	if os.Getenv("APP_ENV") != "production" {
		if err := godotenv.Load(); err != nil {
			log.Printf("warning: Error loading .env file (this is fine in production): %v", err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	supabaseService, err := database.NewSupabaseService(cfg)
	if err != nil {
		log.Fatalf("supabase error: %v", err)
	}

	repo := database.NewContributionRepository(supabaseService)
	blobs := database.NewBlobStore(supabaseService)

	prober := cards.NewHTTPProber()
	targets := cards.DefaultTargets(cfg.CardBucket, cfg.ScreenshotBucket)
	uploader := cards.NewUploader(blobs, prober, targets)
	locator := cards.NewLocator(blobs, prober, targets)

	hub := events.NewHub()
	contributionService := contributions.NewService(
		repo, blobs, cards.NewNormalizer(), uploader, locator, hub,
		cfg.ScreenshotBucket, cfg.SiteURL,
	)

	githubService := services.NewGitHubService(cfg.GitHubUsername, cfg.GitHubToken)
	if cfg.GitHubUsername != "" {
		if _, err := githubService.StartRefreshing(cfg.RepoRefreshSpec); err != nil {
			log.Fatalf("repo refresh scheduler error: %v", err)
		}
	}

	contributionHandler := handlers.NewContributionHandler(contributionService)
	cardHandler := handlers.NewCardHandler(contributionService)
	repoHandler := handlers.NewRepoHandler(githubService)
	sceneHandler := handlers.NewSceneHandler(scene.NewController())
	eventsHandler := handlers.NewEventsHandler(hub)
	authMiddleware := middleware.NewAuthMiddleware(cfg, supabaseService.Client.Auth)

	r := mux.NewRouter()
	r.HandleFunc("/api/public", handlers.PublicHandlerFunc).Methods("GET")
	r.HandleFunc("/api/repos", repoHandler.ListReposHandler).Methods("GET")
	r.HandleFunc("/api/ws", eventsHandler.ServeWS)

	r.HandleFunc("/api/scene", sceneHandler.GetSceneHandler).Methods("GET")
	r.HandleFunc("/api/scene/shape", sceneHandler.SetShapeHandler).Methods("POST")
	r.HandleFunc("/api/scene/model", sceneHandler.LoadModelHandler).Methods("POST")
	r.HandleFunc("/api/scene/clear", sceneHandler.ClearSceneHandler).Methods("POST")

	protectedRouter := r.PathPrefix("/api/protected").Subrouter()
	protectedRouter.Use(authMiddleware.Handler)
	protectedRouter.HandleFunc("/contributions", contributionHandler.SaveContributionHandler).Methods("POST")
	protectedRouter.HandleFunc("/contributions", contributionHandler.ListContributionsHandler).Methods("GET")
	protectedRouter.HandleFunc("/contributions/{id}", contributionHandler.DeleteContributionHandler).Methods("DELETE")
	protectedRouter.HandleFunc("/contributions/{id}/card", cardHandler.GenerateCardHandler).Methods("POST")
	protectedRouter.HandleFunc("/contributions/{id}/card", cardHandler.LocateCardHandler).Methods("GET")
	protectedRouter.HandleFunc("/contributions/{id}/markdown", cardHandler.MarkdownHandler).Methods("GET")

	handler := middleware.CORSHandler(cfg.AllowedOrigins)(r)

	log.Printf("Server starting on :%s", cfg.Port)
	log.Fatal(http.ListenAndServe(":"+cfg.Port, handler))
}
