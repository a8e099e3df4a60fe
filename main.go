package main

import (
	"log"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"tawsky/config"
	"tawsky/database"
	"tawsky/handlers"
	"tawsky/middleware"
	"tawsky/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	config.InitLogging(cfg)

	slog.Info("Initializing Tawsky components...")

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	if err := database.RunMigrations(db); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	if err := database.SeedAdminUser(db, cfg); err != nil {
		log.Fatal("Failed to seed admin user:", err)
	}

	// Services
	sessions := services.NewSessionManager(cfg)
	genres := services.NewGenreService(db)
	auth := services.NewAuthService(db, genres)
	catalog := services.NewCatalogService(db, genres)
	history := services.NewHistoryService(db)
	uploads := services.NewUploadService(cfg.UploadDir)
	content := services.NewContentService(catalog, uploads)

	h, err := handlers.New(cfg, sessions, auth, catalog, history, content)
	if err != nil {
		log.Fatal("Failed to initialize handlers:", err)
	}

	gate := middleware.NewAuth(sessions, auth)

	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(middleware.Logging)

	// Static assets, including stored uploads
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir("static"))))

	// Public pages
	r.Get("/", h.IndexHandler)
	r.Get("/anime", h.AnimeListHandler)
	r.Get("/anime/{id}", h.AnimeDetailHandler)
	r.Get("/player/{animeID}", h.PlayerHandler)
	r.Get("/player/{animeID}/{episodeNumber}", h.PlayerHandler)
	r.Get("/manga", h.MangaListHandler)
	r.Get("/manga/{id}", h.MangaDetailHandler)
	r.Get("/search", h.SearchHandler)

	// Auth
	r.Get("/login", h.LoginHandler)
	r.Post("/login", h.LoginHandler)
	r.Get("/signup", h.SignupHandler)
	r.Post("/signup", h.SignupHandler)
	r.With(gate.RequireAuth).Get("/logout", h.LogoutHandler)

	// Admin
	r.With(gate.RequireAdmin).Get("/admin", h.AdminHandler)
	r.With(gate.RequireAdmin).Post("/admin/upload", h.AdminUploadHandler)

	// API
	r.Get("/api/suggestions", h.SuggestionsHandler)
	r.Post("/api/watch-history", h.WatchHistoryHandler)
	r.Post("/api/read-history", h.ReadHistoryHandler)

	// Prometheus metrics
	r.Handle("/metrics", promhttp.Handler())

	addr := ":" + cfg.ServerPort
	slog.Info("Tawsky is starting",
		"addr", addr,
		"environment", cfg.Environment,
		"debug", cfg.Debug)

	if err := http.ListenAndServe(addr, r); err != nil {
		log.Fatalf("FATAL: Server failed to start: %v", err)
	}
}
