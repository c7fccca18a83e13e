package web

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/bookend/catalog/internal/auth"
	"github.com/bookend/catalog/internal/config"
	"github.com/bookend/catalog/internal/database"
	"github.com/bookend/catalog/internal/web/handlers"
	"github.com/bookend/catalog/internal/web/middleware"
)

//go:embed templates/*
var templatesFS embed.FS

//go:embed static/*
var staticFS embed.FS

// Server represents the web server
type Server struct {
	db            *database.DB
	port          int
	bind          string
	router        *chi.Mux
	templates     map[string]*template.Template
	authService   *auth.Service
	googleService *auth.GoogleService
	handlers      *handlers.Handlers
}

// NewServer creates a new web server
func NewServer(db *database.DB, cfg *config.Config, isDev bool) *Server {
	s := &Server{
		db:            db,
		port:          cfg.Server.Port,
		bind:          cfg.Server.Bind,
		router:        chi.NewRouter(),
		authService:   auth.NewService(db),
		googleService: auth.NewGoogleService(cfg.Google.ClientID, cfg.Google.ClientSecret),
	}

	s.loadTemplates()
	s.setupRoutes(cfg.Server.BaseURL, isDev)

	return s
}

// templateFuncMap returns the common template functions
func templateFuncMap() template.FuncMap {
	return template.FuncMap{
		"formatTime": func(t time.Time) string {
			return t.Format("2006-01-02 15:04")
		},
	}
}

// loadTemplates loads all HTML templates.
// Each page template is parsed together with the base template.
func (s *Server) loadTemplates() {
	s.templates = make(map[string]*template.Template)
	funcMap := templateFuncMap()

	pageTemplates := []string{
		"login.html",
		"main.html",
		"category.html",
		"category_form.html",
		"item.html",
		"item_form.html",
	}

	for _, page := range pageTemplates {
		tmpl, err := template.New("").Funcs(funcMap).ParseFS(templatesFS,
			"templates/base.html",
			"templates/"+page,
		)
		if err != nil {
			log.Fatal().Err(err).Str("template", page).Msg("Failed to parse template")
		}
		s.templates[page] = tmpl
	}
}

// setupRoutes configures all routes
func (s *Server) setupRoutes(baseURL string, isDev bool) {
	r := s.router

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(chimiddleware.Recoverer)

	// Static files
	staticContent, err := fs.Sub(staticFS, "static")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to setup static files")
	}
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticContent))))

	h := handlers.New(s.db, s.templates, s.authService, s.googleService, baseURL, isDev)
	s.handlers = h

	// HTML pages. Browsing is public; mutations require a signed-in user.
	r.Group(func(r chi.Router) {
		r.Use(chimiddleware.Timeout(60 * time.Second))
		r.Use(middleware.SessionLoader(s.authService, !isDev))

		r.Get("/", h.MainPage)
		r.Get("/login", h.LoginPage)
		r.Get("/logout", h.Logout)
		r.Get("/categories/{id}", h.CategoryPage)
		r.Get("/items/{id}", h.ItemPage)

		// Sign-in endpoints are rate limited per IP
		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimit(rate.Every(time.Second), 5))
			r.Get("/oauth/google", h.GoogleLogin)
			r.Get("/oauth/google/callback", h.GoogleCallback)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireUser)

			r.Get("/categories/new", h.CategoryNew)
			r.Post("/categories", h.CategoryCreate)
			r.Get("/categories/{id}/edit", h.CategoryEdit)
			r.Post("/categories/{id}", h.CategoryUpdate)
			r.Post("/categories/{id}/delete", h.CategoryDelete)

			r.Get("/categories/{id}/items/new", h.ItemNew)
			r.Post("/categories/{id}/items", h.ItemCreate)
			r.Get("/items/{id}/edit", h.ItemEdit)
			r.Post("/items/{id}", h.ItemUpdate)
			r.Post("/items/{id}/delete", h.ItemDelete)
		})
	})

	// JSON read endpoints (public)
	r.Route("/api", func(r chi.Router) {
		r.Use(chimiddleware.Timeout(60 * time.Second))

		r.Get("/catalog", h.APICatalog)
		r.Get("/categories", h.APICategories)
		r.Get("/categories/{id}", h.APICategory)
		r.Get("/items/recent", h.APIRecentItems)
		r.Get("/items/{id}", h.APIItem)
	})
}

// Router exposes the configured router, used by tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start starts the web server
func (s *Server) Start(ctx context.Context) error {
	var addr string
	if s.bind != "" {
		addr = fmt.Sprintf("%s:%d", s.bind, s.port)
	} else {
		addr = fmt.Sprintf(":%d", s.port)
	}

	server := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("Starting HTTP server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("Shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errChan:
		return err
	}
}
