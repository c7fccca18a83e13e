package handlers

import (
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/bookend/catalog/internal/auth"
	"github.com/bookend/catalog/internal/content"
	"github.com/bookend/catalog/internal/database"
	"github.com/bookend/catalog/internal/web/middleware"
)

const oauthStateTTL = 10 * time.Minute

// Handlers contains all HTTP handlers
type Handlers struct {
	db            *database.DB
	templates     map[string]*template.Template
	authService   *auth.Service
	googleService *auth.GoogleService
	contentMgr    *content.Manager
	baseURL       string
	isDev         bool

	stateMu     sync.Mutex
	oauthStates map[string]time.Time
}

// New creates a new Handlers instance. baseURL overrides request-derived
// redirect URLs when set; isDev relaxes cookie security for local use.
func New(db *database.DB, templates map[string]*template.Template, authService *auth.Service, googleService *auth.GoogleService, baseURL string, isDev bool) *Handlers {
	return &Handlers{
		db:            db,
		templates:     templates,
		authService:   authService,
		googleService: googleService,
		contentMgr:    content.NewManager(db),
		baseURL:       strings.TrimSuffix(baseURL, "/"),
		isDev:         isDev,
		oauthStates:   make(map[string]time.Time),
	}
}

// PageData contains common data for all pages
type PageData struct {
	Title    string
	Viewer   *content.Viewer
	Flash    string
	FlashErr string
	Content  any
}

// render renders a template with common data
func (h *Handlers) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	pageData := PageData{
		Title:   "Catalog",
		Viewer:  middleware.GetViewer(r.Context()),
		Content: data,
	}

	// Check for flash messages in cookies
	if cookie, err := r.Cookie("flash"); err == nil {
		pageData.Flash = cookie.Value
		clear := &http.Cookie{Name: "flash", MaxAge: -1, Path: "/"}
		h.applyCookieSecurity(clear)
		http.SetCookie(w, clear)
	}
	if cookie, err := r.Cookie("flash_err"); err == nil {
		pageData.FlashErr = cookie.Value
		clear := &http.Cookie{Name: "flash_err", MaxAge: -1, Path: "/"}
		h.applyCookieSecurity(clear)
		http.SetCookie(w, clear)
	}

	tmpl, ok := h.templates[name]
	if !ok {
		log.Error().Str("template", name).Msg("Template not found")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteTemplate(w, "base", pageData); err != nil {
		log.Error().Err(err).Str("template", name).Msg("Failed to render template")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

// flash sets a flash message
func (h *Handlers) flash(w http.ResponseWriter, message string) {
	c := &http.Cookie{
		Name:     "flash",
		Value:    message,
		Path:     "/",
		MaxAge:   60,
		HttpOnly: true,
	}
	h.applyCookieSecurity(c)
	http.SetCookie(w, c)
}

// flashErr sets an error flash message
func (h *Handlers) flashErr(w http.ResponseWriter, message string) {
	c := &http.Cookie{
		Name:     "flash_err",
		Value:    message,
		Path:     "/",
		MaxAge:   60,
		HttpOnly: true,
	}
	h.applyCookieSecurity(c)
	http.SetCookie(w, c)
}

// redirect redirects to a URL
func (h *Handlers) redirect(w http.ResponseWriter, r *http.Request, url string) {
	http.Redirect(w, r, url, http.StatusSeeOther)
}

// applyCookieSecurity sets Secure/SameSite defaults based on environment.
func (h *Handlers) applyCookieSecurity(c *http.Cookie) {
	if h.isDev {
		if c.SameSite == 0 {
			c.SameSite = http.SameSiteLaxMode
		}
		return
	}
	c.Secure = true
	if c.SameSite == 0 {
		c.SameSite = http.SameSiteLaxMode
	}
}

// writeJSON sends a JSON response
func (h *Handlers) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// jsonError sends a JSON error response
func (h *Handlers) jsonError(w http.ResponseWriter, message string, status int) {
	h.writeJSON(w, status, map[string]string{"error": message})
}

// htmlError maps an access-layer error onto the page flow: not-found and
// forbidden redirect with a flash message, a missing sign-in goes to the
// login page, anything else is a generic failure. Duplicate names are
// handled at the form that caused them, not here.
func (h *Handlers) htmlError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	switch {
	case errors.Is(err, database.ErrNotFound):
		h.flashErr(w, "That record does not exist.")
		h.redirect(w, r, fallback)
	case errors.Is(err, database.ErrForbidden):
		h.flashErr(w, "Only the owner can change that.")
		h.redirect(w, r, fallback)
	case errors.Is(err, database.ErrUnauthenticated):
		h.redirect(w, r, "/login")
	default:
		log.Error().Err(err).Str("path", r.URL.Path).Msg("Request failed")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

// jsonErrorFor maps an access-layer error onto a JSON status.
func (h *Handlers) jsonErrorFor(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, database.ErrNotFound):
		h.jsonError(w, "not found", http.StatusNotFound)
	case errors.Is(err, database.ErrForbidden):
		h.jsonError(w, "forbidden", http.StatusForbidden)
	case errors.Is(err, database.ErrUnauthenticated):
		h.jsonError(w, "authentication required", http.StatusUnauthorized)
	default:
		log.Error().Err(err).Msg("Request failed")
		h.jsonError(w, "internal error", http.StatusInternalServerError)
	}
}

// getBaseURL returns the externally visible base URL for building redirects.
func (h *Handlers) getBaseURL(r *http.Request) string {
	if h.baseURL != "" {
		return h.baseURL
	}

	scheme := "http"
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}
