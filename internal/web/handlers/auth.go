package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/bookend/catalog/internal/auth"
	"github.com/bookend/catalog/internal/web/middleware"
)

// LoginPage renders the login page
func (h *Handlers) LoginPage(w http.ResponseWriter, r *http.Request) {
	if middleware.GetViewer(r.Context()) != nil {
		h.redirect(w, r, "/")
		return
	}

	h.render(w, r, "login.html", map[string]any{
		"GoogleEnabled": h.googleService.Enabled(),
	})
}

// GoogleLogin starts the Google sign-in flow.
func (h *Handlers) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	redirectURL := h.getBaseURL(r) + "/oauth/google/callback"
	cfg, err := h.googleService.OAuthConfig(redirectURL)
	if err != nil {
		h.flashErr(w, "Google sign-in is not configured")
		h.redirect(w, r, "/login")
		return
	}

	state := h.createOAuthState()
	http.Redirect(w, r, cfg.AuthCodeURL(state), http.StatusSeeOther)
}

// GoogleCallback handles the OAuth callback from Google: it exchanges the
// code, asks Google for the subject id and display name, resolves the local
// user, and opens a session.
func (h *Handlers) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	state := r.URL.Query().Get("state")
	if state == "" || !h.consumeOAuthState(state) {
		h.flashErr(w, "Invalid or expired sign-in attempt")
		h.redirect(w, r, "/login")
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		h.flashErr(w, "Sign-in was cancelled")
		h.redirect(w, r, "/login")
		return
	}

	redirectURL := h.getBaseURL(r) + "/oauth/google/callback"
	cfg, err := h.googleService.OAuthConfig(redirectURL)
	if err != nil {
		h.flashErr(w, "Google sign-in is not configured")
		h.redirect(w, r, "/login")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 20*time.Second)
	defer cancel()

	token, err := cfg.Exchange(ctx, code)
	if err != nil {
		log.Error().Err(err).Msg("Failed to exchange oauth code")
		h.flashErr(w, "Sign-in failed")
		h.redirect(w, r, "/login")
		return
	}

	identity, err := h.googleService.FetchIdentity(ctx, cfg, token)
	if err != nil {
		log.Error().Err(err).Msg("Failed to fetch identity")
		h.flashErr(w, "Sign-in failed")
		h.redirect(w, r, "/login")
		return
	}

	session, err := h.authService.SignIn(identity.Subject, identity.DisplayName)
	if err != nil {
		log.Error().Err(err).Msg("Failed to create session")
		h.flashErr(w, "Sign-in failed")
		h.redirect(w, r, "/login")
		return
	}

	cookie := &http.Cookie{
		Name:     "session",
		Value:    session.ID,
		Path:     "/",
		MaxAge:   int(auth.SessionDuration / time.Second),
		HttpOnly: true,
	}
	h.applyCookieSecurity(cookie)
	http.SetCookie(w, cookie)

	log.Info().Int64("user_id", session.UserID).Msg("User signed in")
	h.flash(w, "Welcome, "+identity.DisplayName+".")
	h.redirect(w, r, "/")
}

// Logout ends the current session.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie("session"); err == nil {
		if err := h.authService.SignOut(cookie.Value); err != nil {
			log.Debug().Err(err).Msg("Failed to delete session during logout")
		}
	}

	cookie := &http.Cookie{
		Name:     "session",
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	}
	h.applyCookieSecurity(cookie)
	http.SetCookie(w, cookie)

	h.flash(w, "You are signed out.")
	h.redirect(w, r, "/")
}

func (h *Handlers) createOAuthState() string {
	state := uuid.NewString()
	h.stateMu.Lock()
	defer h.stateMu.Unlock()
	for s, expires := range h.oauthStates {
		if time.Now().After(expires) {
			delete(h.oauthStates, s)
		}
	}
	h.oauthStates[state] = time.Now().Add(oauthStateTTL)
	return state
}

func (h *Handlers) consumeOAuthState(state string) bool {
	h.stateMu.Lock()
	defer h.stateMu.Unlock()
	expires, ok := h.oauthStates[state]
	delete(h.oauthStates, state)
	return ok && time.Now().Before(expires)
}
