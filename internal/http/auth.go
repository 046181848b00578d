package http

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const sessionCookie = "aptcost_session"

// authGate protects the UI behind a single shared passphrase. The configured
// value is the hex SHA-256 of the passphrase; a matching digest stored in the
// session cookie unlocks the app. With no hash configured the gate is open.
type authGate struct {
	passphraseHash string
}

func newAuthGate(passphraseHash string) *authGate {
	return &authGate{passphraseHash: strings.ToLower(strings.TrimSpace(passphraseHash))}
}

func (g *authGate) enabled() bool {
	return g.passphraseHash != ""
}

// check reports whether the given passphrase matches the configured hash.
func (g *authGate) check(passphrase string) bool {
	if !g.enabled() {
		return true
	}
	sum := sha256.Sum256([]byte(passphrase))
	digest := hex.EncodeToString(sum[:])
	return subtle.ConstantTimeCompare([]byte(digest), []byte(g.passphraseHash)) == 1
}

// authenticated reports whether the request carries a valid session cookie.
func (g *authGate) authenticated(r *http.Request) bool {
	if !g.enabled() {
		return true
	}
	cookie, err := r.Cookie(sessionCookie)
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(cookie.Value), []byte(g.passphraseHash)) == 1
}

// require redirects unauthenticated page loads to the login form. htmx
// partials get a 401 with an HX-Redirect so the whole page navigates.
func (g *authGate) require(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if g.authenticated(r) {
			next(w, r)
			return
		}
		if r.Header.Get("HX-Request") == "true" {
			w.Header().Set("HX-Redirect", "/auth")
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		http.Redirect(w, r, "/auth", http.StatusSeeOther)
	}
}

func (s *Server) handleAuthPage(w http.ResponseWriter, r *http.Request) {
	if !s.auth.enabled() || s.auth.authenticated(r) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	s.render(w, r, "auth.html", struct{ Error string }{})
}

func (s *Server) handleAuthSubmit(w http.ResponseWriter, r *http.Request) {
	if !s.auth.enabled() {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	clientIP := s.detector.ExtractClientIP(r)
	if !s.limiter.Allow(clientIP) {
		w.Header().Set("Retry-After", "60")
		http.Error(w, "Too many attempts. Please try again later.", http.StatusTooManyRequests)
		return
	}

	passphrase := r.Form.Get("passphrase")
	if !s.auth.check(passphrase) {
		authFailures.Inc()
		slog.WarnContext(r.Context(), "Auth attempt failed", "client_ip", clientIP)
		w.WriteHeader(http.StatusUnauthorized)
		if s.templates != nil {
			s.render(w, r, "auth.html", struct{ Error string }{Error: "Incorrect passphrase"})
		}
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    s.auth.passphraseHash,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(30 * 24 * time.Hour),
	})
	slog.InfoContext(r.Context(), "Auth session opened", "client_ip", clientIP)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
	http.Redirect(w, r, "/auth", http.StatusSeeOther)
}
