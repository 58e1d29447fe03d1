package handlers

import (
	"database/sql"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/soccer-rsvp/app/internal/database"
	appLog "github.com/soccer-rsvp/app/internal/log"
	"github.com/soccer-rsvp/app/internal/models"
)

// Sessions are held in memory: a single-tenant team app restarts rarely
// and players just log in again by name when it does.
var (
	sessionMu    sync.Mutex
	sessionStore = make(map[string]int64) // session token -> player ID
)

const sessionCookieName = "session_token"

// LoginPage renders the login page.
func LoginPage(w http.ResponseWriter, r *http.Request) {
	RenderTemplate(w, "auth/login.html", map[string]interface{}{"Title": "Login"})
}

// Login handles the login form submission. There is no password: the
// roster resolves the submitted name case-insensitively and creates the
// player on first login.
func Login(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Only POST method is allowed", http.StatusMethodNotAllowed)
			return
		}

		if err := r.ParseForm(); err != nil {
			http.Error(w, "Error parsing form", http.StatusBadRequest)
			return
		}

		name := strings.TrimSpace(r.FormValue("name"))
		if name == "" {
			w.WriteHeader(http.StatusBadRequest)
			data := map[string]interface{}{"Title": "Login", "Error": "Please enter your name."}
			RenderTemplate(w, "auth/login.html", data)
			return
		}

		player, err := database.ResolvePlayer(db, name)
		if err != nil {
			appLog.Error("player resolution failed", err, "name", name)
			RenderErrorPage(w, r, db, http.StatusInternalServerError, "Login Failed", "Could not look up your name. Please try again.")
			return
		}

		sessionID, err := uuid.NewRandom()
		if err != nil {
			http.Error(w, "Could not create session ID", http.StatusInternalServerError)
			return
		}
		sessionToken := sessionID.String()

		sessionMu.Lock()
		sessionStore[sessionToken] = player.ID
		sessionMu.Unlock()

		http.SetCookie(w, &http.Cookie{
			Name:     sessionCookieName,
			Value:    sessionToken,
			Path:     "/",
			Expires:  time.Now().Add(30 * 24 * time.Hour),
			HttpOnly: true,
			Secure:   r.TLS != nil,
			SameSite: http.SameSiteLaxMode,
		})

		http.Redirect(w, r, "/games", http.StatusSeeOther)
	}
}

// Logout drops the session and expires the cookie.
func Logout(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(sessionCookieName)
	if err == nil {
		sessionMu.Lock()
		delete(sessionStore, cookie.Value)
		sessionMu.Unlock()

		http.SetCookie(w, &http.Cookie{
			Name:     sessionCookieName,
			Value:    "",
			Path:     "/",
			Expires:  time.Unix(0, 0),
			HttpOnly: true,
			Secure:   r.TLS != nil,
			SameSite: http.SameSiteLaxMode,
		})
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// AuthMiddleware protects routes that require a logged-in player.
func AuthMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !IsAuthenticated(r) {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	}
}

// IsAuthenticated checks whether the request carries a live session.
func IsAuthenticated(r *http.Request) bool {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return false
	}
	sessionMu.Lock()
	_, ok := sessionStore[cookie.Value]
	sessionMu.Unlock()
	return ok
}

// GetCurrentPlayer retrieves the logged-in player from the session.
func GetCurrentPlayer(r *http.Request, db *sql.DB) (*models.Player, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required to get current player")
	}
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return nil, fmt.Errorf("no session cookie: %w", err)
	}

	sessionMu.Lock()
	playerID, ok := sessionStore[cookie.Value]
	sessionMu.Unlock()
	if !ok {
		return nil, fmt.Errorf("invalid session token")
	}
	return database.GetPlayerByID(db, playerID)
}
