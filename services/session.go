package services

import (
	"encoding/gob"
	"fmt"
	"net/http"

	"github.com/gorilla/sessions"

	"tawsky/config"
	"tawsky/models"
)

const sessionName = "tawsky-session"

func init() {
	// Flash values travel through the securecookie gob encoder.
	gob.Register(Notice{})
}

// SessionManager wraps the cookie store. Sessions map an opaque signed
// cookie to a user id; invalidation clears the cookie server-side by
// expiring it.
type SessionManager struct {
	store *sessions.CookieStore
}

func NewSessionManager(cfg *config.Config) *SessionManager {
	store := sessions.NewCookieStore([]byte(cfg.SessionSecret))

	secure := false
	if cfg.Environment == "production" {
		secure = true
	}

	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   cfg.SessionMaxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}

	return &SessionManager{store: store}
}

func (sm *SessionManager) Get(r *http.Request) (*sessions.Session, error) {
	return sm.store.Get(r, sessionName)
}

// Login binds the session to the given user.
func (sm *SessionManager) Login(w http.ResponseWriter, r *http.Request, user *models.User) error {
	session, err := sm.Get(r)
	if err != nil {
		return fmt.Errorf("failed to get session: %w", err)
	}

	session.Values["user_id"] = user.ID
	session.Values["username"] = user.Username

	if err := session.Save(r, w); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	return nil
}

// Logout removes the user binding from the session. The cookie itself
// stays alive so the logout notice can still be flashed. Calling it
// without an active session is a no-op.
func (sm *SessionManager) Logout(w http.ResponseWriter, r *http.Request) {
	session, err := sm.Get(r)
	if err != nil {
		return
	}
	delete(session.Values, "user_id")
	delete(session.Values, "username")
	session.Save(r, w)
}

// UserID returns the authenticated user id bound to the request's
// session, or ErrUnauthenticated.
func (sm *SessionManager) UserID(r *http.Request) (int64, error) {
	session, err := sm.Get(r)
	if err != nil {
		return 0, fmt.Errorf("%w: no session", ErrUnauthenticated)
	}

	switch v := session.Values["user_id"].(type) {
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	default:
		return 0, fmt.Errorf("%w: no user bound to session", ErrUnauthenticated)
	}
}

// Flash queues a one-shot notice shown on the next rendered page.
func (sm *SessionManager) Flash(w http.ResponseWriter, r *http.Request, category, message string) {
	session, err := sm.Get(r)
	if err != nil {
		return
	}
	session.AddFlash(Notice{Category: category, Message: message})
	session.Save(r, w)
}

// Flashes drains the queued notices.
func (sm *SessionManager) Flashes(w http.ResponseWriter, r *http.Request) []Notice {
	session, err := sm.Get(r)
	if err != nil {
		return nil
	}
	raw := session.Flashes()
	if len(raw) > 0 {
		session.Save(r, w)
	}
	notices := make([]Notice, 0, len(raw))
	for _, f := range raw {
		if n, ok := f.(Notice); ok {
			notices = append(notices, n)
		}
	}
	return notices
}

// Notice is a transient user-visible message. Registered with gob so
// the cookie store can serialize it.
type Notice struct {
	Category string // "success" or "danger"
	Message  string
}
