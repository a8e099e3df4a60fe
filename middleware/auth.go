package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"

	"tawsky/models"
	"tawsky/services"
)

type contextKey string

const userContextKey contextKey = "tawsky.user"

// UserSource resolves a session user id to a user record. Satisfied by
// *services.AuthService.
type UserSource interface {
	GetUserByID(userID int64) (*models.User, error)
}

// Auth gates routes on the request's session. Both gates redirect to
// /login with the originally requested path preserved in the next
// parameter, so login can resume the interrupted navigation.
type Auth struct {
	Sessions *services.SessionManager
	Users    UserSource
}

func NewAuth(sessions *services.SessionManager, users UserSource) *Auth {
	return &Auth{Sessions: sessions, Users: users}
}

func redirectToLogin(w http.ResponseWriter, r *http.Request, reason string) {
	slog.Debug("Redirecting to login", "reason", reason, "path", r.URL.Path)
	next := r.URL.Path
	if r.URL.RawQuery != "" {
		next += "?" + r.URL.RawQuery
	}
	http.Redirect(w, r, "/login?next="+url.QueryEscape(next), http.StatusSeeOther)
}

// currentUser resolves the session to a user record, or nil when the
// request is unauthenticated.
func (a *Auth) currentUser(r *http.Request) *models.User {
	userID, err := a.Sessions.UserID(r)
	if err != nil {
		return nil
	}
	user, err := a.Users.GetUserByID(userID)
	if err != nil {
		slog.Warn("Session user not found", "user_id", userID, "error", err)
		return nil
	}
	return user
}

// RequireAuth admits only authenticated users and injects the user
// record into the request context.
func (a *Auth) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := a.currentUser(r)
		if user == nil {
			redirectToLogin(w, r, "not authenticated")
			return
		}
		next.ServeHTTP(w, r.WithContext(withUser(r.Context(), user)))
	})
}

// RequireAdmin admits only authenticated admins. Non-admin users are
// sent to login the same way unauthenticated ones are, with the
// destination preserved.
func (a *Auth) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := a.currentUser(r)
		if user == nil {
			redirectToLogin(w, r, "not authenticated")
			return
		}
		if !user.IsAdmin {
			redirectToLogin(w, r, "not an admin")
			return
		}
		next.ServeHTTP(w, r.WithContext(withUser(r.Context(), user)))
	})
}

func withUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// UserFromContext returns the user injected by RequireAuth or
// RequireAdmin, or nil on ungated routes.
func UserFromContext(ctx context.Context) *models.User {
	user, _ := ctx.Value(userContextKey).(*models.User)
	return user
}
