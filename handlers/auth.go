package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"tawsky/metrics"
	"tawsky/services"
)

type authPageData struct {
	Page
	Next string
}

// safeNext keeps post-login redirects inside the site. Anything that
// is not a local absolute path falls back to the landing page.
func safeNext(next string) string {
	if strings.HasPrefix(next, "/") && !strings.HasPrefix(next, "//") {
		return next
	}
	return "/"
}

func (h *Handlers) LoginHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		h.render(w, "login", authPageData{
			Page: h.page(w, r),
			Next: r.URL.Query().Get("next"),
		})
		return
	}

	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	email := r.FormValue("email")
	password := r.FormValue("password")
	next := r.FormValue("next")
	if next == "" {
		next = r.URL.Query().Get("next")
	}

	user, err := h.Auth.Authenticate(email, password)
	if err != nil {
		slog.Warn("Login failed", "email", email, "error", err)
		metrics.LoginAttempts.WithLabelValues("failure").Inc()
		h.flashAndRedirect(w, r, "danger", "Invalid email or password.", "/login")
		return
	}

	if err := h.Sessions.Login(w, r, user); err != nil {
		slog.Error("Failed to create session", "user_id", user.ID, "error", err)
		h.flashAndRedirect(w, r, "danger", "Failed to create session.", "/login")
		return
	}

	slog.Info("User logged in", "username", user.Username, "user_id", user.ID)
	metrics.LoginAttempts.WithLabelValues("success").Inc()
	h.flashAndRedirect(w, r, "success", "Logged in successfully!", safeNext(next))
}

func (h *Handlers) SignupHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		h.render(w, "signup", authPageData{Page: h.page(w, r)})
		return
	}

	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := r.ParseForm(); err != nil {
		h.flashAndRedirect(w, r, "danger", "Invalid form submission.", "/signup")
		return
	}

	user, err := h.Auth.Register(services.RegisterParams{
		Username:        r.FormValue("username"),
		Email:           r.FormValue("email"),
		Password:        r.FormValue("password"),
		ConfirmPassword: r.FormValue("confirm_password"),
		FavoriteGenres:  r.Form["genres"],
	})
	if err != nil {
		slog.Warn("Signup failed", "username", r.FormValue("username"), "error", err)
		h.flashAndRedirect(w, r, "danger", userMessage(err), "/signup")
		return
	}

	slog.Info("User registered", "username", user.Username, "user_id", user.ID)
	h.flashAndRedirect(w, r, "success", "Account created successfully! Please login.", "/login")
}

func (h *Handlers) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	h.Sessions.Logout(w, r)
	h.flashAndRedirect(w, r, "success", "Logged out successfully.", "/")
}
