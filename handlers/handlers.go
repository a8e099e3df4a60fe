package handlers

import (
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"tawsky/config"
	"tawsky/middleware"
	"tawsky/models"
	"tawsky/services"
)

// Handlers bundles every HTTP handler with its collaborators. All
// dependencies are injected; there is no package-level state.
type Handlers struct {
	Cfg      *config.Config
	Sessions *services.SessionManager
	Auth     *services.AuthService
	Catalog  *services.CatalogService
	History  *services.HistoryService
	Content  *services.ContentService

	templates map[string]*template.Template
}

func New(
	cfg *config.Config,
	sessions *services.SessionManager,
	auth *services.AuthService,
	catalog *services.CatalogService,
	history *services.HistoryService,
	content *services.ContentService,
) (*Handlers, error) {
	h := &Handlers{
		Cfg:       cfg,
		Sessions:  sessions,
		Auth:      auth,
		Catalog:   catalog,
		History:   history,
		Content:   content,
		templates: make(map[string]*template.Template),
	}

	pages := []string{
		"index", "login", "signup", "anime", "anime_detail",
		"manga", "manga_detail", "player", "admin", "search",
	}
	for _, page := range pages {
		tmpl, err := template.New(page).Funcs(funcMap()).ParseFiles(
			"templates/layouts/base.html",
			"templates/pages/"+page+".html",
		)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", page, err)
		}
		h.templates[page] = tmpl
	}

	return h, nil
}

func funcMap() template.FuncMap {
	return template.FuncMap{
		"join": strings.Join,
		"title": func(s string) string {
			if len(s) == 0 {
				return s
			}
			return strings.ToUpper(s[:1]) + s[1:]
		},
	}
}

// Page carries the fields every rendered page shares.
type Page struct {
	Username string
	IsAdmin  bool
	Notices  []services.Notice
}

func (h *Handlers) page(w http.ResponseWriter, r *http.Request) Page {
	p := Page{Notices: h.Sessions.Flashes(w, r)}
	if user := h.sessionUser(r); user != nil {
		p.Username = user.Username
		p.IsAdmin = user.IsAdmin
	}
	return p
}

// sessionUser resolves the current user on ungated routes; gated routes
// get it from the request context instead.
func (h *Handlers) sessionUser(r *http.Request) *models.User {
	if user := middleware.UserFromContext(r.Context()); user != nil {
		return user
	}
	userID, err := h.Sessions.UserID(r)
	if err != nil {
		return nil
	}
	user, err := h.Auth.GetUserByID(userID)
	if err != nil {
		return nil
	}
	return user
}

func (h *Handlers) render(w http.ResponseWriter, page string, data any) {
	tmpl, ok := h.templates[page]
	if !ok {
		slog.Error("Unknown template requested", "page", page)
		http.Error(w, "template not found", http.StatusInternalServerError)
		return
	}
	if err := tmpl.ExecuteTemplate(w, "base", data); err != nil {
		slog.Error("Error rendering template", "page", page, "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// flashAndRedirect queues a notice and sends the browser on. Used by
// every form route; errors never escalate past the request.
func (h *Handlers) flashAndRedirect(w http.ResponseWriter, r *http.Request, category, message, target string) {
	h.Sessions.Flash(w, r, category, message)
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// userMessage maps a service error to the flash message shown to the
// user. Internal errors are logged, not shown.
func userMessage(err error) string {
	switch {
	case errors.Is(err, services.ErrValidation),
		errors.Is(err, services.ErrConflict),
		errors.Is(err, services.ErrInvalidFile):
		// Sentinel wrappers carry a user-presentable description after
		// the sentinel prefix.
		msg := err.Error()
		if i := strings.Index(msg, ": "); i >= 0 {
			msg = msg[i+2:]
		}
		if !strings.HasSuffix(msg, ".") {
			msg += "."
		}
		return capitalize(msg)
	case errors.Is(err, services.ErrBadCredentials):
		return "Invalid email or password."
	case errors.Is(err, services.ErrNotFound):
		return "The requested item was not found."
	default:
		slog.Error("Internal error", "error", err)
		return "Something went wrong. Please try again."
	}
}

func capitalize(s string) string {
	if len(s) == 0 {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
