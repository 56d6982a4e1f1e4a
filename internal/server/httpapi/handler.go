// Package httpapi is the JSON-over-HTTP transport for user accounts and
// bearer token login.
package httpapi

import (
	"context"
	"net/http"

	"github.com/dmitrijs2005/userkeeper/internal/logging"
	"github.com/dmitrijs2005/userkeeper/internal/server/auth"
	"github.com/dmitrijs2005/userkeeper/internal/server/models"
	"github.com/dmitrijs2005/userkeeper/internal/server/services"
	"github.com/google/uuid"
)

// Authenticator is the part of auth.Gateway the transport uses.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*auth.Token, error)
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

// Users is implemented by services.UserService.
type Users interface {
	Register(ctx context.Context, in services.RegisterInput) (*models.User, error)
	Get(ctx context.Context, ident auth.Identifier) (*models.User, error)
	List(ctx context.Context, limit, offset int) ([]*models.User, error)
	Update(ctx context.Context, actor *models.User, ident auth.Identifier, patch models.UserPatch) (*models.User, error)
	Activate(ctx context.Context, actor *models.User, ident auth.Identifier) (uuid.UUID, error)
	Deactivate(ctx context.Context, actor *models.User, ident auth.Identifier) (uuid.UUID, error)
	Delete(ctx context.Context, actor *models.User, ident auth.Identifier) (uuid.UUID, error)
	AvatarUploadURL(ctx context.Context, actor *models.User, ident auth.Identifier) (key, url string, err error)
	AvatarURL(ctx context.Context, ident auth.Identifier) (string, error)
}

// Pinger reports database health; *sql.DB implements it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type handler struct {
	auth   Authenticator
	users  Users
	db     Pinger
	logger logging.Logger
}

// NewHandler builds the routed and wrapped HTTP handler.
func NewHandler(a Authenticator, users Users, db Pinger, logger logging.Logger) http.Handler {
	h := &handler{auth: a, users: users, db: db, logger: logger.With("module", "http")}

	mux := http.NewServeMux()
	h.routes(mux)

	return chain(mux, requestID, accessLog(h.logger), recoverPanics(h.logger))
}

func (h *handler) routes(mux *http.ServeMux) {
	mux.HandleFunc("POST /auth/token", h.token)

	mux.HandleFunc("POST /users", h.register)
	mux.HandleFunc("GET /users", h.list)
	mux.HandleFunc("GET /users/me", h.requireAuth(h.me))
	mux.HandleFunc("GET /users/{ref}", h.get)
	mux.HandleFunc("PATCH /users/{ref}", h.requireAuth(h.update))
	mux.HandleFunc("DELETE /users/{ref}", h.requireAuth(h.delete))
	mux.HandleFunc("POST /users/{ref}/activate", h.requireAuth(h.activate))
	mux.HandleFunc("POST /users/{ref}/deactivate", h.requireAuth(h.deactivate))
	mux.HandleFunc("POST /users/{ref}/avatar", h.requireAuth(h.avatarUpload))
	mux.HandleFunc("GET /users/{ref}/avatar", h.avatar)

	mux.HandleFunc("GET /healthz", h.health)
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	if err := h.db.PingContext(r.Context()); err != nil {
		h.logger.Warn(r.Context(), "health check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
