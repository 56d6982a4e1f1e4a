package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/userkeeper/internal/server/auth"
	"github.com/dmitrijs2005/userkeeper/internal/server/models"
	"github.com/google/uuid"
)

const (
	defaultLimit = 10
	maxLimit     = 100
)

func (h *handler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		h.fail(w, r, invalidInput(err))
		return
	}

	u, err := h.users.Register(r.Context(), req.input())
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toUserResponse(u))
}

func (h *handler) list(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", defaultLimit)
	if err == nil && (limit < 1 || limit > maxLimit) {
		err = fmt.Errorf("limit: must be between 1 and %d", maxLimit)
	}
	if err != nil {
		h.fail(w, r, invalidInput(err))
		return
	}

	offset, err := queryInt(r, "offset", 0)
	if err == nil && offset < 0 {
		err = errors.New("offset: must not be negative")
	}
	if err != nil {
		h.fail(w, r, invalidInput(err))
		return
	}

	us, err := h.users.List(r.Context(), limit, offset)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	out := make([]userResponse, 0, len(us))
	for _, u := range us {
		out = append(out, toUserResponse(u))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *handler) me(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFrom(r.Context())
	writeJSON(w, http.StatusOK, toUserResponse(actor))
}

func (h *handler) get(w http.ResponseWriter, r *http.Request) {
	ident, ok := h.ref(w, r)
	if !ok {
		return
	}

	u, err := h.users.Get(r.Context(), ident)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(u))
}

func (h *handler) update(w http.ResponseWriter, r *http.Request) {
	ident, ok := h.ref(w, r)
	if !ok {
		return
	}

	var req updateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		h.fail(w, r, invalidInput(err))
		return
	}

	actor, _ := actorFrom(r.Context())
	u, err := h.users.Update(r.Context(), actor, ident, req.patch())
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, updatedResponse{UpdatedUserID: u.ID, Message: "user updated"})
}

func (h *handler) activate(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, h.users.Activate, "user activated")
}

func (h *handler) deactivate(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, h.users.Deactivate, "user deactivated")
}

func (h *handler) delete(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, h.users.Delete, "user deleted")
}

type mutation func(ctx context.Context, actor *models.User, ident auth.Identifier) (uuid.UUID, error)

func (h *handler) mutate(w http.ResponseWriter, r *http.Request, fn mutation, msg string) {
	ident, ok := h.ref(w, r)
	if !ok {
		return
	}

	actor, _ := actorFrom(r.Context())
	id, err := fn(r.Context(), actor, ident)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, userIDResponse{UserID: id, Message: msg})
}

func (h *handler) avatarUpload(w http.ResponseWriter, r *http.Request) {
	ident, ok := h.ref(w, r)
	if !ok {
		return
	}

	actor, _ := actorFrom(r.Context())
	key, url, err := h.users.AvatarUploadURL(r.Context(), actor, ident)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, avatarUploadResponse{Key: key, UploadURL: url})
}

func (h *handler) avatar(w http.ResponseWriter, r *http.Request) {
	ident, ok := h.ref(w, r)
	if !ok {
		return
	}

	url, err := h.users.AvatarURL(r.Context(), ident)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, avatarResponse{URL: url})
}

// ref parses the {ref} path segment. Bad input is answered with 422 before
// any lookup runs.
func (h *handler) ref(w http.ResponseWriter, r *http.Request) (auth.Identifier, bool) {
	ident, err := auth.ParseIdentifier(r.PathValue("ref"))
	if err != nil {
		h.fail(w, r, err)
		return auth.Identifier{}, false
	}
	return ident, true
}

func queryInt(r *http.Request, name string, def int) (int, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%s: must be an integer", name)
	}
	return n, nil
}
