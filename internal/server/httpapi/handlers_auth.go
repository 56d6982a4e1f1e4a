package httpapi

import (
	"mime"
	"net/http"
)

// token accepts either an urlencoded form (OAuth2 password grant style) or
// a JSON body.
func (h *handler) token(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest

	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if ct == "application/x-www-form-urlencoded" || ct == "multipart/form-data" {
		if err := r.ParseForm(); err != nil {
			h.fail(w, r, invalidInput(err))
			return
		}
		req = tokenRequest{
			Username: r.PostFormValue("username"),
			Email:    r.PostFormValue("email"),
			Password: r.PostFormValue("password"),
		}
	} else if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	if err := req.Validate(); err != nil {
		h.fail(w, r, invalidInput(err))
		return
	}

	tok, err := h.auth.Login(r.Context(), req.login(), req.Password)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{
		AccessToken: tok.AccessToken,
		TokenType:   tok.TokenType,
		ExpiresAt:   tok.ExpiresAt,
	})
}
