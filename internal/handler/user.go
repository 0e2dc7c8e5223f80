package handler

import (
	"net/http"

	"github.com/go-faster/jx"
)

// GetUser serves GET /user/{id}.
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "no user id provided")
		return
	}
	u, err := h.users.GetByID(r.Context(), id)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeUser(e, *u) })
}

// ListUsers serves GET /users.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Arr(func(e *jx.Encoder) {
			for _, u := range users {
				encodeUser(e, u)
			}
		})
	})
}

// PatchUser serves PATCH /user/{id} with a body of {"email"?, "password"?}.
func (h *Handler) PatchUser(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	p, err := decodeUserPatch(jx.DecodeBytes(body))
	if err != nil {
		writeError(w, http.StatusBadRequest, "malformed patch: "+err.Error())
		return
	}
	p.ID = r.PathValue("id")

	if err := h.patcher.Patch(r.Context(), p); err != nil {
		fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}
