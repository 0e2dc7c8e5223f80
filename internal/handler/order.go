package handler

import (
	"net/http"

	"github.com/go-faster/jx"
)

// ListAllOrders serves GET /allorders.
func (h *Handler) ListAllOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.List(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeOrders(e, orders) })
}

// ListUserOrders serves GET /orders?id={userId}.
func (h *Handler) ListUserOrders(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("id")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "no user id provided")
		return
	}
	orders, err := h.orders.ListByUser(r.Context(), userID)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeOrders(e, orders) })
}

// GetOrder serves GET /order/{id}.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "no order id provided")
		return
	}
	o, err := h.orders.GetByID(r.Context(), id)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeOrder(e, *o) })
}

// CreateOrder serves POST /orders. The body is an order with its items
// under "products".
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	o, err := decodeOrder(jx.DecodeBytes(body))
	if err != nil {
		writeError(w, http.StatusBadRequest, "malformed order: "+err.Error())
		return
	}
	if o.ID == "" {
		writeError(w, http.StatusBadRequest, "no order id provided")
		return
	}
	if err := h.orders.Create(r.Context(), &o); err != nil {
		fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

// DeleteOrder serves DELETE /order/{id}.
func (h *Handler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "no order id provided")
		return
	}
	if err := h.orders.Delete(r.Context(), id); err != nil {
		fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
