package handler

import (
	"net/http"

	"github.com/go-faster/jx"
)

// GetProduct serves GET /product/{productId}.
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("productId")
	if id == "" {
		writeError(w, http.StatusBadRequest, "no product id provided")
		return
	}
	p, err := h.products.GetByID(r.Context(), id)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeProduct(e, *p) })
}

// GetRandomProduct serves GET /randomproduct.
func (h *Handler) GetRandomProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.products.Random(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeProduct(e, *p) })
}

// ListProducts serves GET /products with an optional categoryId filter.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List(r.Context(), r.URL.Query().Get("categoryId"))
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Arr(func(e *jx.Encoder) {
			for _, p := range products {
				encodeProduct(e, p)
			}
		})
	})
}

// ListCategories serves GET /categories.
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.products.ListCategories(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Arr(func(e *jx.Encoder) {
			for _, c := range categories {
				encodeCategory(e, c)
			}
		})
	})
}
