// Package handler maps HTTP requests onto the repositories and writes JSON
// responses.
package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/storefront-api/internal/domain/order"
	"github.com/xenking/storefront-api/internal/domain/product"
	"github.com/xenking/storefront-api/internal/domain/user"
)

const maxBodyBytes = 1 << 20

// UserPatcher applies partial user updates.
type UserPatcher interface {
	Patch(ctx context.Context, p user.Patch) error
}

// Handler serves the storefront HTTP API.
type Handler struct {
	products product.Repository
	orders   order.Repository
	users    user.Repository
	patcher  UserPatcher
}

// NewHandler constructs a Handler with the required domain dependencies.
func NewHandler(
	products product.Repository,
	orders order.Repository,
	users user.Repository,
	patcher UserPatcher,
) *Handler {
	return &Handler{
		products: products,
		orders:   orders,
		users:    users,
		patcher:  patcher,
	}
}

// Register adds the API routes to mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", h.Hello)

	mux.HandleFunc("GET /product/{productId}", h.GetProduct)
	mux.HandleFunc("GET /randomproduct", h.GetRandomProduct)
	mux.HandleFunc("GET /products", h.ListProducts)
	mux.HandleFunc("GET /categories", h.ListCategories)

	mux.HandleFunc("GET /allorders", h.ListAllOrders)
	mux.HandleFunc("GET /orders", h.ListUserOrders)
	mux.HandleFunc("GET /order/{id}", h.GetOrder)
	mux.HandleFunc("POST /orders", h.CreateOrder)
	mux.HandleFunc("DELETE /order/{id}", h.DeleteOrder)

	mux.HandleFunc("GET /user/{id}", h.GetUser)
	mux.HandleFunc("GET /users", h.ListUsers)
	mux.HandleFunc("PATCH /user/{id}", h.PatchUser)
}

// Hello answers the root path.
func (h *Handler) Hello(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, "Hello, World!")
}

func writeJSON(w http.ResponseWriter, status int, encode func(e *jx.Encoder)) {
	e := jx.GetEncoder()
	defer jx.PutEncoder(e)
	encode(e)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("code", func(e *jx.Encoder) { e.Int(status) })
			e.Field("message", func(e *jx.Encoder) { e.Str(msg) })
		})
	})
}

// fail maps a repository error to a response. Not-found and presence errors
// become 4xx; everything else is logged and reported as 500.
func fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, order.ErrNotFound),
		errors.Is(err, product.ErrNotFound),
		errors.Is(err, user.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, order.ErrMissingID):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		zctx.From(r.Context()).Error("Request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, errors.Wrap(err, "read body")
	}
	return body, nil
}
