package customer

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/marketlane/pos-backend/internal/modules/auth"
)

// Handler exposes loyalty customer HTTP endpoints.
type Handler struct{ repo Repository }

func NewHandler(repo Repository) *Handler { return &Handler{repo: repo} }

func (h *Handler) RegisterRoutes(router *chi.Mux, mw *auth.Middleware) {
	router.Route("/api/v1/customers", func(r chi.Router) {
		r.Use(mw.Authenticate)
		r.Get("/", h.listCustomers)
		r.Get("/{email}", h.getCustomer)
	})
}

func (h *Handler) listCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.repo.List(r.Context())
	if err != nil {
		respond(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if customers == nil {
		customers = []*Customer{}
	}
	respond(w, http.StatusOK, customers)
}

func (h *Handler) getCustomer(w http.ResponseWriter, r *http.Request) {
	c, err := h.repo.GetByEmail(r.Context(), chi.URLParam(r, "email"))
	if err != nil {
		code := http.StatusInternalServerError
		if errors.Is(err, ErrCustomerNotFound) {
			code = http.StatusNotFound
		}
		respond(w, code, map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, c)
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
