package catalog

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/marketlane/pos-backend/internal/modules/auth"
)

// Handler exposes catalog HTTP endpoints.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

func (h *Handler) RegisterRoutes(router *chi.Mux, mw *auth.Middleware) {
	router.Route("/api/v1/products", func(r chi.Router) {
		r.Use(mw.Authenticate)
		r.Get("/", h.listProducts)
		r.Get("/{id}", h.getProduct)
		r.Get("/barcode/{barcode}", h.getByBarcode)

		r.Group(func(r chi.Router) {
			r.Use(mw.RequireAdmin)
			r.Post("/", h.createProduct)
			r.Put("/{id}", h.updateProduct)
			r.Delete("/{id}", h.deleteProduct)
		})
	})
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	products, err := h.service.ListProducts(r.Context(), ListFilter{
		Search:   q.Get("search"),
		Category: q.Get("category"),
		Page:     page,
		Limit:    limit,
	})
	if err != nil {
		respond(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if products == nil {
		products = []*Product{}
	}
	respond(w, http.StatusOK, products)
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.GetProduct(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, p)
}

func (h *Handler) getByBarcode(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.GetProductByBarcode(r.Context(), chi.URLParam(r, "barcode"))
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, p)
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var req SaveProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	p, err := h.service.CreateProduct(r.Context(), req)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusCreated, p)
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	var req SaveProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	p, err := h.service.UpdateProduct(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, p)
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteProduct(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]string{"message": "product deleted"})
}

func respondError(w http.ResponseWriter, err error) {
	var dup *DuplicateProductError
	switch {
	case errors.Is(err, ErrProductNotFound):
		respond(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.As(err, &dup):
		respond(w, http.StatusConflict, map[string]interface{}{
			"error":            dup.Error(),
			"duplicate_type":   dup.Field,
			"existing_product": dup.Existing,
		})
	default:
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
