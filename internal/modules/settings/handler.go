package settings

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/marketlane/pos-backend/internal/modules/auth"
)

// Handler exposes store settings HTTP endpoints.
type Handler struct{ repo Repository }

func NewHandler(repo Repository) *Handler { return &Handler{repo: repo} }

func (h *Handler) RegisterRoutes(router *chi.Mux, mw *auth.Middleware) {
	router.Route("/api/v1/settings", func(r chi.Router) {
		r.Use(mw.Authenticate)
		r.Get("/", h.getSettings)
		r.With(mw.RequireAdmin).Put("/", h.putSetting)
	})
}

func (h *Handler) getSettings(w http.ResponseWriter, r *http.Request) {
	all, err := h.repo.GetAll(r.Context())
	if err != nil {
		respond(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, all)
}

func (h *Handler) putSetting(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Key   string `json:"key"`
		Value string `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if req.Key == "" {
		respond(w, http.StatusBadRequest, map[string]string{"error": "key and value are required"})
		return
	}
	if err := h.repo.Upsert(r.Context(), req.Key, req.Value); err != nil {
		respond(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, map[string]string{"message": "setting updated"})
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
