package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/marketlane/pos-backend/internal/modules/user"
)

// Handler exposes authentication HTTP endpoints.
type Handler struct {
	service Service
	mw      *Middleware
}

func NewHandler(service Service, mw *Middleware) *Handler {
	return &Handler{service: service, mw: mw}
}

func (h *Handler) RegisterRoutes(router *chi.Mux) {
	router.Post("/api/v1/login", h.login)
	router.Group(func(r chi.Router) {
		r.Use(h.mw.Authenticate)
		r.Post("/api/v1/refresh-token", h.refreshToken)
	})
}

type loginResponse struct {
	Token string     `json:"token"`
	User  *user.User `json:"user"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if req.Username == "" || req.Password == "" {
		respond(w, http.StatusBadRequest, map[string]string{"error": "username and password required"})
		return
	}

	token, u, err := h.service.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			respond(w, http.StatusUnauthorized, map[string]string{"error": err.Error()})
			return
		}
		respond(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, loginResponse{Token: token, User: u})
}

func (h *Handler) refreshToken(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		respond(w, http.StatusUnauthorized, map[string]string{"error": "authentication required"})
		return
	}
	token, err := h.service.Refresh(claims)
	if err != nil {
		respond(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, map[string]string{"token": token})
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
