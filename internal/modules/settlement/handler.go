package settlement

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/marketlane/pos-backend/internal/modules/auth"
)

// Handler exposes settlement HTTP endpoints.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

func (h *Handler) RegisterRoutes(router *chi.Mux, mw *auth.Middleware) {
	router.Route("/api/v1/transactions", func(r chi.Router) {
		r.Use(mw.Authenticate)
		r.Post("/", h.settle)
		r.Get("/", h.listTransactions)
		r.Get("/{id}", h.getTransaction)
	})
}

func (h *Handler) settle(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		respond(w, http.StatusUnauthorized, map[string]string{"error": "authentication required"})
		return
	}

	var req SettleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	req.CashierID = claims.UserID

	result, err := h.service.Settle(r.Context(), req)
	if err != nil {
		respondSettleError(w, err)
		return
	}
	respond(w, http.StatusCreated, result)
}

func (h *Handler) listTransactions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	txs, err := h.service.ListTransactions(r.Context(), ListFilter{
		StartDate: q.Get("start_date"),
		EndDate:   q.Get("end_date"),
		Page:      page,
		Limit:     limit,
	})
	if err != nil {
		respond(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if txs == nil {
		txs = []*Transaction{}
	}
	respond(w, http.StatusOK, txs)
}

func (h *Handler) getTransaction(w http.ResponseWriter, r *http.Request) {
	t, err := h.service.GetTransaction(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, ErrTransactionNotFound) {
			respond(w, http.StatusNotFound, map[string]string{"error": err.Error()})
			return
		}
		respond(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, t)
}

// respondSettleError maps the engine's error taxonomy onto HTTP codes:
// validation errors are 400 (fix the input), business-rule errors are
// 404/409 (re-check the cart), persistence failures are 500 (retry later).
func respondSettleError(w http.ResponseWriter, err error) {
	var (
		notFound     *ProductNotFoundError
		insufficient *InsufficientStockError
		persistence  *PersistenceError
	)
	switch {
	case errors.Is(err, ErrEmptyCart),
		errors.Is(err, ErrInvalidQuantity),
		errors.Is(err, ErrInvalidPaymentMethod),
		errors.Is(err, ErrInvalidDiscount):
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.As(err, &notFound):
		respond(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.As(err, &insufficient):
		respond(w, http.StatusConflict, map[string]interface{}{
			"error":      err.Error(),
			"product_id": insufficient.ProductID,
			"available":  insufficient.Available,
		})
	case errors.As(err, &persistence):
		respond(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	default:
		respond(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
