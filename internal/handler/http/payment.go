package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/BothSann/kdmv-sub002/internal/service"
	"github.com/BothSann/kdmv-sub002/pkg/httputil"
	"github.com/BothSann/kdmv-sub002/pkg/middleware"
)

// PaymentHandler serves the payment endpoints.
type PaymentHandler struct {
	svc *service.PaymentService
}

// NewPaymentHandler creates a new payment handler.
func NewPaymentHandler(svc *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{svc: svc}
}

// Get handles GET /api/v1/payments/{transactionID}. It backs the order
// confirmation page: the transaction, its order number, and the purchased
// items, visible only to the owner of the linked order.
func (h *PaymentHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	transactionID := chi.URLParam(r, "transactionID")

	view, err := h.svc.GetWithOwnership(r.Context(), transactionID, userID)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}

	httputil.JSON(w, http.StatusOK, view)
}

// Confirm handles POST /api/v1/payments/{transactionID}/confirm. Like Get,
// it is scoped to the owner of the linked order.
func (h *PaymentHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	transactionID := chi.URLParam(r, "transactionID")

	tx, err := h.svc.Confirm(r.Context(), transactionID, userID)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}

	httputil.JSON(w, http.StatusOK, tx)
}
