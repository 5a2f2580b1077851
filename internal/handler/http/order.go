package http

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/BothSann/kdmv-sub002/internal/service"
	"github.com/BothSann/kdmv-sub002/pkg/httputil"
	"github.com/BothSann/kdmv-sub002/pkg/middleware"
	"github.com/BothSann/kdmv-sub002/pkg/validator"
)

// OrderHandler serves the order endpoints.
type OrderHandler struct {
	svc *service.OrderService
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(svc *service.OrderService) *OrderHandler {
	return &OrderHandler{svc: svc}
}

// List handles GET /api/v1/orders.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	orders, err := h.svc.List(r.Context(), userID, limit, offset)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}

	httputil.JSON(w, http.StatusOK, orders)
}

// Get handles GET /api/v1/orders/{orderID}.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	role := middleware.RoleFromContext(r.Context())
	orderID := chi.URLParam(r, "orderID")

	details, err := h.svc.GetDetails(r.Context(), orderID, userID, role)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}

	httputil.JSON(w, http.StatusOK, details)
}

// UpdateStatus handles PATCH /api/v1/admin/orders/{orderID}/status. The route
// is restricted to staff and admin roles.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderID")

	var input service.UpdateStatusInput
	if err := validator.DecodeAndValidate(r, &input); err != nil {
		httputil.Error(w, r, err)
		return
	}

	order, err := h.svc.UpdateStatus(r.Context(), orderID, input)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}

	httputil.JSON(w, http.StatusOK, order)
}
