package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/BothSann/kdmv-sub002/internal/service"
	"github.com/BothSann/kdmv-sub002/pkg/httputil"
	"github.com/BothSann/kdmv-sub002/pkg/middleware"
	"github.com/BothSann/kdmv-sub002/pkg/validator"
)

// CartHandler serves the shopping cart endpoints.
type CartHandler struct {
	svc *service.CartService
}

// NewCartHandler creates a new cart handler.
func NewCartHandler(svc *service.CartService) *CartHandler {
	return &CartHandler{svc: svc}
}

// Get handles GET /api/v1/cart.
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())

	cart, err := h.svc.Get(r.Context(), userID)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}

	httputil.JSON(w, http.StatusOK, cart)
}

// AddItem handles POST /api/v1/cart/items.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())

	var input service.AddItemInput
	if err := validator.DecodeAndValidate(r, &input); err != nil {
		httputil.Error(w, r, err)
		return
	}

	line, err := h.svc.AddItem(r.Context(), userID, input)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}

	httputil.JSON(w, http.StatusOK, line)
}

// UpdateItem handles PUT /api/v1/cart/items/{variantID}. Quantity zero removes
// the line.
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	variantID := chi.URLParam(r, "variantID")

	var input service.UpdateQuantityInput
	if err := validator.DecodeAndValidate(r, &input); err != nil {
		httputil.Error(w, r, err)
		return
	}

	line, err := h.svc.UpdateQuantity(r.Context(), userID, variantID, input)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}

	if line == nil {
		httputil.NoContent(w)
		return
	}

	httputil.JSON(w, http.StatusOK, line)
}

// RemoveItem handles DELETE /api/v1/cart/items/{variantID}.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	variantID := chi.URLParam(r, "variantID")

	if err := h.svc.RemoveItem(r.Context(), userID, variantID); err != nil {
		httputil.Error(w, r, err)
		return
	}

	httputil.NoContent(w)
}

// Clear handles DELETE /api/v1/cart.
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())

	if err := h.svc.Clear(r.Context(), userID); err != nil {
		httputil.Error(w, r, err)
		return
	}

	httputil.NoContent(w)
}
