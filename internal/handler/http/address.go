package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/BothSann/kdmv-sub002/internal/service"
	"github.com/BothSann/kdmv-sub002/pkg/httputil"
	"github.com/BothSann/kdmv-sub002/pkg/middleware"
	"github.com/BothSann/kdmv-sub002/pkg/validator"
)

// AddressHandler serves the address book endpoints.
type AddressHandler struct {
	svc *service.AddressService
}

// NewAddressHandler creates a new address handler.
func NewAddressHandler(svc *service.AddressService) *AddressHandler {
	return &AddressHandler{svc: svc}
}

// List handles GET /api/v1/addresses.
func (h *AddressHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())

	addresses, err := h.svc.List(r.Context(), userID)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}

	httputil.JSON(w, http.StatusOK, addresses)
}

// Create handles POST /api/v1/addresses.
func (h *AddressHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())

	var input service.CreateAddressInput
	if err := validator.DecodeAndValidate(r, &input); err != nil {
		httputil.Error(w, r, err)
		return
	}

	address, err := h.svc.Create(r.Context(), userID, input)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}

	httputil.JSON(w, http.StatusCreated, address)
}

// Get handles GET /api/v1/addresses/{addressID}.
func (h *AddressHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	addressID := chi.URLParam(r, "addressID")

	address, err := h.svc.Get(r.Context(), userID, addressID)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}

	httputil.JSON(w, http.StatusOK, address)
}

// Update handles PUT /api/v1/addresses/{addressID}.
func (h *AddressHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	addressID := chi.URLParam(r, "addressID")

	var input service.UpdateAddressInput
	if err := validator.DecodeAndValidate(r, &input); err != nil {
		httputil.Error(w, r, err)
		return
	}

	address, err := h.svc.Update(r.Context(), userID, addressID, input)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}

	httputil.JSON(w, http.StatusOK, address)
}

// Delete handles DELETE /api/v1/addresses/{addressID}.
func (h *AddressHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	addressID := chi.URLParam(r, "addressID")

	if err := h.svc.Delete(r.Context(), userID, addressID); err != nil {
		httputil.Error(w, r, err)
		return
	}

	httputil.NoContent(w)
}

// SetDefault handles POST /api/v1/addresses/{addressID}/default.
func (h *AddressHandler) SetDefault(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	addressID := chi.URLParam(r, "addressID")

	if err := h.svc.SetDefault(r.Context(), userID, addressID); err != nil {
		httputil.Error(w, r, err)
		return
	}

	httputil.JSON(w, http.StatusOK, map[string]string{"status": "default updated"})
}
