package handler

import (
	"net/http"
	"strconv"

	"storefront/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// InventoryHandler handles stock ledger HTTP requests.
type InventoryHandler struct {
	service   service.InventoryService
	threshold int
	logger    zerolog.Logger
}

// NewInventoryHandler creates a new inventory handler. threshold is the
// default for low-stock queries that do not pass one explicitly.
func NewInventoryHandler(service service.InventoryService, threshold int, logger zerolog.Logger) *InventoryHandler {
	return &InventoryHandler{
		service:   service,
		threshold: threshold,
		logger:    logger.With().Str("handler", "inventory").Logger(),
	}
}

// GetStock handles GET /api/inventory/{productId} requests.
func (h *InventoryHandler) GetStock(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productId")
	if productID == "" {
		writeError(w, http.StatusBadRequest, "product ID is required", h.logger)
		return
	}

	qty, err := h.service.CurrentStock(r.Context(), productID)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"productId": productID,
		"quantity":  qty,
	})
}

// Validate handles GET /api/inventory/{productId}/validate?quantity=N requests.
func (h *InventoryHandler) Validate(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productId")
	if productID == "" {
		writeError(w, http.StatusBadRequest, "product ID is required", h.logger)
		return
	}

	qty, err := strconv.Atoi(r.URL.Query().Get("quantity"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid quantity parameter", h.logger)
		return
	}

	if err := h.service.ValidateStock(r.Context(), productID, qty); err != nil {
		respondError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"productId": productID,
		"quantity":  qty,
		"available": true,
	})
}

// Restore handles POST /api/inventory/{orderId}/restore requests.
func (h *InventoryHandler) Restore(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(chi.URLParam(r, "orderId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid order ID", h.logger)
		return
	}

	if err := h.service.RestoreStock(r.Context(), orderID); err != nil {
		respondError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "stock restored"})
}

// LowStock handles GET /api/inventory/low-stock requests. An optional
// threshold query parameter overrides the configured default.
func (h *InventoryHandler) LowStock(w http.ResponseWriter, r *http.Request) {
	threshold := h.threshold
	if raw := r.URL.Query().Get("threshold"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeError(w, http.StatusBadRequest, "invalid threshold parameter", h.logger)
			return
		}
		threshold = parsed
	}

	products, err := h.service.ListLowStock(r.Context(), threshold)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, products)
}
