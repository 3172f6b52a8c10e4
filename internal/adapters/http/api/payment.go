package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/okian/pricewise/internal/domain/errs"
	"github.com/okian/pricewise/internal/domain/types"
	"github.com/okian/pricewise/pkg/logger"
)

// PaymentDependencies is the contract required by the payment handlers.
type PaymentDependencies interface {
	CalculateTotalCost(ctx context.Context, productID uint) (types.TotalCost, error)
	ProcessPayment(ctx context.Context, productID uint, mode string) (types.PaymentReceipt, error)
	PriceHistory(ctx context.Context, productID uint) ([]types.PriceChange, error)
}

type totalCostRequest struct {
	ProductID uint `json:"product_id"`
}

func (r totalCostRequest) validate() error {
	if r.ProductID == 0 {
		return errs.New("api.totalCost", errs.ErrValidation, "Product ID is required")
	}
	return nil
}

type paymentRequest struct {
	ProductID   uint   `json:"product_id"`
	PaymentMode string `json:"payment_mode"`
}

func (r paymentRequest) validate() error {
	if r.ProductID == 0 || strings.TrimSpace(r.PaymentMode) == "" {
		return errs.New("api.payment", errs.ErrValidation, "Product ID and Payment Mode are required")
	}
	return nil
}

type priceHistoryResponse struct {
	ProductID uint                `json:"product_id"`
	Changes   []types.PriceChange `json:"changes"`
}

// PaymentHandler handles the checkout simulation endpoints.
type PaymentHandler struct {
	deps PaymentDependencies
	log  logger.Logger
}

// NewPaymentHandler creates a new payment handler.
func NewPaymentHandler(deps PaymentDependencies, log logger.Logger) *PaymentHandler {
	return &PaymentHandler{deps: deps, log: log}
}

// HandleCalculateTotalCost handles POST /calculate-total-cost.
func (h *PaymentHandler) HandleCalculateTotalCost(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req totalCostRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	if err := req.validate(); err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	cost, err := h.deps.CalculateTotalCost(r.Context(), req.ProductID)
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, cost)
}

// HandleProcessPayment handles POST /process-payment.
func (h *PaymentHandler) HandleProcessPayment(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req paymentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	if err := req.validate(); err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	receipt, err := h.deps.ProcessPayment(r.Context(), req.ProductID, req.PaymentMode)
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, receipt)
}

// HandlePriceHistory handles GET /price-history?product_id=.
func (h *PaymentHandler) HandlePriceHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	id, err := strconv.ParseUint(r.URL.Query().Get("product_id"), 10, 64)
	if err != nil || id == 0 {
		writeError(w, http.StatusBadRequest, "Product ID is required")
		return
	}
	changes, err := h.deps.PriceHistory(r.Context(), uint(id))
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	if changes == nil {
		changes = []types.PriceChange{}
	}
	writeJSON(w, http.StatusOK, priceHistoryResponse{ProductID: uint(id), Changes: changes})
}
