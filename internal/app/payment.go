package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/okian/pricewise/internal/domain/errs"
	"github.com/okian/pricewise/internal/domain/model"
	"github.com/okian/pricewise/internal/domain/types"
	"github.com/okian/pricewise/pkg/logger"
	"github.com/okian/pricewise/pkg/metrics"
)

// CalculateTotalCost returns the price of a product plus its delivery cost.
func (s *Service) CalculateTotalCost(ctx context.Context, productID uint) (types.TotalCost, error) {
	const op = "service.CalculateTotalCost"

	if productID == 0 {
		return types.TotalCost{}, errs.New(op, errs.ErrValidation, "Product ID is required")
	}
	p, err := s.store.GetProduct(ctx, productID)
	if err != nil {
		return types.TotalCost{}, storeErr(op, err, "Product not found")
	}
	return types.TotalCost{
		ProductName:  p.ProductName,
		ProductPrice: p.ProductPrice,
		DeliveryCost: p.DeliveryCost,
		TotalCost:    p.ProductPrice + p.DeliveryCost,
	}, nil
}

// ProcessPayment simulates paying for a product. mode must match the
// payment mode the shop offers for it.
func (s *Service) ProcessPayment(ctx context.Context, productID uint, mode string) (types.PaymentReceipt, error) {
	const op = "service.ProcessPayment"

	if productID == 0 || mode == "" {
		return types.PaymentReceipt{}, errs.New(op, errs.ErrValidation, "Product ID and Payment Mode are required")
	}
	pm, err := model.ParsePaymentMode(mode)
	if err != nil {
		return types.PaymentReceipt{}, errs.New(op, errs.ErrValidation, "Payment mode not supported")
	}

	p, err := s.store.GetProduct(ctx, productID)
	if err != nil {
		return types.PaymentReceipt{}, storeErr(op, err, "Product not found")
	}
	if model.PaymentMode(p.PaymentMode) != pm {
		return types.PaymentReceipt{}, errs.New(op, errs.ErrValidation,
			fmt.Sprintf("Invalid payment mode. Expected: %s", p.PaymentMode))
	}

	var msg string
	switch pm {
	case model.PayBeforeDelivery:
		msg = "Payment processed successfully. Delivery will follow."
	case model.PayAfterDelivery:
		msg = "Order placed successfully. Payment due upon delivery."
	}

	receipt := types.PaymentReceipt{
		Message:        msg,
		OrderReference: uuid.NewString(),
		ProductName:    p.ProductName,
		ProductPrice:   p.ProductPrice,
		PaymentMode:    string(pm),
	}
	metrics.RecordPayment(pm.Label())
	s.logger.Info(ctx, "payment simulated",
		logger.Uint("productID", p.ID),
		logger.String("mode", pm.Label()),
		logger.String("order", receipt.OrderReference),
	)
	return receipt, nil
}

// PriceHistory returns the recorded price changes of a product, oldest first.
func (s *Service) PriceHistory(ctx context.Context, productID uint) ([]types.PriceChange, error) {
	const op = "service.PriceHistory"

	if productID == 0 {
		return nil, errs.New(op, errs.ErrValidation, "Product ID is required")
	}
	if _, err := s.store.GetProduct(ctx, productID); err != nil {
		return nil, storeErr(op, err, "Product not found")
	}
	rows, err := s.store.PriceChanges(ctx, productID)
	if err != nil {
		return nil, storeErr(op, err, "Product not found")
	}
	out := make([]types.PriceChange, len(rows))
	for i, r := range rows {
		out[i] = types.PriceChange{OldPrice: r.OldPrice, NewPrice: r.NewPrice, ChangeDate: r.ChangeDate}
	}
	return out, nil
}
