// Package model contains domain models passed between layers.
package model

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Rating bounds for a listing.
const (
	MinRating = 0.0
	MaxRating = 5.0
)

// PaymentMode says when the buyer pays for an order.
type PaymentMode string

// Supported payment modes. The values are the wire format shops report.
const (
	PayBeforeDelivery PaymentMode = "Pay before delivery"
	PayAfterDelivery  PaymentMode = "Pay after delivery"
)

// Valid reports whether m is a known payment mode.
func (m PaymentMode) Valid() bool {
	return m == PayBeforeDelivery || m == PayAfterDelivery
}

// Label is a short metric-friendly name for the mode.
func (m PaymentMode) Label() string {
	switch m {
	case PayBeforeDelivery:
		return "pay_before"
	case PayAfterDelivery:
		return "pay_after"
	default:
		return "unknown"
	}
}

// ParsePaymentMode accepts the wire value or the short label.
func ParsePaymentMode(s string) (PaymentMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case strings.ToLower(string(PayBeforeDelivery)), "pay_before":
		return PayBeforeDelivery, nil
	case strings.ToLower(string(PayAfterDelivery)), "pay_after":
		return PayAfterDelivery, nil
	}
	return "", fmt.Errorf("unsupported payment mode %q", s)
}

// Listing is one product offer from one shop as reported by a catalog source.
// (ProductName, ShopName) identifies the catalog entry it maps to.
type Listing struct {
	ProductName   string      `json:"product_name"`
	ShopName      string      `json:"shop_name"`
	ProductPrice  float64     `json:"product_price"`
	DeliveryCost  float64     `json:"delivery_cost"`
	ProductRating float64     `json:"product_rating"`
	NumRatings    int         `json:"num_ratings"`
	PaymentMode   PaymentMode `json:"payment_mode"`
	ProductURL    string      `json:"product_url"`
}

// Validate checks the listing fields. Zero delivery cost is valid here; it is a
// scoring concern.
func (l Listing) Validate() error {
	switch {
	case strings.TrimSpace(l.ProductName) == "":
		return errors.New("missing product_name")
	case strings.TrimSpace(l.ShopName) == "":
		return errors.New("missing shop_name")
	case !finite(l.ProductPrice) || l.ProductPrice <= 0:
		return errors.New("product_price must be greater than zero")
	case !finite(l.DeliveryCost) || l.DeliveryCost < 0:
		return errors.New("delivery_cost must not be negative")
	case !finite(l.ProductRating) || l.ProductRating < MinRating || l.ProductRating > MaxRating:
		return fmt.Errorf("product_rating must be within [%g, %g]", MinRating, MaxRating)
	case l.NumRatings < 0:
		return errors.New("num_ratings must not be negative")
	case !l.PaymentMode.Valid():
		return fmt.Errorf("unsupported payment_mode %q", l.PaymentMode)
	}
	return nil
}

// Key returns the catalog identity of the listing.
func (l Listing) Key() CatalogKey {
	return CatalogKey{ProductName: l.ProductName, ShopName: l.ShopName}
}

// CatalogKey identifies a catalog entry.
type CatalogKey struct {
	ProductName string
	ShopName    string
}

func (k CatalogKey) String() string {
	return k.ProductName + "@" + k.ShopName
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
