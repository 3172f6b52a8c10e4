// Package catalog supplies marketplace listings for a search query.
package catalog

import (
	"context"
	"slices"

	"github.com/okian/pricewise/internal/domain/model"
)

// Source fetches the listings matching query.
type Source interface {
	Fetch(ctx context.Context, query string) ([]model.Listing, error)
}

// SimulatedSource returns a fixed set of marketplace listings regardless of
// the query, standing in for real shop integrations.
type SimulatedSource struct {
	listings []model.Listing
}

// NewSimulatedSource returns a source serving listings. With no listings it
// serves the default two-shop payload.
func NewSimulatedSource(listings ...model.Listing) *SimulatedSource {
	if len(listings) == 0 {
		listings = DefaultListings()
	}
	return &SimulatedSource{listings: slices.Clone(listings)}
}

// Fetch implements Source. The query is ignored.
func (s *SimulatedSource) Fetch(ctx context.Context, _ string) ([]model.Listing, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return slices.Clone(s.listings), nil
}

// DefaultListings is the payload the simulated marketplaces report.
func DefaultListings() []model.Listing {
	return []model.Listing{
		{
			ProductName:   "Samsung A51",
			ShopName:      "Jumia",
			ProductPrice:  30098,
			DeliveryCost:  200,
			ProductRating: 4.7,
			NumRatings:    10,
			PaymentMode:   model.PayAfterDelivery,
			ProductURL:    "https://jumia.com/samsung-a51",
		},
		{
			ProductName:   "Samsung A51",
			ShopName:      "Kill Mall",
			ProductPrice:  29999,
			DeliveryCost:  150,
			ProductRating: 4.0,
			NumRatings:    4,
			PaymentMode:   model.PayBeforeDelivery,
			ProductURL:    "https://killmall.com/samsung-a51",
		},
	}
}
