package service

import (
	"github.com/okian/pricewise/internal/adapters/repository"
	"github.com/okian/pricewise/internal/domain/types"
)

// projectRanking flattens stored ranked rows and their products into the
// records returned to clients.
func projectRanking(entries []repository.RankedProduct) []types.RankedProduct {
	out := make([]types.RankedProduct, len(entries))
	for i, e := range entries {
		out[i] = types.RankedProduct{
			ProductName:   e.Product.ProductName,
			ProductPrice:  e.Product.ProductPrice,
			ProductRating: e.Product.ProductRating,
			ShopName:      e.Product.ShopName,
			Rank:          e.Rank,
			MBScore:       e.MBScore,
			CBScore:       e.CBScore,
		}
	}
	return out
}

func projectProduct(p repository.Product) types.Product {
	return types.Product{
		ID:            p.ID,
		ProductName:   p.ProductName,
		ProductPrice:  p.ProductPrice,
		ProductRating: p.ProductRating,
		NumRatings:    p.NumRatings,
		DeliveryCost:  p.DeliveryCost,
		ShopName:      p.ShopName,
		PaymentMode:   p.PaymentMode,
		ProductURL:    p.ProductURL,
		CreatedAt:     p.CreatedAt,
	}
}

func projectUser(u repository.User) types.User {
	return types.User{
		ID:             u.ID,
		Username:       u.Username,
		Email:          u.Email,
		ProfilePicture: u.ProfilePicture,
		CreatedAt:      u.CreatedAt,
	}
}

func projectHistory(h repository.SearchHistory) types.SearchHistoryEntry {
	return types.SearchHistoryEntry{
		ID:          h.ID,
		SearchQuery: h.SearchQuery,
		SearchDate:  h.SearchDate,
	}
}
