package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm/clause"

	"github.com/okian/pricewise/internal/domain/model"
)

// UpsertResult tells what an upsert did to the catalog.
type UpsertResult string

// Upsert results.
const (
	UpsertCreated   UpsertResult = "created"
	UpsertUpdated   UpsertResult = "updated"
	UpsertUnchanged UpsertResult = "unchanged"
)

// UpsertProduct stores l under its (product_name, shop_name) key. A first
// sighting creates the product. Later sightings overwrite the mutable
// attributes and append a PriceHistory row when the price moved.
func (s *Store) UpsertProduct(ctx context.Context, l model.Listing) (Product, UpsertResult, error) {
	db := s.conn(ctx)

	p := Product{
		ProductName:   l.ProductName,
		ShopName:      l.ShopName,
		ProductPrice:  l.ProductPrice,
		ProductRating: l.ProductRating,
		NumRatings:    l.NumRatings,
		DeliveryCost:  l.DeliveryCost,
		PaymentMode:   string(l.PaymentMode),
		ProductURL:    l.ProductURL,
	}
	res := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "product_name"}, {Name: "shop_name"}},
		DoNothing: true,
	}).Create(&p)
	if res.Error != nil {
		return Product{}, "", fmt.Errorf("insert product %s: %w", l.Key(), translate(res.Error))
	}
	if res.RowsAffected == 1 && p.ID != 0 {
		return p, UpsertCreated, nil
	}

	var existing Product
	if err := db.Where("product_name = ? AND shop_name = ?", l.ProductName, l.ShopName).
		First(&existing).Error; err != nil {
		return Product{}, "", fmt.Errorf("load product %s: %w", l.Key(), translate(err))
	}
	if sameAttributes(existing, p) {
		return existing, UpsertUnchanged, nil
	}

	now := time.Now().UTC()
	if existing.ProductPrice != p.ProductPrice {
		change := PriceHistory{
			ProductID:  existing.ID,
			OldPrice:   existing.ProductPrice,
			NewPrice:   p.ProductPrice,
			ChangeDate: now,
		}
		if err := db.Omit("Product").Create(&change).Error; err != nil {
			return Product{}, "", fmt.Errorf("record price change %s: %w", l.Key(), translate(err))
		}
	}

	updates := map[string]any{
		"product_price":  p.ProductPrice,
		"product_rating": p.ProductRating,
		"num_ratings":    p.NumRatings,
		"delivery_cost":  p.DeliveryCost,
		"payment_mode":   p.PaymentMode,
		"product_url":    p.ProductURL,
		"updated_at":     now,
	}
	if err := db.Model(&existing).Updates(updates).Error; err != nil {
		return Product{}, "", fmt.Errorf("update product %s: %w", l.Key(), translate(err))
	}
	existing.ProductPrice = p.ProductPrice
	existing.ProductRating = p.ProductRating
	existing.NumRatings = p.NumRatings
	existing.DeliveryCost = p.DeliveryCost
	existing.PaymentMode = p.PaymentMode
	existing.ProductURL = p.ProductURL
	existing.UpdatedAt = now
	return existing, UpsertUpdated, nil
}

func sameAttributes(a, b Product) bool {
	return a.ProductPrice == b.ProductPrice &&
		a.ProductRating == b.ProductRating &&
		a.NumRatings == b.NumRatings &&
		a.DeliveryCost == b.DeliveryCost &&
		a.PaymentMode == b.PaymentMode &&
		a.ProductURL == b.ProductURL
}

// GetProduct loads a product by id.
func (s *Store) GetProduct(ctx context.Context, id uint) (Product, error) {
	var p Product
	if err := s.conn(ctx).First(&p, id).Error; err != nil {
		return Product{}, fmt.Errorf("get product %d: %w", id, translate(err))
	}
	return p, nil
}

// CountProducts returns the number of products with the given key. Used to
// check upsert idempotency.
func (s *Store) CountProducts(ctx context.Context, key model.CatalogKey) (int64, error) {
	var n int64
	err := s.conn(ctx).Model(&Product{}).
		Where("product_name = ? AND shop_name = ?", key.ProductName, key.ShopName).
		Count(&n).Error
	return n, translate(err)
}

// SortColumn is a whitelisted product column usable for ordering.
type SortColumn string

// Sortable product columns.
const (
	SortByPrice  SortColumn = "product_price"
	SortByRating SortColumn = "product_rating"
)

// SortKey orders a product listing by one column.
type SortKey struct {
	Column SortColumn
	Desc   bool
}

// ListProducts returns every product ordered by keys, then by id.
func (s *Store) ListProducts(ctx context.Context, keys ...SortKey) ([]Product, error) {
	q := s.conn(ctx).Model(&Product{})
	for _, k := range keys {
		switch k.Column {
		case SortByPrice, SortByRating:
			q = q.Order(clause.OrderByColumn{Column: clause.Column{Name: string(k.Column)}, Desc: k.Desc})
		default:
			return nil, fmt.Errorf("list products: unsupported sort column %q", k.Column)
		}
	}
	var out []Product
	if err := q.Order("id").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list products: %w", translate(err))
	}
	return out, nil
}

// PriceChanges returns the price history of a product, oldest first.
func (s *Store) PriceChanges(ctx context.Context, productID uint) ([]PriceHistory, error) {
	var out []PriceHistory
	err := s.conn(ctx).
		Where("product_id = ?", productID).
		Order("change_date, id").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("price history %d: %w", productID, translate(err))
	}
	return out, nil
}

// RankedRow is one scored product to persist within a ranking run.
type RankedRow struct {
	ProductID uint
	MBScore   float64
	CBScore   float64
	Rank      int
}

// SaveRanking stores rows as a new ranking run and returns it. Earlier runs
// are kept as history.
func (s *Store) SaveRanking(ctx context.Context, query string, rows []RankedRow) (RankingRun, error) {
	run := RankingRun{
		ID:          uuid.NewString(),
		SearchQuery: query,
		Size:        len(rows),
	}
	db := s.conn(ctx)
	if err := db.Create(&run).Error; err != nil {
		return RankingRun{}, fmt.Errorf("create ranking run: %w", translate(err))
	}
	if len(rows) == 0 {
		return run, nil
	}

	entries := make([]RankedProduct, len(rows))
	for i, r := range rows {
		entries[i] = RankedProduct{
			RunID:     run.ID,
			ProductID: r.ProductID,
			MBScore:   r.MBScore,
			CBScore:   r.CBScore,
			Rank:      r.Rank,
		}
	}
	if err := db.Omit("Product").Create(&entries).Error; err != nil {
		return RankingRun{}, fmt.Errorf("insert ranked products: %w", translate(err))
	}
	run.Entries = entries
	return run, nil
}

// LoadRanking returns the entries of run ordered by rank, each with its
// product attached.
func (s *Store) LoadRanking(ctx context.Context, runID string) ([]RankedProduct, error) {
	var out []RankedProduct
	err := s.conn(ctx).
		Preload("Product").
		Where("run_id = ?", runID).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "rank"}}).
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("load ranking %s: %w", runID, translate(err))
	}
	return out, nil
}

// LatestRun returns the most recent ranking run.
func (s *Store) LatestRun(ctx context.Context) (RankingRun, error) {
	var run RankingRun
	if err := s.conn(ctx).Order("created_at DESC").First(&run).Error; err != nil {
		return RankingRun{}, fmt.Errorf("latest ranking run: %w", translate(err))
	}
	return run, nil
}

// CountRankedProducts returns the number of ranked rows across all runs.
func (s *Store) CountRankedProducts(ctx context.Context) (int64, error) {
	var n int64
	err := s.conn(ctx).Model(&RankedProduct{}).Count(&n).Error
	return n, translate(err)
}
