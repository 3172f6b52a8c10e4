package service

import (
	"context"
	"strings"
	"time"

	"github.com/okian/pricewise/internal/adapters/repository"
	"github.com/okian/pricewise/internal/domain/errs"
	"github.com/okian/pricewise/internal/domain/types"
	"github.com/okian/pricewise/pkg/logger"
	"github.com/okian/pricewise/pkg/metrics"
)

// Search fetches listings for query, upserts them into the catalog, ranks
// them and stores the ranking as a new run. All writes happen in one
// transaction. The result is ordered by rank. When userID is non-zero the
// query is also appended to that user's search history.
func (s *Service) Search(ctx context.Context, query string, userID uint) ([]types.RankedProduct, error) {
	const op = "service.Search"

	query = strings.TrimSpace(query)
	if query == "" {
		metrics.RecordSearch("invalid")
		return nil, errs.New(op, errs.ErrValidation, "Query parameter is required")
	}

	listings, err := s.source.Fetch(ctx, query)
	if err != nil {
		metrics.RecordSearch("error")
		return nil, errs.WrapKind(op, errs.ErrInternal, err)
	}

	start := time.Now()
	var (
		out     []types.RankedProduct
		results []repository.UpsertResult
	)
	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		out, results = nil, results[:0]

		products := make([]repository.Product, len(listings))
		for i, l := range listings {
			p, res, err := tx.UpsertProduct(ctx, l)
			if err != nil {
				return err
			}
			products[i] = p
			results = append(results, res)
		}

		ranked, err := s.ranker.Rank(listings)
		if err != nil {
			return err
		}

		rows := make([]repository.RankedRow, len(ranked))
		for i, r := range ranked {
			rows[i] = repository.RankedRow{
				ProductID: products[r.Index].ID,
				MBScore:   r.MB,
				CBScore:   r.CB,
				Rank:      r.Rank,
			}
		}
		run, err := tx.SaveRanking(ctx, query, rows)
		if err != nil {
			return err
		}

		entries, err := tx.LoadRanking(ctx, run.ID)
		if err != nil {
			return err
		}
		out = projectRanking(entries)
		return nil
	})
	if err != nil {
		metrics.RecordSearch("error")
		s.logger.Error(ctx, "search failed", logger.String("query", query), logger.Error(err))
		return nil, errs.WrapKind(op, errs.ErrInternal, err)
	}

	for _, res := range results {
		metrics.RecordCatalogUpsert(string(res))
	}
	metrics.RecordRankingRun(len(out), float64(time.Since(start).Microseconds())/1000)
	metrics.RecordSearch("ok")

	if userID != 0 {
		if _, err := s.store.AddSearchHistory(ctx, userID, query, s.now()); err != nil {
			s.logger.Warn(ctx, "record search history failed",
				logger.Uint("userID", userID),
				logger.Error(err),
			)
		}
	}

	s.logger.Debug(ctx, "search ranked",
		logger.String("query", query),
		logger.Int("results", len(out)),
	)
	return out, nil
}
