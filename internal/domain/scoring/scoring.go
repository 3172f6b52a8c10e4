// Package scoring computes marketability (MB) and customer-benefit (CB) scores
// for listings and orders a batch of listings into a ranking.
package scoring

import (
	"errors"
	"fmt"
	"sort"

	"github.com/okian/pricewise/internal/domain/model"
)

// Default scoring configuration constants.
const (
	defaultRatingWeight      = 10
	defaultPopularityDivisor = 10
)

// ErrZeroDeliveryCost is returned when CB cannot be computed because the
// delivery cost is zero.
var ErrZeroDeliveryCost = errors.New("division by zero: delivery_cost is 0")

// ErrInvalidListing wraps listing validation failures.
var ErrInvalidListing = errors.New("invalid listing")

// Option applies a configuration option to the Ranker.
type Option func(*Ranker)

// WithRatingWeight sets the multiplier applied to the product rating in MB.
func WithRatingWeight(w float64) Option {
	return func(r *Ranker) {
		if w > 0 {
			r.ratingWeight = w
		}
	}
}

// WithPopularityDivisor sets the divisor applied to the rating count in MB.
func WithPopularityDivisor(d float64) Option {
	return func(r *Ranker) {
		if d > 0 {
			r.popularityDivisor = d
		}
	}
}

// Scores holds both scores of one listing.
type Scores struct {
	MB float64
	CB float64
}

// Ranked is one listing placed in a ranking batch.
type Ranked struct {
	// Index is the position of the listing in the input batch.
	Index   int
	Listing model.Listing
	Scores
	Rank int
}

// Ranker scores and orders listing batches. It holds no mutable state and is
// safe for concurrent use.
type Ranker struct {
	ratingWeight      float64
	popularityDivisor float64
}

// NewRanker creates a ranker with the given options.
func NewRanker(opts ...Option) *Ranker {
	r := &Ranker{
		ratingWeight:      defaultRatingWeight,
		popularityDivisor: defaultPopularityDivisor,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Score computes MB and CB for a single listing.
//
//	MB = rating * ratingWeight + numRatings / popularityDivisor
//	CB = price / deliveryCost
func (r *Ranker) Score(l model.Listing) (Scores, error) {
	if l.DeliveryCost == 0 {
		return Scores{}, ErrZeroDeliveryCost
	}
	return Scores{
		MB: l.ProductRating*r.ratingWeight + float64(l.NumRatings)/r.popularityDivisor,
		CB: l.ProductPrice / l.DeliveryCost,
	}, nil
}

// Rank scores every listing and orders the batch by MB descending. Ties keep
// their input order. Ranks are 1..N. Any invalid listing or scoring failure
// fails the whole batch and no partial result is returned.
func (r *Ranker) Rank(listings []model.Listing) ([]Ranked, error) {
	out := make([]Ranked, len(listings))
	for i, l := range listings {
		if err := l.Validate(); err != nil {
			return nil, fmt.Errorf("listing %d (%s): %w: %w", i, l.Key(), ErrInvalidListing, err)
		}
		s, err := r.Score(l)
		if err != nil {
			return nil, fmt.Errorf("listing %d (%s): %w", i, l.Key(), err)
		}
		out[i] = Ranked{Index: i, Listing: l, Scores: s}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].MB > out[j].MB
	})
	for i := range out {
		out[i].Rank = i + 1
	}
	return out, nil
}

// Rank ranks listings with the default weights.
func Rank(listings []model.Listing) ([]Ranked, error) {
	return NewRanker().Rank(listings)
}
