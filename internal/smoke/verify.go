package smoke

import (
	"fmt"
	"sort"
)

// VerifyRanking checks that ranks are exactly 1..N in order and that MB
// scores never increase down the list.
func VerifyRanking(out []RankedProduct) error {
	if len(out) == 0 {
		return fmt.Errorf("empty ranking")
	}
	for i, r := range out {
		if r.Rank != i+1 {
			return fmt.Errorf("position %d has rank %d", i, r.Rank)
		}
		if i > 0 && out[i-1].MBScore < r.MBScore {
			return fmt.Errorf("rank %d mb %.4f above rank %d mb %.4f", r.Rank, r.MBScore, out[i-1].Rank, out[i-1].MBScore)
		}
	}
	return nil
}

// VerifyPriceOrder checks that products are sorted by price in the given
// direction.
func VerifyPriceOrder(products []Product, descending bool) error {
	ok := sort.SliceIsSorted(products, func(i, j int) bool {
		if descending {
			return products[i].ProductPrice > products[j].ProductPrice
		}
		return products[i].ProductPrice < products[j].ProductPrice
	})
	if !ok {
		return fmt.Errorf("products not sorted by price (descending=%t)", descending)
	}
	return nil
}
