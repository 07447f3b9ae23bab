package directory

import (
	"cmp"
	"fmt"
	"sort"
)

// Key is a directory sort order.
type Key string

const (
	KeyNone        Key = ""
	KeyNewest      Key = "newest"
	KeyOldest      Key = "oldest"
	KeyPriceAsc    Key = "price-asc"
	KeyPriceDesc   Key = "price-desc"
	KeyReviewsAsc  Key = "reviews-asc"
	KeyReviewsDesc Key = "reviews-desc"
	KeyRatingAsc   Key = "rating-asc"
	KeyRatingDesc  Key = "rating-desc"
)

// ParseKey validates a raw sort key.
func ParseKey(raw string) (Key, error) {
	switch k := Key(raw); k {
	case KeyNone, KeyNewest, KeyOldest, KeyPriceAsc, KeyPriceDesc,
		KeyReviewsAsc, KeyReviewsDesc, KeyRatingAsc, KeyRatingDesc:
		return k, nil
	}
	return KeyNone, fmt.Errorf("unknown sort key %q", raw)
}

func (k Key) compare(a, b Listing) int {
	switch k {
	case KeyNewest:
		return b.CreatedAt.Compare(a.CreatedAt)
	case KeyOldest:
		return a.CreatedAt.Compare(b.CreatedAt)
	case KeyPriceAsc:
		return cmp.Compare(a.Budget, b.Budget)
	case KeyPriceDesc:
		return cmp.Compare(b.Budget, a.Budget)
	case KeyReviewsAsc:
		return cmp.Compare(a.ReviewCount, b.ReviewCount)
	case KeyReviewsDesc:
		return cmp.Compare(b.ReviewCount, a.ReviewCount)
	case KeyRatingAsc:
		return cmp.Compare(a.Rating, b.Rating)
	case KeyRatingDesc:
		return cmp.Compare(b.Rating, a.Rating)
	}
	return 0
}

// Sort orders items in place by primary, falling back to secondary only when
// the primary comparison is a tie. Equal items keep their relative order.
func Sort(items []Listing, primary, secondary Key) {
	sort.SliceStable(items, func(i, j int) bool {
		if c := primary.compare(items[i], items[j]); c != 0 {
			return c < 0
		}
		return secondary.compare(items[i], items[j]) < 0
	})
}
