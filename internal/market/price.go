package market

import (
	"math"
	"sort"
)

// Bucket counts priced hits below UpperBound and at or above the previous
// bucket's bound. The last bucket is unbounded and labelled 1000.
type Bucket struct {
	UpperBound float64 `json:"upperBound"`
	Count      int     `json:"count"`
}

// Summary describes the market price of an item.
type Summary struct {
	Average      float64  `json:"average"`
	Min          float64  `json:"min"`
	Max          float64  `json:"max"`
	Suggested    float64  `json:"suggested"`
	Count        int      `json:"count"`
	Currency     string   `json:"currency,omitempty"`
	Distribution []Bucket `json:"distribution"`
}

var bucketBounds = []float64{50, 100, 200, 500, 1000}

// SuggestedDiscount is applied to the market average to get a listing price.
const SuggestedDiscount = 0.9

// Summarize computes the price summary of the priced hits.
func Summarize(hits []Hit) Summary {
	var prices []float64
	var priced []Hit
	for _, h := range hits {
		if h.Price > 0 {
			prices = append(prices, h.Price)
			priced = append(priced, h)
		}
	}
	if len(prices) == 0 {
		return Summary{}
	}
	sort.Float64s(prices)

	var sum float64
	for _, p := range prices {
		sum += p
	}
	avg := sum / float64(len(prices))

	return Summary{
		Average:      avg,
		Min:          prices[0],
		Max:          prices[len(prices)-1],
		Suggested:    round2(avg * SuggestedDiscount),
		Count:        len(prices),
		Currency:     dominantCurrency(priced),
		Distribution: distribution(prices),
	}
}

// dominantCurrency is the most common currency among hits. Ties go to the
// currency seen first.
func dominantCurrency(hits []Hit) string {
	counts := make(map[string]int)
	best := ""
	for _, h := range hits {
		if h.Currency == "" {
			continue
		}
		counts[h.Currency]++
		if best == "" || counts[h.Currency] > counts[best] {
			best = h.Currency
		}
	}
	return best
}

func distribution(sorted []float64) []Bucket {
	buckets := make([]Bucket, len(bucketBounds)+1)
	for i, b := range bucketBounds {
		buckets[i].UpperBound = b
	}
	buckets[len(bucketBounds)].UpperBound = bucketBounds[len(bucketBounds)-1]

	for _, p := range sorted {
		i := sort.SearchFloat64s(bucketBounds, p)
		if i < len(bucketBounds) && bucketBounds[i] == p {
			i++
		}
		buckets[i].Count++
	}
	return buckets
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
