// Package signals pulls prices, currencies, conditions, ratings and product
// specifications out of free-form text such as search snippets and OCR output.
//
// Every extractor is best-effort: a missing match returns the zero value and
// never an error.
package signals

import (
	"regexp"
	"strconv"
	"strings"
)

// MaxPrice is the exclusive upper bound for any price carried by the pipeline.
const MaxPrice = 1_000_000

// Signals is everything the extractor could find in a piece of text.
type Signals struct {
	Price       float64 // 0 when no price was found
	Currency    string
	Condition   string
	Rating      *float64
	ReviewCount *int
}

// ValidPrice reports whether p is usable as a price (0 < p < MaxPrice).
func ValidPrice(p float64) bool {
	return p > 0 && p < MaxPrice
}

// amount matches "1,299.99", "1.299,00", "1299.99", "12,50" and "450".
const amount = `(\d{1,3}(?:,\d{3})+(?:\.\d{1,2})?|\d{1,3}(?:\.\d{3})+(?:,\d{1,2})?|\d+(?:[.,]\d{1,2})?)`

// amountEnd stops an amount from ending inside a longer number, so
// "€1.299,00" is never cut short to 1.29.
const amountEnd = `(?:[^\d.,]|[.,](?:\D|$)|$)`

// pricePatterns are tried in order; the first one yielding a valid price wins.
var pricePatterns = []*regexp.Regexp{
	regexp.MustCompile(`[$€£]\s*` + amount + amountEnd),
	regexp.MustCompile(`(?i)` + amount + `\s*(?:USD|EUR|GBP)\b`),
	regexp.MustCompile(`(?i)price\s*:\s*[$€£]?\s*` + amount + amountEnd),
	regexp.MustCompile(`(?i)` + amount + `\s*(?:dollars?|euros?|pounds?|bucks)\b`),
	regexp.MustCompile(`(?i)(?:listed|selling)\s+for\s+[$€£]?\s*` + amount + amountEnd),
	regexp.MustCompile(`(?i)` + amount + `\s+for\s+sale\b`),
	regexp.MustCompile(`(?i)only\s+[$€£]\s*` + amount + amountEnd),
	regexp.MustCompile(`(?i)[$€£]\s*` + amount + `\s*obo\b`),
}

var (
	currencyPattern = regexp.MustCompile(`(?i)(\$|€|£|\busd\b|\beur\b|\beuros?\b|\bgbp\b|\bpounds?\b|\bdollars?\b)`)
	ratingPatterns  = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(\d(?:\.\d+)?)\s*out\s+of\s+5\b`),
		regexp.MustCompile(`(?i)rating\s*:\s*(\d(?:\.\d+)?)\b`),
	}
	reviewCountPattern = regexp.MustCompile(`(?i)(\d{1,3}(?:,\d{3})+|\d+)\s*(?:reviews?|ratings?)\b`)
)

// conditionKeywords are matched as case-insensitive substrings, in order.
var conditionKeywords = []string{"new", "used", "refurbished", "like new", "excellent", "good", "fair"}

// Extract runs every extractor over text.
func Extract(text string) Signals {
	s := Signals{
		Currency:  ExtractCurrency(text),
		Condition: ExtractCondition(text),
	}
	if p, ok := ExtractPrice(text); ok {
		s.Price = p
	}
	if r, ok := ExtractRating(text); ok {
		s.Rating = &r
	}
	if n, ok := ExtractReviewCount(text); ok {
		s.ReviewCount = &n
	}
	return s
}

// ExtractPrice returns the price matched by the first pattern that yields an
// in-range value. Only the first match of each pattern is considered.
func ExtractPrice(text string) (float64, bool) {
	for _, re := range pricePatterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		p, err := parseAmount(m[1])
		if err != nil || !ValidPrice(p) {
			continue
		}
		return p, true
	}
	return 0, false
}

// parseAmount reads both "1,299.99" and "1.299,99". A trailing separator
// followed by one or two digits is the decimal point; anything else groups
// thousands.
func parseAmount(s string) (float64, error) {
	dot, comma := strings.LastIndex(s, "."), strings.LastIndex(s, ",")
	switch {
	case comma > dot && len(s)-comma-1 <= 2:
		s = strings.Replace(strings.ReplaceAll(s, ".", ""), ",", ".", 1)
	case dot > comma && len(s)-dot-1 == 3:
		s = strings.ReplaceAll(s, ".", "")
	default:
		s = strings.ReplaceAll(s, ",", "")
	}
	return strconv.ParseFloat(s, 64)
}

// ExtractCurrency returns the ISO code for the first currency marker in text,
// defaulting to USD.
func ExtractCurrency(text string) string {
	m := currencyPattern.FindString(text)
	switch strings.ToLower(m) {
	case "€", "eur", "euro", "euros":
		return "EUR"
	case "£", "gbp", "pound", "pounds":
		return "GBP"
	default:
		return "USD"
	}
}

// ExtractCondition returns the first condition keyword contained in text, or "".
func ExtractCondition(text string) string {
	lower := strings.ToLower(text)
	for _, kw := range conditionKeywords {
		if strings.Contains(lower, kw) {
			return kw
		}
	}
	return ""
}

// ExtractRating finds a 0-5 rating written as "4.5 out of 5" or "rating: 4.5".
func ExtractRating(text string) (float64, bool) {
	for _, re := range ratingPatterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		r, err := strconv.ParseFloat(m[1], 64)
		if err != nil || r < 0 || r > 5 {
			continue
		}
		return r, true
	}
	return 0, false
}

// ExtractReviewCount finds "1,234 reviews" or "87 ratings".
func ExtractReviewCount(text string) (int, bool) {
	m := reviewCountPattern.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(strings.ReplaceAll(m[1], ",", ""))
	if err != nil {
		return 0, false
	}
	return n, true
}
