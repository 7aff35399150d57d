package identity

import (
	"regexp"
	"strings"

	"github.com/raine/photo-pricer/internal/vision"
)

// knownBrands are matched as whole words, case-insensitively, in this order.
var knownBrands = []string{
	"Apple", "Samsung", "Google", "Microsoft", "Dell", "HP", "Lenovo", "Asus", "Acer",
	"MSI", "Razer", "Toshiba", "Huawei", "Xiaomi", "OnePlus", "Nokia", "Motorola",
	"Sony", "LG", "Panasonic", "Philips", "Canon", "Nikon", "Fujifilm", "GoPro",
	"Bose", "JBL", "Sennheiser", "Logitech", "Nintendo", "Dyson", "Rolex", "Omega",
	"Seiko", "Casio", "Garmin", "Fitbit", "Nike", "Adidas", "IKEA", "Fender",
	"Gibson", "Yamaha", "Roland", "Lego",
}

var brandPatterns = compileBrandPatterns(knownBrands)

func compileBrandPatterns(brands []string) []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, len(brands))
	for i, b := range brands {
		patterns[i] = regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(b) + `\b`)
	}
	return patterns
}

// findBrand returns the first known brand mentioned in text, or "".
func findBrand(text string) string {
	for i, re := range brandPatterns {
		if re.MatchString(text) {
			return knownBrands[i]
		}
	}
	return ""
}

// canonicalBrand maps a logo description such as "Apple Inc." onto a known
// brand name. Unknown logos are returned trimmed.
func canonicalBrand(logo string) string {
	logo = strings.TrimSpace(logo)
	if b := findBrand(logo); b != "" {
		return b
	}
	return logo
}

// detectBrand looks at the top logo first, then scans labels and OCR text.
func detectBrand(a *vision.Analysis) string {
	if len(a.Logos) > 0 && strings.TrimSpace(a.Logos[0].Text) != "" {
		return canonicalBrand(a.Logos[0].Text)
	}
	for _, l := range a.Labels {
		if b := findBrand(l.Text); b != "" {
			return b
		}
	}
	return findBrand(a.OCRText)
}

// brandFromWebEntities is used to backfill the brand after resolution.
func brandFromWebEntities(entities []vision.Annotation) string {
	for _, e := range entities {
		if f := findFamily(e.Text); f != nil {
			return f.brand
		}
		if b := findBrand(e.Text); b != "" {
			return b
		}
	}
	return ""
}

var phraseStopwords = map[string]bool{
	"inc": true, "inc.": true, "corp": true, "corp.": true, "ltd": true, "co": true,
	"the": true, "and": true, "for": true, "with": true, "by": true, "of": true,
	"store": true, "official": true, "logo": true, "brand": true,
}

// brandPhrase finds "<brand> <Token> [<Token>...]" in text and returns the brand
// and the product tokens following it (at most three). Tokens must look like
// product names: contain a digit, be capitalized, or be all caps.
func brandPhrase(text, brand string) (string, bool) {
	if brand == "" {
		return "", false
	}
	re := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(brand) + `\s+(.+)`)
	m := re.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}

	var tokens []string
	for _, tok := range strings.Fields(m[1]) {
		tok = strings.Trim(tok, `,.;:!?()[]"'`)
		if len(tokens) == 3 || tok == "" || !productToken(tok) {
			break
		}
		tokens = append(tokens, tok)
	}
	if len(tokens) == 0 {
		return "", false
	}
	return strings.Join(tokens, " "), true
}

func productToken(tok string) bool {
	lower := strings.ToLower(tok)
	if phraseStopwords[lower] || IsGeneric(lower) {
		return false
	}
	hasDigit, hasUpper := false, false
	for i, r := range tok {
		switch {
		case r >= '0' && r <= '9':
			hasDigit = true
		case r >= 'A' && r <= 'Z':
			if i == 0 {
				hasUpper = true
			}
		}
	}
	return hasDigit || hasUpper
}
