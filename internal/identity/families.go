package identity

import (
	"regexp"
	"strings"

	"github.com/raine/photo-pricer/internal/signals"
)

// family is a product line recognizable from a keyword alone.
type family struct {
	brand   string
	detect  *regexp.Regexp
	extract func(text string) (name, model string)
}

var families = []family{
	{brand: "Apple", detect: regexp.MustCompile(`(?i)\bmacbook`), extract: extractMacBook},
	{brand: "Apple", detect: regexp.MustCompile(`(?i)\biphone`), extract: extractIPhone},
	{brand: "Apple", detect: regexp.MustCompile(`(?i)\bipad`), extract: extractIPad},
	{brand: "Samsung", detect: regexp.MustCompile(`(?i)\bgalaxy\b`), extract: extractGalaxy},
	{brand: "Google", detect: regexp.MustCompile(`(?i)\bpixel\b`), extract: extractPixel},
}

func findFamily(text string) *family {
	for i := range families {
		if families[i].detect.MatchString(text) {
			return &families[i]
		}
	}
	return nil
}

var (
	macbookPattern = regexp.MustCompile(`(?i)\bmacbook(?:\s+(pro|air))?\b`)
	iphonePattern  = regexp.MustCompile(`(?i)\biphone\s*(\d{1,2}|x[rs]?|se)?(?:\s+(pro\s+max|pro|plus|mini|max))?\b`)
	ipadPattern    = regexp.MustCompile(`(?i)\bipad(?:\s+(pro|air|mini))?\b`)
	galaxyPattern  = regexp.MustCompile(`(?i)\bgalaxy\s+((?:note\s*|tab\s+|watch\s*)?[a-z]?\d{1,2}[a-z]?|watch|buds|tab)(?:\s+(ultra|plus|fe))?\b`)
	pixelPattern   = regexp.MustCompile(`(?i)\bpixel\s+(\d{1,2}a?)(?:\s+(pro\s+xl|pro|xl|fold))?\b`)
)

var wordForms = map[string]string{
	"pro": "Pro", "max": "Max", "plus": "Plus", "mini": "mini", "air": "Air",
	"ultra": "Ultra", "fe": "FE", "xl": "XL", "fold": "Fold", "note": "Note", "tab": "Tab",
	"watch": "Watch", "buds": "Buds",
}

// properCase normalizes product words: "pro max" -> "Pro Max", "s21" -> "S21".
func properCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		lower := strings.ToLower(w)
		if form, ok := wordForms[lower]; ok {
			words[i] = form
			continue
		}
		words[i] = strings.ToUpper(lower[:1]) + lower[1:]
	}
	return strings.Join(words, " ")
}

func joinNonEmpty(parts ...string) string {
	var out []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, " ")
}

// capacity prefers the storage figure; phones and tablets are sold by storage.
func capacity(text string) string {
	memory, storage := signals.ExtractCapacities(text)
	if storage != "" {
		return storage
	}
	return memory
}

func extractMacBook(text string) (string, string) {
	base := "MacBook"
	if m := macbookPattern.FindStringSubmatch(text); m != nil && m[1] != "" {
		base += " " + properCase(m[1])
	}
	chip := signals.ExtractChip(text)
	memory, _ := signals.ExtractCapacities(text)
	name := joinNonEmpty(base, chip, signals.ExtractScreenSize(text), memory)
	if chip != "" {
		return name, chip
	}
	return name, base
}

func extractIPhone(text string) (string, string) {
	base := "iPhone"
	if m := iphonePattern.FindStringSubmatch(text); m != nil {
		if m[1] != "" {
			base += " " + strings.ToUpper(m[1])
		}
		if m[2] != "" {
			base += " " + properCase(m[2])
		}
	}
	return joinNonEmpty(base, capacity(text)), base
}

func extractIPad(text string) (string, string) {
	base := "iPad"
	if m := ipadPattern.FindStringSubmatch(text); m != nil && m[1] != "" {
		base += " " + properCase(m[1])
	}
	return joinNonEmpty(base, signals.ExtractScreenSize(text), capacity(text)), base
}

func extractGalaxy(text string) (string, string) {
	base := "Galaxy"
	if m := galaxyPattern.FindStringSubmatch(text); m != nil {
		base += " " + properCase(m[1])
		if m[2] != "" {
			base += " " + properCase(m[2])
		}
	}
	return joinNonEmpty(base, capacity(text)), base
}

func extractPixel(text string) (string, string) {
	base := "Pixel"
	if m := pixelPattern.FindStringSubmatch(text); m != nil {
		base += " " + strings.ToLower(m[1])
		if m[2] != "" {
			base += " " + properCase(m[2])
		}
	}
	return joinNonEmpty(base, capacity(text)), base
}

// modelRules are tried in order on OCR text; the first match is the model.
var modelRules = []struct {
	pattern *regexp.Regexp
	format  func(m []string) string
}{
	{
		regexp.MustCompile(`(?i)\biphone\s*(\d{1,2}|x[rs]?|se)(?:\s+(pro\s+max|pro|plus|mini))?\b`),
		func(m []string) string { return joinNonEmpty("iPhone", strings.ToUpper(m[1]), properCase(m[2])) },
	},
	{
		regexp.MustCompile(`(?i)\bmacbook\s+(pro|air)\b`),
		func(m []string) string { return "MacBook " + properCase(m[1]) },
	},
	{
		regexp.MustCompile(`\b(M[1-4])(?:\s+(Pro|Max))?\b`),
		func(m []string) string { return joinNonEmpty(m[1], m[2]) },
	},
	{
		regexp.MustCompile(`(?i)\bgalaxy\s+s(\d{1,2})\b`),
		func(m []string) string { return "Galaxy S" + m[1] },
	},
	{
		regexp.MustCompile(`(?i)\bpixel\s+(\d{1,2})\b`),
		func(m []string) string { return "Pixel " + m[1] },
	},
	{
		regexp.MustCompile(`(?i)\bipad\s+(pro|air|mini)\b`),
		func(m []string) string { return "iPad " + properCase(m[1]) },
	},
}

// ExtractModel returns the model named in text by the first matching rule.
func ExtractModel(text string) string {
	for _, rule := range modelRules {
		if m := rule.pattern.FindStringSubmatch(text); m != nil {
			return rule.format(m)
		}
	}
	return ""
}

// laptopLines are checked per brand, most specific first.
var laptopLines = map[string][]string{
	"Apple":     {"MacBook Pro", "MacBook Air", "MacBook"},
	"Dell":      {"XPS", "Inspiron", "Latitude", "Alienware", "Vostro", "Precision"},
	"HP":        {"Spectre", "Envy", "Pavilion", "EliteBook", "ProBook", "Omen", "Chromebook"},
	"Lenovo":    {"ThinkPad", "IdeaPad", "Yoga", "Legion"},
	"Asus":      {"ZenBook", "VivoBook", "ROG", "TUF"},
	"Acer":      {"Aspire", "Swift", "Predator", "Nitro", "Chromebook"},
	"Microsoft": {"Surface Laptop", "Surface Pro", "Surface Book"},
	"Samsung":   {"Galaxy Book"},
	"Razer":     {"Blade"},
	"MSI":       {"Stealth", "Raider", "Prestige"},
}

// constructLaptopName builds "<brand> <line> [chip] [size] [memory]" when a
// product line of brand is mentioned in text.
func constructLaptopName(brand, text string) (string, bool) {
	for _, line := range laptopLines[brand] {
		re := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(line) + `\b`)
		if !re.MatchString(text) {
			continue
		}
		memory, _ := signals.ExtractCapacities(text)
		return joinNonEmpty(brand, line, signals.ExtractChip(text), signals.ExtractScreenSize(text), memory), true
	}
	return "", false
}
