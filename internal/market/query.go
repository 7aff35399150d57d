package market

import (
	"strings"

	"github.com/raine/photo-pricer/internal/identity"
)

// FallbackQuery is used when nothing usable identifies the item.
const FallbackQuery = "laptop for sale"

// BuildQuery turns a resolved identity into the seed query for market search.
func BuildQuery(name, brand, model string) string {
	name = strings.TrimSpace(name)
	brand = strings.TrimSpace(brand)
	model = strings.TrimSpace(model)
	generic := identity.IsGeneric(name)

	switch {
	case brand != "" && model != "":
		return brand + " " + model + " used for sale"
	case brand != "" && !generic && !strings.Contains(strings.ToLower(name), strings.ToLower(brand)):
		if len(strings.Fields(name)) == 1 {
			return brand + " " + name + " for sale"
		}
		return brand + " " + name + " used for sale"
	case brand != "" && generic:
		if strings.EqualFold(brand, "Apple") {
			return "Apple MacBook Pro used for sale"
		}
		return brand + " laptop used for sale"
	case !generic:
		return name + " used for sale"
	}
	return FallbackQuery
}

// corePhrase strips the trailing "used for sale" / "for sale" from a seed.
func corePhrase(seed string) string {
	seed = strings.TrimSpace(seed)
	lower := strings.ToLower(seed)
	for _, suffix := range []string{" used for sale", " for sale"} {
		if strings.HasSuffix(lower, suffix) {
			return strings.TrimSpace(seed[:len(seed)-len(suffix)])
		}
	}
	return seed
}

// Variants derives the queries issued for one pass, in order.
func Variants(seed string, pass Pass, condition string) []string {
	core := corePhrase(seed)
	if core == "" {
		return nil
	}
	if pass == PassWeb {
		return []string{core, core + " used", core + " price", core + " listing"}
	}
	buy := "buy " + core
	if condition != "" {
		buy += " " + condition
	}
	return []string{core + " for sale", core + " price", buy, core + " marketplace"}
}
