package listing

import (
	"regexp"
	"strings"

	"github.com/raine/photo-pricer/internal/vision"
)

// DefaultCategory is used when no keyword matches.
const DefaultCategory = "Electronics"

type categoryRule struct {
	category string
	pattern  *regexp.Regexp
}

// categoryRule matches keywords as whole words with an optional plural
// ending, so "toy" matches "Toys" but not "Toyota".
func newCategoryRule(category string, keywords ...string) categoryRule {
	quoted := make([]string, len(keywords))
	for i, kw := range keywords {
		quoted[i] = regexp.QuoteMeta(kw)
	}
	return categoryRule{
		category: category,
		pattern:  regexp.MustCompile(`\b(?:` + strings.Join(quoted, "|") + `)(?:e?s)?\b`),
	}
}

// categoryRules are scanned in order. Phones must be checked before cameras.
var categoryRules = []categoryRule{
	newCategoryRule("Computers", "laptop", "notebook", "netbook", "computer", "macbook", "chromebook", "desktop", "monitor"),
	newCategoryRule("Tablets", "tablet", "ipad", "e-reader", "kindle"),
	newCategoryRule("Audio", "headphone", "earphone", "earbud", "speaker", "microphone", "audio", "amplifier", "turntable"),
	newCategoryRule("Phones", "phone", "smartphone", "cellphone", "telephone", "iphone", "galaxy", "pixel"),
	newCategoryRule("Cameras", "camera", "lens", "dslr", "camcorder", "tripod"),
	newCategoryRule("Video Games", "video game", "game console", "playstation", "xbox", "nintendo", "gamepad"),
	newCategoryRule("Jewelry & Watches", "watch", "wristwatch", "jewelry", "jewellery", "necklace", "bracelet", "earring", "pendant", "gemstone"),
	newCategoryRule("Musical Instruments", "guitar", "piano", "drum", "violin", "musical instrument", "saxophone", "ukulele", "synthesizer"),
	newCategoryRule("Clothing & Shoes", "clothing", "shirt", "t-shirt", "dress", "skirt", "jacket", "shoe", "sneaker", "jeans", "coat", "handbag"),
	newCategoryRule("Furniture", "furniture", "chair", "sofa", "couch", "desk", "cabinet", "shelf", "shelves", "wardrobe"),
	newCategoryRule("Books & Media", "book", "novel", "vinyl", "dvd", "blu-ray", "comic"),
	newCategoryRule("Toys", "toy", "lego", "doll", "puzzle", "action figure", "board game"),
	newCategoryRule("Sports & Outdoors", "bicycle", "bike", "sport", "sporting goods", "tennis", "golf", "fitness", "camping", "ski"),
	newCategoryRule("Home & Kitchen", "kitchen", "appliance", "cookware", "blender", "vacuum", "lamp", "tableware"),
	newCategoryRule("Electronics", "electronic", "gadget"),
}

// Categorize picks a marketplace category from label and web entity text.
func Categorize(a *vision.Analysis) string {
	if a == nil {
		return DefaultCategory
	}
	text := strings.ToLower(strings.Join(append(vision.Texts(a.Labels), vision.Texts(a.WebEntities)...), " "))
	for _, rule := range categoryRules {
		if rule.pattern.MatchString(text) {
			return rule.category
		}
	}
	return DefaultCategory
}

// DefaultCondition is used when nothing indicates the item's condition.
const DefaultCondition = "used"

var conditionRules = []struct {
	condition string
	keywords  []string
}{
	{"new", []string{"new", "unopened", "sealed"}},
	{"like new", []string{"like new", "excellent", "mint"}},
	{"very good", []string{"very good", "great condition"}},
	{"good", []string{"good", "decent"}},
	{"fair", []string{"fair", "acceptable"}},
	{"poor", []string{"poor", "damaged", "broken"}},
}

// InferCondition scans labels and OCR text for condition keywords. Rules are
// checked in order, so text saying "like new" reports "new".
func InferCondition(a *vision.Analysis) string {
	if a == nil {
		return DefaultCondition
	}
	text := strings.ToLower(strings.Join(vision.Texts(a.Labels), " ") + " " + a.OCRText)
	for _, rule := range conditionRules {
		for _, kw := range rule.keywords {
			if strings.Contains(text, kw) {
				return rule.condition
			}
		}
	}
	return DefaultCondition
}
