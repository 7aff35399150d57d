// Package listing turns a recognized item into listing material: a
// description, a category, a condition and category-specific attributes.
package listing

import (
	"regexp"
	"strings"

	"github.com/raine/photo-pricer/internal/identity"
	"github.com/raine/photo-pricer/internal/signals"
	"github.com/raine/photo-pricer/internal/vision"
)

const (
	// MaxDescriptionLength is measured in characters (runes).
	MaxDescriptionLength = 500

	maxDescriptionLabels = 3
	ocrExcerptLength     = 150
)

var genericLabels = map[string]bool{
	"product": true, "object": true, "thing": true, "item": true, "goods": true,
}

var qualityWords = []string{"new", "used", "vintage", "modern", "antique", "refurbished", "excellent", "good"}

var whitespace = regexp.MustCompile(`\s+`)

// Describe builds a short listing description from the annotations and the
// resolved identity.
func Describe(a *vision.Analysis, id identity.Identity) string {
	if a == nil {
		a = &vision.Analysis{}
	}
	var parts []string

	name := strings.TrimSpace(id.Name)
	if id.Brand != "" && !strings.Contains(strings.ToLower(name), strings.ToLower(id.Brand)) {
		name = strings.TrimSpace(id.Brand + " " + name)
	}
	if name != "" {
		parts = append(parts, name)
	}

	var labels []string
	for _, l := range a.Labels {
		if len(labels) == maxDescriptionLabels {
			break
		}
		text := strings.TrimSpace(l.Text)
		if text == "" || genericLabels[strings.ToLower(text)] {
			continue
		}
		labels = append(labels, text)
	}
	if len(labels) > 0 {
		parts = append(parts, strings.Join(labels, ", "))
	}

	if len(a.WebEntities) > 0 {
		top := strings.TrimSpace(a.WebEntities[0].Text)
		if top != "" && !strings.EqualFold(top, id.Name) && !strings.EqualFold(top, name) {
			parts = append(parts, top)
		}
	}

	ocr := normalizeSpace(a.OCRText)
	if len(strings.Fields(ocr)) > 3 {
		parts = append(parts, truncateRunes(ocr, ocrExcerptLength))
	}

	if word := qualityWord(a.Labels); word != "" {
		parts = append(parts, "Condition: "+word)
	}

	if len(parts) == 0 {
		fallback := id.Name
		if fallback == "" {
			fallback = identity.UnknownName
		}
		return fallback + " - Product for sale"
	}

	desc := normalizeSpace(strings.Join(parts, ". "))
	if r := []rune(desc); len(r) > MaxDescriptionLength {
		desc = string(r[:MaxDescriptionLength-3]) + "..."
	}
	return desc
}

func qualityWord(labels []vision.Annotation) string {
	var words []string
	for _, l := range labels {
		words = append(words, strings.Fields(strings.ToLower(l.Text))...)
	}
	for _, q := range qualityWords {
		for _, w := range words {
			if w == q {
				return q
			}
		}
	}
	return ""
}

func normalizeSpace(s string) string {
	return strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return strings.TrimSpace(string(r[:n]))
}

const (
	SpecBrand = "brand"
	SpecModel = "model"
)

// Specifications collects technical details from OCR and web entity text,
// plus the identity's brand and model.
func Specifications(a *vision.Analysis, id identity.Identity) map[string]string {
	var text string
	if a != nil {
		text = a.OCRText + "\n" + strings.Join(vision.Texts(a.WebEntities), "\n")
	}
	specs := signals.ExtractSpecifications(text)
	if id.Brand != "" {
		specs[SpecBrand] = id.Brand
	}
	if id.Model != "" {
		specs[SpecModel] = id.Model
	}
	return specs
}
