// Package identity turns image annotations into a product identity: a
// human-readable name, an optional brand and model, and a confidence.
package identity

import (
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/raine/photo-pricer/internal/vision"
)

// Source records which resolution rule produced an identity.
type Source string

const (
	SourceOCR             Source = "ocr"
	SourceWebEntity       Source = "web-entity"
	SourceBrandedLaptop   Source = "branded-laptop"
	SourceLaptopBestGuess Source = "laptop-best-guess"
	SourceLaptopWebEntity Source = "laptop-web-entity"
	SourceLaptopDefault   Source = "laptop-default"
	SourceBestGuess       Source = "best-guess"
	SourceTopWebEntity    Source = "top-web-entity"
	SourceObject          Source = "object"
	SourceLabel           Source = "label"
	SourceUnknown         Source = "unknown"
)

// UnknownName is used when nothing in the annotations names the item.
const UnknownName = "Unknown Item"

const (
	defaultWebEntityScore = 0.75
	defaultObjectScore    = 0.70
	defaultLabelScore     = 0.60
)

type Identity struct {
	Name       string  `json:"name"`
	Brand      string  `json:"brand,omitempty"`
	Model      string  `json:"model,omitempty"`
	Confidence float64 `json:"confidence"`
	Source     Source  `json:"source"`
}

// TextDerived reports whether the identity was read off the item itself.
func (id Identity) TextDerived() bool {
	return id.Source == SourceOCR
}

var genericPattern = regexp.MustCompile(`^(?:netbook|laptop|computer|device|electronic|product|item|object|thing)\w*\b`)

// IsGeneric reports whether name is a category word rather than a product,
// e.g. "Laptop", "Netbook", "Electronics" or "Unknown Item".
func IsGeneric(name string) bool {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "" || n == strings.ToLower(UnknownName) {
		return true
	}
	return genericPattern.MatchString(n)
}

var laptopWords = regexp.MustCompile(`(?i)\b(?:laptop|notebook|netbook|computer|macbook|chromebook|ultrabook)`)

// resolution carries what every rule looks at.
type resolution struct {
	a        *vision.Analysis
	brand    string
	combined string
}

type rule struct {
	name  string
	apply func(r *resolution) (Identity, bool)
}

// rules are evaluated in order; the first match wins.
var rules = []rule{
	{"ocr", fromOCR},
	{"web entity", fromWebEntityFamily},
	{"branded laptop", fromBrandedLaptop},
	{"best guess", fromBestGuess},
	{"top web entity", fromTopWebEntity},
	{"object", fromTopObject},
	{"label", fromTopLabel},
	{"unknown", func(*resolution) (Identity, bool) {
		return Identity{Name: UnknownName, Confidence: 0.50, Source: SourceUnknown}, true
	}},
}

// Resolve picks the most specific identity the annotations support.
func Resolve(a *vision.Analysis) Identity {
	if a == nil {
		a = &vision.Analysis{}
	}
	r := &resolution{a: a, brand: detectBrand(a), combined: combinedText(a)}

	var id Identity
	for _, rl := range rules {
		if got, ok := rl.apply(r); ok {
			log.Debug().Str("rule", rl.name).Str("name", got.Name).Msg("identity resolved")
			id = got
			break
		}
	}

	if id.Brand == "" {
		id.Brand = r.brand
	}
	if id.Brand == "" {
		id.Brand = brandFromWebEntities(a.WebEntities)
	}
	// Only the OCR rule reads the model off the item; otherwise OCR wins.
	if id.Source != SourceOCR || id.Model == "" {
		if m := ExtractModel(a.OCRText); m != "" {
			id.Model = m
		}
	}
	id.Confidence = clamp(id.Confidence)
	return id
}

func combinedText(a *vision.Analysis) string {
	var parts []string
	parts = append(parts, vision.Texts(a.Labels)...)
	parts = append(parts, vision.Texts(a.Objects)...)
	parts = append(parts, vision.Texts(a.WebEntities)...)
	parts = append(parts, a.BestGuessLabels...)
	parts = append(parts, a.OCRText)
	return strings.Join(parts, "\n")
}

func fromText(text, brand string, confidence float64, source Source) (Identity, bool) {
	if f := findFamily(text); f != nil {
		name, model := f.extract(text)
		return Identity{Name: name, Brand: f.brand, Model: model, Confidence: confidence, Source: source}, true
	}
	if phrase, ok := brandPhrase(text, brand); ok {
		return Identity{Name: brand + " " + phrase, Brand: brand, Model: phrase, Confidence: confidence, Source: source}, true
	}
	return Identity{}, false
}

func fromOCR(r *resolution) (Identity, bool) {
	if strings.TrimSpace(r.a.OCRText) == "" {
		return Identity{}, false
	}
	return fromText(r.a.OCRText, r.brand, 0.95, SourceOCR)
}

func fromWebEntityFamily(r *resolution) (Identity, bool) {
	for _, e := range r.a.WebEntities {
		if id, ok := fromText(e.Text, r.brand, 0.90, SourceWebEntity); ok {
			return id, true
		}
	}
	return Identity{}, false
}

func fromBrandedLaptop(r *resolution) (Identity, bool) {
	if r.brand == "" || !laptopWords.MatchString(r.combined) {
		return Identity{}, false
	}
	if name, ok := constructLaptopName(r.brand, r.combined); ok {
		return Identity{Name: name, Brand: r.brand, Confidence: 0.85, Source: SourceBrandedLaptop}, true
	}
	if bg := bestGuess(r.a); bg != "" && !strings.EqualFold(bg, "netbook") {
		return Identity{Name: bg, Brand: r.brand, Confidence: 0.80, Source: SourceLaptopBestGuess}, true
	}
	if e, ok := topAnnotation(r.a.WebEntities); ok {
		return Identity{Name: e.Text, Brand: r.brand, Confidence: scoreOr(e.Score, defaultWebEntityScore), Source: SourceLaptopWebEntity}, true
	}
	return Identity{Name: r.brand + " Laptop", Brand: r.brand, Confidence: 0.70, Source: SourceLaptopDefault}, true
}

func fromBestGuess(r *resolution) (Identity, bool) {
	bg := bestGuess(r.a)
	if bg == "" || IsGeneric(bg) {
		return Identity{}, false
	}
	return Identity{Name: bg, Confidence: 0.85, Source: SourceBestGuess}, true
}

func fromTopWebEntity(r *resolution) (Identity, bool) {
	e, ok := topAnnotation(r.a.WebEntities)
	if !ok {
		return Identity{}, false
	}
	return Identity{Name: e.Text, Confidence: scoreOr(e.Score, defaultWebEntityScore), Source: SourceTopWebEntity}, true
}

func fromTopObject(r *resolution) (Identity, bool) {
	o, ok := topAnnotation(r.a.Objects)
	if !ok {
		return Identity{}, false
	}
	return Identity{Name: o.Text, Confidence: scoreOr(o.Score, defaultObjectScore), Source: SourceObject}, true
}

func fromTopLabel(r *resolution) (Identity, bool) {
	l, ok := topAnnotation(r.a.Labels)
	if !ok {
		return Identity{}, false
	}
	return Identity{Name: l.Text, Confidence: scoreOr(l.Score, defaultLabelScore), Source: SourceLabel}, true
}

func bestGuess(a *vision.Analysis) string {
	if len(a.BestGuessLabels) == 0 {
		return ""
	}
	return strings.TrimSpace(a.BestGuessLabels[0])
}

func topAnnotation(list []vision.Annotation) (vision.Annotation, bool) {
	if len(list) == 0 || strings.TrimSpace(list[0].Text) == "" {
		return vision.Annotation{}, false
	}
	return list[0], true
}

// scoreOr treats a non-positive score as missing.
func scoreOr(score, def float64) float64 {
	if score <= 0 {
		return def
	}
	return score
}

func clamp(c float64) float64 {
	switch {
	case c < 0:
		return 0
	case c > 1:
		return 1
	}
	return c
}
