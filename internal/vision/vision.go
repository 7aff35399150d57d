// Package vision annotates product photos. Cloud Vision and Gemini both
// produce the same Analysis, and CachedAnnotator keeps results per image hash.
package vision

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
)

// Annotation is a piece of text the annotation service detected, with its score.
// A zero score means the service did not report one.
type Annotation struct {
	Text  string  `json:"text"`
	Score float64 `json:"score,omitempty"`
}

// Page is a web page that contains an image matching the photo.
type Page struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}

// Analysis is the structured output of one image annotation request.
// Every slice keeps the service's own ranking (best first).
type Analysis struct {
	Labels          []Annotation `json:"labels"`
	Objects         []Annotation `json:"objects"`
	OCRText         string       `json:"ocrText"`
	WebEntities     []Annotation `json:"webEntities"`
	BestGuessLabels []string     `json:"bestGuessLabels"`
	MatchingPages   []Page       `json:"matchingPages"`
	Logos           []Annotation `json:"logos"`
}

// Annotator turns image bytes into an Analysis.
type Annotator interface {
	Annotate(ctx context.Context, image []byte) (*Analysis, error)
}

// Maximum results requested per feature.
const (
	MaxLabels      = 20
	MaxObjects     = 20
	MaxTextBlocks  = 10
	MaxWebEntities = 10
	MaxLogos       = 5
)

// DecodeImage decodes a base64 image, accepting an optional
// "data:image/jpeg;base64," prefix.
func DecodeImage(encoded string) ([]byte, error) {
	encoded = strings.TrimSpace(encoded)
	if strings.HasPrefix(encoded, "data:") {
		idx := strings.Index(encoded, ",")
		if idx == -1 {
			return nil, fmt.Errorf("malformed data URL")
		}
		encoded = encoded[idx+1:]
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64 image: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("image is empty")
	}
	return data, nil
}

// Texts returns the text of each annotation.
func Texts(annotations []Annotation) []string {
	out := make([]string, 0, len(annotations))
	for _, a := range annotations {
		out = append(out, a.Text)
	}
	return out
}
