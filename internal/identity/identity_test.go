package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/raine/photo-pricer/internal/vision"
)

func TestResolve_MacBookFromOCR(t *testing.T) {
	id := Resolve(&vision.Analysis{OCRText: "MacBook Pro M1 Pro 16GB"})

	assert.Contains(t, id.Name, "MacBook Pro")
	assert.Equal(t, "MacBook Pro M1 Pro 16GB", id.Name)
	assert.Equal(t, "M1 Pro", id.Model)
	assert.Equal(t, "Apple", id.Brand)
	assert.Equal(t, 0.95, id.Confidence)
	assert.True(t, id.TextDerived())
}

func TestResolve_BestGuess(t *testing.T) {
	id := Resolve(&vision.Analysis{
		Labels:          []vision.Annotation{{Text: "Watch", Score: 0.97}},
		BestGuessLabels: []string{"Vintage Rolex"},
	})

	assert.Equal(t, "Vintage Rolex", id.Name)
	assert.Equal(t, 0.85, id.Confidence)
	assert.Equal(t, SourceBestGuess, id.Source)
	assert.False(t, id.TextDerived())
}

func TestResolve_Families(t *testing.T) {
	tests := []struct {
		ocr   string
		name  string
		model string
		brand string
	}{
		{"iPhone 13 Pro Max 256GB", "iPhone 13 Pro Max 256GB", "iPhone 13 Pro Max", "Apple"},
		{"iphone xr", "iPhone XR", "iPhone XR", "Apple"},
		{"iPad Air 64GB", "iPad Air 64GB", "iPad Air", "Apple"},
		{"Samsung Galaxy S21 Ultra 128GB", "Galaxy S21 Ultra 128GB", "Galaxy S21 Ultra", "Samsung"},
		{"Google Pixel 7 Pro", "Pixel 7 Pro", "Pixel 7 Pro", "Google"},
		{"MacBook Air 13-inch", "MacBook Air 13-inch", "MacBook Air", "Apple"},
		{"Pixel", "Pixel", "Pixel", "Google"},
		{"GALAXY", "Galaxy", "Galaxy", "Samsung"},
		{"Galaxy Watch", "Galaxy Watch", "Galaxy Watch", "Samsung"},
		{"Galaxy Watch 5 44mm", "Galaxy Watch 5", "Galaxy Watch 5", "Samsung"},
	}
	for _, tt := range tests {
		t.Run(tt.ocr, func(t *testing.T) {
			id := Resolve(&vision.Analysis{OCRText: tt.ocr})
			assert.Equal(t, tt.name, id.Name)
			assert.Equal(t, tt.model, id.Model)
			assert.Equal(t, tt.brand, id.Brand)
			assert.Equal(t, SourceOCR, id.Source)
		})
	}
}

func TestResolve_BareFamilyBeatsLabels(t *testing.T) {
	id := Resolve(&vision.Analysis{
		Labels:  []vision.Annotation{{Text: "Mobile phone", Score: 0.9}},
		OCRText: "Pixel",
	})

	assert.Equal(t, "Pixel", id.Name)
	assert.Equal(t, "Google", id.Brand)
	assert.Equal(t, 0.95, id.Confidence)
	assert.Equal(t, SourceOCR, id.Source)
}

func TestResolve_OCRFamilyIgnoresConflictingSignals(t *testing.T) {
	id := Resolve(&vision.Analysis{
		Logos:           []vision.Annotation{{Text: "Sony", Score: 0.95}},
		Labels:          []vision.Annotation{{Text: "Headphones", Score: 0.9}},
		BestGuessLabels: []string{"Vintage Rolex"},
		WebEntities:     []vision.Annotation{{Text: "Galaxy S21", Score: 0.9}},
		OCRText:         "iPhone 12 64GB",
	})

	assert.Equal(t, "iPhone 12 64GB", id.Name)
	assert.Equal(t, "Apple", id.Brand)
	assert.Equal(t, "iPhone 12", id.Model)
	assert.Equal(t, 0.95, id.Confidence)
	assert.Equal(t, SourceOCR, id.Source)
}

func TestResolve_BrandPhraseFromOCR(t *testing.T) {
	id := Resolve(&vision.Analysis{
		Logos:   []vision.Annotation{{Text: "Sony", Score: 0.9}},
		OCRText: "SONY WH-1000XM4 wireless headphones",
	})

	assert.Equal(t, "Sony WH-1000XM4", id.Name)
	assert.Equal(t, "Sony", id.Brand)
	assert.Equal(t, "WH-1000XM4", id.Model)
	assert.Equal(t, 0.95, id.Confidence)
}

func TestResolve_WebEntityFamily(t *testing.T) {
	id := Resolve(&vision.Analysis{
		Labels:      []vision.Annotation{{Text: "Mobile phone", Score: 0.9}},
		WebEntities: []vision.Annotation{{Text: "Smartphone", Score: 0.8}, {Text: "iPhone 12", Score: 0.7}},
	})

	assert.Equal(t, "iPhone 12", id.Name)
	assert.Equal(t, "iPhone 12", id.Model)
	assert.Equal(t, 0.90, id.Confidence)
	assert.Equal(t, SourceWebEntity, id.Source)
}

func TestResolve_WebEntityModelFromOCR(t *testing.T) {
	id := Resolve(&vision.Analysis{
		WebEntities: []vision.Annotation{{Text: "MacBook Pro", Score: 0.8}},
		OCRText:     "Chip: M2 Max",
	})

	assert.Equal(t, "MacBook Pro", id.Name)
	assert.Equal(t, "M2 Max", id.Model)
	assert.Equal(t, SourceWebEntity, id.Source)
}

func TestResolve_BrandedLaptop(t *testing.T) {
	tests := []struct {
		name       string
		analysis   vision.Analysis
		want       string
		confidence float64
		source     Source
	}{
		{
			name: "constructed",
			analysis: vision.Analysis{
				Logos:  []vision.Annotation{{Text: "Dell", Score: 0.9}},
				Labels: []vision.Annotation{
					{Text: "Laptop", Score: 0.95},
					{Text: "Dell XPS", Score: 0.8},
					{Text: "Intel Core i7", Score: 0.6},
				},
			},
			want:       "Dell XPS Core i7",
			confidence: 0.85,
			source:     SourceBrandedLaptop,
		},
		{
			name: "best guess",
			analysis: vision.Analysis{
				Logos:           []vision.Annotation{{Text: "Lenovo", Score: 0.9}},
				Labels:          []vision.Annotation{{Text: "Laptop", Score: 0.95}},
				BestGuessLabels: []string{"lenovo 14 inch"},
			},
			want:       "lenovo 14 inch",
			confidence: 0.80,
			source:     SourceLaptopBestGuess,
		},
		{
			name: "netbook best guess falls through to web entity",
			analysis: vision.Analysis{
				Logos:           []vision.Annotation{{Text: "Asus", Score: 0.9}},
				Labels:          []vision.Annotation{{Text: "Netbook", Score: 0.95}},
				BestGuessLabels: []string{"netbook"},
				WebEntities:     []vision.Annotation{{Text: "Eee PC"}},
			},
			want:       "Eee PC",
			confidence: 0.75,
			source:     SourceLaptopWebEntity,
		},
		{
			name: "default",
			analysis: vision.Analysis{
				Logos:  []vision.Annotation{{Text: "Acer", Score: 0.9}},
				Labels: []vision.Annotation{{Text: "Computer", Score: 0.95}},
			},
			want:       "Acer Laptop",
			confidence: 0.70,
			source:     SourceLaptopDefault,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := Resolve(&tt.analysis)
			assert.Equal(t, tt.want, id.Name)
			assert.Equal(t, tt.confidence, id.Confidence)
			assert.Equal(t, tt.source, id.Source)
			assert.NotEmpty(t, id.Brand)
		})
	}
}

func TestResolve_Fallbacks(t *testing.T) {
	tests := []struct {
		name       string
		analysis   *vision.Analysis
		want       string
		confidence float64
	}{
		{"generic best guess skipped", &vision.Analysis{
			BestGuessLabels: []string{"laptop computer"},
			WebEntities:     []vision.Annotation{{Text: "Office chair", Score: 0.66}},
		}, "Office chair", 0.66},
		{"web entity without score", &vision.Analysis{
			WebEntities: []vision.Annotation{{Text: "Office chair"}},
		}, "Office chair", 0.75},
		{"object", &vision.Analysis{
			Objects: []vision.Annotation{{Text: "Bicycle", Score: 0.91}},
			Labels:  []vision.Annotation{{Text: "Wheel", Score: 0.99}},
		}, "Bicycle", 0.91},
		{"object without score", &vision.Analysis{
			Objects: []vision.Annotation{{Text: "Bicycle"}},
		}, "Bicycle", 0.70},
		{"label", &vision.Analysis{
			Labels: []vision.Annotation{{Text: "Wheel", Score: 0.88}},
		}, "Wheel", 0.88},
		{"label without score", &vision.Analysis{
			Labels: []vision.Annotation{{Text: "Wheel"}},
		}, "Wheel", 0.60},
		{"score capped", &vision.Analysis{
			Labels: []vision.Annotation{{Text: "Wheel", Score: 1.7}},
		}, "Wheel", 1},
		{"nothing", &vision.Analysis{}, UnknownName, 0.50},
		{"nil", nil, UnknownName, 0.50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := Resolve(tt.analysis)
			assert.Equal(t, tt.want, id.Name)
			assert.Equal(t, tt.confidence, id.Confidence)
			assert.GreaterOrEqual(t, id.Confidence, 0.0)
			assert.LessOrEqual(t, id.Confidence, 1.0)
		})
	}
}

func TestResolve_BrandBackfill(t *testing.T) {
	id := Resolve(&vision.Analysis{
		BestGuessLabels: []string{"Vintage wristwatch"},
		WebEntities:     []vision.Annotation{{Text: "Watch"}, {Text: "Rolex Submariner"}},
	})
	assert.Equal(t, "Rolex", id.Brand)
	assert.Equal(t, "Vintage wristwatch", id.Name)
}

func TestResolve_ModelFromOCR(t *testing.T) {
	id := Resolve(&vision.Analysis{
		BestGuessLabels: []string{"Apple laptop"},
		OCRText:         "Designed by Apple in California. Chip: M2 Max",
	})
	assert.Equal(t, "M2 Max", id.Model)
}

func TestExtractModel(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"iPhone 14 Pro and MacBook Pro", "iPhone 14 Pro"},
		{"macbook air with M2", "MacBook Air"},
		{"Apple M1 Pro chip", "M1 Pro"},
		{"galaxy s23 for sale", "Galaxy S23"},
		{"pixel 8 case", "Pixel 8"},
		{"ipad mini 6", "iPad mini"},
		{"no model here", ""},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractModel(tt.text))
		})
	}
}

func TestIsGeneric(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"Laptop", true},
		{"netbook", true},
		{"Electronics", true},
		{"Laptop computer", true},
		{"Unknown Item", true},
		{"", true},
		{"Vintage Rolex", false},
		{"Apple laptop", false},
		{"MacBook Pro", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsGeneric(tt.name))
		})
	}
}
