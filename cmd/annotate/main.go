package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/raine/photo-pricer/internal/config"
	"github.com/raine/photo-pricer/internal/identity"
	"github.com/raine/photo-pricer/internal/listing"
	"github.com/raine/photo-pricer/internal/recognizer"
	"github.com/raine/photo-pricer/internal/vision"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <image-path> [cloudvision|gemini|both]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nEnvironment variables:\n")
		fmt.Fprintf(os.Stderr, "  VISION_API_KEY - Required for Cloud Vision\n")
		fmt.Fprintf(os.Stderr, "  GEMINI_API_KEY - Required for Gemini\n")
		os.Exit(1)
	}

	imagePath := os.Args[1]
	provider := "both"
	if len(os.Args) >= 3 {
		provider = os.Args[2]
	}

	imageData, err := os.ReadFile(imagePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read image: %v\n", err)
		os.Exit(1)
	}

	config.LoadEnvFile()
	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	ctx := context.Background()

	switch provider {
	case config.AnnotatorCloudVision, config.AnnotatorGemini:
		run(ctx, cfg, provider, imageData)
	case "both":
		run(ctx, cfg, config.AnnotatorCloudVision, imageData)
		fmt.Println("\n" + strings.Repeat("-", 50) + "\n")
		run(ctx, cfg, config.AnnotatorGemini, imageData)
	default:
		fmt.Fprintf(os.Stderr, "Unknown provider: %s (use cloudvision, gemini, or both)\n", provider)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, provider string, imageData []byte) {
	fmt.Printf("=== %s ===\n", strings.ToUpper(provider))

	c := *cfg
	c.Annotator = provider
	annotator, err := recognizer.NewAnnotator(ctx, &c, nil)
	if err != nil {
		fmt.Printf("Error creating annotator: %v\n", err)
		return
	}

	analysis, err := annotator.Annotate(ctx, imageData)
	if err != nil {
		fmt.Printf("Error annotating image: %v\n", err)
		return
	}

	printAnalysis(analysis)
}

func printAnalysis(a *vision.Analysis) {
	fmt.Printf("Labels:      %s\n", strings.Join(vision.Texts(a.Labels), ", "))
	fmt.Printf("Objects:     %s\n", strings.Join(vision.Texts(a.Objects), ", "))
	fmt.Printf("Logos:       %s\n", strings.Join(vision.Texts(a.Logos), ", "))
	fmt.Printf("Entities:    %s\n", strings.Join(vision.Texts(a.WebEntities), ", "))
	fmt.Printf("Best guess:  %s\n", strings.Join(a.BestGuessLabels, ", "))
	fmt.Printf("Pages:       %d\n", len(a.MatchingPages))
	fmt.Printf("OCR:         %q\n", a.OCRText)
	fmt.Println()

	id := identity.Resolve(a)
	fmt.Printf("Name:        %s\n", id.Name)
	fmt.Printf("Brand:       %s\n", id.Brand)
	fmt.Printf("Model:       %s\n", id.Model)
	fmt.Printf("Confidence:  %.2f (%s)\n", id.Confidence, id.Source)
	fmt.Printf("Category:    %s\n", listing.Categorize(a))
	fmt.Printf("Condition:   %s\n", listing.InferCondition(a))
}
