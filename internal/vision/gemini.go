package vision

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lithammer/dedent"
	"github.com/rs/zerolog/log"
	"google.golang.org/genai"
)

const geminiModel = "gemini-2.5-flash"

var geminiPrompt = strings.TrimSpace(dedent.Dedent(`
	Annotate this photo of an item someone wants to sell, the way an image
	annotation service would.

	Respond in JSON with these fields:
	- labels: up to 20 objects {"text", "score"} describing what is visible, best first
	- objects: up to 20 {"text", "score"} for distinct physical objects
	- ocrText: all text printed on the item or its packaging, verbatim ("" if none)
	- webEntities: up to 10 {"text", "score"} naming the specific product, brand or model
	- bestGuessLabels: up to 3 short strings naming the product as precisely as possible
	- logos: up to 5 {"text", "score"} for brand logos visible in the photo

	Scores are between 0 and 1. Use empty arrays when nothing applies.
	Respond ONLY with the JSON object, no markdown or other text.
`))

// GeminiAnnotator produces an Analysis by asking Gemini to act as the
// annotation service. It never returns matching pages.
type GeminiAnnotator struct {
	client *genai.Client
}

// NewGeminiAnnotator creates an annotator authenticated with apiKey.
func NewGeminiAnnotator(ctx context.Context, apiKey string) (*GeminiAnnotator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is not set")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiAnnotator{client: client}, nil
}

// Annotate implements Annotator.
func (g *GeminiAnnotator) Annotate(ctx context.Context, image []byte) (*Analysis, error) {
	if len(image) == 0 {
		return nil, fmt.Errorf("no image provided")
	}

	parts := []*genai.Part{
		genai.NewPartFromText(geminiPrompt),
		{InlineData: &genai.Blob{Data: image, MIMEType: "image/jpeg"}},
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	result, err := g.client.Models.GenerateContent(ctx, geminiModel, contents, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}
	if len(result.Candidates) == 0 || result.Candidates[0].Content == nil || len(result.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("no response from Gemini")
	}

	analysis, err := parseAnalysis(result.Text())
	if err != nil {
		return nil, err
	}

	if result.UsageMetadata != nil {
		log.Info().
			Str("model", geminiModel).
			Int32("inputTokens", result.UsageMetadata.PromptTokenCount).
			Int32("outputTokens", result.UsageMetadata.CandidatesTokenCount).
			Int("labels", len(analysis.Labels)).
			Msg("gemini annotation")
	}

	return analysis, nil
}

// extractJSONObject returns the outermost {...} in text, tolerating markdown
// fences around it.
func extractJSONObject(text string) (string, error) {
	text = strings.TrimSpace(text)
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end <= start {
		return "", fmt.Errorf("no JSON object found in response: %s", text)
	}
	return text[start : end+1], nil
}

func parseAnalysis(text string) (*Analysis, error) {
	jsonStr, err := extractJSONObject(text)
	if err != nil {
		return nil, fmt.Errorf("failed to parse response JSON: %w", err)
	}
	var a Analysis
	if err := json.Unmarshal([]byte(jsonStr), &a); err != nil {
		return nil, fmt.Errorf("failed to parse response JSON: %w (response: %s)", err, jsonStr)
	}
	a.OCRText = strings.TrimSpace(a.OCRText)
	return &a, nil
}
