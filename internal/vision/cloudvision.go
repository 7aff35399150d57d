package vision

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
)

const CloudVisionBaseURL = "https://vision.googleapis.com"

// CloudVisionClient calls the Google Cloud Vision images:annotate endpoint.
type CloudVisionClient struct {
	httpClient *resty.Client
	apiKey     string
}

// NewCloudVisionClient creates a client. baseURL may be empty to use the
// public endpoint (tests point it at an httptest server).
func NewCloudVisionClient(apiKey, baseURL string) (*CloudVisionClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("cloud vision api key is not set")
	}
	if baseURL == "" {
		baseURL = CloudVisionBaseURL
	}
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(30*time.Second).
		SetHeader("Accept", "application/json")
	return &CloudVisionClient{httpClient: httpClient, apiKey: apiKey}, nil
}

type annotateRequest struct {
	Requests []imageRequest `json:"requests"`
}

type imageRequest struct {
	Image    imageContent `json:"image"`
	Features []feature    `json:"features"`
}

type imageContent struct {
	Content string `json:"content"`
}

type feature struct {
	Type       string `json:"type"`
	MaxResults int    `json:"maxResults"`
}

type annotateResponse struct {
	Responses []imageResponse `json:"responses"`
}

type entityAnnotation struct {
	Description string  `json:"description"`
	Score       float64 `json:"score"`
}

type imageResponse struct {
	LabelAnnotations []entityAnnotation `json:"labelAnnotations"`
	LogoAnnotations  []entityAnnotation `json:"logoAnnotations"`
	TextAnnotations  []entityAnnotation `json:"textAnnotations"`
	LocalizedObjects []struct {
		Name  string  `json:"name"`
		Score float64 `json:"score"`
	} `json:"localizedObjectAnnotations"`
	FullTextAnnotation *struct {
		Text string `json:"text"`
	} `json:"fullTextAnnotation"`
	WebDetection *struct {
		WebEntities []struct {
			EntityID    string  `json:"entityId"`
			Score       float64 `json:"score"`
			Description string  `json:"description"`
		} `json:"webEntities"`
		BestGuessLabels []struct {
			Label string `json:"label"`
		} `json:"bestGuessLabels"`
		PagesWithMatchingImages []struct {
			URL       string `json:"url"`
			PageTitle string `json:"pageTitle"`
		} `json:"pagesWithMatchingImages"`
	} `json:"webDetection"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Annotate sends the image with label, object, text, web and logo features.
func (c *CloudVisionClient) Annotate(ctx context.Context, image []byte) (*Analysis, error) {
	if len(image) == 0 {
		return nil, fmt.Errorf("no image provided")
	}

	body := annotateRequest{Requests: []imageRequest{{
		Image: imageContent{Content: base64.StdEncoding.EncodeToString(image)},
		Features: []feature{
			{Type: "LABEL_DETECTION", MaxResults: MaxLabels},
			{Type: "OBJECT_LOCALIZATION", MaxResults: MaxObjects},
			{Type: "TEXT_DETECTION", MaxResults: MaxTextBlocks},
			{Type: "WEB_DETECTION", MaxResults: MaxWebEntities},
			{Type: "LOGO_DETECTION", MaxResults: MaxLogos},
		},
	}}}

	var result annotateResponse
	res, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParam("key", c.apiKey).
		SetBody(body).
		SetResult(&result).
		Post("/v1/images:annotate")
	if err != nil {
		return nil, fmt.Errorf("cloud vision request failed: %w", err)
	}
	if res.IsError() {
		return nil, fmt.Errorf("cloud vision request failed: %d - %s", res.StatusCode(), res.String())
	}
	if len(result.Responses) == 0 {
		return nil, fmt.Errorf("cloud vision returned no responses")
	}

	r := result.Responses[0]
	if r.Error != nil && r.Error.Message != "" {
		return nil, fmt.Errorf("cloud vision error %d: %s", r.Error.Code, r.Error.Message)
	}

	analysis := convertResponse(r)

	log.Info().
		Int("labels", len(analysis.Labels)).
		Int("objects", len(analysis.Objects)).
		Int("webEntities", len(analysis.WebEntities)).
		Int("logos", len(analysis.Logos)).
		Int("ocrChars", len(analysis.OCRText)).
		Msg("cloud vision annotation")

	return analysis, nil
}

func convertResponse(r imageResponse) *Analysis {
	a := &Analysis{}
	for _, l := range r.LabelAnnotations {
		a.Labels = append(a.Labels, Annotation{Text: l.Description, Score: l.Score})
	}
	for _, o := range r.LocalizedObjects {
		a.Objects = append(a.Objects, Annotation{Text: o.Name, Score: o.Score})
	}
	for _, l := range r.LogoAnnotations {
		a.Logos = append(a.Logos, Annotation{Text: l.Description, Score: l.Score})
	}

	// The first text annotation holds the whole detected text.
	if r.FullTextAnnotation != nil && r.FullTextAnnotation.Text != "" {
		a.OCRText = strings.TrimSpace(r.FullTextAnnotation.Text)
	} else if len(r.TextAnnotations) > 0 {
		a.OCRText = strings.TrimSpace(r.TextAnnotations[0].Description)
	}

	if wd := r.WebDetection; wd != nil {
		for _, e := range wd.WebEntities {
			if e.Description == "" {
				continue
			}
			a.WebEntities = append(a.WebEntities, Annotation{Text: e.Description, Score: e.Score})
		}
		for _, g := range wd.BestGuessLabels {
			if g.Label != "" {
				a.BestGuessLabels = append(a.BestGuessLabels, g.Label)
			}
		}
		for _, p := range wd.PagesWithMatchingImages {
			a.MatchingPages = append(a.MatchingPages, Page{URL: p.URL, Title: p.PageTitle})
		}
	}
	return a
}
