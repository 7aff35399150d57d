package recognizer

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raine/photo-pricer/internal/apperrors"
	"github.com/raine/photo-pricer/internal/search"
	"github.com/raine/photo-pricer/internal/vision"
)

type fakeAnnotator struct {
	analysis *vision.Analysis
	err      error
	images   [][]byte
}

func (f *fakeAnnotator) Annotate(ctx context.Context, image []byte) (*vision.Analysis, error) {
	f.images = append(f.images, image)
	return f.analysis, f.err
}

type fakeSearcher struct {
	mu      sync.Mutex
	results map[string][]search.Result
	err     error
	queries []string
}

func (f *fakeSearcher) Search(ctx context.Context, query string, num int) ([]search.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, query)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.results[query], nil
}

var macbookAnalysis = &vision.Analysis{
	Labels:        []vision.Annotation{{Text: "Laptop", Score: 0.97}, {Text: "Netbook", Score: 0.9}},
	OCRText:       "MacBook Pro M1 Pro 16GB",
	MatchingPages: []vision.Page{{URL: "https://forum.example.com/t/1", Title: "My MacBook"}},
}

func newTestRecognizer(t *testing.T, a *fakeAnnotator, s *fakeSearcher) *Recognizer {
	t.Helper()
	r, err := New(Config{}, a, s)
	require.NoError(t, err)
	return r
}

func TestRecognize_ShoppingPass(t *testing.T) {
	s := &fakeSearcher{results: map[string][]search.Result{
		"Apple M1 Pro for sale": {
			{Title: "MacBook Pro M1 Pro 16GB", Link: "https://www.ebay.com/itm/1", Snippet: "$1,000 used"},
			{Title: "MacBook Pro 14 M1 Pro", Link: "https://swappa.com/2", Snippet: "Price: $1,100"},
		},
		"Apple M1 Pro price": {
			{Title: "Apple M1 Pro laptop", Link: "https://www.ebay.com/itm/3", Snippet: "Buy it now $1,200"},
		},
	}}
	r := newTestRecognizer(t, &fakeAnnotator{analysis: macbookAnalysis}, s)

	res, err := r.Recognize(context.Background(), []byte("jpeg"))
	require.NoError(t, err)

	assert.Equal(t, "MacBook Pro M1 Pro 16GB", res.Name)
	assert.Equal(t, "Apple", res.Brand)
	assert.Equal(t, "M1 Pro", res.Model)
	assert.Equal(t, 0.95, res.Confidence)
	assert.Equal(t, "Apple M1 Pro used for sale", res.Query)
	assert.Equal(t, []string{"Apple M1 Pro for sale", "Apple M1 Pro price", "buy Apple M1 Pro used"}, s.queries)

	assert.Equal(t, 3, res.Pricing.Count)
	assert.Equal(t, 1100.0, res.Pricing.Average)
	assert.Equal(t, 990.0, res.Pricing.Suggested)
	assert.Equal(t, "USD", res.Pricing.Currency)

	require.Len(t, res.SimilarItems, 4)
	assert.Equal(t, SimilarItem{Title: "MacBook Pro M1 Pro 16GB", Price: 1000, Currency: "USD", Platform: "ebay.com", URL: "https://www.ebay.com/itm/1"}, res.SimilarItems[0])
	assert.Equal(t, "https://forum.example.com/t/1", res.SimilarItems[3].URL)
	assert.Zero(t, res.SimilarItems[3].Price)

	assert.Equal(t, "Computers", res.Category)
	assert.Equal(t, "used", res.Condition)
	assert.Equal(t, "M1 Pro", res.Specifications["processor"])
	assert.True(t, strings.HasPrefix(res.Description, "Apple MacBook Pro M1 Pro 16GB"))
	assert.NotEmpty(t, res.Attributes)
	assert.NotEmpty(t, res.ID)
}

func TestRecognize_WebFallback(t *testing.T) {
	s := &fakeSearcher{results: map[string][]search.Result{
		"Office chair price": {
			{Title: "Office chair", Link: "https://a.example/1", Snippet: "only $45"},
			{Title: "Office chair ergonomic", Link: "https://a.example/2", Snippet: "$55 obo"},
		},
	}}
	a := &fakeAnnotator{analysis: &vision.Analysis{
		Objects: []vision.Annotation{{Text: "Office chair", Score: 0.7}},
		Labels:  []vision.Annotation{{Text: "Chair", Score: 0.9}},
	}}
	r := newTestRecognizer(t, a, s)

	res, err := r.Recognize(context.Background(), []byte("jpeg"))
	require.NoError(t, err)

	// confidence 0.7 is not specific enough for the shopping pass
	assert.Equal(t, []string{"Office chair", "Office chair used", "Office chair price"}, s.queries)
	assert.Equal(t, 2, res.Pricing.Count)
	assert.Equal(t, 50.0, res.Pricing.Average)
	assert.Equal(t, 45.0, res.Pricing.Suggested)
	assert.Equal(t, "Furniture", res.Category)
}

func TestRecognize_DuplicateLinksAcrossPasses(t *testing.T) {
	s := &fakeSearcher{results: map[string][]search.Result{
		"Apple M1 Pro for sale": {
			{Title: "MacBook Pro M1 Pro", Link: "https://www.ebay.com/itm/1", Snippet: "$1,000"},
		},
		"Apple M1 Pro": {
			{Title: "MacBook Pro M1 Pro", Link: "https://www.ebay.com/itm/1", Snippet: "$1,500"},
			{Title: "Apple M1 Pro", Link: "https://b.example/2", Snippet: "$1,300"},
		},
	}}
	r := newTestRecognizer(t, &fakeAnnotator{analysis: macbookAnalysis}, s)

	res, err := r.Recognize(context.Background(), []byte("jpeg"))
	require.NoError(t, err)

	var prices []float64
	for _, item := range res.SimilarItems {
		if item.URL == "https://www.ebay.com/itm/1" {
			prices = append(prices, item.Price)
		}
	}
	assert.Equal(t, []float64{1000}, prices)
	assert.Equal(t, 2, res.Pricing.Count)
	assert.Equal(t, 1150.0, res.Pricing.Average)
}

func TestRecognize_AllSearchesFail(t *testing.T) {
	s := &fakeSearcher{err: errors.New("quota exceeded")}
	a := &fakeAnnotator{analysis: &vision.Analysis{
		Labels:          []vision.Annotation{{Text: "Watch", Score: 0.95}, {Text: "Vintage", Score: 0.8}},
		BestGuessLabels: []string{"Vintage Rolex"},
	}}
	r := newTestRecognizer(t, a, s)

	res, err := r.Recognize(context.Background(), []byte("jpeg"))
	require.NoError(t, err)

	assert.Len(t, s.queries, 6)
	assert.Zero(t, res.Pricing.Average)
	assert.Zero(t, res.Pricing.Suggested)
	assert.Empty(t, res.SimilarItems)

	assert.Equal(t, "Vintage Rolex", res.Name)
	assert.Equal(t, 0.85, res.Confidence)
	assert.Equal(t, "Jewelry & Watches", res.Category)
	assert.Equal(t, "used", res.Condition)
	assert.Contains(t, res.Description, "Condition: vintage")
}

func TestRecognize_AnnotationErrors(t *testing.T) {
	cause := errors.New("503 service unavailable")
	r := newTestRecognizer(t, &fakeAnnotator{err: cause}, &fakeSearcher{})

	_, err := r.Recognize(context.Background(), []byte("jpeg"))
	assert.True(t, apperrors.IsAnnotation(err))
	assert.ErrorIs(t, err, cause)

	cfgErr := apperrors.NewConfigurationError("annotate", errors.New("missing key"))
	r = newTestRecognizer(t, &fakeAnnotator{err: cfgErr}, &fakeSearcher{})
	_, err = r.Recognize(context.Background(), []byte("jpeg"))
	assert.True(t, apperrors.IsConfiguration(err))

	r = newTestRecognizer(t, &fakeAnnotator{}, &fakeSearcher{})
	_, err = r.Recognize(context.Background(), []byte("jpeg"))
	assert.True(t, apperrors.IsAnnotation(err))

	_, err = r.Recognize(context.Background(), nil)
	assert.ErrorIs(t, err, ErrEmptyImage)
}

func TestRecognize_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := newTestRecognizer(t, &fakeAnnotator{analysis: macbookAnalysis}, &fakeSearcher{})
	res, err := r.Recognize(ctx, []byte("jpeg"))
	assert.Nil(t, res)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNew_Validation(t *testing.T) {
	_, err := New(Config{}, nil, &fakeSearcher{})
	assert.True(t, apperrors.IsConfiguration(err))

	_, err = New(Config{}, &fakeAnnotator{}, nil)
	assert.True(t, apperrors.IsConfiguration(err))

	r, err := New(Config{MaxResults: 5}, &fakeAnnotator{}, &fakeSearcher{})
	require.NoError(t, err)
	assert.Equal(t, 5, r.cfg.MaxResults)
	assert.Equal(t, 3, r.cfg.MinShoppingHits)
}

func TestRecognizeBase64(t *testing.T) {
	a := &fakeAnnotator{analysis: &vision.Analysis{}}
	r := newTestRecognizer(t, a, &fakeSearcher{})

	encoded := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString([]byte("jpeg-bytes"))
	res, err := r.RecognizeBase64(context.Background(), encoded)
	require.NoError(t, err)
	assert.Equal(t, "Unknown Item", res.Name)
	assert.Equal(t, [][]byte{[]byte("jpeg-bytes")}, a.images)

	_, err = r.RecognizeBase64(context.Background(), "%%%")
	assert.Error(t, err)
}
