package search

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Search(t *testing.T) {
	var req *http.Request
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req = r
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"items":[
			{"title":"MacBook Pro M1 - $1,100","link":"https://www.ebay.com/itm/1","snippet":"Used, good",
			 "pagemap":{"cse_thumbnail":[{"src":"https://img/1.jpg"}]}},
			{"title":"MacBook Pro review","link":"https://example.com/review","snippet":"A fast laptop"}
		]}`))
	}))
	defer ts.Close()

	client, err := NewClient(Config{APIKey: "key", EngineID: "cx", BaseURL: ts.URL})
	require.NoError(t, err)

	results, err := client.Search(context.Background(), "macbook pro price", 5)
	require.NoError(t, err)

	assert.Equal(t, "/customsearch/v1", req.URL.Path)
	assert.Equal(t, "key", req.URL.Query().Get("key"))
	assert.Equal(t, "cx", req.URL.Query().Get("cx"))
	assert.Equal(t, "macbook pro price", req.URL.Query().Get("q"))
	assert.Equal(t, "5", req.URL.Query().Get("num"))

	assert.Equal(t, []Result{
		{Title: "MacBook Pro M1 - $1,100", Link: "https://www.ebay.com/itm/1", Snippet: "Used, good", Thumbnail: "https://img/1.jpg"},
		{Title: "MacBook Pro review", Link: "https://example.com/review", Snippet: "A fast laptop"},
	}, results)
}

func TestClient_SearchClampsNum(t *testing.T) {
	var num string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		num = r.URL.Query().Get("num")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{}`))
	}))
	defer ts.Close()

	client, err := NewClient(Config{APIKey: "key", EngineID: "cx", BaseURL: ts.URL})
	require.NoError(t, err)

	results, err := client.Search(context.Background(), "q", 50)
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Equal(t, "10", num)
}

func TestClient_SearchError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`quota exceeded`))
	}))
	defer ts.Close()

	client, err := NewClient(Config{APIKey: "key", EngineID: "cx", BaseURL: ts.URL})
	require.NoError(t, err)

	_, err = client.Search(context.Background(), "q", 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestNewClient_MissingConfig(t *testing.T) {
	_, err := NewClient(Config{APIKey: "key"})
	assert.ErrorIs(t, err, ErrMissingConfig)

	_, err = NewClient(Config{EngineID: "cx"})
	assert.ErrorIs(t, err, ErrMissingConfig)
}

type stubSearcher struct {
	calls   int
	results []Result
	err     error
}

func (s *stubSearcher) Search(ctx context.Context, query string, num int) ([]Result, error) {
	s.calls++
	return s.results, s.err
}

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return mr, rdb
}

func TestCachedSearcher(t *testing.T) {
	mr, rdb := newTestRedis(t)
	inner := &stubSearcher{results: []Result{{Title: "Pixel 7", Link: "https://a/1", Snippet: "$300"}}}
	cached := NewCachedSearcher(inner, rdb, time.Hour)
	ctx := context.Background()

	first, err := cached.Search(ctx, "Pixel 7 price", 10)
	require.NoError(t, err)
	second, err := cached.Search(ctx, "pixel 7 PRICE ", 10)
	require.NoError(t, err)

	assert.Equal(t, 1, inner.calls)
	assert.Equal(t, first, second)
	assert.True(t, mr.Exists("search:10:pixel 7 price"))
	assert.Equal(t, time.Hour, mr.TTL("search:10:pixel 7 price"))

	mr.FastForward(2 * time.Hour)
	_, err = cached.Search(ctx, "Pixel 7 price", 10)
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls)
}

func TestCachedSearcher_ErrorsAreNotCached(t *testing.T) {
	mr, rdb := newTestRedis(t)
	inner := &stubSearcher{err: fmt.Errorf("boom")}
	cached := NewCachedSearcher(inner, rdb, 0)

	_, err := cached.Search(context.Background(), "q", 10)
	assert.Error(t, err)
	assert.False(t, mr.Exists("search:10:q"))
}

func TestCachedSearcher_RedisDown(t *testing.T) {
	mr, rdb := newTestRedis(t)
	mr.Close()

	inner := &stubSearcher{results: []Result{{Title: "x", Link: "https://x"}}}
	results, err := NewCachedSearcher(inner, rdb, time.Minute).Search(context.Background(), "q", 10)
	require.NoError(t, err)
	assert.Len(t, results, 1)
	assert.Equal(t, 1, inner.calls)
}
