package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestAnnotationCache(t *testing.T) {
	store := newTestStore(t)

	payload, err := store.GetAnnotationCache("abc")
	require.NoError(t, err)
	assert.Nil(t, payload)

	require.NoError(t, store.SetAnnotationCache("abc", []byte(`{"ocrText":"one"}`)))
	require.NoError(t, store.SetAnnotationCache("abc", []byte(`{"ocrText":"two"}`)))

	payload, err = store.GetAnnotationCache("abc")
	require.NoError(t, err)
	assert.Equal(t, `{"ocrText":"two"}`, string(payload))
}

func TestRecognitions(t *testing.T) {
	store := newTestStore(t)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i, name := range []string{"MacBook Pro", "Vintage Rolex", "Pixel 7"} {
		r := &Recognition{
			UserID:         42,
			Name:           name,
			Confidence:     0.9,
			SuggestedPrice: float64(100 * (i + 1)),
			Currency:       "EUR",
			CreatedAt:      base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, store.SaveRecognition(r))
		assert.NotEmpty(t, r.ID)
	}
	require.NoError(t, store.SaveRecognition(&Recognition{UserID: 7, Name: "Lamp", Brand: "IKEA"}))

	recent, err := store.RecentRecognitions(42, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "Pixel 7", recent[0].Name)
	assert.Equal(t, 300.0, recent[0].SuggestedPrice)
	assert.Equal(t, "EUR", recent[0].Currency)
	assert.Equal(t, "Vintage Rolex", recent[1].Name)
	assert.Empty(t, recent[0].Brand)

	count, err := store.CountRecognitionsByUser(42)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	other, err := store.RecentRecognitions(7, 10)
	require.NoError(t, err)
	require.Len(t, other, 1)
	assert.Equal(t, "IKEA", other[0].Brand)
	assert.Empty(t, other[0].Currency)
	assert.False(t, other[0].CreatedAt.IsZero())
}

func TestAllowedUsers(t *testing.T) {
	store := newTestStore(t)

	allowed, err := store.IsUserAllowed(100)
	require.NoError(t, err)
	assert.False(t, allowed)

	require.NoError(t, store.AddAllowedUser(100, 1))
	allowed, err = store.IsUserAllowed(100)
	require.NoError(t, err)
	assert.True(t, allowed)

	users, err := store.GetAllowedUsers()
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, int64(100), users[0].TelegramID)
	assert.Equal(t, int64(1), users[0].AddedBy)

	require.NoError(t, store.RemoveAllowedUser(100))
	allowed, err = store.IsUserAllowed(100)
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestPruneAnnotationCache(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.SetAnnotationCache("abc", []byte(`{}`)))

	pruned, err := store.PruneAnnotationCache(time.Hour)
	require.NoError(t, err)
	assert.Zero(t, pruned)

	// A cutoff in the future removes everything
	pruned, err = store.PruneAnnotationCache(-time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), pruned)

	payload, err := store.GetAnnotationCache("abc")
	require.NoError(t, err)
	assert.Nil(t, payload)
}

func TestPruneOldRecognitions(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.SaveRecognition(&Recognition{UserID: 1, Name: "old", CreatedAt: time.Now().Add(-48 * time.Hour)}))
	require.NoError(t, store.SaveRecognition(&Recognition{UserID: 1, Name: "new"}))

	pruned, err := store.PruneOldRecognitions(24 * time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), pruned)

	recent, err := store.RecentRecognitions(1, 10)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "new", recent[0].Name)
}
