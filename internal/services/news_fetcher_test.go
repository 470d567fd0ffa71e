package services_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"ideaboard/internal/services"
	"ideaboard/internal/utils"
)

func newCache(t *testing.T) *utils.TTLCache {
	t.Helper()
	c, err := utils.NewTTLCache(8)
	require.NoError(t, err)
	return c
}

const newsPage = `<html><body>
<article>
  <h2>Sports day moved to Friday</h2>
  <p>The annual sports day has been rescheduled.</p>
  <time>2026-05-12</time>
  <a href="/news/sports-day">more</a>
</article>
<article>
  <h3>New library wing opens</h3>
  <p class="excerpt">Three new reading rooms.</p>
  <a href="https://other.example/library">more</a>
</article>
</body></html>`

func TestFetchScrapesArticles(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(newsPage))
	}))
	defer srv.Close()

	f := services.NewNewsFetcher(srv.URL, newCache(t), zap.NewNop())

	items, live := f.Fetch()
	require.True(t, live)
	require.Len(t, items, 2)

	assert.Equal(t, "Sports day moved to Friday", items[0].Title)
	assert.Equal(t, "The annual sports day has been rescheduled.", items[0].Excerpt)
	assert.Equal(t, "2026-05-12", items[0].Date)
	assert.Equal(t, srv.URL+"/news/sports-day", items[0].SourceURL, "relative links resolve against the source")

	assert.Equal(t, "New library wing opens", items[1].Title)
	assert.Equal(t, "https://other.example/library", items[1].SourceURL)
}

func TestFetchUsesCache(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Write([]byte(newsPage))
	}))
	defer srv.Close()

	f := services.NewNewsFetcher(srv.URL, newCache(t), zap.NewNop())

	_, _ = f.Fetch()
	_, _ = f.Fetch()
	assert.Equal(t, 1, hits, "the second fetch is served from cache")
}

func TestFetchFallsBackToDemo(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusBadGateway)
	}))
	defer srv.Close()

	for _, sourceURL := range []string{"", srv.URL} {
		f := services.NewNewsFetcher(sourceURL, newCache(t), zap.NewNop())
		items, live := f.Fetch()
		assert.False(t, live)
		assert.NotEmpty(t, items, "demo items back every failure mode")
	}
}
