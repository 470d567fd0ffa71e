package services

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"ideaboard/internal/utils"
)

const (
	newsCacheKey = "news:items"
	newsCacheTTL = 10 * time.Minute
	maxNewsItems = 15
)

// NewsItem is one scraped headline from the school site.
type NewsItem struct {
	ID        int    `json:"id"`
	Title     string `json:"title"`
	Excerpt   string `json:"excerpt"`
	Image     string `json:"image,omitempty"`
	Date      string `json:"date"`
	SourceURL string `json:"source_url"`
}

// NewsFetcher scrapes the configured news page. Selectors are deliberately
// loose: school CMSes restructure their markup without notice, and on any
// failure the fetcher degrades to canned demo items rather than erroring.
type NewsFetcher struct {
	sourceURL string
	client    *http.Client
	cache     *utils.TTLCache
	logger    *zap.Logger
}

func NewNewsFetcher(sourceURL string, cache *utils.TTLCache, logger *zap.Logger) *NewsFetcher {
	return &NewsFetcher{
		sourceURL: sourceURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		cache:  cache,
		logger: logger,
	}
}

// Fetch returns the latest news, from cache when fresh. The second result
// reports whether the items are live (false means demo fallback).
func (f *NewsFetcher) Fetch() ([]NewsItem, bool) {
	if cached := f.cache.Get(newsCacheKey); cached != nil {
		if items, ok := cached.([]NewsItem); ok {
			return items, true
		}
	}

	items, err := f.scrape()
	if err != nil || len(items) == 0 {
		if err != nil {
			f.logger.Warn("news scrape failed, serving demo items", zap.Error(err))
		}
		return demoNews(), false
	}

	f.cache.Set(newsCacheKey, items, newsCacheTTL)
	return items, true
}

func (f *NewsFetcher) scrape() ([]NewsItem, error) {
	if f.sourceURL == "" {
		return nil, fmt.Errorf("no news source configured")
	}

	req, err := http.NewRequest(http.MethodGet, f.sourceURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("news source returned status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, err
	}

	base, err := url.Parse(f.sourceURL)
	if err != nil {
		return nil, err
	}

	var items []NewsItem
	doc.Find(".news-item, .novosti-item, article").EachWithBreak(func(i int, s *goquery.Selection) bool {
		if len(items) >= maxNewsItems {
			return false
		}

		title := strings.TrimSpace(s.Find("h2, h3, .title").First().Text())
		if title == "" {
			return true
		}

		excerpt := strings.TrimSpace(s.Find("p, .excerpt").First().Text())
		if excerpt == "" {
			excerpt = "Read the full story on the school site."
		}
		date := strings.TrimSpace(s.Find(".date, time").First().Text())
		if date == "" {
			date = time.Now().Format("02.01.2006")
		}

		item := NewsItem{
			ID:        len(items) + 1,
			Title:     title,
			Excerpt:   excerpt,
			Date:      date,
			SourceURL: f.sourceURL,
		}
		if href, ok := s.Find("a").First().Attr("href"); ok {
			item.SourceURL = resolveURL(base, href)
		}
		if src, ok := s.Find("img").First().Attr("src"); ok {
			item.Image = resolveURL(base, src)
		}

		items = append(items, item)
		return true
	})

	return items, nil
}

func resolveURL(base *url.URL, ref string) string {
	u, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return base.ResolveReference(u).String()
}

// demoNews is the static fallback served when scraping is unavailable.
func demoNews() []NewsItem {
	return []NewsItem{
		{
			ID:      1,
			Title:   "School science conference",
			Excerpt: "The annual student science conference took place this week.",
			Date:    "20.12.2023",
		},
		{
			ID:      2,
			Title:   "Winter sports day announced",
			Excerpt: "Sign-ups for the winter sports day open on Monday.",
			Date:    "18.12.2023",
		},
		{
			ID:      3,
			Title:   "Library extends opening hours",
			Excerpt: "The school library is now open until 19:00 on weekdays.",
			Date:    "15.12.2023",
		},
	}
}
