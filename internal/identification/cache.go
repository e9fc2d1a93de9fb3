package identification

import (
	"fmt"
	"strings"
	"sync"

	"sortdl/internal/identification/tmdb"
)

// lookupCache memoizes successful TMDB responses for one run. Failed calls
// are not cached so a transient error does not poison later files.
type lookupCache struct {
	mu       sync.Mutex
	movies   map[string][]tmdb.Result
	shows    map[string][]tmdb.Result
	episodes map[string]*tmdb.Episode
}

func newLookupCache() *lookupCache {
	return &lookupCache{
		movies:   make(map[string][]tmdb.Result),
		shows:    make(map[string][]tmdb.Result),
		episodes: make(map[string]*tmdb.Episode),
	}
}

func (c *lookupCache) movieSearch(query string, fetch func() ([]tmdb.Result, error)) ([]tmdb.Result, error) {
	return cachedSearch(c, c.movies, cacheKey(query), fetch)
}

func (c *lookupCache) tvSearch(query string, fetch func() ([]tmdb.Result, error)) ([]tmdb.Result, error) {
	return cachedSearch(c, c.shows, cacheKey(query), fetch)
}

func (c *lookupCache) episode(showID int64, season, episode int, fetch func() (*tmdb.Episode, error)) (*tmdb.Episode, error) {
	key := fmt.Sprintf("%d/%d/%d", showID, season, episode)
	c.mu.Lock()
	if cached, ok := c.episodes[key]; ok {
		c.mu.Unlock()
		return cached, nil
	}
	c.mu.Unlock()

	value, err := fetch()
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.episodes[key] = value
	c.mu.Unlock()
	return value, nil
}

func cachedSearch(c *lookupCache, store map[string][]tmdb.Result, key string, fetch func() ([]tmdb.Result, error)) ([]tmdb.Result, error) {
	c.mu.Lock()
	if cached, ok := store[key]; ok {
		c.mu.Unlock()
		return cached, nil
	}
	c.mu.Unlock()

	results, err := fetch()
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	store[key] = results
	c.mu.Unlock()
	return results, nil
}

func cacheKey(query string) string {
	return strings.Join(strings.Fields(strings.ToLower(query)), " ")
}
