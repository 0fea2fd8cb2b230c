package analyses

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// TextCache keeps recently extracted document text in process, keyed by
// document ID. A nil *TextCache is a valid, always-empty cache.
type TextCache struct {
	cache *lru.Cache[string, string]
}

// NewTextCache returns a cache holding at most size entries, or nil when
// size is not positive.
func NewTextCache(size int) (*TextCache, error) {
	if size <= 0 {
		return nil, nil
	}
	cache, err := lru.New[string, string](size)
	if err != nil {
		return nil, err
	}
	return &TextCache{cache: cache}, nil
}

func (c *TextCache) Get(documentID string) (string, bool) {
	if c == nil {
		return "", false
	}
	return c.cache.Get(documentID)
}

func (c *TextCache) Add(documentID, text string) {
	if c == nil {
		return
	}
	c.cache.Add(documentID, text)
}

func (c *TextCache) Len() int {
	if c == nil {
		return 0
	}
	return c.cache.Len()
}
