package checkpoint

import (
	"os"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

const defaultCacheSize = 128

type cacheEntry struct {
	modTime time.Time
	size    int64
	handoff *Handoff
}

// handoffCache keeps parsed handoffs keyed by file path. Handoffs are
// immutable once written, so an entry stays valid while the file's
// modification time and size are unchanged.
type handoffCache struct {
	lru *lru.Cache[string, cacheEntry]
}

func newHandoffCache(size int) *handoffCache {
	if size <= 0 {
		size = defaultCacheSize
	}
	c, err := lru.New[string, cacheEntry](size)
	if err != nil {
		// only returned for a non-positive size
		return &handoffCache{}
	}
	return &handoffCache{lru: c}
}

// get returns a copy of the cached handoff for path if info still matches.
func (c *handoffCache) get(path string, info os.FileInfo) (*Handoff, bool) {
	if c == nil || c.lru == nil {
		return nil, false
	}
	e, ok := c.lru.Get(path)
	if !ok || !e.modTime.Equal(info.ModTime()) || e.size != info.Size() {
		return nil, false
	}
	return e.handoff.Clone(), true
}

func (c *handoffCache) put(path string, info os.FileInfo, h *Handoff) {
	if c == nil || c.lru == nil {
		return
	}
	c.lru.Add(path, cacheEntry{modTime: info.ModTime(), size: info.Size(), handoff: h.Clone()})
}

func (c *handoffCache) remove(path string) {
	if c == nil || c.lru == nil {
		return
	}
	c.lru.Remove(path)
}
