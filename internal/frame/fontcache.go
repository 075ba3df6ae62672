package frame

import (
	"container/list"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"sync"
	"sync/atomic"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// FontCache caches parsed OpenType fonts for long-running processes such as
// watch mode and batch rendering.
//
// Parsed fonts are safe to share; faces are not, because an opentype face
// keeps a scratch buffer. The cache therefore stores fonts and NewFace hands
// every caller its own face.
//
// Keys are file paths as given, or "sha256:<hex>" for in-memory data, so the
// same bytes loaded twice share one entry.
type FontCache struct {
	mu        sync.Mutex
	fonts     map[string]*list.Element
	lru       *list.List
	maxSize   int
	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

type cacheEntry struct {
	key  string
	font *opentype.Font
}

// defaultCache backs LoadFont and ParseFont
var defaultCache = NewFontCache(16)

// NewFontCache creates a cache holding at most maxSize fonts.
// A maxSize of 0 or negative means unlimited.
func NewFontCache(maxSize int) *FontCache {
	return &FontCache{
		fonts:   make(map[string]*list.Element),
		lru:     list.New(),
		maxSize: maxSize,
	}
}

// LoadFont loads a font file through the default cache.
func LoadFont(path string) (*opentype.Font, error) {
	return defaultCache.LoadFont(path)
}

// ParseFont parses font data through the default cache.
func ParseFont(data []byte) (*opentype.Font, error) {
	return defaultCache.ParseFont(data)
}

// LoadFont returns the font at path, reading and parsing it on first use.
func (c *FontCache) LoadFont(path string) (*opentype.Font, error) {
	if f := c.get(path); f != nil {
		return f, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read font file: %w", err)
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font %s: %w", path, err)
	}

	c.put(path, f)
	return f, nil
}

// ParseFont returns the parsed font for data, keyed by its SHA-256.
func (c *FontCache) ParseFont(data []byte) (*opentype.Font, error) {
	hash := sha256.Sum256(data)
	key := "sha256:" + hex.EncodeToString(hash[:])

	if f := c.get(key); f != nil {
		return f, nil
	}

	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font data: %w", err)
	}

	c.put(key, f)
	return f, nil
}

func (c *FontCache) get(key string) *opentype.Font {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.fonts[key]
	if !ok {
		c.misses.Add(1)
		return nil
	}
	c.lru.MoveToFront(el)
	c.hits.Add(1)
	return el.Value.(*cacheEntry).font
}

// put inserts f unless another goroutine cached the key first, evicting the
// least recently used entry when full.
func (c *FontCache) put(key string, f *opentype.Font) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.fonts[key]; ok {
		return
	}
	if c.maxSize > 0 && c.lru.Len() >= c.maxSize {
		if tail := c.lru.Back(); tail != nil {
			delete(c.fonts, tail.Value.(*cacheEntry).key)
			c.lru.Remove(tail)
			c.evictions.Add(1)
		}
	}
	c.fonts[key] = c.lru.PushFront(&cacheEntry{key: key, font: f})
}

// Clear removes all fonts from the cache.
func (c *FontCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.fonts = make(map[string]*list.Element)
	c.lru.Init()
}

// Stats returns cache statistics.
func (c *FontCache) Stats() CacheStats {
	c.mu.Lock()
	size := c.lru.Len()
	c.mu.Unlock()

	return CacheStats{
		Size:      size,
		MaxSize:   c.maxSize,
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
	}
}

// CacheStats contains cache performance statistics
type CacheStats struct {
	Size      int    // Current number of cached fonts
	MaxSize   int    // Maximum cache size
	Hits      uint64 // Number of cache hits
	Misses    uint64 // Number of cache misses
	Evictions uint64 // Number of evictions
}

// HitRate returns the cache hit rate as a percentage (0-100)
func (s CacheStats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) * 100 / float64(total)
}

// NewFace returns a face for the font at path, or for the embedded Go
// Regular font when path is empty. Size is in pixels.
func NewFace(path string, size float64) (font.Face, error) {
	var (
		f   *opentype.Font
		err error
	)
	if path == "" {
		f, err = ParseFont(goregular.TTF)
	} else {
		f, err = LoadFont(path)
	}
	if err != nil {
		return nil, err
	}

	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create face: %w", err)
	}
	return face, nil
}
