package lang

import (
	"context"
	"log/slog"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/zeebo/xxh3"

	"github.com/ardnew/brewin/lang/ast"
	"github.com/ardnew/brewin/lang/parser"
	"github.com/ardnew/brewin/log"
)

// Cache memoizes parsed programs by source text. Syntax trees are never
// modified after parsing, so one tree may back any number of concurrent
// evaluations. A Cache is safe for concurrent use; concurrent requests for
// the same source parse it once.
type Cache struct {
	entries sync.Map // uint64 -> *cacheEntry
	opts    []parser.Option
	logger  log.Logger
	hits    atomic.Int64
	misses  atomic.Int64
}

type cacheEntry struct {
	once   sync.Once
	source string
	prog   *ast.Program
	err    error
}

// NewCache returns an empty cache whose misses are parsed with opts.
func NewCache(logger log.Logger, opts ...parser.Option) *Cache {
	return &Cache{
		opts:   append([]parser.Option{parser.WithLogger(logger)}, opts...),
		logger: logger,
	}
}

// Parse returns the syntax tree of src, parsing it on first use. Errors are
// cached like trees.
func (c *Cache) Parse(ctx context.Context, src string) (*ast.Program, error) {
	hash := xxh3.HashString(src)

	value, loaded := c.entries.LoadOrStore(hash, &cacheEntry{source: src})

	entry, _ := value.(*cacheEntry)
	if entry.source != src {
		c.logger.DebugContext(ctx, "cache collision",
			slog.String("source_hash", strconv.FormatUint(hash, 16)))

		return parser.Parse(ctx, src, c.opts...)
	}

	if loaded {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}

	c.logger.TraceContext(ctx, "cache lookup",
		slog.String("source_hash", strconv.FormatUint(hash, 16)),
		slog.Bool("cache_hit", loaded),
	)

	entry.once.Do(func() {
		entry.prog, entry.err = parser.Parse(context.WithoutCancel(ctx), src, c.opts...)
	})

	return entry.prog, entry.err
}

// Len returns the number of cached sources.
func (c *Cache) Len() int {
	n := 0

	c.entries.Range(func(any, any) bool {
		n++

		return true
	})

	return n
}

// Stats returns the number of lookups that found and did not find an entry.
func (c *Cache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// Clear removes every entry.
func (c *Cache) Clear() {
	c.entries.Clear()
}
