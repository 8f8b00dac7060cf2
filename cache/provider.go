package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/soaklib/soak/metadata"
)

// Cache keys: one entry per definition plus the name list.
const (
	defKeyPrefix = "def:"
	namesKey     = "defs"
)

// DefProvider serves entity definitions through a cache. Definitions are
// stored msgpack-encoded under "def:<name>" and the name list under "defs".
// Cache failures of any sort degrade to the inner source, so a cold or
// broken cache never makes definitions unavailable.
type DefProvider struct {
	inner metadata.DefSource
	cache Cache
	ttl   time.Duration
	log   *slog.Logger
}

// DefProviderOption configures a DefProvider.
type DefProviderOption func(*DefProvider)

// WithTTL sets the time-to-live for cached definitions. Zero applies the
// cache backend default.
func WithTTL(ttl time.Duration) DefProviderOption {
	return func(p *DefProvider) { p.ttl = ttl }
}

// WithLogger sets the logger for cache degradation events.
func WithLogger(log *slog.Logger) DefProviderOption {
	return func(p *DefProvider) { p.log = log }
}

// NewDefProvider wraps a definition source with a cache.
func NewDefProvider(inner metadata.DefSource, c Cache, opts ...DefProviderOption) *DefProvider {
	p := &DefProvider{
		inner: inner,
		cache: c,
		log:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// DefFor returns the definition for one entity name, from cache when
// possible.
func (p *DefProvider) DefFor(name string) (*metadata.Def, error) {
	ctx := context.Background()
	key := defKeyPrefix + name

	if data, err := p.cache.Get(ctx, key); err == nil {
		var def metadata.Def
		if err := msgpack.Unmarshal(data, &def); err == nil {
			return &def, nil
		}
		// Undecodable entries are dropped and refetched.
		_ = p.cache.Delete(ctx, key)
	} else if !IsMiss(err) {
		p.log.Debug("definition cache read failed", "entity", name, "error", err)
	}

	def, err := p.inner.DefFor(name)
	if err != nil {
		return nil, err
	}
	p.store(ctx, key, def)
	return def, nil
}

// Names lists every entity name the inner source knows, from cache when
// possible.
func (p *DefProvider) Names() ([]string, error) {
	ctx := context.Background()

	if data, err := p.cache.Get(ctx, namesKey); err == nil {
		var names []string
		if err := msgpack.Unmarshal(data, &names); err == nil {
			return names, nil
		}
		_ = p.cache.Delete(ctx, namesKey)
	} else if !IsMiss(err) {
		p.log.Debug("definition cache read failed", "key", namesKey, "error", err)
	}

	names, err := p.inner.Names()
	if err != nil {
		return nil, err
	}
	p.store(ctx, namesKey, names)
	return names, nil
}

// Invalidate drops every cached definition, and forwards to the inner
// source when it supports invalidation, as the mapping-file provider does.
func (p *DefProvider) Invalidate() {
	if err := p.cache.Clear(context.Background()); err != nil {
		p.log.Debug("definition cache clear failed", "error", err)
	}
	if inv, ok := p.inner.(interface{ Invalidate() }); ok {
		inv.Invalidate()
	}
}

// store encodes and caches one value, logging instead of failing.
func (p *DefProvider) store(ctx context.Context, key string, value any) {
	data, err := msgpack.Marshal(value)
	if err != nil {
		p.log.Debug("definition cache encode failed", "key", key, "error", err)
		return
	}
	if err := p.cache.Set(ctx, key, data, p.ttl); err != nil {
		p.log.Debug("definition cache write failed", "key", key, "error", err)
	}
}

var _ metadata.DefSource = (*DefProvider)(nil)
