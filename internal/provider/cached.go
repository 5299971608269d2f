package provider

import (
	"context"

	"github.com/rs/zerolog"

	"stock-analyst/internal/cache"
	"stock-analyst/internal/models"
)

// CachedProvider wraps a Provider with a read-through TTL cache. Only
// successful fetches are cached; errors always surface unchanged. No
// lock is held across the upstream call, so a miss race may trigger
// duplicate fetches; last write wins, which is harmless for
// immutable snapshots.
type CachedProvider struct {
	inner  Provider
	cache  *cache.Cache
	logger zerolog.Logger
}

// NewCachedProvider creates a caching decorator around inner.
func NewCachedProvider(inner Provider, c *cache.Cache, logger zerolog.Logger) *CachedProvider {
	return &CachedProvider{
		inner:  inner,
		cache:  c,
		logger: logger.With().Str("component", "cached_provider").Logger(),
	}
}

func (p *CachedProvider) Name() string { return p.inner.Name() }

// GetQuote returns a cached quote when fresh, delegating otherwise.
func (p *CachedProvider) GetQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	key := cache.QuoteKey(symbol)
	if v, ok := p.cache.Get(key); ok {
		q := v.(models.Quote)
		return &q, nil
	}

	q, err := p.inner.GetQuote(ctx, symbol)
	if err != nil {
		return nil, err
	}

	// Store a copy; the caller owns the returned value.
	p.cache.Put(key, *q, 0)
	p.logger.Debug().Str("symbol", symbol).Msg("quote cached")
	return q, nil
}

// GetBars returns a cached series when fresh, delegating otherwise.
func (p *CachedProvider) GetBars(ctx context.Context, symbol, period, interval string) ([]models.Bar, error) {
	key := cache.BarsKey(symbol, period, interval)
	if v, ok := p.cache.Get(key); ok {
		cached := v.([]models.Bar)
		out := make([]models.Bar, len(cached))
		copy(out, cached)
		return out, nil
	}

	bars, err := p.inner.GetBars(ctx, symbol, period, interval)
	if err != nil {
		return nil, err
	}

	stored := make([]models.Bar, len(bars))
	copy(stored, bars)
	p.cache.Put(key, stored, 0)
	p.logger.Debug().Str("symbol", symbol).Str("period", period).
		Str("interval", interval).Int("bars", len(bars)).Msg("series cached")
	return bars, nil
}
