package services

import (
	"context"
	"net/url"

	"github.com/rs/zerolog"

	"salemre/backend/internal/query"
)

type fetchFunc[T any] func(ctx context.Context, q query.Query) ([]T, int64, error)

// lister runs schema driven list queries, caching public pages when a cache is set.
type lister[T any] struct {
	schema *query.Schema
	cache  ListCache
	fetch  fetchFunc[T]
	log    zerolog.Logger
}

func (l *lister[T]) list(ctx context.Context, raw url.Values, aud query.Audience) (*query.Result[T], error) {
	params := query.Decode(l.schema, raw)
	return l.run(ctx, params, aud)
}

func (l *lister[T]) run(ctx context.Context, params query.Params, aud query.Audience) (*query.Result[T], error) {
	q := query.Build(l.schema, params, aud)

	useCache := l.cache != nil && aud == query.Public
	canonical := params.Encode(l.schema).Encode()
	var version int64
	if useCache {
		var cached query.Result[T]
		hit, v, err := l.cache.Get(ctx, l.schema.Entity, canonical, &cached)
		if err != nil {
			l.log.Warn().Err(err).Str("entity", l.schema.Entity).Msg("list cache read failed")
			useCache = false
		} else if hit {
			cached.Items = emptyIfNil(cached.Items)
			return &cached, nil
		}
		version = v
	}

	items, count, err := l.fetch(ctx, q)
	if err != nil {
		return nil, storeError(l.schema.Entity, "list", err)
	}
	res := &query.Result[T]{
		Items: emptyIfNil(items),
		Count: count,
		Page:  q.Page,
		Limit: q.Limit,
	}

	if useCache {
		if err := l.cache.Set(ctx, l.schema.Entity, canonical, version, res); err != nil {
			l.log.Warn().Err(err).Str("entity", l.schema.Entity).Msg("list cache write failed")
		}
	}
	return res, nil
}

func (l *lister[T]) invalidate(ctx context.Context) {
	if l.cache == nil {
		return
	}
	if err := l.cache.Invalidate(ctx, l.schema.Entity); err != nil {
		l.log.Warn().Err(err).Str("entity", l.schema.Entity).Msg("list cache invalidation failed")
	}
}
