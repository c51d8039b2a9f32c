package store

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/ifmtech/event-planning/internal/profile"
	"github.com/ifmtech/event-planning/store/cache"
)

// Store provides database access to all raw objects, fronted by two caches:
//
//   - the session cache, a write-through id → *Session mirror of the store.
//     It is warmed from the database at startup and updated on every mutation
//     path, so scanning it is equivalent to scanning all live sessions. Its
//     entries never expire; a TTL would silently punch holes into conflict
//     detection.
//   - the query cache, holding paged list results keyed by their query
//     signature. It is populated lazily and invalidated wholesale on any
//     session mutation. Optionally backed by a shared redis L2.
type Store struct {
	profile *profile.Profile
	driver  Driver

	sessionCache *cache.Cache
	queryCache   *cache.Tiered
}

// Option configures a Store.
type Option func(*options)

type options struct {
	queryCacheL2 *cache.RedisCache
}

// WithRedisQueryCache adds a shared redis L2 to the query result cache.
func WithRedisQueryCache(rc *cache.RedisCache) Option {
	return func(o *options) {
		o.queryCacheL2 = rc
	}
}

// New creates a new instance of Store.
func New(driver Driver, profile *profile.Profile, opts ...Option) *Store {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	return &Store{
		driver:  driver,
		profile: profile,
		sessionCache: cache.New(cache.Config{
			// No TTL and no item bound: this cache mirrors the full live set.
			DefaultTTL: 0,
			MaxItems:   0,
		}),
		queryCache: cache.NewTiered(cache.TieredConfig{
			L1: cache.Config{
				DefaultTTL:      10 * time.Minute,
				CleanupInterval: 5 * time.Minute,
				MaxItems:        1000,
			},
			L2:     o.queryCacheL2,
			Encode: encodePage,
			Decode: decodePage,
		}),
	}
}

func encodePage(value any) ([]byte, error) {
	return json.Marshal(value)
}

func decodePage(payload []byte) (any, error) {
	var page Page
	if err := json.Unmarshal(payload, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (s *Store) GetDriver() Driver {
	return s.driver
}

func (s *Store) Close() error {
	_ = s.sessionCache.Close()
	_ = s.queryCache.Close()

	return s.driver.Close()
}

func sessionCacheKey(id int32) string {
	return strconv.FormatInt(int64(id), 10)
}

// WarmSessionCache loads every persisted session into the session cache so
// the cache is authoritative from the first conflict check on.
func (s *Store) WarmSessionCache(ctx context.Context) (int, error) {
	list, err := s.driver.ListSessions(ctx, &FindSession{})
	if err != nil {
		return 0, err
	}
	for _, session := range list {
		s.sessionCache.Set(ctx, sessionCacheKey(session.ID), session)
	}
	return len(list), nil
}

// SessionSnapshot returns the current value set of the session cache.
func (s *Store) SessionSnapshot(_ context.Context) []*Session {
	values := s.sessionCache.Values()
	sessions := make([]*Session, 0, len(values))
	for _, value := range values {
		if session, ok := value.(*Session); ok {
			sessions = append(sessions, session)
		}
	}
	return sessions
}

// CreateSession persists a new session, mirrors it into the session cache and
// invalidates the query cache. On a driver error no cache is touched.
func (s *Store) CreateSession(ctx context.Context, create *Session) (*Session, error) {
	created, err := s.driver.CreateSession(ctx, create)
	if err != nil {
		return nil, err
	}
	s.sessionCache.Set(ctx, sessionCacheKey(created.ID), created)
	s.queryCache.Clear(ctx)
	return created, nil
}

// ListSessions lists sessions with filter, bypassing the query cache.
func (s *Store) ListSessions(ctx context.Context, find *FindSession) ([]*Session, error) {
	return s.driver.ListSessions(ctx, find)
}

// GetSession gets a single session matching find.
func (s *Store) GetSession(ctx context.Context, find *FindSession) (*Session, error) {
	one := 1
	found := *find
	found.Limit = &one
	list, err := s.driver.ListSessions(ctx, &found)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

// UpdateSession applies a partial update, refreshes the session cache entry
// and invalidates the query cache. Returns the merged session.
func (s *Store) UpdateSession(ctx context.Context, update *UpdateSession) (*Session, error) {
	updated, err := s.driver.UpdateSession(ctx, update)
	if err != nil {
		return nil, err
	}
	s.sessionCache.Set(ctx, sessionCacheKey(updated.ID), updated)
	s.queryCache.Clear(ctx)
	return updated, nil
}

// DeleteSession removes a session, evicts its cache entry and invalidates the
// query cache.
func (s *Store) DeleteSession(ctx context.Context, delete *DeleteSession) error {
	if err := s.driver.DeleteSession(ctx, delete); err != nil {
		return err
	}
	s.sessionCache.Delete(ctx, sessionCacheKey(delete.ID))
	s.queryCache.Clear(ctx)
	return nil
}

// SearchSessions serves a paged listing from the query cache, falling back to
// the driver on a miss and caching the computed page.
func (s *Store) SearchSessions(ctx context.Context, find *FindSession) (*Page, error) {
	key := querySignature(find)
	if value, found := s.queryCache.Get(ctx, key); found {
		if page, ok := value.(*Page); ok {
			return page, nil
		}
	}

	sessions, err := s.driver.ListSessions(ctx, find)
	if err != nil {
		return nil, err
	}
	total, err := s.driver.CountSessions(ctx, find)
	if err != nil {
		return nil, err
	}

	page := &Page{
		Sessions: sessions,
		Total:    total,
	}
	if find.Limit != nil {
		page.Size = *find.Limit
		if find.Offset != nil && *find.Limit > 0 {
			page.Page = *find.Offset / *find.Limit
		}
	}

	s.queryCache.Set(ctx, key, page)
	return page, nil
}

// querySignature builds the cache key for a list query: filter bounds, order,
// page and size.
func querySignature(find *FindSession) string {
	formatBound := func(v *int64) string {
		if v == nil {
			return "-"
		}
		return strconv.FormatInt(*v, 10)
	}
	formatInt := func(v *int) string {
		if v == nil {
			return "-"
		}
		return strconv.Itoa(*v)
	}
	return cache.GenerateKey(
		"sessions",
		formatBound(find.StartFrom),
		formatBound(find.StartTo),
		find.OrderBy,
		formatInt(find.Offset),
		formatInt(find.Limit),
	)
}
