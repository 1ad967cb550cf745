package constants

import "time"

// Redis cache keys and TTLs.
// Pattern: seatly:{module}:{operation}:{identifier}:{params?}

const (
	CACHE_PREFIX = "seatly"
)

// TTL tiers, overridable via REDIS_*_TTL env vars
const (
	TTL_EVENT_DETAIL   = 2 * time.Hour    // event details change rarely
	TTL_EVENT_LIST     = 15 * time.Minute // listings with filters
	TTL_SEAT_AVAILABLE = 30 * time.Second // live seat availability
	TTL_ANALYTICS      = 10 * time.Minute // rollup reports
)

// Events module
const (
	CACHE_KEY_EVENTS_LIST  = CACHE_PREFIX + ":events:list"         // + :page:X:limit:Y:...
	CACHE_KEY_EVENT_DETAIL = CACHE_PREFIX + ":events:detail:uuid:" // + event-id
	CACHE_KEY_EVENT_SEATS  = CACHE_PREFIX + ":events:seats:uuid:"  // + event-id
)

// Analytics module
const (
	CACHE_KEY_ANALYTICS_POPULAR = CACHE_PREFIX + ":analytics:popular"
	CACHE_KEY_ANALYTICS_REVENUE = CACHE_PREFIX + ":analytics:revenue"
	CACHE_KEY_ANALYTICS_USERS   = CACHE_PREFIX + ":analytics:top_users"
)

// Invalidation patterns
const (
	PATTERN_INVALIDATE_EVENT_ALL = CACHE_PREFIX + ":events:*"
	PATTERN_INVALIDATE_ANALYTICS = CACHE_PREFIX + ":analytics:*"
)
