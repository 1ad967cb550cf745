package analytics

import (
	"context"
	"fmt"

	"seatly/internal/shared/config"
	"seatly/internal/shared/constants"
	"seatly/pkg/cache"
	"seatly/pkg/logger"
)

const (
	popularLimit = 5
	topUserLimit = 5
	searchLimit  = 10
)

type Service interface {
	PopularEvents(ctx context.Context) ([]PopularEvent, error)
	RevenueByEvent(ctx context.Context) ([]EventRevenue, error)
	TopUsers(ctx context.Context) ([]TopUser, error)
	SearchRanked(ctx context.Context, q SearchQuery) ([]RankedEvent, error)
}

type service struct {
	repo  Repository
	cache cache.Service
	ttl   config.RedisConfig
	log   *logger.Logger
}

func NewService(repo Repository, cacheSvc cache.Service, redisCfg config.RedisConfig, log *logger.Logger) Service {
	return &service{repo: repo, cache: cacheSvc, ttl: redisCfg, log: log}
}

func (s *service) PopularEvents(ctx context.Context) ([]PopularEvent, error) {
	var out []PopularEvent
	err := s.cached(ctx, constants.CACHE_KEY_ANALYTICS_POPULAR, &out, func() (interface{}, error) {
		return s.repo.PopularEvents(ctx, popularLimit)
	})
	return out, err
}

func (s *service) RevenueByEvent(ctx context.Context) ([]EventRevenue, error) {
	var out []EventRevenue
	err := s.cached(ctx, constants.CACHE_KEY_ANALYTICS_REVENUE, &out, func() (interface{}, error) {
		return s.repo.RevenueByEvent(ctx)
	})
	return out, err
}

func (s *service) TopUsers(ctx context.Context) ([]TopUser, error) {
	var out []TopUser
	err := s.cached(ctx, constants.CACHE_KEY_ANALYTICS_USERS, &out, func() (interface{}, error) {
		return s.repo.TopUsers(ctx, topUserLimit)
	})
	return out, err
}

// SearchRanked is not cached: the filter space is too wide for useful
// hit rates.
func (s *service) SearchRanked(ctx context.Context, q SearchQuery) ([]RankedEvent, error) {
	return s.repo.SearchRanked(ctx, q, searchLimit)
}

func (s *service) cached(ctx context.Context, key string, dest interface{}, fetch func() (interface{}, error)) error {
	if s.cache == nil {
		value, err := fetch()
		if err != nil {
			return err
		}
		return assign(dest, value)
	}
	return s.cache.GetOrSet(ctx, key, dest, s.ttl.ReportTTL, fetch)
}

func assign(dest, value interface{}) error {
	switch d := dest.(type) {
	case *[]PopularEvent:
		v, ok := value.([]PopularEvent)
		if !ok {
			return fmt.Errorf("unexpected rollup type %T", value)
		}
		*d = v
	case *[]EventRevenue:
		v, ok := value.([]EventRevenue)
		if !ok {
			return fmt.Errorf("unexpected rollup type %T", value)
		}
		*d = v
	case *[]TopUser:
		v, ok := value.([]TopUser)
		if !ok {
			return fmt.Errorf("unexpected rollup type %T", value)
		}
		*d = v
	default:
		return fmt.Errorf("unexpected rollup destination %T", dest)
	}
	return nil
}
