package app

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/Kalind02/food-ordering-api/internal/cache"
	"github.com/Kalind02/food-ordering-api/internal/domain"
)

type CatalogRepository interface {
	ListRestaurants(ctx context.Context) ([]domain.Restaurant, error)
	GetRestaurant(ctx context.Context, id string) (*domain.Restaurant, error)
	ListMenu(ctx context.Context, restaurantID string) ([]domain.FoodItem, error)
}

type CatalogService struct {
	repo     CatalogRepository
	cache    cache.Cache
	cacheTTL time.Duration
	logger   *slog.Logger
}

const defaultCatalogCacheTTL = 5 * time.Minute

func NewCatalogService(repo CatalogRepository, opts ...CatalogServiceOption) *CatalogService {
	svc := &CatalogService{
		repo:     repo,
		cacheTTL: defaultCatalogCacheTTL,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

type CatalogServiceOption func(*CatalogService)

// WithCache enables read-through caching of catalog listings.
func WithCache(c cache.Cache, ttl time.Duration) CatalogServiceOption {
	return func(s *CatalogService) {
		s.cache = c
		if ttl > 0 {
			s.cacheTTL = ttl
		}
	}
}

// WithCatalogLogger overrides the default logger.
func WithCatalogLogger(l *slog.Logger) CatalogServiceOption {
	return func(s *CatalogService) {
		if l != nil {
			s.logger = l
		}
	}
}

func (s *CatalogService) ListRestaurants(ctx context.Context) ([]domain.Restaurant, error) {
	var restaurants []domain.Restaurant
	if s.fromCache(ctx, "restaurants", "all", &restaurants) {
		return restaurants, nil
	}

	restaurants, err := s.repo.ListRestaurants(ctx)
	if err != nil {
		return nil, err
	}
	s.toCache(ctx, "restaurants", "all", restaurants)
	return restaurants, nil
}

func (s *CatalogService) ListMenu(ctx context.Context, restaurantID string) ([]domain.FoodItem, error) {
	restaurant, err := s.repo.GetRestaurant(ctx, restaurantID)
	if err != nil {
		return nil, err
	}
	if restaurant == nil {
		return nil, domain.ErrRestaurantNotFound
	}

	var items []domain.FoodItem
	if s.fromCache(ctx, "menu", restaurantID, &items) {
		return items, nil
	}

	items, err = s.repo.ListMenu(ctx, restaurantID)
	if err != nil {
		return nil, err
	}
	s.toCache(ctx, "menu", restaurantID, items)
	return items, nil
}

// fromCache reports whether dst was filled from the cache. Cache errors only
// degrade to the repository.
func (s *CatalogService) fromCache(ctx context.Context, operation, key string, dst any) bool {
	if s.cache == nil {
		return false
	}
	raw, err := s.cache.Get(ctx, s.cache.GenerateKey(operation, key))
	if err != nil {
		s.logger.Warn("catalog cache get failed", "operation", operation, "error", err)
		return false
	}
	if raw == "" {
		return false
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		s.logger.Warn("catalog cache decode failed", "operation", operation, "error", err)
		return false
	}
	return true
}

func (s *CatalogService) toCache(ctx context.Context, operation, key string, value any) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, s.cache.GenerateKey(operation, key), string(raw), s.cacheTTL); err != nil {
		s.logger.Warn("catalog cache set failed", "operation", operation, "error", err)
	}
}
