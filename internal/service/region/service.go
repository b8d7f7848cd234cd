// Package region lists the backend's regions and picks one for a visitor.
package region

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"storefront/internal/domain"
	"storefront/internal/logging"
)

type Backend interface {
	ListRegions(ctx context.Context) ([]domain.Region, error)
}

// Service caches the region list in process; regions change rarely and
// every page render needs them.
type Service struct {
	backend        Backend
	defaultCountry string
	ttl            time.Duration
	logger         *zap.Logger
	now            func() time.Time

	mu      sync.Mutex
	regions []domain.Region
	fetched time.Time
}

func New(backend Backend, defaultCountry string, ttl time.Duration, logger *zap.Logger) *Service {
	return &Service{
		backend:        backend,
		defaultCountry: strings.ToLower(strings.TrimSpace(defaultCountry)),
		ttl:            ttl,
		logger:         logging.OrNop(logger),
		now:            time.Now,
	}
}

// List returns all regions. When a refresh fails but an older list is held,
// the stale list is served.
func (s *Service) List(ctx context.Context) ([]domain.Region, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.regions != nil && s.now().Sub(s.fetched) < s.ttl {
		return s.regions, nil
	}
	regions, err := s.backend.ListRegions(ctx)
	if err != nil {
		if s.regions != nil {
			s.logger.Warn("region refresh failed, serving cached list", zap.Error(err))
			return s.regions, nil
		}
		return nil, err
	}
	if regions == nil {
		regions = []domain.Region{}
	}
	s.regions = regions
	s.fetched = s.now()
	return regions, nil
}

func (s *Service) ByID(ctx context.Context, id string) (*domain.Region, error) {
	regions, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range regions {
		if regions[i].ID == id {
			return &regions[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

// ForCountry returns the region serving an ISO-2 country code.
func (s *Service) ForCountry(ctx context.Context, country string) (*domain.Region, error) {
	country = strings.TrimSpace(country)
	if country == "" {
		return nil, domain.ErrNotFound
	}
	regions, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range regions {
		if regions[i].HasCountry(country) {
			return &regions[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

// Default is the region for the configured default country, or the first
// region when no region serves it.
func (s *Service) Default(ctx context.Context) (*domain.Region, error) {
	if r, err := s.ForCountry(ctx, s.defaultCountry); err == nil {
		return r, nil
	}
	regions, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(regions) == 0 {
		return nil, domain.ErrNotFound
	}
	return &regions[0], nil
}

// Resolve picks the region for a request: an explicit region id wins, then
// the country, then the default.
func (s *Service) Resolve(ctx context.Context, regionID, country string) (*domain.Region, error) {
	if regionID != "" {
		if r, err := s.ByID(ctx, regionID); err == nil {
			return r, nil
		}
	}
	if country != "" {
		if r, err := s.ForCountry(ctx, country); err == nil {
			return r, nil
		}
	}
	return s.Default(ctx)
}
