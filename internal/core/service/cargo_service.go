package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/cargo-transport-api/internal/core/domain"
	"github.com/99minutos/cargo-transport-api/internal/core/ports"
)

type CargoService struct {
	repo   ports.PackageRepository
	cache  ports.ReportCache
	logger zerolog.Logger
}

// NewCargoService wires the package store. cache may be nil.
func NewCargoService(repo ports.PackageRepository, cache ports.ReportCache, logger zerolog.Logger) *CargoService {
	return &CargoService{repo: repo, cache: cache, logger: logger}
}

// AddPackage records a new package and drops any cached report for its day.
func (s *CargoService) AddPackage(ctx context.Context, input ports.CreatePackageInput) (*domain.Package, error) {
	if input.Client == "" || input.Origin == "" || input.Destination == "" || input.Weight <= 0 || input.Date.IsZero() {
		return nil, domain.ErrInvalidInput
	}

	pkg := &domain.Package{
		Client:      input.Client,
		Weight:      input.Weight,
		Origin:      input.Origin,
		Destination: input.Destination,
		Date:        domain.Day(input.Date),
		CreatedBy:   input.CreatedBy,
	}

	if err := s.repo.Create(ctx, pkg); err != nil {
		s.logger.Error().Err(err).Msg("failed to create package")
		return nil, fmt.Errorf("add package: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, pkg.Date); err != nil {
			s.logger.Warn().Err(err).Str("date", pkg.Date.Format(domain.DateLayout)).Msg("failed to invalidate cached report")
		}
	}

	s.logger.Info().Int64("package_id", pkg.ID).Str("created_by", input.CreatedBy).Msg("package added")
	return pkg, nil
}

// GenerateReport counts the packages shipping on day and prices them at the
// flat rate. Cache failures are logged and ignored.
func (s *CargoService) GenerateReport(ctx context.Context, day time.Time) (*domain.Report, error) {
	day = domain.Day(day)
	dateStr := day.Format(domain.DateLayout)

	// The generation is read before counting. An AddPackage that lands after
	// the count bumps it, and the write below goes to a dead generation.
	version, cacheable := s.cacheVersion(ctx, day)
	if cacheable {
		cached, err := s.cache.Get(ctx, day, version)
		if err != nil {
			s.logger.Warn().Err(err).Str("date", dateStr).Msg("report cache read failed, computing")
		} else if cached != nil {
			s.logger.Debug().Str("date", dateStr).Int64("version", version).Msg("report served from cache")
			return cached, nil
		}
	}

	count, err := s.repo.CountByDate(ctx, day)
	if err != nil {
		s.logger.Error().Err(err).Str("date", dateStr).Msg("failed to count packages")
		return nil, fmt.Errorf("generate report: %w", err)
	}

	report := domain.NewReport(day, count)

	if cacheable {
		if err := s.cache.Set(ctx, report, version); err != nil {
			s.logger.Warn().Err(err).Str("date", dateStr).Msg("failed to cache report")
		}
	}

	s.logger.Info().
		Str("date", dateStr).
		Int("total_packages", report.TotalPackages).
		Float64("total_revenue", report.TotalRevenue).
		Msg("report generated")
	return &report, nil
}

// cacheVersion reports the cache generation for day, and false when the
// cache is disabled or its generation cannot be read.
func (s *CargoService) cacheVersion(ctx context.Context, day time.Time) (int64, bool) {
	if s.cache == nil {
		return 0, false
	}
	version, err := s.cache.Version(ctx, day)
	if err != nil {
		s.logger.Warn().Err(err).Str("date", day.Format(domain.DateLayout)).Msg("report cache version unavailable, bypassing cache")
		return 0, false
	}
	return version, true
}
