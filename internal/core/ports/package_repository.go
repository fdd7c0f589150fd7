package ports

import (
	"context"
	"time"

	"github.com/99minutos/cargo-transport-api/internal/core/domain"
)

// PackageRepository defines persistence operations for cargo packages.
type PackageRepository interface {
	// Create stores p and assigns p.ID.
	Create(ctx context.Context, p *domain.Package) error
	// CountByDate returns how many packages ship on the given calendar day.
	CountByDate(ctx context.Context, day time.Time) (int, error)
}

// ReportCache stores computed daily reports under a per-day generation.
// Readers take the generation before counting and write back under it, so a
// count that raced with Invalidate lands in a generation nobody reads again.
type ReportCache interface {
	// Version returns the current generation for day. A day never
	// invalidated is generation 0.
	Version(ctx context.Context, day time.Time) (int64, error)
	// Get returns the report cached for day at version. A miss is (nil, nil).
	Get(ctx context.Context, day time.Time, version int64) (*domain.Report, error)
	Set(ctx context.Context, report domain.Report, version int64) error
	// Invalidate advances day to a new generation.
	Invalidate(ctx context.Context, day time.Time) error
}
