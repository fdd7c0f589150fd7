package ports

import (
	"context"
	"time"

	"github.com/99minutos/cargo-transport-api/internal/core/domain"
)

// CreatePackageInput carries the data needed to record a package.
type CreatePackageInput struct {
	Client      string
	Weight      float64
	Origin      string
	Destination string
	Date        time.Time
	// CreatedBy is the username of the authenticated caller.
	CreatedBy string
}

// CargoService defines use-case operations for packages and reports.
type CargoService interface {
	AddPackage(ctx context.Context, input CreatePackageInput) (*domain.Package, error)
	GenerateReport(ctx context.Context, day time.Time) (*domain.Report, error)
}
