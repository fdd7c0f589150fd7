package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/99minutos/cargo-transport-api/internal/core/domain"
)

const packagesTable = "packages"

type PackageRepository struct {
	db *sql.DB
}

func NewPackageRepository(db *sql.DB) *PackageRepository {
	return &PackageRepository{db: db}
}

// Create inserts p and sets p.ID from the BIGSERIAL sequence.
func (r *PackageRepository) Create(ctx context.Context, p *domain.Package) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query, args, err := psql.Insert(packagesTable).
		Columns("client", "weight", "origin", "destination", "ship_date", "created_by").
		Values(p.Client, p.Weight, p.Origin, p.Destination, p.Date.Format(domain.DateLayout), p.CreatedBy).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert package: %w", err)
	}

	var id int64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		return fmt.Errorf("insert package: %w", err)
	}
	p.ID = id
	return nil
}

func (r *PackageRepository) CountByDate(ctx context.Context, day time.Time) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query, args, err := psql.Select("COUNT(*)").
		From(packagesTable).
		Where(sq.Eq{"ship_date": day.Format(domain.DateLayout)}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count packages: %w", err)
	}

	var n int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count packages: %w", err)
	}
	return n, nil
}
