package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/99minutos/cargo-transport-api/internal/core/domain"
)

const defaultReportTTL = 5 * time.Minute

// ReportCache keeps computed daily reports in Redis.
//
// Key format:
//
//	report:ver:<YYYY-MM-DD>      generation counter, bumped by Invalidate
//	report:<YYYY-MM-DD>:<gen>    cached report for that generation
//
// The counter has no expiry. If it expired while an older entry survived, the
// counter would restart at 0 and could resurface that entry.
type ReportCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewReportCache wraps client. A non-positive ttl falls back to defaultReportTTL.
func NewReportCache(client *redis.Client, ttl time.Duration) *ReportCache {
	if ttl <= 0 {
		ttl = defaultReportTTL
	}
	return &ReportCache{client: client, ttl: ttl}
}

type cachedReport struct {
	TotalPackages int     `json:"total_packages"`
	TotalRevenue  float64 `json:"total_revenue"`
}

// Version returns the current generation for day, 0 when none was recorded.
func (c *ReportCache) Version(ctx context.Context, day time.Time) (int64, error) {
	v, err := c.client.Get(ctx, c.versionKey(day)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("report cache version: %w", err)
	}
	return v, nil
}

// Get returns the report cached for day at version, or nil on a miss.
func (c *ReportCache) Get(ctx context.Context, day time.Time, version int64) (*domain.Report, error) {
	raw, err := c.client.Get(ctx, c.key(day, version)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("report cache get: %w", err)
	}

	var cr cachedReport
	if err := json.Unmarshal(raw, &cr); err != nil {
		return nil, fmt.Errorf("report cache decode: %w", err)
	}
	return &domain.Report{
		Date:          domain.Day(day),
		TotalPackages: cr.TotalPackages,
		TotalRevenue:  cr.TotalRevenue,
	}, nil
}

// Set stores report under version until the cache ttl elapses.
func (c *ReportCache) Set(ctx context.Context, report domain.Report, version int64) error {
	raw, err := json.Marshal(cachedReport{
		TotalPackages: report.TotalPackages,
		TotalRevenue:  report.TotalRevenue,
	})
	if err != nil {
		return fmt.Errorf("report cache encode: %w", err)
	}
	return c.client.Set(ctx, c.key(report.Date, version), raw, c.ttl).Err()
}

// Invalidate moves day to the next generation. Entries of earlier
// generations are left to expire.
func (c *ReportCache) Invalidate(ctx context.Context, day time.Time) error {
	return c.client.Incr(ctx, c.versionKey(day)).Err()
}

func (c *ReportCache) key(day time.Time, version int64) string {
	return fmt.Sprintf("report:%s:%d", day.Format(domain.DateLayout), version)
}

func (c *ReportCache) versionKey(day time.Time) string {
	return "report:ver:" + day.Format(domain.DateLayout)
}
