package domain

import "time"

// DateLayout is the wire and storage format of a package's shipping day.
const DateLayout = "2006-01-02"

// RatePerPackage is the flat revenue booked for every package.
const RatePerPackage = 10.0

// Package is a single cargo shipment record.
type Package struct {
	ID          int64     `json:"id"`
	Client      string    `json:"client"`
	Weight      float64   `json:"weight"`
	Origin      string    `json:"origin"`
	Destination string    `json:"destination"`
	Date        time.Time `json:"date"`
	CreatedBy   string    `json:"created_by,omitempty"`
}

// Report aggregates the packages shipped on one day.
type Report struct {
	Date          time.Time `json:"date"`
	TotalPackages int       `json:"total_packages"`
	TotalRevenue  float64   `json:"total_revenue"`
}

// NewReport builds the report for count packages on date.
func NewReport(date time.Time, count int) Report {
	return Report{
		Date:          Day(date),
		TotalPackages: count,
		TotalRevenue:  float64(count) * RatePerPackage,
	}
}

// Day truncates t to midnight UTC of its calendar day.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDay parses a YYYY-MM-DD string.
func ParseDay(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, err
	}
	return Day(t), nil
}
