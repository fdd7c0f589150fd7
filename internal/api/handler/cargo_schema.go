package handler

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Request / Response types ---

type createPackageRequest struct {
	Client      string  `json:"client"      validate:"required"`
	Weight      float64 `json:"weight"      validate:"required,gt=0"`
	Origin      string  `json:"origin"      validate:"required"`
	Destination string  `json:"destination" validate:"required"`
	Date        string  `json:"date"        validate:"required,datetime=2006-01-02"`
}

type reportQuery struct {
	ReportDate string `query:"report_date" validate:"required,datetime=2006-01-02"`
}

type packageResponse struct {
	ID          int64   `json:"id"`
	Client      string  `json:"client"`
	Weight      float64 `json:"weight"`
	Origin      string  `json:"origin"`
	Destination string  `json:"destination"`
	Date        string  `json:"date"`
}

type reportResponse struct {
	TotalPackages int     `json:"total_packages"`
	TotalRevenue  float64 `json:"total_revenue"`
}
