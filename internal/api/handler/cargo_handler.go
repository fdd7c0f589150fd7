package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/99minutos/cargo-transport-api/internal/api/metrics"
	"github.com/99minutos/cargo-transport-api/internal/core/domain"
	"github.com/99minutos/cargo-transport-api/internal/core/ports"
)

// CargoHandler handles HTTP requests for packages and reports.
type CargoHandler struct {
	service ports.CargoService
	log     zerolog.Logger
}

func NewCargoHandler(service ports.CargoService, log zerolog.Logger) *CargoHandler {
	return &CargoHandler{service: service, log: log}
}

// CreatePackage handles POST /cargo/packages/.
//
// @Summary      Record a package
// @Tags         cargo
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createPackageRequest  true  "Package details"
// @Success      200   {object}  packageResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /cargo/packages/ [post]
func (h *CargoHandler) CreatePackage(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}

	var req createPackageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	day, err := domain.ParseDay(req.Date)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "date must be YYYY-MM-DD")
	}

	pkg, err := h.service.AddPackage(c.Request().Context(), ports.CreatePackageInput{
		Client:      req.Client,
		Weight:      req.Weight,
		Origin:      req.Origin,
		Destination: req.Destination,
		Date:        day,
		CreatedBy:   user.Username,
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return err
		}
		h.log.Error().Err(err).Str("username", user.Username).Msg("error adding package")
		return echo.NewHTTPError(http.StatusInternalServerError, "error adding package")
	}

	metrics.PackagesCreatedTotal.Inc()
	return c.JSON(http.StatusOK, packageResponse{
		ID:          pkg.ID,
		Client:      pkg.Client,
		Weight:      pkg.Weight,
		Origin:      pkg.Origin,
		Destination: pkg.Destination,
		Date:        pkg.Date.Format(domain.DateLayout),
	})
}

// Report handles GET /cargo/report/?report_date=YYYY-MM-DD.
//
// @Summary      Daily package report
// @Tags         cargo
// @Produce      json
// @Security     BearerAuth
// @Param        report_date  query     string  true  "Day to report on (YYYY-MM-DD)"
// @Success      200          {object}  reportResponse
// @Failure      401          {object}  errorResponse
// @Failure      422          {object}  errorResponse
// @Failure      500          {object}  errorResponse
// @Router       /cargo/report/ [get]
func (h *CargoHandler) Report(c echo.Context) error {
	if _, err := ctxUser(c); err != nil {
		return err
	}

	var q reportQuery
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &q); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid query")
	}
	if err := c.Validate(&q); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	day, err := domain.ParseDay(q.ReportDate)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "report_date must be YYYY-MM-DD")
	}

	report, err := h.service.GenerateReport(c.Request().Context(), day)
	if err != nil {
		h.log.Error().Err(err).Str("report_date", q.ReportDate).Msg("error generating report")
		return echo.NewHTTPError(http.StatusInternalServerError, "error generating report")
	}

	metrics.ReportsGeneratedTotal.Inc()
	return c.JSON(http.StatusOK, reportResponse{
		TotalPackages: report.TotalPackages,
		TotalRevenue:  report.TotalRevenue,
	})
}
