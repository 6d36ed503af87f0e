package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"drgroup/cmd/internal/contract"
	"drgroup/cmd/internal/domain/recurring"
	"drgroup/cmd/internal/utils"
	"drgroup/cmd/internal/utils/apierror"

	"github.com/labstack/echo/v4"
)

type SeriesService interface {
	PreviewSeries(ctx context.Context, req *contract.SeriesPreviewRequest) (*contract.SeriesPreviewResponse, apierror.ErrorResponse)
	GetPeriodicities() []*contract.PeriodicityResponse
	GetNextDates(periodicity, start string, count int) (*contract.NextDatesResponse, apierror.ErrorResponse)
	CheckExtensions(ctx context.Context, lookaheadMonths int) (*contract.ExtensionCheckResponse, apierror.ErrorResponse)
	ExtendSeries(ctx context.Context, actor *utils.Actor, req *contract.ExtendSeriesRequest) (*contract.ExtendSeriesResponse, apierror.ErrorResponse)
}

type DefaultSeriesRoute struct {
	SeriesService SeriesService
}

func NewSeriesDefault(seriesService SeriesService) *DefaultSeriesRoute {
	return &DefaultSeriesRoute{SeriesService: seriesService}
}

func (h *DefaultSeriesRoute) PreviewSeries(c echo.Context) error {
	var req contract.SeriesPreviewRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}

	preview, apierr := h.SeriesService.PreviewSeries(c.Request().Context(), &req)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, preview)
}

func (h *DefaultSeriesRoute) GetPeriodicities(c echo.Context) error {
	resp := echo.Map{"periodicities": h.SeriesService.GetPeriodicities()}
	return c.JSON(http.StatusOK, &resp)
}

func (h *DefaultSeriesRoute) GetNextDates(c echo.Context) error {
	count, err := intQueryParam(c, "count", 0)
	if err != nil {
		return c.JSON(http.StatusBadRequest, apierror.NewInvalidParamTypeError("count", "int"))
	}

	dates, apierr := h.SeriesService.GetNextDates(c.Param("periodicity"), c.QueryParam("start"), count)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, dates)
}

func (h *DefaultSeriesRoute) CheckExtensions(c echo.Context) error {
	lookahead, err := intQueryParam(c, "lookahead", recurring.DefaultLookaheadMonths)
	if err != nil {
		return c.JSON(http.StatusBadRequest, apierror.NewInvalidParamTypeError("lookahead", "int"))
	}

	report, apierr := h.SeriesService.CheckExtensions(c.Request().Context(), lookahead)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, report)
}

func (h *DefaultSeriesRoute) ExtendSeries(c echo.Context) error {
	actor, cerr := utils.GetActorFromContext(c)
	if cerr != nil {
		return c.JSON(cerr.Code(), cerr)
	}

	var req contract.ExtendSeriesRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}

	resp, apierr := h.SeriesService.ExtendSeries(c.Request().Context(), actor, &req)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	status := http.StatusOK
	if resp.Failed > 0 {
		status = http.StatusMultiStatus
	}
	return c.JSON(status, resp)
}

// intQueryParam reads an optional integer query parameter, 0 when absent.
// intQueryParam returns fallback when the parameter is absent.
func intQueryParam(c echo.Context, name string, fallback int) (int, error) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}
