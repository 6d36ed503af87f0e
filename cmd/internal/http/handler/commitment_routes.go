package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"drgroup/cmd/internal/contract"
	"drgroup/cmd/internal/utils"
	"drgroup/cmd/internal/utils/apierror"

	"github.com/labstack/echo/v4"
)

type CommitmentService interface {
	CreateCommitment(ctx context.Context, actor *utils.Actor, req *contract.CommitmentRequest) (*contract.CommitmentBatchResponse, apierror.ErrorResponse)
	GetAllCommitments(ctx context.Context, query *contract.CommitmentQuery) ([]*contract.CommitmentResponse, apierror.ErrorResponse)
	GetCommitmentByID(ctx context.Context, id string) (*contract.CommitmentResponse, apierror.ErrorResponse)
	UpdateCommitment(ctx context.Context, actor *utils.Actor, id string, req *contract.UpdateCommitmentRequest) (*contract.CommitmentBatchResponse, apierror.ErrorResponse)
	DeleteCommitment(ctx context.Context, id string, cascade bool) (*contract.CommitmentBatchResponse, apierror.ErrorResponse)
	AuditCommitments(ctx context.Context) (*contract.AuditResponse, apierror.ErrorResponse)
}

type ExportService interface {
	ExportCommitments(ctx context.Context, year int) ([]byte, string, apierror.ErrorResponse)
}

type DefaultCommitmentRoute struct {
	CommitmentService CommitmentService
	ExportService     ExportService
}

func NewCommitmentDefault(commitmentService CommitmentService, exportService ExportService) *DefaultCommitmentRoute {
	return &DefaultCommitmentRoute{
		CommitmentService: commitmentService,
		ExportService:     exportService,
	}
}

func (h *DefaultCommitmentRoute) GetCommitments(c echo.Context) error {
	var query contract.CommitmentQuery
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &query); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}

	commitments, apierr := h.CommitmentService.GetAllCommitments(c.Request().Context(), &query)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	resp := echo.Map{"commitments": commitments}
	return c.JSON(http.StatusOK, &resp)
}

func (h *DefaultCommitmentRoute) GetCommitment(c echo.Context) error {
	commitment, apierr := h.CommitmentService.GetCommitmentByID(c.Request().Context(), c.Param("id"))
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, commitment)
}

func (h *DefaultCommitmentRoute) CreateCommitment(c echo.Context) error {
	actor, cerr := utils.GetActorFromContext(c)
	if cerr != nil {
		return c.JSON(cerr.Code(), cerr)
	}

	var req contract.CommitmentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}

	batch, apierr := h.CommitmentService.CreateCommitment(c.Request().Context(), actor, &req)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusCreated, batch)
}

func (h *DefaultCommitmentRoute) UpdateCommitment(c echo.Context) error {
	actor, cerr := utils.GetActorFromContext(c)
	if cerr != nil {
		return c.JSON(cerr.Code(), cerr)
	}

	var req contract.UpdateCommitmentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}

	batch, apierr := h.CommitmentService.UpdateCommitment(c.Request().Context(), actor, c.Param("id"), &req)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, batch)
}

func (h *DefaultCommitmentRoute) DeleteCommitment(c echo.Context) error {
	cascade := false
	if raw := strings.TrimSpace(c.QueryParam("cascade")); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, apierror.NewInvalidParamTypeError("cascade", "bool"))
		}
		cascade = parsed
	}

	batch, apierr := h.CommitmentService.DeleteCommitment(c.Request().Context(), c.Param("id"), cascade)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, batch)
}

func (h *DefaultCommitmentRoute) AuditCommitments(c echo.Context) error {
	report, apierr := h.CommitmentService.AuditCommitments(c.Request().Context())
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, report)
}

func (h *DefaultCommitmentRoute) ExportCommitments(c echo.Context) error {
	year := 0
	if raw := strings.TrimSpace(c.QueryParam("year")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, apierror.NewInvalidParamTypeError("year", "int"))
		}
		year = parsed
	}

	data, fileName, apierr := h.ExportService.ExportCommitments(c.Request().Context(), year)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, "attachment; filename="+fileName)
	return c.Blob(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
