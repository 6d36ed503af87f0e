package handler

import (
	"context"
	"net/http"

	"drgroup/cmd/internal/contract"
	"drgroup/cmd/internal/utils/apierror"

	"github.com/labstack/echo/v4"
)

type CompanyService interface {
	CreateCompany(ctx context.Context, req *contract.CompanyRequest) (*contract.CompanyResponse, apierror.ErrorResponse)
	GetAllCompanies(ctx context.Context) ([]*contract.CompanyResponse, apierror.ErrorResponse)
	GetCompanyByID(ctx context.Context, id string) (*contract.CompanyResponse, apierror.ErrorResponse)
	UpdateCompany(ctx context.Context, id string, req *contract.UpdateCompanyRequest) (*contract.CompanyResponse, apierror.ErrorResponse)
}

type DefaultCompanyRoute struct {
	CompanyService CompanyService
}

func NewCompanyDefault(companyService CompanyService) *DefaultCompanyRoute {
	return &DefaultCompanyRoute{CompanyService: companyService}
}

func (h *DefaultCompanyRoute) GetCompanies(c echo.Context) error {
	companies, apierr := h.CompanyService.GetAllCompanies(c.Request().Context())
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	resp := echo.Map{"companies": companies}
	return c.JSON(http.StatusOK, &resp)
}

func (h *DefaultCompanyRoute) GetCompany(c echo.Context) error {
	company, apierr := h.CompanyService.GetCompanyByID(c.Request().Context(), c.Param("id"))
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, company)
}

func (h *DefaultCompanyRoute) CreateCompany(c echo.Context) error {
	var req contract.CompanyRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}

	company, apierr := h.CompanyService.CreateCompany(c.Request().Context(), &req)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusCreated, company)
}

func (h *DefaultCompanyRoute) UpdateCompany(c echo.Context) error {
	var req contract.UpdateCompanyRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}

	company, apierr := h.CompanyService.UpdateCompany(c.Request().Context(), c.Param("id"), &req)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, company)
}
