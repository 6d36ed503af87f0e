package handler

import (
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"strings"

	"drgroup/cmd/internal/contract"
	"drgroup/cmd/internal/utils"
	"drgroup/cmd/internal/utils/apierror"

	"github.com/labstack/echo/v4"
)

type PaymentService interface {
	CreatePayment(ctx context.Context, actor *utils.Actor, req *contract.PaymentRequest, fileHeader *multipart.FileHeader) (*contract.PaymentResponse, apierror.ErrorResponse)
	GetAllPayments(ctx context.Context, commitmentID string) ([]*contract.PaymentResponse, apierror.ErrorResponse)
	GetReceiptURL(ctx context.Context, id string) (*contract.ReceiptURLResponse, apierror.ErrorResponse)
	DeletePayment(ctx context.Context, actor *utils.Actor, id string) apierror.ErrorResponse
}

type DefaultPaymentRoute struct {
	PaymentService PaymentService
}

func NewPaymentDefault(paymentService PaymentService) *DefaultPaymentRoute {
	return &DefaultPaymentRoute{PaymentService: paymentService}
}

func (h *DefaultPaymentRoute) GetPayments(c echo.Context) error {
	commitmentID := strings.TrimSpace(c.QueryParam("commitment_id"))
	payments, apierr := h.PaymentService.GetAllPayments(c.Request().Context(), commitmentID)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	resp := echo.Map{"payments": payments}
	return c.JSON(http.StatusOK, &resp)
}

// CreatePayment accepts plain JSON, or a multipart form carrying the JSON in
// 'json_payload' and an optional 'receipt' file.
func (h *DefaultPaymentRoute) CreatePayment(c echo.Context) error {
	actor, cerr := utils.GetActorFromContext(c)
	if cerr != nil {
		return c.JSON(cerr.Code(), cerr)
	}

	contentType := c.Request().Header.Get(echo.HeaderContentType)
	var (
		req        contract.PaymentRequest
		fileHeader *multipart.FileHeader
	)

	switch {
	case strings.HasPrefix(contentType, echo.MIMEApplicationJSON):
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
		}

	case strings.HasPrefix(contentType, echo.MIMEMultipartForm):
		jsonPayload := strings.TrimSpace(c.FormValue("json_payload"))
		if jsonPayload == "" {
			return c.JSON(http.StatusBadRequest, apierror.FormJSONRequiredError)
		}

		if err := json.Unmarshal([]byte(jsonPayload), &req); err != nil {
			return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
		}

		// The receipt is optional, a missing part is not an error
		if fh, err := c.FormFile("receipt"); err == nil {
			fileHeader = fh
		}

	default:
		mediaTypeError := apierror.InvalidMediaTypeError
		return c.JSON(http.StatusUnsupportedMediaType, mediaTypeError)
	}

	payment, apierr := h.PaymentService.CreatePayment(c.Request().Context(), actor, &req, fileHeader)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusCreated, payment)
}

func (h *DefaultPaymentRoute) GetReceipt(c echo.Context) error {
	url, apierr := h.PaymentService.GetReceiptURL(c.Request().Context(), c.Param("id"))
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, url)
}

func (h *DefaultPaymentRoute) DeletePayment(c echo.Context) error {
	actor, cerr := utils.GetActorFromContext(c)
	if cerr != nil {
		return c.JSON(cerr.Code(), cerr)
	}

	if apierr := h.PaymentService.DeletePayment(c.Request().Context(), actor, c.Param("id")); apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.NoContent(http.StatusNoContent)
}
