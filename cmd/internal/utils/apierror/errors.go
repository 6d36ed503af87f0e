package apierror

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrorResponse abstracts all API error responses to the user.
//
// This interface does not implement `error`, since its only purpose
// is to be used for API responses and not for logging circumstances.
//
// In general, the whole ErrorResponse can be sent for serialization.
type ErrorResponse interface {
	// Code is the HTTP status code to be returned.
	Code() int
}

type APIError struct {
	Message string `json:"message"`
	Status  int    `json:"-"`
}

func (a *APIError) Code() int {
	return a.Status
}

type StructuredError struct {
	Errors map[string][]string `json:"errors"`
	Status int                 `json:"-"`
}

func (s *StructuredError) Code() int {
	return s.Status
}

func (s *StructuredError) Add(field, problem string) {
	s.Errors[field] = append(s.Errors[field], problem)
}

// PartialWriteError reports a series that was only partly stored. The ids
// listed are real records; the operator reconciles them by hand.
type PartialWriteError struct {
	Message  string   `json:"message"`
	GroupID  string   `json:"group_id"`
	Written  int      `json:"written"`
	Intended int      `json:"intended"`
	IDs      []string `json:"ids"`
}

func (p *PartialWriteError) Code() int {
	return http.StatusInternalServerError
}

var (
	MalformedBodyError    = NewSimple(400, "Malformed request body")
	InternalServerError   = NewSimple(500, "Internal server error")
	InvalidMediaTypeError = NewSimple(415, "Unsupported media type")
	FormJSONRequiredError = NewSimple(400, "Form field 'json_payload' is required")

	NotFoundError        = NewSimple(404, "Resource not found")
	CompanyNotFoundError = NewSimple(404, "Company not found")
	InvalidNITError      = NewSimple(400, "The provided NIT is invalid")
	DuplicateNITError    = NewSimple(409, "A company with this NIT already exists")

	/*
	 * Recurring series
	 */
	InvalidPeriodicityError = NewSimple(400, "Unknown periodicity")
	InvalidDateError        = NewSimple(400, "Dates must use the YYYY-MM-DD format")
	EmptyGenerationError    = NewSimple(422, "No instance falls on or before the horizon")
	OrphanRiskError         = NewSimple(422, "Every commitment needs a company name, nothing was saved")
	NotRecurringError       = NewSimple(409, "Commitment does not belong to a recurring series")
	NoGroupsSelectedError   = NewSimple(400, "Select at least one recurring group")

	/*
	 * Receipts
	 */
	MissingFileNameError  = NewSimple(400, "Uploaded file has no name")
	NoReceiptError        = NewSimple(404, "Payment has no receipt")
	ReceiptsDisabledError = NewSimple(503, "Receipt storage is not configured")
	InvalidAmountError    = NewSimple(400, "Amount must be greater than zero")

	/*
	 * Used for authentication
	 */
	UnauthorizedError     = NewSimple(401, "Unauthorized")
	InvalidAuthTokenError = NewSimple(401, "Invalid or expired token")
)

func FromValidationError(err error) *StructuredError {
	var ve validator.ValidationErrors
	ok := errors.As(err, &ve)
	if !ok {
		return nil
	}

	problems := map[string][]string{}
	for _, fe := range ve {
		field := strings.ToLower(fe.Field())

		switch fe.Tag() {
		case "required", "notblank":
			problems[field] = append(problems[field], "This field is required")
		case "min":
			problems[field] = append(problems[field], "Value is too short, min: "+fe.Param())
		case "max":
			problems[field] = append(problems[field], "Value is too long, max: "+fe.Param())
		case "gt", "gte", "lt", "lte":
			problems[field] = append(problems[field], "Value is out of range ("+fe.Tag()+" "+fe.Param()+")")
		case "oneof":
			problems[field] = append(problems[field], "Value must be one of: "+fe.Param())
		case "periodicity":
			problems[field] = append(problems[field], "Value must be a known periodicity")
		case "paymentmethod":
			problems[field] = append(problems[field], "Value must be a known payment method")
		case "isodate":
			problems[field] = append(problems[field], "Value must be a date formatted as YYYY-MM-DD")
		case "nodupes":
			problems[field] = append(problems[field], "Values must not repeat")
		case "nit":
			problems[field] = append(problems[field], "Value must be a valid NIT")

		default:
			problems[field] = append(problems[field], "Invalid value provided")
		}
	}

	return &StructuredError{
		Errors: problems,
		Status: http.StatusBadRequest,
	}
}

func NewSimple(status int, msg string, args ...any) *APIError {
	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}
	return &APIError{Status: status, Message: msg}
}

func NewStructured(code int) *StructuredError {
	return &StructuredError{
		Errors: make(map[string][]string),
		Status: code,
	}
}

func NewInvalidParamTypeError(name, dataType string) *APIError {
	return NewSimple(http.StatusBadRequest, "Parameter '%s' has invalid type, expected: %s", name, dataType)
}

func NewMissingParamError(name string) *APIError {
	return NewSimple(http.StatusBadRequest, "Parameter '%s' is required", name)
}

func NewFileTooLargeError(maxBytes int64) *APIError {
	return NewSimple(http.StatusRequestEntityTooLarge, "File is too large, max: %d MB", maxBytes/1024/1024)
}

func NewInvalidFileExtError(ext string) *APIError {
	if ext == "" {
		return NewSimple(http.StatusBadRequest, "File has no extension")
	}
	return NewSimple(http.StatusBadRequest, "File extension '%s' is not allowed", ext)
}
