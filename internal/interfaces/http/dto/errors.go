package dto

import (
	"errors"
	"net/http"

	"github.com/hazchem/backend/internal/domain/shared"
)

// Domain error codes as produced by the domain layer
const (
	CodeNotFound            = "NOT_FOUND"
	CodeAlreadyExists       = "ALREADY_EXISTS"
	CodeInvalidInput        = "INVALID_INPUT"
	CodeConcurrencyConflict = "CONCURRENCY_CONFLICT"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeForbidden           = "FORBIDDEN"
	CodeInsufficientStock   = "INSUFFICIENT_STOCK"
)

// ErrorCodeHTTPStatus maps domain error codes to HTTP status codes. The
// envelope code of a failure equals its transport status.
var ErrorCodeHTTPStatus = map[string]int{
	CodeInvalidInput:        http.StatusBadRequest,
	CodeInsufficientStock:   http.StatusBadRequest,
	CodeUnauthorized:        http.StatusUnauthorized,
	CodeForbidden:           http.StatusForbidden,
	CodeNotFound:            http.StatusNotFound,
	CodeAlreadyExists:       http.StatusConflict,
	CodeConcurrencyConflict: http.StatusConflict,
}

// GetHTTPStatus returns the HTTP status code for a domain error code.
// Unknown codes are internal errors.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// internalMessage hides storage and programming faults from callers
const internalMessage = "服务器内部错误"

// FromError converts an error into its status and envelope
func FromError(err error) (int, Response) {
	var shortage *shared.InsufficientStockError
	if errors.As(err, &shortage) {
		return http.StatusBadRequest, NewErrorResponseWithData(http.StatusBadRequest, "库存不足", StockShortage{
			ChemicalID: shortage.ChemicalID,
			Current:    shortage.Current.String(),
			Requested:  shortage.Requested.String(),
		})
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		status := GetHTTPStatus(domainErr.Code)
		if status == http.StatusInternalServerError {
			return status, NewErrorResponse(status, internalMessage)
		}
		return status, NewErrorResponse(status, domainErr.Message)
	}

	return http.StatusInternalServerError, NewErrorResponse(http.StatusInternalServerError, internalMessage)
}
