package shared

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is matches domain errors by code so wrapped or re-created errors compare equal
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound            = NewDomainError("NOT_FOUND", "资源不存在")
	ErrAlreadyExists       = NewDomainError("ALREADY_EXISTS", "资源已存在")
	ErrInvalidInput        = NewDomainError("INVALID_INPUT", "参数错误")
	ErrConcurrencyConflict = NewDomainError("CONCURRENCY_CONFLICT", "数据已被修改，请刷新后重试")
	ErrUnauthorized        = NewDomainError("UNAUTHORIZED", "未登录或登录已过期")
	ErrForbidden           = NewDomainError("FORBIDDEN", "无权访问")
	ErrInsufficientStock   = NewDomainError("INSUFFICIENT_STOCK", "库存不足")
)

// InsufficientStockError reports a rejected decrease together with the
// quantities involved.
type InsufficientStockError struct {
	ChemicalID string
	Current    decimal.Decimal
	Requested  decimal.Decimal
}

// Error implements the error interface
func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock: current %s, requested %s", e.Current.String(), e.Requested.String())
}

// Is makes errors.Is(err, ErrInsufficientStock) hold
func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// NewInsufficientStockError creates an InsufficientStockError
func NewInsufficientStockError(chemicalID string, current, requested decimal.Decimal) *InsufficientStockError {
	return &InsufficientStockError{
		ChemicalID: chemicalID,
		Current:    current,
		Requested:  requested,
	}
}

// NewValidationError creates an INVALID_INPUT error with a specific message
func NewValidationError(format string, args ...any) *DomainError {
	return NewDomainError(ErrInvalidInput.Code, fmt.Sprintf(format, args...))
}

// NewNotFoundError creates a NOT_FOUND error naming the missing resource,
// e.g. NewNotFoundError("化学品") reads 化学品不存在
func NewNotFoundError(resource string) *DomainError {
	return NewDomainError(ErrNotFound.Code, resource+"不存在")
}
