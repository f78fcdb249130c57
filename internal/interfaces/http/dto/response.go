package dto

import "net/http"

// CodeSuccess is the envelope code of every successful response
const CodeSuccess = http.StatusOK

// CodePartial marks a batch that only partly succeeded
const CodePartial = http.StatusMultiStatus

// Response is the envelope every endpoint answers with. Callers treat any
// code other than CodeSuccess as a failure, whatever the transport status.
type Response struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

// NewSuccessResponse creates a success response
func NewSuccessResponse(data any) Response {
	return Response{Code: CodeSuccess, Message: "success", Data: data}
}

// NewMessageResponse creates a success response with a custom message
func NewMessageResponse(message string, data any) Response {
	return Response{Code: CodeSuccess, Message: message, Data: data}
}

// NewErrorResponse creates a failure response
func NewErrorResponse(code int, message string) Response {
	return Response{Code: code, Message: message}
}

// NewErrorResponseWithData creates a failure response carrying details
func NewErrorResponseWithData(code int, message string, data any) Response {
	return Response{Code: code, Message: message, Data: data}
}

// ValidationDetail describes one rejected request field
type ValidationDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// StockShortage is the data of an insufficient stock failure
type StockShortage struct {
	ChemicalID string `json:"chemicalId,omitempty"`
	Current    string `json:"current"`
	Requested  string `json:"requested"`
}

// IDList is the body of batch requests addressing records by ID
type IDList struct {
	IDs []string `json:"ids" binding:"required,min=1"`
}
