package dto

import "net/http"

// General error codes
const (
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "INTERNAL_ERROR"
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "BAD_REQUEST"
)

// ErrorCodeHTTPStatus maps domain error codes to HTTP status codes.
// Input problems are 400, missing resources 404, optimistic-lock and
// duplicate conflicts 409, and business rule rejections 422.
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:   http.StatusInternalServerError,
	ErrCodeBadRequest: http.StatusBadRequest,

	// Input validation -> 400 Bad Request
	"INVALID_INPUT":        http.StatusBadRequest,
	"INVALID_ORDER_INPUT":  http.StatusBadRequest,
	"INVALID_RETURN_INPUT": http.StatusBadRequest,
	"INVALID_COUPON_INPUT": http.StatusBadRequest,
	"INVALID_PRODUCT":      http.StatusBadRequest,
	"INVALID_PRODUCT_NAME": http.StatusBadRequest,
	"INVALID_QUANTITY":     http.StatusBadRequest,
	"INVALID_COST":         http.StatusBadRequest,

	// Missing resources -> 404 Not Found
	"NOT_FOUND":         http.StatusNotFound,
	"ORDER_NOT_FOUND":   http.StatusNotFound,
	"RETURN_NOT_FOUND":  http.StatusNotFound,
	"PRODUCT_NOT_FOUND": http.StatusNotFound,
	"CODE_NOT_FOUND":    http.StatusNotFound,

	// Conflicts -> 409 Conflict
	"ALREADY_EXISTS":       http.StatusConflict,
	"CONCURRENCY_CONFLICT": http.StatusConflict,

	// Business rules -> 422 Unprocessable Entity
	"INVALID_STATE":             http.StatusUnprocessableEntity,
	"INVALID_TRANSITION":        http.StatusUnprocessableEntity,
	"INVALID_RETURN_TRANSITION": http.StatusUnprocessableEntity,
	"INSUFFICIENT_STOCK":        http.StatusUnprocessableEntity,
	"ALREADY_REFUNDED":          http.StatusUnprocessableEntity,
	"CODE_EXPIRED":              http.StatusUnprocessableEntity,
	"CODE_INACTIVE":             http.StatusUnprocessableEntity,
	"MIN_ORDER_NOT_MET":         http.StatusUnprocessableEntity,
	"USAGE_LIMIT_REACHED":       http.StatusUnprocessableEntity,
	"NOT_APPLICABLE":            http.StatusUnprocessableEntity,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Returns 500 Internal Server Error if the error code is not found.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
