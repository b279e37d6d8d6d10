// Package web defines common components for a web application.
package web

import "github.com/go-playground/validator/v10"

// Stable machine-readable error codes exposed to API clients.
const (
	CodeInvalidRequest    = "INVALID_REQUEST"
	CodeInvalidAmount     = "INVALID_AMOUNT"
	CodeInsufficientFunds = "INSUFFICIENT_FUNDS"
	CodeRecipientNotFound = "RECIPIENT_NOT_FOUND"
	CodeSelfTransfer      = "SELF_TRANSFER"
	CodeNotFound          = "NOT_FOUND"
	CodeConflict          = "CONFLICT"
	CodeUnauthorized      = "UNAUTHORIZED"
	CodeTransient         = "TRANSIENT"
	CodeInternal          = "INTERNAL"
)

// JSONError provides type for explicit json encoded error response.
type JSONError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error wraps a given code and err into a json friendly struct.
func Error(code string, err error) Response {
	return Response{Error: &JSONError{Code: code, Message: err.Error()}}
}

// Response holds the common response type for all APIs.
type Response struct {
	AccessToken          string     `json:"access_token,omitempty"`
	AccessTokenExpiresAt string     `json:"access_token_expires_at,omitempty"`
	Data                 any        `json:"data,omitempty"`
	Error                *JSONError `json:"error,omitempty"`
}

// GetErrorMsg returns a human readable message for a binding validation error.
func GetErrorMsg(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return " is required"
	case "email":
		return " must be a valid email address"
	case "min":
		return " must be longer than " + fe.Param()
	case "max":
		return " must be shorter than " + fe.Param()
	case "gte":
		return " must be greater than or equal to " + fe.Param()
	default:
		return " is invalid"
	}
}
