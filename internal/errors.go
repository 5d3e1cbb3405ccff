package internal

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "VALIDATION_ERROR"
	ErrorTypeNotFound     ErrorType = "NOT_FOUND"
	ErrorTypeUnauthorized ErrorType = "UNAUTHORIZED"
	ErrorTypeForbidden    ErrorType = "FORBIDDEN"
	ErrorTypeConflict     ErrorType = "CONFLICT"
	ErrorTypeInternal     ErrorType = "INTERNAL_ERROR"
	ErrorTypeExternal     ErrorType = "EXTERNAL_ERROR"

	ErrorTypePaymentRequired ErrorType = "PAYMENT_REQUIRED"
)

type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeInvalidRequest   ErrorCode = "INVALID_REQUEST"
	ErrCodeInvalidID        ErrorCode = "INVALID_ID"
	ErrCodeNotFound         ErrorCode = "NOT_FOUND"

	ErrCodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeUserInactive       ErrorCode = "USER_INACTIVE"
	ErrCodeUnauthenticated    ErrorCode = "UNAUTHENTICATED"
	ErrCodeInvalidState       ErrorCode = "INVALID_OAUTH_STATE"
	ErrCodeEmailTaken         ErrorCode = "EMAIL_TAKEN"
	ErrCodeInsufficientRole   ErrorCode = "INSUFFICIENT_PERMISSIONS"

	ErrCodeUserNotFound      ErrorCode = "USER_NOT_FOUND"
	ErrCodeGroupNotFound     ErrorCode = "GROUP_NOT_FOUND"
	ErrCodeGroupInUse        ErrorCode = "GROUP_IN_USE"
	ErrCodeGroupExists       ErrorCode = "GROUP_EXISTS"
	ErrCodeGroupReserved     ErrorCode = "GROUP_RESERVED"
	ErrCodeUnknownPermission ErrorCode = "UNKNOWN_PERMISSION"
	ErrCodeCannotDeleteSelf  ErrorCode = "CANNOT_DELETE_SELF"
	ErrCodePartnerNotFound   ErrorCode = "PARTNER_NOT_FOUND"
	ErrCodeCategoryNotFound  ErrorCode = "CATEGORY_NOT_FOUND"
	ErrCodeCategoryExists    ErrorCode = "CATEGORY_EXISTS"
	ErrCodeCommentNotFound   ErrorCode = "COMMENT_NOT_FOUND"
	ErrCodeContactNotFound   ErrorCode = "CONTACT_NOT_FOUND"
	ErrCodeSupplierNotFound  ErrorCode = "SUPPLIER_NOT_FOUND"
	ErrCodeProductNotFound   ErrorCode = "PRODUCT_NOT_FOUND"
	ErrCodeTicketNotFound    ErrorCode = "TICKET_NOT_FOUND"
	ErrCodeContentNotFound   ErrorCode = "CONTENT_NOT_FOUND"
	ErrCodeContentExists     ErrorCode = "CONTENT_EXISTS"
	ErrCodeInvalidTransition ErrorCode = "INVALID_STATUS_TRANSITION"
	ErrCodeTicketClosed      ErrorCode = "TICKET_CLOSED"

	ErrCodeInsufficientCredits  ErrorCode = "INSUFFICIENT_CREDITS"
	ErrCodePaymentNotCompleted  ErrorCode = "PAYMENT_NOT_COMPLETED"
	ErrCodePaymentOwnerMismatch ErrorCode = "PAYMENT_OWNER_MISMATCH"
	ErrCodePaymentFailed        ErrorCode = "PAYMENT_FAILED"
	ErrCodeInvalidSignature     ErrorCode = "INVALID_SIGNATURE"
)

type AppError struct {
	Type       ErrorType   `json:"type"`
	Code       ErrorCode   `json:"code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
	StatusCode int         `json:"-"`
	Cause      error       `json:"-"`
}

func (e *AppError) Error() string {
	if e.Details != nil {
		if validationErrors, ok := e.Details.(ValidationErrors); ok && len(validationErrors.Errors) > 0 {

			return validationErrors.Errors[0].Message
		}
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) GetDetailedMessage() string {
	if e.Details != nil {
		if validationErrors, ok := e.Details.(ValidationErrors); ok {
			if len(validationErrors.Errors) == 1 {
				return validationErrors.Errors[0].Message
			} else if len(validationErrors.Errors) > 1 {
				messages := make([]string, len(validationErrors.Errors))
				for i, err := range validationErrors.Errors {
					messages[i] = err.Message
				}
				return strings.Join(messages, "; ")
			}
		}
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

func (e *AppError) WithDetails(details interface{}) *AppError {
	e.Details = details
	return e
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func NewValidationError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func NewValidationFieldError(field, message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       ErrCodeValidationFailed,
		Message:    "Validation failed",
		StatusCode: http.StatusBadRequest,
		Details: ValidationErrors{
			Errors: []ValidationError{
				{Field: field, Message: message, Code: string(code)},
			},
		},
	}
}

func NewNotFoundError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

func NewUnauthorizedError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeUnauthorized,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

func NewForbiddenError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeForbidden,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusForbidden,
	}
}

func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Code:       "INTERNAL_ERROR",
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

func NewConflictError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

func NewPaymentRequiredError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypePaymentRequired,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusPaymentRequired,
	}
}

func NewExternalError(message string, code ErrorCode, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeExternal,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadGateway,
		Cause:      cause,
	}
}

// Sentinel errors are shared values; never mutate them with WithCause or
// WithDetails, build a fresh error with the constructor instead.
var (
	ErrInvalidCredentials = NewUnauthorizedError("Invalid email or password", ErrCodeInvalidCredentials)
	ErrUserInactive       = NewForbiddenError("User account is inactive", ErrCodeUserInactive)
	ErrUnauthenticated    = NewUnauthorizedError("Authentication required", ErrCodeUnauthenticated)
	ErrEmailTaken         = NewConflictError("Email is already registered", ErrCodeEmailTaken)

	ErrInsufficientCredits = NewPaymentRequiredError("Not enough AI credits", ErrCodeInsufficientCredits)
)

func IsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

type Response struct {
	Error *AppError `json:"error"`
}

func (e *AppError) ToHTTPResponse() (int, interface{}) {
	return e.StatusCode, Response{Error: e}
}

func (e *AppError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    ErrorType   `json:"type"`
		Code    ErrorCode   `json:"code"`
		Message string      `json:"message"`
		Details interface{} `json:"details,omitempty"`
	}{
		Type:    e.Type,
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	})
}
