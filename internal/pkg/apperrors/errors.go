package apperrors

import "errors"

// Common errors
var (
	// Resource errors
	ErrResourceNotFound      = errors.New("resource not found")
	ErrResourceAlreadyExists = errors.New("resource already exists")
	ErrConflict              = errors.New("conflict")

	// Authentication errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrInvalidFormat      = errors.New("invalid token format")

	// Authorization errors
	ErrPermissionDenied = errors.New("permission denied")

	// Validation errors
	ErrValidationFailed = errors.New("validation failed")
	ErrBadRequest       = errors.New("bad request")

	// Downstream errors
	ErrExternalService = errors.New("external service failure")
	ErrParse           = errors.New("unable to parse response")
)

// Entity errors. Each wraps one of the common errors above so HandleAPIError
// can map it to a status while the message stays specific.
var (
	ErrUserNotFound      error = &CustomError{Err: ErrResourceNotFound, Message: "User not found"}
	ErrCommunityNotFound error = &CustomError{Err: ErrResourceNotFound, Message: "Community not found"}
	ErrPostNotFound      error = &CustomError{Err: ErrResourceNotFound, Message: "Post not found"}
	ErrReplyNotFound     error = &CustomError{Err: ErrResourceNotFound, Message: "Reply not found"}

	ErrEmailAlreadyExists error = &CustomError{Err: ErrResourceAlreadyExists, Message: "Email already exists"}
	ErrNameAlreadyExists  error = &CustomError{Err: ErrResourceAlreadyExists, Message: "Full name already exists"}

	ErrAlreadyMember error = &CustomError{Err: ErrConflict, Message: "User is already a member of this community"}
	ErrNotMember     error = &CustomError{Err: ErrConflict, Message: "User is not a member of this community"}
)

// NewResourceNotFoundError creates a new custom error for resource not found with a message
func NewResourceNotFoundError(message string) error {
	return &CustomError{
		Err:     ErrResourceNotFound,
		Message: message,
	}
}

// NewConflictError creates a new custom error for conflict situations with a message
func NewConflictError(message string) error {
	return &CustomError{
		Err:     ErrConflict,
		Message: message,
	}
}

// NewForbiddenError creates a new custom error for permission denied with a message
func NewForbiddenError(message string) error {
	return &CustomError{
		Err:     ErrPermissionDenied,
		Message: message,
	}
}

// NewBadRequestError creates a new custom error for bad request with a message
func NewBadRequestError(message string) error {
	return &CustomError{
		Err:     ErrBadRequest,
		Message: message,
	}
}

// NewValidationError reports a missing or blank required field.
func NewValidationError(field, message string) error {
	return (&CustomError{
		Err:     ErrValidationFailed,
		Message: message,
	}).WithDetails(map[string]interface{}{"field": field})
}

// NewExternalServiceError wraps a failure of a downstream collaborator (vision model, object store).
func NewExternalServiceError(message string, cause error) error {
	ce := &CustomError{
		Err:     ErrExternalService,
		Message: message,
	}
	if cause != nil {
		ce.Details = map[string]interface{}{"cause": cause.Error()}
	}
	return ce
}

// Is returns whether target matches any of the errors in errList
func Is(err, target error, errList ...error) bool {
	if errors.Is(err, target) {
		return true
	}

	for _, e := range errList {
		if errors.Is(err, e) {
			return true
		}
	}

	return false
}

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err       error
	Message   string
	StatusMsg string
	Code      string
	Details   map[string]interface{}
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap interface
func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewCustomError creates a CustomError with underlying error
func NewCustomError(err error, message string) *CustomError {
	return &CustomError{
		Err:     err,
		Message: message,
	}
}

// WithDetails adds context details to the error
func (e *CustomError) WithDetails(details map[string]interface{}) *CustomError {
	e.Details = details
	return e
}

// WithCode adds an error code
func (e *CustomError) WithCode(code string) *CustomError {
	e.Code = code
	return e
}
