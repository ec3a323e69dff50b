package render

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/nkiryanov/gopherauth/internal/apperrors"
)

const (
	ValidationErrorType  = "validation_failed"
	DecodingErrorType    = "decoding_failed"
	CredentialsErrorType = "invalid_credentials"
	ConflictErrorType    = "conflict"
	ServiceErrorType     = "service_error"
)

const (
	invalidCredentialsMessage = "Invalid Credentials"
	internalErrorMessage      = "Internal server error"
)

var validate = newValidator()

type Struct any

type ErrorResponse struct {
	OK      bool              `json:"ok"`
	Error   string            `json:"error"`
	Message string            `json:"message,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

type logger interface {
	Error(msg string, args ...any)
}

func JSON(w http.ResponseWriter, data any) {
	JSONWithStatus(w, data, http.StatusOK)
}

// Render ServiceError
func ServiceError(w http.ResponseWriter, error string, code int) {
	response := ErrorResponse{
		Error:   ServiceErrorType,
		Message: error,
	}

	JSONWithStatus(w, response, code)
}

// Render any error returned by services
// Well known errors are rendered with their own status, the rest is 500 and logged
func Error(w http.ResponseWriter, err error, l logger) {
	var (
		validationErr *apperrors.ValidationError
		conflictErr   *apperrors.ConflictError
	)

	switch {
	case errors.As(err, &validationErr):
		JSONWithStatus(w, ErrorResponse{
			Error:   ValidationErrorType,
			Message: validationErr.Message,
			Fields:  validationErr.Fields,
		}, http.StatusBadRequest)

	case errors.Is(err, apperrors.ErrInvalidCredentials),
		errors.Is(err, apperrors.ErrUserNotFound),
		errors.Is(err, apperrors.ErrRefreshTokenNotFound):
		JSONWithStatus(w, ErrorResponse{
			Error:   CredentialsErrorType,
			Message: invalidCredentialsMessage,
		}, http.StatusUnauthorized)

	case errors.As(err, &conflictErr):
		JSONWithStatus(w, conflictResponse(conflictErr), http.StatusConflict)

	default:
		l.Error("request failed", "error", err)
		ServiceError(w, internalErrorMessage, http.StatusInternalServerError)
	}
}

func conflictResponse(err *apperrors.ConflictError) ErrorResponse {
	response := ErrorResponse{
		Error:   ConflictErrorType,
		Message: "Unique constraint failed",
		Fields:  make(map[string]string, len(err.Fields)),
	}

	switch {
	case err.Has("email"):
		response.Message = "Email already exists"
	case err.Has("username"):
		response.Message = "Username already exists"
	}

	for _, field := range err.Fields {
		response.Fields[field] = "Already exists"
	}

	return response
}

// Render json DecodeError
func DecodeError(w http.ResponseWriter, err error) {
	response := ErrorResponse{
		Error:   DecodingErrorType,
		Message: "",
	}

	// Try to provide more specific error message based on error type
	switch err := err.(type) {
	case *json.UnmarshalTypeError:
		response.Message = fmt.Sprintf("Invalid data type for field '%s'", err.Field)
	default:
		response.Message = fmt.Sprintf("Failed to parse JSON: %s", err.Error())
	}

	JSONWithStatus(w, response, http.StatusBadRequest)
}

// Render ValidationErrors
func ValidationErrors(w http.ResponseWriter, errs validator.ValidationErrors) {
	response := ErrorResponse{
		Error:   ValidationErrorType,
		Message: "Request validation failed",
		Fields:  make(map[string]string, len(errs)),
	}

	// Create user-friendly error messages based on validation tag
	for _, fieldError := range errs {
		var message string
		switch fieldError.Tag() {
		case "required":
			message = "This field is required"
		case "min":
			message = fmt.Sprintf("Value is too short (minimum %s)", fieldError.Param())
		case "max":
			message = fmt.Sprintf("Value is too long (maximum %s)", fieldError.Param())
		case "email":
			message = "Invalid email address"
		default:
			message = "Invalid value"
		}

		response.Fields[fieldError.Field()] = message
	}

	JSONWithStatus(w, response, http.StatusBadRequest)
}

// BindAndValidate decodes JSON request body into type T and validates it using struct tags.
// Returns the decoded value and writes appropriate error responses for decoding or validation failures.
func BindAndValidate[T Struct](w http.ResponseWriter, r *http.Request) (T, error) {
	var value T

	err := json.NewDecoder(r.Body).Decode(&value)
	if err != nil {
		DecodeError(w, err)
		return value, err
	}

	err = validate.Struct(value)
	if err != nil {
		// pretty sure cast will be ok cause expecting T is valid struct
		errs := err.(validator.ValidationErrors)
		ValidationErrors(w, errs)
		return value, err
	}

	return value, nil
}

// JSONWithStatus sends data as json and enforces status code
func JSONWithStatus(w http.ResponseWriter, data any, code int) {
	buf := &bytes.Buffer{}
	enc := json.NewEncoder(buf)

	if err := enc.Encode(data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_, _ = w.Write(buf.Bytes())
}
