package response

import (
	"errors"
	"net/http"

	"github.com/cmlabs-hris/hris-finalization-go/internal/domain/finalization"
	"github.com/cmlabs-hris/hris-finalization-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-finalization-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	var collectionErr *finalization.CollectionError
	var commitErr *finalization.CommitError

	switch {
	// Auth errors
	case errors.Is(err, jwt.ErrInvalidToken):
		Unauthorized(w, "Invalid token")
	case errors.Is(err, jwt.ErrMissingCompany):
		Forbidden(w, "Token is not bound to a company")
	case errors.Is(err, jwt.ErrInsufficientRole):
		Forbidden(w, "Insufficient role for this operation")

	// Finalization domain errors
	case errors.Is(err, finalization.ErrFinalizationNotFound):
		NotFound(w, "Finalization not found")
	case errors.Is(err, finalization.ErrCompanyMismatch):
		Forbidden(w, "Company does not match authenticated company")
	case errors.Is(err, finalization.ErrScopeEmpty):
		BadRequest(w, "No employees found for finalization scope", nil)
	case errors.Is(err, finalization.ErrIdempotencyKeyConflict):
		Conflict(w, "Idempotency key reused with a different request")
	case errors.Is(err, finalization.ErrIdempotencyInProgress):
		Conflict(w, "A request with this idempotency key is still processing")
	case errors.As(err, &collectionErr):
		InternalServerError(w, "Failed to collect "+collectionErr.Source)
	case errors.As(err, &commitErr):
		InternalServerError(w, "Failed to commit finalization")

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}

// FinalizeErrorStatus is the status a failed finalize call answers with.
func FinalizeErrorStatus(err error) int {
	var validationErrs validator.ValidationErrors
	switch {
	case errors.As(err, &validationErrs),
		errors.Is(err, finalization.ErrScopeEmpty),
		errors.Is(err, finalization.ErrValidationFailed):
		return http.StatusBadRequest
	case errors.Is(err, jwt.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, finalization.ErrCompanyMismatch),
		errors.Is(err, jwt.ErrMissingCompany),
		errors.Is(err, jwt.ErrInsufficientRole):
		return http.StatusForbidden
	case errors.Is(err, finalization.ErrIdempotencyKeyConflict),
		errors.Is(err, finalization.ErrIdempotencyInProgress):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// FinalizeError writes the flat {"error": "..."} body the finalize endpoint
// uses for fatal errors. Request validation failures also carry field details.
func FinalizeError(w http.ResponseWriter, err error) {
	body := finalization.ErrorResponse{Error: err.Error()}

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		body.Error = "Missing or invalid required fields"
		body.Details = validationErrs.ToMap()
	}

	writeJSON(w, FinalizeErrorStatus(err), body)
}
