package httpx

import (
	"errors"
	"net/http"

	"github.com/solstice-id/solstice/internal/shared"
	"github.com/solstice-id/solstice/internal/token"
	"github.com/solstice-id/solstice/internal/verification"
)

// RespondError maps domain failures to RFC7807 responses. Every branch emits
// a stable machine-readable code and a pre-sanitized message; anything
// unrecognized collapses to a blank 500 so internal detail never leaks.
func RespondError(w http.ResponseWriter, err error) {
	var (
		expired     *token.ExpiredError
		notYetValid *token.NotYetValidError
	)

	switch {
	case errors.Is(err, shared.ErrValidation):
		Problem(w, http.StatusBadRequest, "Validation Failed", err.Error(), "validation_failed")
	case errors.Is(err, shared.ErrUsernameTaken):
		Problem(w, http.StatusConflict, "Conflict", shared.ErrUsernameTaken.Error(), "username_exists")
	case errors.Is(err, shared.ErrEmailTaken):
		Problem(w, http.StatusConflict, "Conflict", shared.ErrEmailTaken.Error(), "email_exists")
	case errors.Is(err, shared.ErrInvalidCredentials):
		Problem(w, http.StatusUnauthorized, "Authentication Failed", shared.ErrInvalidCredentials.Error(), "invalid_credentials")
	case errors.Is(err, shared.ErrAccountDisabled):
		Problem(w, http.StatusForbidden, "Account Disabled", shared.ErrAccountDisabled.Error(), "account_disabled")
	case errors.Is(err, shared.ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", shared.ErrNotFound.Error(), "not_found")
	case errors.Is(err, shared.ErrPasswordReuse):
		Problem(w, http.StatusBadRequest, "Validation Failed", shared.ErrPasswordReuse.Error(), "password_reuse")
	case errors.Is(err, shared.ErrVersionConflict):
		Problem(w, http.StatusConflict, "Conflict", shared.ErrVersionConflict.Error(), "version_conflict")

	case errors.Is(err, verification.ErrCodeExpired):
		Problem(w, http.StatusGone, "Code Expired", verification.ErrCodeExpired.Error(), "code_expired")
	case errors.Is(err, verification.ErrCodeNotFound):
		Problem(w, http.StatusBadRequest, "Code Not Found", verification.ErrCodeNotFound.Error(), "code_not_found")
	case errors.Is(err, verification.ErrCodeMismatch):
		Problem(w, http.StatusBadRequest, "Code Mismatch", verification.ErrCodeMismatch.Error(), "code_mismatch")

	case errors.Is(err, token.ErrNotRefreshable):
		Problem(w, http.StatusUnauthorized, "Token Not Refreshable", "token cannot be refreshed", "token_not_refreshable")
	case errors.As(err, &expired):
		// The only token failure eligible for the refresh path.
		Problem(w, http.StatusUnauthorized, "Token Expired", expired.Error(), "token_expired")
	case errors.As(err, &notYetValid):
		Problem(w, http.StatusUnauthorized, "Token Not Yet Valid", notYetValid.Error(), "token_not_yet_valid")
	case errors.Is(err, token.ErrSignatureInvalid):
		Problem(w, http.StatusUnauthorized, "Token Invalid", token.ErrSignatureInvalid.Error(), "token_invalid_signature")
	case errors.Is(err, token.ErrMalformed):
		Problem(w, http.StatusUnauthorized, "Token Invalid", token.ErrMalformed.Error(), "token_malformed")
	case errors.Is(err, token.ErrIssuerMismatch), errors.Is(err, token.ErrAudienceMismatch):
		Problem(w, http.StatusUnauthorized, "Token Invalid", "token claims mismatch", "token_invalid")

	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "", "internal")
	}
}
