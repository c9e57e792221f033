package domain

import "errors"

// Error is implemented by every error the service surfaces to its callers.
// The code is stable and safe to send to clients; the message is human readable.
type Error interface {
	error
	GetCode() string
	GetMessage() string
}

// BusinessError is the concrete Error used across the service
type BusinessError struct {
	Code    string
	Message string
}

func NewBusinessError(code, message string) *BusinessError {
	return &BusinessError{Code: code, Message: message}
}

func (e *BusinessError) Error() string {
	return e.Message
}

func (e *BusinessError) GetCode() string {
	return e.Code
}

func (e *BusinessError) GetMessage() string {
	return e.Message
}

var (
	// Startup
	ErrConfiguration = NewBusinessError("U0001", "Invalid JWT configuration")

	// Token structure and signature
	ErrMalformedToken      = NewBusinessError("U0002", "Malformed token")
	ErrSignatureInvalid    = NewBusinessError("U0003", "Invalid token signature")
	ErrAlgorithmNotAllowed = NewBusinessError("U0004", "Token algorithm not allowed")
	ErrTokenUndecodable    = NewBusinessError("U0005", "Unable to decode token with the configured keys")

	// Token claims
	ErrTokenExpired     = NewBusinessError("U0006", "Token has expired")
	ErrTokenNotYetValid = NewBusinessError("U0007", "Token not yet valid")
	ErrInvalidIssuer    = NewBusinessError("U0008", "Invalid token issuer")
	ErrInvalidAudience  = NewBusinessError("U0009", "Invalid token audience")
	ErrInvalidPurpose   = NewBusinessError("U0010", "Invalid token purpose")
	ErrMissingSubject   = NewBusinessError("U0011", "User ID missing in token")
	ErrTokenMissing     = NewBusinessError("U0012", "Token not provided")

	// Users and credentials
	ErrUserNotFound           = NewBusinessError("U0013", "User not found")
	ErrUnauthorized           = NewBusinessError("U0014", "Unauthorized")
	ErrInvalidCredentials     = NewBusinessError("U0015", "Invalid credentials")
	ErrCredentialUpdateFailed = NewBusinessError("U0016", "Could not update password")
	ErrUserAlreadyExists      = NewBusinessError("U0017", "This email is already registered")
	ErrForbidden              = NewBusinessError("U0018", "Forbidden")
	ErrPasswordTooLong        = NewBusinessError("U0024", "Password must be at most 72 bytes")

	// Generic
	ErrInvalidRequest  = NewBusinessError("U0019", "Invalid request")
	ErrInvalidField    = NewBusinessError("U0020", "Invalid field")
	ErrDatabaseQuery   = NewBusinessError("U0021", "Database query failed")
	ErrInternal        = NewBusinessError("U0022", "Internal server error")
	ErrTooManyRequests = NewBusinessError("U0023", "Rate limit exceeded")
)

// AsError extracts the first domain Error from err's chain.
func AsError(err error) (Error, bool) {
	var de Error
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// IsTokenError reports whether err is one of the token failure kinds, as
// opposed to a user store or infrastructure failure.
func IsTokenError(err error) bool {
	for _, kind := range []error{
		ErrMalformedToken,
		ErrSignatureInvalid,
		ErrAlgorithmNotAllowed,
		ErrTokenUndecodable,
		ErrTokenExpired,
		ErrTokenNotYetValid,
		ErrInvalidIssuer,
		ErrInvalidAudience,
		ErrInvalidPurpose,
		ErrMissingSubject,
		ErrTokenMissing,
	} {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}
