// Package apperr defines the typed error taxonomy shared by services and the
// HTTP boundary. Services raise these errors; the boundary maps Kind to an
// HTTP status without re-interpreting the message.
package apperr

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Kind classifies a failure. Each kind carries a fixed HTTP status intent.
type Kind int

const (
	KindBadRequest Kind = iota
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
	KindPayloadTooLarge
	KindUnsupportedMedia
	KindMethodNotAllowed
	KindBadGateway
	KindUnavailable
	KindInternal
)

// Status returns the HTTP status code for the kind.
func (k Kind) Status() int {
	switch k {
	case KindBadRequest:
		return fiber.StatusBadRequest
	case KindUnauthorized:
		return fiber.StatusUnauthorized
	case KindForbidden:
		return fiber.StatusForbidden
	case KindNotFound:
		return fiber.StatusNotFound
	case KindConflict:
		return fiber.StatusConflict
	case KindPayloadTooLarge:
		return fiber.StatusRequestEntityTooLarge
	case KindUnsupportedMedia:
		return fiber.StatusUnsupportedMediaType
	case KindMethodNotAllowed:
		return fiber.StatusMethodNotAllowed
	case KindBadGateway:
		return fiber.StatusBadGateway
	case KindUnavailable:
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

// Error is a typed domain failure.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

// New builds an error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func BadRequest(message string) *Error   { return New(KindBadRequest, message) }
func Unauthorized(message string) *Error { return New(KindUnauthorized, message) }
func Forbidden(message string) *Error    { return New(KindForbidden, message) }
func NotFound(message string) *Error     { return New(KindNotFound, message) }
func Conflict(message string) *Error     { return New(KindConflict, message) }
func BadGateway(message string) *Error   { return New(KindBadGateway, message) }
func Unavailable(message string) *Error  { return New(KindUnavailable, message) }
func Internal(message string) *Error     { return New(KindInternal, message) }

// Shared failures raised across services.
var (
	ErrInvalidToken     = Unauthorized("invalid token")
	ErrNotPrivileged    = Forbidden("insufficient privileges")
	ErrUnknownIdentity  = NotFound("user not found")
	ErrCannotFollowSelf = BadRequest("cannot follow yourself")
	ErrDuplicateReview  = Conflict("food already reviewed")
	ErrNotReviewOwner   = Forbidden("not the review owner")
	ErrInvalidUsername  = NotFound("invalid username")
	ErrBadCredentials   = Unauthorized("invalid username or password")
)

// Coerce converts any error into an *Error. Unrecognized errors collapse to
// an internal failure with a generic message so store or library detail never
// reaches the caller.
func Coerce(err error) *Error {
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return Internal("internal server error")
}

// FromStore translates a persistence-layer error into the closest domain
// kind. Typed errors pass through untouched.
func FromStore(err error) error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NotFound("record not found")
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || isDuplicateMessage(err) {
		return Conflict("resource already exists")
	}
	return err
}

// Driver-specific duplicate-key detection for drivers that do not surface
// gorm.ErrDuplicatedKey (sqlite, older pgx paths).
func isDuplicateMessage(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "constraint failed")
}

// ShieldLogin re-maps a bad-request or not-found failure whose message equals
// the generic "invalid username" to a credential failure. Login callers must
// not be able to distinguish an unknown username from a wrong password.
func ShieldLogin(err error) error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		if (ae.Kind == KindBadRequest || ae.Kind == KindNotFound) && ae.Message == ErrInvalidUsername.Message {
			return ErrBadCredentials
		}
	}
	return err
}
