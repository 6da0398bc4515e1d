package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/authkeeper/internal/common"
)

var (
	ErrUnavailable = errors.New("server unavailable")
	// ErrUnauthorized matches any 401 or 403 answer.
	ErrUnauthorized = errors.New("unauthorized")
)

// Error is a non-2xx answer from the server. Message is the server's
// {"message": ...} text, safe to show to the user.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server answered %d %s", e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("%s (%d)", e.Message, e.Status)
}

// Is maps the status onto the shared sentinels, so callers can write
// errors.Is(err, common.ErrNotFound) without knowing about HTTP.
func (e *Error) Is(target error) bool {
	switch e.Status {
	case http.StatusBadRequest:
		return target == common.ErrValidation
	case http.StatusUnauthorized:
		return target == ErrUnauthorized || target == common.ErrMissingToken || target == common.ErrInvalidCredentials
	case http.StatusForbidden:
		return target == ErrUnauthorized || target == common.ErrInvalidToken
	case http.StatusNotFound:
		return target == common.ErrNotFound
	case http.StatusConflict:
		return target == common.ErrDuplicateIdentity
	}
	return e.Status >= 500 && target == common.ErrInternal
}
