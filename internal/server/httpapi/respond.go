package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/logging"
)

const maxBodyBytes = 1 << 20

type messageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, messageResponse{Message: msg})
}

// writeError maps err onto a status code and a caller-safe message.
// Internal errors are logged and never described to the caller.
func (s *HTTPServer) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *common.ValidationError
	switch {
	case errors.As(err, &ve):
		writeMessage(w, http.StatusBadRequest, ve.Message)
	case errors.Is(err, common.ErrValidation):
		writeMessage(w, http.StatusBadRequest, "Invalid request")
	case errors.Is(err, common.ErrDuplicateIdentity):
		writeMessage(w, http.StatusConflict, "Username or email already exists.")
	case errors.Is(err, common.ErrInvalidCredentials):
		writeMessage(w, http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, common.ErrMissingToken):
		writeMessage(w, http.StatusUnauthorized, "Authentication required")
	case errors.Is(err, common.ErrInvalidToken):
		writeMessage(w, http.StatusForbidden, "Invalid or expired token")
	case errors.Is(err, common.ErrNotFound):
		writeMessage(w, http.StatusNotFound, "User not found")
	default:
		logging.FromContext(r.Context(), s.logger).Error(r.Context(), "request failed", "error", err)
		writeMessage(w, http.StatusInternalServerError, "Internal server error")
	}
}

// decodeJSON reads a single JSON object from the request body.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return common.NewValidationError("Request body is required")
		}
		return common.NewValidationError(fmt.Sprintf("Invalid JSON body: %v", err))
	}
	return nil
}
