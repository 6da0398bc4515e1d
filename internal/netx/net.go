// Package netx holds HTTP helpers shared by the server gate and the client.
package netx

import (
	"net/http"
	"strings"

	"github.com/dmitrijs2005/authkeeper/internal/common"
)

// BearerToken extracts the credential from an Authorization header value.
// The scheme match is case-insensitive. ok is false when the header is
// empty, uses another scheme, or carries a blank token.
func BearerToken(header string) (token string, ok bool) {
	scheme, rest, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, common.BearerScheme) {
		return "", false
	}
	token = strings.TrimSpace(rest)
	if token == "" {
		return "", false
	}
	return token, true
}

// SetBearer attaches token to req. A blank token leaves req untouched.
func SetBearer(req *http.Request, token string) {
	if strings.TrimSpace(token) == "" {
		return
	}
	req.Header.Set(common.AuthorizationHeaderName, common.BearerScheme+" "+token)
}
