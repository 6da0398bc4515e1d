package common

// Header names and schemes shared by the HTTP API and its client.
const (
	AuthorizationHeaderName = "Authorization"
	BearerScheme            = "Bearer"
	RequestIDHeaderName     = "X-Request-ID"
)

// Keys of the durable client storage. The session is written and removed as
// a unit under these keys.
const (
	SessionTokenKey     = "auth_token"
	SessionUserKey      = "user"
	SessionExpiresAtKey = "expires_at"
)
