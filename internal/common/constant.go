package common

const (
	// AuthorizationHeader carries the bearer token on protected requests.
	AuthorizationHeader = "Authorization"

	// BearerScheme is the scheme prefix of the Authorization header.
	BearerScheme = "Bearer"

	// TokenType is reported to clients alongside the issued access token.
	TokenType = "bearer"

	// RequestIDHeader is propagated (or generated) for every HTTP request.
	RequestIDHeader = "X-Request-ID"
)
