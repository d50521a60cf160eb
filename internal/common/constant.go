package common

const (
	// AuthorizationHeaderName carries the access token on protected requests.
	AuthorizationHeaderName = "Authorization"

	// BearerPrefix is optional; a raw token in the header is accepted too.
	BearerPrefix = "Bearer "

	// DefaultBcryptCost matches the work factor the portal has always used.
	DefaultBcryptCost = 10
)
