package common

const (
	// AuthorizationHeaderName is the HTTP header carrying the bearer token.
	AuthorizationHeaderName = "Authorization"

	// AuthorizationMetadataKey is the gRPC metadata key carrying the bearer
	// token. gRPC lower-cases metadata keys.
	AuthorizationMetadataKey = "authorization"

	// BearerPrefix is the scheme marker expected in front of the token.
	BearerPrefix = "Bearer "
)
