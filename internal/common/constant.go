package common

// AuthorizationHeaderName is the HTTP header and gRPC metadata key carrying
// the bearer token.
const AuthorizationHeaderName = "authorization"

// AccessTokenHeaderName is the legacy gRPC metadata key still accepted for
// the access token.
const AccessTokenHeaderName = "access_token"

// BearerScheme prefixes the token in the authorization value.
const BearerScheme = "Bearer"

// RequestIDHeaderName carries the per-request id set by the HTTP middleware.
const RequestIDHeaderName = "X-Request-Id"
