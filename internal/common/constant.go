package common

// AuthorizationHeaderName is the HTTP header carrying the session credential
// in the "Bearer <token>" form.
const AuthorizationHeaderName = "Authorization"

// UserIDContextKey is the gin context key holding the authenticated user id.
const UserIDContextKey = "user_id"

// ServiceName identifies the server in traces and health checks.
const ServiceName = "communityfeed"
