package gateway

// Backend endpoint paths
const (
	RouteAuthLogin = "/auth/login"
	RouteAuthMe    = "/auth/me"
)

const (
	headerRequestID   = "X-Request-ID"
	headerContentType = "Content-Type"
	contentTypeJSON   = "application/json"
)
