package api

// Authentication service endpoints
const (
	// Service name
	AuthService = "auth.AuthService"

	// Authentication endpoints
	AuthLogin          = "/auth.AuthService/Login"
	AuthSignup         = "/auth.AuthService/Signup"
	AuthLogout         = "/auth.AuthService/Logout"
	AuthForgotPassword = "/auth.AuthService/ForgotPassword"
)

// PublicEndpoints defines endpoints that don't require authentication.
// Logout authorizes itself through the token pair it is handed.
var PublicEndpoints = map[string]bool{
	AuthLogin:          true,
	AuthSignup:         true,
	AuthLogout:         true,
	AuthForgotPassword: true,
}
