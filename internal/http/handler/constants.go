package handler

const (
	jsonKeyError = "error"

	headerAuthorization = "Authorization"
	bearerPrefix        = "Bearer "

	formFieldNext = "next"
	homePath      = "/"
	loginPath     = "/login"
)

const (
	auditReasonMalformed   = "malformed credentials"
	auditReasonCredentials = "invalid credentials"
	auditReasonAssertion   = "invalid assertion"
)

const (
	msgContentTypeJSONRequired = "Content-Type must be application/json"
	msgInvalidRequestBody      = "Invalid request body"
	msgInvalidCredentials      = "Invalid email or password"
	msgLoginUnavailable        = "Password sign-in is not enabled"
	msgExchangeUnavailable     = "Identity exchange is not enabled"
	msgAssertionRequired       = "assertion is required"
	msgSessionStartFail        = "Could not start a session"
	msgInvalidPermissionQuery  = "action and subject must name a known permission"
)
