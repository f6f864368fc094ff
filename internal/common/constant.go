package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the
// access token on outbound requests.
const AccessTokenHeaderName = "access_token"

// Token types carried in the "type" claim.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// Messages returned to callers by the account operations.
const (
	MsgRegistered       = "Registration successful. Check email for activation."
	MsgActivated        = "Account activated."
	MsgActivationResent = "If the email exists, a new activation token was sent."
	MsgLoggedOut        = "Logged out."
)
