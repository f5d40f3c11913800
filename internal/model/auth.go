package model

// Error codes for identity token failures. Tokens are issued by the external
// identity provider; this layer only validates and decodes them.
const (
	CodeTokenExpired = "TOKEN_EXPIRED"
	CodeTokenInvalid = "TOKEN_INVALID"
)
