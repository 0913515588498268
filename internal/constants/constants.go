package constants

const (
	// MinPasswordLength is the minimum accepted plaintext password length.
	MinPasswordLength = 8

	// MaxTitleLength and MaxDescriptionLength bound task fields at the API boundary.
	MaxTitleLength       = 150
	MaxDescriptionLength = 500

	// ContextKeyPrincipal is the gin context key holding the resolved Principal.
	ContextKeyPrincipal = "principal"

	// Pagination defaults
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)
