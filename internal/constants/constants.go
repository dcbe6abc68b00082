package constants

// Password policy
const (
	MinPasswordLength = 8
	MaxPasswordLength = 128
)

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Gin context keys
const (
	ContextKeyPrincipal = "principal"
)
