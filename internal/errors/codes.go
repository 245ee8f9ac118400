package errors

// Error codes returned in the "error" field of every error body.
// Format: CATEGORY_SPECIFIC_DETAIL. The storefront maps its messages on these.

const (
	// ==================== Authentication (AUTH_) ====================
	AuthUnauthorized       = "AUTH_UNAUTHORIZED"        // sign-in required
	AuthInvalidCredentials = "AUTH_INVALID_CREDENTIALS" // wrong email or password
	AuthTokenExpired       = "AUTH_TOKEN_EXPIRED"
	AuthCustomerUnknown    = "AUTH_CUSTOMER_UNKNOWN" // account has no customer profile

	// ==================== Authorization (AUTHZ_) ====================
	AuthzForbidden = "AUTHZ_FORBIDDEN"
	AuthzAdminOnly = "AUTHZ_ADMIN_ONLY"
	AuthzOwnerOnly = "AUTHZ_OWNER_ONLY"

	// ==================== Validation (VALIDATION_) ====================
	ValidationInvalidInput    = "VALIDATION_INVALID_INPUT"
	ValidationInvalidID       = "VALIDATION_INVALID_ID"
	ValidationInvalidQuantity = "VALIDATION_INVALID_QUANTITY"
	ValidationRequired        = "VALIDATION_REQUIRED"

	// ==================== Resources (RESOURCE_) ====================
	ResourceNotFound      = "RESOURCE_NOT_FOUND"
	ResourceAlreadyExists = "RESOURCE_ALREADY_EXISTS"
	ResourceConflict      = "RESOURCE_CONFLICT"

	// ==================== Storefront API (UPSTREAM_) ====================
	UpstreamUnavailable = "UPSTREAM_UNAVAILABLE" // network failure or timeout
	UpstreamBadStatus   = "UPSTREAM_BAD_STATUS"  // unexpected non-2xx
	UpstreamMalformed   = "UPSTREAM_MALFORMED"   // body could not be decoded

	// ==================== Internal (INTERNAL_) ====================
	InternalServerError = "INTERNAL_SERVER_ERROR"
	InternalExportError = "INTERNAL_EXPORT_ERROR"
	InternalConfigError = "INTERNAL_CONFIG_ERROR"
)
