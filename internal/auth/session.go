package auth

// Context represents the authenticated identity for a request.
// TenantID is always set; UserID is nil for tenant principals.
type Context struct {
	TenantID int64  `json:"tenant_id"`
	UserID   *int64 `json:"user_id"`
}
