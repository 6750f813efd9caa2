package shared

import "github.com/google/uuid"

// TenantContext identifies the caller of a tenant-scoped operation.
// It is passed explicitly to every service method.
type TenantContext struct {
	TenantID     uuid.UUID
	UserID       uuid.UUID
	IsSuperAdmin bool
}

// NewTenantContext creates a context for a regular tenant user
func NewTenantContext(tenantID, userID uuid.UUID) TenantContext {
	return TenantContext{TenantID: tenantID, UserID: userID}
}

// SystemContext is used by schedulers acting across tenants
func SystemContext() TenantContext {
	return TenantContext{IsSuperAdmin: true}
}

// CanAccess reports whether the caller may see a record owned by tenantID
func (tc TenantContext) CanAccess(tenantID uuid.UUID) bool {
	return tc.IsSuperAdmin || tc.TenantID == tenantID
}

// Validate returns an error when a non-admin context carries no tenant
func (tc TenantContext) Validate() error {
	if !tc.IsSuperAdmin && tc.TenantID == uuid.Nil {
		return ErrUnauthorized
	}
	return nil
}
