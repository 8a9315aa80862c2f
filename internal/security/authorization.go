package security

import (
	"fmt"
	"log/slog"

	"github.com/aryan0dhankhar/storefront/internal/domain"
)

// Permission represents an action permission
type Permission string

const (
	PermCreateSite      Permission = "create_site"
	PermEditSite        Permission = "edit_site"
	PermPublishSite     Permission = "publish_site"
	PermDeleteSite      Permission = "delete_site"
	PermViewActivity    Permission = "view_activity"
	PermManageTemplates Permission = "manage_templates"
)

var ownerPermissions = []Permission{
	PermCreateSite,
	PermEditSite,
	PermPublishSite,
	PermDeleteSite,
	PermViewActivity,
}

// RolePermissions maps roles to their permissions
var RolePermissions = map[domain.Role][]Permission{
	domain.RoleAdmin: append([]Permission{PermManageTemplates}, ownerPermissions...),
	domain.RoleUser:  ownerPermissions,
}

// AuthorizationService handles role-based checks
type AuthorizationService struct {
	logger *slog.Logger
}

// NewAuthorizationService creates a new authorization service
func NewAuthorizationService(logger *slog.Logger) *AuthorizationService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthorizationService{logger: logger}
}

// HasPermission checks if a role has a specific permission
func (as *AuthorizationService) HasPermission(role domain.Role, permission Permission) bool {
	for _, p := range RolePermissions[role] {
		if p == permission {
			return true
		}
	}
	return false
}

// ValidatePermission validates that a role has a specific permission
func (as *AuthorizationService) ValidatePermission(role domain.Role, permission Permission) error {
	if !as.HasPermission(role, permission) {
		as.logger.Warn("permission denied",
			slog.String("role", string(role)),
			slog.String("permission", string(permission)),
		)
		return fmt.Errorf("%w: %s role cannot %s", domain.ErrUnauthorized, role, permission)
	}
	return nil
}
