package session

import (
	"github.com/shopdesk-dev/shopdesk/internal/access"
	"github.com/shopdesk-dev/shopdesk/internal/models"
)

// ProfileSnapshot is an externally supplied fallback view of the current
// admin, typically the cached result of the current-user query. Unlike
// the store's user it carries its own access field, which is taken as-is.
type ProfileSnapshot struct {
	Role        string   `json:"role"`
	Access      string   `json:"access"`
	Permissions []string `json:"permissions"`
}

// Resolve reconciles the store's user against the fallback snapshot into
// one effective user. The store user wins wholesale when present; there
// is no field-level merging across the two sources. Returns false when
// neither source is present.
//
// Resolve is pure: identical inputs always produce an identical value.
func Resolve(user *models.AdminUser, fallback *ProfileSnapshot) (access.EffectiveUser, bool) {
	if user != nil {
		// A superadmin role normalizes to the admin access level; any
		// other role string passes through the closed-level parse.
		level := access.ParseLevel(user.Role)
		if user.Role == string(access.RoleSuperAdmin) {
			level = access.LevelAdmin
		}
		return access.EffectiveUser{
			Role:        access.ParseRole(user.Role),
			Access:      level,
			Permissions: user.Permissions,
		}, true
	}

	if fallback != nil {
		// The fallback's own access field is used unmapped
		return access.EffectiveUser{
			Role:        access.ParseRole(fallback.Role),
			Access:      access.ParseLevel(fallback.Access),
			Permissions: fallback.Permissions,
		}, true
	}

	return access.EffectiveUser{}, false
}
