package session

import (
	"testing"

	"github.com/shopdesk-dev/shopdesk/internal/access"
	"github.com/shopdesk-dev/shopdesk/internal/models"
)

func TestResolve_StoreUserWinsWholesale(t *testing.T) {
	user := &models.AdminUser{Role: "superadmin", Permissions: models.PermissionList{"export"}}
	fallback := &ProfileSnapshot{Role: "admin", Access: "CS", Permissions: []string{"other"}}

	eu, ok := Resolve(user, fallback)
	if !ok {
		t.Fatal("expected an effective user")
	}

	if eu.Role != access.RoleSuperAdmin {
		t.Errorf("expected superadmin role, got %q", eu.Role)
	}
	if eu.Access != access.LevelAdmin {
		t.Errorf("expected superadmin normalized to admin access, got %q", eu.Access)
	}
	if len(eu.Permissions) != 1 || eu.Permissions[0] != "export" {
		t.Errorf("expected store user permissions, got %v", eu.Permissions)
	}

	// Changing the fallback alone never changes the result
	withoutFallback, _ := Resolve(user, nil)
	if withoutFallback.Role != eu.Role || withoutFallback.Access != eu.Access {
		t.Error("expected fallback to be ignored while a store user is present")
	}
}

func TestResolve_OperationalRolePassesThrough(t *testing.T) {
	user := &models.AdminUser{Role: "OPERATOR"}

	eu, ok := Resolve(user, nil)
	if !ok {
		t.Fatal("expected an effective user")
	}
	if eu.Access != access.LevelOperator {
		t.Errorf("expected operator access, got %q", eu.Access)
	}
	if eu.Role != access.RoleUnknown {
		t.Errorf("expected unrecognized raw role, got %q", eu.Role)
	}
}

func TestResolve_FallbackUsedWhenStoreEmpty(t *testing.T) {
	fallback := &ProfileSnapshot{Role: "superadmin", Access: "CS", Permissions: []string{"p"}}

	eu, ok := Resolve(nil, fallback)
	if !ok {
		t.Fatal("expected an effective user from the fallback")
	}

	// The fallback's access field is taken as-is: no superadmin
	// normalization applies on this path.
	if eu.Access != access.LevelCS {
		t.Errorf("expected fallback access unmapped, got %q", eu.Access)
	}
	if eu.Role != access.RoleSuperAdmin {
		t.Errorf("expected fallback role, got %q", eu.Role)
	}
	if len(eu.Permissions) != 1 || eu.Permissions[0] != "p" {
		t.Errorf("expected fallback permissions, got %v", eu.Permissions)
	}
}

func TestResolve_BothAbsent(t *testing.T) {
	if _, ok := Resolve(nil, nil); ok {
		t.Error("expected no effective user")
	}
}

func TestResolve_Deterministic(t *testing.T) {
	user := &models.AdminUser{Role: "CS"}
	a, _ := Resolve(user, nil)
	b, _ := Resolve(user, nil)
	if a.Role != b.Role || a.Access != b.Access {
		t.Error("expected identical results for identical inputs")
	}
}
