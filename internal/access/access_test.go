package access

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDerive_AdminRolesGetEverything(t *testing.T) {
	for _, role := range []Role{RoleSuperAdmin, RoleAdmin} {
		caps := Derive(&EffectiveUser{Role: role})

		require.True(t, caps.Has(CapSuperAdmin), "role %q should be super admin", role)
		for _, c := range All() {
			require.True(t, caps.Has(c), "role %q should have %q", role, c)
		}
	}
}

func TestDerive_AdminAccessLevelGetsEverything(t *testing.T) {
	// Access "admin" grants the full set even when the raw role is unrecognized
	caps := Derive(&EffectiveUser{Role: RoleUnknown, Access: LevelAdmin})

	for _, c := range All() {
		require.True(t, caps.Has(c), "access admin should have %q", c)
	}
}

func TestDerive_PlatformAdmin(t *testing.T) {
	caps := Derive(&EffectiveUser{Role: RoleUnknown, Access: LevelPlatformAdmin})

	require.False(t, caps.Has(CapSuperAdmin), "platform admin is not a super admin")
	require.True(t, caps.Has(CapManageProducts))
	require.True(t, caps.Has(CapManageOrders))
	require.True(t, caps.Has(CapManageLogistics))
	require.True(t, caps.Has(CapManageSettlement))
	require.True(t, caps.Has(CapManageMembers))
	require.True(t, caps.Has(CapManageCS))
}

func TestDerive_Operator(t *testing.T) {
	caps := Derive(&EffectiveUser{Role: RoleUnknown, Access: LevelOperator})

	require.True(t, caps.Has(CapManageProducts))
	require.True(t, caps.Has(CapCreateProduct))
	require.True(t, caps.Has(CapImportTaobao))
	require.True(t, caps.Has(CapViewProducts))
	require.True(t, caps.Has(CapManageOrders))

	require.False(t, caps.Has(CapManageLogistics))
	require.False(t, caps.Has(CapManageSettlement))
	require.False(t, caps.Has(CapManageMembers))
	require.False(t, caps.Has(CapManageCS))
	require.False(t, caps.Has(CapSuperAdmin))
}

func TestDerive_CS(t *testing.T) {
	caps := Derive(&EffectiveUser{Role: RoleUnknown, Access: LevelCS})

	require.True(t, caps.Has(CapManageOrders))
	require.True(t, caps.Has(CapManageMembers))
	require.True(t, caps.Has(CapManageCS))
	require.True(t, caps.Has(CapViewProducts))

	require.False(t, caps.Has(CapManageLogistics))
	require.False(t, caps.Has(CapManageProducts))
	require.False(t, caps.Has(CapCreateProduct))
	require.False(t, caps.Has(CapManageSettlement))
}

func TestDerive_Logistics(t *testing.T) {
	caps := Derive(&EffectiveUser{Role: RoleUnknown, Access: LevelLogistics})

	require.True(t, caps.Has(CapManageLogistics))
	require.True(t, caps.Has(CapManageOrders))
	require.True(t, caps.Has(CapViewProducts))

	require.False(t, caps.Has(CapManageProducts))
	require.False(t, caps.Has(CapManageMembers))
	require.False(t, caps.Has(CapManageSettlement))
}

func TestDerive_Finance(t *testing.T) {
	caps := Derive(&EffectiveUser{Role: RoleUnknown, Access: LevelFinance})

	require.True(t, caps.Has(CapManageSettlement))
	require.True(t, caps.Has(CapManageOrders))
	require.True(t, caps.Has(CapViewProducts))

	require.False(t, caps.Has(CapManageLogistics))
	require.False(t, caps.Has(CapManageCS))
	require.False(t, caps.Has(CapSuperAdmin))
}

func TestDerive_AbsentUser(t *testing.T) {
	caps := Derive(nil)

	require.True(t, caps.Has(CapViewDashboard))
	for _, c := range All() {
		if c == CapViewDashboard {
			continue
		}
		require.False(t, caps.Has(c), "absent user should not have %q", c)
	}
}

func TestDerive_UnknownRoleAndAccess(t *testing.T) {
	// A zero-value effective user is indistinguishable from an absent one
	caps := Derive(&EffectiveUser{Role: RoleUnknown, Access: LevelUnknown})

	require.True(t, caps.Has(CapViewDashboard))
	require.False(t, caps.Has(CapViewProducts))
	require.False(t, caps.Has(CapSuperAdmin))
}

func TestDerive_DashboardAlwaysVisible(t *testing.T) {
	users := []*EffectiveUser{
		nil,
		{},
		{Role: RoleSuperAdmin},
		{Access: LevelOperator},
		{Access: LevelFinance},
	}
	for _, eu := range users {
		require.True(t, Derive(eu).Has(CapViewDashboard))
	}
}

func TestDerive_Monotonic(t *testing.T) {
	// A super admin holds everything any operational tier holds
	super := Derive(&EffectiveUser{Role: RoleSuperAdmin})
	for _, level := range []Level{LevelOperator, LevelCS, LevelLogistics, LevelFinance} {
		tier := Derive(&EffectiveUser{Access: level})
		for c, granted := range tier {
			if granted {
				require.True(t, super.Has(c), "super admin missing %q granted to %q", c, level)
			}
		}
	}
}

func TestDerive_Deterministic(t *testing.T) {
	eu := &EffectiveUser{Role: RoleUnknown, Access: LevelCS, Permissions: []string{"export"}}
	require.Equal(t, Derive(eu), Derive(eu))
}

func TestParseRole(t *testing.T) {
	require.Equal(t, RoleSuperAdmin, ParseRole("superadmin"))
	require.Equal(t, RoleAdmin, ParseRole("admin"))
	require.Equal(t, RoleUnknown, ParseRole("OPERATOR"))
	require.Equal(t, RoleUnknown, ParseRole("Superadmin"))
	require.Equal(t, RoleUnknown, ParseRole(""))
}

func TestParseLevel(t *testing.T) {
	require.Equal(t, LevelAdmin, ParseLevel("admin"))
	require.Equal(t, LevelPlatformAdmin, ParseLevel("PLATFORM_ADMIN"))
	require.Equal(t, LevelOperator, ParseLevel("OPERATOR"))
	require.Equal(t, LevelCS, ParseLevel("CS"))
	require.Equal(t, LevelLogistics, ParseLevel("LOGISTICS"))
	require.Equal(t, LevelFinance, ParseLevel("FINANCE"))
	require.Equal(t, LevelUnknown, ParseLevel("operator"))
	require.Equal(t, LevelUnknown, ParseLevel("superadmin"))
	require.Equal(t, LevelUnknown, ParseLevel(""))
}
