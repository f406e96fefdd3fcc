package access

// Role is the raw identity classification assigned by the backend.
// Unrecognized role strings parse to RoleUnknown, which carries no
// privilege on its own.
type Role string

const (
	RoleSuperAdmin Role = "superadmin"
	RoleAdmin      Role = "admin"
	RoleUnknown    Role = ""
)

// ParseRole maps a raw role string to the closed Role set
func ParseRole(s string) Role {
	switch s {
	case string(RoleSuperAdmin):
		return RoleSuperAdmin
	case string(RoleAdmin):
		return RoleAdmin
	default:
		return RoleUnknown
	}
}

// Level is the operational access classification, distinct from Role.
// It drives capability checks for non-superadmin tiers.
type Level string

const (
	LevelAdmin         Level = "admin"
	LevelPlatformAdmin Level = "PLATFORM_ADMIN"
	LevelOperator      Level = "OPERATOR"
	LevelCS            Level = "CS"
	LevelLogistics     Level = "LOGISTICS"
	LevelFinance       Level = "FINANCE"
	LevelUnknown       Level = ""
)

// ParseLevel maps a raw access string to the closed Level set.
// Unknown strings map to LevelUnknown (least privilege).
func ParseLevel(s string) Level {
	switch s {
	case string(LevelAdmin):
		return LevelAdmin
	case string(LevelPlatformAdmin):
		return LevelPlatformAdmin
	case string(LevelOperator):
		return LevelOperator
	case string(LevelCS):
		return LevelCS
	case string(LevelLogistics):
		return LevelLogistics
	case string(LevelFinance):
		return LevelFinance
	default:
		return LevelUnknown
	}
}

// EffectiveUser is the transient reconciled view used for capability
// derivation. It is never persisted; callers rebuild it on every check.
type EffectiveUser struct {
	Role        Role
	Access      Level
	Permissions []string
}

// Capability is a named boolean permission consumed by route and menu gates
type Capability string

const (
	CapViewDashboard    Capability = "canViewDashboard"
	CapManageProducts   Capability = "canManageProducts"
	CapViewProducts     Capability = "canViewProducts"
	CapCreateProduct    Capability = "canCreateProduct"
	CapImportTaobao     Capability = "canImportTaobao"
	CapManageOrders     Capability = "canManageOrders"
	CapManageLogistics  Capability = "canManageLogistics"
	CapManageMembers    Capability = "canManageMembers"
	CapManageSettlement Capability = "canManageSettlement"
	CapManageCS         Capability = "canManageCS"
	CapSuperAdmin       Capability = "isSuperAdmin"
)

// All lists every capability in a stable order
func All() []Capability {
	return []Capability{
		CapViewDashboard,
		CapManageProducts,
		CapViewProducts,
		CapCreateProduct,
		CapImportTaobao,
		CapManageOrders,
		CapManageLogistics,
		CapManageMembers,
		CapManageSettlement,
		CapManageCS,
		CapSuperAdmin,
	}
}

// CapabilitySet maps capability names to booleans. It is a pure derived
// value; absent keys read as false.
type CapabilitySet map[Capability]bool

// Has reports whether the named capability is granted
func (s CapabilitySet) Has(c Capability) bool {
	return s[c]
}

// adminGrants is everything an admin-tier user can do. CapSuperAdmin is
// granted separately so platform admins do not pick it up.
var adminGrants = []Capability{
	CapManageProducts,
	CapViewProducts,
	CapCreateProduct,
	CapImportTaobao,
	CapManageOrders,
	CapManageLogistics,
	CapManageMembers,
	CapManageSettlement,
	CapManageCS,
}

// operatorGrants lists the capabilities shared by every operational tier
var operatorGrants = []Capability{
	CapViewProducts,
	CapManageOrders,
}

// tierGrants is the per-tier grant table. Adding a tier or capability is
// a data change here, not a logic change in Derive. Grants are merged
// OR-wise: a higher tier never revokes a lower grant.
var tierGrants = map[Level][]Capability{
	LevelOperator:  {CapManageProducts, CapCreateProduct, CapImportTaobao},
	LevelCS:        {CapManageMembers, CapManageCS},
	LevelLogistics: {CapManageLogistics},
	LevelFinance:   {CapManageSettlement},
}

// operatorTiers are the access levels treated as operational staff
var operatorTiers = map[Level]bool{
	LevelOperator:  true,
	LevelCS:        true,
	LevelLogistics: true,
	LevelFinance:   true,
}

// Derive computes the capability set for an effective user. A nil or
// unrecognized user yields the least-privilege set: only the dashboard
// is visible. The result is recomputed on every call and safe to mutate.
func Derive(eu *EffectiveUser) CapabilitySet {
	caps := CapabilitySet{CapViewDashboard: true}
	if eu == nil {
		return caps
	}

	superAdmin := eu.Role == RoleSuperAdmin || eu.Role == RoleAdmin || eu.Access == LevelAdmin
	platformAdmin := superAdmin || eu.Access == LevelPlatformAdmin

	if superAdmin {
		caps[CapSuperAdmin] = true
	}
	if platformAdmin {
		grant(caps, adminGrants)
	}
	if operatorTiers[eu.Access] {
		grant(caps, operatorGrants)
	}
	grant(caps, tierGrants[eu.Access])

	return caps
}

func grant(caps CapabilitySet, grants []Capability) {
	for _, c := range grants {
		caps[c] = true
	}
}
