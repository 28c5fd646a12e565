package permission

import (
	"strings"

	"github.com/google/uuid"
)

// Capability is one bit of authority grantable to a user for a specific
// store. A user's effective authority is the bitwise OR of their grants.
type Capability uint32

const (
	CapManageStorage Capability = 1 << iota
	CapManageOffers
	CapManageContracts
	CapManageDiscounts
	CapManagePurchaseRules
	CapAppointManager
	CapAppointOwner
	CapRemoveRoles
	CapViewRoles
)

var capNames = []struct {
	bit  Capability
	name string
}{
	{CapManageStorage, "manage_storage"},
	{CapManageOffers, "manage_offers"},
	{CapManageContracts, "manage_contracts"},
	{CapManageDiscounts, "manage_discounts"},
	{CapManagePurchaseRules, "manage_purchase_rules"},
	{CapAppointManager, "appoint_manager"},
	{CapAppointOwner, "appoint_owner"},
	{CapRemoveRoles, "remove_roles"},
	{CapViewRoles, "view_roles"},
}

func (c Capability) Has(cap Capability) bool {
	return c&cap == cap
}

func (c Capability) With(cap Capability) Capability {
	return c | cap
}

func (c Capability) Without(cap Capability) Capability {
	return c &^ cap
}

func (c Capability) String() string {
	var parts []string
	for _, entry := range capNames {
		if c.Has(entry.bit) {
			parts = append(parts, entry.name)
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}

// Role tags how a user relates to a store. Founders and owners carry every
// capability; managers start with a narrow default that the grantor may
// widen per grant.
type Role string

const (
	RoleFounder Role = "founder"
	RoleOwner   Role = "owner"
	RoleManager Role = "manager"
)

func AllCapabilities() Capability {
	var all Capability
	for _, entry := range capNames {
		all |= entry.bit
	}
	return all
}

func DefaultCapabilities(role Role) Capability {
	switch role {
	case RoleFounder, RoleOwner:
		return AllCapabilities()
	case RoleManager:
		return CapManageStorage | CapViewRoles
	default:
		return 0
	}
}

// Grant records one role assignment: who holds it, who bestowed it, and the
// capability bits it carries. Grants form a tree through GrantedBy; revoking
// a grant cascades to every grant it transitively bestowed.
type Grant struct {
	StoreID      uuid.UUID
	UserID       uuid.UUID
	GrantedBy    uuid.UUID
	Role         Role
	Capabilities Capability
}

func NewGrant(storeID, userID, grantedBy uuid.UUID, role Role) *Grant {
	return &Grant{
		StoreID:      storeID,
		UserID:       userID,
		GrantedBy:    grantedBy,
		Role:         role,
		Capabilities: DefaultCapabilities(role),
	}
}
