package permission

import "testing"

func TestCapability_BitOperations(t *testing.T) {
	var c Capability

	c = c.With(CapManageOffers).With(CapViewRoles)
	if !c.Has(CapManageOffers) || !c.Has(CapViewRoles) {
		t.Fatalf("expected granted bits to be set, got %s", c)
	}
	if c.Has(CapManageContracts) {
		t.Fatalf("ungranted bit reported as set")
	}

	c = c.Without(CapManageOffers)
	if c.Has(CapManageOffers) {
		t.Fatalf("revoked bit still set")
	}
	if !c.Has(CapViewRoles) {
		t.Fatalf("revoke cleared an unrelated bit")
	}
}

func TestCapability_HasRequiresAllBits(t *testing.T) {
	c := CapManageOffers | CapViewRoles
	if c.Has(CapManageOffers | CapManageContracts) {
		t.Fatalf("Has should require every requested bit")
	}
	if !c.Has(CapManageOffers | CapViewRoles) {
		t.Fatalf("Has should accept a subset it fully covers")
	}
}

func TestDefaultCapabilities(t *testing.T) {
	cases := []struct {
		name string
		role Role
		want func(Capability) bool
	}{
		{name: "founder_has_all", role: RoleFounder, want: func(c Capability) bool { return c == AllCapabilities() }},
		{name: "owner_has_all", role: RoleOwner, want: func(c Capability) bool { return c == AllCapabilities() }},
		{name: "manager_is_narrow", role: RoleManager, want: func(c Capability) bool {
			return c.Has(CapManageStorage) && !c.Has(CapManageContracts) && !c.Has(CapAppointOwner)
		}},
		{name: "unknown_role_has_none", role: Role("visitor"), want: func(c Capability) bool { return c == 0 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := DefaultCapabilities(tc.role)
			if !tc.want(got) {
				t.Fatalf("DefaultCapabilities(%s)=%s", tc.role, got)
			}
		})
	}
}

func TestCapability_String(t *testing.T) {
	if got := Capability(0).String(); got != "none" {
		t.Fatalf("empty set String()=%q", got)
	}
	c := CapManageOffers | CapManageContracts
	got := c.String()
	if got != "manage_offers|manage_contracts" {
		t.Fatalf("String()=%q", got)
	}
}
