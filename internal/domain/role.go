package domain

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Role is a permission level a user may hold
type Role string

const (
	RoleUser        Role = "User"
	RoleAdmin       Role = "Admin"
	RoleOrgAdmin    Role = "OrgAdmin"
	RoleTenantAdmin Role = "TenantAdmin"
)

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin, RoleOrgAdmin, RoleTenantAdmin:
		return true
	}
	return false
}

// RoleSet holds the roles granted to a user. A user may hold several roles at once.
type RoleSet map[Role]struct{}

// NewRoleSet builds a set from the given roles
func NewRoleSet(roles ...Role) RoleSet {
	s := make(RoleSet, len(roles))
	for _, r := range roles {
		s[r] = struct{}{}
	}
	return s
}

// ParseRoles builds a set from stored values. Each value may itself be a
// comma separated list, which is how roles were kept in the legacy schema.
func ParseRoles(values []string) (RoleSet, error) {
	s := make(RoleSet, len(values))
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			r := Role(part)
			if !r.Valid() {
				return nil, fmt.Errorf("unknown role %q", part)
			}
			s[r] = struct{}{}
		}
	}
	return s, nil
}

// Has reports whether the set contains r
func (s RoleSet) Has(r Role) bool {
	_, ok := s[r]
	return ok
}

// Add inserts r into the set
func (s RoleSet) Add(r Role) {
	s[r] = struct{}{}
}

// Strings returns the roles sorted by name
func (s RoleSet) Strings() []string {
	out := make([]string, 0, len(s))
	for r := range s {
		out = append(out, string(r))
	}
	sort.Strings(out)
	return out
}

func (s RoleSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Strings())
}

func (s *RoleSet) UnmarshalJSON(data []byte) error {
	var values []string
	if err := json.Unmarshal(data, &values); err != nil {
		var single string
		if err := json.Unmarshal(data, &single); err != nil {
			return err
		}
		values = []string{single}
	}
	parsed, err := ParseRoles(values)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
