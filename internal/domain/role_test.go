package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRoles(t *testing.T) {
	tests := []struct {
		name    string
		values  []string
		want    []string
		wantErr bool
	}{
		{"array values", []string{"Admin", "User"}, []string{"Admin", "User"}, false},
		{"legacy comma separated", []string{"Admin, OrgAdmin"}, []string{"Admin", "OrgAdmin"}, false},
		{"duplicates collapse", []string{"User", "User,User"}, []string{"User"}, false},
		{"blank parts ignored", []string{"", " , TenantAdmin"}, []string{"TenantAdmin"}, false},
		{"empty", nil, []string{}, false},
		{"unknown role", []string{"Root"}, nil, true},
		{"roles are case sensitive", []string{"admin"}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRoles(tt.values)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Strings())
		})
	}
}

func TestRoleSet_Has(t *testing.T) {
	roles := NewRoleSet(RoleUser)
	assert.True(t, roles.Has(RoleUser))
	assert.False(t, roles.Has(RoleAdmin))

	roles.Add(RoleAdmin)
	assert.True(t, roles.Has(RoleAdmin))
}

func TestRoleSet_JSON(t *testing.T) {
	data, err := json.Marshal(NewRoleSet(RoleUser, RoleAdmin))
	require.NoError(t, err)
	assert.JSONEq(t, `["Admin","User"]`, string(data))

	var fromArray RoleSet
	require.NoError(t, json.Unmarshal([]byte(`["OrgAdmin"]`), &fromArray))
	assert.True(t, fromArray.Has(RoleOrgAdmin))

	var fromString RoleSet
	require.NoError(t, json.Unmarshal([]byte(`"Admin,User"`), &fromString))
	assert.Equal(t, []string{"Admin", "User"}, fromString.Strings())

	var bad RoleSet
	assert.Error(t, json.Unmarshal([]byte(`["Root"]`), &bad))
}

func TestUser_JSONHidesPassword(t *testing.T) {
	user := NewUser("Jane", "jane@example.com", "$2a$10$hash")
	user.ID = 12

	data, err := json.Marshal(user)
	require.NoError(t, err)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &out))
	assert.NotContains(t, out, "password")
	assert.Equal(t, float64(12), out["id"])
	assert.Equal(t, []interface{}{"User"}, out["role"])
	assert.Equal(t, "12", user.Subject())
}
