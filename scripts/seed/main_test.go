package main

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/equiseed/equiseed/internal/rbac"
)

func TestPredefinedRoundCatalog(t *testing.T) {
	names := make([]string, 0, len(predefinedRounds))
	for i, round := range predefinedRounds {
		require.Equal(t, i+1, round.Sequence)
		names = append(names, round.Name)
	}
	require.Equal(t, []string{
		"Pre-Seed",
		"Seed",
		"Post-Seed",
		"Bridging",
		"Family & Friend",
		"Pre-Series A",
		"Series A",
		"Post-Series A",
		"Pre-Series B",
		"Open Market",
	}, names)
}

func TestRolePermissionGrants(t *testing.T) {
	require.Contains(t, rolePermissions[rbac.RoleFounder], rbac.PermFundingEdit)
	require.NotContains(t, rolePermissions[rbac.RoleFounder], rbac.PermFundingReview)
	require.Contains(t, rolePermissions[rbac.RoleAdmin], rbac.PermFundingReview)
	require.NotContains(t, rolePermissions[rbac.RoleAdmin], rbac.PermFundingEdit)
}
