package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allRoles = []Role{RoleSuperAdmin, RoleOrgOwner, RoleOrgAdmin, RoleHRAdmin, RoleManager, RoleEmployee}

// Матрица делегирования строго убывающая: роль никогда не содержит
// саму себя и никого с рангом не ниже собственного.
func TestCanDelegate_StrictlyDecreasing(t *testing.T) {
	for _, actor := range allRoles {
		delegable := CanDelegate(actor)
		for _, d := range delegable {
			assert.NotEqual(t, actor, d, "роль %s не должна делегировать саму себя", actor)
			assert.Less(t, Rank(d), Rank(actor), "роль %s не должна делегировать %s", actor, d)
		}
	}
}

func TestCanDelegate_UnknownRoleYieldsEmptySet(t *testing.T) {
	assert.Empty(t, CanDelegate(Role("GHOST")))
	assert.Empty(t, CanDelegate(Role("")))
}

func TestCanDelegate_Matrix(t *testing.T) {
	cases := []struct {
		actor   Role
		invitee Role
		want    bool
	}{
		{RoleSuperAdmin, RoleOrgOwner, true},
		{RoleSuperAdmin, RoleSuperAdmin, false},
		{RoleOrgOwner, RoleOrgAdmin, true},
		{RoleOrgOwner, RoleOrgOwner, false},
		{RoleOrgOwner, RoleSuperAdmin, false},
		{RoleOrgAdmin, RoleManager, true},
		{RoleHRAdmin, RoleEmployee, true},
		{RoleHRAdmin, RoleManager, false}, // кадровик не нанимает руководителей
		{RoleManager, RoleEmployee, false},
		{RoleEmployee, RoleEmployee, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, MayDelegate(tc.actor, tc.invitee), "%s -> %s", tc.actor, tc.invitee)
	}
}

func TestCanEdit_RankRule(t *testing.T) {
	for _, actor := range allRoles {
		for _, target := range allRoles {
			decision := CanEdit(actor, target, false)
			if Rank(actor) <= Rank(target) {
				assert.False(t, decision.Allowed, "%s не должен редактировать %s", actor, target)
				assert.NotEmpty(t, decision.Reason)
			} else {
				assert.True(t, decision.Allowed, "%s должен редактировать %s", actor, target)
			}
		}
	}
}

func TestCanEdit_SelfCarveOut(t *testing.T) {
	decision := CanEdit(RoleEmployee, RoleEmployee, true)
	require.True(t, decision.Allowed)
	assert.True(t, decision.SelfOnly, "само-редактирование должно быть помечено ограниченным")
}

func TestCanTerminate_SelfAlwaysDenied(t *testing.T) {
	for _, role := range allRoles {
		decision := CanTerminate(role, role, true)
		assert.False(t, decision.Allowed, "роль %s не должна увольнять саму себя", role)
	}
}

func TestCanTerminate_NobodyTerminatesSuperAdmin(t *testing.T) {
	for _, actor := range allRoles {
		decision := CanTerminate(actor, RoleSuperAdmin, false)
		assert.False(t, decision.Allowed, "роль %s не должна увольнять SUPER_ADMIN", actor)
	}
}

func TestCanTerminate_RankRule(t *testing.T) {
	for _, actor := range allRoles {
		for _, target := range allRoles {
			if target == RoleSuperAdmin {
				continue
			}
			decision := CanTerminate(actor, target, false)
			assert.Equal(t, Rank(actor) > Rank(target), decision.Allowed, "%s -> %s", actor, target)
		}
	}
}

func TestThresholds(t *testing.T) {
	assert.True(t, CanManageOrganization(RoleOrgAdmin))
	assert.True(t, CanManageOrganization(RoleOrgOwner))
	assert.False(t, CanManageOrganization(RoleHRAdmin))

	assert.True(t, CanManageCompensation(RoleHRAdmin))
	assert.False(t, CanManageCompensation(RoleManager))

	assert.True(t, CanProvisionOrganization(RoleSuperAdmin))
	assert.False(t, CanProvisionOrganization(RoleOrgOwner))
}
