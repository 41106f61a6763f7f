package roles

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequiresOTP(t *testing.T) {
	assert.True(t, RequiresOTP(FieldAgent))
	assert.True(t, RequiresOTP(Auditor))
	assert.False(t, RequiresOTP(Admin))
	assert.False(t, RequiresOTP(SuperAdmin))
	assert.False(t, RequiresOTP(SuperSuperAdmin))
}

func TestValid(t *testing.T) {
	for _, r := range []Role{SuperSuperAdmin, SuperAdmin, Admin, FieldAgent, Auditor} {
		assert.True(t, Valid(r), "role %s should be valid", r)
	}
	assert.False(t, Valid(Role("root")))
	assert.False(t, Valid(Role("")))
}

func TestCanManage(t *testing.T) {
	// Nobody grants above their own rank.
	assert.False(t, CanManage(Admin, SuperAdmin))
	assert.False(t, CanManage(SuperAdmin, SuperSuperAdmin))
	assert.True(t, CanManage(SuperAdmin, Admin))
	assert.True(t, CanManage(Admin, FieldAgent))
	assert.True(t, CanManage(Admin, Admin))

	// Only superSuperAdmin manages superSuperAdmins.
	assert.False(t, CanManage(SuperAdmin, SuperSuperAdmin))
	assert.True(t, CanManage(SuperSuperAdmin, SuperSuperAdmin))

	// Non-admin roles manage nothing.
	assert.False(t, CanManage(FieldAgent, FieldAgent))
	assert.False(t, CanManage(Auditor, FieldAgent))
}

func TestCan(t *testing.T) {
	assert.True(t, Can(Admin, ActionManageUsers))
	assert.False(t, Can(FieldAgent, ActionManageUsers))
	assert.False(t, Can(Auditor, ActionManageVehicles))

	// Auditors are read-only but can search, view stats and export.
	assert.True(t, Can(Auditor, ActionSearchExcel))
	assert.True(t, Can(Auditor, ActionViewStats))
	assert.True(t, Can(Auditor, ActionViewMoney))
	assert.True(t, Can(Auditor, ActionExportData))

	// Field agents update work status but cannot assign.
	assert.True(t, Can(FieldAgent, ActionUpdateVehicleWork))
	assert.False(t, Can(FieldAgent, ActionAssignVehicles))

	// App versions need superAdmin or above.
	assert.False(t, Can(Admin, ActionManageAppVersions))
	assert.True(t, Can(SuperAdmin, ActionManageAppVersions))

	// Unknown actions and roles never pass.
	assert.False(t, Can(Admin, Action("unknown")))
	assert.False(t, Can(Role("root"), ActionManageUsers))
}
