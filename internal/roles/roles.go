package roles

// Role is one of the fixed access levels. The set is closed; anything else is
// rejected at the edge.
type Role string

const (
	SuperSuperAdmin Role = "superSuperAdmin"
	SuperAdmin      Role = "superAdmin"
	Admin           Role = "admin"
	FieldAgent      Role = "fieldAgent"
	Auditor         Role = "auditor"
)

// Action names a management capability checked before rendering or serving
// the corresponding operation.
type Action string

const (
	ActionManageUsers       Action = "manage_users"
	ActionManageVehicles    Action = "manage_vehicles"
	ActionAssignVehicles    Action = "assign_vehicles"
	ActionUpdateVehicleWork Action = "update_vehicle_work"
	ActionManageOTP         Action = "manage_otp"
	ActionManageBackOffice  Action = "manage_back_office"
	ActionUploadExcel       Action = "upload_excel"
	ActionSearchExcel       Action = "search_excel"
	ActionViewMoney         Action = "view_money"
	ActionManageAppVersions Action = "manage_app_versions"
	ActionViewStats         Action = "view_stats"
	ActionExportData        Action = "export_data"
)

// rank orders roles from least to most privileged. Higher rank wins ties when
// one role manages another.
var rank = map[Role]int{
	Auditor:         1,
	FieldAgent:      1,
	Admin:           2,
	SuperAdmin:      3,
	SuperSuperAdmin: 4,
}

// Valid reports whether r belongs to the closed role set.
func Valid(r Role) bool {
	_, ok := rank[r]
	return ok
}

// IsAdmin reports whether the role is admin or above.
func IsAdmin(r Role) bool {
	return rank[r] >= rank[Admin]
}

// RequiresOTP reports whether the role must complete the OTP step to finish
// login. Admin and above authenticate with credentials alone.
func RequiresOTP(r Role) bool {
	return r == FieldAgent || r == Auditor
}

// CanManage reports whether actor may create or modify an account holding
// target. Nobody grants a role above their own, and only superSuperAdmin
// touches other superSuperAdmins.
func CanManage(actor, target Role) bool {
	if !Valid(actor) || !Valid(target) {
		return false
	}
	if !IsAdmin(actor) {
		return false
	}
	if target == SuperSuperAdmin {
		return actor == SuperSuperAdmin
	}
	return rank[actor] >= rank[target]
}

// capabilities is the single capability table every handler consults.
// Auditors are read-only: search and stats, nothing that mutates.
var capabilities = map[Action]func(Role) bool{
	ActionManageUsers:       IsAdmin,
	ActionManageVehicles:    IsAdmin,
	ActionAssignVehicles:    IsAdmin,
	ActionManageOTP:         IsAdmin,
	ActionManageBackOffice:  IsAdmin,
	ActionUploadExcel:       IsAdmin,
	ActionManageAppVersions: func(r Role) bool { return rank[r] >= rank[SuperAdmin] },
	ActionExportData:        func(r Role) bool { return IsAdmin(r) || r == Auditor },
	ActionSearchExcel:       Valid,
	ActionViewStats:         func(r Role) bool { return IsAdmin(r) || r == Auditor },
	ActionViewMoney:         func(r Role) bool { return IsAdmin(r) || r == Auditor },
	ActionUpdateVehicleWork: func(r Role) bool { return IsAdmin(r) || r == FieldAgent },
}

// Can is the capability predicate shared by every route: (role, action) → bool.
func Can(r Role, a Action) bool {
	check, ok := capabilities[a]
	if !ok {
		return false
	}
	return check(r)
}
