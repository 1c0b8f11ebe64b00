package models

import (
	"fmt"
	"strings"
)

// Role is a sales rank in the referral hierarchy
type Role string

const (
	RoleSalesman              Role = "salesman"
	RoleTeamOperationManager  Role = "team_operation_manager"
	RoleGroupOperationManager Role = "group_operation_manager"
	RoleHeadGroupManager      Role = "head_group_manager"
	RoleRegionalDirector      Role = "regional_director"
	RoleAdmin                 Role = "admin"
)

// RoleOrder lists the ranks from lowest to highest
var RoleOrder = []Role{
	RoleSalesman,
	RoleTeamOperationManager,
	RoleGroupOperationManager,
	RoleHeadGroupManager,
	RoleRegionalDirector,
	RoleAdmin,
}

// CommissionTable is the fixed payout per registered customer, by rank
var CommissionTable = map[Role]int64{
	RoleSalesman:              600,
	RoleTeamOperationManager:  400,
	RoleGroupOperationManager: 250,
	RoleHeadGroupManager:      150,
	RoleRegionalDirector:      100,
	RoleAdmin:                 0,
}

// CommissionFor returns the payout credited to a user of the given rank
func CommissionFor(role Role) int64 {
	return CommissionTable[role]
}

// Rank returns the position of the role in RoleOrder, or -1 for an unknown role
func (r Role) Rank() int {
	for i, role := range RoleOrder {
		if role == r {
			return i
		}
	}
	return -1
}

func (r Role) Valid() bool {
	return r.Rank() >= 0
}

// Label is the human readable rank name
func (r Role) Label() string {
	switch r {
	case RoleSalesman:
		return "Salesman"
	case RoleTeamOperationManager:
		return "Team Operation Manager"
	case RoleGroupOperationManager:
		return "Group Operation Manager"
	case RoleHeadGroupManager:
		return "Head Group Manager"
	case RoleRegionalDirector:
		return "Regional Director"
	case RoleAdmin:
		return "Admin"
	}
	return string(r)
}

// ParseRole accepts wire values and the "salesManager" style camel case the web client sends
func ParseRole(s string) (Role, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	for _, role := range RoleOrder {
		if normalized == string(role) || normalized == strings.ReplaceAll(string(role), "_", "") {
			return role, nil
		}
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// NextRoleDown returns the rank a new signup gets when referred by someone holding role.
// Admin hands out Regional Director and Salesman is the floor.
func NextRoleDown(role Role) Role {
	if role == RoleAdmin {
		return RoleRegionalDirector
	}
	rank := role.Rank()
	if rank <= 0 {
		return RoleSalesman
	}
	return RoleOrder[rank-1]
}

// StaffRole is a back-office role that views dashboards but sits outside the referral forest
type StaffRole string

const (
	StaffHR               StaffRole = "hr"
	StaffRecoveryAdmin    StaffRole = "recovery_admin"
	StaffCallCentre       StaffRole = "call_centre"
	StaffTechnicalOfficer StaffRole = "technical_officer"
)

var StaffRoles = []StaffRole{StaffHR, StaffRecoveryAdmin, StaffCallCentre, StaffTechnicalOfficer}

func (s StaffRole) Valid() bool {
	for _, r := range StaffRoles {
		if r == s {
			return true
		}
	}
	return false
}
