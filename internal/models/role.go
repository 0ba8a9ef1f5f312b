package models

import "fmt"

// Role is the persona injected as the system message of a completion call.
type Role string

const (
	RoleQALead                   Role = "QA Lead"
	RoleSeniorQALead             Role = "Senior QA Lead"
	RoleQAArchitect              Role = "QA Architect"
	RoleQADirector               Role = "QA Director"
	RoleQAManager                Role = "QA Manager"
	RoleBDDSpecialist            Role = "BDD Specialist"
	RoleSecurityEngineer         Role = "Security Engineer"
	RoleSDET                     Role = "SDET"
	RoleDataArchitect            Role = "Data Architect"
	RoleTestAutomationConsultant Role = "Test Automation Consultant"
)

// Roles returns every known role in display order.
func Roles() []Role {
	return []Role{
		RoleQALead,
		RoleSeniorQALead,
		RoleQAArchitect,
		RoleQADirector,
		RoleQAManager,
		RoleBDDSpecialist,
		RoleSecurityEngineer,
		RoleSDET,
		RoleDataArchitect,
		RoleTestAutomationConsultant,
	}
}

// ParseRole matches s against the known roles, case-sensitively.
func ParseRole(s string) (Role, error) {
	for _, r := range Roles() {
		if string(r) == s {
			return r, nil
		}
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// SystemMessage is the system-role instruction sent with every prompt for r.
func (r Role) SystemMessage() string {
	return fmt.Sprintf("You are a professional %s.", string(r))
}
