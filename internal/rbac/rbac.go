// Package rbac is the single authority deciding which admin role may perform
// which privileged operation.
package rbac

import (
	"earnly/internal/domain"
)

type Capability string

const (
	ReviewSubmissions Capability = "REVIEW_SUBMISSIONS"
	ReviewWithdrawals Capability = "REVIEW_WITHDRAWALS"
	ManageAccounts    Capability = "MANAGE_ACCOUNTS"
	ManageTasks       Capability = "MANAGE_TASKS"
	ManagePlans       Capability = "MANAGE_PLANS"
	ManageSettings    Capability = "MANAGE_SETTINGS"
	ViewAuditLog      Capability = "VIEW_AUDIT_LOG"
	ViewDashboard     Capability = "VIEW_DASHBOARD"
)

// All lists every capability; super_admin holds each of them.
var All = []Capability{
	ReviewSubmissions, ReviewWithdrawals, ManageAccounts, ManageTasks,
	ManagePlans, ManageSettings, ViewAuditLog, ViewDashboard,
}

type Gate struct {
	grants map[string]map[Capability]bool
}

func set(caps ...Capability) map[Capability]bool {
	m := make(map[Capability]bool, len(caps))
	for _, c := range caps {
		m[c] = true
	}
	return m
}

func NewGate() *Gate {
	support := []Capability{ReviewSubmissions, ViewAuditLog, ViewDashboard}
	manager := append(append([]Capability{}, support...), ReviewWithdrawals, ManageTasks, ManageAccounts)
	return &Gate{grants: map[string]map[Capability]bool{
		domain.RoleUser:       {},
		domain.RoleSupport:    set(support...),
		domain.RoleManager:    set(manager...),
		domain.RoleSuperAdmin: set(All...),
	}}
}

// Authorize reports whether role holds capability. Unknown roles hold nothing.
func (g *Gate) Authorize(role string, c Capability) bool {
	return g.grants[role][c]
}

// Require returns domain.ErrAccessDenied unless actor holds capability.
// Banned actors hold nothing whatever their role.
func (g *Gate) Require(actor domain.Actor, c Capability) error {
	if actor.ID == 0 || actor.Banned || !g.Authorize(actor.Role, c) {
		return domain.ErrAccessDenied
	}
	return nil
}

// Capabilities returns what role may do, in All order.
func (g *Gate) Capabilities(role string) []Capability {
	var out []Capability
	for _, c := range All {
		if g.grants[role][c] {
			out = append(out, c)
		}
	}
	return out
}
