// Package workflow enforces which order status changes are legal and which
// roles may perform them.
package workflow

import (
	"orderdesk/internal/model"
)

type edge struct {
	from model.Status
	to   model.Status
}

// transitions is the complete table of legal edges and the roles allowed on
// each. Anything absent from it is rejected.
var transitions = map[edge][]model.Role{
	{model.StatusReceived, model.StatusSended}:     {model.RoleAdmin},
	{model.StatusSended, model.StatusReceived}:     {model.RoleAdmin},
	{model.StatusSended, model.StatusInTransit}:    {model.RoleCourier, model.RoleAdmin},
	{model.StatusInTransit, model.StatusDelivered}: {model.RoleCourier, model.RoleAdmin},
}

// Allowed reports whether role may move an order from one status to another.
// Same-status requests on non-terminal statuses are allowed as no-ops.
func Allowed(from, to model.Status, role model.Role) bool {
	if !from.IsValid() || !to.IsValid() || !role.IsStaff() {
		return false
	}
	if from == to {
		return !from.IsTerminal()
	}
	for _, r := range transitions[edge{from, to}] {
		if r == role {
			return true
		}
	}
	return false
}

// ApplyTransition returns a copy of order with its status set to target.
// The input is never modified; on rejection the zero Order and an
// InvalidTransition error are returned.
func ApplyTransition(order model.Order, target model.Status, role model.Role) (model.Order, error) {
	if !Allowed(order.Status, target, role) {
		return model.Order{}, model.NewInvalidTransitionError(order.Status, target, role)
	}
	order.Status = target
	return order, nil
}

// ParseTarget normalises a requested target status, accepting legacy
// vocabulary. Unknown values are reported as InvalidTransition since no edge
// can reach them.
func ParseTarget(raw string) (model.Status, error) {
	s, ok := model.NormalizeStatus(raw)
	if !ok {
		return "", model.NewDomainError(model.ErrCodeInvalidTransition, "unknown target status \""+raw+"\"")
	}
	return s, nil
}

// Next lists the statuses role may move an order to from the given status,
// in lifecycle order.
func Next(from model.Status, role model.Role) []model.Status {
	var out []model.Status
	for _, to := range model.Statuses {
		if to == from {
			continue
		}
		if Allowed(from, to, role) {
			out = append(out, to)
		}
	}
	return out
}

// Advance returns the forward delivery step a courier takes from s.
func Advance(s model.Status) (model.Status, bool) {
	switch s {
	case model.StatusSended:
		return model.StatusInTransit, true
	case model.StatusInTransit:
		return model.StatusDelivered, true
	}
	return "", false
}
