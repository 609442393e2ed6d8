package auth

import (
	"fmt"
	"strings"

	"orderdesk/internal/model"

	"github.com/casbin/casbin/v2"
	casbinmodel "github.com/casbin/casbin/v2/model"
)

// Routes are identified by their ServeMux pattern path, so "/api/orders/{id}"
// and "/api/orders/export" are distinct objects.
const policyModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && r.obj == p.obj && r.act == p.act
`

// Rule grants a role one method on one route pattern.
type Rule struct {
	Role   model.Role
	Method string
	Path   string
}

// DefaultRules is the route access table. Couriers inherit anonymous rules
// and admins inherit courier rules.
var DefaultRules = []Rule{
	{model.RoleAnonymous, "GET", "/health"},
	{model.RoleAnonymous, "POST", "/api/auth/login"},
	{model.RoleAnonymous, "POST", "/api/orders"},
	{model.RoleAnonymous, "GET", "/api/products"},
	{model.RoleAnonymous, "GET", "/api/products/{id}"},
	{model.RoleAnonymous, "POST", "/api/inquiries"},

	{model.RoleCourier, "GET", "/api/auth/me"},
	{model.RoleCourier, "GET", "/api/orders/{id}"},
	{model.RoleCourier, "GET", "/api/orders/{id}/invoice"},
	{model.RoleCourier, "GET", "/api/courier/orders"},
	{model.RoleCourier, "PUT", "/api/courier/{id}/status"},

	{model.RoleAdmin, "GET", "/api/orders"},
	{model.RoleAdmin, "GET", "/api/orders/export"},
	{model.RoleAdmin, "PUT", "/api/orders/{id}/status"},
	{model.RoleAdmin, "DELETE", "/api/orders/{id}"},
	{model.RoleAdmin, "POST", "/api/products"},
	{model.RoleAdmin, "PUT", "/api/products/{id}"},
	{model.RoleAdmin, "DELETE", "/api/products/{id}"},
	{model.RoleAdmin, "GET", "/api/inquiries"},
	{model.RoleAdmin, "GET", "/api/analytics/summary"},
}

// Policy answers whether a role may call a route.
type Policy struct {
	enforcer *casbin.Enforcer
}

// NewPolicy builds an in-memory policy from rules.
func NewPolicy(rules []Rule) (*Policy, error) {
	m, err := casbinmodel.NewModelFromString(policyModel)
	if err != nil {
		return nil, fmt.Errorf("failed to parse policy model: %w", err)
	}

	e, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("failed to create enforcer: %w", err)
	}

	policies := make([][]string, 0, len(rules))
	for _, r := range rules {
		policies = append(policies, []string{string(r.Role), r.Path, r.Method})
	}
	if len(policies) > 0 {
		if _, err := e.AddPolicies(policies); err != nil {
			return nil, fmt.Errorf("failed to add policies: %w", err)
		}
	}

	inherits := [][]string{
		{string(model.RoleAdmin), string(model.RoleCourier)},
		{string(model.RoleCourier), string(model.RoleAnonymous)},
	}
	if _, err := e.AddGroupingPolicies(inherits); err != nil {
		return nil, fmt.Errorf("failed to add role inheritance: %w", err)
	}

	return &Policy{enforcer: e}, nil
}

// Allowed reports whether role may call the route registered under pattern,
// a ServeMux pattern such as "GET /api/orders/{id}".
func (p *Policy) Allowed(role model.Role, pattern string) (bool, error) {
	method, path, ok := strings.Cut(pattern, " ")
	if !ok {
		return false, fmt.Errorf("route pattern %q has no method", pattern)
	}

	allowed, err := p.enforcer.Enforce(string(role), path, method)
	if err != nil {
		return false, fmt.Errorf("policy check failed: %w", err)
	}
	return allowed, nil
}
