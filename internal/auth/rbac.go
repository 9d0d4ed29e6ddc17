package auth

import (
	"fmt"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
)

const rbacModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = r.sub == p.sub && keyMatch2(r.obj, p.obj) && regexMatch(r.act, p.act)
`

const anyMethod = "^(GET|POST|PUT|PATCH|DELETE)$"

// DefaultPolicies grants admins the whole API, vendors their portal plus
// status updates on orders (ownership is checked by the handler), and other
// services the stock endpoint.
func DefaultPolicies() [][]string {
	return [][]string{
		{string(RoleAdmin), "/api/*", anyMethod},

		{string(RoleVendor), "/api/vendor/*", "^(GET|POST)$"},
		{string(RoleVendor), "/api/orders/:id", "^GET$"},
		{string(RoleVendor), "/api/shop/orders/:id", "^GET$"},
		{string(RoleVendor), "/api/orders/:id/status", "^PUT$"},
		{string(RoleVendor), "/api/shop/orders/:id/status", "^PUT$"},

		{string(RoleService), "/api/products/:id/stock", "^PATCH$"},
		{string(RoleService), "/api/shop/products/:id/stock", "^PATCH$"},
	}
}

type Enforcer struct {
	e *casbin.Enforcer
}

func NewEnforcer(policies [][]string) (*Enforcer, error) {
	m, err := model.NewModelFromString(rbacModel)
	if err != nil {
		return nil, fmt.Errorf("rbac model: %w", err)
	}
	e, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("rbac enforcer: %w", err)
	}
	if len(policies) > 0 {
		if _, err := e.AddPolicies(policies); err != nil {
			return nil, fmt.Errorf("rbac policies: %w", err)
		}
	}
	return &Enforcer{e: e}, nil
}

func (e *Enforcer) Allow(role Role, path, method string) (bool, error) {
	return e.e.Enforce(string(role), path, method)
}
