package rbac

import (
	"context"
	"strings"
)

// Checker answers permission questions for a role. A grant ending in "*"
// covers every permission with that prefix; a bare "*" covers everything.
type Checker struct {
	exact    map[string]map[string]bool
	prefixes map[string][]string
}

func NewChecker(rp map[string][]string) *Checker {
	if rp == nil {
		rp = RolePermissions
	}
	c := &Checker{
		exact:    make(map[string]map[string]bool, len(rp)),
		prefixes: make(map[string][]string, len(rp)),
	}
	for role, grants := range rp {
		set := map[string]bool{}
		for _, g := range grants {
			if p, ok := strings.CutSuffix(g, "*"); ok {
				c.prefixes[role] = append(c.prefixes[role], p)
				continue
			}
			set[g] = true
		}
		c.exact[role] = set
	}
	return c
}

func (c *Checker) Has(role, perm string) bool {
	if c.exact[role][perm] {
		return true
	}
	for _, p := range c.prefixes[role] {
		if strings.HasPrefix(perm, p) {
			return true
		}
	}
	return false
}

func (c *Checker) Any(role string, perms ...string) bool {
	for _, p := range perms {
		if c.Has(role, p) {
			return true
		}
	}
	return false
}

func (c *Checker) All(role string, perms ...string) bool {
	for _, p := range perms {
		if !c.Has(role, p) {
			return false
		}
	}
	return len(perms) > 0
}

type roleKey struct{}

func WithRole(ctx context.Context, role string) context.Context {
	return context.WithValue(ctx, roleKey{}, role)
}

// RoleFromContext returns "" when no authenticated role is present.
func RoleFromContext(ctx context.Context) string {
	role, _ := ctx.Value(roleKey{}).(string)
	return role
}
