package rbac

import (
	"context"
	"sort"
	"strings"
)

// Policy maps a role to permission patterns. A pattern ending in "*" matches
// every permission with that prefix, so "question:*" covers question:create.
type Policy map[string][]string

type Checker struct {
	policy Policy
}

func NewChecker(p Policy) *Checker {
	if p == nil {
		p = RolePermissions
	}
	return &Checker{policy: p}
}

func (c *Checker) Has(role, perm string) bool {
	for _, p := range c.policy[role] {
		if matchPerm(p, perm) {
			return true
		}
	}
	return false
}

// Grants expands the role's patterns against known, sorted for stable output.
func (c *Checker) Grants(role string, known []string) []string {
	out := []string{}
	for _, k := range known {
		if c.Has(role, k) {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

func matchPerm(pattern, perm string) bool {
	if pattern == perm {
		return true
	}
	if strings.HasSuffix(pattern, "*") {
		return strings.HasPrefix(perm, strings.TrimSuffix(pattern, "*"))
	}
	return false
}

type ctxKey struct{}

var ctxKeyRole = ctxKey{}

func WithRole(ctx context.Context, role string) context.Context {
	return context.WithValue(ctx, ctxKeyRole, role)
}

func RoleFromContext(ctx context.Context) string {
	if v := ctx.Value(ctxKeyRole); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
