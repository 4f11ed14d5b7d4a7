package frontend

import (
	"github.com/apivet/apivet/model"
)

// typeHandle is the checker's resolved-type value: the canonical string
// plus the union members when the type is a union.
type typeHandle struct {
	text    string
	members []string
}

func (h typeHandle) String() string { return h.text }

// Checker implements model.TypeChecker over the type expressions collected
// while building an analysis. It resolves module-local alias names one
// level deep, which is what union-membership probing needs; re-exports and
// deeper chains are out of scope.
type Checker struct {
	types       map[string]typeHandle
	aliasUnions map[string][]string
}

var _ model.TypeChecker = (*Checker)(nil)

func NewChecker() *Checker {
	return &Checker{
		types:       make(map[string]typeHandle),
		aliasUnions: make(map[string][]string),
	}
}

// RegisterType records the resolved type of a node path.
func (c *Checker) RegisterType(path, signature string, unionMembers []string) {
	c.types[path] = typeHandle{text: signature, members: unionMembers}
}

// RegisterAliasUnion records that a module-local alias names a union type.
func (c *Checker) RegisterAliasUnion(name string, members []string) {
	c.aliasUnions[name] = members
}

// ResolveType resolves the type attached to a node path.
func (c *Checker) ResolveType(path string) (model.TypeHandle, bool) {
	h, ok := c.types[path]
	if !ok {
		return nil, false
	}
	if len(h.members) == 0 {
		if members, isAlias := c.aliasUnions[h.text]; isAlias {
			h.members = members
		}
	}
	return h, true
}

// Stringify renders a handle as the canonical signature string.
func (c *Checker) Stringify(handle model.TypeHandle) string {
	if handle == nil {
		return ""
	}
	return handle.String()
}

// DecomposeUnion splits a union handle into member handles.
func (c *Checker) DecomposeUnion(handle model.TypeHandle) ([]model.TypeHandle, bool) {
	h, ok := handle.(typeHandle)
	if !ok {
		return nil, false
	}
	members := h.members
	if len(members) == 0 {
		if resolved, isAlias := c.aliasUnions[h.text]; isAlias {
			members = resolved
		}
	}
	if len(members) == 0 {
		return nil, false
	}
	out := make([]model.TypeHandle, 0, len(members))
	for _, m := range members {
		out = append(out, typeHandle{text: m})
	}
	return out, true
}
