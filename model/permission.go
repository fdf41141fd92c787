// api/model/permission.go
package model

import "fmt"

// PermissionLevel is the hierarchical capability ladder used by the
// permission oracle. Higher levels imply every lower one.
type PermissionLevel int

const (
	PermissionNone PermissionLevel = iota
	PermissionRead
	PermissionCreate
	PermissionWrite
	PermissionAdmin
)

var permissionNames = map[PermissionLevel]string{
	PermissionNone:   "none",
	PermissionRead:   "read",
	PermissionCreate: "create",
	PermissionWrite:  "write",
	PermissionAdmin:  "admin",
}

func (l PermissionLevel) String() string {
	if name, ok := permissionNames[l]; ok {
		return name
	}
	return "none"
}

// Satisfies reports whether the level covers the required one.
func (l PermissionLevel) Satisfies(required PermissionLevel) bool {
	return l >= required
}

// ParsePermissionLevel converts a permission name to its level
func ParsePermissionLevel(s string) (PermissionLevel, error) {
	for level, name := range permissionNames {
		if name == s {
			return level, nil
		}
	}
	return PermissionNone, fmt.Errorf("unknown permission level: %q", s)
}
