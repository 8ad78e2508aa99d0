package models

import "strings"

// Permission is a named access level. Levels are ordered by Rank; names not
// in the table rank 0 and never satisfy a known requirement.
type Permission string

const (
	PermissionUser  Permission = "user"
	PermissionAdmin Permission = "admin"
)

var permissionRanks = map[Permission]int{
	PermissionUser:  1,
	PermissionAdmin: 2,
}

// Rank returns the ordinal of p, 0 when unknown. Matching is case-insensitive.
func Rank(p Permission) int {
	return permissionRanks[Permission(strings.ToLower(string(p)))]
}

// HasPermission reports whether held meets or exceeds required.
func HasPermission(held, required Permission) bool {
	return Rank(held) >= Rank(required)
}
