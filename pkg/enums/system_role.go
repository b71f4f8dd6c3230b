package enums

import "fmt"

// SystemRole represents a platform-level permissions role.
type SystemRole string

const (
	SystemRoleUser  SystemRole = "user"
	SystemRoleAdmin SystemRole = "admin"
)

var validSystemRoles = []SystemRole{
	SystemRoleUser,
	SystemRoleAdmin,
}

// String implements fmt.Stringer.
func (s SystemRole) String() string {
	return string(s)
}

// IsValid reports whether the value is a known SystemRole.
func (s SystemRole) IsValid() bool {
	for _, candidate := range validSystemRoles {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseSystemRole converts raw input into a SystemRole.
func ParseSystemRole(value string) (SystemRole, error) {
	for _, candidate := range validSystemRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid system role %q", value)
}
