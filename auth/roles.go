package auth

import (
	"strings"

	"github.com/jrsteele09/go-course-client/internal/utils"
	"github.com/jrsteele09/go-course-client/tokens"
)

// Role is a portal role in its canonical upper-case form.
type Role string

const (
	RoleNone       Role = ""
	RoleAdmin      Role = "ADMIN"
	RoleInstructor Role = "INSTRUCTOR"
	RoleStudent    Role = "STUDENT"
)

// NormalizeRole strips a ROLE_ prefix and upper-cases, so "ROLE_student" and
// "STUDENT" are the same role.
func NormalizeRole(s string) Role {
	s = strings.TrimSpace(s)
	if len(s) >= 5 && strings.EqualFold(s[:5], "ROLE_") {
		s = s[5:]
	}
	return Role(strings.ToUpper(s))
}

// ResolveRole picks the role from the /auth/me body, falling back to the
// access token's claims when the body carries none.
func ResolveRole(me map[string]any, accessToken string) Role {
	candidates := []string{
		stringField(me, "role"),
		stringField(me, "roleCode"),
		firstAuthority(me["authorities"]),
		firstAuthority(me["roles"]),
	}
	if claims, ok := tokens.UnverifiedClaims(accessToken); ok {
		candidates = append(candidates,
			stringField(claims, "role"),
			firstAuthority(claims["roles"]),
			firstAuthority(claims["authorities"]),
		)
	}
	for _, c := range candidates {
		if role := NormalizeRole(c); role != RoleNone {
			return role
		}
	}
	return RoleNone
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

// firstAuthority reads the first entry of a list of role names or of
// {"authority": name} objects.
func firstAuthority(v any) string {
	list, ok := v.([]any)
	if !ok || len(list) == 0 {
		return ""
	}
	if names := utils.ToStringSlice(list[:1]); len(names) == 1 {
		return names[0]
	}
	if obj, ok := list[0].(map[string]any); ok {
		return stringField(obj, "authority")
	}
	return ""
}
