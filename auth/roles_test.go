package auth_test

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-course-client/auth"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func TestNormalizeRole(t *testing.T) {
	require.Equal(t, auth.RoleStudent, auth.NormalizeRole("ROLE_STUDENT"))
	require.Equal(t, auth.RoleAdmin, auth.NormalizeRole("role_admin"))
	require.Equal(t, auth.RoleInstructor, auth.NormalizeRole(" instructor "))
	require.Equal(t, auth.RoleNone, auth.NormalizeRole(""))
}

func TestResolveRole(t *testing.T) {
	tests := []struct {
		name   string
		me     map[string]any
		access string
		want   auth.Role
	}{
		{"role field", map[string]any{"role": "ROLE_ADMIN", "roleCode": "STUDENT"}, "", auth.RoleAdmin},
		{"role code", map[string]any{"roleCode": "instructor"}, "", auth.RoleInstructor},
		{"authority strings", map[string]any{"authorities": []any{"ROLE_STUDENT"}}, "", auth.RoleStudent},
		{"authority objects", map[string]any{"authorities": []any{map[string]any{"authority": "ROLE_ADMIN"}}}, "", auth.RoleAdmin},
		{"roles list", map[string]any{"roles": []any{"STUDENT", "ADMIN"}}, "", auth.RoleStudent},
		{"claim role", map[string]any{}, signedToken(t, jwt.MapClaims{"role": "ROLE_INSTRUCTOR"}), auth.RoleInstructor},
		{"claim roles", nil, signedToken(t, jwt.MapClaims{"roles": []string{"ADMIN"}}), auth.RoleAdmin},
		{"claim authorities", nil, signedToken(t, jwt.MapClaims{"authorities": []string{"ROLE_STUDENT"}}), auth.RoleStudent},
		{"body wins over claims", map[string]any{"role": "STUDENT"}, signedToken(t, jwt.MapClaims{"role": "ADMIN"}), auth.RoleStudent},
		{"opaque token", map[string]any{}, "not-a-jwt", auth.RoleNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, auth.ResolveRole(tt.me, tt.access))
		})
	}
}

func TestRegistrationValidate(t *testing.T) {
	valid := auth.Registration{FullName: "Ada Lovelace", Email: "ada@example.edu", Password: "Engine#1843"}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name    string
		mutate  func(r *auth.Registration)
		wantMsg string
	}{
		{"no name", func(r *auth.Registration) { r.FullName = "  " }, "full name is required"},
		{"bad email", func(r *auth.Registration) { r.Email = "ada" }, "invalid email"},
		{"short password", func(r *auth.Registration) { r.Password = "Ab#1" }, "at least 8 characters"},
		{"no upper", func(r *auth.Registration) { r.Password = "engine#1843" }, "uppercase"},
		{"no lower", func(r *auth.Registration) { r.Password = "ENGINE#1843" }, "lowercase"},
		{"no number", func(r *auth.Registration) { r.Password = "Engine#Ada" }, "number"},
		{"no symbol", func(r *auth.Registration) { r.Password = "Engine1843" }, "symbol"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := valid
			tt.mutate(&r)
			err := r.Validate()
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}
