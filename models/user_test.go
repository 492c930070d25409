package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetAndCheckPassword(t *testing.T) {
	u := &User{}
	require.NoError(t, u.SetPassword("Passw0rd"))
	assert.NotEqual(t, "Passw0rd", u.PasswordHash)
	assert.True(t, u.CheckPassword("Passw0rd"))
	assert.False(t, u.CheckPassword("passw0rd"))
	assert.False(t, u.CheckPassword(""))
}

func TestValidatePassword(t *testing.T) {
	testCases := []struct {
		password   string
		violations int
	}{
		{"Passw0rd", 0},
		{"passw0rd", 1}, // no uppercase
		{"PASSW0RD", 1}, // no lowercase
		{"Password", 1}, // no digit
		{"Pw0", 1},      // too short
		{"pw", 3},       // short, no uppercase, no digit
		{"ÅÅå1b", 1},    // 8 bytes but only 5 characters: still too short
		{"", 4},
	}
	for _, tt := range testCases {
		errs := ValidatePassword(tt.password)
		assert.Len(t, errs, tt.violations, "password %q", tt.password)
	}
}

func TestRoleName(t *testing.T) {
	assert.Equal(t, "Admin", (&User{Role: RoleAdmin}).RoleName())
	assert.Equal(t, "No Role", (&User{}).RoleName())
}

func TestValidRole(t *testing.T) {
	assert.True(t, ValidRole(RoleAdmin))
	assert.True(t, ValidRole(RoleTeacher))
	assert.True(t, ValidRole(RoleStudent))
	assert.False(t, ValidRole(""))
	assert.False(t, ValidRole("admin"))
	assert.False(t, ValidRole("No Role"))
}
