package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaffAuth(t *testing.T) {
	auth := newStaffAuth(map[int64]string{1: "admin"}, []int64{2})

	assert.True(t, auth.IsAdmin(1))
	assert.True(t, auth.IsAllowed(1))
	assert.False(t, auth.IsAdmin(2))
	assert.True(t, auth.IsAllowed(2))
	assert.False(t, auth.IsAllowed(3))

	require.NoError(t, auth.AddAllowedUser(3, "carol"))
	assert.Error(t, auth.AddAllowedUser(3, "carol"))
	assert.Equal(t, map[int64]string{1: "admin", 2: "2", 3: "carol"}, auth.ListAllowedUsers())

	assert.False(t, auth.RemoveAllowedUser(1), "admins stay allowed")
	assert.True(t, auth.RemoveAllowedUser(3))
	assert.False(t, auth.RemoveAllowedUser(3))
	assert.Equal(t, map[int64]string{1: "admin"}, auth.ListAdmins())
}

func TestStaffAuthListsAreSnapshots(t *testing.T) {
	auth := newStaffAuth(map[int64]string{1: "admin"}, nil)

	users := auth.ListAllowedUsers()
	users[9] = "intruder"
	admins := auth.ListAdmins()
	admins[9] = "intruder"

	assert.False(t, auth.IsAllowed(9))
	assert.False(t, auth.IsAdmin(9))
}
