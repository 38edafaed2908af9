package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserCheck(t *testing.T) {
	setup()
	defer teardown()

	service := UserService{}
	_, err := service.CreateUser("ana", "password123")
	assert.NoError(t, err)

	assert.NotNil(t, service.CheckUser("ana", "password123"))
	assert.Nil(t, service.CheckUser("ana", "wrong"))
	assert.Nil(t, service.CheckUser("nobody", "password123"))

	_, err = service.CreateUser("ana", "password123")
	assert.Equal(t, ErrUsernameTaken, err)
}

func TestUserCapabilities(t *testing.T) {
	setup()
	defer teardown()

	service := UserService{}
	user, _ := service.CreateUser("ana", "password123")

	assert.NoError(t, service.SetCapabilities(user.Id, true, false, false))
	fresh, _ := service.GetUser(user.Id)
	assert.True(t, fresh.CanTravelEdit)
	assert.False(t, fresh.CanApproveUsers)
	assert.False(t, fresh.IsAdmin)

	// Flags are independent, not a hierarchy
	assert.NoError(t, service.SetCapabilities(user.Id, false, true, true))
	fresh, _ = service.GetUser(user.Id)
	assert.False(t, fresh.CanTravelEdit)
	assert.True(t, fresh.CanApproveUsers)
	assert.True(t, fresh.IsAdmin)
}

func TestBootstrapAdmin(t *testing.T) {
	setup()
	defer teardown()

	service := UserService{}

	exists, err := service.AdminExists()
	assert.NoError(t, err)
	assert.False(t, exists)

	admin, err := service.BootstrapAdmin("root", "password123")
	assert.NoError(t, err)
	assert.True(t, admin.IsAdmin)
	assert.True(t, admin.CanTravelEdit)
	assert.True(t, admin.CanApproveUsers)

	// Gate closes once an admin exists
	_, err = service.BootstrapAdmin("other", "password123")
	assert.Equal(t, ErrAdminExists, err)

	// Demoting the only admin reopens it
	assert.NoError(t, service.SetCapabilities(admin.Id, false, false, false))
	exists, _ = service.AdminExists()
	assert.False(t, exists)

	// An existing account is promoted rather than duplicated
	promoted, err := service.BootstrapAdmin("root", "ignored")
	assert.NoError(t, err)
	assert.Equal(t, admin.Id, promoted.Id)
	assert.True(t, promoted.IsAdmin)
}

func TestUpdatePassword(t *testing.T) {
	setup()
	defer teardown()

	service := UserService{}
	service.CreateUser("ana", "password123")

	assert.NoError(t, service.UpdatePassword("ana", "newpassword1"))
	assert.Nil(t, service.CheckUser("ana", "password123"))
	assert.NotNil(t, service.CheckUser("ana", "newpassword1"))

	assert.Error(t, service.UpdatePassword("nobody", "newpassword1"))
}
