package service

import (
	"testing"

	"github.com/tandr/homehub/database/model"

	"github.com/stretchr/testify/assert"
)

func TestRegistrationSubmitValidation(t *testing.T) {
	setup()
	defer teardown()

	service := RegistrationService{}

	assert.Equal(t, ErrMissingFields, service.Submit("", "password123", "password123", ""))
	assert.Equal(t, ErrPasswordMismatch, service.Submit("ana", "password123", "different1", ""))
	assert.Equal(t, ErrWeakPassword, service.Submit("ana", "short", "short", ""))

	userService := UserService{}
	userService.CreateUser("ben", "password123")
	assert.Equal(t, ErrUsernameTaken, service.Submit("ben", "password123", "password123", ""))

	assert.NoError(t, service.Submit("ana", "password123", "password123", "family"))
	assert.Equal(t, ErrRequestExists, service.Submit("ana", "password123", "password123", ""))
}

func TestRegistrationApprove(t *testing.T) {
	setup()
	defer teardown()

	userService := UserService{}
	approver, _ := userService.CreateUser("root", "password123")

	service := RegistrationService{}
	assert.NoError(t, service.Submit("ana", "password123", "password123", "family"))

	pending, err := service.Pending()
	assert.NoError(t, err)
	assert.Len(t, pending, 1)

	user, err := service.Approve(pending[0].Id, approver.Id)
	assert.NoError(t, err)
	assert.Equal(t, "ana", user.Username)
	// New accounts start with no capabilities
	assert.False(t, user.CanTravelEdit)
	assert.False(t, user.CanApproveUsers)
	assert.False(t, user.IsAdmin)

	// The hash is handed over as-is, so the submitted password logs in
	assert.NotNil(t, userService.CheckUser("ana", "password123"))

	// Decided requests are immutable
	_, err = service.Approve(pending[0].Id, approver.Id)
	assert.Equal(t, ErrDecided, err)
	assert.Equal(t, ErrDecided, service.Deny(pending[0].Id, approver.Id))

	recent, err := service.Recent(10)
	assert.NoError(t, err)
	assert.Len(t, recent, 1)
	assert.Equal(t, model.RequestApproved, recent[0].Status)
	assert.NotNil(t, recent[0].DecidedAt)
	assert.Equal(t, approver.Id, *recent[0].DecidedByUserId)
}

func TestRegistrationDeny(t *testing.T) {
	setup()
	defer teardown()

	userService := UserService{}
	approver, _ := userService.CreateUser("root", "password123")

	service := RegistrationService{}
	assert.NoError(t, service.Submit("ana", "password123", "password123", ""))
	pending, _ := service.Pending()

	assert.NoError(t, service.Deny(pending[0].Id, approver.Id))

	// No account was created
	_, err := userService.GetUserByName("ana")
	assert.Error(t, err)

	pending, _ = service.Pending()
	assert.Len(t, pending, 0)
}

func TestRegistrationApproveTakenUsername(t *testing.T) {
	setup()
	defer teardown()

	userService := UserService{}
	approver, _ := userService.CreateUser("root", "password123")

	service := RegistrationService{}
	assert.NoError(t, service.Submit("ana", "password123", "password123", ""))
	pending, _ := service.Pending()

	// Username gets taken between submission and the decision
	userService.CreateUser("ana", "otherpassword")

	_, err := service.Approve(pending[0].Id, approver.Id)
	assert.Equal(t, ErrUsernameTaken, err)

	recent, _ := service.Recent(10)
	assert.Len(t, recent, 1)
	assert.Equal(t, model.RequestDenied, recent[0].Status)
}
