package service

import (
	"errors"
	"strings"
	"time"

	"github.com/tandr/homehub/database"
	"github.com/tandr/homehub/database/model"
	"github.com/tandr/homehub/util/crypto"
)

var (
	ErrMissingFields    = errors.New("all fields are required")
	ErrPasswordMismatch = errors.New("passwords do not match")
	ErrWeakPassword     = errors.New("use at least 8 characters for the password")
	ErrRequestExists    = errors.New("there is already a request for that username")
	ErrDecided          = errors.New("this request has already been decided")
)

// RegistrationService runs the account approval workflow: anyone may submit
// a request, an approver turns it into an account or denies it, and a
// decided request never changes again.
type RegistrationService struct {
	userService UserService
}

func (s *RegistrationService) Submit(username, password, confirm, reason string) error {
	username = strings.TrimSpace(username)
	if username == "" || password == "" || confirm == "" {
		return ErrMissingFields
	}
	if password != confirm {
		return ErrPasswordMismatch
	}
	if len(password) < 8 {
		return ErrWeakPassword
	}

	db := database.GetDB()

	var count int64
	if err := db.Model(model.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrUsernameTaken
	}
	if err := db.Model(model.RegistrationRequest{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrRequestExists
	}

	hash, err := crypto.HashPasswordAsBcrypt(password)
	if err != nil {
		return err
	}
	request := &model.RegistrationRequest{
		Username: username,
		Password: hash,
		Reason:   strings.TrimSpace(reason),
		Status:   model.RequestPending,
	}
	return db.Create(request).Error
}

func (s *RegistrationService) Pending() ([]model.RegistrationRequest, error) {
	db := database.GetDB()

	var requests []model.RegistrationRequest
	err := db.Model(model.RegistrationRequest{}).
		Where("status = ?", model.RequestPending).
		Order("created_at asc").
		Find(&requests).
		Error
	return requests, err
}

func (s *RegistrationService) Recent(limit int) ([]model.RegistrationRequest, error) {
	db := database.GetDB()

	var requests []model.RegistrationRequest
	err := db.Model(model.RegistrationRequest{}).
		Where("status != ?", model.RequestPending).
		Order("decided_at desc").
		Limit(limit).
		Find(&requests).
		Error
	return requests, err
}

// Approve creates the account for a pending request. If the username got
// taken since submission the request is auto-denied and ErrUsernameTaken is
// returned.
func (s *RegistrationService) Approve(requestId int, deciderId int) (*model.User, error) {
	db := database.GetDB()

	request := &model.RegistrationRequest{}
	if err := db.First(request, requestId).Error; err != nil {
		return nil, err
	}
	if request.Status != model.RequestPending {
		return nil, ErrDecided
	}

	user, err := s.userService.CreateUserWithHash(request.Username, request.Password)
	if err == ErrUsernameTaken {
		if derr := s.decide(request, model.RequestDenied, deciderId); derr != nil {
			return nil, derr
		}
		return nil, ErrUsernameTaken
	} else if err != nil {
		return nil, err
	}

	if err := s.decide(request, model.RequestApproved, deciderId); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *RegistrationService) Deny(requestId int, deciderId int) error {
	db := database.GetDB()

	request := &model.RegistrationRequest{}
	if err := db.First(request, requestId).Error; err != nil {
		return err
	}
	if request.Status != model.RequestPending {
		return ErrDecided
	}
	return s.decide(request, model.RequestDenied, deciderId)
}

func (s *RegistrationService) decide(request *model.RegistrationRequest, status string, deciderId int) error {
	now := time.Now()
	request.Status = status
	request.DecidedAt = &now
	request.DecidedByUserId = &deciderId
	return database.GetDB().Save(request).Error
}
