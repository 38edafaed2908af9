package service

import (
	"errors"
	"strings"

	"github.com/tandr/homehub/database"
	"github.com/tandr/homehub/database/model"
	"github.com/tandr/homehub/logger"
	"github.com/tandr/homehub/util/crypto"

	"gorm.io/gorm"
)

var (
	ErrUsernameTaken = errors.New("username is taken")
	ErrAdminExists   = errors.New("an admin account already exists")
)

type UserService struct{}

func (s *UserService) GetUser(id int) (*model.User, error) {
	db := database.GetDB()

	user := &model.User{}
	err := db.Model(model.User{}).
		Where("id = ?", id).
		First(user).
		Error
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) GetUserByName(username string) (*model.User, error) {
	db := database.GetDB()

	user := &model.User{}
	err := db.Model(model.User{}).
		Where("username = ?", username).
		First(user).
		Error
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) GetUsers() ([]model.User, error) {
	db := database.GetDB()

	var users []model.User
	err := db.Model(model.User{}).
		Order("username asc").
		Find(&users).
		Error
	return users, err
}

// CheckUser verifies credentials and returns the user, or nil on any
// failure. Callers treat nil as a plain bad-credentials outcome.
func (s *UserService) CheckUser(username string, password string) *model.User {
	db := database.GetDB()

	user := &model.User{}
	err := db.Model(model.User{}).
		Where("username = ?", username).
		First(user).
		Error
	if err == gorm.ErrRecordNotFound {
		return nil
	} else if err != nil {
		logger.Warning("check user err:", err)
		return nil
	}

	if !crypto.CheckPasswordHash(user.Password, password) {
		return nil
	}
	return user
}

func (s *UserService) CreateUser(username string, password string) (*model.User, error) {
	hash, err := crypto.HashPasswordAsBcrypt(password)
	if err != nil {
		return nil, err
	}
	return s.CreateUserWithHash(username, hash)
}

// CreateUserWithHash creates a user from an already-hashed credential, as
// handed over by an approved registration request. New users start with no
// capabilities.
func (s *UserService) CreateUserWithHash(username string, passwordHash string) (*model.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, errors.New("username can not be empty")
	}

	db := database.GetDB()

	var count int64
	if err := db.Model(model.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrUsernameTaken
	}

	user := &model.User{
		Username: username,
		Password: passwordHash,
	}
	if err := db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) UpdatePassword(username string, password string) error {
	if password == "" {
		return errors.New("password can not be empty")
	}
	hash, err := crypto.HashPasswordAsBcrypt(password)
	if err != nil {
		return err
	}

	db := database.GetDB()
	result := db.Model(model.User{}).
		Where("username = ?", username).
		Update("password", hash)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SetCapabilities replaces the three capability flags of a user. Flags are
// independent booleans; there is no hierarchy between them.
func (s *UserService) SetCapabilities(id int, travelEdit, approveUsers, admin bool) error {
	db := database.GetDB()
	result := db.Model(model.User{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"can_travel_edit":   travelEdit,
			"can_approve_users": approveUsers,
			"is_admin":          admin,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// AdminExists counts admin users live. The bootstrap gate calls this on
// every invocation, so demoting the only admin reopens the gate.
func (s *UserService) AdminExists() (bool, error) {
	db := database.GetDB()

	var count int64
	err := db.Model(model.User{}).
		Where("is_admin = ?", true).
		Count(&count).
		Error
	return count > 0, err
}

// BootstrapAdmin creates or promotes the very first admin. It is usable
// only while zero admin accounts exist; afterwards it always fails with
// ErrAdminExists. The bootstrap admin receives all three capabilities.
func (s *UserService) BootstrapAdmin(username string, password string) (*model.User, error) {
	exists, err := s.AdminExists()
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrAdminExists
	}

	db := database.GetDB()
	user := &model.User{}
	err = db.Model(model.User{}).Where("username = ?", username).First(user).Error
	if database.IsNotFound(err) {
		user, err = s.CreateUser(username, password)
		if err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}

	if err := s.SetCapabilities(user.Id, true, true, true); err != nil {
		return nil, err
	}
	return s.GetUser(user.Id)
}
