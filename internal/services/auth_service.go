package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/terraincognita07/daybook/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrAuthEmailExists        = errors.New("email already exists")
	ErrAuthUserNotFound       = errors.New("user not found")
	ErrAuthCurrentPassword    = errors.New("current password invalid")
	ErrAuthPasswordUnchanged  = errors.New("new password must differ from the current one")
	ErrAuthPasswordHashFailed = errors.New("failed to secure password")
)

type AuthUserRepository interface {
	ExistsByNormalizedEmail(email string) (bool, error)
	FindByNormalizedEmail(email string) (models.User, error)
	FindByID(userID uint) (models.User, error)
	Create(user *models.User) error
	UpdatePassword(userID uint, passwordHash string, mustChangePassword bool) error
}

type AuthService struct {
	users    AuthUserRepository
	hashCost int
}

func NewAuthService(users AuthUserRepository) *AuthService {
	return &AuthService{users: users, hashCost: bcrypt.DefaultCost}
}

// WithHashCost lowers the bcrypt cost; tests use bcrypt.MinCost.
func (service *AuthService) WithHashCost(cost int) *AuthService {
	service.hashCost = cost
	return service
}

func (service *AuthService) Register(emailRaw string, password string, confirm string, now time.Time) (models.User, error) {
	email, password, err := NormalizeCredentialsInput(emailRaw, password)
	if err != nil {
		return models.User{}, err
	}
	if err := ValidateNewPassword(password, confirm); err != nil {
		return models.User{}, err
	}

	exists, err := service.users.ExistsByNormalizedEmail(email)
	if err != nil {
		return models.User{}, fmt.Errorf("check email: %w", err)
	}
	if exists {
		return models.User{}, ErrAuthEmailExists
	}

	hash, err := service.hash(password)
	if err != nil {
		return models.User{}, err
	}
	user := models.User{Email: email, PasswordHash: hash, CreatedAt: now}
	if err := service.users.Create(&user); err != nil {
		return models.User{}, ErrAuthEmailExists
	}
	return user, nil
}

// Authenticate answers ErrAuthCredentialsInvalid for both unknown emails and
// wrong passwords.
func (service *AuthService) Authenticate(emailRaw string, password string) (models.User, error) {
	email, password, err := NormalizeCredentialsInput(emailRaw, password)
	if err != nil {
		return models.User{}, ErrAuthCredentialsInvalid
	}
	user, err := service.users.FindByNormalizedEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, ErrAuthCredentialsInvalid
		}
		return models.User{}, fmt.Errorf("load user: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return models.User{}, ErrAuthCredentialsInvalid
	}
	return user, nil
}

func (service *AuthService) FindByID(userID uint) (models.User, error) {
	user, err := service.users.FindByID(userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.User{}, ErrAuthUserNotFound
	}
	return user, err
}

func (service *AuthService) ChangePassword(userID uint, current string, next string, confirm string) error {
	user, err := service.FindByID(userID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(strings.TrimSpace(current))) != nil {
		return ErrAuthCurrentPassword
	}
	if err := ValidateNewPassword(next, confirm); err != nil {
		return err
	}
	if strings.TrimSpace(current) == strings.TrimSpace(next) {
		return ErrAuthPasswordUnchanged
	}

	hash, err := service.hash(strings.TrimSpace(next))
	if err != nil {
		return err
	}
	return service.users.UpdatePassword(userID, hash, false)
}

// ResetPassword replaces the account password. A temporary password sets
// mustChange so the user picks a new one after signing in.
func (service *AuthService) ResetPassword(emailRaw string, password string, mustChange bool) (models.User, error) {
	email := NormalizeAuthEmail(emailRaw)
	if email == "" {
		return models.User{}, ErrAuthCredentialsInvalid
	}
	user, err := service.users.FindByNormalizedEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, ErrAuthUserNotFound
		}
		return models.User{}, fmt.Errorf("load user: %w", err)
	}

	hash, err := service.hash(password)
	if err != nil {
		return models.User{}, err
	}
	if err := service.users.UpdatePassword(user.ID, hash, mustChange); err != nil {
		return models.User{}, fmt.Errorf("update password: %w", err)
	}
	user.PasswordHash = hash
	user.MustChangePassword = mustChange
	return user, nil
}

func (service *AuthService) hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), service.hashCost)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAuthPasswordHashFailed, err)
	}
	return string(hash), nil
}
