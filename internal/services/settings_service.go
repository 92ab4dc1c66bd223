package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/terraincognita07/daybook/internal/models"
)

var ErrSettingsThemeInvalid = errors.New("settings theme invalid")

type AppSettingsRepository interface {
	FindByUser(userID uint) (models.AppSettings, bool, error)
	Upsert(settings *models.AppSettings) error
}

type SettingsService struct {
	settings AppSettingsRepository
}

func NewSettingsService(settings AppSettingsRepository) *SettingsService {
	return &SettingsService{settings: settings}
}

// Load returns the stored settings, or the defaults when the user never
// saved any.
func (service *SettingsService) Load(userID uint) (models.AppSettings, error) {
	settings, found, err := service.settings.FindByUser(userID)
	if err != nil {
		return models.AppSettings{}, fmt.Errorf("load app settings: %w", err)
	}
	if !found {
		return models.DefaultAppSettings(userID), nil
	}
	return settings, nil
}

func (service *SettingsService) Save(userID uint, settings models.AppSettings) (models.AppSettings, error) {
	theme, err := NormalizeTheme(settings.Theme)
	if err != nil {
		return models.AppSettings{}, err
	}
	settings.UserID = userID
	settings.Theme = theme
	if err := service.settings.Upsert(&settings); err != nil {
		return models.AppSettings{}, fmt.Errorf("save app settings: %w", err)
	}
	return settings, nil
}

func NormalizeTheme(raw string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", models.ThemeLight:
		return models.ThemeLight, nil
	case models.ThemeDark:
		return models.ThemeDark, nil
	default:
		return "", ErrSettingsThemeInvalid
	}
}
