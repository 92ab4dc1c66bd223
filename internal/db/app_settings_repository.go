package db

import (
	"errors"
	"time"

	"github.com/terraincognita07/daybook/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AppSettingsRepository struct {
	database *gorm.DB
}

func NewAppSettingsRepository(database *gorm.DB) *AppSettingsRepository {
	return &AppSettingsRepository{database: database}
}

func (repo *AppSettingsRepository) FindByUser(userID uint) (models.AppSettings, bool, error) {
	var settings models.AppSettings
	err := repo.database.Where("user_id = ?", userID).First(&settings).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.AppSettings{}, false, nil
	}
	if err != nil {
		return models.AppSettings{}, false, err
	}
	return settings, true, nil
}

func (repo *AppSettingsRepository) Upsert(settings *models.AppSettings) error {
	settings.UpdatedAt = time.Now()
	return repo.database.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"show_stats", "show_calendar", "show_sports", "theme", "updated_at"}),
	}).Create(settings).Error
}
