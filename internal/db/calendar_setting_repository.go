package db

import (
	"github.com/terraincognita07/daybook/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CalendarSettingRepository struct {
	database *gorm.DB
}

func NewCalendarSettingRepository(database *gorm.DB) *CalendarSettingRepository {
	return &CalendarSettingRepository{database: database}
}

func (repo *CalendarSettingRepository) ListByUser(userID uint) ([]models.CalendarSetting, error) {
	settings := make([]models.CalendarSetting, 0)
	if err := repo.database.Where("user_id = ?", userID).Order("id ASC").Find(&settings).Error; err != nil {
		return nil, err
	}
	return settings, nil
}

func (repo *CalendarSettingRepository) Upsert(setting *models.CalendarSetting) error {
	return repo.database.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "google_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "color", "is_visible"}),
	}).Create(setting).Error
}
