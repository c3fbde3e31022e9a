package stores

import (
	"context"

	"sbp/src/models"

	"gorm.io/gorm"
)

type Settings struct {
	db *gorm.DB
}

func NewSettings(db *gorm.DB) *Settings {
	return &Settings{db: db}
}

// Values reads the whole settings table for one computation. No caching
// across requests: every new booking must see the settings in force at its
// commit time.
func (s *Settings) Values(ctx context.Context) (map[string]any, error) {
	var settings []models.Setting
	if err := s.db.WithContext(ctx).Find(&settings).Error; err != nil {
		return nil, err
	}
	values := make(map[string]any, len(settings))
	for _, row := range settings {
		values[row.SettingKey] = row.SettingValue.Inner
	}
	return values, nil
}
