package stores

import (
	"context"
	"errors"

	"sbp/src/models"

	"gorm.io/gorm"
)

type Catalog struct {
	db *gorm.DB
}

func NewCatalog(db *gorm.DB) *Catalog {
	return &Catalog{db: db}
}

func (c *Catalog) GetService(ctx context.Context, id uint) (*models.Service, error) {
	var svc models.Service
	err := c.db.WithContext(ctx).
		Model(&models.Service{}).
		Where(&models.Service{ID: id}).
		First(&svc).
		Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &svc, nil
}
