package db

import (
	"github.com/sunhobaek/freshmarket-backend/internal/app/model"
	"github.com/sunhobaek/freshmarket-backend/pkg/logger"
	"gorm.io/gorm"
)

// Migrate runs database migrations
func Migrate() error {
	logger.Info("Running database migrations...")

	models := []interface{}{
		&model.Origin{},
		&model.Storage{},
		&model.User{},
		&model.Product{},
		&model.Image{},
		&model.Order{},
		&model.Review{},
	}

	if err := DB.AutoMigrate(models...); err != nil {
		logger.Error("Failed to run migrations", err)
		return err
	}

	if err := seedCategories(DB); err != nil {
		logger.Error("Failed to seed category tables during migration", err)
		return err
	}

	logger.Info("Database migrations completed successfully", map[string]interface{}{
		"models_count": len(models),
	})
	return nil
}

// seedCategories 원산지/보관 방식 enum 테이블 채우기
func seedCategories(db *gorm.DB) error {
	var count int64
	if err := db.Model(&model.Origin{}).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		origins := []model.Origin{
			{Name: model.OriginDomestic},
			{Name: model.OriginImported},
		}
		if err := db.Create(&origins).Error; err != nil {
			return err
		}
	}

	if err := db.Model(&model.Storage{}).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		storages := []model.Storage{
			{Name: model.StorageCold},
			{Name: model.StorageFrozen},
			{Name: model.StorageDry},
		}
		if err := db.Create(&storages).Error; err != nil {
			return err
		}
	}

	logger.Info("Category tables seeded")
	return nil
}
