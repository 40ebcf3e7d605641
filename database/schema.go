package database

import (
	"fmt"
	"log"

	"github.com/anoixa/bandpress/config"
	"github.com/anoixa/bandpress/database/models"
	"gorm.io/gorm"
)

// BlogModels 博客应用的表，按外键依赖排序
func BlogModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Post{},
		&models.Comment{},
	}
}

// CatalogModels 乐队目录应用的表，按外键依赖排序
func CatalogModels() []interface{} {
	return []interface{}{
		&models.Band{},
		&models.Member{},
		&models.Album{},
		&models.BandAlbum{},
		&models.Membership{},
		&models.Song{},
		&models.SongMember{},
	}
}

// ModelsFor 返回指定应用的表
func ModelsFor(app string) ([]interface{}, error) {
	switch app {
	case config.AppBlog:
		return BlogModels(), nil
	case config.AppCatalog:
		return CatalogModels(), nil
	default:
		return nil, fmt.Errorf("unknown app: %s", app)
	}
}

// SetupJoinTables 注册自定义关联表模型
func SetupJoinTables(db *gorm.DB) error {
	if err := db.SetupJoinTable(&models.Band{}, "Albums", &models.BandAlbum{}); err != nil {
		return err
	}
	return db.SetupJoinTable(&models.Album{}, "Bands", &models.BandAlbum{})
}

// Migrate 自动建表（不存在时创建）
func Migrate(db *gorm.DB, app string) error {
	toMigrate, err := ModelsFor(app)
	if err != nil {
		return err
	}

	if app == config.AppCatalog {
		if err := SetupJoinTables(db); err != nil {
			return fmt.Errorf("failed to setup join tables: %w", err)
		}
	}

	log.Printf("[Database] Running auto migration for %s...", app)
	if err := db.AutoMigrate(toMigrate...); err != nil {
		return fmt.Errorf("failed to auto migrate database: %w", err)
	}
	return nil
}
