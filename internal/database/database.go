package database

import (
	"log"

	"vuka/config"
	"vuka/internal/domain"
	"vuka/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func NewDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(cfg.DSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Error), // Only log errors, not every SQL query
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	return db, nil
}

// AutoMigrate runs Gorm auto-migration for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Payment{},
		&models.AffiliateReferral{},
	)
}

// SeedAdmin creates the operator account used for manual payment verification
// when it does not exist yet. Skipped when no admin password is configured.
func SeedAdmin(db *gorm.DB, cfg *config.AdminConfig) {
	if cfg.Password == "" {
		log.Printf("[SEED] admin account disabled: set ADMIN_PASSWORD to enable")
		return
	}
	var existing models.User
	if err := db.Where("email = ?", cfg.Email).First(&existing).Error; err == nil {
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("[SEED] admin password hash failed: %v", err)
		return
	}
	admin := models.User{
		Email:        cfg.Email,
		PasswordHash: string(hash),
		Role:         domain.RoleAdmin,
		Subscription: domain.SubscriptionNone,
	}
	if err := db.Create(&admin).Error; err != nil {
		log.Printf("[SEED] admin create failed: %v", err)
		return
	}
	log.Printf("[SEED] admin account created: %s", cfg.Email)
}
