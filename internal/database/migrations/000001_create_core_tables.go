package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"

	"github.com/pixistaking/backend/internal/models"
)

// CreateCoreTables creates the users, stakes and transactions tables.
func CreateCoreTables() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "000001_create_core_tables",
		Migrate: func(tx *gorm.DB) error {
			return tx.AutoMigrate(
				&models.User{},
				&models.Stake{},
				&models.Transaction{},
			)
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Migrator().DropTable(
				&models.Transaction{},
				&models.Stake{},
				&models.User{},
			)
		},
	}
}
