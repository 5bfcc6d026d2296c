package database

import (
	"github.com/kitmoji/api/internal/config"
	"github.com/kitmoji/api/internal/model"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func Connect(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&model.Emoji{}); err != nil {
		return err
	}

	// Secondary indexes backing the search/filter query patterns. AutoMigrate
	// creates the tagged ones; unicode uniqueness is the load-bearing
	// constraint so assert it explicitly as well.
	db.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_emojis_unicode ON emojis(unicode)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_emojis_name ON emojis(name)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_emojis_category ON emojis(category)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_emojis_emoji_type ON emojis(emoji_type)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_emojis_skin_tone ON emojis(skin_tone)")

	return nil
}

// HasCopyCount reports whether the copy_count column exists. Older
// deployments predate it; callers degrade to 0 instead of failing.
func HasCopyCount(db *gorm.DB) bool {
	return db.Migrator().HasColumn(&model.Emoji{}, "copy_count")
}
