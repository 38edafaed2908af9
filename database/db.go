// Package database manages the sqlite database lifecycle for the portal:
// opening, migration and seeding of the home dashboard cards.
package database

import (
	"bytes"
	"io"
	"io/fs"
	"log"
	"os"
	"path"

	"github.com/tandr/homehub/config"
	"github.com/tandr/homehub/database/model"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var db *gorm.DB

func initModels() error {
	models := []any{
		&model.User{},
		&model.RegistrationRequest{},
		&model.HomeCard{},
		&model.Item{},
		&model.ItemComment{},
		&model.Trip{},
		&model.Photo{},
		&model.Comment{},
		&model.CommentReaction{},
		&model.WeddingItem{},
		&model.WeddingTable{},
	}
	for _, m := range models {
		if err := db.AutoMigrate(m); err != nil {
			log.Printf("Error auto migrating model: %v", err)
			return err
		}
	}
	return nil
}

// initHomeCards seeds the dashboard cards once, keyed so reruns are no-ops.
func initHomeCards() error {
	cards := []model.HomeCard{
		{Key: "travel", Title: "Travel Log", Description: "Map our adventures, add photos, and notes.", Url: "/travel", SortOrder: 10},
		{Key: "tracker", Title: "Media Tracker", Description: "Track books, manga/manhwa, movies, shows, and more.", Url: "/tracker", SortOrder: 20},
		{Key: "wedding", Title: "Wedding Planner", Description: "Boards, venues, seating and the rest of the big day.", Url: "/wedding", SortOrder: 30},
	}
	for _, card := range cards {
		var count int64
		if err := db.Model(model.HomeCard{}).Where("key = ?", card.Key).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			if err := db.Create(&card).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

func InitDB(dbPath string) error {
	dir := path.Dir(dbPath)
	err := os.MkdirAll(dir, fs.ModePerm)
	if err != nil {
		return err
	}

	var gormLogger logger.Interface

	if config.IsDebug() {
		gormLogger = logger.Default
	} else {
		gormLogger = logger.Discard
	}

	c := &gorm.Config{
		Logger:                 gormLogger,
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
	}

	dsn := dbPath + "?cache=shared&_journal_mode=WAL&_synchronous=NORMAL"
	db, err = gorm.Open(sqlite.Open(dsn), c)
	if err != nil {
		return err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	_, err = sqlDB.Exec("PRAGMA cache_size = -64000;")
	if err != nil {
		return err
	}
	_, err = sqlDB.Exec("PRAGMA temp_store = MEMORY;")
	if err != nil {
		return err
	}
	_, err = sqlDB.Exec("PRAGMA foreign_keys = ON;")
	if err != nil {
		return err
	}

	if err := initModels(); err != nil {
		return err
	}
	if err := initHomeCards(); err != nil {
		return err
	}

	return nil
}

func CloseDB() error {
	if db != nil {
		if err := Checkpoint(); err != nil {
			log.Printf("error executing checkpoint: %v", err)
		}

		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}
	return nil
}

func GetDB() *gorm.DB {
	return db
}

func IsNotFound(err error) bool {
	return err == gorm.ErrRecordNotFound
}

func IsSQLiteDB(file io.ReaderAt) (bool, error) {
	signature := []byte("SQLite format 3\x00")
	buf := make([]byte, len(signature))
	_, err := file.ReadAt(buf, 0)
	if err != nil {
		return false, err
	}
	return bytes.Equal(buf, signature), nil
}

func Checkpoint() error {
	// Update WAL
	err := db.Exec("PRAGMA wal_checkpoint;").Error
	if err != nil {
		return err
	}
	return nil
}
