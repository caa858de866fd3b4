package db

import (
	"log"
	"os"
	"path/filepath"

	"beaconmarket/config"
	"beaconmarket/models"

	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/postgres"
	_ "github.com/jinzhu/gorm/dialects/sqlite"
)

var conf config.Configuration

func SetConfigurations(configuration config.Configuration) {
	conf = configuration
}

// Connect opens the database (sqlite3 by default) and migrates the schema
// when automigrate is on. A sqlite database is always migrated.
func Connect() (*gorm.DB, error) {
	database := conf.Database
	if database == "" {
		database = "sqlite3"
	}

	var (
		db  *gorm.DB
		err error
	)

	if database == "postgres" || database == "postgresql" {
		log.Println("db: using postgresql connection")
		path := "host=" + conf.DbHost + " port=" + conf.DbPort
		path += " user=" + conf.DbUser + " dbname=" + conf.DbName
		path += " password=" + conf.DbPass
		db, err = gorm.Open("postgres", path)
	} else {
		log.Println("db: using sqlite3 connection")
		db, err = OpenSQLite(conf.DbPath)
	}

	if err != nil {
		log.Println("db: connect error: " + err.Error())
		return nil, err
	}

	db.LogMode(conf.DbLog)

	if conf.AutoMigrate || database == "sqlite3" {
		if err := Migrate(db); err != nil {
			return nil, err
		}
	}

	return db, nil
}

// OpenSQLite opens a sqlite file, creating its directory. ":memory:" opens
// a private in-memory database pinned to a single connection.
func OpenSQLite(path string) (*gorm.DB, error) {
	if path == "" {
		path = "db/database.db"
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
	}

	db, err := gorm.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if path == ":memory:" {
		// every new connection would see an empty database
		db.DB().SetMaxOpenConns(1)
	}
	return db, nil
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Listing{},
		&models.Event{},
	).Error
}
