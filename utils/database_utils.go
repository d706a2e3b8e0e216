// Shared postgres plumbing: connection helpers, schema migration and the
// throwaway-database harness for tests. No query logic lives here; queries
// belong to the package that owns the feature.
package utils

import (
	"fmt"
	"log"
	"os"
	"strings"
	"testing"

	"github.com/eventatlas/portalfeed/model"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Temp databases carry a recognizable prefix so a leaked one (test killed by
// timeout or Ctrl+C before cleanup ran) is safe to identify and drop by hand.
const (
	TestDBPrefix         = "testonlydb_"
	TestDBNameCharLength = 8
)

func isTempDB(dbName string) bool {
	return strings.HasPrefix(dbName, TestDBPrefix)
}

func randomTestDBName() string {
	return TestDBPrefix + RandomAlphabetString(TestDBNameCharLength)
}

// dsn assembles a postgres connection string from the DB_HOST/DB_PORT env
// pair plus the given credentials.
func dsn(dbName, user, pass string) string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		os.Getenv("DB_HOST"), user, pass, dbName, os.Getenv("DB_PORT"))
}

// GetDBConnection connects to the application database named by DB_NAME.
func GetDBConnection() (*gorm.DB, error) {
	return GetCustomizedConnection(os.Getenv("DB_NAME"))
}

// GetDefaultDBConnection connects to the maintenance database named by
// DEFAULT_DB_NAME (usually "postgres"), which is where databases get created
// and dropped from.
func GetDefaultDBConnection() (*gorm.DB, error) {
	return GetCustomizedConnection(os.Getenv("DEFAULT_DB_NAME"))
}

// GetCustomizedConnection connects to an arbitrary database. The maintenance
// database uses its own credential pair; everything else uses the
// application's.
func GetCustomizedConnection(dbName string) (*gorm.DB, error) {
	user, pass := os.Getenv("DB_USER"), os.Getenv("DB_PASS")
	if dbName == os.Getenv("DEFAULT_DB_NAME") {
		user, pass = os.Getenv("DEFAULT_DB_USER"), os.Getenv("DEFAULT_DB_PASS")
	}
	return openGorm(dsn(dbName, user, pass))
}

func openGorm(connectionString string) (*gorm.DB, error) {
	return gorm.Open(postgres.Open(connectionString), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
}

// CreateTempDB creates a migrated throwaway database for one test and
// registers its teardown on t. Callers never drop it themselves; the handle
// and its backing connections are closed in the cleanup as well, since
// leaving that to the GC can exhaust the server's connection limit across a
// package's test run.
func CreateTempDB(t *testing.T) (*gorm.DB, string) {
	t.Helper()

	adminDB, err := GetDefaultDBConnection()
	if err != nil {
		t.Fatalf("cannot connect to the maintenance database: %v", err)
	}
	dbName := randomTestDBName()
	if err := adminDB.Exec("CREATE DATABASE " + dbName).Error; err != nil {
		t.Fatalf("cannot create temp database %s: %v", dbName, err)
	}

	tempDB, err := GetCustomizedConnection(dbName)
	if err != nil {
		t.Fatalf("cannot connect to temp database %s: %v", dbName, err)
	}
	DatabaseSetupAndMigration(tempDB)

	t.Cleanup(func() {
		dropTempDB(tempDB, dbName)
		if conn, err := adminDB.DB(); err == nil {
			conn.Close()
		}
		if conn, err := tempDB.DB(); err == nil {
			conn.Close()
		}
	})

	return tempDB, dbName
}

// dropTempDB drops a temp database. Safe to call repeatedly: a database that
// is already gone is a no-op. Refuses to touch anything without the temp
// prefix.
func dropTempDB(curDB *gorm.DB, dbName string) {
	if !isTempDB(dbName) {
		log.Fatalln("refusing to drop non-temp database: ", dbName)
	}

	exists, err := IsDatabaseExist(dbName)
	if err != nil {
		log.Fatalln("cannot check temp database existence: ", err)
	}
	if !exists {
		return
	}

	// The handle's own connections must be closed before postgres will allow
	// the drop. A close error is not fatal here: if connections linger the
	// DROP below reports it anyway.
	if sqlDB, err := curDB.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Println("cannot close temp database handle: ", err)
		}
	}

	adminDB, err := GetDefaultDBConnection()
	if err != nil {
		log.Fatalln("cannot connect to the maintenance database: ", err)
	}
	adminDB.Exec("DROP DATABASE " + dbName)
}

// DatabaseSetupAndMigration migrates the full schema. The access projection
// is a plain table rebuilt wholesale by the federation resolver, not a gorm
// association, so no join table setup is needed.
func DatabaseSetupAndMigration(db *gorm.DB) {
	err := db.AutoMigrate(
		&model.Portal{},
		&model.Source{},
		&model.SharingRule{},
		&model.Subscription{},
		&model.PortalSourceAccess{},
		&model.Venue{},
		&model.Special{},
		&model.Event{},
		&model.FeedSection{},
	)
	if err != nil {
		log.Fatalln("database migration failed: ", err)
	}
}

// IsDatabaseExist reports whether a database with the given name exists,
// checked through the maintenance connection.
func IsDatabaseExist(dbName string) (bool, error) {
	db, err := GetDefaultDBConnection()
	if err != nil {
		return false, err
	}

	var exists bool
	res := db.Raw(
		"SELECT EXISTS(SELECT 1 FROM pg_catalog.pg_database WHERE lower(datname) = lower(?))",
		dbName,
	).Scan(&exists)
	if res.Error != nil {
		return false, res.Error
	}
	return exists, nil
}
