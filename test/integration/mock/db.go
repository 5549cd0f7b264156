//go:build integration

package mock

import (
	"database/sql"
	"fmt"
	"sync"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const maxClearAttempts = 5

var once sync.Once
var db *Db

// Db is a shared in-memory sqlite database for the feature suite.
type Db struct {
	DbConn *gorm.DB
	models map[string]any
}

// NewDb opens the shared database once and migrates models, keyed by table name.
func NewDb(models map[string]any) *Db {
	once.Do(func() {
		db = open(models)
	})
	return db
}

func open(models map[string]any) *Db {
	dbSQL, err := sql.Open("sqlite", "file::memory:?cache=shared")
	if err != nil {
		panic(err)
	}

	dbSQL.SetMaxOpenConns(1)

	dbConn, err := gorm.Open(sqlite.Dialector{Conn: dbSQL}, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		panic("failed to connect to database. err: " + err.Error())
	}

	newDbMock := &Db{
		DbConn: dbConn,
		models: models,
	}

	if err := newDbMock.migrate(); err != nil {
		panic(fmt.Sprintf("failed to migrate database. err: %s", err.Error()))
	}

	return newDbMock
}

// ClearDB removes every row, children before parents.
func (d *Db) ClearDB() (err error) {
	for attempt := 1; attempt <= maxClearAttempts; attempt++ {
		if err = d.reset(); err == nil {
			return nil
		}
	}
	return fmt.Errorf("failed to clear database after %d attempts: %w", maxClearAttempts, err)
}

func (d *Db) migrate() error {
	for _, table := range []string{"bill_payments", "bill_tags", "bills"} {
		if err := d.DbConn.Exec(fmt.Sprintf("DROP TABLE IF EXISTS %s", table)).Error; err != nil {
			return err
		}
	}

	modelList := d.ordered()
	if err := d.DbConn.AutoMigrate(modelList...); err != nil {
		return err
	}

	for _, model := range modelList {
		if !d.DbConn.Migrator().HasTable(model) {
			return fmt.Errorf("table for model %T was not created", model)
		}
	}
	return nil
}

func (d *Db) reset() error {
	for _, table := range []string{"bill_payments", "bill_tags", "bills"} {
		if err := d.DbConn.Exec(fmt.Sprintf("DELETE FROM %s", table)).Error; err != nil {
			return err
		}
	}
	return nil
}

// ordered returns the models with parents first.
func (d *Db) ordered() []any {
	modelList := make([]any, 0, len(d.models))
	for _, table := range []string{"bills", "bill_tags", "bill_payments"} {
		if model, ok := d.models[table]; ok {
			modelList = append(modelList, model)
		}
	}
	return modelList
}

// Count returns the number of live rows in table. Soft-deleted rows are excluded.
func (d *Db) Count(table string) (int64, error) {
	model, ok := d.models[table]
	if !ok {
		return 0, fmt.Errorf("unknown table %q", table)
	}

	var count int64
	if err := d.DbConn.Model(model).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
