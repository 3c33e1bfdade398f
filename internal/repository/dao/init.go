package dao

import (
	"errors"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

func InitTables(db *gorm.DB) error {
	return db.AutoMigrate(
		&Plan{},
		&Store{},
		&User{},
		&PasswordReset{},
		&Product{},
		&Customer{},
		&Sale{},
		&SaleItem{},
		&Credit{},
		&CreditPayment{},
	)
}

// DropAllTables drops every table of the public schema. Used to reset the
// database between integration tests.
func DropAllTables(db *gorm.DB) error {
	var tableNames []string
	if err := db.Table("information_schema.tables").
		Where("table_schema = ?", "public").
		Pluck("table_name", &tableNames).Error; err != nil {
		return err
	}

	for _, tableName := range tableNames {
		if err := db.Exec(`DROP TABLE IF EXISTS "` + tableName + `" CASCADE`).Error; err != nil {
			return err
		}
	}

	return nil
}

func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgerrcode.UniqueViolation {
		return false
	}

	return pgErr.ConstraintName == constraint ||
		strings.Contains(pgErr.Message, `unique constraint "`+constraint+`"`)
}
