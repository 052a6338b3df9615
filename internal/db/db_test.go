package db

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadMigrationsOrdersAndFilters(t *testing.T) {
	fsys := fstest.MapFS{
		"migrations/010_add_index.sql":       {Data: []byte("CREATE INDEX x;")},
		"migrations/002_seed_products.sql":   {Data: []byte("INSERT INTO products;")},
		"migrations/README.md":               {Data: []byte("docs")},
		"migrations/notnumbered_foo.sql":     {Data: []byte("SELECT 1;")},
		"migrations/001_create_products.sql": {Data: []byte("CREATE TABLE products;")},
	}

	migrations, err := readMigrations(fsys)
	require.NoError(t, err)
	require.Len(t, migrations, 3)
	assert.Equal(t, 1, migrations[0].Number)
	assert.Equal(t, "create_products", migrations[0].Name)
	assert.Equal(t, 2, migrations[1].Number)
	assert.Equal(t, "seed_products", migrations[1].Name)
	assert.Equal(t, 10, migrations[2].Number)
}

func TestEmbeddedMigrationsPresent(t *testing.T) {
	migrations, err := readMigrations(migrationFiles)
	require.NoError(t, err)
	require.NotEmpty(t, migrations)
	assert.Contains(t, migrations[0].SQL, "CREATE TABLE IF NOT EXISTS products")
}

func TestRunMigrationsAppliesPending(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM schema_migrations`).WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectBegin()
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS products").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO schema_migrations").WithArgs(1, "create_products").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	d := &DB{DB: sqlDB, log: zerolog.Nop()}
	require.NoError(t, d.RunMigrations(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunMigrationsSkipsApplied(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM schema_migrations`).WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	d := &DB{DB: sqlDB, log: zerolog.Nop()}
	require.NoError(t, d.RunMigrations(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithSSLDisabled(t *testing.T) {
	assert.Equal(t, "postgres://u@h/db?sslmode=disable", withSSLDisabled("postgres://u@h/db"))
	assert.Equal(t, "postgres://u@h/db?x=1&sslmode=disable", withSSLDisabled("postgres://u@h/db?x=1"))
	assert.Equal(t, "host=x dbname=y sslmode=disable", withSSLDisabled("host=x dbname=y "))
}

func TestNewRequiresDSN(t *testing.T) {
	_, err := New("", zerolog.Nop())
	assert.Error(t, err)
}
