package database

import (
	"context"
	"database/sql"
	"errors"
	"io/fs"
	"testing"

	"github.com/golang-migrate/migrate/v4"
	dbdriver "github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	src "github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

type fakeMigrator struct {
	upErr, downErr error
	upCalled       *bool
}

func (f fakeMigrator) Up() error {
	if f.upCalled != nil {
		*f.upCalled = true
	}
	return f.upErr
}
func (f fakeMigrator) Down() error { return f.downErr }

func restore() {
	pgxpoolNew = pgxpool.New
	sqlOpenDB = sql.Open
	postgresWithInstanceFn = postgres.WithInstance
	iofsNewFn = iofs.New
	migrateNewWithInstance = func(sourceName string, sourceDriver src.Driver, databaseName string, databaseDriver dbdriver.Driver) (migrateInstance, error) {
		m, err := migrate.NewWithInstance(sourceName, sourceDriver, databaseName, databaseDriver)
		if err != nil {
			return nil, err
		}
		return m, nil
	}
}

// stubMigrationDeps 讓 open/driver/source 三步都成功，只留 migrator 給個別測試設定
func stubMigrationDeps() {
	sqlOpenDB = func(string, string) (*sql.DB, error) { return sql.Open("pgx", "") }
	postgresWithInstanceFn = func(*sql.DB, *postgres.Config) (dbdriver.Driver, error) { return nil, nil }
	iofsNewFn = func(fs.FS, string) (src.Driver, error) { return nil, nil }
}

func TestNewPgxPool(t *testing.T) {
	t.Cleanup(restore)
	pgxpoolNew = func(context.Context, string) (*pgxpool.Pool, error) { return nil, errors.New("bad dsn") }
	_, err := NewPgxPool(context.Background(), "url")
	require.ErrorContains(t, err, "bad dsn")

	pgxpoolNew = func(context.Context, string) (*pgxpool.Pool, error) { return &pgxpool.Pool{}, nil }
	db, err := NewPgxPool(context.Background(), "url")
	require.NoError(t, err)
	require.NotNil(t, db)
}

func TestMigrationsEmbedded(t *testing.T) {
	entries, err := fs.ReadDir(migrationsFS, "migrations")
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	require.Contains(t, names, "000001_create_users.up.sql")
	require.Contains(t, names, "000001_create_users.down.sql")

	up, err := fs.ReadFile(migrationsFS, "migrations/000001_create_users.up.sql")
	require.NoError(t, err)
	require.Contains(t, string(up), "users_username_key UNIQUE (username)")
}

func TestRunMigrations(t *testing.T) {
	t.Run("open error", func(t *testing.T) {
		t.Cleanup(restore)
		sqlOpenDB = func(string, string) (*sql.DB, error) { return nil, errors.New("open") }
		require.Error(t, RunMigrations("url"))
	})

	t.Run("driver error", func(t *testing.T) {
		t.Cleanup(restore)
		stubMigrationDeps()
		postgresWithInstanceFn = func(*sql.DB, *postgres.Config) (dbdriver.Driver, error) { return nil, errors.New("drv") }
		require.Error(t, RunMigrations("url"))
	})

	t.Run("source error", func(t *testing.T) {
		t.Cleanup(restore)
		stubMigrationDeps()
		iofsNewFn = func(fs.FS, string) (src.Driver, error) { return nil, errors.New("src") }
		require.Error(t, RunMigrations("url"))
	})

	t.Run("init error", func(t *testing.T) {
		t.Cleanup(restore)
		stubMigrationDeps()
		migrateNewWithInstance = func(string, src.Driver, string, dbdriver.Driver) (migrateInstance, error) {
			return nil, errors.New("mig")
		}
		require.Error(t, RunMigrations("url"))
	})

	t.Run("up error", func(t *testing.T) {
		t.Cleanup(restore)
		stubMigrationDeps()
		migrateNewWithInstance = func(string, src.Driver, string, dbdriver.Driver) (migrateInstance, error) {
			return fakeMigrator{upErr: errors.New("u")}, nil
		}
		require.Error(t, RunMigrations("url"))
	})

	t.Run("no change is success", func(t *testing.T) {
		t.Cleanup(restore)
		stubMigrationDeps()
		called := false
		migrateNewWithInstance = func(string, src.Driver, string, dbdriver.Driver) (migrateInstance, error) {
			return fakeMigrator{upErr: migrate.ErrNoChange, upCalled: &called}, nil
		}
		require.NoError(t, RunMigrations("url"))
		require.True(t, called)
	})
}

func TestRollbackAll(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		t.Cleanup(restore)
		stubMigrationDeps()
		migrateNewWithInstance = func(string, src.Driver, string, dbdriver.Driver) (migrateInstance, error) {
			return fakeMigrator{}, nil
		}
		require.NoError(t, RollbackAll("url"))
	})

	t.Run("no change is success", func(t *testing.T) {
		t.Cleanup(restore)
		stubMigrationDeps()
		migrateNewWithInstance = func(string, src.Driver, string, dbdriver.Driver) (migrateInstance, error) {
			return fakeMigrator{downErr: migrate.ErrNoChange}, nil
		}
		require.NoError(t, RollbackAll("url"))
	})

	t.Run("down error", func(t *testing.T) {
		t.Cleanup(restore)
		stubMigrationDeps()
		migrateNewWithInstance = func(string, src.Driver, string, dbdriver.Driver) (migrateInstance, error) {
			return fakeMigrator{downErr: errors.New("d")}, nil
		}
		require.ErrorContains(t, RollbackAll("url"), "d")
	})

	t.Run("open error", func(t *testing.T) {
		t.Cleanup(restore)
		sqlOpenDB = func(string, string) (*sql.DB, error) { return nil, errors.New("open") }
		require.Error(t, RollbackAll("url"))
	})
}
