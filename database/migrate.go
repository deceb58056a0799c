package database

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/kbukum/insane/logger"
)

// MigrationStatus describes where the schema stands.
type MigrationStatus struct {
	// Version is the last applied migration, 0 when none is applied.
	Version uint
	// Dirty is set when a migration failed halfway.
	Dirty bool
	// Available lists every migration version found in the source.
	Available []uint
	// Pending counts available migrations newer than Version.
	Pending int
}

// Migrator applies versioned SQL migrations (VERSION_name.up.sql and
// VERSION_name.down.sql) with golang-migrate.
type Migrator struct {
	db   *DB
	fsys fs.FS
	path string
	log  *logger.Logger
}

// NewMigrator reads migrations from path inside fsys. A nil fsys means path
// is a directory on disk.
func NewMigrator(db *DB, fsys fs.FS, path string, log *logger.Logger) *Migrator {
	if fsys == nil {
		fsys = os.DirFS(path)
		path = "."
	}
	if log == nil {
		log = logger.WithComponent("migrate")
	}
	return &Migrator{db: db, fsys: fsys, path: path, log: log}
}

// Up applies every pending migration.
func (m *Migrator) Up(ctx context.Context) error {
	mg, err := m.instance()
	if err != nil {
		return err
	}
	if err := run(ctx, mg, mg.Up); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate up: %w", err)
	}
	m.log.Info("migrations applied")
	return nil
}

// Down rolls back the last n migrations, or every migration when n <= 0.
func (m *Migrator) Down(ctx context.Context, n int) error {
	mg, err := m.instance()
	if err != nil {
		return err
	}
	step := mg.Down
	if n > 0 {
		step = func() error { return mg.Steps(-n) }
	}
	if err := run(ctx, mg, step); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate down: %w", err)
	}
	m.log.Info("migrations rolled back", logger.Fields("steps", n))
	return nil
}

// Reset drops every table and re-applies all migrations.
func (m *Migrator) Reset(ctx context.Context) error {
	mg, err := m.instance()
	if err != nil {
		return err
	}
	if err := run(ctx, mg, mg.Drop); err != nil {
		return fmt.Errorf("migrate drop: %w", err)
	}
	m.log.Warn("schema dropped")

	// The version table went with the drop; a fresh instance recreates it.
	return m.Up(ctx)
}

// Status reports the applied version and the migrations still pending.
func (m *Migrator) Status(ctx context.Context) (MigrationStatus, error) {
	var status MigrationStatus

	available, err := m.versions()
	if err != nil {
		return status, err
	}
	status.Available = available

	mg, err := m.instance()
	if err != nil {
		return status, err
	}
	version, dirty, err := mg.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
	case err != nil:
		return status, fmt.Errorf("migrate version: %w", err)
	default:
		status.Version, status.Dirty = version, dirty
	}

	for _, v := range available {
		if v > status.Version {
			status.Pending++
		}
	}
	return status, ctx.Err()
}

// instance builds a golang-migrate instance over the shared pool. It must
// not be closed: closing it would close the application's sql.DB.
func (m *Migrator) instance() (*migrate.Migrate, error) {
	sqlDB, err := m.db.GormDB.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}

	var driver migratedb.Driver
	switch m.db.Dialect() {
	case Postgres:
		driver, err = migratepg.WithInstance(sqlDB, &migratepg.Config{})
	case SQLite:
		driver, err = migratesqlite.WithInstance(sqlDB, &migratesqlite.Config{})
	default:
		err = fmt.Errorf("no migration driver for %q", m.db.Dialect())
	}
	if err != nil {
		return nil, fmt.Errorf("create migration driver: %w", err)
	}

	src, err := m.source()
	if err != nil {
		return nil, err
	}
	mg, err := migrate.NewWithInstance("iofs", src, string(m.db.Dialect()), driver)
	if err != nil {
		return nil, fmt.Errorf("create migrator: %w", err)
	}
	mg.Log = migrateLogger{log: m.log}
	return mg, nil
}

func (m *Migrator) source() (source.Driver, error) {
	src, err := iofs.New(m.fsys, m.path)
	if err != nil {
		return nil, fmt.Errorf("open migrations: %w", err)
	}
	return src, nil
}

func (m *Migrator) versions() ([]uint, error) {
	src, err := m.source()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	var out []uint
	v, err := src.First()
	for err == nil {
		out = append(out, v)
		v, err = src.Next(v)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("list migrations: %w", err)
	}
	return out, nil
}

// run executes fn and asks golang-migrate to stop after the current
// migration when ctx is cancelled.
func run(ctx context.Context, mg *migrate.Migrate, fn func() error) error {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			mg.GracefulStop <- true
		case <-done:
		}
	}()
	return fn()
}

type migrateLogger struct {
	log *logger.Logger
}

func (l migrateLogger) Printf(format string, v ...interface{}) {
	l.log.Debug(fmt.Sprintf(format, v...))
}

func (l migrateLogger) Verbose() bool { return false }
