package database

import (
	"context"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/kbukum/insane/logger"
	"github.com/kbukum/insane/resilience"
	"github.com/kbukum/insane/util"
)

// DB wraps a GORM database with pool settings and logging.
type DB struct {
	GormDB  *gorm.DB
	dialect Dialect
	log     *logger.Logger
	cfg     Config
	closed  bool
	mu      sync.Mutex
}

// Open connects to cfg.URI, retrying with a linear backoff, pings the server
// and applies the pool settings.
func Open(ctx context.Context, cfg Config, log *logger.Logger) (*DB, error) {
	cfg.ApplyDefaults()
	if log == nil {
		log = logger.WithComponent("database")
	}

	dialect, err := ParseDialect(cfg.URI)
	if err != nil {
		return nil, err
	}
	dialector, err := Dialector(cfg.URI)
	if err != nil {
		return nil, err
	}

	level := gormlogger.Warn
	if cfg.EnableLogging {
		level = gormlogger.Info
	}
	gormCfg := &gorm.Config{
		Logger: newQueryLogger(log, duration(cfg.SlowQueryThreshold, 200*time.Millisecond), level),
	}
	connectTimeout := duration(cfg.ConnectTimeout, 5*time.Second)

	policy := resilience.Linear(cfg.MaxRetries, time.Second)
	policy.OnRetry = func(attempt int, err error, wait time.Duration) {
		log.Warn("database connection attempt failed, retrying", logger.Fields(
			"attempt", attempt, "error", err.Error(), "backoff", wait.String(),
		))
	}

	db, err := resilience.Retry(ctx, policy, func(ctx context.Context, attempt int) (*gorm.DB, error) {
		db, err := gorm.Open(dialector, gormCfg)
		if err != nil {
			return nil, err
		}
		if err := ping(ctx, db, connectTimeout); err != nil {
			return nil, err
		}
		log.Info("database connection established", logger.Fields(
			"uri", util.RedactURI(cfg.URI), "attempt", attempt,
		))
		return db, nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("database connection canceled: %w", err)
		}
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	configurePool(db, cfg)
	return &DB{GormDB: db, dialect: dialect, log: log, cfg: cfg}, nil
}

func ping(ctx context.Context, db *gorm.DB, timeout time.Duration) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		_ = sqlDB.Close()
		return err
	}
	return nil
}

func configurePool(db *gorm.DB, cfg Config) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	sqlDB.SetMaxOpenConns(cfg.MaxConnections)
	sqlDB.SetMaxIdleConns(cfg.MinConnections)
	sqlDB.SetConnMaxIdleTime(duration(cfg.IdleTimeout, 10*time.Minute))
	sqlDB.SetConnMaxLifetime(duration(cfg.MaxLifetime, 30*time.Minute))
}

// Dialect returns the SQL flavour of the connection.
func (d *DB) Dialect() Dialect { return d.dialect }

// Config returns the configuration the connection was opened with.
func (d *DB) Config() Config { return d.cfg }

// Close closes the underlying pool. Safe to call multiple times.
func (d *DB) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil
	}
	sqlDB, err := d.GormDB.DB()
	if err != nil {
		return err
	}
	d.closed = true
	d.log.Debug("closing database connection")
	return sqlDB.Close()
}

// Ping verifies the database connection is alive.
func (d *DB) Ping() error {
	return d.PingContext(context.Background())
}

// PingContext verifies the database connection is alive, respecting the context.
func (d *DB) PingContext(ctx context.Context) error {
	sqlDB, err := d.GormDB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// WithContext returns a GORM session scoped to the given context.
func (d *DB) WithContext(ctx context.Context) *gorm.DB {
	return d.GormDB.WithContext(ctx)
}

// Transaction executes fn inside a database transaction.
func (d *DB) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return d.GormDB.WithContext(ctx).Transaction(fn)
}

// VerifyAccess checks that the connected user can see its data. On Postgres
// the user must own at least one table; SQLite files are always accessible
// once opened.
func (d *DB) VerifyAccess(ctx context.Context) error {
	d.mu.Lock()
	closed := d.closed
	d.mu.Unlock()
	if closed {
		return fmt.Errorf("connection to database has been closed")
	}

	if d.dialect != Postgres {
		return d.PingContext(ctx)
	}

	var count int64
	err := d.GormDB.WithContext(ctx).
		Raw("SELECT count(*) FROM pg_catalog.pg_tables WHERE tableowner = current_user").
		Scan(&count).Error
	if err != nil {
		return err
	}
	if count == 0 {
		return fmt.Errorf("current user has no access to tables in the database")
	}
	return nil
}
