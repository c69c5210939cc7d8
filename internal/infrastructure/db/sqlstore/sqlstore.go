// Package sqlstore implements the tracker repositories on a relational
// database through gorm. SQLite and MySQL are supported; the backend is a
// configuration detail and every query runs as a prepared statement.
package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/routinely/tracker/internal/core/domain"
	"github.com/routinely/tracker/internal/core/ports"
)

const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"

	defaultTimeout = 5 * time.Second
)

// Config captures the settings for opening the relational store.
// FallbackDSN, when set, names a SQLite database used if the primary backend
// cannot be reached. The fallback is always logged.
type Config struct {
	Driver      string
	DSN         string
	FallbackDSN string
	Timeout     time.Duration
}

// Store owns the gorm handle and hands out the typed repositories.
type Store struct {
	db      *gorm.DB
	timeout time.Duration
	driver  string
}

var _ ports.Store = (*Store)(nil)

// Open connects to the configured backend, verifies it with a ping and runs
// the schema migrations.
func Open(ctx context.Context, cfg Config, log zerolog.Logger) (*Store, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	driver := cfg.Driver
	db, err := connect(ctx, driver, cfg.DSN, timeout, log)
	if err != nil {
		if cfg.FallbackDSN == "" {
			return nil, err
		}
		log.Warn().Err(err).Str("driver", driver).Msg("primary store unavailable, falling back to sqlite")
		driver = DriverSQLite
		if db, err = connect(ctx, driver, cfg.FallbackDSN, timeout, log); err != nil {
			return nil, fmt.Errorf("fallback store: %w", err)
		}
	}

	if err := migrate(db); err != nil {
		return nil, err
	}

	log.Info().Str("driver", driver).Msg("relational store ready")
	return &Store{db: db, timeout: timeout, driver: driver}, nil
}

func connect(ctx context.Context, driver, dsn string, timeout time.Duration, log zerolog.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case DriverSQLite, "":
		driver = DriverSQLite
		if dsn == "" {
			dsn = "tracker.db"
		}
		if err := ensureDirForSQLite(dsn); err != nil {
			return nil, err
		}
		dialector = sqlite.Open(withForeignKeys(dsn))
	case DriverMySQL:
		dialector = mysql.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         newGormLogger(log),
		PrepareStmt:    true,
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if driver == DriverSQLite {
		// One writer at a time; also keeps in-memory databases alive.
		sqlDB.SetMaxOpenConns(1)
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("%s ping: %w", driver, err)
	}
	return db, nil
}

func migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&userModel{}, &taskModel{}, &routineModel{}, &routineExecutionModel{}, &auditEntryModel{}); err != nil {
		return fmt.Errorf("migrate db: %w", err)
	}
	return nil
}

func (s *Store) Users() ports.UserRepository       { return &UserRepository{db: s.db, timeout: s.timeout} }
func (s *Store) Tasks() ports.TaskRepository       { return &TaskRepository{db: s.db, timeout: s.timeout} }
func (s *Store) Routines() ports.RoutineRepository { return &RoutineRepository{db: s.db, timeout: s.timeout} }
func (s *Store) Audit() ports.AuditRepository      { return &AuditRepository{db: s.db, timeout: s.timeout} }

// Driver reports the backend actually in use, which differs from the
// configured one after a fallback.
func (s *Store) Driver() string { return s.driver }

func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return sqlDB.PingContext(ctx)
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// storeError wraps driver failures as ErrStoreUnavailable so callers can map
// them to a 5xx without knowing the backend.
func storeError(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%s: %w", op, domain.ErrDuplicateUsername)
	default:
		return fmt.Errorf("%s: %w: %w", op, domain.ErrStoreUnavailable, err)
	}
}

// withForeignKeys turns on cascade enforcement for the sqlite driver.
func withForeignKeys(dsn string) string {
	if strings.Contains(dsn, "_foreign_keys") || strings.Contains(dsn, "_fk=") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_foreign_keys=on"
}

// ensureDirForSQLite creates the parent directory of a SQLite file.
func ensureDirForSQLite(dsn string) error {
	if strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory") {
		return nil
	}
	clean := strings.TrimPrefix(dsn, "file:")
	clean = strings.Split(clean, "?")[0]
	dir := filepath.Dir(clean)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create db dir %q: %w", dir, err)
	}
	return nil
}

// gormWriter routes gorm's own logging through zerolog.
type gormWriter struct {
	log zerolog.Logger
}

func (w gormWriter) Printf(format string, args ...interface{}) {
	w.log.Warn().Msgf(format, args...)
}

func newGormLogger(log zerolog.Logger) logger.Interface {
	return logger.New(gormWriter{log: log.With().Str("component", "gorm").Logger()}, logger.Config{
		SlowThreshold:             time.Second,
		LogLevel:                  logger.Warn,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}
