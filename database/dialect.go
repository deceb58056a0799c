package database

import (
	"fmt"
	"regexp"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Dialect identifies the SQL flavour behind a URI.
type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
)

// ParseDialect derives the dialect from the URI scheme.
func ParseDialect(uri string) (Dialect, error) {
	scheme, _, ok := strings.Cut(uri, "://")
	if !ok {
		return "", fmt.Errorf("database uri %q has no scheme", uri)
	}
	switch strings.ToLower(scheme) {
	case "postgres", "postgresql":
		return Postgres, nil
	case "sqlite", "sqlite3":
		return SQLite, nil
	default:
		return "", fmt.Errorf("unsupported database scheme %q", scheme)
	}
}

// Dialector returns the GORM dialector for uri.
func Dialector(uri string) (gorm.Dialector, error) {
	dialect, err := ParseDialect(uri)
	if err != nil {
		return nil, err
	}
	switch dialect {
	case Postgres:
		return postgres.Open(uri), nil
	default:
		return sqlite.Open(sqlitePath(uri)), nil
	}
}

// sqlitePath strips the scheme: sqlite://./data/app.db opens ./data/app.db.
func sqlitePath(uri string) string {
	_, path, _ := strings.Cut(uri, "://")
	return path
}

var dbNameRe = regexp.MustCompile(`/([^/]+)$`)

// DatabaseName extracts the database name, the last path segment, from a URI.
func DatabaseName(uri string) (string, error) {
	base, _, _ := strings.Cut(uri, "?")
	if _, rest, ok := strings.Cut(base, "://"); ok {
		base = rest
	}
	slash := strings.Index(base, "/")
	if slash < 0 {
		return "", fmt.Errorf("no database name found in %q", uri)
	}
	m := dbNameRe.FindStringSubmatch(base[slash:])
	if m == nil {
		return "", fmt.Errorf("no database name found in %q", uri)
	}
	return m[1], nil
}

// MaintenanceURI points uri at the postgres maintenance database, keeping the
// credentials, host and query.
func MaintenanceURI(uri string) (string, error) {
	name, err := DatabaseName(uri)
	if err != nil {
		return "", err
	}
	base, query, hasQuery := strings.Cut(uri, "?")
	out := strings.TrimSuffix(base, "/"+name) + "/postgres"
	if hasQuery {
		out += "?" + query
	}
	return out, nil
}
