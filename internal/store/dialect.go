package store

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

type dialect struct {
	name   string // driver name passed to sql.Open
	goose  string // goose dialect
	dollar bool   // $1-style placeholders
}

var (
	sqliteDialect   = dialect{name: "sqlite", goose: "sqlite3"}
	postgresDialect = dialect{name: "pgx", goose: "postgres", dollar: true}
)

// dialectFor picks a backend from the DSN. Anything that is not a
// postgres URL is treated as a SQLite file path.
func dialectFor(dsn string) dialect {
	lower := strings.ToLower(dsn)
	if strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://") {
		return postgresDialect
	}
	return sqliteDialect
}

// rebind rewrites ? placeholders for dialects that number them.
func (d dialect) rebind(query string) string {
	if !d.dollar {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// DataDir returns the XDG-compliant data directory.
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "dayburn")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "dayburn")
}

// DefaultPath returns the full path to the default SQLite database.
func DefaultPath() string {
	return filepath.Join(DataDir(), "budget.db")
}

// Redact hides the password of a postgres DSN for display.
func Redact(dsn string) string {
	if dialectFor(dsn) != postgresDialect {
		return dsn
	}
	scheme := strings.Index(dsn, "://")
	at := strings.LastIndex(dsn, "@")
	if scheme < 0 || at < scheme {
		return dsn
	}
	creds := dsn[scheme+3 : at]
	if colon := strings.Index(creds, ":"); colon >= 0 {
		return dsn[:scheme+3] + creds[:colon] + ":***" + dsn[at:]
	}
	return dsn
}
