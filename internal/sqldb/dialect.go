// Package sqldb opens SQL databases for the supported dialects and applies
// embedded migrations to them. Queries are written with ? placeholders and
// rebound per dialect.
package sqldb

import (
	"fmt"
	"strconv"
	"strings"
)

// Dialect names a supported SQL backend
type Dialect string

// Supported dialects
const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// ParseDialect accepts a dialect name from configuration
func ParseDialect(name string) (Dialect, error) {
	switch Dialect(strings.ToLower(strings.TrimSpace(name))) {
	case DialectSQLite:
		return DialectSQLite, nil
	case DialectPostgres, "postgresql":
		return DialectPostgres, nil
	default:
		return "", fmt.Errorf("unsupported sql dialect %q", name)
	}
}

// DriverName returns the database/sql driver registered for the dialect
func (d Dialect) DriverName() string {
	switch d {
	case DialectPostgres:
		return "postgres"
	default:
		return "sqlite"
	}
}

// Rebind rewrites ? placeholders into the dialect's native form. Question
// marks inside single-quoted literals are left alone.
func (d Dialect) Rebind(query string) string {
	if d != DialectPostgres {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)

	n := 0
	inLiteral := false
	for _, r := range query {
		switch {
		case r == '\'':
			inLiteral = !inLiteral
			b.WriteRune(r)
		case r == '?' && !inLiteral:
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
		default:
			b.WriteRune(r)
		}
	}

	return b.String()
}
