// Package sqlref resolves the table a describe-like statement targets.
package sqlref

import (
	"regexp"
	"strings"

	"github.com/xwb1989/sqlparser"
)

// TableRef is a possibly qualified table name.
type TableRef struct {
	Catalog  string
	Schema   string
	Table    string
	FullPath string
}

// identifier matches a bare, double-quoted or backquoted name.
const identifier = "(?:[a-zA-Z_][a-zA-Z0-9_$]*|\"[^\"]+\"|`[^`]+`)"

var (
	describePattern = regexp.MustCompile(`(?is)^\s*(?:DESCRIBE|DESC)\s+(?:(?:EXTENDED|FORMATTED)\s+)?` +
		`(` + identifier + `(?:\.` + identifier + `){0,2})\s*;?\s*$`)
	showColumnsPattern = regexp.MustCompile(`(?is)^\s*SHOW\s+COLUMNS\s+(?:FROM|IN)\s+` +
		`(` + identifier + `(?:\.` + identifier + `){0,2})\s*;?\s*$`)
)

// Resolve returns the table whose columns the statement lists, one row per
// column. Only DESCRIBE and SHOW COLUMNS statements resolve; for anything else
// result rows do not line up with a table's columns.
func Resolve(sql string) (TableRef, bool) {
	var pattern *regexp.Regexp
	switch sqlparser.Preview(sql) {
	case sqlparser.StmtOther:
		pattern = describePattern
	case sqlparser.StmtShow:
		pattern = showColumnsPattern
	default:
		return TableRef{}, false
	}

	m := pattern.FindStringSubmatch(sql)
	if m == nil {
		return TableRef{}, false
	}
	return parseTablePath(m[1]), true
}

// parseTablePath parses a dot-separated table path, unquoting each part.
func parseTablePath(path string) TableRef {
	parts := splitPath(path)
	ref := TableRef{FullPath: strings.Join(parts, ".")}

	switch len(parts) {
	case 3:
		ref.Catalog = parts[0]
		ref.Schema = parts[1]
		ref.Table = parts[2]
	case 2:
		ref.Schema = parts[0]
		ref.Table = parts[1]
	case 1:
		ref.Table = parts[0]
	}
	return ref
}

// splitPath splits on dots outside quotes.
func splitPath(path string) []string {
	var (
		parts []string
		cur   strings.Builder
		quote rune
	)
	for _, r := range path {
		switch {
		case quote != 0 && r == quote:
			quote = 0
		case quote != 0:
			cur.WriteRune(r)
		case r == '"' || r == '`':
			quote = r
		case r == '.':
			parts = append(parts, cur.String())
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	return append(parts, cur.String())
}
