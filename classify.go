package sqlite

import "strings"

// rowKeywords lists the leading keywords of statements routed to
// sqlite3_get_table by Exec.
var rowKeywords = []string{"SELECT", "PRAGMA", "WITH", "VALUES", "EXPLAIN"}

// isRowReturning reports whether the first keyword of sql, after
// whitespace, comments and opening parentheses, starts a row-returning
// statement. A PRAGMA that assigns a value also classifies as
// row-returning.
func isRowReturning(sql string) bool {
	word := firstKeyword(sql)
	for _, kw := range rowKeywords {
		if strings.EqualFold(word, kw) {
			return true
		}
	}
	return false
}

func firstKeyword(sql string) string {
	i := 0
	for i < len(sql) {
		switch c := sql[i]; {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '(':
			i++
		case c == '-' && i+1 < len(sql) && sql[i+1] == '-':
			for i < len(sql) && sql[i] != '\n' {
				i++
			}
		case c == '/' && i+1 < len(sql) && sql[i+1] == '*':
			end := strings.Index(sql[i+2:], "*/")
			if end < 0 {
				return ""
			}
			i += end + 4
		default:
			start := i
			for i < len(sql) && isKeywordChar(sql[i]) {
				i++
			}
			return sql[start:i]
		}
	}
	return ""
}

func isKeywordChar(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_'
}
