// Package sqlutil builds the MySQL statements used by the table source.
package sqlutil

import (
	"fmt"
	"regexp"
	"strings"
)

// QuoteIdentifier quotes a MySQL identifier with backticks, doubling any
// backticks inside it.
func QuoteIdentifier(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

// validIdentifierRegex restricts identifiers to alphanumerics and underscore.
var validIdentifierRegex = regexp.MustCompile("^[a-zA-Z0-9_]+$")

// IsValidIdentifier reports whether name only contains alphanumerics and underscores.
func IsValidIdentifier(name string) bool {
	return validIdentifierRegex.MatchString(name)
}

// QuoteIdentifierSafe quotes a MySQL identifier after validating it.
func QuoteIdentifierSafe(name string) (string, error) {
	if !IsValidIdentifier(name) {
		return "", &InvalidIdentifierError{Name: name}
	}
	return QuoteIdentifier(name), nil
}

// InvalidIdentifierError is returned when an identifier contains invalid characters.
type InvalidIdentifierError struct {
	Name string
}

func (e *InvalidIdentifierError) Error() string {
	return "invalid identifier: " + e.Name + " (must contain only alphanumeric characters and underscores)"
}

func quoteAll(columns []string) string {
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = QuoteIdentifier(c)
	}
	return strings.Join(quoted, ", ")
}

// SelectPage builds "SELECT cols FROM table ORDER BY orderBy LIMIT ? OFFSET ?".
func SelectPage(table string, columns []string, orderBy string) string {
	return fmt.Sprintf("SELECT %s FROM %s ORDER BY %s ASC LIMIT ? OFFSET ?",
		quoteAll(columns), QuoteIdentifier(table), QuoteIdentifier(orderBy))
}

// CountRows builds "SELECT COUNT(*) FROM table".
func CountRows(table string) string {
	return fmt.Sprintf("SELECT COUNT(*) FROM %s", QuoteIdentifier(table))
}

// DeleteAll builds "DELETE FROM table".
func DeleteAll(table string) string {
	return fmt.Sprintf("DELETE FROM %s", QuoteIdentifier(table))
}

// InsertRows builds a multi-row INSERT with one placeholder group per row.
func InsertRows(table string, columns []string, rows int) string {
	group := "(" + strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ") + ")"
	groups := make([]string, rows)
	for i := range groups {
		groups[i] = group
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES %s",
		QuoteIdentifier(table), quoteAll(columns), strings.Join(groups, ", "))
}
