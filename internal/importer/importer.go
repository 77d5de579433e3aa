// Package importer parses the pipe-delimited bulk formats pasted into the
// admin dashboard. One record per line, fields separated by '|', no quoting.
package importer

import (
	"fmt"
	"strings"

	"github.com/HansenDafa/indostereoset-annotation/internal/models"
)

const (
	DefaultTarget = "Unknown"

	userFieldCount = 4
)

// TripletRow is one parsed context line. Missing or empty fields are
// already replaced by their defaults.
type TripletRow struct {
	Line     int
	Target   string
	BiasType string
	Context  string
}

// UserRow is one parsed user line. Rows with fewer than four fields are
// kept with Accepted=false so callers can report them.
type UserRow struct {
	Line     int
	Accepted bool
	Reason   string
	ID       string
	Name     string
	Password string
	Role     string
}

// Blank reports whether text contains nothing but whitespace
func Blank(text string) bool {
	return strings.TrimSpace(text) == ""
}

// ParseTriplets parses "target | bias_type | context" lines. No line is
// rejected; blank lines are skipped.
func ParseTriplets(text string) []TripletRow {
	var rows []TripletRow
	forEachLine(text, func(line int, fields []string) {
		rows = append(rows, TripletRow{
			Line:     line,
			Target:   field(fields, 0, DefaultTarget),
			BiasType: field(fields, 1, models.DefaultBiasType),
			Context:  field(fields, 2, ""),
		})
	})
	return rows
}

// ParseUsers parses "user_id | name | password | role" lines. Fields are
// taken verbatim; the role is not validated here.
func ParseUsers(text string) []UserRow {
	var rows []UserRow
	forEachLine(text, func(line int, fields []string) {
		if len(fields) < userFieldCount {
			rows = append(rows, UserRow{
				Line:   line,
				Reason: fmt.Sprintf("expected %d fields, got %d", userFieldCount, len(fields)),
			})
			return
		}
		rows = append(rows, UserRow{
			Line:     line,
			Accepted: true,
			ID:       fields[0],
			Name:     fields[1],
			Password: fields[2],
			Role:     fields[3],
		})
	})
	return rows
}

// forEachLine calls fn with the 1-based line number and trimmed fields of
// every non-blank line.
func forEachLine(text string, fn func(line int, fields []string)) {
	for i, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		parts := strings.Split(line, "|")
		for j := range parts {
			parts[j] = strings.TrimSpace(parts[j])
		}
		fn(i+1, parts)
	}
}

func field(fields []string, i int, def string) string {
	if i < len(fields) && fields[i] != "" {
		return fields[i]
	}
	return def
}
