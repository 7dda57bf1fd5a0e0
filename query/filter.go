// Package query filters student records for display and export.
package query

import (
	"fmt"
	"strings"

	"roster-server-go/models"
)

// Field is a searchable student field
type Field string

const (
	FieldName  Field = "Name"
	FieldClass Field = "Class"
)

// ParseField accepts "Name" or "Class" in any case. An empty string means Name.
func ParseField(s string) (Field, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "name":
		return FieldName, nil
	case "class":
		return FieldClass, nil
	default:
		return "", fmt.Errorf("unsupported search field %q (use Name or Class)", s)
	}
}

// Filter returns the students whose field contains term, ignoring case.
// An empty term returns students unchanged. Order is preserved.
func Filter(students []models.Student, field Field, term string) []models.Student {
	if term == "" {
		return students
	}
	term = strings.ToLower(term)
	out := make([]models.Student, 0, len(students))
	for _, st := range students {
		if strings.Contains(strings.ToLower(value(st, field)), term) {
			out = append(out, st)
		}
	}
	return out
}

func value(st models.Student, field Field) string {
	if field == FieldClass {
		return st.Class
	}
	return st.Name
}
