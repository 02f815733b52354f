package detail

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"
)

type nullBool = sql.NullBool

func orUnknown(s sql.NullString) string {
	if !s.Valid {
		return Unknown
	}
	return nonEmpty(s.String)
}

func nonEmpty(s string) string {
	if strings.TrimSpace(s) == "" {
		return Unknown
	}
	return s
}

func floatOrUnknown(f sql.NullFloat64) string {
	if !f.Valid {
		return Unknown
	}
	return strconv.FormatFloat(f.Float64, 'f', -1, 64)
}

func boolOrUnknown(b sql.NullBool) string {
	if !b.Valid {
		return Unknown
	}
	return strconv.FormatBool(b.Bool)
}

// flags renders a multi-select group in member order.
func flags(members []string, values map[string]nullBool) []Flag {
	out := make([]Flag, len(members))
	for i, m := range members {
		out[i] = Flag{Name: m, Value: boolOrUnknown(values[m])}
	}
	return out
}

func weekdayIndex(day string) int {
	for i, d := range Weekdays {
		if strings.EqualFold(strings.TrimSpace(day), d) {
			return i
		}
	}
	return -1
}

func hourLabel(h int) string {
	return fmt.Sprintf("%02d", h)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return Unknown
	}
	return t.Format("2006-01-02")
}
