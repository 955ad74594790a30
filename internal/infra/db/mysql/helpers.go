package mysql

import (
	"database/sql"
	"encoding/json"
)

// jsonOrDefault marshals v, falling back to def on marshal failure so the
// JSON columns always receive valid JSON.
func jsonOrDefault(v any, def string) string {
	b, err := json.Marshal(v)
	if err != nil {
		return def
	}
	return string(b)
}

// nullIfEmpty maps "" to SQL NULL for optional text columns.
func nullIfEmpty(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
