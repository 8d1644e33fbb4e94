package repositories

import (
	"database/sql"
	"encoding/json"
)

// jsonColumn serializes a sub-document for storage in a TEXT column.
func jsonColumn(v interface{}) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// scanJSON deserializes a TEXT column into dst, leaving dst untouched for
// NULL or empty columns.
func scanJSON(src sql.NullString, dst interface{}) error {
	if !src.Valid || src.String == "" {
		return nil
	}
	return json.Unmarshal([]byte(src.String), dst)
}
