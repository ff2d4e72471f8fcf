package smsdb

import (
	"fmt"

	"github.com/sethrj/iphone-message-export/internal/manifest"
)

// describeRow renders a single row as column=value text for diagnostic
// logging. Never used on primary data paths.
func (d *DB) describeRow(table, col string, value int64) string {
	row, err := d.rawRow(table, col, value)
	if err != nil {
		return fmt.Sprintf("unavailable: %v", err)
	}
	return fmt.Sprintf("%v", row)
}

// rawRow selects one row by column value and zips it with the result's
// column names. Exactly one row must match. The table and column names
// come from trusted call sites; placeholders cannot substitute
// identifiers.
func (d *DB) rawRow(table, col string, value int64) (map[string]interface{}, error) {
	rows, err := d.db.Query(fmt.Sprintf("SELECT * FROM %s WHERE %s = ?", table, col), value)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", table, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s columns: %w", table, err)
	}

	var result map[string]interface{}
	for rows.Next() {
		if result != nil {
			return nil, fmt.Errorf("%w: multiple %s rows with %s=%d", manifest.ErrMalformedRow, table, col, value)
		}

		values := make([]interface{}, len(cols))
		ptrs := make([]interface{}, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", table, err)
		}

		result = make(map[string]interface{}, len(cols))
		for i, c := range cols {
			result[c] = values[i]
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s rows: %w", table, err)
	}

	if result == nil {
		return nil, fmt.Errorf("%w: no %s row with %s=%d", manifest.ErrMalformedRow, table, col, value)
	}
	return result, nil
}
