package db

import "database/sql"

// ScanAll drains rows into generic maps keyed by column name. Headers come
// from the driver's field metadata, which preserves statement order and is
// present even for empty result sets; only if that metadata is unavailable
// do the first row's keys stand in (and then there are no rows to take them
// from, so headers stay empty). []byte cells become strings so results
// serialize cleanly.
func ScanAll(rows *sql.Rows) ([]string, []map[string]any, error) {
	headers, err := rows.Columns()
	if err != nil {
		headers = []string{}
	}

	out := make([]map[string]any, 0)
	for rows.Next() {
		cells := make([]any, len(headers))
		ptrs := make([]any, len(headers))
		for i := range cells {
			ptrs[i] = &cells[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return headers, out, err
		}
		rec := make(map[string]any, len(headers))
		for i, name := range headers {
			if b, ok := cells[i].([]byte); ok {
				rec[name] = string(b)
			} else {
				rec[name] = cells[i]
			}
		}
		out = append(out, rec)
	}
	return headers, out, rows.Err()
}
