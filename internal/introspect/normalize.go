package introspect

import (
	"strconv"
	"strings"
)

// KeyMap names the row keys an engine's information-schema query uses for
// each piece of column metadata. Engines alias their queries differently
// (COLUMN_NAME vs column_name and so on); supplying a KeyMap lets every
// adapter share the grouping logic below.
type KeyMap struct {
	Table    string
	Column   string
	Type     string
	Length   string
	Scale    string
	Nullable string
	Key      string
	Comment  string
}

// GroupColumns turns heterogeneous information-schema rows into the common
// descriptor shape, grouped by table in order of first appearance. Each table
// is present under its bare name and under "database.table"; both keys share
// the same slice.
func GroupColumns(database string, rows []map[string]any, keys KeyMap) map[string][]ColumnDescriptor {
	grouped := make(map[string][]ColumnDescriptor)
	var order []string

	for _, row := range rows {
		table := asString(row[keys.Table])
		if table == "" {
			continue
		}
		if _, seen := grouped[table]; !seen {
			order = append(order, table)
		}
		grouped[table] = append(grouped[table], ColumnDescriptor{
			Name:    asString(row[keys.Column]),
			Type:    strings.ToUpper(asString(row[keys.Type])),
			Length:  asInt(row[keys.Length]),
			Scale:   asInt(row[keys.Scale]),
			NotNull: isNotNull(row[keys.Nullable]),
			Primary: isPrimaryKey(row[keys.Key]),
			Comment: asString(row[keys.Comment]),
		})
	}

	for _, table := range order {
		grouped[database+"."+table] = grouped[table]
	}
	return grouped
}

// isNotNull reports whether a nullable sentinel marks the column NOT NULL.
// All three engines report the string "NO". The exact-match semantics are
// kept deliberately; only the sentinel lives here so it is easy to revisit.
func isNotNull(v any) bool {
	return asString(v) == "NO"
}

// isPrimaryKey reports whether a key sentinel marks the column as part of the
// primary key. MySQL reports "PRI" in COLUMN_KEY; the other engines alias a
// synthetic column to the same value. Substring matching is case-insensitive,
// nothing more.
func isPrimaryKey(v any) bool {
	return strings.Contains(strings.ToUpper(asString(v)), "PRI")
}

// asString renders a scanned cell as a string, treating nil as empty.
// Drivers hand back []byte for most textual information-schema values.
func asString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case []byte:
		return string(s)
	default:
		return ""
	}
}

// asInt renders a scanned cell as an optional int. Absent, zero, and
// non-numeric values all come back as nil: a zero length or scale carries no
// information, so it is treated the same as no value at all.
func asInt(v any) *int {
	var n int
	switch x := v.(type) {
	case nil:
		return nil
	case int64:
		n = int(x)
	case int32:
		n = int(x)
	case int:
		n = x
	case float64:
		n = int(x)
	case []byte:
		parsed, err := strconv.Atoi(string(x))
		if err != nil {
			return nil
		}
		n = parsed
	case string:
		parsed, err := strconv.Atoi(x)
		if err != nil {
			return nil
		}
		n = parsed
	default:
		return nil
	}
	if n == 0 {
		return nil
	}
	return &n
}
