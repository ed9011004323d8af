package introspect

// ColumnDescriptor is the normalized shape of one table column, shared across
// all engines.
type ColumnDescriptor struct {
	Name    string `json:"name"`
	Type    string `json:"type"` // uppercased raw type name
	Length  *int   `json:"length,omitempty"`
	Scale   *int   `json:"scale,omitempty"`
	NotNull bool   `json:"notNull"`
	Primary bool   `json:"primaryKey"`
	Comment string `json:"comment,omitempty"`
}

// DatabaseNode is one database visible to the connection. Tables and Views
// stay empty until the node has been expanded for a specific database, in
// which case Loaded is true.
type DatabaseNode struct {
	Name   string   `json:"name"`
	Tables []string `json:"tables"`
	Views  []string `json:"views"`
	Loaded bool     `json:"loaded"`
}

// SchemaResult is the normalized response to a schema request. With no target
// database it carries one unexpanded node per visible database and no column
// data. With a target database it carries exactly one fully populated node,
// and Columns maps both "table" and "database.table" to the same descriptor
// list so a caller merging several databases can disambiguate.
type SchemaResult struct {
	Databases []DatabaseNode                `json:"databases"`
	Columns   map[string][]ColumnDescriptor `json:"schema,omitempty"`
}

// QueryResult is the response to a query execution. Headers preserve the
// driver-reported field order. A driver-level failure is carried in Error
// with empty Headers and Rows; it is data, not a fault.
type QueryResult struct {
	Headers []string         `json:"headers"`
	Rows    []map[string]any `json:"rows"`
	Error   string           `json:"error,omitempty"`
}

// NewUnloadedNode returns a discovery-only node with non-nil empty lists so
// the JSON form is [] rather than null.
func NewUnloadedNode(name string) DatabaseNode {
	return DatabaseNode{Name: name, Tables: []string{}, Views: []string{}}
}
