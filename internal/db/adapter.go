package db

import (
	"context"
	"database/sql"
	"sort"

	"sqldeck/internal/introspect"
	"sqldeck/pkg/config"
)

// Adapter translates the uniform connect/listSchema/runQuery/close contract
// into engine-specific driver calls. One implementation exists per engine;
// each registers itself from its init.
type Adapter interface {

	// Connect opens a pool for cfg and probes it for liveness. On probe
	// failure the pool is torn down and the driver error returned.
	Connect(ctx context.Context, cfg config.ConnectionConfig) (*sql.DB, error)

	// ListDatabases enumerates the databases visible to the credentials,
	// excluding the engine's internal system databases.
	ListDatabases(ctx context.Context, h *Handle) ([]string, error)

	// DescribeDatabase returns one fully populated node for database:
	// its tables, views, and every column in a single aggregated pass.
	DescribeDatabase(ctx context.Context, h *Handle, database string) (introspect.SchemaResult, error)

	// Query executes sqlText, optionally against database. Driver-level
	// failures come back as errors; the dispatcher embeds them.
	Query(ctx context.Context, h *Handle, sqlText, database string) (introspect.QueryResult, error)

	// Close releases the handle's pool.
	Close(h *Handle) error
}

var engines = map[config.Engine]Adapter{}

// Register makes an Adapter available under name.
func Register(name string, a Adapter) {
	engines[config.Normalize(name)] = a
}

// lookup resolves the adapter for an engine type.
func lookup(e config.Engine) (Adapter, error) {
	a, ok := engines[e]
	if !ok {
		return nil, &UnsupportedEngineError{Engine: string(e)}
	}
	return a, nil
}

// RegisteredEngines returns the registered engine keys (for diagnostics).
func RegisteredEngines() []string {
	keys := make([]string, 0, len(engines))
	for k := range engines {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)
	return keys
}

// OpenPool builds the DSN for cfg (optionally overriding the target
// database), opens a pool, and fails fast with a liveness probe. The pool is
// closed before returning any error so a botched connect leaks nothing.
func OpenPool(ctx context.Context, cfg config.ConnectionConfig, database string) (*sql.DB, error) {
	driver, dsn, err := config.BuildDSN(cfg, database)
	if err != nil {
		return nil, err
	}
	pool, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	if err := pool.PingContext(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}
