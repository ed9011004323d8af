package db

import (
	"context"
	"errors"
	"fmt"

	"sqldeck/internal/introspect"
	"sqldeck/internal/logger"
	"sqldeck/pkg/config"
)

// ConnectionInfo is what a successful connect reports back to the caller.
// The handle itself never crosses this boundary.
type ConnectionInfo struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	Host     string `json:"host"`
	Database string `json:"database,omitempty"`
}

// Service is the request dispatcher: it routes the uniform contract to the
// adapter matching each handle's stored engine type.
type Service struct {
	reg *Registry
}

func NewService(reg *Registry) *Service {
	return &Service{reg: reg}
}

// Connect opens and probes a pool for cfg, registers the handle, and returns
// its identifier. A probe failure leaves nothing registered.
func (s *Service) Connect(ctx context.Context, cfg config.ConnectionConfig) (ConnectionInfo, error) {
	engine := config.Normalize(cfg.Type)
	adapter, err := lookup(engine)
	if err != nil {
		return ConnectionInfo{}, err
	}

	pool, err := adapter.Connect(ctx, cfg)
	if err != nil {
		return ConnectionInfo{}, &ConnectError{Engine: string(engine), Host: cfg.Host, Err: err}
	}

	h := &Handle{Type: engine, DB: pool, Cfg: cfg}
	id := s.reg.Register(h)
	logger.Info("connected %s (%s@%s) as %s", cfg.Name, engine, cfg.Host, id)

	return ConnectionInfo{
		ID:       id,
		Name:     cfg.Name,
		Type:     string(engine),
		Host:     cfg.Host,
		Database: cfg.Database,
	}, nil
}

// ListSchema returns the discovery listing when database is empty, or one
// fully populated node for database otherwise.
func (s *Service) ListSchema(ctx context.Context, id, database string) (introspect.SchemaResult, error) {
	h, adapter, err := s.resolve(id)
	if err != nil {
		return introspect.SchemaResult{}, err
	}

	if database == "" {
		names, err := adapter.ListDatabases(ctx, h)
		if err != nil {
			return introspect.SchemaResult{}, fmt.Errorf("list databases: %w", err)
		}
		nodes := make([]introspect.DatabaseNode, 0, len(names))
		for _, name := range names {
			nodes = append(nodes, introspect.NewUnloadedNode(name))
		}
		return introspect.SchemaResult{Databases: nodes}, nil
	}

	return adapter.DescribeDatabase(ctx, h, database)
}

// RunQuery executes sqlText on the identified connection. Driver-level
// execution failures are returned as data inside the result, never as an
// error; the error return only reports an unknown identifier or engine.
func (s *Service) RunQuery(ctx context.Context, id, sqlText, database string) (introspect.QueryResult, error) {
	h, adapter, err := s.resolve(id)
	if err != nil {
		return introspect.QueryResult{}, err
	}

	res, err := adapter.Query(ctx, h, sqlText, database)
	if err != nil {
		logger.Debug("query on %s failed: %v", id, err)
		return introspect.QueryResult{
			Headers: []string{},
			Rows:    []map[string]any{},
			Error:   err.Error(),
		}, nil
	}
	return res, nil
}

// Close tears down the identified connection. It is idempotent: closing an
// identifier that is unknown or already closed is a no-op.
func (s *Service) Close(id string) error {
	h := s.reg.Remove(id)
	if h == nil {
		return nil
	}
	adapter, err := lookup(h.Type)
	if err != nil {
		return err
	}
	logger.Info("closing connection %s", id)
	return adapter.Close(h)
}

// CloseAll drains the registry and attempts to close every handle. One
// handle's failure never prevents attempts on the rest; failures are logged
// and aggregated.
func (s *Service) CloseAll() error {
	var errs []error
	for _, h := range s.reg.Drain() {
		adapter, err := lookup(h.Type)
		if err == nil {
			err = adapter.Close(h)
		}
		if err != nil {
			logger.Error("closing connection %s: %v", h.ID, err)
			errs = append(errs, fmt.Errorf("close %s: %w", h.ID, err))
		}
	}
	return errors.Join(errs...)
}

// resolve maps an identifier to its handle and adapter.
func (s *Service) resolve(id string) (*Handle, Adapter, error) {
	h, ok := s.reg.Get(id)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", ErrConnectionNotFound, id)
	}
	adapter, err := lookup(h.Type)
	if err != nil {
		return nil, nil, err
	}
	return h, adapter, nil
}
