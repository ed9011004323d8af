package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Engine identifies one of the supported database engines.
type Engine string

const (
	EngineMySQL     Engine = "mysql"
	EnginePostgres  Engine = "postgres"
	EngineSQLServer Engine = "sqlserver"
)

// ConnectionConfig holds the user-supplied parameters for one database
// connection. It is never mutated after a handle has been created from it;
// changing anything means opening a new handle.
type ConnectionConfig struct {
	Name     string `yaml:"name" json:"name"`
	Type     string `yaml:"type" json:"type"`
	Host     string `yaml:"host" json:"host"`
	Port     int    `yaml:"port" json:"port"`
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
	Database string `yaml:"database" json:"database,omitempty"` // optional default database
}

type ServerConfig struct {
	Port int `yaml:"port" json:"port"`
}

type AppConfig struct {
	Server      ServerConfig       `yaml:"server" json:"server"`
	Connections []ConnectionConfig `yaml:"connections" json:"connections"`
}

// LoadFile loads YAML config from path.
func LoadFile(path string) (AppConfig, error) {
	var cfg AppConfig
	f, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(f, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Normalize maps common engine aliases to canonical keys.
func Normalize(t string) Engine {
	switch strings.ToLower(strings.TrimSpace(t)) {
	case "postgresql", "pg", "postgres":
		return EnginePostgres
	case "mysql", "mariadb":
		return EngineMySQL
	case "mssql", "sqlserver":
		return EngineSQLServer
	default:
		return Engine(strings.ToLower(strings.TrimSpace(t)))
	}
}

// DefaultPort returns the conventional port for an engine, 0 for unknown ones.
func DefaultPort(e Engine) int {
	switch e {
	case EngineMySQL:
		return 3306
	case EnginePostgres:
		return 5432
	case EngineSQLServer:
		return 1433
	}
	return 0
}

// BuildDSN produces a database/sql driver name and DSN for cfg. When database
// is non-empty it overrides cfg.Database, which is how scoped per-database
// pools are opened without touching the original config. A zero port falls
// back to the engine default.
func BuildDSN(cfg ConnectionConfig, database string) (driver string, dsn string, err error) {
	e := Normalize(cfg.Type)

	port := cfg.Port
	if port == 0 {
		port = DefaultPort(e)
	}
	db := cfg.Database
	if database != "" {
		db = database
	}

	switch e {
	case EnginePostgres:
		driver = "postgres"
		dsn = fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
			url.QueryEscape(cfg.Username), url.QueryEscape(cfg.Password), cfg.Host, port, db)
	case EngineMySQL:
		driver = "mysql"
		dsn = fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true",
			cfg.Username, cfg.Password, cfg.Host, port, db)
	case EngineSQLServer:
		driver = "sqlserver"
		dsn = fmt.Sprintf("sqlserver://%s:%s@%s:%d?database=%s",
			url.QueryEscape(cfg.Username), url.QueryEscape(cfg.Password), cfg.Host, port, db)
	default:
		err = fmt.Errorf("unsupported database type: %s", cfg.Type)
	}
	return
}
