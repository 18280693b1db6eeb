package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-yaml/yaml"

	"github.com/totegamma/rentchain"
	"github.com/totegamma/rentchain/internal/domain"
)

type Config struct {
	Engine Engine `yaml:"engine"`
	Server Server `yaml:"server"`
}

type Engine struct {
	FQDN               string `yaml:"fqdn" env:"RENTCHAIN_FQDN"`
	OperatorPrivateKey string `yaml:"operatorPrivateKey" env:"RENTCHAIN_OPERATOR_PRIVATE_KEY"`
	MinimumTerm        string `yaml:"minimumTerm" env:"RENTCHAIN_MINIMUM_TERM"` // e.g. 720h

	// ---
	Operator string        `yaml:"-"`
	Term     time.Duration `yaml:"-"`
}

type Server struct {
	Listen        string `yaml:"listen" env:"RENTCHAIN_LISTEN"`
	Database      string `yaml:"database" env:"RENTCHAIN_DATABASE"` // postgres, sqlite
	PostgresDsn   string `yaml:"postgresDsn" env:"RENTCHAIN_POSTGRES_DSN"`
	SqlitePath    string `yaml:"sqlitePath" env:"RENTCHAIN_SQLITE_PATH"`
	RedisAddr     string `yaml:"redisAddr" env:"RENTCHAIN_REDIS_ADDR"`
	RedisPassword string `yaml:"redisPassword" env:"RENTCHAIN_REDIS_PASSWORD"`
	RedisDB       int    `yaml:"redisDB" env:"RENTCHAIN_REDIS_DB"`
	MemcachedAddr string `yaml:"memcachedAddr" env:"RENTCHAIN_MEMCACHED_ADDR"`
	EnableTrace   bool   `yaml:"enableTrace" env:"RENTCHAIN_ENABLE_TRACE"`
	TraceEndpoint string `yaml:"traceEndpoint" env:"RENTCHAIN_TRACE_ENDPOINT"`
	AuditSchedule string `yaml:"auditSchedule" env:"RENTCHAIN_AUDIT_SCHEDULE"` // cron spec, empty disables
}

func Default() Config {
	return Config{
		Engine: Engine{
			FQDN:        "localhost",
			MinimumTerm: domain.DefaultMinimumTerm.String(),
		},
		Server: Server{
			Listen:     ":8000",
			Database:   "sqlite",
			SqlitePath: "rentchain.db",
		},
	}
}

// Load reads the yaml file at path (optional) and applies RENTCHAIN_* overrides.
func Load(path string) (Config, error) {
	config := Default()

	if path != "" {
		file, err := os.Open(path)
		if err != nil {
			return Config{}, err
		}
		defer file.Close()

		err = yaml.NewDecoder(file).Decode(&config)
		if err != nil {
			return Config{}, fmt.Errorf("decode %s: %w", path, err)
		}
	}

	if err := env.Parse(&config); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if err := config.resolve(); err != nil {
		return Config{}, err
	}
	return config, nil
}

func (c *Config) resolve() error {
	if c.Engine.OperatorPrivateKey != "" {
		operator, err := rentchain.PrivKeyToAddr(c.Engine.OperatorPrivateKey)
		if err != nil {
			return fmt.Errorf("operator key: %w", err)
		}
		c.Engine.Operator = operator
	}

	c.Engine.Term = domain.DefaultMinimumTerm
	if c.Engine.MinimumTerm != "" {
		term, err := time.ParseDuration(c.Engine.MinimumTerm)
		if err != nil {
			return fmt.Errorf("minimumTerm: %w", err)
		}
		if term < 0 {
			return fmt.Errorf("minimumTerm must not be negative")
		}
		c.Engine.Term = term
	}

	switch c.Server.Database {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported database %q", c.Server.Database)
	}
	return nil
}

// Domain returns the settings the engine needs.
func (c Config) Domain() domain.Config {
	return domain.Config{
		FQDN:        c.Engine.FQDN,
		Operator:    c.Engine.Operator,
		MinimumTerm: c.Engine.Term,
	}
}
