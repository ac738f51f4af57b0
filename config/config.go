package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// PostgresConfig holds the connection details for the catalog export
// sink. Credentials come from the environment, never from the yaml
// config file.
type PostgresConfig struct {
	Host     string `envconfig:"POSTGRES_HOST" default:"localhost"`
	Port     string `envconfig:"POSTGRES_PORT" default:"5432"`
	User     string `envconfig:"POSTGRES_USER" default:"postgres"`
	Password string `envconfig:"POSTGRES_PASSWORD" default:"postgres"`
	DBName   string `envconfig:"POSTGRES_NAME" default:"postgres"`
}

func GetConfig() (*PostgresConfig, error) {
	cfg := &PostgresConfig{}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("failed to process postgres configuration: %w", err)
	}
	return cfg, nil
}
