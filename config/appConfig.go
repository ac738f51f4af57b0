package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"gomercadona_api/config/values"
)

type MercadonaConfig struct {
	APIURL    string             `yaml:"api_url" validate:"omitempty,url"`
	Warehouse string             `yaml:"warehouse" validate:"required"`
	Language  string             `yaml:"language" validate:"oneof=es en"`
	Retry     values.RetryValues `yaml:"retry"`
}

type AppConfig struct {
	Mercadona MercadonaConfig     `yaml:"mercadona"`
	Crawl     values.CrawlValues  `yaml:"crawl"`
	Export    values.ExportValues `yaml:"export"`
	OpsAddr   string              `yaml:"ops_addr"`
}

// LoadConfig reads and validates the application config. Missing
// optional sections fall back to defaults before validation so a
// minimal file stays valid.
func LoadConfig(filename string) (*AppConfig, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	config := &AppConfig{}
	if err := decoder.Decode(config); err != nil {
		return nil, err
	}
	config.applyDefaults()

	if err := validator.New().Struct(config); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", filename, err)
	}
	return config, nil
}

func (c *AppConfig) applyDefaults() {
	if c.Mercadona.Language == "" {
		c.Mercadona.Language = "es"
	}
	if c.Mercadona.Retry.Attempts == 0 {
		c.Mercadona.Retry.Attempts = 3
	}
	if c.Mercadona.Retry.BaseDelaySeconds == 0 {
		c.Mercadona.Retry.BaseDelaySeconds = 20
	}
	if c.Mercadona.Retry.ProductBaseDelaySeconds == 0 {
		c.Mercadona.Retry.ProductBaseDelaySeconds = 10
	}
	if c.Crawl.Workers == 0 {
		c.Crawl.Workers = 5
	}
	if c.Crawl.BatchSize == 0 {
		c.Crawl.BatchSize = 10
	}
	if c.Export.Directory == "" {
		c.Export.Directory = "catalogs"
	}
	if c.OpsAddr == "" {
		c.OpsAddr = ":8080"
	}
}

// BaseDelay returns the backoff base for category/season fetches.
func (c MercadonaConfig) BaseDelay() time.Duration {
	return time.Duration(c.Retry.BaseDelaySeconds) * time.Second
}

// ProductBaseDelay returns the backoff base for product fetches.
func (c MercadonaConfig) ProductBaseDelay() time.Duration {
	return time.Duration(c.Retry.ProductBaseDelaySeconds) * time.Second
}
