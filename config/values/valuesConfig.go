package values

// RetryValues configures the lazy-fetch retry loop. Delays are the base
// of the quadratic backoff (attempt² × base).
type RetryValues struct {
	Attempts                int `yaml:"attempts" validate:"gte=1"`
	BaseDelaySeconds        int `yaml:"base-delay-seconds" validate:"gte=1"`
	ProductBaseDelaySeconds int `yaml:"product-base-delay-seconds" validate:"gte=1"`
}

// CrawlValues configures the warehouse discovery crawl.
type CrawlValues struct {
	Workers           int     `yaml:"workers" validate:"gte=1"`
	BatchSize         int     `yaml:"batch-size" validate:"gte=1"`
	RequestsPerSecond float64 `yaml:"requests-per-second" validate:"gte=0"`
}

// ExportValues configures the catalog export run.
type ExportValues struct {
	Directory  string   `yaml:"directory"`
	Postgres   bool     `yaml:"postgres"`
	Warehouses []string `yaml:"warehouses"`
}
