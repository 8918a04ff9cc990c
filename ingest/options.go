package ingest

import "log/slog"

type ingestorConfig struct {
	logger *slog.Logger
}

// IngestorOption configures an individual ingestor.
type IngestorOption func(*ingestorConfig)

// WithIngestorLogger sets a custom logger on an ingestor.
// Default is slog.Default().
func WithIngestorLogger(logger *slog.Logger) IngestorOption {
	return func(c *ingestorConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func newIngestorConfig(opts []IngestorOption) ingestorConfig {
	cfg := ingestorConfig{logger: slog.Default()}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}
