package main

import (
	"deltaflow/internal/config"
	"deltaflow/internal/field"
	"deltaflow/internal/logging"
)

// openField loads a field's config.toml (or defaults) and opens the field
// directory, wiring the configured logger and compression level through.
func openField(path string) (*field.Field, error) {
	result, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	logger := logging.NewLogger(logging.Config{
		Format: logging.Format(result.Config.Logging.Format),
		Level:  logging.LogLevel(result.Config.Logging.Level),
	})
	return field.Open(path, logger, result.Config.Codec.CompressionLevel)
}
