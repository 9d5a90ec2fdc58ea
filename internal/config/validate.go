package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateBatch(); err != nil {
		return err
	}
	if err := c.validateSnipe(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateBatch() error {
	if len(c.Batch.Headers) != 4 {
		return fmt.Errorf("batch.headers must contain exactly 4 labels, got %d", len(c.Batch.Headers))
	}
	for i, header := range c.Batch.Headers {
		if header == "" {
			return fmt.Errorf("batch.headers[%d] must not be empty", i)
		}
	}
	if strings.ContainsAny(c.Batch.FileName, "/\\") {
		return errors.New("batch.file_name must be a bare file name")
	}
	if strings.ContainsAny(c.Batch.ExportBasename, "/\\") {
		return errors.New("batch.export_basename must not contain path separators")
	}
	return nil
}

func (c *Config) validateSnipe() error {
	// URL and token are optional: lookups degrade to the local classifier.
	if c.Snipe.URL != "" && !strings.HasPrefix(c.Snipe.URL, "http://") && !strings.HasPrefix(c.Snipe.URL, "https://") {
		return errors.New("snipe.url must start with http:// or https://")
	}
	if c.Snipe.TimeoutSeconds <= 0 {
		return errors.New("snipe.timeout_seconds must be positive")
	}
	if c.Snipe.TagMaxDigits <= 0 {
		return errors.New("snipe.tag_max_digits must be positive")
	}
	return nil
}

func (c *Config) validateNotifications() error {
	if c.Notifications.RequestTimeout <= 0 {
		return errors.New("notifications.request_timeout must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
