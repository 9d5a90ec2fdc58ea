package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeBatch()
	c.normalizeSnipe()
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.ArchiveDir) == "" {
		c.Paths.ArchiveDir = defaultArchiveDir
	}
	if c.Paths.ArchiveDir, err = expandPath(c.Paths.ArchiveDir); err != nil {
		return fmt.Errorf("paths.archive_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	c.Paths.APIToken = strings.TrimSpace(c.Paths.APIToken)
	c.Paths.BasePath = strings.TrimSpace(c.Paths.BasePath)
	if c.Paths.BasePath == "" {
		c.Paths.BasePath = defaultBasePath
	}
	if !strings.HasPrefix(c.Paths.BasePath, "/") {
		c.Paths.BasePath = "/" + c.Paths.BasePath
	}
	c.Paths.BasePath = strings.TrimRight(c.Paths.BasePath, "/")
	return nil
}

func (c *Config) normalizeBatch() {
	c.Batch.FileName = strings.TrimSpace(c.Batch.FileName)
	if c.Batch.FileName == "" {
		c.Batch.FileName = defaultBatchFileName
	}
	if len(c.Batch.Headers) == 0 {
		c.Batch.Headers = defaultHeaders()
	}
	for i, header := range c.Batch.Headers {
		c.Batch.Headers[i] = strings.TrimSpace(header)
	}
	c.Batch.ExportBasename = strings.TrimSpace(c.Batch.ExportBasename)
	if c.Batch.ExportBasename == "" {
		c.Batch.ExportBasename = defaultExportBasename
	}
}

func (c *Config) normalizeSnipe() {
	if c.Snipe.URL == "" {
		if value, ok := os.LookupEnv("SNIPE_URL"); ok {
			c.Snipe.URL = value
		}
	}
	if c.Snipe.Token == "" {
		if value, ok := os.LookupEnv("SNIPE_API_TOKEN"); ok {
			c.Snipe.Token = value
		}
	}
	c.Snipe.URL = strings.TrimSpace(c.Snipe.URL)
	c.Snipe.Token = strings.TrimSpace(c.Snipe.Token)
	if c.Snipe.TimeoutSeconds <= 0 {
		c.Snipe.TimeoutSeconds = defaultSnipeTimeout
	}
	c.Snipe.FallbackCategory = strings.TrimSpace(c.Snipe.FallbackCategory)
	if c.Snipe.FallbackCategory == "" {
		c.Snipe.FallbackCategory = defaultFallbackCategory
	}
	c.Snipe.TagPrefix = strings.ToUpper(strings.TrimSpace(c.Snipe.TagPrefix))
	if c.Snipe.TagPrefix == "" {
		c.Snipe.TagPrefix = defaultTagPrefix
	}
	if c.Snipe.TagMaxDigits <= 0 {
		c.Snipe.TagMaxDigits = defaultTagMaxDigits
	}
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
