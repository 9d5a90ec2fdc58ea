package config

const (
	defaultDataDir          = "~/.local/share/crcscan/data"
	defaultArchiveDir       = "~/.local/share/crcscan/completed_scans"
	defaultLogDir           = "~/.local/share/crcscan/logs"
	defaultAPIBind          = "127.0.0.1:7921"
	defaultBasePath         = "/CRC"
	defaultBatchFileName    = "current_scan.csv"
	defaultExportBasename   = "cph-crc"
	defaultSnipeTimeout     = 5
	defaultFallbackCategory = "Computer"
	defaultTagPrefix        = "CPH"
	defaultTagMaxDigits     = 8
	defaultNotifyTimeout    = 10
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
)

func defaultHeaders() []string {
	return []string{"Equipment Type", "Item Description", "Serial Number", "Temple Tag"}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:    defaultDataDir,
			ArchiveDir: defaultArchiveDir,
			LogDir:     defaultLogDir,
			APIBind:    defaultAPIBind,
			BasePath:   defaultBasePath,
		},
		Batch: Batch{
			FileName:       defaultBatchFileName,
			Headers:        defaultHeaders(),
			ExportBasename: defaultExportBasename,
		},
		Snipe: Snipe{
			VerifySSL:        true,
			TimeoutSeconds:   defaultSnipeTimeout,
			FallbackCategory: defaultFallbackCategory,
			TagPrefix:        defaultTagPrefix,
			TagMaxDigits:     defaultTagMaxDigits,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
			Finalize:       true,
			Errors:         true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
