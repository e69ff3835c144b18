package config

const (
	defaultThreshold       = 5
	defaultManualThreshold = 2
	defaultDBFilename      = ".dupicheck.db"
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"
)

func defaultExtensions() []string {
	return []string{".jpg", ".jpeg", ".png", ".bmp", ".gif", ".webp"}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Matching: Matching{
			Threshold:       defaultThreshold,
			ManualThreshold: defaultManualThreshold,
		},
		Cache: Cache{
			DBFilename: defaultDBFilename,
		},
		Hashing: Hashing{
			Workers:    0,
			Extensions: defaultExtensions(),
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
