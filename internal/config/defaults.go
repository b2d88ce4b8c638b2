package config

const (
	defaultLogDir         = "~/.local/share/vpdkit/logs"
	defaultCacheDir       = "~/.cache/vpdkit"
	defaultMediaDirSuffix = "_media"
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir:   defaultLogDir,
			CacheDir: defaultCacheDir,
		},
		Organize: Organize{
			MediaDirSuffix: defaultMediaDirSuffix,
			MoveFiles:      false,
			CopyUnused:     true,
			KeepBackup:     true,
		},
		Repair: Repair{
			StemFallback: true,
			UseIndex:     false,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
