package config

const (
	defaultTargetFolder        = "~/Downloads"
	defaultMethod              = MethodTypeDate
	defaultRecursive           = false
	defaultDeleteEmpty         = true
	defaultWatchMode           = false
	defaultStateDir            = "~/.local/share/shelf"
	defaultLogDir              = "~/.local/share/shelf/logs"
	defaultSettleDelayMillis   = 800
	defaultLiveIntervalSeconds = 2
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
	defaultLogRetentionDays    = 30
)

// Organize methods accepted in the method field.
const (
	MethodTypeDate = "type_date"
	MethodDateType = "date_type"
	MethodType     = "type"
)

func defaultIgnorePatterns() []string {
	return []string{
		".DS_Store",
		"*.tmp",
		"*.part",
		"*.crdownload",
		"Thumbs.db",
	}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		TargetFolder: defaultTargetFolder,
		Method:       defaultMethod,
		Recursive:    defaultRecursive,
		DeleteEmpty:  defaultDeleteEmpty,
		WatchMode:    defaultWatchMode,
		CustomRules:  []CustomRule{},
		Paths: Paths{
			StateDir: defaultStateDir,
			LogDir:   defaultLogDir,
		},
		Watch: Watch{
			SettleDelayMillis:   defaultSettleDelayMillis,
			LiveIntervalSeconds: defaultLiveIntervalSeconds,
			IgnorePatterns:      defaultIgnorePatterns(),
			IgnoreHidden:        false,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
