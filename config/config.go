// Package config carries the option table the rest of this module reads
// from. There is no file format: the core produces no persisted on-disk
// state of its own, so a caller constructs a Config in process and passes
// it to the orchestrator/plugin router directly.
package config

// Config holds the tunables the rest of this module reads from, plus the
// handful of constants referenced inline elsewhere (the port-probing defer
// limit, the CDMA registration poll interval).
type Config struct {
	// MaxTimeouts is the number of consecutive command timeouts on a port
	// before its modem is moved to Failed. Default 3.
	MaxTimeouts int
	// PluginDir is where plugin descriptors are loaded from. The core
	// treats this as an opaque string handed to the plugin loader; no
	// filesystem format is prescribed here.
	PluginDir string
	// InitialEPSBearerAPN is the APN to attach with, or empty for the
	// modem's own default.
	InitialEPSBearerAPN string
	// LogLevel is one of "error", "warn", "info", "debug".
	LogLevel string

	// MaxPortDefers bounds how many discovery-loop cycles a non-interface-0
	// port's probing may be deferred while interface-0 classification is
	// pending. Default 5.
	MaxPortDefers int
	// RegistrationPollInterval is the number of seconds between
	// registration re-checks while Enabled-but-not-Registered. Default 30.
	RegistrationPollInterval int
	// CdmaRegistrationPollInterval is the number of seconds between CDMA
	// registration polls during Register-in-network. Default 3.
	CdmaRegistrationPollInterval int
}

// Default returns the documented defaults for every field that has one.
func Default() Config {
	return Config{
		MaxTimeouts:                  3,
		LogLevel:                     "info",
		MaxPortDefers:                5,
		RegistrationPollInterval:     30,
		CdmaRegistrationPollInterval: 3,
	}
}
