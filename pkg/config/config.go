// Package config resolves the settings shared by every oifits command from,
// in decreasing priority, command-line flags, OIFITS_* environment variables,
// an optional config file, and built-in defaults.
package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	oierr "oifits/pkg/error"
	"oifits/pkg/logging"
)

// EnvPrefix is prepended to environment variable names: log.level is read
// from OIFITS_LOG_LEVEL.
const EnvPrefix = "OIFITS"

// Keys
const (
	KeyLogLevel   = "log.level"
	KeyLogFormat  = "log.format"
	KeyLogFile    = "log.file"
	KeyMaxReports = "check.max_reports"
)

var logFormats = []string{"text", "json"}

// Config is the resolved configuration.
type Config struct {
	Log        logging.Config
	MaxReports int
}

// New returns a viper instance with defaults and environment binding.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault(KeyLogLevel, "warn")
	v.SetDefault(KeyLogFormat, "text")
	v.SetDefault(KeyLogFile, "")
	v.SetDefault(KeyMaxReports, 10)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// FlagSet returns the global flags. Bind them with BindFlags after parsing
// has been set up.
func FlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("global", pflag.ContinueOnError)
	fs.String("config", "", "config file (yaml, toml or json)")
	fs.String("log-level", "warn", "log level: debug, info, warn or error")
	fs.String("log-format", "text", "log format: text or json")
	fs.String("log-file", "", "write logs to this file instead of stderr")
	fs.Int("max-reports", 10, "maximum breach locations listed per check")
	return fs
}

// BindFlags binds the global flags in fs to their keys.
func BindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for key, name := range map[string]string{
		KeyLogLevel:   "log-level",
		KeyLogFormat:  "log-format",
		KeyLogFile:    "log-file",
		KeyMaxReports: "max-reports",
	} {
		f := fs.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("bind %s: %w", name, err)
		}
	}
	return nil
}

// Load reads the optional config file at path and resolves the settings.
func Load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, oierr.Wrap(err, oierr.CodeReadFailed, "Load", "config").WithDetail("%s", path)
		}
	}

	format := strings.ToLower(v.GetString(KeyLogFormat))
	if !slices.Contains(logFormats, format) {
		return nil, oierr.Newf(oierr.ErrCategoryUsage, oierr.CodeBadConfig,
			"invalid value for %s: %s, possible choices are: %s",
			KeyLogFormat, format, strings.Join(logFormats, ", "))
	}

	c := &Config{
		Log: logging.Config{
			Level:      logging.ParseLevel(v.GetString(KeyLogLevel)),
			Format:     format,
			OutputPath: v.GetString(KeyLogFile),
		},
		MaxReports: v.GetInt(KeyMaxReports),
	}
	if c.MaxReports < 0 {
		return nil, oierr.Newf(oierr.ErrCategoryUsage, oierr.CodeBadConfig,
			"%s must not be negative: %d", KeyMaxReports, c.MaxReports)
	}
	return c, nil
}
