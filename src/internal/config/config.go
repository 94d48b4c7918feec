package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cast"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"bibinspect/src/internal/logging"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "BIBINSPECT"

// Config holds run settings that do not come from the input file itself.
//
// Resolution order (highest first): CLI flags, BIBINSPECT_* environment
// variables, the config file, defaults.
type Config struct {
	Optional bool
	Rules    string
	Jobs     int
	LogLevel slog.Level
}

// Default returns the built-in settings.
func Default() Config {
	return Config{Jobs: 1, LogLevel: slog.LevelInfo}
}

// Load resolves Config. flags may be nil; when it carries an "optional" flag
// that flag is bound to the optional key. The config file is
// $BIBINSPECT_CONFIG when set (and must exist), else .bibinspect.yaml in the
// working or home directory if present.
func Load(flags *pflag.FlagSet) (Config, error) {
	def := Default()
	v := viper.New()
	v.SetDefault("optional", def.Optional)
	v.SetDefault("rules", def.Rules)
	v.SetDefault("jobs", def.Jobs)
	v.SetDefault("log_level", "info")

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	if flags != nil {
		if f := flags.Lookup("optional"); f != nil {
			if err := v.BindPFlag("optional", f); err != nil {
				return Config{}, fmt.Errorf("bind optional flag: %w", err)
			}
		}
	}

	if path := os.Getenv(EnvPrefix + "_CONFIG"); path != "" {
		if _, err := os.Stat(path); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(".bibinspect")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
	}
	if err := v.ReadInConfig(); err != nil {
		var nf viper.ConfigFileNotFoundError
		if !errors.As(err, &nf) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	optional, err := cast.ToBoolE(v.Get("optional"))
	if err != nil {
		return Config{}, fmt.Errorf("config optional: %w", err)
	}
	jobs, err := cast.ToIntE(v.Get("jobs"))
	if err != nil {
		return Config{}, fmt.Errorf("config jobs: %w", err)
	}
	if jobs < 1 {
		return Config{}, fmt.Errorf("config jobs: must be at least 1, got %d", jobs)
	}
	level, err := logging.ParseLevel(v.GetString("log_level"))
	if err != nil {
		return Config{}, fmt.Errorf("config log_level: %w", err)
	}
	return Config{
		Optional: optional,
		Rules:    v.GetString("rules"),
		Jobs:     jobs,
		LogLevel: level,
	}, nil
}
