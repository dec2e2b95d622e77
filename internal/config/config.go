package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. GRADETREND_DATA_PATH.
const EnvPrefix = "GRADETREND"

type Config struct {
	Data    DataConfig    `mapstructure:"data"`
	Output  OutputConfig  `mapstructure:"output"`
	Server  ServerConfig  `mapstructure:"server"`
	DB      DBConfig      `mapstructure:"db"`
	History HistoryConfig `mapstructure:"history"`
	Log     LogConfig     `mapstructure:"log"`
	Tracing TracingConfig `mapstructure:"tracing"`
}

type DataConfig struct {
	Path string `mapstructure:"path"`
}

type OutputConfig struct {
	CSV    string `mapstructure:"csv"`
	Chart  string `mapstructure:"chart"`
	Append bool   `mapstructure:"append"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
	Mode string `mapstructure:"mode"`
}

type DBConfig struct {
	Path string `mapstructure:"path"` // empty resolves via store.DefaultDBPath
}

type HistoryConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

type TracingConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("data.path", "data/student_data.csv")
	v.SetDefault("output.csv", "improvement_rates.csv")
	v.SetDefault("output.chart", "improvement_curve.png")
	v.SetDefault("output.append", false)
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.mode", "release")
	v.SetDefault("db.path", "")
	v.SetDefault("history.enabled", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("tracing.enabled", false)
}

// flagKeys maps command-line flag names to config keys. Only flags present
// on the passed FlagSet are bound.
var flagKeys = map[string]string{
	"db":        "db.path",
	"log-level": "log.level",
	"log-file":  "log.file",
	"data":      "data.path",
	"out":       "output.csv",
	"chart":     "output.chart",
	"append":    "output.append",
	"addr":      "server.addr",
	"mode":      "server.mode",
	"tracing":   "tracing.enabled",
	"history":   "history.enabled",
}

// Load builds the configuration from defaults, an optional YAML file,
// GRADETREND_* environment variables and command-line flags, in increasing
// priority. An explicit configFile must exist; the default search path
// may be empty.
func Load(configFile string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("gradetrend")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir := configHome(); dir != "" {
			v.AddConfigPath(filepath.Join(dir, "gradetrend"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &cfg, nil
}

func configHome() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config")
}
