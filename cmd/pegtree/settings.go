package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/clarete/pegtree"
	"github.com/clarete/pegtree/ascii"
)

const (
	// configName is the config file name without extension.
	configName = ".pegtree"
	configType = "yaml"

	envPrefix       = "PEGTREE"
	envKeySeparator = "_"

	noColorKey = "output.no_color"
)

var ErrInvalidSetting = errors.New("invalid setting")

// flagKeys maps command line flags to the settings they override.
var flagKeys = map[string]string{
	"log-level":  "log.level",
	"no-color":   noColorKey,
	"max-depth":  "run.max_depth",
	"max-errors": "recovery.max_errors",
}

// app carries what every command needs once flags are parsed.
type app struct {
	configPath string

	config *pegtree.Config
	logger *logrus.Logger
	theme  ascii.Theme
	color  bool
}

func (a *app) setup(cmd *cobra.Command) error {
	settings, err := loadSettings(a.configPath, cmd.Flags())
	if err != nil {
		return err
	}
	if a.config, err = runnerConfig(settings); err != nil {
		return err
	}
	if a.logger, err = pegtree.NewLogger(cmd.ErrOrStderr(), a.config.GetString("log.level")); err != nil {
		return fmt.Errorf("%w: log.level: %w", ErrInvalidSetting, err)
	}
	a.color = !settings.GetBool(noColorKey)
	a.theme = ascii.NoColors
	if a.color {
		a.theme = ascii.DefaultTheme
	}
	return nil
}

func (a *app) runnerOptions(extra ...pegtree.RunnerOption) []pegtree.RunnerOption {
	return append([]pegtree.RunnerOption{
		pegtree.WithConfig(a.config),
		pegtree.WithLogger(a.logger),
	}, extra...)
}

// loadSettings reads settings from defaults, the config file, the
// environment and flags, the later overriding the earlier.  A missing
// config file is not an error when none was asked for.
func loadSettings(configPath string, flags *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	applyDefaults(v)

	v.SetConfigType(configType)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", envKeySeparator))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName(configName)
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			f := flags.Lookup(name)
			if f == nil || !f.Changed {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("bind flag %s: %w", name, err)
			}
		}
	}
	return v, nil
}

func applyDefaults(v *viper.Viper) {
	defaults := pegtree.NewConfig()
	for _, key := range defaults.Keys() {
		switch defaults.Type(key) {
		case "bool":
			v.SetDefault(key, defaults.GetBool(key))
		case "int":
			v.SetDefault(key, defaults.GetInt(key))
		case "string":
			v.SetDefault(key, defaults.GetString(key))
		}
	}
	v.SetDefault(noColorKey, false)
}

// runnerConfig copies the engine settings out of v.
func runnerConfig(v *viper.Viper) (*pegtree.Config, error) {
	cfg := pegtree.NewConfig()
	for _, key := range cfg.Keys() {
		switch cfg.Type(key) {
		case "bool":
			cfg.SetBool(key, v.GetBool(key))
		case "int":
			n := v.GetInt(key)
			if n < 0 {
				return nil, fmt.Errorf("%w: %s can't be negative", ErrInvalidSetting, key)
			}
			cfg.SetInt(key, n)
		case "string":
			cfg.SetString(key, v.GetString(key))
		}
	}
	return cfg, nil
}
