// Package config loads the kernel's startup configuration: module search
// paths, the default log level, NetSocket timeouts, and Backstage
// settings. Grounded on marmos91-dittofs's pkg/config/config.go — same
// viper setup (env-var override with a PARASOL_ prefix, optional config
// file, defaults applied when absent), scaled down to Parasol's smaller
// set of startup knobs. The original kernel read this data from a
// flat-file "kernel.ini"-style config; viper's INI support (via
// gopkg.in/ini.v1, already in the dependency graph) is used here so that
// legacy-shaped config files continue to load unchanged.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the kernel's startup configuration.
type Config struct {
	Logging  LoggingConfig  `mapstructure:"logging"`
	Modules  ModulesConfig  `mapstructure:"modules"`
	Net      NetConfig      `mapstructure:"net"`
	Backstage BackstageConfig `mapstructure:"backstage"`
}

type LoggingConfig struct {
	Level    string `mapstructure:"level"`
	Colorize bool   `mapstructure:"colorize"`
}

// ModulesConfig lists the directories searched for dynamically loadable
// modules, in order, mirroring the original's MOD_PATH search list.
type ModulesConfig struct {
	SearchPaths []string `mapstructure:"search_paths"`
}

type NetConfig struct {
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
	HandshakeTimeout time.Duration `mapstructure:"handshake_timeout"`
	WriteQueueLimit  int           `mapstructure:"write_queue_limit"`
}

type BackstageConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

func defaults() Config {
	return Config{
		Logging: LoggingConfig{Level: "info", Colorize: true},
		Modules: ModulesConfig{SearchPaths: []string{"./modules"}},
		Net: NetConfig{
			ConnectTimeout:   30 * time.Second,
			HandshakeTimeout: 10 * time.Second,
			WriteQueueLimit:  256,
		},
		Backstage: BackstageConfig{Enabled: false, Port: 0},
	}
}

// Load reads configuration from configPath (an INI file) if set, layers
// PARASOL_ environment variables on top, and falls back to in-code
// defaults for anything unset. A missing configPath is not an error:
// Parasol runs fine on defaults alone, same as the original kernel with
// no kernel.ini present.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("ini")
	v.SetEnvPrefix("PARASOL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	def := defaults()
	v.SetDefault("logging.level", def.Logging.Level)
	v.SetDefault("logging.colorize", def.Logging.Colorize)
	v.SetDefault("modules.search_paths", def.Modules.SearchPaths)
	v.SetDefault("net.connect_timeout", def.Net.ConnectTimeout)
	v.SetDefault("net.handshake_timeout", def.Net.HandshakeTimeout)
	v.SetDefault("net.write_queue_limit", def.Net.WriteQueueLimit)
	v.SetDefault("backstage.enabled", def.Backstage.Enabled)
	v.SetDefault("backstage.port", def.Backstage.Port)

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
				return nil, fmt.Errorf("reading config %s: %w", configPath, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}
	return &cfg, nil
}

// ResolveModule searches Modules.SearchPaths in order for a file named
// name, returning the first match.
func (c *Config) ResolveModule(name string) (string, bool) {
	for _, dir := range c.Modules.SearchPaths {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			return p, true
		}
	}
	return "", false
}
