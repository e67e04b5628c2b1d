// Package config resolves the settings of the CLI from defaults, an optional
// config file, a .env file and the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/naka-gawa/github-recap/internal/browser"
	"github.com/naka-gawa/github-recap/internal/capture"
	"github.com/naka-gawa/github-recap/internal/gateway"
	"github.com/naka-gawa/github-recap/internal/server"
)

// Server modes.
const (
	ModeProcess   = "process"
	ModeInProcess = "inprocess"
)

// EnvPrefix prefixes every environment override except PORT.
const EnvPrefix = "GITHUB_RECAP"

// Config is the validated configuration.
type Config struct {
	WebRoot    string `mapstructure:"web-root"`
	OutDir     string `mapstructure:"out-dir"`
	DataFile   string `mapstructure:"data-file"`
	Port       int    `mapstructure:"port"`
	StoryPort  int    `mapstructure:"story-port"`
	ServerMode string `mapstructure:"server-mode"`
	Headless   bool   `mapstructure:"headless"`
	BrowserBin string `mapstructure:"browser-bin"`

	ServerTimeout   time.Duration `mapstructure:"server-timeout"`
	NavigateTimeout time.Duration `mapstructure:"navigate-timeout"`
	SelectorTimeout time.Duration `mapstructure:"selector-timeout"`
	VisibleTimeout  time.Duration `mapstructure:"visible-timeout"`
	DataTimeout     time.Duration `mapstructure:"data-timeout"`
	Settle          time.Duration `mapstructure:"settle"`
	StorySettle     time.Duration `mapstructure:"story-settle"`
}

// SetDefaults registers the default of every key on v.
func SetDefaults(v *viper.Viper) {
	d := capture.DefaultOptions()
	v.SetDefault("web-root", "web")
	v.SetDefault("out-dir", d.OutDir)
	v.SetDefault("data-file", gateway.DefaultRecapFile)
	v.SetDefault("port", server.DefaultPort)
	v.SetDefault("story-port", 4174)
	v.SetDefault("server-mode", ModeProcess)
	v.SetDefault("headless", true)
	v.SetDefault("browser-bin", "")
	v.SetDefault("server-timeout", d.ServerTimeout)
	v.SetDefault("navigate-timeout", d.NavigateTimeout)
	v.SetDefault("selector-timeout", d.SelectorTimeout)
	v.SetDefault("visible-timeout", d.VisibleTimeout)
	v.SetDefault("data-timeout", d.DataTimeout)
	v.SetDefault("settle", d.Settle)
	v.SetDefault("story-settle", d.StorySettle)
}

// Load reads .env files, the config file (if any) and the environment into v
// and returns the validated result. A missing .env or config file is not an
// error.
func Load(v *viper.Viper, configFile string, envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load env file: %w", err)
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(".github-recap")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("port", "PORT", EnvPrefix+"_PORT"); err != nil {
		return nil, fmt.Errorf("failed to bind PORT: %w", err)
	}
	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the values viper cannot.
func (c *Config) Validate() error {
	switch c.ServerMode {
	case ModeProcess, ModeInProcess:
	default:
		return fmt.Errorf("invalid server-mode %q: must be %q or %q", c.ServerMode, ModeProcess, ModeInProcess)
	}
	for name, port := range map[string]int{"port": c.Port, "story-port": c.StoryPort} {
		if port < 0 || port > 65535 {
			return fmt.Errorf("invalid %s %d", name, port)
		}
	}
	if c.WebRoot == "" {
		return errors.New("web-root must not be empty")
	}
	return nil
}

// Capture returns the capture options of a run against port.
func (c *Config) Capture(port int) capture.Options {
	return capture.Options{
		OutDir:          c.OutDir,
		DataFile:        c.DataFile,
		Port:            port,
		ServerTimeout:   c.ServerTimeout,
		NavigateTimeout: c.NavigateTimeout,
		SelectorTimeout: c.SelectorTimeout,
		VisibleTimeout:  c.VisibleTimeout,
		DataTimeout:     c.DataTimeout,
		Settle:          c.Settle,
		StorySettle:     c.StorySettle,
	}
}

// Browser returns the browser settings.
func (c *Config) Browser() browser.Config {
	return browser.Config{Headless: c.Headless, Bin: c.BrowserBin}
}

// Server returns the asset server settings for port.
func (c *Config) Server(port int) server.Config {
	return server.Config{Root: c.WebRoot, Port: port, DefaultData: c.DataFile}
}
