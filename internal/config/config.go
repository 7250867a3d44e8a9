// Package config loads settings from defaults, an optional YAML file, a .env
// file and RECITE_* environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/jwulff/recite/internal/checkin"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. RECITE_SERVICE_BASE_URL.
const EnvPrefix = "RECITE"

// Config is the full application configuration.
type Config struct {
	Service  ServiceConfig  `mapstructure:"service"`
	Poll     PollConfig     `mapstructure:"poll"`
	CheckIn  CheckInConfig  `mapstructure:"checkin"`
	Recorder RecorderConfig `mapstructure:"recorder"`
	Player   PlayerConfig   `mapstructure:"player"`
	History  HistoryConfig  `mapstructure:"history"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServiceConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type PollConfig struct {
	Interval time.Duration `mapstructure:"interval"`
}

type CheckInConfig struct {
	// UploadDuration is "elapsed" or "none"; see checkin.UploadDuration.
	UploadDuration string `mapstructure:"upload_duration"`
}

type RecorderConfig struct {
	FFmpeg     string `mapstructure:"ffmpeg"`
	Format     string `mapstructure:"format"`
	Device     string `mapstructure:"device"`
	SampleRate int    `mapstructure:"sample_rate"`
}

type PlayerConfig struct {
	Command string `mapstructure:"command"`
}

type HistoryConfig struct {
	// Path of the SQLite journal; empty disables history.
	Path string `mapstructure:"path"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	// File receives panel logs; CLI commands log to stderr.
	File string `mapstructure:"file"`
	JSON bool   `mapstructure:"json"`
}

// UploadDurationMode parses CheckIn.UploadDuration.
func (c *Config) UploadDurationMode() checkin.UploadDuration {
	mode, err := checkin.ParseUploadDuration(c.CheckIn.UploadDuration)
	if err != nil {
		return checkin.UploadElapsed
	}
	return mode
}

// Dir is the per-user config and state directory.
func Dir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "recite")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("service.base_url", "http://localhost:3000")
	v.SetDefault("service.timeout", 60*time.Second)
	v.SetDefault("poll.interval", 5*time.Second)
	v.SetDefault("checkin.upload_duration", string(checkin.UploadElapsed))

	format, device := defaultInput()
	v.SetDefault("recorder.ffmpeg", "ffmpeg")
	v.SetDefault("recorder.format", format)
	v.SetDefault("recorder.device", device)
	v.SetDefault("recorder.sample_rate", 16000)
	v.SetDefault("player.command", "ffplay")

	v.SetDefault("history.path", filepath.Join(Dir(), "history.sqlite"))
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", filepath.Join(Dir(), "recite.log"))
	v.SetDefault("log.json", false)
}

// defaultInput picks the ffmpeg capture format and device for this platform.
func defaultInput() (format, device string) {
	switch runtime.GOOS {
	case "darwin":
		return "avfoundation", ":0"
	case "windows":
		return "dshow", "audio=default"
	default:
		return "pulse", "default"
	}
}

// Options control where Load looks.
type Options struct {
	// ConfigFile is an explicit YAML path; empty searches the default locations.
	ConfigFile string
	// EnvFile is an explicit .env path; empty tries ./.env.
	EnvFile string
	// Overrides are viper keys set above every other source, e.g. from flags.
	Overrides map[string]any
}

// Load resolves configuration. A missing config or .env file is not an error.
func Load(opts Options) (*Config, *viper.Viper, error) {
	if err := loadEnvFile(opts.EnvFile); err != nil {
		return nil, nil, err
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(Dir())
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || opts.ConfigFile != "" {
			return nil, nil, fmt.Errorf("read config: %w", err)
		}
	}

	for key, value := range opts.Overrides {
		v.Set(key, value)
	}

	cfg, err := decode(v)
	if err != nil {
		return nil, nil, err
	}
	return cfg, v, nil
}

// decode unmarshals and validates the merged settings.
func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that cfg is usable and returns every problem found.
func Validate(cfg *Config) error {
	var errs []error

	u, err := url.Parse(cfg.Service.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("service.base_url %q must be an absolute URL", cfg.Service.BaseURL))
	}
	if cfg.Service.Timeout < 0 {
		errs = append(errs, fmt.Errorf("service.timeout must not be negative"))
	}
	if cfg.Poll.Interval <= 0 {
		errs = append(errs, fmt.Errorf("poll.interval must be positive, got %s", cfg.Poll.Interval))
	}
	if _, err := checkin.ParseUploadDuration(cfg.CheckIn.UploadDuration); err != nil {
		errs = append(errs, fmt.Errorf("checkin.upload_duration: %w", err))
	}
	if cfg.Recorder.Device == "" {
		errs = append(errs, fmt.Errorf("recorder.device must be set"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}

func loadEnvFile(path string) error {
	explicit := path != ""
	if !explicit {
		path = ".env"
	}
	if _, err := os.Stat(path); err != nil {
		if explicit {
			return fmt.Errorf("env file: %w", err)
		}
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}
