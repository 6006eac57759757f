package config

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/d2verb/glue/internal/coffee"
	"github.com/d2verb/glue/internal/eww"
	"github.com/d2verb/glue/internal/pathutil"
)

// EnvPrefix prefixes environment overrides, e.g. GLUE_COFFEE_NOTIFICATION.
const EnvPrefix = "GLUE"

// Configuration is the user configuration.
type Configuration struct {
	General    General    `mapstructure:"general" yaml:"general"`
	Autostart  []string   `mapstructure:"autostart" yaml:"autostart"`
	Coffee     Coffee     `mapstructure:"coffee" yaml:"coffee"`
	Battery    Battery    `mapstructure:"battery" yaml:"battery"`
	Volume     Volume     `mapstructure:"volume" yaml:"volume"`
	Mic        Volume     `mapstructure:"mic" yaml:"mic"`
	Brightness Brightness `mapstructure:"brightness" yaml:"brightness"`
	// Lock are the commands `glue lock` runs through the compositor.
	Lock     []string `mapstructure:"lock" yaml:"lock"`
	Hyprland Hyprland `mapstructure:"hyprland" yaml:"hyprland"`
	Monitor  Monitor  `mapstructure:"monitor" yaml:"monitor"`
}

type General struct {
	LogLevel  string   `mapstructure:"log_level" yaml:"log_level"`
	EwwBin    string   `mapstructure:"eww_bin" yaml:"eww_bin"`
	EwwConfig string   `mapstructure:"eww_config" yaml:"eww_config"`
	Windows   []string `mapstructure:"windows" yaml:"windows"`
}

type Coffee struct {
	Coffee string `mapstructure:"coffee" yaml:"coffee"`
	Relax  string `mapstructure:"relax" yaml:"relax"`
	// Notification is the reminder delay. Zero disables the reminder.
	Notification time.Duration `mapstructure:"notification" yaml:"notification"`
	Backend      string        `mapstructure:"backend" yaml:"backend"`
}

type Battery struct {
	Path           string         `mapstructure:"path" yaml:"path"`
	ChargingStates []string       `mapstructure:"charging_states" yaml:"charging_states"`
	Full           string         `mapstructure:"full" yaml:"full"`
	Charging       string         `mapstructure:"charging" yaml:"charging"`
	Empty          string         `mapstructure:"empty" yaml:"empty"`
	Events         []BatteryEvent `mapstructure:"events" yaml:"events"`
}

// BatteryEvent shows Notify when the battery reaches State at Charge percent.
type BatteryEvent struct {
	State  string `mapstructure:"state" yaml:"state"`
	Charge int    `mapstructure:"charge" yaml:"charge"`
	Notify string `mapstructure:"notify" yaml:"notify"`
}

type Volume struct {
	Icons []string `mapstructure:"icons" yaml:"icons"`
	Muted string   `mapstructure:"muted" yaml:"muted"`
}

type Brightness struct {
	// Path is the sysfs class directory holding the backlight devices.
	Path string `mapstructure:"path" yaml:"path"`
}

type Hyprland struct {
	DefaultSpaces  int                `mapstructure:"default_spaces" yaml:"default_spaces"`
	SettleDelay    time.Duration      `mapstructure:"settle_delay" yaml:"settle_delay"`
	WorkspaceIcons eww.WorkspaceIcons `mapstructure:"workspace_icons" yaml:"workspace_icons"`
}

type Monitor struct {
	Interval time.Duration `mapstructure:"interval" yaml:"interval"`
}

// Default returns the built-in configuration.
func Default() *Configuration {
	return &Configuration{
		General: General{
			LogLevel: "info",
			EwwBin:   eww.DefaultBin,
			Windows:  []string{"bar"},
		},
		Coffee: Coffee{
			Coffee:  "\uf0f4",
			Relax:   "\U000f04b2",
			Backend: "screensaver",
		},
		Battery: Battery{
			Path:           "/sys/class/power_supply/BAT0",
			ChargingStates: []string{"\uf244", "\uf243", "\uf242", "\uf241", "\uf240"},
			Full:           "\U000f1425",
			Charging:       "\U000f0084",
			Empty:          "\uf244",
		},
		Volume: Volume{
			Icons: []string{"\uf026", "\uf027", "\uf028"},
			Muted: "\U000f075f",
		},
		Mic: Volume{
			Icons: []string{"\uf130"},
			Muted: "\uf131",
		},
		Brightness: Brightness{Path: "/sys/class/backlight"},
		Lock:       []string{"hyprlock"},
		Hyprland: Hyprland{
			DefaultSpaces: 5,
			SettleDelay:   5 * time.Second,
			WorkspaceIcons: eww.WorkspaceIcons{
				Empty:    "\uf10c",
				Active:   "\uf192",
				Contains: "\uf111",
			},
		},
		Monitor: Monitor{Interval: 2 * time.Second},
	}
}

// CoffeeIcons returns the coffee widget icons.
func (c *Configuration) CoffeeIcons() coffee.Icons {
	return coffee.Icons{Coffee: c.Coffee.Coffee, Relax: c.Coffee.Relax}
}

var logLevels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// Level parses general.log_level.
func (c *Configuration) Level() (slog.Level, error) {
	lvl, ok := logLevels[strings.ToLower(c.General.LogLevel)]
	if !ok {
		return slog.LevelInfo, fmt.Errorf("invalid log_level %q (want debug, info, warn or error)", c.General.LogLevel)
	}
	return lvl, nil
}

// Validate reports configuration values glue cannot run with.
func (c *Configuration) Validate() error {
	var errs []error
	if _, err := c.Level(); err != nil {
		errs = append(errs, err)
	}
	switch c.Coffee.Backend {
	case "screensaver", "logind":
	default:
		errs = append(errs, fmt.Errorf("invalid coffee.backend %q (want screensaver or logind)", c.Coffee.Backend))
	}
	if c.Coffee.Notification < 0 {
		errs = append(errs, fmt.Errorf("coffee.notification must not be negative"))
	}
	if c.Hyprland.DefaultSpaces < 0 {
		errs = append(errs, fmt.Errorf("hyprland.default_spaces must not be negative"))
	}
	if c.Monitor.Interval <= 0 {
		errs = append(errs, fmt.Errorf("monitor.interval must be positive"))
	}
	return errors.Join(errs...)
}

// resolvePaths expands ~/ and config-relative paths.
func (c *Configuration) resolvePaths(baseDir string) error {
	if c.General.EwwConfig != "" {
		p, err := pathutil.ResolvePath(c.General.EwwConfig, baseDir)
		if err != nil {
			return fmt.Errorf("general.eww_config: %w", err)
		}
		c.General.EwwConfig = p
	}
	p, err := pathutil.ResolvePath(c.Battery.Path, baseDir)
	if err != nil {
		return fmt.Errorf("battery.path: %w", err)
	}
	c.Battery.Path = p

	p, err = pathutil.ResolvePath(c.Brightness.Path, baseDir)
	if err != nil {
		return fmt.Errorf("brightness.path: %w", err)
	}
	c.Brightness.Path = p
	return nil
}

// Load reads the configuration: built-in defaults, then the file at path
// when it exists, then GLUE_* environment variables.
func Load(path string) (*Configuration, error) {
	v, err := newViper(path)
	if err != nil {
		return nil, err
	}
	return decode(v, filepath.Dir(path))
}

func newViper(path string) (*viper.Viper, error) {
	defaults, err := yaml.Marshal(Default())
	if err != nil {
		return nil, fmt.Errorf("render defaults: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(defaults)); err != nil {
		return nil, fmt.Errorf("read defaults: %w", err)
	}

	v.SetConfigFile(path)
	if err := v.MergeInConfig(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v, nil
}

func decode(v *viper.Viper, baseDir string) (*Configuration, error) {
	var cfg Configuration
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.resolvePaths(baseDir); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Watch reloads the file at path whenever it is written and passes the new
// configuration to onChange. Invalid edits are logged and skipped. Watching
// a file that does not exist is a no-op.
func Watch(path string, logger *slog.Logger, onChange func(*Configuration)) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}

	v, err := newViper(path)
	if err != nil {
		return err
	}
	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		cfg, err := Load(path)
		if err != nil {
			logger.Warn("config reload failed", "path", e.Name, "error", err)
			return
		}
		logger.Info("config reloaded", "path", e.Name)
		onChange(cfg)
	})
	v.WatchConfig()
	return nil
}

// WriteDefault writes the built-in configuration to path. It refuses to
// overwrite an existing file.
func WriteDefault(path string) error {
	data, err := yaml.Marshal(Default())
	if err != nil {
		return fmt.Errorf("render defaults: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
