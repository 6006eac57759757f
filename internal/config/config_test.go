package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() error = %v", err)
	}
	if cfg.Hyprland.DefaultSpaces != 5 {
		t.Errorf("DefaultSpaces = %d, want 5", cfg.Hyprland.DefaultSpaces)
	}
	if cfg.Coffee.Notification != 0 {
		t.Errorf("Coffee.Notification = %v, want reminder disabled", cfg.Coffee.Notification)
	}
	if cfg.Coffee.Backend != "screensaver" {
		t.Errorf("Coffee.Backend = %q, want %q", cfg.Coffee.Backend, "screensaver")
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg, err := Load(path)

	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	want := Default()
	if cfg.Battery.Path != want.Battery.Path {
		t.Errorf("Battery.Path = %q, want %q", cfg.Battery.Path, want.Battery.Path)
	}
	if cfg.Monitor.Interval != want.Monitor.Interval {
		t.Errorf("Monitor.Interval = %v, want %v", cfg.Monitor.Interval, want.Monitor.Interval)
	}
	if cfg.CoffeeIcons() != want.CoffeeIcons() {
		t.Errorf("CoffeeIcons() = %+v, want %+v", cfg.CoffeeIcons(), want.CoffeeIcons())
	}
	if cfg.Brightness.Path != "/sys/class/backlight" {
		t.Errorf("Brightness.Path = %q", cfg.Brightness.Path)
	}
	if len(cfg.Lock) != 1 || cfg.Lock[0] != "hyprlock" {
		t.Errorf("Lock = %v, want [hyprlock]", cfg.Lock)
	}
	if cfg.Mic.Muted != want.Mic.Muted || len(cfg.Mic.Icons) != 1 {
		t.Errorf("Mic = %+v, want %+v", cfg.Mic, want.Mic)
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
general:
  log_level: debug
  eww_config: eww
autostart:
  - waybar
  - nm-applet
coffee:
  coffee: C
  notification: 15m
battery:
  path: ~/bat
  events:
    - state: Discharging
      charge: 10
      notify: Battery low
lock:
  - swaylock -f
brightness:
  path: backlight
hyprland:
  default_spaces: 3
`)

	cfg, err := Load(path)

	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	home, _ := os.UserHomeDir()
	tests := []struct {
		name string
		got  any
		want any
	}{
		{"LogLevel", cfg.General.LogLevel, "debug"},
		{"EwwConfig", cfg.General.EwwConfig, filepath.Join(filepath.Dir(path), "eww")},
		{"Autostart", strings.Join(cfg.Autostart, ","), "waybar,nm-applet"},
		{"Coffee", cfg.Coffee.Coffee, "C"},
		{"Relax keeps default", cfg.Coffee.Relax, Default().Coffee.Relax},
		{"Notification", cfg.Coffee.Notification, 15 * time.Minute},
		{"BatteryPath", cfg.Battery.Path, filepath.Join(home, "bat")},
		{"Events", len(cfg.Battery.Events), 1},
		{"Lock", strings.Join(cfg.Lock, ","), "swaylock -f"},
		{"BrightnessPath", cfg.Brightness.Path, filepath.Join(filepath.Dir(path), "backlight")},
		{"DefaultSpaces", cfg.Hyprland.DefaultSpaces, 3},
		{"SettleDelay keeps default", cfg.Hyprland.SettleDelay, 5 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
			}
		})
	}
	if ev := cfg.Battery.Events[0]; ev.State != "Discharging" || ev.Charge != 10 || ev.Notify != "Battery low" {
		t.Errorf("Events[0] = %+v", ev)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "coffee:\n  notification: 15m\n")
	t.Setenv("GLUE_COFFEE_NOTIFICATION", "30s")
	t.Setenv("GLUE_GENERAL_LOG_LEVEL", "warn")

	cfg, err := Load(path)

	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Coffee.Notification != 30*time.Second {
		t.Errorf("Coffee.Notification = %v, want 30s", cfg.Coffee.Notification)
	}
	if cfg.General.LogLevel != "warn" {
		t.Errorf("LogLevel = %q, want %q", cfg.General.LogLevel, "warn")
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"bad yaml", "coffee: [", "read config"},
		{"bad level", "general:\n  log_level: loud\n", "invalid log_level"},
		{"bad backend", "coffee:\n  backend: xss\n", "invalid coffee.backend"},
		{"bad interval", "monitor:\n  interval: 0s\n", "monitor.interval"},
		{"bad duration", "coffee:\n  notification: soon\n", "decode config"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.content)

			_, err := Load(path)

			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q should contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
	}

	for _, tt := range tests {
		cfg := &Configuration{General: General{LogLevel: tt.in}}
		got, err := cfg.Level()
		if err != nil {
			t.Errorf("Level(%q) error = %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("Level(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestWriteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "glue", "config.yaml")

	if err := WriteDefault(path); err != nil {
		t.Fatalf("WriteDefault() error = %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() of written defaults error = %v", err)
	}
	if cfg.Hyprland.SettleDelay != Default().Hyprland.SettleDelay {
		t.Errorf("SettleDelay = %v, want %v", cfg.Hyprland.SettleDelay, Default().Hyprland.SettleDelay)
	}

	if err := WriteDefault(path); !os.IsExist(err) {
		t.Errorf("second WriteDefault() error = %v, want file exists", err)
	}
}

func TestWatch_ReloadsOnWrite(t *testing.T) {
	path := writeConfig(t, "coffee:\n  coffee: A\n")
	var mu sync.Mutex
	var got []string

	err := Watch(path, slog.New(slog.DiscardHandler), func(cfg *Configuration) {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, cfg.Coffee.Coffee)
	})
	if err != nil {
		t.Fatalf("Watch() error = %v", err)
	}

	if err := os.WriteFile(path, []byte("coffee:\n  coffee: B\n"), 0o644); err != nil {
		t.Fatalf("rewrite config: %v", err)
	}

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		mu.Lock()
		n := len(got)
		last := ""
		if n > 0 {
			last = got[n-1]
		}
		mu.Unlock()
		if last == "B" {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("onChange was not called with the new configuration")
}

func TestWatch_MissingFile(t *testing.T) {
	err := Watch(filepath.Join(t.TempDir(), "none.yaml"), slog.New(slog.DiscardHandler), func(*Configuration) {
		t.Error("onChange must not run")
	})

	if err != nil {
		t.Errorf("Watch() error = %v, want nil", err)
	}
}
