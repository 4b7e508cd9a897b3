package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/mgpai22/kaal/internal/timecode"
)

const fileName = "kaal.toml"

// Config holds user tunables. It is read-only: kaal never writes it back.
type Config struct {
	Seek      SeekConfig      `toml:"seek"`
	Timecodes TimecodesConfig `toml:"timecodes"`
	Audio     AudioConfig     `toml:"audio"`
}

type SeekConfig struct {
	// alignment applied to seek targets: prev, next or near
	Align   string `toml:"align"`
	Precise bool   `toml:"precise"`
}

type TimecodesConfig struct {
	ProbeTimeout Duration `toml:"probe_timeout"`
	Watch        bool     `toml:"watch"`
}

type AudioConfig struct {
	// initial zoom factor of the spectrogram window, 0..1
	InitialZoom float64 `toml:"initial_zoom"`
}

// time.Duration that decodes from strings such as "30s"
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

func DefaultConfig() Config {
	return Config{
		Seek: SeekConfig{
			Align:   "near",
			Precise: false,
		},
		Timecodes: TimecodesConfig{
			ProbeTimeout: Duration{2 * time.Minute},
		},
		Audio: AudioConfig{
			InitialZoom: 1,
		},
	}
}

// alignment mode for seeks
func (c Config) SeekMode() (timecode.Mode, error) {
	return timecode.ParseMode(c.Seek.Align)
}

func (c Config) Validate() error {
	if _, err := c.SeekMode(); err != nil {
		return fmt.Errorf("seek.align: %w", err)
	}
	if c.Timecodes.ProbeTimeout.Duration < 0 {
		return fmt.Errorf("timecodes.probe_timeout must not be negative")
	}
	if c.Audio.InitialZoom <= 0 || c.Audio.InitialZoom > 1 {
		return fmt.Errorf("audio.initial_zoom must be in (0, 1], got %g", c.Audio.InitialZoom)
	}
	return nil
}

// Path returns the config file to use: $KAAL_CONFIG, then ./kaal.toml, then
// ~/.config/kaal/config.toml.
func Path() string {
	if p := os.Getenv("KAAL_CONFIG"); p != "" {
		return p
	}
	if _, err := os.Stat(fileName); err == nil {
		return fileName
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return fileName
	}
	return filepath.Join(home, ".config", "kaal", "config.toml")
}

// Load reads path over the defaults. A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return DefaultConfig(), fmt.Errorf("failed to parse config file: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return DefaultConfig(), fmt.Errorf("unknown config key %q in %s", undecoded[0].String(), path)
	}

	if err := cfg.Validate(); err != nil {
		return DefaultConfig(), fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}
