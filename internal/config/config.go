package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/kk-code-lab/pagemon/internal/pmerr"
	"gopkg.in/yaml.v2"
)

const (
	configDir  string = "pagemon"
	configFile string = "config.yml"

	MinZoom       = 1
	MaxZoom       = 999
	MinResetTicks = 1
	MaxResetTicks = 1000
	MinDelayMicro = 1
	MaxDelayMicro = 10_000_000

	DefaultDelayMicro = 15000
	DefaultResetTicks = 10
)

// Options holds every setting that can come from the config file or the
// command line.
type Options struct {
	PID  int    `yaml:"-"`
	Name string `yaml:"-"`

	// DelayMicro is the pause between frames, in microseconds.
	DelayMicro int `yaml:"delay"`
	// ResetTicks is the number of frames between soft-dirty resets.
	ResetTicks int    `yaml:"ticks"`
	Zoom       int    `yaml:"zoom"`
	AutoZoom   bool   `yaml:"auto-zoom"`
	ReadAll    bool   `yaml:"read-all"`
	VMStats    bool   `yaml:"vmstats"`
	MaxPages   uint64 `yaml:"max-pages,omitempty"`
	ProcRoot   string `yaml:"proc-root,omitempty"`
}

// Defaults returns the built-in settings.
func Defaults() Options {
	return Options{
		DelayMicro: DefaultDelayMicro,
		ResetTicks: DefaultResetTicks,
		Zoom:       MinZoom,
	}
}

// Delay returns the inter-frame delay.
func (o Options) Delay() time.Duration {
	return time.Duration(o.DelayMicro) * time.Microsecond
}

// DefaultPath returns $XDG_CONFIG_HOME/pagemon/config.yml (or the platform
// equivalent).
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configDir, configFile), nil
}

// Load reads path on top of Defaults. A missing file is not an error.
func Load(path string) (Options, error) {
	opts := Defaults()
	if path == "" {
		return opts, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return opts, nil
		}
		return opts, pmerr.Wrap(pmerr.BadOption, err, "cannot read config %s", path)
	}
	if err := yaml.UnmarshalStrict(data, &opts); err != nil {
		return opts, pmerr.Wrap(pmerr.BadOption, err, "cannot decode config %s", path)
	}
	return opts, nil
}

// Save writes opts to path, creating the directory if needed.
func Save(path string, opts Options) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	out, err := yaml.Marshal(opts)
	if err != nil {
		return err
	}
	return os.WriteFile(path, out, 0600)
}

// Validate checks every bounded option.
func (o Options) Validate() error {
	switch {
	case o.PID < 0:
		return pmerr.New(pmerr.BadOption, "invalid pid %d", o.PID)
	case o.DelayMicro < MinDelayMicro || o.DelayMicro > MaxDelayMicro:
		return pmerr.New(pmerr.BadOption, "delay must be between %d and %d microseconds", MinDelayMicro, MaxDelayMicro)
	case o.ResetTicks < MinResetTicks || o.ResetTicks > MaxResetTicks:
		return pmerr.New(pmerr.BadOption, "ticks must be between %d and %d", MinResetTicks, MaxResetTicks)
	case o.Zoom < MinZoom || o.Zoom > MaxZoom:
		return pmerr.New(pmerr.BadOption, "zoom must be between %d and %d", MinZoom, MaxZoom)
	}
	return nil
}
