package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/nstehr/soy/model"
	"github.com/nstehr/soy/rules"
)

const (
	TransportUnix      = "unix"
	TransportWebsocket = "websocket"
)

var ErrUnknownTransport = errors.New("unknown transport")

// Config is everything soy reads at startup. Zero fields in the file keep
// their defaults.
type Config struct {
	Race       string     `yaml:"race"`
	Transport  string     `yaml:"transport"`
	Socket     string     `yaml:"socket"`
	Listen     string     `yaml:"listen"`
	LogLevel   string     `yaml:"logLevel"`
	JournalDir string     `yaml:"journalDir"` // empty disables the journal
	Plan       rules.Plan `yaml:"plan"`

	// ReadTimeout drops a websocket bridge silent for this long, such as
	// "90s". Pings reset it. Zero never times out.
	ReadTimeout time.Duration `yaml:"readTimeout"`
}

func Default() Config {
	return Config{
		Race:      string(model.RaceRandom),
		Transport: TransportUnix,
		Socket:    "/tmp/soy.sock",
		Listen:    "127.0.0.1:8089",
		LogLevel:  "info",
		Plan:      rules.DefaultPlan(),
	}
}

// Load reads the YAML file at path over the defaults. An empty path
// returns the defaults.
func Load(path string) (Config, error) {
	c := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return c, err
		}
		if err := yaml.Unmarshal(raw, &c); err != nil {
			return c, fmt.Errorf("%s: %w", path, err)
		}
	}
	if err := c.Validate(); err != nil {
		return c, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Validate reports every invalid field and clamps the plan.
func (c *Config) Validate() error {
	var errs []error
	if _, err := model.ParseRace(c.Race); err != nil {
		errs = append(errs, err)
	}
	switch c.Transport {
	case TransportUnix:
		if c.Socket == "" {
			errs = append(errs, errors.New("unix transport needs a socket path"))
		}
	case TransportWebsocket:
		if c.Listen == "" {
			errs = append(errs, errors.New("websocket transport needs a listen address"))
		}
		if c.ReadTimeout < 0 {
			errs = append(errs, fmt.Errorf("read timeout %s is negative", c.ReadTimeout))
		}
	default:
		errs = append(errs, fmt.Errorf("%w %q", ErrUnknownTransport, c.Transport))
	}
	if _, err := c.Level(); err != nil {
		errs = append(errs, err)
	}
	c.Plan.Validate()
	return errors.Join(errs...)
}

// Level parses LogLevel as an slog level name such as "debug" or "warn".
func (c Config) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("log level: %w", err)
	}
	return l, nil
}

// DefaultRace is the configured race, used when the host does not resolve one.
func (c Config) DefaultRace() model.Race {
	r, err := model.ParseRace(c.Race)
	if err != nil {
		return model.RaceRandom
	}
	return r
}
