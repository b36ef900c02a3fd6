// Package config loads console configuration from a yaml file with
// environment fallbacks. The agent key is env-only so it never lands in a
// config file.
package config

import (
	"flag"
	"os"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"recallctl/internal/chains"
)

const (
	defaultBaseURL         = "https://api.competitions.recall.network"
	defaultAgentName       = "agent"
	defaultRefreshInterval = 20 * time.Second
	defaultSlippage        = "0.3"
	defaultBatchPause      = 2 * time.Second
	defaultOrderLogDir     = "./wal/orders"
)

var defaultStables = []string{"USDC", "USDbC", "USDT"}

// Config is the explicit configuration passed into every constructor. No
// package below main reads the environment.
type Config struct {
	BaseURL         string
	AgentName       string
	AgentKey        string
	RefreshInterval time.Duration
	// Slippage stays a validated string: the API payload wants it verbatim.
	Slippage      string
	Stables       []string
	BatchPause    time.Duration
	StrictNumbers bool
	MetricsAddr   string
	OrderLogDir   string
	Venues        []chains.Venue
	Watch         bool
}

type configTmp struct {
	BaseURL         string         `yaml:"base_url,omitempty"`
	AgentName       string         `yaml:"agent_name,omitempty"`
	RefreshInterval string         `yaml:"refresh_interval,omitempty"`
	Slippage        string         `yaml:"slippage,omitempty"`
	Stables         []string       `yaml:"stables,omitempty"`
	BatchPause      string         `yaml:"batch_pause,omitempty"`
	StrictNumbers   bool           `yaml:"strict_numbers,omitempty"`
	MetricsAddr     string         `yaml:"metrics_addr,omitempty"`
	OrderLogDir     string         `yaml:"order_log_dir,omitempty"`
	Venues          []chains.Venue `yaml:"venues,omitempty"`
}

// Get parses flags and builds the configuration.
func Get() (Config, error) {
	path := flag.String("config", "", "path to yaml config")
	watch := flag.Bool("watch", false, "non-interactive dashboard, auto-refreshing")
	flag.Parse()

	cfg, err := Load(*path)
	if err != nil {
		return Config{}, err
	}
	cfg.Watch = *watch
	return cfg, nil
}

// Load builds the configuration from env defaults, overlaid with the yaml
// file at path when given.
func Load(path string) (Config, error) {
	cfg := fromEnv()

	if path != "" {
		f, err := os.ReadFile(path)
		if err != nil {
			return Config{}, errors.Wrap(err, "read config file")
		}
		var tmp configTmp
		if err := yaml.Unmarshal(f, &tmp); err != nil {
			return Config{}, errors.Wrap(err, "parse yaml config")
		}
		if err := cfg.apply(&tmp); err != nil {
			return Config{}, err
		}
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func fromEnv() Config {
	cfg := Config{
		BaseURL:         defaultBaseURL,
		AgentName:       defaultAgentName,
		AgentKey:        os.Getenv("AGENT1_KEY"),
		RefreshInterval: defaultRefreshInterval,
		Slippage:        defaultSlippage,
		Stables:         defaultStables,
		BatchPause:      defaultBatchPause,
		OrderLogDir:     defaultOrderLogDir,
	}

	if v := os.Getenv("RECALL_API_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("AGENT1_NAME"); v != "" {
		cfg.AgentName = v
	}
	if v := os.Getenv("REFRESH_INTERVAL"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			cfg.RefreshInterval = time.Duration(secs) * time.Second
		}
	}
	if v := os.Getenv("SLIPPAGE"); v != "" {
		cfg.Slippage = v
	}

	return cfg
}

func (c *Config) apply(tmp *configTmp) error {
	if tmp.BaseURL != "" {
		c.BaseURL = tmp.BaseURL
	}
	if tmp.AgentName != "" {
		c.AgentName = tmp.AgentName
	}
	if tmp.RefreshInterval != "" {
		d, err := time.ParseDuration(tmp.RefreshInterval)
		if err != nil {
			return errors.Wrapf(err, "incorrect 'refresh_interval' in yaml config: %s", tmp.RefreshInterval)
		}
		c.RefreshInterval = d
	}
	if tmp.Slippage != "" {
		c.Slippage = tmp.Slippage
	}
	if len(tmp.Stables) > 0 {
		c.Stables = tmp.Stables
	}
	if tmp.BatchPause != "" {
		d, err := time.ParseDuration(tmp.BatchPause)
		if err != nil {
			return errors.Wrapf(err, "incorrect 'batch_pause' in yaml config: %s", tmp.BatchPause)
		}
		c.BatchPause = d
	}
	if tmp.StrictNumbers {
		c.StrictNumbers = true
	}
	if tmp.MetricsAddr != "" {
		c.MetricsAddr = tmp.MetricsAddr
	}
	if tmp.OrderLogDir != "" {
		c.OrderLogDir = tmp.OrderLogDir
	}
	if len(tmp.Venues) > 0 {
		c.Venues = tmp.Venues
	}
	return nil
}

func (c *Config) validate() error {
	if c.AgentKey == "" {
		return errors.New("AGENT1_KEY is not set")
	}
	if _, err := strconv.ParseFloat(c.Slippage, 64); err != nil {
		// keep the console usable on a bad override
		c.Slippage = defaultSlippage
	}
	if c.RefreshInterval <= 0 {
		c.RefreshInterval = defaultRefreshInterval
	}
	if c.BatchPause < 0 {
		c.BatchPause = defaultBatchPause
	}
	return nil
}

// Registry builds the venue registry: configured venues when present,
// otherwise the built-in table.
func (c *Config) Registry() *chains.Registry {
	if len(c.Venues) > 0 {
		return chains.New(c.Venues)
	}
	return chains.Default()
}
