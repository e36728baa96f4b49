// Package config assembles settings from defaults, an optional YAML file
// and the environment, in increasing order of precedence. A .env file is
// loaded into the environment first.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"energy_report/internal/analysis"
	"energy_report/internal/ingest"
)

// Device is one Home Assistant entity polled by the collector.
type Device struct {
	EntityID string `yaml:"entity_id"`
	Name     string `yaml:"name"`
}

// Config holds every setting of the CLI, the server and the collector.
type Config struct {
	DataPath          string
	OutputPath        string
	SelectionFile     string
	CorrectTimestamps bool
	DailyReports      bool
	Timezone          string
	BindAddr          string

	HAURL        string
	HAToken      string
	PollInterval time.Duration
	Devices      []Device

	MQTTBroker      string
	MQTTUsername    string
	MQTTPassword    string
	MQTTTopicPrefix string

	// File is the YAML file the settings were read from, if any.
	File      string
	Encodings []ingest.Encoding
	Constants analysis.Constants
}

// fileConfig is the layout of the YAML file.
type fileConfig struct {
	DataPath          string             `yaml:"data_path"`
	OutputPath        string             `yaml:"output_path"`
	SelectionFile     string             `yaml:"selection_file"`
	CorrectTimestamps *bool              `yaml:"correct_timestamps"`
	DailyReports      *bool              `yaml:"daily_reports"`
	Timezone          string             `yaml:"timezone"`
	Encodings         []string           `yaml:"encodings"`
	Constants         analysis.Constants `yaml:"constants"`
	Collector         struct {
		PollInterval string   `yaml:"poll_interval"`
		Devices      []Device `yaml:"devices"`
	} `yaml:"collector"`
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		DataPath:          "data",
		OutputPath:        "reports",
		CorrectTimestamps: true,
		DailyReports:      true,
		Timezone:          "UTC",
		BindAddr:          ":5000",
		PollInterval:      time.Minute,
		MQTTTopicPrefix:   "energy_report",
		Encodings:         ingest.DefaultFallbacks,
		Constants:         analysis.DefaultConstants(),
	}
}

// LoadDotEnv loads the given .env files into the environment without
// overriding variables that are already set. Missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("loading %s: %w", p, err)
		}
	}
	return nil
}

// FromEnv builds the configuration from the process environment.
func FromEnv() (Config, error) {
	return Load(os.LookupEnv)
}

// Load builds the configuration using lookup for environment variables.
// REPORT_CONFIG names an optional YAML file applied before the variables.
func Load(lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()

	if path, ok := lookup("REPORT_CONFIG"); ok && path != "" {
		if err := cfg.applyFile(path); err != nil {
			return cfg, err
		}
	}
	if err := cfg.applyEnv(lookup); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config %s: %w", path, err)
	}
	fc := fileConfig{Constants: c.Constants}
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parsing config %s: %w", path, err)
	}

	c.File = path
	setString(&c.DataPath, fc.DataPath)
	setString(&c.OutputPath, fc.OutputPath)
	setString(&c.SelectionFile, fc.SelectionFile)
	setString(&c.Timezone, fc.Timezone)
	if fc.CorrectTimestamps != nil {
		c.CorrectTimestamps = *fc.CorrectTimestamps
	}
	if fc.DailyReports != nil {
		c.DailyReports = *fc.DailyReports
	}
	if len(fc.Encodings) > 0 {
		c.Encodings = make([]ingest.Encoding, len(fc.Encodings))
		for i, e := range fc.Encodings {
			c.Encodings[i] = ingest.Encoding(strings.ToLower(e))
		}
	}
	c.Constants = fc.Constants
	if fc.Collector.PollInterval != "" {
		d, err := time.ParseDuration(fc.Collector.PollInterval)
		if err != nil {
			return fmt.Errorf("parsing config %s: collector.poll_interval: %w", path, err)
		}
		c.PollInterval = d
	}
	if len(fc.Collector.Devices) > 0 {
		c.Devices = fc.Collector.Devices
	}
	return nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	str("DATA_PATH", &c.DataPath)
	str("OUTPUT_PATH", &c.OutputPath)
	str("SELECTION_FILE", &c.SelectionFile)
	str("REPORT_TIMEZONE", &c.Timezone)
	str("BIND_ADDR", &c.BindAddr)
	str("HA_URL", &c.HAURL)
	str("HA_TOKEN", &c.HAToken)
	str("MQTT_BROKER", &c.MQTTBroker)
	str("MQTT_USERNAME", &c.MQTTUsername)
	str("MQTT_PASSWORD", &c.MQTTPassword)
	str("MQTT_TOPIC_PREFIX", &c.MQTTTopicPrefix)
	c.HAURL = strings.TrimRight(c.HAURL, "/")

	for key, dst := range map[string]*bool{
		"CORRECT_TIMESTAMPS": &c.CorrectTimestamps,
		"DAILY_REPORTS":      &c.DailyReports,
	} {
		v, ok := lookup(key)
		if !ok || v == "" {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = b
	}

	if v, ok := lookup("POLL_INTERVAL"); ok && v != "" {
		d, err := parseInterval(v)
		if err != nil {
			return fmt.Errorf("POLL_INTERVAL: %w", err)
		}
		c.PollInterval = d
	}
	return nil
}

// parseInterval accepts a Go duration or a bare number of seconds.
func parseInterval(v string) (time.Duration, error) {
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	return time.ParseDuration(v)
}

// Validate checks the settings that cannot be defaulted.
func (c Config) Validate() error {
	if _, err := c.Location(); err != nil {
		return err
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive, got %s", c.PollInterval)
	}
	for _, e := range c.Encodings {
		if _, err := e.Decode(nil); err != nil {
			return fmt.Errorf("encodings: %w", err)
		}
	}
	return nil
}

// Location resolves Timezone.
func (c Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// IngestOptions returns the loader options for this configuration.
func (c Config) IngestOptions() ingest.Options {
	opts := ingest.DefaultOptions()
	opts.CorrectTimestamps = c.CorrectTimestamps
	opts.Fallbacks = c.Encodings
	if loc, err := c.Location(); err == nil {
		opts.Location = loc
	}
	return opts
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
