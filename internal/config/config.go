// Package config loads crate's settings from a YAML file and CR_*
// environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/sydlexius/crate/internal/catalog"
	"github.com/sydlexius/crate/internal/logging"
	"github.com/sydlexius/crate/internal/similarity"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Jellyfin JellyfinConfig `yaml:"jellyfin"`
	Spotify  SpotifyConfig  `yaml:"spotify"`
	SSH      SSHConfig      `yaml:"ssh"`
	Dedupe   DedupeConfig   `yaml:"dedupe"`
	Classify ClassifyConfig `yaml:"classify"`
	Session  SessionConfig  `yaml:"session"`
	Logging  logging.Config `yaml:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port     int    `yaml:"port"`
	BasePath string `yaml:"base_path"`
	// RateLimit is the number of mutating API requests allowed per client
	// per minute. Zero disables the limit.
	RateLimit int `yaml:"rate_limit"`
}

// JellyfinConfig identifies the media server.
type JellyfinConfig struct {
	URL    string `yaml:"url"`
	APIKey string `yaml:"api_key"`
	UserID string `yaml:"user_id"`
}

// Configured reports whether enough is set to build a client.
func (j JellyfinConfig) Configured() bool { return j.URL != "" && j.APIKey != "" }

// SpotifyConfig holds client-credentials settings.
type SpotifyConfig struct {
	ClientID          string  `yaml:"client_id"`
	ClientSecret      string  `yaml:"client_secret"`
	Market            string  `yaml:"market"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
}

// Configured reports whether credentials are present.
func (s SpotifyConfig) Configured() bool { return s.ClientID != "" && s.ClientSecret != "" }

// SSHConfig describes the media server host for playlist file cleanup.
type SSHConfig struct {
	Host                  string `yaml:"host"`
	Port                  int    `yaml:"port"`
	User                  string `yaml:"user"`
	Password              string `yaml:"password"`
	KeyPath               string `yaml:"key_path"`
	KnownHosts            string `yaml:"known_hosts"`
	InsecureIgnoreHostKey bool   `yaml:"insecure_ignore_host_key"`
	MusicPath             string `yaml:"music_path"`
}

// Configured reports whether a host, user and music path are set.
func (s SSHConfig) Configured() bool { return s.Host != "" && s.User != "" && s.MusicPath != "" }

// DedupeConfig holds the fuzzy-matching knobs.
type DedupeConfig struct {
	Threshold        int `yaml:"threshold"`
	PairThreshold    int `yaml:"pair_threshold"`
	MergeConcurrency int `yaml:"merge_concurrency"`
}

// ClassifyConfig extends the junk-name whitelist.
type ClassifyConfig struct {
	Whitelist     []string `yaml:"whitelist"`
	WhitelistFile string   `yaml:"whitelist_file"`
}

// SessionConfig controls how long scan results are kept.
type SessionConfig struct {
	TTLMinutes int `yaml:"ttl_minutes"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:      8080,
			BasePath:  "/",
			RateLimit: 60,
		},
		Spotify: SpotifyConfig{
			Market:            "US",
			RequestsPerSecond: 5,
		},
		SSH: SSHConfig{
			Port: 22,
		},
		Dedupe: DedupeConfig{
			Threshold:        80,
			PairThreshold:    85,
			MergeConcurrency: 1,
		},
		Session: SessionConfig{
			TTLMinutes: 30,
		},
		Logging: logging.DefaultConfig(),
	}
}

// Load reads config from a YAML file (if it exists) and overrides with
// environment variables. Environment variables take precedence.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.loadFromFile(path); err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
	}

	if err := cfg.loadFromEnv(); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func (c *Config) loadFromFile(path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // path from operator flag
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return yaml.Unmarshal(data, c)
}

func (c *Config) loadFromEnv() error {
	strs := map[string]*string{
		"CR_BASE_PATH":             &c.Server.BasePath,
		"CR_JELLYFIN_URL":          &c.Jellyfin.URL,
		"CR_JELLYFIN_API_KEY":      &c.Jellyfin.APIKey,
		"CR_JELLYFIN_USER_ID":      &c.Jellyfin.UserID,
		"CR_SPOTIFY_CLIENT_ID":     &c.Spotify.ClientID,
		"CR_SPOTIFY_CLIENT_SECRET": &c.Spotify.ClientSecret,
		"CR_SPOTIFY_MARKET":        &c.Spotify.Market,
		"CR_SSH_HOST":              &c.SSH.Host,
		"CR_SSH_USER":              &c.SSH.User,
		"CR_SSH_PASSWORD":          &c.SSH.Password,
		"CR_SSH_KEY_PATH":          &c.SSH.KeyPath,
		"CR_SSH_KNOWN_HOSTS":       &c.SSH.KnownHosts,
		"CR_MUSIC_PATH":            &c.SSH.MusicPath,
		"CR_WHITELIST_FILE":        &c.Classify.WhitelistFile,
		"CR_LOG_LEVEL":             &c.Logging.Level,
		"CR_LOG_FORMAT":            &c.Logging.Format,
		"CR_LOG_FILE":              &c.Logging.FilePath,
	}
	for name, dst := range strs {
		if v := os.Getenv(name); v != "" {
			*dst = v
		}
	}

	ints := map[string]*int{
		"CR_PORT":                &c.Server.Port,
		"CR_RATE_LIMIT":          &c.Server.RateLimit,
		"CR_SSH_PORT":            &c.SSH.Port,
		"CR_DEDUPE_THRESHOLD":    &c.Dedupe.Threshold,
		"CR_PAIR_THRESHOLD":      &c.Dedupe.PairThreshold,
		"CR_MERGE_CONCURRENCY":   &c.Dedupe.MergeConcurrency,
		"CR_SESSION_TTL_MINUTES": &c.Session.TTLMinutes,
	}
	for name, dst := range ints {
		v := os.Getenv(name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return catalog.Configurationf("%s=%q is not an integer", name, v)
		}
		*dst = n
	}

	if v := os.Getenv("CR_SSH_INSECURE_IGNORE_HOST_KEY"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return catalog.Configurationf("CR_SSH_INSECURE_IGNORE_HOST_KEY=%q is not a boolean", v)
		}
		c.SSH.InsecureIgnoreHostKey = b
	}
	if v := os.Getenv("CR_WHITELIST"); v != "" {
		for _, name := range strings.Split(v, ",") {
			if name = strings.TrimSpace(name); name != "" {
				c.Classify.Whitelist = append(c.Classify.Whitelist, name)
			}
		}
	}
	return nil
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return catalog.Configurationf("invalid port: %d", c.Server.Port)
	}
	if c.Server.RateLimit < 0 {
		return catalog.Configurationf("rate_limit must not be negative")
	}
	if !similarity.FinderRange.Contains(c.Dedupe.Threshold) {
		return catalog.Configurationf("dedupe.threshold %d outside %d-%d",
			c.Dedupe.Threshold, similarity.FinderRange.Min, similarity.FinderRange.Max)
	}
	if !similarity.PairRange.Contains(c.Dedupe.PairThreshold) {
		return catalog.Configurationf("dedupe.pair_threshold %d outside %d-%d",
			c.Dedupe.PairThreshold, similarity.PairRange.Min, similarity.PairRange.Max)
	}
	if c.Dedupe.MergeConcurrency < 1 {
		c.Dedupe.MergeConcurrency = 1
	}
	if c.Session.TTLMinutes < 1 {
		return catalog.Configurationf("session.ttl_minutes must be at least 1")
	}
	if c.SSH.Port < 1 || c.SSH.Port > 65535 {
		return catalog.Configurationf("invalid ssh port: %d", c.SSH.Port)
	}
	if err := c.Logging.Validate(); err != nil {
		return catalog.Configurationf("%v", err)
	}
	c.Server.BasePath = strings.TrimRight(c.Server.BasePath, "/")
	return nil
}
