package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/sydlexius/crate/internal/catalog"
	"github.com/sydlexius/crate/internal/catalog/jellyfin"
	"github.com/sydlexius/crate/internal/classify"
	"github.com/sydlexius/crate/internal/cleanup"
	"github.com/sydlexius/crate/internal/config"
	"github.com/sydlexius/crate/internal/event"
	"github.com/sydlexius/crate/internal/logging"
	"github.com/sydlexius/crate/internal/playlist"
	"github.com/sydlexius/crate/internal/recommend"
	"github.com/sydlexius/crate/internal/recommend/spotify"
	"github.com/sydlexius/crate/internal/remote"
	"github.com/sydlexius/crate/internal/session"
)

const defaultConfigPath = "crate.yaml"

// libraryCatalog is everything crate needs from the media server.
type libraryCatalog interface {
	catalog.Service
	catalog.TrackFinder
	catalog.PlaylistCreator
	catalog.Rescanner
}

type commandContext struct {
	configFlag *string
	jsonFlag   *bool

	configOnce sync.Once
	config     *config.Config
	configErr  error

	// Constructors for the external services. Tests replace them.
	newCatalog     func(cfg *config.Config, logger *slog.Logger) (libraryCatalog, error)
	newRecommender func(cfg *config.Config, logger *slog.Logger) (recommend.Service, error)
	dialRemote     func(ctx context.Context, cfg *config.Config, password string, logger *slog.Logger) (remote.FileService, error)
}

func newCommandContext(configFlag *string, jsonFlag *bool) *commandContext {
	return &commandContext{
		configFlag:     configFlag,
		jsonFlag:       jsonFlag,
		newCatalog:     newJellyfinCatalog,
		newRecommender: newSpotifyRecommender,
		dialRemote:     dialRemoteFiles,
	}
}

func (c *commandContext) configPath() string {
	if c.configFlag != nil {
		if p := strings.TrimSpace(*c.configFlag); p != "" {
			return p
		}
	}
	if p := os.Getenv("CR_CONFIG_PATH"); p != "" {
		return p
	}
	return defaultConfigPath
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		c.config, c.configErr = config.Load(c.configPath())
	})
	return c.config, c.configErr
}

func (c *commandContext) jsonOutput() bool {
	return c.jsonFlag != nil && *c.jsonFlag
}

// app is the wired service graph for one command invocation.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	logs     *logging.Manager
	catalog  libraryCatalog
	sessions *session.Store
	bus      *event.Bus
	audit    *event.Audit
	cleanup  *cleanup.Service
	closers  []func() error
}

// newApp wires the services. console overrides where logs go; CLI commands
// log to stderr so stdout stays parseable.
func (c *commandContext) newApp(console string) (*app, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}

	logCfg := cfg.Logging
	if console != "" {
		logCfg.Console = console
	}
	logManager, logger := logging.NewManager(logCfg)
	a := &app{cfg: cfg, logger: logger, logs: logManager}
	a.closers = append(a.closers, logManager.Close)

	cat, err := c.newCatalog(cfg, logger)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.catalog = cat

	whitelist, err := classify.LoadWhitelist(cfg.Classify.WhitelistFile)
	if err != nil {
		a.Close()
		return nil, err
	}
	whitelist = append(whitelist, cfg.Classify.Whitelist...)

	a.sessions = session.NewStore(time.Duration(cfg.Session.TTLMinutes)*time.Minute, logger)
	a.bus = event.NewBus(logger, 256)
	a.audit = event.NewAudit(logger, 100)
	a.audit.Attach(a.bus)
	go a.bus.Start()
	a.closers = append(a.closers, func() error { a.bus.Stop(); return nil })

	a.cleanup = cleanup.NewService(cat, a.sessions, a.bus, classify.NewEngine(whitelist...), cleanup.Options{
		Threshold:     cfg.Dedupe.Threshold,
		PairThreshold: cfg.Dedupe.PairThreshold,
		Concurrency:   cfg.Dedupe.MergeConcurrency,
	}, logger)

	if cfg.Spotify.Configured() {
		recs, err := c.newRecommender(cfg, logger)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.cleanup.SetGenerator(playlist.NewGenerator(recs, cat, logger))
	}

	return a, nil
}

// connectRemote dials the media server host and enables playlist-file
// cleanup.
func (c *commandContext) connectRemote(ctx context.Context, a *app, password string) error {
	if !a.cfg.SSH.Configured() {
		return catalog.Configurationf("ssh host, user and music_path are required for remote playlist files")
	}
	files, err := c.dialRemote(ctx, a.cfg, password, a.logger)
	if err != nil {
		return err
	}
	a.closers = append(a.closers, files.Close)
	a.cleanup.SetFileService(files)
	return nil
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil && a.logger != nil {
		a.logger.Debug("closing", slog.String("error", err.Error()))
	}
}

func newJellyfinCatalog(cfg *config.Config, logger *slog.Logger) (libraryCatalog, error) {
	if !cfg.Jellyfin.Configured() {
		return nil, catalog.Configurationf("jellyfin url and api_key are required (CR_JELLYFIN_URL, CR_JELLYFIN_API_KEY)")
	}
	client, err := jellyfin.New(cfg.Jellyfin.URL, cfg.Jellyfin.APIKey, cfg.Jellyfin.UserID, logger)
	if err != nil {
		return nil, fmt.Errorf("creating jellyfin client: %w", err)
	}
	return client, nil
}

func newSpotifyRecommender(cfg *config.Config, logger *slog.Logger) (recommend.Service, error) {
	client, err := spotify.New(spotify.Config{
		ClientID:          cfg.Spotify.ClientID,
		ClientSecret:      cfg.Spotify.ClientSecret,
		Market:            cfg.Spotify.Market,
		RequestsPerSecond: cfg.Spotify.RequestsPerSecond,
	}, nil, logger)
	if err != nil {
		return nil, err
	}
	return client, nil
}

func dialRemoteFiles(ctx context.Context, cfg *config.Config, password string, logger *slog.Logger) (remote.FileService, error) {
	sshCfg := remote.SSHConfig{
		Host:                  cfg.SSH.Host,
		Port:                  cfg.SSH.Port,
		User:                  cfg.SSH.User,
		Password:              cfg.SSH.Password,
		KeyPath:               cfg.SSH.KeyPath,
		KnownHosts:            cfg.SSH.KnownHosts,
		InsecureIgnoreHostKey: cfg.SSH.InsecureIgnoreHostKey,
	}
	if password != "" {
		sshCfg.Password = password
	}
	runner, err := remote.Dial(ctx, sshCfg, logger)
	if err != nil {
		return nil, err
	}
	files, err := remote.NewFiles(runner, cfg.SSH.MusicPath, logger)
	if err != nil {
		runner.Close() //nolint:errcheck
		return nil, err
	}
	return files, nil
}
