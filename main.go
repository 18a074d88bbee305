package main

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"irc4osu/avatar"
	"irc4osu/config"
	"irc4osu/directory"
	"irc4osu/osuapi"
	"irc4osu/session"
	"irc4osu/storage"
	"irc4osu/tabs"
	"irc4osu/ui"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "irc4osu: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := os.MkdirAll(cfg.DataDir, 0o700); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	// The terminal owns stdout, so logs go to a file in the data dir.
	logCfg := zap.NewProductionConfig()
	logCfg.OutputPaths = []string{filepath.Join(cfg.DataDir, "irc4osu.log")}
	logger, err := logCfg.Build()
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()

	kv, err := storage.Open(filepath.Join(cfg.DataDir, "irc4osu.db"))
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer kv.Close()

	api := osuapi.New(cfg.APIBase, cfg.AvatarBase)

	avatars, err := avatar.New(cfg.CacheDir, api)
	if err != nil {
		return fmt.Errorf("init avatar cache: %w", err)
	}

	credStore, err := storage.NewCredentialStore(kv, cfg.DataDir, api)
	if err != nil {
		return fmt.Errorf("init credential store: %w", err)
	}

	settings, err := storage.LoadSettings(kv)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	app := ui.NewApp(kv, settings)

	sess := session.New(session.Options{
		Server:         cfg.Server,
		DefaultChannel: cfg.DefaultChannel,
	}, credStore, app.NotificationsEnabled, avatars, tabs.NewRegistry(), directory.New(), app, logger)
	app.Bind(sess)

	creds, err := credStore.Load()
	if err != nil {
		logger.Error("stored credentials unreadable", zap.Error(err))
		return fmt.Errorf("load stored credentials: %w", err)
	}

	return app.Run(creds)
}
