package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"botconsole/internal/channels"
	"botconsole/internal/config"
	"botconsole/internal/crypto"
	"botconsole/internal/models"
	"botconsole/internal/nlp"
	"botconsole/internal/pipeline"
	"botconsole/internal/realtime"
	"botconsole/internal/responder"
	"botconsole/internal/server"
	"botconsole/internal/store"
)

func main() {
	cfgPath := flag.String("config", "configs/config.yml", "path to config file")
	genKey := flag.Bool("genkey", false, "print a fresh base64 master key and exit")
	flag.Parse()

	if *genKey {
		key, err := crypto.GenerateKey()
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to generate key: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(key)
		return
	}

	// Load configuration
	cfg, err := config.LoadConfig(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	var logger *zap.Logger
	if cfg.Debug {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		panic(err)
	}
	defer func() {
		_ = logger.Sync() // Flushes buffer, if any
	}()

	st, err := openStore(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to open store", zap.Error(err))
	}
	defer st.Close()

	// Seed the singleton bot configuration on first start.
	if _, err := st.BotConfig(); err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			logger.Fatal("Failed to read bot config", zap.Error(err))
		}
		if err := st.InitBotConfig(models.DefaultBotConfig()); err != nil {
			logger.Fatal("Failed to seed bot config", zap.Error(err))
		}
		logger.Info("Seeded default bot configuration")
	}

	var cipher *crypto.Cipher
	if cfg.Auth.MasterKey != "" {
		cipher, err = crypto.NewCipher(cfg.Auth.MasterKey)
		if err != nil {
			logger.Fatal("Failed to initialize credential cipher", zap.Error(err))
		}
		logger.Info("Credential encryption enabled")
	} else {
		logger.Warn("No master key configured, platform credentials are stored in plaintext")
	}

	registry := channels.NewRegistry(cfg.Channels.VerifyToken, logger)
	classifier := nlp.NewClassifier()
	selector := responder.NewSelector(classifier, st, logger)
	hub := realtime.NewHub(st, cfg, logger)
	pipe := pipeline.New(st, selector, registry, cipher, hub, logger)

	// Context for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	go hub.Run(ctx)

	srv := server.NewServer(server.Deps{
		Config:     cfg,
		Store:      st,
		Registry:   registry,
		Pipeline:   pipe,
		Hub:        hub,
		Classifier: classifier,
		Selector:   selector,
		Cipher:     cipher,
	}, logger)

	go func() {
		if err := srv.Run(":" + cfg.Server.Port); err != nil {
			logger.Error("Server stopped", zap.Error(err))
			cancel()
		}
	}()

	<-ctx.Done()
	logger.Info("Application stopped.")
}

func openStore(cfg *config.Config, logger *zap.Logger) (store.Store, error) {
	switch cfg.Store.Backend {
	case "memory":
		logger.Info("Using in-memory store")
		return store.NewMemoryStore(), nil
	case "postgres":
		pg, err := store.NewPostgresStore(cfg.Store.URL, logger)
		if err != nil {
			return nil, err
		}
		if err := pg.Migrate(logger); err != nil {
			pg.Close()
			return nil, err
		}
		return pg, nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}
