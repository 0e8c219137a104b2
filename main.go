package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"staygrip/internal/app"
	"staygrip/internal/config"
	"staygrip/internal/controller"
	"staygrip/internal/eventbus"
	"staygrip/internal/logging"
	"staygrip/internal/ui"
)

func main() {
	var (
		configPath string
		startURL   string
		envFile    string
	)
	flag.StringVar(&configPath, "config", "", "Path to config.toml (default: user config dir)")
	flag.StringVar(&startURL, "url", "", "Search URL to open, e.g. \"/properties/Destin, FL?minBedrooms=2\"")
	flag.StringVar(&envFile, "env", ".env", "Dotenv file with STAYGRIP_* overrides")
	flag.Parse()

	// If no URL flag, check for remaining args
	if startURL == "" && flag.NArg() > 0 {
		startURL = flag.Arg(0)
	}

	if err := config.LoadDotEnv(envFile); err != nil {
		fmt.Printf("Error loading %s: %v\n", envFile, err)
		os.Exit(1)
	}

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	bootLogger := logging.NewSlogAdapter(logging.SlogConfig{Writer: os.Stderr, Level: logging.ParseLevel("warn")})
	bus := eventbus.New(bootLogger)
	defer bus.Close()

	if configPath == "" {
		configPath = config.DefaultPath()
	}
	configSvc := config.NewConfigServiceWithBus(bus, configPath)
	cfg, err := configSvc.Load()
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}
	if startURL == "" {
		startURL = cfg.UI.StartURL
	}

	// stdout belongs to the TUI, so the log goes to a file
	logger, closeLog, err := logging.Setup(logging.Options{
		Level:         cfg.Log.Level,
		File:          cfg.Log.File,
		JSON:          cfg.Log.JSON,
		FluentEnabled: cfg.Fluent.Enabled,
		FluentHost:    cfg.Fluent.Host,
		FluentPort:    cfg.Fluent.Port,
		FluentLevel:   cfg.Fluent.Level,
		FluentTag:     cfg.Fluent.Tag,
	})
	if err != nil {
		fmt.Printf("Error setting up logging: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = closeLog() }()
	logger.Info("starting", logging.Fields{"config": configSvc.Path(), "api": cfg.API.BaseURL, "url": startURL})

	// The bridge needs the program and the program needs the model, so the
	// controller reaches the program through send
	var program *tea.Program
	send := func(msg tea.Msg) {
		if program != nil {
			program.Send(msg)
		}
	}
	bridge := ui.NewBridge(send)

	engine := app.NewEngine(cfg, bus, logger, controller.WithView(bridge), controller.WithNotifier(bridge))
	defer engine.Close()

	model := ui.NewModel(ui.Deps{
		Context:       ctx,
		Store:         engine.Store,
		Navigator:     engine.Router,
		Lookup:        engine.Controller,
		FilterOptions: engine.Client,
		Logger:        logger,
	})
	program = tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	model.SetProgram(program)
	unsubscribe := ui.ForwardEvents(bus, send)
	defer unsubscribe()

	stopped, err := engine.Launch(ctx, startURL)
	if err != nil {
		logger.Warn("start url rejected, opening the default search", logging.Fields{"url": startURL, "error": err.Error()})
		if stopped == nil {
			if stopped, err = engine.Launch(ctx, app.SearchRoute); err != nil {
				fmt.Printf("Error opening %s: %v\n", app.SearchRoute, err)
				os.Exit(1)
			}
		}
	}

	if _, err := program.Run(); err != nil && ctx.Err() == nil {
		logger.Error("program exited with error", err, nil)
		fmt.Printf("Error running program: %v\n", err)
		os.Exit(1)
	}
	logger.Info("UI exited normally", nil)

	cancel()
	<-stopped
}
