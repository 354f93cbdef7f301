package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gridnav/server/internal/config"
	"github.com/gridnav/server/internal/core/event"
	coresys "github.com/gridnav/server/internal/core/system"
	"github.com/gridnav/server/internal/handler"
	"github.com/gridnav/server/internal/nav"
	gonet "github.com/gridnav/server/internal/net"
	"github.com/gridnav/server/internal/net/packet"
	"github.com/gridnav/server/internal/persist"
	"github.com/gridnav/server/internal/scene"
	"github.com/gridnav/server/internal/scripting"
	"github.com/gridnav/server/internal/system"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func printBanner(serverName string) {
	fmt.Println()
	fmt.Println("  gridnav  v0.1.0")
	fmt.Printf("  server: %s\n\n", serverName)
}

func printStat(label string, count int) {
	fmt.Printf("  %-24s %d\n", label, count)
}

func printOK(msg string) {
	fmt.Printf("  %s\n", msg)
}

func run() error {
	// 1. Load config
	cfgPath := "config/server.toml"
	if p := os.Getenv("GRIDNAV_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	printBanner(cfg.Server.Name)

	// 3. Connect to PostgreSQL and run migrations (optional)
	var layoutRepo *persist.LayoutRepo
	if cfg.Database.Enabled {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		db, err := persist.NewDB(ctx, cfg.Database, log)
		if err != nil {
			cancel()
			return fmt.Errorf("database: %w", err)
		}
		defer db.Close()
		printOK("PostgreSQL connected")

		if err := persist.RunMigrations(ctx, db.Pool); err != nil {
			cancel()
			return fmt.Errorf("migrations: %w", err)
		}
		cancel()
		printOK("migrations applied")

		layoutRepo = persist.NewLayoutRepo(db)
	}

	// 4. Build the navigation grid
	navSys := nav.NewSystem(log)
	navSys.Initialize(cfg.World.Width, cfg.World.Depth, cfg.World.GridSize)
	if !navSys.Initialized() {
		return fmt.Errorf("invalid world dimensions %gx%g cell %g",
			cfg.World.Width, cfg.World.Depth, cfg.World.GridSize)
	}
	if cfg.World.SearchRadius > 0 {
		navSys.SetSearchRadius(cfg.World.SearchRadius)
	}
	dims := navSys.Dimensions()
	printStat("grid cells", dims.Cols*dims.Rows)

	ledger := handler.NewObstacleLedger()

	// 5. Load initial obstacles: scene file, Lua scenario, stored layout
	if cfg.World.ScenePath != "" {
		sc, err := scene.Load(cfg.World.ScenePath)
		if err != nil {
			return fmt.Errorf("load scene: %w", err)
		}
		if sc.Skipped() > 0 {
			log.Warn("scene entries skipped",
				zap.String("path", cfg.World.ScenePath),
				zap.Int("skipped", sc.Skipped()),
			)
		}
		for _, f := range sc.Footprints() {
			navSys.AddObstacle(f)
			ledger.Add(f)
		}
		printStat("scene obstacles", len(sc.Footprints()))
	}

	if cfg.Scripting.Enabled {
		luaEngine, err := scripting.NewEngine(cfg.Scripting.ScriptsDir, log)
		if err != nil {
			return fmt.Errorf("lua engine: %w", err)
		}
		defer luaEngine.Close()

		footprints, err := luaEngine.BuildScene(cfg.Scripting.Scenario, cfg.World.Width, cfg.World.Depth)
		if err != nil {
			return fmt.Errorf("lua scene: %w", err)
		}
		for _, f := range footprints {
			navSys.AddObstacle(f)
			ledger.Add(f)
		}
		printStat("scripted obstacles", len(footprints))
	}

	if cfg.World.LayoutName != "" {
		if layoutRepo == nil {
			return fmt.Errorf("layout_name set but database disabled")
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		footprints, err := layoutRepo.LoadLayout(ctx, cfg.World.LayoutName)
		cancel()
		if err != nil {
			return fmt.Errorf("load layout %s: %w", cfg.World.LayoutName, err)
		}
		for _, f := range footprints {
			navSys.AddObstacle(f)
			ledger.Add(f)
		}
		printStat("layout obstacles", len(footprints))
	}

	printStat("blocked cells", navSys.Grid().BlockedCellCount())
	fmt.Println()

	// 6. Create packet handler registry and register handlers
	bus := event.NewBus()
	pktReg := packet.NewRegistry(log)
	deps := &handler.Deps{
		Config:    cfg,
		Log:       log,
		Nav:       navSys,
		Bus:       bus,
		Obstacles: ledger,
		Layouts:   layoutRepo,
	}
	handler.RegisterAll(pktReg, deps)

	// 7. Create network server
	netServer, err := gonet.NewServer(
		cfg.Network.BindAddress,
		cfg.Network.InQueueSize,
		cfg.Network.OutQueueSize,
		cfg.Network.ReadTimeout,
		cfg.Network.WriteTimeout,
		log,
	)
	if err != nil {
		return fmt.Errorf("net server: %w", err)
	}
	go netServer.AcceptLoop()

	// 8. Create systems and register with runner
	store := gonet.NewSessionStore()
	runner := coresys.NewRunner()
	runner.Register(system.NewInputSystem(netServer, pktReg, store, cfg.Network.MaxPacketsPerTick, log))
	runner.Register(system.NewNotifySystem(bus, store, log))
	runner.Register(system.NewOutputSystem(store))

	// 9. Start tick loop
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.Network.TickRate)
	defer ticker.Stop()

	printOK(fmt.Sprintf("listening on %s", netServer.Addr().String()))
	printOK(fmt.Sprintf("tick loop started (tick: %s)", cfg.Network.TickRate))
	fmt.Println()

	for {
		select {
		case <-ticker.C:
			runner.Tick(cfg.Network.TickRate)
		case sig := <-shutdownCh:
			log.Info("shutdown signal received", zap.String("signal", sig.String()))
			netServer.Shutdown()
			navSys.Dispose()
			log.Info("server stopped")
			return nil
		}
	}
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
