package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/rs/zerolog"

	"mapstudio/api"
	"mapstudio/document"
	"mapstudio/plugin"
	"mapstudio/scripting"
	"mapstudio/storage"
	"mapstudio/tools"
)

func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	// Persisted settings seed the flag defaults; flags override per run.
	settings, err := storage.EnsureSettings()
	if err != nil {
		logger.Warn().Err(err).Msg("failed to load settings, using defaults")
	}

	var headless bool
	var scriptsDir string
	var consoleAddr string
	var mapFilePath string
	flag.BoolVar(&headless, "headless", false, "Run without GUI (script console only)")
	flag.StringVar(&scriptsDir, "scripts", settings.ScriptsDir, "Directory of .js tool scripts")
	flag.StringVar(&consoleAddr, "console", settings.ConsoleAddr, "Script console listen address")
	flag.StringVar(&mapFilePath, "file", "", "Map file (.mapz) to open on launch")
	flag.StringVar(&mapFilePath, "f", "", "Map file (.mapz) to open on launch (shorthand)")
	flag.Parse()

	// Support a positional file argument so double-clicking a .mapz passes the path through
	if mapFilePath == "" {
		if args := flag.Args(); len(args) > 0 {
			mapFilePath = args[0]
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	script := scripting.NewManager(logger)
	if err := script.SetupBuiltins(); err != nil {
		logger.Fatal().Err(err).Msg("failed to set up script builtins")
	}

	docs := document.NewManager()
	registry := plugin.NewRegistry()
	toolMgr := tools.NewManager(logger)

	if err := tools.RegisterScriptAPI(script, docs, registry, toolMgr); err != nil {
		logger.Fatal().Err(err).Msg("failed to set up studio script API")
	}

	if mapFilePath != "" {
		cleanPath := filepath.Clean(mapFilePath)
		m, err := storage.LoadMap(cleanPath)
		if err != nil {
			logger.Error().Err(err).Str("file", cleanPath).Msg("failed to open map")
		} else {
			doc := document.NewMapDocument(cleanPath, m)
			docs.AddMap(doc)
			toolMgr.SetScene(&tools.MapScene{Doc: doc})
			toolMgr.SetMapDocument(doc)
			logger.Info().Str("file", cleanPath).Msg("map opened")
		}
	}

	if _, err := os.Stat(scriptsDir); err == nil {
		if err := script.LoadDir(scriptsDir); err != nil {
			logger.Error().Err(err).Str("dir", scriptsDir).Msg("failed to load scripts")
		}
		go func() {
			if err := script.Watch(ctx, scriptsDir); err != nil {
				logger.Warn().Err(err).Msg("script watcher stopped")
			}
		}()
	}

	console := api.NewServer(script, logger)
	go console.Run(ctx)
	go func() {
		if err := console.ListenAndServe(ctx, consoleAddr); err != nil {
			logger.Error().Err(err).Msg("script console failed")
		}
	}()

	if headless {
		script.RunLoop(ctx)
		return
	}

	game := &game{script: script, poller: tools.NewPoller(toolMgr)}
	ebiten.SetWindowSize(settings.WindowWidth, settings.WindowHeight)
	ebiten.SetWindowTitle("MapStudio")
	if err := ebiten.RunGame(game); err != nil {
		logger.Fatal().Err(err).Msg("studio exited")
	}
}

// game drives the per-frame loop: drain queued script work, then poll input.
type game struct {
	script *scripting.Manager
	poller *tools.Poller
}

func (g *game) Update() error {
	g.script.DrainTasks()
	g.poller.Update()
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return outsideWidth, outsideHeight
}
