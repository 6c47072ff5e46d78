package app

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"field-match/internal/config"
	"field-match/internal/delivery/http/middleware"
	"field-match/internal/delivery/http/routes"
	"field-match/internal/dispatch"
	"field-match/internal/engine"
	"field-match/internal/repository"
	"field-match/internal/scheduler"
	"field-match/internal/simulation"
	"field-match/internal/store"
	"field-match/internal/views"
	"field-match/internal/ws"

	"github.com/gofiber/fiber/v3"
)

// App is the composed engine service: store, lifecycle engine, dispatcher,
// views, scheduler and the HTTP/websocket surface on top.
type App struct {
	Fiber *fiber.App

	container  *Container
	store      *store.Store
	engine     *engine.Engine
	views      *views.Views
	dispatcher *dispatch.Dispatcher
	scheduler  *scheduler.Scheduler
	hub        *ws.Hub
	simulator  *simulation.Simulator
	logger     *log.Logger
}

func Bootstrap(cfg config.Config) (*App, func() error, error) {
	logger := log.New(os.Stdout, "", log.LstdFlags)

	container, err := NewContainer(cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	st := store.New(cfg.Engine.ShardCount)
	v := views.New(st, container.Cache, logger)

	hub := ws.NewHub(logger)
	notifier := ws.NewNotifier(hub)

	var archiver engine.Archiver
	if container.DB != nil {
		archiver = repository.NewPostgresMatchArchiveRepository(container.DB)
	}

	eng := engine.New(st, notifier, v, archiver, logger)
	dispatcher := dispatch.New(cfg.Engine.DispatcherWorkers, cfg.Engine.DispatcherBuffer, dispatch.EngineHandler(eng), logger)
	sched := scheduler.New(eng, st, container.Cache, logger, cfg.Engine.SweepInterval, cfg.Engine.RetentionWindow)

	var sim *simulation.Simulator
	if cfg.Engine.SimulationEnabled {
		sim = simulation.New(eng, dispatcher, logger, cfg.Engine.SimulationInterval)
	}

	f := fiber.New(fiber.Config{AppName: cfg.App.AppName})
	f.Use(middleware.NewErrorMiddleware(logger).Middleware())
	f.Use(middleware.NewAccessLogMiddleware(logger).Middleware())
	routes.NewRegistry(eng, v, ws.NewHandler(hub, logger)).Register(f)

	a := &App{
		Fiber:      f,
		container:  container,
		store:      st,
		engine:     eng,
		views:      v,
		dispatcher: dispatcher,
		scheduler:  sched,
		hub:        hub,
		simulator:  sim,
		logger:     logger,
	}

	cleanup := func() error {
		a.dispatcher.Close()
		a.views.Close()
		return a.container.Close()
	}
	return a, cleanup, nil
}

// Start launches the background loops. They stop when ctx is cancelled.
func (a *App) Start(ctx context.Context) {
	go a.hub.Run()
	go a.views.Run(ctx)
	a.dispatcher.Run(ctx)
	go a.scheduler.Run(ctx)
	if a.simulator != nil {
		a.logger.Printf("App | simulation enabled")
		go a.simulator.Run(ctx)
	}
}

// Engine exposes the lifecycle engine for embedding callers and tests.
func (a *App) Engine() *engine.Engine {
	return a.engine
}

// Dispatcher exposes the event intake for embedding callers.
func (a *App) Dispatcher() *dispatch.Dispatcher {
	return a.dispatcher
}

func ListenAddr(port string) (string, error) {
	p := strings.TrimSpace(port)
	if p == "" {
		return "", fmt.Errorf("empty HTTP port")
	}
	if strings.HasPrefix(p, ":") {
		return p, nil
	}
	return ":" + p, nil
}
