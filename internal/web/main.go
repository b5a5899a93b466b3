// Package web wires the fiber application: middleware, health and metrics endpoints
// and the role management handlers.
package web

import (
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	recoverer "github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/GoPowerDNS-Admin/GoRoles-Admin/internal/config"
	fiberlogger "github.com/GoPowerDNS-Admin/GoRoles-Admin/internal/logger/adapter/fiber"
	"github.com/GoPowerDNS-Admin/GoRoles-Admin/internal/web/handler"
	"github.com/GoPowerDNS-Admin/GoRoles-Admin/internal/web/handler/admin/role"
)

const (
	// CheckAlivePath answers load balancer health checks.
	CheckAlivePath = "/checkalive"
	// MetricsPath exposes the prometheus metrics.
	MetricsPath = "/metrics"
	// NavigationPath lists the registered admin navigation entries.
	NavigationPath = handler.AdminPath + "/navigation"
)

// Service represents the web service.
type Service struct {
	App          *fiber.App
	cfg          *config.Config
	fastShutDown bool
	alive        atomic.Bool
}

// Start starts the web service on the given address and blocks until it stops.
func (s *Service) Start(addr string) error {
	var doneFiber = make(chan error, 1)

	go func() {
		err := s.App.Listen(addr, fiber.ListenConfig{DisableStartupMessage: !s.cfg.DevMode})
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			doneFiber <- err
			return
		}

		doneFiber <- nil
	}()

	return <-doneFiber // wait for fiber to stop
}

// WaitShutdown waits for SIGINT or SIGTERM and shuts the server down gracefully.
func (s *Service) WaitShutdown() {
	irqSig := make(chan os.Signal, 1)
	signal.Notify(irqSig, syscall.SIGINT, syscall.SIGTERM)

	sig := <-irqSig
	log.Info().Msgf("shutdown request (signal: %v)", sig)

	s.Shutdown()
}

// Shutdown fails the check alive endpoint for the configured time, then stops the server.
func (s *Service) Shutdown() {
	// Graceful shutdown for reverse proxies: set status to fail, so checkalive returns fail.
	if !s.fastShutDown {
		log.Info().Msgf(
			"graceful shutdown: return 503 while %d seconds to let LB to remove this pod from active targets",
			s.cfg.Webserver.ShutDownTime,
		)

		s.alive.Store(false)
		time.Sleep(time.Duration(s.cfg.Webserver.ShutDownTime) * time.Second)
	}

	log.Info().Msg("stopping http server ...")

	if err := s.App.Shutdown(); err != nil {
		log.Error().Err(err).Msg("")
	}

	log.Info().Msg("http server was stopped ... good bye...")
}

// Alive reports whether the check alive endpoint answers OK.
func (s *Service) Alive() bool {
	return s.alive.Load()
}

// New creates a new web service with the given configuration and dependencies.
func New(cfg *config.Config, deps handler.Deps) (*Service, error) {
	if cfg == nil {
		panic("config cannot be nil")
	}

	if deps.Engine == nil || deps.Query == nil || deps.Navigation == nil {
		panic(handler.ErrNilACDFatalLogMsg)
	}

	appName := cfg.Title
	if appName == "" {
		appName = "GoRoles-Admin"
	}

	app := fiber.New(
		fiber.Config{
			ReadBufferSize: 8192,
			AppName:        appName,
			CaseSensitive:  true,
			Immutable:      true,
			ErrorHandler:   handler.ErrorHandler,
		},
	)

	service := &Service{
		cfg:          cfg,
		App:          app,
		fastShutDown: cfg.DevMode,
	}
	service.alive.Store(true)

	if !cfg.Webserver.DisableRecover {
		app.Use(recoverer.New(recoverer.Config{EnableStackTrace: cfg.DevMode}))
	}

	if cfg.Webserver.CleanPath {
		app.Use(cleanPath)
	}

	actorHeader := cfg.Webserver.ActorHeader
	if actorHeader == "" {
		actorHeader = handler.DefaultActorHeader
	}

	app.Use(fiberlogger.New(fiberlogger.Config{
		Config:        cfg.Log,
		CheckAliveURI: CheckAlivePath,
		ActorHeader:   actorHeader,
	}))

	app.Get(CheckAlivePath, func(c fiber.Ctx) error {
		if !service.alive.Load() {
			return c.Status(fiber.StatusServiceUnavailable).SendString("shutting down")
		}

		return c.SendString("OK")
	})

	app.Get(MetricsPath, adaptor.HTTPHandler(promhttp.Handler()))

	app.Use(handler.Actor(actorHeader))

	app.Get(NavigationPath, func(c fiber.Ctx) error {
		return handler.OK(c, deps.Navigation.Entries(c.Query("section")), "")
	})

	// init handlers, they register their own routes and navigation entries
	for _, h := range []handler.Service{&role.Service{}} {
		if err := h.Init(app, cfg, deps); err != nil {
			return nil, err
		}
	}

	app.Get(handler.RootPath, func(c fiber.Ctx) error {
		return c.Redirect().To(NavigationPath)
	})

	return service, nil
}

// cleanPath collapses duplicate slashes and dot segments before routing.
func cleanPath(c fiber.Ctx) error {
	if p := c.Path(); p != "/" {
		if cleaned := path.Clean(p); cleaned != p {
			c.Path(cleaned)
		}
	}

	return c.Next()
}
