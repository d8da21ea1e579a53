package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	definitionhandlers "github.com/rcm-tools/revenue-atlas/pkg/handlers/definitions"
	reporthandlers "github.com/rcm-tools/revenue-atlas/pkg/handlers/reports"
	schedulehandlers "github.com/rcm-tools/revenue-atlas/pkg/handlers/schedules"
	synchandlers "github.com/rcm-tools/revenue-atlas/pkg/handlers/sync"

	atlasmiddleware "github.com/rcm-tools/revenue-atlas/pkg/server/middleware"
	"github.com/rcm-tools/revenue-atlas/pkg/services/definition"
	"github.com/rcm-tools/revenue-atlas/pkg/services/report"
	"github.com/rcm-tools/revenue-atlas/pkg/services/schedule"
	"github.com/rcm-tools/revenue-atlas/pkg/services/sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

const defaultShutdownTimeout = 10 * time.Second

type WebAPI struct {
	router          *chi.Mux
	logger          *zerolog.Logger
	server          *http.Server
	shutdownTimeout time.Duration
}

type Dependencies struct {
	Reports     report.Service
	Definitions definition.Service
	Schedules   schedule.Controller
	Syncs       sync.Controller
}

type Config struct {
	Addr            string
	ShutdownTimeout time.Duration
	Dependencies    Dependencies
}

func NewWebAPI(logger zerolog.Logger, config Config) *WebAPI {
	reportsHandler := reporthandlers.NewHandler(config.Dependencies.Reports)
	definitionsHandler := definitionhandlers.NewHandler(config.Dependencies.Definitions)
	schedulesHandler := schedulehandlers.NewHandler(config.Dependencies.Schedules)
	syncHandler := synchandlers.NewHandler(config.Dependencies.Syncs)

	router := chi.NewRouter()

	router.Use(atlasmiddleware.Logger(&logger))
	router.Use(middleware.Recoverer)

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/reports/types", reportsHandler.GetCatalog)
		r.Get("/reports/types/{type}/parameters", reportsHandler.GetDefaultParameters)
		r.Post("/reports/parameters/resolve", reportsHandler.ResolveParameters)
		r.Post("/reports/generate", reportsHandler.Generate)
		r.Get("/reports/runs", reportsHandler.ListRuns)
		r.Get("/reports/runs/{id}", reportsHandler.GetRun)

		r.Get("/definitions", definitionsHandler.List)
		r.Post("/definitions", definitionsHandler.Create)
		r.Get("/definitions/{id}", definitionsHandler.Get)
		r.Put("/definitions/{id}", definitionsHandler.Update)
		r.Delete("/definitions/{id}", definitionsHandler.Delete)

		r.Get("/schedules", schedulesHandler.List)
		r.Post("/schedules", schedulesHandler.Create)
		r.Get("/schedules/{id}", schedulesHandler.Get)
		r.Put("/schedules/{id}", schedulesHandler.Update)
		r.Delete("/schedules/{id}", schedulesHandler.Delete)

		r.Get("/sync", syncHandler.ListStates)
		r.Post("/sync/{profile}/start", syncHandler.Start)
		r.Post("/sync/{profile}/stop", syncHandler.Stop)
	})

	shutdownTimeout := config.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = defaultShutdownTimeout
	}

	return &WebAPI{
		router: router,
		logger: &logger,
		server: &http.Server{
			Addr:    config.Addr,
			Handler: router,
		},
		shutdownTimeout: shutdownTimeout,
	}
}

// Router exposes the configured mux so tests can serve it directly.
func (w *WebAPI) Router() http.Handler {
	return w.router
}

func (w *WebAPI) Start() error {
	serverErrors := make(chan error, 1)
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	go func() {
		w.logger.Info().Str("addr", w.server.Addr).Msg("starting server")
		serverErrors <- w.server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-shutdown:
		w.logger.Info().Msg("shutdown initiated")

		// Give outstanding requests a deadline for completion.
		ctx, cancel := context.WithTimeout(context.Background(), w.shutdownTimeout)
		defer cancel()

		err := w.server.Shutdown(ctx)
		if err != nil {
			w.logger.Error().Err(err).Msg("graceful shutdown failed")
			err = w.server.Close()
		}

		if err != nil {
			return err
		}
	}

	return nil
}
