package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/Amadeus750/spend-streamlet/pkg/handlers/dashboard"
	spendmiddleware "github.com/Amadeus750/spend-streamlet/pkg/server/middleware"
	"github.com/Amadeus750/spend-streamlet/pkg/services/dataset"
	"github.com/Amadeus750/spend-streamlet/pkg/services/spend"
)

const defaultShutdownTimeout = 10 * time.Second

type WebAPI struct {
	router          *chi.Mux
	logger          *zerolog.Logger
	server          *http.Server
	shutdownTimeout time.Duration
}

type Dependencies struct {
	Datasets dataset.Manager
	Spend    spend.Registry
	Logger   zerolog.Logger
}

type Config struct {
	Addr            string
	ShutdownTimeout time.Duration
	Dependencies    Dependencies
}

// ConfigureRouter mounts the dashboard API under /api/v1 with the request
// logging and panic recovery middleware in front.
func ConfigureRouter(config Config) *chi.Mux {
	handler := dashboard.NewDashboardRouter(config.Dependencies.Datasets, config.Dependencies.Spend)
	logger := config.Dependencies.Logger

	router := chi.NewRouter()

	router.Use(spendmiddleware.Logger(&logger))
	router.Use(middleware.Recoverer)

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/datasets", handler.ListDatasets)
		r.Get("/datasets/{dataset}", handler.GetDataset)
		r.Get("/datasets/{dataset}/filters", handler.GetFilters)
		r.Get("/datasets/{dataset}/summary", handler.GetSummary)
		r.Get("/datasets/{dataset}/charts/categories", handler.GetCategoryChart)
		r.Get("/datasets/{dataset}/charts/trend", handler.GetTrendChart)
		r.Get("/datasets/{dataset}/charts/sunburst", handler.GetSunburstChart)
		r.Get("/datasets/{dataset}/records", handler.ListRecords)
		r.Get("/datasets/{dataset}/overview", handler.GetOverview)
	})

	return router
}

func NewWebAPI(config Config) *WebAPI {
	router := ConfigureRouter(config)
	logger := config.Dependencies.Logger

	timeout := config.ShutdownTimeout
	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}

	return &WebAPI{
		router: router,
		logger: &logger,
		server: &http.Server{
			Addr:    config.Addr,
			Handler: router,
		},
		shutdownTimeout: timeout,
	}
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
