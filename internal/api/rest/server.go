// Package rest provides functionality for initializing a server.
package rest

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/danilovkiri/dk-go-offlineq/internal/api/rest/client"
	"github.com/danilovkiri/dk-go-offlineq/internal/api/rest/handlers"
	"github.com/danilovkiri/dk-go-offlineq/internal/api/rest/middleware"
	"github.com/danilovkiri/dk-go-offlineq/internal/config"
	"github.com/danilovkiri/dk-go-offlineq/internal/service/dispatcher/v1/dispatcher"
	"github.com/danilovkiri/dk-go-offlineq/internal/service/monitor/v1/monitor"
	"github.com/danilovkiri/dk-go-offlineq/internal/service/notifier/v1/notifier"
	"github.com/danilovkiri/dk-go-offlineq/internal/service/queue/v1/queue"
	"github.com/danilovkiri/dk-go-offlineq/internal/service/registrar/v1/registrar"
	"github.com/danilovkiri/dk-go-offlineq/internal/service/retrypolicy/v1"
	"github.com/danilovkiri/dk-go-offlineq/internal/service/secretary/v1/secretary"
	syncerImpl "github.com/danilovkiri/dk-go-offlineq/internal/service/syncer/v1/syncer"
	storage "github.com/danilovkiri/dk-go-offlineq/internal/storage/v1"
	"github.com/danilovkiri/dk-go-offlineq/internal/storage/v1/infile"
	"github.com/danilovkiri/dk-go-offlineq/internal/storage/v1/inmem"
	"github.com/danilovkiri/dk-go-offlineq/internal/storage/v1/inpsql"
	"github.com/danilovkiri/dk-go-offlineq/internal/storage/v1/merged"
	"github.com/go-chi/chi"
	"github.com/rs/zerolog"
)

// InitServer returns a http.Server object ready to be listening and serving.
func InitServer(ctx context.Context, cfg *config.Config, log *zerolog.Logger, wg *sync.WaitGroup) (server *http.Server, err error) {
	// initialize secretary
	secretaryService, err := secretary.NewSecretaryService(cfg.SecretConfig)
	if err != nil {
		return nil, err
	}

	// initialize token handler
	tokenHandler, err := middleware.NewTokenHandler(secretaryService, cfg.SecretConfig)
	if err != nil {
		return nil, err
	}

	// initialize event notifier
	events := notifier.InitNotifier(log)

	// initialize storage backends; either may be unavailable, the queue
	// store degrades to whatever opened
	var psqlAdapter storage.Adapter
	if cfg.StorageConfig.DatabaseDSN != "" {
		adapter, adapterErr := inpsql.InitAdapter(ctx, cfg.StorageConfig, log)
		if adapterErr != nil {
			log.Warn().Err(adapterErr).Msg("PSQL backend unavailable, degrading")
		} else {
			psqlAdapter = adapter
		}
	}
	var fileAdapter storage.Adapter
	if adapter, adapterErr := infile.InitAdapter(cfg.StorageConfig, log); adapterErr != nil {
		log.Warn().Err(adapterErr).Msg("file backend unavailable, degrading")
	} else {
		fileAdapter = adapter
	}
	if psqlAdapter == nil && fileAdapter == nil {
		log.Warn().Msg("no durable backend available, queue is in-memory only")
		fileAdapter = inmem.InitAdapter()
	}
	store := merged.InitStore(log, events, psqlAdapter, fileAdapter)

	// initialize delivery client
	deliveryClient := client.InitClient(cfg.ServerConfig, log)

	// initialize retry policy
	policy := retrypolicy.NewPolicy(time.Duration(cfg.QueueConfig.MaxAgeHours) * time.Hour)

	// initialize connectivity monitor; probing starts only after the
	// dispatcher subscribes so the first transition is never missed
	connectivityMonitor := monitor.InitMonitor(ctx, cfg.MonitorConfig, log, wg)

	// initialize sync orchestrator
	orchestrator, err := syncerImpl.InitSyncer(store, deliveryClient, policy, connectivityMonitor, events, log)
	if err != nil {
		return nil, err
	}

	// initialize background sync dispatcher and registrar
	syncDispatcher := dispatcher.InitDispatcher(ctx, orchestrator, connectivityMonitor, log, wg)
	syncDispatcher.ListenAndDispatch()
	connectivityMonitor.ListenAndProbe()
	syncRegistrar := registrar.InitRegistrar(syncDispatcher, log)
	// periodic drain keeps the queue moving even without new enqueues
	syncRegistrar.RegisterPeriodicSync("periodic-queue-drain", 15*time.Minute)

	// initialize queue manager
	mainService, err := queue.InitService(store, syncRegistrar, connectivityMonitor, cfg.QueueConfig, log)
	if err != nil {
		return nil, err
	}

	// initialize handlers
	urlHandler, err := handlers.InitHandlers(mainService, orchestrator, secretaryService, log)
	if err != nil {
		return nil, err
	}
	eventHandler, err := handlers.InitEventHandler(events, log)
	if err != nil {
		return nil, err
	}

	// initialize server and set routing
	r := chi.NewRouter()
	openGroup := r.Group(nil)
	mainGroup := r.Group(nil)
	mainGroup.Use(tokenHandler.TokenHandle) // authentication is not used for token, stats and event routes
	openGroup.Post("/api/auth/token", urlHandler.HandleToken())
	openGroup.Get("/api/queue/stats", urlHandler.HandleStats())
	openGroup.Get("/api/queue/events", eventHandler.HandleEvents())
	mainGroup.Post("/api/queue/actions", urlHandler.HandleEnqueue())
	mainGroup.Delete("/api/queue", urlHandler.HandleClear())
	mainGroup.Post("/api/queue/sync", urlHandler.HandleSyncNow())

	srv := &http.Server{
		Addr:         cfg.ServerConfig.RunAddress,
		Handler:      r,
		IdleTimeout:  60 * time.Second,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
	}
	return srv, nil
}
