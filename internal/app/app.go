// Package app orchestrates all components of observe.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/brianly1003/observe/internal/adapters/watcher"
	"github.com/brianly1003/observe/internal/config"
	"github.com/brianly1003/observe/internal/domain/demand"
	"github.com/brianly1003/observe/internal/publisher"
	httpserver "github.com/brianly1003/observe/internal/server/http"
	"github.com/brianly1003/observe/internal/server/websocket"
	"github.com/brianly1003/observe/internal/state"
	"github.com/brianly1003/observe/internal/sync"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// App is the main application struct that orchestrates all components.
type App struct {
	cfg     *config.Config
	version string

	document    *state.Document
	stateWatch  *watcher.Watcher
	wsServer    *websocket.Server
	httpServer  *httpserver.Server
	logSub      *publisher.LogSubscriber
	instanceID  string
	startTime   time.Time
	shutdownDur time.Duration

	mu      sync.Mutex
	running bool
}

// New creates a new App instance and builds the document declared in cfg.
func New(cfg *config.Config, version string) (*App, error) {
	doc, err := state.NewDocument(cfg.State.Properties)
	if err != nil {
		return nil, fmt.Errorf("failed to build document: %w", err)
	}

	a := &App{
		cfg:         cfg,
		version:     version,
		document:    doc,
		instanceID:  uuid.New().String(),
		shutdownDur: 5 * time.Second,
	}

	a.wsServer = websocket.NewServer(doc)
	if cfg.Server.HeartbeatSeconds > 0 {
		a.wsServer.SetHeartbeatInterval(time.Duration(cfg.Server.HeartbeatSeconds) * time.Second)
	}

	a.httpServer = httpserver.NewServer(cfg.Server.Host, cfg.Server.Port, doc, httpserver.Options{
		WebSocket: a.wsServer,
		Clients:   a.wsServer,
		Pprof:     cfg.Server.Pprof,
	})

	if cfg.State.File != "" && cfg.Watcher.Enabled {
		a.stateWatch = watcher.NewWatcher(cfg.State.File, doc, cfg.Watcher.DebounceMS)
	}

	return a, nil
}

// Document returns the observed document.
func (a *App) Document() *state.Document {
	return a.document
}

// InstanceID returns the id generated for this process.
func (a *App) InstanceID() string {
	return a.instanceID
}

// Start starts the application and blocks until ctx is cancelled.
func (a *App) Start(ctx context.Context) error {
	a.mu.Lock()
	if a.running {
		a.mu.Unlock()
		return fmt.Errorf("application is already running")
	}
	a.running = true
	a.startTime = time.Now()
	a.mu.Unlock()

	a.logSub = publisher.NewLogSubscriber("internal-logger", demand.Unlimited)
	a.document.WillChange().Subscribe(a.logSub)

	if a.stateWatch != nil {
		if err := a.stateWatch.Start(ctx); err != nil {
			a.abort()
			return fmt.Errorf("failed to start state watcher: %w", err)
		}
	} else if a.cfg.State.File != "" {
		// Watching disabled: load once.
		if values, err := state.LoadFile(a.cfg.State.File); err != nil {
			log.Warn().Err(err).Msg("failed to load state file")
		} else {
			a.document.Apply(values)
		}
	}

	a.wsServer.Start()
	if err := a.httpServer.Start(); err != nil {
		a.abort()
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	log.Info().
		Str("instance_id", a.instanceID).
		Str("version", a.version).
		Str("addr", a.httpServer.Addr()).
		Strs("properties", a.document.Properties()).
		Msg("observe started")

	<-ctx.Done()

	return a.shutdown()
}

// abort stops whatever Start managed to bring up.
func (a *App) abort() {
	_ = a.shutdown()
}

// shutdown performs graceful shutdown of all components.
func (a *App) shutdown() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.running {
		return nil
	}
	a.running = false

	log.Info().Msg("shutting down...")

	if a.stateWatch != nil {
		if err := a.stateWatch.Stop(); err != nil {
			log.Warn().Err(err).Msg("error stopping state watcher")
		}
	}

	a.wsServer.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), a.shutdownDur)
	defer cancel()
	err := a.httpServer.Stop(ctx)

	if a.logSub != nil {
		log.Debug().Int64("notifications", a.logSub.Count()).Msg("internal logger detached")
		a.logSub.Cancel()
	}

	log.Info().Dur("uptime", time.Since(a.startTime)).Msg("shutdown complete")
	return err
}

// IsRunning reports whether Start is active.
func (a *App) IsRunning() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.running
}
