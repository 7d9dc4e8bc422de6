// Package server serves an interactive graph view to browsers.
//
// The server owns the view: its simulation runs in a [force.Loop] and every
// mutation, whether a tick or a drag command from a browser, happens on the
// loop goroutine. Browsers load a page holding the #my_dataviz container,
// fetch the static element model from /api/view, then receive a frame of
// line endpoints and node translations over a WebSocket after every tick.
// Pointer gestures travel the other way as start/drag/end messages.
//
// Routes:
//
//	GET    /                        page
//	GET    /data                    document as loaded
//	GET    /api/view                element model (sizes, colors, labels)
//	GET    /api/frame               current frame
//	GET    /api/positions           current layout
//	GET    /api/graph.svg           current view as SVG
//	POST   /api/restart             reheat the simulation
//	GET    /api/snapshots           list snapshots of this document
//	POST   /api/snapshots           save the current layout
//	GET    /api/snapshots/{id}      one snapshot
//	DELETE /api/snapshots/{id}      delete a snapshot
//	POST   /api/snapshots/{id}/restore  apply a snapshot
//	GET    /ws                      frames and drag gestures
package server

import (
	"context"
	stderrors "errors"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/reveal/pkg/errors"
	"github.com/matzehuels/reveal/pkg/force"
	"github.com/matzehuels/reveal/pkg/graph"
	"github.com/matzehuels/reveal/pkg/store"
	"github.com/matzehuels/reveal/pkg/view"
)

// DefaultAddr is the listen address when none is configured.
const DefaultAddr = "127.0.0.1:8080"

// shutdownTimeout bounds graceful shutdown of open requests.
const shutdownTimeout = 5 * time.Second

// Options configures a [Server].
type Options struct {
	Addr string
	// Title is shown in the page header, usually the document source.
	Title string
	// TickInterval is the loop period; 0 uses [force.DefaultInterval].
	TickInterval time.Duration
	// Store keeps snapshots; nil uses a [store.MemoryStore].
	Store store.Store
	// DocumentHash scopes snapshot listing to this document.
	DocumentHash string
	Logger       *log.Logger
}

// Server serves one view.
type Server struct {
	view   *view.View
	loop   *force.Loop
	hub    *hub
	store  store.Store
	opts   Options
	logger *log.Logger

	data    []byte
	model   viewModel
	handler http.Handler
}

// New wraps v, which must not be stepped by anyone else from now on. The
// document is serialized here so /data serves it as it was loaded.
func New(v *view.View, opts Options) (*Server, error) {
	if opts.Addr == "" {
		opts.Addr = DefaultAddr
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Store == nil {
		opts.Store = store.NewMemoryStore()
	}
	data, err := graph.Marshal(v.Document())
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode document")
	}

	s := &Server{
		view:   v,
		loop:   force.NewLoop(v.Simulation(), force.LoopOptions{Interval: opts.TickInterval, Logger: opts.Logger}),
		hub:    newHub(opts.Logger),
		store:  opts.Store,
		opts:   opts,
		logger: opts.Logger,
		data:   data,
		model:  newViewModel(v, opts.Title),
	}
	v.Subscribe(s.hub.broadcastFrame)
	s.handler = s.routes()
	return s, nil
}

// Handler returns the HTTP handler. Requests that touch the view only
// complete while [Server.RunLoop] or [Server.Run] is running.
func (s *Server) Handler() http.Handler { return s.handler }

// Loop returns the simulation loop.
func (s *Server) Loop() *force.Loop { return s.loop }

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handlePage)
	r.Get("/data", s.handleData)
	r.Get("/ws", s.handleWS)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.NoCache)
		r.Get("/view", s.handleViewModel)
		r.Get("/frame", s.handleFrame)
		r.Get("/positions", s.handlePositions)
		r.Get("/graph.svg", s.handleSVG)
		r.Post("/restart", s.handleRestart)

		r.Route("/snapshots", func(r chi.Router) {
			r.Get("/", s.handleListSnapshots)
			r.Post("/", s.handleSaveSnapshot)
			r.Get("/{id}", s.handleGetSnapshot)
			r.Delete("/{id}", s.handleDeleteSnapshot)
			r.Post("/{id}/restore", s.handleRestoreSnapshot)
		})
	})
	return r
}

// RunLoop runs the simulation loop until ctx is done. It is what [Run] uses
// and lets tests drive the handler through httptest.
func (s *Server) RunLoop(ctx context.Context) error {
	err := s.loop.Run(ctx)
	s.hub.closeAll()
	return err
}

// Run listens on the configured address and serves until ctx is done, then
// shuts down gracefully. It returns nil after a clean shutdown.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "listen on %s", s.opts.Addr)
	}
	return s.Serve(ctx, ln)
}

// Serve is [Run] on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.RunLoop(gctx)
	})
	g.Go(func() error {
		s.logger.Info("serving", "url", "http://"+ln.Addr().String())
		if err := srv.Serve(ln); !stderrors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	err := g.Wait()
	if stderrors.Is(err, context.Canceled) && ctx.Err() != nil {
		return nil
	}
	return err
}

// submit runs fn on the loop goroutine.
func (s *Server) submit(ctx context.Context, fn func()) error {
	return s.loop.Submit(ctx, func(*force.Simulation) { fn() })
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start).Round(time.Microsecond),
			"request_id", middleware.GetReqID(r.Context()))
	})
}
