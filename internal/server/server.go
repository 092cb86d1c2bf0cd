// Package server exposes whiteboards over HTTP and WebSocket.
package server

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"golang.org/x/sync/errgroup"

	"inkboard/internal/board"
	"inkboard/internal/config"
	"inkboard/internal/errs"
	"inkboard/internal/whiteboard"
)

type entry struct {
	id      string
	wb      *whiteboard.Whiteboard
	loop    *whiteboard.Loop
	created time.Time
}

type Server struct {
	cfg     *config.Config
	limiter *limiter
	router  *mux.Router

	mu     sync.RWMutex
	boards map[string]*entry
}

func New(cfg *config.Config) *Server {
	s := &Server{
		cfg:     cfg,
		limiter: newLimiter(cfg.Server.ActionsPerMinute, cfg.Server.Burst),
		boards:  make(map[string]*entry),
	}
	s.router = s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

type createRequest struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	DPR    float64 `json:"dpr"`
	Mode   string  `json:"mode"`
}

func (s *Server) create(req createRequest) (*entry, error) {
	opts := whiteboard.Options{
		Width:     s.cfg.Canvas.Width,
		Height:    s.cfg.Canvas.Height,
		DPR:       s.cfg.Canvas.DevicePixelRatio,
		UndoLimit: s.cfg.UndoLimit,
		Budget:    s.cfg.Budget(),
	}
	if req.Width > 0 && req.Height > 0 {
		opts.Width, opts.Height = req.Width, req.Height
	}
	if req.DPR > 0 {
		opts.DPR = req.DPR
	}
	wb := whiteboard.New(opts)
	if req.Mode != "" {
		m, ok := board.ParseMode(req.Mode)
		if !ok {
			return nil, errs.ErrInvalidAction
		}
		wb.SetMode(m)
	}

	e := &entry{
		id:      board.NewID(),
		wb:      wb,
		loop:    whiteboard.NewLoop(s.cfg.TickInterval(), wb.Tick),
		created: time.Now(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.boards) >= s.cfg.Server.MaxBoards {
		return nil, errs.ErrTooManyBoards
	}
	s.boards[e.id] = e
	e.loop.Start(context.Background())
	return e, nil
}

func (s *Server) get(id string) (*entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.boards[id]
	if !ok {
		return nil, errs.ErrBoardNotFound
	}
	return e, nil
}

func (s *Server) remove(id string) error {
	s.mu.Lock()
	e, ok := s.boards[id]
	delete(s.boards, id)
	s.mu.Unlock()
	if !ok {
		return errs.ErrBoardNotFound
	}
	e.loop.Stop()
	e.wb.Cancel()
	s.limiter.forget(id)
	return nil
}

func (s *Server) list() []*entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*entry, 0, len(s.boards))
	for _, e := range s.boards {
		out = append(out, e)
	}
	return out
}

// Close stops every board's animation loop and releases callers waiting
// on a reveal.
func (s *Server) Close() {
	s.mu.Lock()
	boards := s.boards
	s.boards = make(map[string]*entry)
	s.mu.Unlock()
	for _, e := range boards {
		e.loop.Stop()
		e.wb.Cancel()
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Server.Addr)
	if err != nil {
		return err
	}
	srv := &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	log.Printf("[INFO] inkboard listening on %s", ln.Addr())

	if s.cfg.Server.MDNS {
		port := ln.Addr().(*net.TCPAddr).Port
		m, err := advertise(port)
		if err != nil {
			log.Printf("[WARN] mdns advertise: %v", err)
		} else {
			log.Printf("[INFO] advertising %s on port %d", serviceType, port)
			defer m.Shutdown()
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Println("[INFO] shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.Close()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
