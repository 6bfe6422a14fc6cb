package main

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strconv"
	"sync"

	julia "github.com/marben/juliaset"
	"github.com/marben/juliaset/fractal"
	"github.com/marben/juliaset/stream"
)

// session owns the server's engine and the hub that streams its events.
type session struct {
	engine *julia.Engine
	hub    *stream.Hub

	m       sync.Mutex
	cancel  context.CancelFunc
	fractal string
	c       complex128
}

func newSession(cfg config) (*session, error) {
	p, err := fractal.Lookup(cfg.view)
	if err != nil {
		return nil, err
	}
	fn, err := fractal.New(p.Fractal, p.C)
	if err != nil {
		return nil, err
	}

	s := &session{
		hub:     stream.NewHub(256),
		fractal: p.Fractal,
		c:       p.C,
	}
	s.engine, err = julia.NewMultiThreaded(fn,
		julia.WithGrid(cfg.width, cfg.height),
		julia.WithScale(p.View.Scale),
		julia.WithCenter(p.View.CenterX, p.View.CenterY),
		julia.WithIterations(cfg.iters),
		julia.WithThreadCount(cfg.threads),
		julia.WithListener(s.hub),
		julia.WithListener(julia.ListenerFuncs{
			OnStarted: func(ev julia.StartedEvent) {
				log.Printf("run %d: started on %d workers", ev.Run, ev.Workers)
			},
			OnCompleted: func(ev julia.CompletedEvent) {
				if ev.Err != nil {
					log.Printf("run %d: failed: %v", ev.Run, ev.Err)
					return
				}
				log.Printf("run %d: finished %d points, %d faults, watchers: %d", ev.Run, ev.Length, ev.Faults, s.hub.Watchers())
			},
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("julia.NewMultiThreaded: %w", err)
	}
	return s, nil
}

// renderRequest is a full engine configuration plus the fractal to iterate.
type renderRequest struct {
	width, height    int
	scale            float64
	centerX, centerY float64
	iters            int64
	thresh           float64
	fractal          string
	c                complex128
}

// current returns the configuration of the next run if nothing changes.
func (s *session) current() renderRequest {
	g := s.engine.Geometry()
	s.m.Lock()
	defer s.m.Unlock()
	return renderRequest{
		width:   g.Width,
		height:  g.Height,
		scale:   g.Scale,
		centerX: g.CenterX,
		centerY: g.CenterY,
		iters:   s.engine.Iterations(),
		thresh:  s.engine.Threshold(),
		fractal: s.fractal,
		c:       s.c,
	}
}

// parseRenderRequest overlays query parameters on base. A view parameter names a
// preset and is applied before the explicit parameters.
func parseRenderRequest(q url.Values, base renderRequest) (renderRequest, error) {
	req := base
	if v := q.Get("view"); v != "" {
		p, err := fractal.Lookup(v)
		if err != nil {
			return req, fmt.Errorf("%w: %w", julia.ErrInvalidConfig, err)
		}
		req.fractal, req.c = p.Fractal, p.C
		req.scale, req.centerX, req.centerY = p.View.Scale, p.View.CenterX, p.View.CenterY
	}

	ints := []struct {
		key string
		dst *int
	}{{"width", &req.width}, {"height", &req.height}}
	for _, f := range ints {
		if v := q.Get(f.key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return req, fmt.Errorf("%w: %s: %w", julia.ErrInvalidConfig, f.key, err)
			}
			*f.dst = n
		}
	}

	if v := q.Get("iters"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return req, fmt.Errorf("%w: iters: %w", julia.ErrInvalidConfig, err)
		}
		req.iters = n
	}

	cr, ci := real(req.c), imag(req.c)
	floats := []struct {
		key string
		dst *float64
	}{
		{"scale", &req.scale}, {"cx", &req.centerX}, {"cy", &req.centerY},
		{"thresh", &req.thresh}, {"cr", &cr}, {"ci", &ci},
	}
	for _, f := range floats {
		if v := q.Get(f.key); v != "" {
			x, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return req, fmt.Errorf("%w: %s: %w", julia.ErrInvalidConfig, f.key, err)
			}
			*f.dst = x
		}
	}
	req.c = complex(cr, ci)

	if v := q.Get("fractal"); v != "" {
		req.fractal = v
	}
	return req, nil
}

// render validates all of req, applies it and starts a run. It returns the new run's id.
// A rejected request leaves the engine unchanged.
func (s *session) render(req renderRequest) (uint64, error) {
	s.m.Lock()
	defer s.m.Unlock()

	if s.engine.IsRunning() {
		return 0, fmt.Errorf("render: %w", julia.ErrRunning)
	}
	fn, err := fractal.New(req.fractal, req.c)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", julia.ErrInvalidConfig, err)
	}
	if _, err := julia.NewGeometry(req.width, req.height, req.scale, req.centerX, req.centerY); err != nil {
		return 0, err
	}
	if err := julia.ValidateIterations(req.iters); err != nil {
		return 0, err
	}
	if err := julia.ValidateThreshold(req.thresh); err != nil {
		return 0, err
	}

	for _, apply := range []func() error{
		func() error { return s.engine.SetIterations(req.iters) },
		func() error { return s.engine.SetThreshold(req.thresh) },
		func() error { return s.engine.SetFunc(fn) },
		func() error { return s.engine.SetGrid(req.width, req.height) },
		func() error { return s.engine.SetScale(req.scale) },
		func() error { return s.engine.SetCenter(req.centerX, req.centerY) },
	} {
		if err := apply(); err != nil {
			return 0, err
		}
	}
	s.fractal, s.c = req.fractal, req.c

	if s.cancel != nil {
		s.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	if err := s.engine.Start(ctx); err != nil {
		cancel()
		return 0, err
	}
	s.cancel = cancel
	return s.engine.Run(), nil
}

// stop cancels the active run. It reports whether a run was active.
func (s *session) stop() bool {
	s.m.Lock()
	defer s.m.Unlock()
	if !s.engine.IsRunning() || s.cancel == nil {
		return false
	}
	s.cancel()
	return true
}

// finished returns the completed fraction of the latest run.
func (s *session) finished() float64 {
	cur, n := s.engine.Progress()
	return float64(cur) / float64(n)
}

type status struct {
	State      string  `json:"state"`
	Run        uint64  `json:"run"`
	Fractal    string  `json:"fractal"`
	CR         float64 `json:"cr"`
	CI         float64 `json:"ci"`
	Width      int     `json:"width"`
	Height     int     `json:"height"`
	Scale      float64 `json:"scale"`
	CenterX    float64 `json:"cx"`
	CenterY    float64 `json:"cy"`
	Iterations int64   `json:"iters"`
	Threshold  float64 `json:"thresh"`
	Workers    int     `json:"workers"`
	Watchers   int     `json:"watchers"`
	Current    int     `json:"current"`
	Length     int     `json:"length"`
	Finished   float64 `json:"finished"`
}

func (s *session) status() status {
	req := s.current()
	cur, n := s.engine.Progress()
	return status{
		State:      s.engine.State().String(),
		Run:        s.engine.Run(),
		Fractal:    req.fractal,
		CR:         real(req.c),
		CI:         imag(req.c),
		Width:      req.width,
		Height:     req.height,
		Scale:      req.scale,
		CenterX:    req.centerX,
		CenterY:    req.centerY,
		Iterations: req.iters,
		Threshold:  req.thresh,
		Workers:    s.engine.Workers(),
		Watchers:   s.hub.Watchers(),
		Current:    cur,
		Length:     n,
		Finished:   s.finished(),
	}
}
