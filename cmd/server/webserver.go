package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"log"
	"net/http"
	"strconv"
	"time"

	julia "github.com/marben/juliaset"
	"github.com/marben/juliaset/render"
)

// webServer creates the http server exposing the session.
func webServer(addr string, s *session) *http.Server {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	log.Printf("listening on http://localhost%s", addr)
	return srv
}

func (s *session) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("GET /ws", s.hub)
	mux.HandleFunc("POST /render", s.handleRender)
	mux.HandleFunc("POST /cancel", s.handleCancel)
	mux.HandleFunc("GET /image.png", s.handleImage)
	mux.HandleFunc("GET /status", s.handleStatus)
	return mux
}

func (s *session) handleRender(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	req, err := parseRenderRequest(r.Form, s.current())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	id, err := s.render(req)
	switch {
	case errors.Is(err, julia.ErrRunning):
		http.Error(w, err.Error(), http.StatusConflict)
		return
	case errors.Is(err, julia.ErrInvalidConfig):
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	case err != nil:
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	log.Printf("render %d requested by %s: %s %dx%d", id, r.RemoteAddr, req.fractal, req.width, req.height)
	writeJSON(w, http.StatusAccepted, map[string]uint64{"run": id})
}

func (s *session) handleCancel(w http.ResponseWriter, r *http.Request) {
	if !s.stop() {
		http.Error(w, "no active run", http.StatusConflict)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleImage serves the current buffers as PNG. During a run the image is partial.
func (s *session) handleImage(w http.ResponseWriter, r *http.Request) {
	var img image.Image
	img, err := render.FromEngine(s.engine, render.Smooth())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if v := r.URL.Query().Get("thumb"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			http.Error(w, fmt.Sprintf("thumb %q must be a positive integer", v), http.StatusBadRequest)
			return
		}
		img = render.Thumbnail(img, n)
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	if err := render.EncodePNG(w, img); err != nil {
		log.Printf("image to %s: %v", r.RemoteAddr, err)
	}
}

func (s *session) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.status())
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("json.Encode: %v", err)
	}
}
