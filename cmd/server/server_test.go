package main

import (
	"context"
	"encoding/json"
	"image/png"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	julia "github.com/marben/juliaset"
	"github.com/marben/juliaset/stream"
)

func newTestServer(t *testing.T) (*session, *httptest.Server) {
	t.Helper()
	s, err := newSession(config{threads: 2, width: 32, height: 16, iters: 50, view: "rabbit"})
	if err != nil {
		t.Fatal(err)
	}
	srv := httptest.NewServer(s.routes())
	t.Cleanup(srv.Close)
	return s, srv
}

func waitIdle(t *testing.T, s *session) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.engine.Wait(ctx); err != nil {
		t.Fatal(err)
	}
}

func TestParseRenderRequest(t *testing.T) {
	base := renderRequest{width: 10, height: 10, scale: 1, iters: 10, thresh: 2, fractal: "julia"}

	tests := []struct {
		name    string
		query   string
		check   func(renderRequest) bool
		wantErr bool
	}{
		{"empty keeps base", "", func(r renderRequest) bool { return r == base }, false},
		{"explicit values", "width=64&height=48&scale=0.5&cx=-0.5&cy=0.25&iters=300&thresh=4",
			func(r renderRequest) bool {
				return r.width == 64 && r.height == 48 && r.scale == 0.5 && r.centerX == -0.5 &&
					r.centerY == 0.25 && r.iters == 300 && r.thresh == 4
			}, false},
		{"julia constant", "cr=-0.8&ci=0.156", func(r renderRequest) bool { return r.c == complex(-0.8, 0.156) }, false},
		{"view then override", "view=seahorse-valley&scale=0.01",
			func(r renderRequest) bool { return r.fractal == "mandelbrot" && r.scale == 0.01 && r.centerX == -0.75 }, false},
		{"bad width", "width=wide", nil, true},
		{"bad iters", "iters=1.5", nil, true},
		{"bad float", "cx=left", nil, true},
		{"unknown view", "view=nowhere", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := url.ParseQuery(tt.query)
			if err != nil {
				t.Fatal(err)
			}
			got, err := parseRenderRequest(q, base)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && !tt.check(got) {
				t.Errorf("got %+v", got)
			}
		})
	}
}

func TestRender_StatusAndImage(t *testing.T) {
	s, srv := newTestServer(t)

	resp, err := http.Post(srv.URL+"/render?width=20&height=10&iters=40&fractal=mandelbrot&cx=-0.5&scale=1.25", "", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("render status = %d, want %d", resp.StatusCode, http.StatusAccepted)
	}
	waitIdle(t, s)

	st := getStatus(t, srv)
	if st.State != julia.Completed.String() || st.Current != 200 || st.Length != 200 || st.Finished != 1 {
		t.Errorf("status = %+v, want a completed 200 point run", st)
	}
	if st.Fractal != "mandelbrot" || st.Workers != 2 || st.Run != 1 {
		t.Errorf("status = %+v, want run 1 of mandelbrot on 2 workers", st)
	}

	resp, err = http.Get(srv.URL + "/image.png?thumb=10")
	if err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(resp.Body)
	resp.Body.Close()
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 10 || b.Dy() != 5 {
		t.Errorf("thumbnail bounds = %v, want 10x5", b)
	}
}

func getStatus(t *testing.T, srv *httptest.Server) status {
	t.Helper()
	resp, err := http.Get(srv.URL + "/status")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var st status
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		t.Fatal(err)
	}
	return st
}

func TestRender_Errors(t *testing.T) {
	s, srv := newTestServer(t)
	before := getStatus(t, srv)

	for _, q := range []string{
		"width=0", "iters=-1", "fractal=newton", "scale=nope", "thresh=0",
		"iters=777&thresh=-1",
		"width=64&height=64&iters=900&fractal=mandelbrot&thresh=NaN",
		"iters=321&cx=1&width=-5",
	} {
		resp, err := http.Post(srv.URL+"/render?"+q, "", nil)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("render?%s status = %d, want %d", q, resp.StatusCode, http.StatusBadRequest)
		}
	}
	if s.engine.Run() != 0 {
		t.Errorf("run = %d after rejected renders, want 0", s.engine.Run())
	}
	if after := getStatus(t, srv); after != before {
		t.Errorf("rejected renders changed the session:\nbefore %+v\nafter  %+v", before, after)
	}

	resp, err := http.Get(srv.URL + "/image.png?thumb=-3")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("negative thumb status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}

	resp, err = http.Post(srv.URL+"/cancel", "", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("cancel without run status = %d, want %d", resp.StatusCode, http.StatusConflict)
	}
}

func TestRender_ConflictWhileRunning(t *testing.T) {
	s, srv := newTestServer(t)

	release := make(chan struct{})
	if err := s.engine.SetFunc(julia.PointFuncFunc(func(x, y float64, iterCap int64, thresh float64) (float64, bool, error) {
		<-release
		return 1, true, nil
	})); err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := s.engine.Start(ctx); err != nil {
		t.Fatal(err)
	}

	resp, err := http.Post(srv.URL+"/render", "", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("render while running status = %d, want %d", resp.StatusCode, http.StatusConflict)
	}

	close(release)
	waitIdle(t, s)
}

func TestWebsocket_StreamsRun(t *testing.T) {
	_, srv := newTestServer(t)
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var run uint64
	var types []string
	err := stream.Watch(ctx, wsURL, func(m stream.Message) bool {
		types = append(types, m.Type)
		if len(types) == 1 {
			resp, err := http.Post(srv.URL+"/render?width=16&height=8", "", nil)
			if err != nil {
				t.Error(err)
				return false
			}
			var body map[string]uint64
			err = json.NewDecoder(resp.Body).Decode(&body)
			resp.Body.Close()
			if err != nil {
				t.Error(err)
				return false
			}
			run = body["run"]
			return true
		}
		if m.Final() && m.Run == run {
			if m.Error != "" || m.Length != 128 {
				t.Errorf("completed = %+v, want clean run of 128 points", m)
			}
			return false
		}
		return true
	})
	if err != nil {
		t.Fatal(err)
	}
	if types[0] != stream.TypeResized {
		t.Errorf("first message type = %q, want %q", types[0], stream.TypeResized)
	}
	if run != 1 {
		t.Errorf("run = %d, want 1", run)
	}
}
