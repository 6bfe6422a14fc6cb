// render computes one fractal locally and writes it as a PNG file.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"strings"

	julia "github.com/marben/juliaset"
	"github.com/marben/juliaset/fractal"
	"github.com/marben/juliaset/render"
)

type config struct {
	view          string
	fractal       string
	cr, ci        float64
	width, height int
	scale         float64
	cx, cy        float64
	iters         int64
	thresh        float64
	threads       int
	gray          bool
	stats         bool
	out           string
	verbose       bool
}

func main() {
	var cfg config
	flag.StringVar(&cfg.view, "view", "rabbit", "preset: "+strings.Join(fractal.Names(), ", "))
	flag.StringVar(&cfg.fractal, "fractal", "", "override the preset's fractal (julia, mandelbrot, multibrotN)")
	flag.Float64Var(&cfg.cr, "cr", 0, "override the real part of the julia constant")
	flag.Float64Var(&cfg.ci, "ci", 0, "override the imaginary part of the julia constant")
	flag.IntVar(&cfg.width, "width", 1920, "grid width")
	flag.IntVar(&cfg.height, "height", 1080, "grid height")
	flag.Float64Var(&cfg.scale, "scale", 0, "override the preset's scale")
	flag.Float64Var(&cfg.cx, "cx", 0, "override the preset's center x")
	flag.Float64Var(&cfg.cy, "cy", 0, "override the preset's center y")
	flag.Int64Var(&cfg.iters, "iters", 500, "iteration cap per point")
	flag.Float64Var(&cfg.thresh, "thresh", 10, "escape threshold")
	flag.IntVar(&cfg.threads, "threads", runtime.GOMAXPROCS(0), "worker count; 1 uses the single-threaded engine")
	flag.BoolVar(&cfg.gray, "gray", false, "grayscale palette")
	flag.BoolVar(&cfg.stats, "stats", false, "print a summary of the finished grid")
	flag.StringVar(&cfg.out, "o", "julia.png", "output file")
	flag.BoolVar(&cfg.verbose, "v", false, "log engine internals")
	flag.Parse()

	// explicit flags override the preset
	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if err := run(cfg, set); err != nil {
		log.Fatalf("run: %+v", err)
	}
}

func run(cfg config, set map[string]bool) error {
	if cfg.verbose {
		julia.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	p, err := fractal.Lookup(cfg.view)
	if err != nil {
		return err
	}
	if set["fractal"] {
		p.Fractal = cfg.fractal
	}
	if set["cr"] || set["ci"] {
		p.C = complex(cfg.cr, cfg.ci)
	}
	if set["scale"] {
		p.View.Scale = cfg.scale
	}
	if set["cx"] || set["cy"] {
		p.View.CenterX, p.View.CenterY = cfg.cx, cfg.cy
	}

	fn, err := fractal.New(p.Fractal, p.C)
	if err != nil {
		return err
	}

	reported := 0
	opts := []julia.Option{
		julia.WithGrid(cfg.width, cfg.height),
		julia.WithScale(p.View.Scale),
		julia.WithCenter(p.View.CenterX, p.View.CenterY),
		julia.WithIterations(cfg.iters),
		julia.WithThreshold(cfg.thresh),
		julia.WithThreadCount(cfg.threads),
		julia.WithListener(julia.ListenerFuncs{
			OnStarted: func(ev julia.StartedEvent) {
				log.Printf("rendering %s %dx%d on %d workers", p.Fractal, cfg.width, cfg.height, ev.Workers)
			},
			OnIterated: func(ev julia.IteratedEvent) {
				if pct := int(ev.Progress * 100); pct/10 > reported/10 {
					reported = pct
					log.Printf("%d%%", pct)
				}
			},
			OnFault: func(f julia.PointFault) {
				log.Printf("point %d (%g, %g) failed: %v", f.Index, f.X, f.Y, f.Err)
			},
		}),
	}

	var e *julia.Engine
	if cfg.threads == 1 {
		e, err = julia.NewSingleThreaded(fn, opts...)
	} else {
		e, err = julia.NewMultiThreaded(fn, opts...)
	}
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := e.Start(ctx); err != nil {
		return fmt.Errorf("start: %w", err)
	}
	if err := e.Wait(context.Background()); err != nil {
		return fmt.Errorf("render: %w", err)
	}

	if cfg.stats {
		title := fmt.Sprintf("%s %dx%d, %d iterations", p.Fractal, cfg.width, cfg.height, cfg.iters)
		fmt.Println(report(title, render.Summarize(e.Result(), e.IsAlive(), cfg.iters, 40)))
	}

	palette := render.Smooth()
	if cfg.gray {
		palette = render.Grayscale(cfg.iters)
	}
	img, err := render.FromEngine(e, palette)
	if err != nil {
		return err
	}

	f, err := os.Create(cfg.out)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()
	if err := render.EncodePNG(f, img); err != nil {
		return err
	}
	log.Printf("image saved to %q", cfg.out)
	return f.Close()
}
