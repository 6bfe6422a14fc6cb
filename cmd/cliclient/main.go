// cliclient asks a running server for a render, follows its progress over the
// websocket and saves the finished image as a PNG file.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/marben/juliaset/stream"
)

func main() {
	server := flag.String("server", "http://localhost:8080", "server base url")
	params := flag.String("params", "", "render query, e.g. view=seahorse-valley&iters=800")
	out := flag.String("o", "julia.png", "output file")
	timeout := flag.Duration("timeout", 5*time.Minute, "give up after this long")
	flag.Parse()

	log.Printf("Starting CLI client...")
	if err := run(*server, *params, *out, *timeout); err != nil {
		log.Fatalf("FATAL: %v", err)
	}
}

// run triggers a render on the server, waits for its completion and saves the image.
func run(server, params, out string, timeout time.Duration) error {
	base, err := url.Parse(server)
	if err != nil {
		return fmt.Errorf("server url: %w", err)
	}
	if _, err := url.ParseQuery(params); err != nil {
		return fmt.Errorf("params: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Step 1: Connect to the event stream first so no event of our run is missed
	wsURL := *base
	wsURL.Scheme = strings.Replace(base.Scheme, "http", "ws", 1)
	wsURL.Path = "/ws"
	log.Printf("Connecting to %s...", wsURL.String())

	var (
		id       uint64
		reported int
		failed   error
	)
	err = stream.Watch(ctx, wsURL.String(), func(m stream.Message) bool {
		switch {
		case id == 0 && m.Type == stream.TypeResized:
			// Step 2: The server greets with its grid; ask for our render
			id, failed = requestRender(ctx, base, params)
			return failed == nil
		case m.Run != id:
			return true
		case m.Type == stream.TypeStarted:
			log.Printf("Run %d started on %d workers", m.Run, m.Workers)
		case m.Type == stream.TypeIterated:
			if pct := int(m.Progress * 100); pct/10 > reported/10 || m.Done {
				reported = pct
				log.Printf("Run %d: %d%% (%d/%d points)", m.Run, pct, m.Current, m.Length)
			}
		case m.Type == stream.TypeFault:
			log.Printf("Run %d: point %d failed: %s", m.Run, m.Index, m.Error)
		case m.Final():
			if m.Error != "" {
				failed = fmt.Errorf("run %d failed: %s", m.Run, m.Error)
			}
			return false
		}
		return true
	})
	if err != nil {
		return err
	}
	if failed != nil {
		return failed
	}

	// Step 3: Save the rendered image
	log.Printf("Saving rendered image to %q...", out)
	return download(ctx, base.JoinPath("image.png").String(), out)
}

func requestRender(ctx context.Context, base *url.URL, params string) (uint64, error) {
	u := base.JoinPath("render")
	u.RawQuery = params
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), nil)
	if err != nil {
		return 0, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("post render: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		msg, _ := io.ReadAll(resp.Body)
		return 0, fmt.Errorf("post render: %s: %s", resp.Status, strings.TrimSpace(string(msg)))
	}
	var body struct {
		Run uint64 `json:"run"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, fmt.Errorf("decode render response: %w", err)
	}
	log.Printf("Render %d accepted", body.Run)
	return body.Run, nil
}

func download(ctx context.Context, src, dst string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("get image: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("get image: %s", resp.Status)
	}

	f, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, resp.Body); err != nil {
		return fmt.Errorf("write %s: %w", dst, err)
	}
	log.Printf("Fully rendered image saved to %q", dst)
	return f.Close()
}
