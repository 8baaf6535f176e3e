// Command shadow_compare replays read routes against the legacy web routes
// and the gateway with the same session cookie, and reports where status or
// body differ. Pass-through routes must match exactly.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type target struct {
	Method   string          `json:"method"`
	Path     string          `json:"path"`
	Body     json.RawMessage `json:"body,omitempty"`
	Critical bool            `json:"critical"`
}

type targetFile struct {
	Targets []target `json:"targets"`
}

type reply struct {
	Status   int
	Body     []byte
	Duration time.Duration
}

type comparison struct {
	Target      target
	Gateway     reply
	Legacy      reply
	StatusMatch bool
	BodyMatch   bool
	Err         error
}

func (c comparison) differs() bool {
	return c.Err != nil || !c.StatusMatch || !c.BodyMatch
}

type runner struct {
	client      *http.Client
	gatewayBase string
	legacyBase  string
	cookieName  string
	token       string
}

func main() {
	var (
		r           runner
		targetsPath string
		timeout     time.Duration
	)
	flag.StringVar(&r.gatewayBase, "gateway-base", "http://localhost:8080/api", "gateway base URL including API_PREFIX")
	flag.StringVar(&r.legacyBase, "legacy-base", "http://localhost:3000/api", "legacy web app API base URL")
	flag.StringVar(&targetsPath, "targets", filepath.Join("scripts", "shadow_compare", "targets.json"), "JSON targets file")
	flag.StringVar(&r.cookieName, "cookie", "token", "session cookie name")
	flag.DurationVar(&timeout, "timeout", 10*time.Second, "per request timeout")
	flag.Parse()

	logr, _ := zap.NewDevelopment()
	defer logr.Sync() //nolint:errcheck

	r.token = os.Getenv("SHADOW_SESSION_TOKEN")
	if r.token == "" {
		logr.Fatal("SHADOW_SESSION_TOKEN is required")
	}
	r.client = &http.Client{Timeout: timeout}

	targets, err := loadTargets(targetsPath)
	if err != nil {
		logr.Fatal("failed to load targets", zap.String("path", targetsPath), zap.Error(err))
	}

	var breaking, optional int
	results := make([]comparison, 0, len(targets))
	for _, t := range targets {
		comp := r.compare(context.Background(), t)
		if comp.differs() {
			if t.Critical {
				breaking++
			} else {
				optional++
			}
		}
		results = append(results, comp)
	}

	printReport(os.Stdout, results)
	logr.Info("shadow compare finished", zap.Int("targets", len(results)), zap.Int("breaking", breaking), zap.Int("optional", optional))
	if breaking > 0 {
		os.Exit(1)
	}
}

func loadTargets(path string) ([]target, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var file targetFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, err
	}
	if len(file.Targets) == 0 {
		return nil, fmt.Errorf("no targets defined in %s", path)
	}
	return file.Targets, nil
}

// compare sends the target to both sides concurrently.
func (r runner) compare(ctx context.Context, t target) comparison {
	comp := comparison{Target: t}
	var g errgroup.Group
	g.Go(func() (err error) {
		comp.Gateway, err = r.send(ctx, r.gatewayBase, t)
		if err != nil {
			return fmt.Errorf("gateway: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		comp.Legacy, err = r.send(ctx, r.legacyBase, t)
		if err != nil {
			return fmt.Errorf("legacy: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		comp.Err = err
		return comp
	}
	comp.StatusMatch = comp.Gateway.Status == comp.Legacy.Status
	comp.BodyMatch = bodiesEqual(comp.Gateway.Body, comp.Legacy.Body)
	return comp
}

func (r runner) send(ctx context.Context, base string, t target) (reply, error) {
	method := strings.ToUpper(strings.TrimSpace(t.Method))
	if method == "" {
		method = http.MethodGet
	}
	path := t.Path
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	var body io.Reader
	if len(t.Body) > 0 {
		body = bytes.NewReader(t.Body)
	}
	req, err := http.NewRequestWithContext(ctx, method, strings.TrimRight(base, "/")+path, body)
	if err != nil {
		return reply{}, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.AddCookie(&http.Cookie{Name: r.cookieName, Value: r.token})

	start := time.Now()
	resp, err := r.client.Do(req)
	if err != nil {
		return reply{}, err
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return reply{}, err
	}
	return reply{Status: resp.StatusCode, Body: raw, Duration: time.Since(start)}, nil
}

// bodiesEqual treats two JSON documents as equal when they decode to the same
// value, so key order and whitespace do not count as a difference.
func bodiesEqual(a, b []byte) bool {
	if bytes.Equal(bytes.TrimSpace(a), bytes.TrimSpace(b)) {
		return true
	}
	var aj, bj interface{}
	if err := json.Unmarshal(a, &aj); err != nil {
		return false
	}
	if err := json.Unmarshal(b, &bj); err != nil {
		return false
	}
	return reflect.DeepEqual(aj, bj)
}

func printReport(w io.Writer, results []comparison) {
	fmt.Fprintln(w, "Shadow compare")
	fmt.Fprintln(w, "==============")
	for _, res := range results {
		status := "OK"
		switch {
		case res.Err != nil:
			status = "ERROR"
		case res.differs():
			status = "DIFF"
		}
		fmt.Fprintf(w, "[%s] %s %s\n", status, res.Target.Method, res.Target.Path)
		if res.Err != nil {
			fmt.Fprintf(w, "  error: %v\n", res.Err)
			continue
		}
		fmt.Fprintf(w, "  gateway %d (%s) | legacy %d (%s) | critical %t\n",
			res.Gateway.Status, res.Gateway.Duration, res.Legacy.Status, res.Legacy.Duration, res.Target.Critical)
	}
}
