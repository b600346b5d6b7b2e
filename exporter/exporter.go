package exporter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/scitags/rdma-res-go/filter"
	"github.com/scitags/rdma-res-go/render"
	"github.com/scitags/rdma-res-go/res"
	"github.com/scitags/rdma-res-go/types"
)

const (
	JSON_PRETTY_INDENT string = "    "
)

var logger *slog.Logger

// Querier runs resource queries. It's implemented by *res.Client.
type Querier interface {
	Show(q res.Query, sink res.Sink) (res.Stats, error)
}

// pruner is implemented by process name caches that need housekeeping.
type pruner interface {
	Prune() int
}

type rootResponse struct {
	ApiRoutes []*echo.Route
}

type errorResponse struct {
	Error string `json:"error"`
}

type extendedContext struct {
	echo.Context
	apiRoutes []*echo.Route
	exporter  *Exporter
}

// Exporter publishes resources over HTTP both as JSON and as prometheus
// metrics. Queries are serialised as the underlying netlink connection can't
// be shared.
type Exporter struct {
	Config

	sync.Mutex
	client Querier
	comm   render.CommLookup
	kinds  []types.Kind

	server *echo.Echo
	m      *metrics

	statsMu sync.Mutex
	stats   map[string]res.Stats
}

func (e *Exporter) String() string {
	return "exporter"
}

func New(c *Config, client Querier, comm render.CommLookup) (*Exporter, error) {
	if c.Log {
		logger = slog.Default().With("t", "exporter")
	} else {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	logger.Debug("initialising the exporter")

	e := Exporter{
		Config: *c,
		client: client,
		comm:   comm,
		stats:  map[string]res.Stats{},
	}

	for _, k := range c.Kinds {
		kind, ok := types.ParseKind(k)
		if !ok {
			return nil, fmt.Errorf("unknown resource kind %q", k)
		}
		e.kinds = append(e.kinds, kind)
	}
	if len(e.kinds) == 0 {
		e.kinds = types.Kinds()
	}

	if e.Period <= 0 {
		return nil, fmt.Errorf("the polling period must be positive, got %d", e.Period)
	}

	// Create a non-global registry.
	reg := prometheus.NewRegistry()

	e.m = newMetrics()
	if err := e.m.register(reg); err != nil {
		return nil, fmt.Errorf("error registering the metrics: %w", err)
	}

	e.server = echo.New()

	// Prevent the banner from showing up in the log
	e.server.HideBanner = true
	e.server.HidePort = true

	// Extend the context of the handlers so that they can reach us.
	e.server.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			return next(&extendedContext{c, e.server.Routes(), &e})
		}
	})

	// Configure the methods for each path
	e.server.GET("/", handleRoot)
	e.server.GET("/res/:kind", handleResources)
	e.server.GET("/stats", handleStats)
	e.server.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})))

	return &e, nil
}

// ServeHTTP lets the exporter be driven without listening on a socket.
func (e *Exporter) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	e.server.ServeHTTP(w, r)
}

func (e *Exporter) Run(done <-chan struct{}) {
	logger.Debug("running the exporter")

	go func() {
		if err := e.server.Start(fmt.Sprintf("%s:%d", e.BindAddress, e.BindPort)); err != http.ErrServerClosed {
			logger.Error("couldn't start the exporter server", "err", err)
		}
	}()

	e.poll()

	ticker := time.NewTicker(time.Duration(e.Period) * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			e.poll()
		case <-done:
			logger.Debug("cleanly exiting the exporter")
			return
		}
	}
}

func (e *Exporter) Cleanup() error {
	logger.Debug("cleaning up the exporter")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := e.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("error shutting down the exporter server: %w", err)
	}
	return nil
}

// poll refreshes the metrics for every configured kind.
func (e *Exporter) poll() {
	e.m.Polls.Inc()

	for _, kind := range e.kinds {
		counts := map[string]int{}
		sink := res.SinkFunc(func(r *types.Record) error {
			counts[r.DevName]++
			return nil
		})

		e.Lock()
		stats, err := e.client.Show(res.Query{Kind: kind}, sink)
		e.Unlock()

		if err != nil {
			logger.Warn("couldn't poll resources", "kind", kind, "err", err)
			e.m.PollErrors.WithLabelValues(kind.String()).Inc()
			continue
		}

		e.m.update(kind, counts, stats.Skipped)

		e.statsMu.Lock()
		e.stats[kind.String()] = stats
		e.statsMu.Unlock()

		logger.Debug("polled resources", "kind", kind, "rendered", stats.Rendered)
	}

	if p, ok := e.comm.(pruner); ok {
		p.Prune()
	}
}

// query runs a one-off query rendering its results as a JSON array.
func (e *Exporter) query(q res.Query, details bool) ([]byte, error) {
	var buf bytes.Buffer
	r := render.New(&buf, render.Options{JSON: true, Details: details, Comm: e.comm})

	e.Lock()
	_, err := e.client.Show(q, r)
	e.Unlock()

	if err != nil {
		return nil, err
	}

	if err := r.Flush(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func handleRoot(c echo.Context) error {
	cc := c.(*extendedContext)
	return c.JSONPretty(http.StatusOK, &rootResponse{
		ApiRoutes: cc.apiRoutes,
	}, JSON_PRETTY_INDENT)
}

// handleResources serves /res/:kind. The dev, port and details query
// parameters are special: every other parameter is a filter.
func handleResources(c echo.Context) error {
	cc := c.(*extendedContext)

	kind, ok := types.ParseKind(c.Param("kind"))
	if !ok {
		return c.JSONPretty(http.StatusNotFound, &errorResponse{
			Error: fmt.Sprintf("unknown resource kind %q", c.Param("kind")),
		}, JSON_PRETTY_INDENT)
	}

	q := res.Query{Kind: kind}
	details := false

	params := c.QueryParams()
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		for _, value := range params[name] {
			switch name {
			case "dev":
				q.Device = value
			case "port":
				port, err := strconv.ParseUint(value, 10, 32)
				if err != nil {
					return c.JSONPretty(http.StatusBadRequest, &errorResponse{
						Error: fmt.Sprintf("invalid port %q", value),
					}, JSON_PRETTY_INDENT)
				}
				q.Port = uint32(port)
			case "details":
				details, _ = strconv.ParseBool(value)
			default:
				q.Filters = append(q.Filters, filter.Pair{Name: name, Value: value})
			}
		}
	}

	out, err := cc.exporter.query(q, details)
	if err != nil {
		code := http.StatusInternalServerError
		switch {
		case errors.Is(err, filter.ErrInvalid):
			code = http.StatusBadRequest
		case errors.Is(err, res.ErrNoDevice):
			code = http.StatusNotFound
		}
		return c.JSONPretty(code, &errorResponse{Error: err.Error()}, JSON_PRETTY_INDENT)
	}

	return c.JSONBlob(http.StatusOK, out)
}

func handleStats(c echo.Context) error {
	cc := c.(*extendedContext)

	cc.exporter.statsMu.Lock()
	defer cc.exporter.statsMu.Unlock()

	return c.JSONPretty(http.StatusOK, cc.exporter.stats, JSON_PRETTY_INDENT)
}
