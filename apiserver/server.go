// Package apiserver exposes the state of a running simulation over HTTP
package apiserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/netrixframework/dtnroute/log"
	"github.com/netrixframework/dtnroute/routing"
	"github.com/netrixframework/dtnroute/sim"
	"github.com/netrixframework/dtnroute/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DefaultAddr is the default address of the APIServer
const DefaultAddr = "0.0.0.0:7074"

// World is the part of sim.World served by the APIServer
type World interface {
	Nodes() []sim.NodeView
	Node(types.Address) (sim.NodeView, bool)
	Values(types.Address) ([]routing.Entry, bool)
	Deliveries() []sim.Delivery
	Report() *sim.Report
	Step()
}

var _ World = &sim.World{}

// APIServer runs a HTTP server to inspect the nodes of a simulation
// and scrape the routing metrics
type APIServer struct {
	router *gin.Engine
	world  World

	server *http.Server
	addr   string

	*types.BaseService
}

var _ types.Service = &APIServer{}

// NewAPIServer instantiates APIServer. A nil gatherer serves the default prometheus registry.
func NewAPIServer(addr string, world World, gatherer prometheus.Gatherer, logger *log.Logger) *APIServer {
	if addr == "" {
		addr = DefaultAddr
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	server := &APIServer{
		world:       world,
		addr:        addr,
		BaseService: types.NewBaseService("APIServer", logger),
	}
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(server.logMiddleware)

	router.GET("/nodes", server.handleNodes)
	router.GET("/nodes/:node", server.handleNodeGet)
	router.GET("/nodes/:node/values", server.handleNodeValues)
	router.GET("/deliveries", server.handleDeliveries)
	router.GET("/report", server.handleReport)
	router.POST("/step", server.handleStep)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	server.router = router
	server.server = &http.Server{
		Addr:    server.addr,
		Handler: router,
	}

	return server
}

// Handler returns the http handler serving the routes
func (a *APIServer) Handler() http.Handler {
	return a.router
}

func (a *APIServer) logMiddleware(c *gin.Context) {
	start := time.Now()
	path := c.Request.URL.Path
	raw := c.Request.URL.RawQuery

	c.Next()

	end := time.Now()
	if raw != "" {
		path = path + "?" + raw
	}
	a.Logger.With(log.LogParams{
		"timestamp":   end,
		"latency":     end.Sub(start).String(),
		"client_ip":   c.ClientIP(),
		"method":      c.Request.Method,
		"status_code": c.Writer.Status(),
		"error":       c.Errors.ByType(gin.ErrorTypePrivate).String(),
		"body_size":   c.Writer.Size(),
		"path":        path,
	}).Debug("Handled request")
}

// Start starts the APIServer and implements Service
func (a *APIServer) Start() error {
	a.StartRunning()
	go func() {
		a.Logger.With(log.LogParams{
			"addr": a.addr,
		}).Info("API server starting!")
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.With(log.LogParams{
				"addr": a.addr,
				"err":  err,
			}).Fatal("API server closed!")
		}
	}()
	return nil
}

// Stop stops the APIServer and implements Service
func (a *APIServer) Stop() error {
	a.StopRunning()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.server.Shutdown(ctx); err != nil {
		a.Logger.Error("API server forcefully shutdown")
		return err
	}
	a.Logger.Info("API server stopped!")
	return nil
}
