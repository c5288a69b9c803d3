// Package adminapi is the diagnostics surface over a running executor:
// the SNMP-style remote-IP counter table, the worker pool size, and
// pprof. Built on easygin/wrapper.go, over gin-gonic/gin with gin-contrib/gzip
// response compression and DeanThompson/ginpprof profiling routes.
package adminapi

import (
	"strconv"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/hello-pionex/sentinel-httpclient/code"
	"github.com/hello-pionex/sentinel-httpclient/easygin"
	"github.com/hello-pionex/sentinel-httpclient/executor"
)

// Server exposes the executor's internal state for operators — it
// never drives traffic itself, it only reports on the Executor it was
// built with.
type Server struct {
	engine  *gin.Engine
	root    *gin.RouterGroup
	wrapper *easygin.Wrapper
	ex      *executor.Executor
}

// New builds a Server around ex. pprofPathPrefix, when non-empty,
// mounts pprof under that path instead of at the engine root,
// mirroring easygin.Wrapper.SetupPprof.
func New(ex *executor.Executor, pprofPathPrefix string) *Server {
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(gzip.Gzip(gzip.DefaultCompression))

	wrapper := easygin.New(&easygin.Config{
		GinEngine: engine,
		WrapOption: *easygin.NewWrapOption().
			LogEntry(logrus.WithField("pkg", "adminapi")),
	})

	s := &Server{engine: engine, root: engine.Group(""), wrapper: wrapper, ex: ex}
	s.routes()
	wrapper.SetupPprof(pprofPathPrefix)

	return s
}

// Engine returns the underlying *gin.Engine so the caller can call
// Run/RunTLS or mount it behind its own http.Server.
func (s *Server) Engine() *gin.Engine { return s.engine }

func (s *Server) routes() {
	s.wrapper.Get(s.root, "/diag/pool", s.getPool)
	s.wrapper.Get(s.root, "/diag/snmp", s.getSNMP)
	s.wrapper.Post(s.root, "/diag/worker/:id/teardown", s.teardownWorker)
}

type poolDiag struct {
	WorkerCount int `json:"worker_count"`
}

func (s *Server) getPool(ctx *gin.Context) (interface{}, error) {
	return poolDiag{WorkerCount: s.ex.Pool().Len()}, nil
}

func (s *Server) getSNMP(ctx *gin.Context) (interface{}, error) {
	return s.ex.IPCountTable().Snapshot(), nil
}

type teardownResult struct {
	WorkerID int `json:"worker_id"`
}

// teardownWorker forces recycling of one worker's cached connection,
// for operators draining a worker before a restart. Demonstrates the
// code.Error path easygin.Wrapper converts into a structured error
// response.
func (s *Server) teardownWorker(ctx *gin.Context) (interface{}, error) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return nil, code.NewMcodef("BAD_WORKER_ID", "worker id %q is not an integer", ctx.Param("id"))
	}

	if err := s.ex.Teardown(id); err != nil {
		return nil, code.NewMcodef("WORKER_TEARDOWN_FAILED", "teardown worker %d: %v", id, err)
	}

	return teardownResult{WorkerID: id}, nil
}
