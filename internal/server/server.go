// Package server is the optional trigger/report HTTP API: a small gin
// surface that loads test documents from a flows directory at startup and
// exposes POST /run to execute one by name, returning a single JSON run
// report once the run finishes. This is not part of the core — the core never touches a
// network listener — it is the one concrete "driven" surface this repo
// ships alongside the CLI.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/kfusac/httpspec/internal/assemble"
	"github.com/kfusac/httpspec/internal/docload"
	"github.com/kfusac/httpspec/internal/runner"
)

// Server loads a fixed set of assembled documents at startup and serves
// them by name over HTTP.
type Server struct {
	Runner *runner.Runner
	docs   map[string]*assemble.Document
	http   *http.Server
}

// New builds a Server bound to r's Store/Registry/Client.
func New(r *runner.Runner) *Server {
	return &Server{Runner: r, docs: map[string]*assemble.Document{}}
}

// LoadFlows walks flowsDir for .yaml/.yml/.json files, assembles each one
// against the Server's Store, and registers the result under its
// config.name. Per spec.md §5, this happens once at startup: the Store is
// read-only thereafter and concurrent /run requests share it safely.
func (s *Server) LoadFlows(flowsDir string) error {
	files, err := docload.LoadFolderFiles(flowsDir)
	if err != nil {
		return err
	}

	for _, path := range files {
		items, err := docload.LoadBlockList(path)
		if err != nil {
			return err
		}

		doc, err := assemble.AssembleTestFile(items, s.Runner.Store)
		if err != nil {
			return err
		}

		name, _ := doc.Config["name"].(string)
		if name == "" {
			slog.Warn("skipping flow with no config.name", "path", path)
			continue
		}
		s.docs[name] = doc
	}

	return nil
}


// runRequest is the POST /run request body: the name of a loaded document.
type runRequest struct {
	Name string `json:"name" binding:"required"`
}

// runReport is the POST /run response body.
type runReport struct {
	RunID  string              `json:"run_id"`
	Name   string              `json:"name"`
	Passed bool                `json:"passed"`
	Cases  []runner.CaseReport `json:"cases"`
}

func (s *Server) handleRun(c *gin.Context) {
	var req runRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	doc, ok := s.docs[req.Name]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"message": fmt.Sprintf("no flow registered under name %q", req.Name)})
		return
	}

	runID := uuid.NewString()
	slog.Info("run started", "run_id", runID, "name", req.Name)

	cases, err := s.Runner.RunDocument(c.Request.Context(), doc)
	if err != nil {
		slog.Error("run aborted", "run_id", runID, "name", req.Name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"run_id": runID, "message": err.Error()})
		return
	}

	passed := true
	for _, cs := range cases {
		if !cs.Passed() {
			passed = false
			break
		}
	}

	slog.Info("run finished", "run_id", runID, "name", req.Name, "passed", passed)
	c.JSON(http.StatusOK, runReport{RunID: runID, Name: req.Name, Passed: passed, Cases: cases})
}

// Router builds the gin engine, registered routes included. Exposed
// separately from Start so tests can drive it with httptest without
// binding a real listener.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.POST("/run", s.handleRun)
	return router
}

// Start loads flowsDir, binds addr, and blocks until an interrupt or
// SIGTERM triggers a graceful shutdown, mirroring the teacher's App.Start
// signal-handling shape.
func (s *Server) Start(ctx context.Context, addr, flowsDir string) error {
	if err := s.LoadFlows(flowsDir); err != nil {
		return err
	}

	gin.SetMode(gin.ReleaseMode)
	s.http = &http.Server{Addr: addr, Handler: s.Router()}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	shutdownErr := make(chan error, 1)
	go func() {
		<-sigChan
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		shutdownErr <- s.http.Shutdown(shutdownCtx)
	}()

	slog.Info("server listening", "addr", addr, "flows", len(s.docs))
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}

	return <-shutdownErr
}
