package lsp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"

	"go.lsp.dev/jsonrpc2"
	"go.uber.org/zap"

	"github.com/woxQAQ/template-css-lsp/internal/addon"
	"github.com/woxQAQ/template-css-lsp/internal/config"
	"github.com/woxQAQ/template-css-lsp/internal/engine"
	"github.com/woxQAQ/template-css-lsp/internal/service"
	"github.com/woxQAQ/template-css-lsp/internal/telemetry"
	"github.com/woxQAQ/template-css-lsp/internal/template"
	"github.com/woxQAQ/template-css-lsp/internal/wasm"
)

// Name identifies the server in the initialize response.
const Name = "template-css-lsp"

// Version is set at build time.
var Version = "dev"

type Server struct {
	cfg       *config.ServerConfig
	logger    *zap.Logger
	addons    *addon.Manager
	service   *service.Service
	locator   *template.Locator
	telemetry *telemetry.Provider
}

// NewServer loads the configured add-ons, binds the one serving
// cfg.Language and builds the completion service over it.
func NewServer(ctx context.Context, cfg *config.ServerConfig, logger *zap.Logger, tel *telemetry.Provider) (*Server, error) {
	// Initialize Wasm runtime.
	wasmConfig := &wasm.RuntimeConfig{
		MemoryPages:  cfg.Wasm.MemoryPages,
		DebugEnabled: cfg.Wasm.Debug,
		CacheDir:     cfg.Wasm.CacheDir,
		MaxInstances: cfg.Wasm.MaxInstances,
	}

	wasmRuntime, err := wasm.NewRuntime(ctx, logger, wasmConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Wasm runtime: %w", err)
	}

	addons := addon.NewManager(cfg, wasmRuntime, wasm.NewHostFunctions(logger), logger)

	eng, err := bindEngine(ctx, addons, cfg.Language, logger)
	if err != nil {
		if shutdownErr := addons.Shutdown(ctx); shutdownErr != nil {
			logger.Warn("Failed to shutdown add-on manager", zap.Error(shutdownErr))
		}
		return nil, err
	}

	s := newServer(cfg, logger, eng, tel)
	s.addons = addons

	logger.Info("LSP server initialized",
		zap.Uint32("wasm_memory_pages", cfg.Wasm.MemoryPages),
		zap.String("wasm_cache_dir", cfg.Wasm.CacheDir),
	)

	return s, nil
}

func bindEngine(ctx context.Context, addons *addon.Manager, language string, logger *zap.Logger) (*engine.WasmEngine, error) {
	if err := addons.LoadAll(ctx); err != nil {
		return nil, fmt.Errorf("failed to load add-ons: %w", err)
	}

	binding, err := addons.Bind(ctx, language)
	if err != nil {
		return nil, err
	}

	return engine.NewWasmEngine(binding.Instance, logger)
}

// newServer builds a server over an existing engine.
func newServer(cfg *config.ServerConfig, logger *zap.Logger, eng engine.Engine, tel *telemetry.Provider) *Server {
	s := &Server{
		cfg:       cfg,
		logger:    logger.With(zap.String("component", "lsp-server")),
		service:   service.New(eng, logger),
		locator:   template.NewLocator(cfg.Tags),
		telemetry: tel,
	}

	s.logger.Info("Template CSS plugin created",
		zap.Strings("tags", cfg.Tags),
		zap.String("language", cfg.Language),
	)

	return s
}

// Close gracefully shuts down the server.
func (s *Server) Close(ctx context.Context) error {
	s.logger.Info("Shutting down LSP server")

	if s.addons != nil {
		// Shutdown Wasm runtime.
		if err := s.addons.Shutdown(ctx); err != nil {
			s.logger.Error("Failed to shutdown add-on manager", zap.Error(err))
			return err
		}
	}

	s.logger.Info("LSP server shutdown complete")
	return nil
}

// ServeStdio serves a single host over stdin and stdout.
func (s *Server) ServeStdio(ctx context.Context) error {
	s.logger.Info("Serving on stdio")
	return s.ServeConn(ctx, &readWriteCloser{os.Stdin, os.Stdout})
}

// ServeTCP accepts hosts on port until ctx is cancelled.
func (s *Server) ServeTCP(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	s.logger.Info("Serving on TCP", zap.String("addr", addr))
	return jsonrpc2.ListenAndServe(ctx, "tcp", addr, s.streamServer(), 0)
}

// Serve accepts hosts on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	return jsonrpc2.Serve(ctx, ln, s.streamServer(), 0)
}

// ServeConn serves one host over rwc until the host exits or disconnects.
func (s *Server) ServeConn(ctx context.Context, rwc io.ReadWriteCloser) error {
	conn := jsonrpc2.NewConn(jsonrpc2.NewStream(rwc))

	errc := make(chan error, 1)
	go func() {
		errc <- s.serveStream(ctx, conn)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		conn.Close()
		return ctx.Err()
	}
}

func (s *Server) streamServer() jsonrpc2.StreamServer {
	return jsonrpc2.ServerFunc(s.serveStream)
}

func (s *Server) serveStream(ctx context.Context, conn jsonrpc2.Conn) error {
	sess := &session{conn: conn}
	conn.Go(ctx, s.handler(sess))
	<-conn.Done()

	err := conn.Err()
	if sess.exited.Load() || errors.Is(err, io.EOF) || errors.Is(err, io.ErrClosedPipe) {
		return nil
	}
	return err
}

// readWriteCloser wraps separate reader/writer into io.ReadWriteCloser.
type readWriteCloser struct {
	io.Reader
	io.Writer
}

func (rwc *readWriteCloser) Close() error {
	// Close writer if it's closeable
	if c, ok := rwc.Writer.(io.Closer); ok {
		return c.Close()
	}

	return nil
}
