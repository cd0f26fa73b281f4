package mcp

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/pimctx/internal/logger"
)

// Version is the MCP server version.
const Version = "0.1.0"

// HTTP server limits.
const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 5 * time.Second
)

// Server exposes product retrieval and fact lookups as MCP tools.
type Server struct {
	ports  *Ports
	server *mcp.Server
}

// NewServer creates a new MCP server with the given ports.
func NewServer(ports *Ports) (*Server, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("validating ports: %w", err)
	}

	impl := &mcp.Implementation{
		Name:    "pimctx",
		Title:   "Product catalog context",
		Version: Version,
	}

	s := &Server{
		ports:  ports,
		server: mcp.NewServer(impl, &mcp.ServerOptions{Instructions: instructions(ports)}),
	}
	s.server.AddReceivingMiddleware(logRequests)

	s.registerTools()
	s.registerResources()

	return s, nil
}

// instructions tells the client which tools ground answers in the catalog.
func instructions(ports *Ports) string {
	var b strings.Builder
	b.WriteString("Answer product questions only from catalog data returned by these tools. ")
	b.WriteString("Use get_product_context for free-text questions; its blocks are ordered by relevance. ")
	if ports.Catalog != nil {
		b.WriteString("Use the get_product_* and find_products_* tools for exact lookups by product id, ")
		b.WriteString("category or attribute value. ")
	}
	b.WriteString("If a tool reports no matching products, say so instead of guessing.")
	return b.String()
}

// logRequests logs every tool call and resource read with its duration.
func logRequests(next mcp.MethodHandler) mcp.MethodHandler {
	return func(ctx context.Context, method string, req mcp.Request) (mcp.Result, error) {
		if method != "tools/call" && method != "resources/read" {
			return next(ctx, method, req)
		}
		start := time.Now()
		result, err := next(ctx, method, req)
		if err != nil {
			logger.Warn("MCP %s failed after %s: %v", method, time.Since(start).Round(time.Millisecond), err)
		} else {
			logger.Debug("MCP %s served in %s", method, time.Since(start).Round(time.Millisecond))
		}
		return result, err
	}
}

// Run serves MCP over stdio until the context is cancelled or the client
// disconnects.
func (s *Server) Run(ctx context.Context) error {
	logger.Info("MCP server ready on stdio")
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// Handler returns the streamable HTTP handler for the server.
func (s *Server) Handler() http.Handler {
	return mcp.NewStreamableHTTPHandler(func(_ *http.Request) *mcp.Server {
		return s.server
	}, nil)
}

// RunHTTP serves MCP over HTTP on addr until the context is cancelled.
func (s *Server) RunHTTP(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}
	return s.serve(ctx, ln)
}

func (s *Server) serve(ctx context.Context, ln net.Listener) error {
	httpServer := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("MCP HTTP shutdown: %v", err)
		}
	}()

	logger.Info("MCP server listening on %s", ln.Addr())
	err := httpServer.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		<-stopped
		return nil
	}
	return err
}
