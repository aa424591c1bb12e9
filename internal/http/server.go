// Package http exposes the ledger and reporting operations as a JSON API.
package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"finassist/internal/core"
	applog "finassist/internal/log"
	"finassist/internal/middleware/ratelimit"
	"finassist/internal/middleware/security"
	"finassist/internal/middleware/trace"
	"finassist/internal/storage"
	"finassist/internal/tools"
)

type (
	// ToolDispatcher runs a named tool with JSON arguments.
	ToolDispatcher interface {
		Dispatch(ctx context.Context, name string, raw json.RawMessage) any
	}

	// ReportWriter writes a spending workbook and returns its path.
	ReportWriter interface {
		Write(userID int64, insights core.SpendingInsights) (string, error)
	}
)

// Deps are the collaborators behind the routes.
type Deps struct {
	Services tools.Services
	Tools    ToolDispatcher
	Reports  ReportWriter
	// Store backs /readyz; nil means always ready.
	Store storage.Connector
	// WriteRateLimit caps ledger writes per client per minute; 0 disables it.
	WriteRateLimit int
}

type Server struct {
	http.Server
	deps    Deps
	limiter *ratelimit.Limiter
	log     *applog.Logger
}

// NewServer configures routes and middleware, returning a ready-to-run http.Server.
func NewServer(addr string, deps Deps, logger *applog.Logger) *Server {
	if logger == nil {
		logger = applog.FromContext(context.Background())
	}
	logger = logger.WithComponent(applog.ComponentHTTP)

	s := &Server{deps: deps, log: logger}
	clientIP := security.NewClientIP()

	var limitWrites func(http.Handler) http.Handler
	if deps.WriteRateLimit > 0 {
		s.limiter = ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: deps.WriteRateLimit})
		limitWrites = s.limiter.Middleware(clientIP.Extract, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusTooManyRequests, tools.ErrorResult{Error: "Rate limit exceeded. Please try again later."})
		})
	} else {
		limitWrites = func(next http.Handler) http.Handler { return next }
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /users/{id}", s.handleProfile)
	mux.HandleFunc("GET /users/{id}/spending", s.handleSpending)
	mux.HandleFunc("GET /users/{id}/spending/report", s.handleSpendingReport)
	mux.HandleFunc("GET /users/{id}/advice", s.handleAdvice)
	mux.HandleFunc("GET /users/{id}/forecast", s.handleForecast)

	mux.Handle("POST /transactions", limitWrites(http.HandlerFunc(s.handleRecord)))
	mux.HandleFunc("POST /transactions/{id}/receipt", s.handleCreateReceipt)
	mux.HandleFunc("GET /transactions/{id}/receipt", s.handleDownloadReceipt)

	mux.HandleFunc("GET /tools", handleListTools)
	mux.HandleFunc("POST /tools/{name}", s.handleCallTool)

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	tracer := trace.NewMiddleware(logger, clientIP.Extract)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           tracer.Middleware(headers.Middleware(mux)),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

// Shutdown stops accepting requests, waits for in-flight ones and releases the limiter.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.limiter != nil {
		s.limiter.Stop()
	}
	s.log.InfoContext(ctx, "Shutting down HTTP server", applog.FieldOperation, applog.OpShutdown)
	return s.Server.Shutdown(ctx)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// handleReady reports ready once a storage session can be acquired.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.deps.Store != nil {
		sess, err := s.deps.Store.Connect(r.Context())
		if err != nil {
			writeFailure(w, r, core.Fail(core.ErrConnection, core.MsgConnectionFailed, err))
			return
		}
		_ = sess.Close()
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
