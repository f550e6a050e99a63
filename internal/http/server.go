package http

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"expns/internal/core"
	"expns/internal/log"
	"expns/internal/middleware/ratelimit"
	"expns/internal/middleware/security"
	"expns/internal/middleware/trace"
	"expns/internal/services"
	appweb "expns/web"
)

// Ledger is what the HTTP surface needs from the ledger service.
type Ledger interface {
	Add(ctx context.Context, title, category, amountText string) (services.AddResult, error)
	Aggregate(ctx context.Context) (core.ChartSeries, error)
	Transactions(ctx context.Context) ([]core.Transaction, error)
	Len(ctx context.Context) (int, error)
}

type Server struct {
	http.Server
	templates *template.Template
	ledger    Ledger
	logger    *log.Logger

	limiter  *ratelimit.Limiter
	detector *security.Detector
	tracer   *trace.Middleware

	shutdownOnce sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run http.Server.
func NewServer(addr string, ledger Ledger, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	logger = logger.WithComponent(log.ComponentHTTP)

	s := &Server{
		ledger:   ledger,
		logger:   logger,
		limiter:  ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		detector: security.NewDetector(),
	}
	s.tracer = trace.NewMiddleware(logger, s.detector.ExtractClientIP)

	// Parse embedded templates at startup.
	t, err := template.New("").Funcs(template.FuncMap{
		"amount": core.FormatAmount,
	}).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		logger.Warn("Failed parsing templates", log.FieldError, err.Error())
	}
	s.templates = t

	mux := http.NewServeMux()

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", security.StaticAssetMiddleware(3600)(static))
	} else {
		logger.Warn("Failed to mount embedded static FS", log.FieldError, err.Error())
	}

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST /transactions", s.handleAddTransaction)
	mux.HandleFunc("GET /transactions", s.handleListTransactions)
	mux.HandleFunc("GET /chart", s.handleChart)
	mux.HandleFunc("GET /chart.json", s.handleChartJSON)
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /debug/stats", s.handleStats)

	var handler http.Handler = mux
	handler = s.limiter.Middleware(s.detector.ExtractClientIP, nil)(handler)
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)
	handler = s.withDetection(handler)
	handler = s.tracer.Middleware(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// withDetection logs requests that look like probes. They are still served.
func (s *Server) withDetection(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.detector.DetectSuspiciousRequest(r) {
			log.FromContext(r.Context()).WarnContext(r.Context(), "Suspicious request",
				"query", r.URL.RawQuery,
				"user_agent", r.Header.Get("User-Agent"))
		}
		next.ServeHTTP(w, r)
	})
}

// Shutdown gracefully shuts down the server and cleanup routines
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// render executes a template into memory so failures never leave a half-written page.
func (s *Server) render(name string, data any) ([]byte, error) {
	if s.templates == nil {
		return nil, fmt.Errorf("templates not loaded")
	}
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, fmt.Errorf("execute %s: %w", name, err)
	}
	return buf.Bytes(), nil
}
