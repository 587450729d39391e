package http

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"sync"
	"time"

	"coachpay/internal/cache"
	"coachpay/internal/core"
	applog "coachpay/internal/log"
	"coachpay/internal/metrics"
	"coachpay/internal/middleware/ratelimit"
	"coachpay/internal/middleware/security"
	"coachpay/internal/middleware/trace"
	"coachpay/internal/services"
	appweb "coachpay/web"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// AccessPhraseHeader carries the admin phrase on /api requests.
const AccessPhraseHeader = "X-Access-Phrase"

// Deps are the services the handlers call.
type Deps struct {
	Records  *services.RecordService
	Payments *services.PaymentService
	Metrics  *metrics.Manager
	Logger   *applog.Logger
	// Ready reports backend readiness; nil means always ready.
	Ready func(ctx context.Context) error
}

// Options tune the HTTP layer.
type Options struct {
	OperatorPhrase     string
	AdminPhrase        string
	SessionTTL         time.Duration
	MaxSessions        int
	SecureCookies      bool
	RateLimitPerMinute int
	CORSAllowedOrigins []string
	TrustedProxies     []string
	// Now replaces time.Now for the default month and session clock.
	Now func() time.Time
}

type Server struct {
	http.Server
	templates *template.Template

	records  *services.RecordService
	payments *services.PaymentService
	metrics  *metrics.Manager
	logger   *applog.Logger
	ready    func(ctx context.Context) error

	gate     Gate
	sessions *SessionStore
	limiter  *ratelimit.Limiter
	clientIP *security.ClientIPResolver
	janitor  *cache.Janitor
	now      func() time.Time
	started  time.Time

	stopBackground context.CancelFunc
	shutdownOnce   sync.Once
}

// NewServer parses templates, wires the router and starts the session and
// rate limiter cleanup loops, which Shutdown stops.
func NewServer(addr string, deps Deps, opts Options) (*Server, error) {
	if deps.Records == nil || deps.Payments == nil {
		return nil, errors.New("record and payment services are required")
	}
	if deps.Logger == nil {
		deps.Logger = applog.New(applog.DefaultConfig())
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 12 * time.Hour
	}
	if opts.MaxSessions <= 0 {
		opts.MaxSessions = 1000
	}

	proxies := opts.TrustedProxies
	if proxies == nil {
		proxies = security.DefaultTrustedProxies
	}
	resolver, err := security.NewClientIPResolver(proxies...)
	if err != nil {
		return nil, fmt.Errorf("trusted proxies: %w", err)
	}

	tmpl, err := parseTemplates()
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	logger := deps.Logger.WithComponent(applog.ComponentHTTP)
	sessions := NewSessionStore(opts.MaxSessions, opts.SessionTTL, opts.SecureCookies, cache.WithClock(opts.Now))

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      60 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		templates: tmpl,
		records:   deps.Records,
		payments:  deps.Payments,
		metrics:   deps.Metrics,
		logger:    logger,
		ready:     deps.Ready,
		gate:      NewGate(opts.OperatorPhrase, opts.AdminPhrase),
		sessions:  sessions,
		limiter:   ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute, Now: opts.Now}),
		clientIP:  resolver,
		janitor:   cache.NewJanitor(logger.Logger, sessions.Cleaner()),
		now:       opts.Now,
		started:   opts.Now(),
	}
	s.Handler = s.routes(opts)

	bg, cancel := context.WithCancel(context.Background())
	s.stopBackground = cancel
	go s.limiter.Run(bg, 5*time.Minute)
	go s.janitor.Run(bg, 10*time.Minute)

	return s, nil
}

func (s *Server) routes(opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(applog.Middleware(s.logger, func(req *http.Request) string {
		return middleware.GetReqID(req.Context())
	}))
	r.Use(trace.NewMiddleware(s.clientIP.ClientIP, s.logger, s.metrics).Handler)
	r.Use(middleware.Recoverer)
	r.Use(security.Headers(security.DefaultHeadersConfig()))
	r.Use(s.limiter.Middleware(s.clientIP.ClientIP, s.onRateLimit))

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		r.With(security.StaticAssetMiddleware(3600)).
			Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(sub))))
	} else {
		s.logger.Warn("Failed to mount embedded static FS", "error", err)
	}

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics.Handler())
	}

	r.Get("/", s.handleIndex)
	r.Post("/login", s.handleLogin)
	r.Post("/logout", s.handleLogout)

	r.Group(func(r chi.Router) {
		r.Use(s.requireAccess(AccessOperator))
		r.Post("/records", s.handleCreateRecords)
		r.Get("/ui/blocks", s.handleBlocks)
		r.Get("/ui/days", s.handleDays)
		r.Post("/ui/days/toggle", s.handleToggleDay)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(s.requireAccess(AccessAdmin))
		r.Use(security.NoStore)
		r.Get("/", s.handleAdmin)
		r.Get("/records.csv", s.handleExportRecordsCSV)
		r.Get("/records.xlsx", s.handleExportRecordsXLSX)
		r.Post("/clear", s.handleClear)
		r.Get("/payments", s.handlePayments)
		r.Get("/payments.csv", s.handleExportPaymentsCSV)
		r.Get("/payments.xlsx", s.handleExportPaymentsXLSX)
	})

	origins := opts.CORSAllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Route("/api", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: origins,
			AllowedMethods: []string{"GET", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type", AccessPhraseHeader},
			MaxAge:         300,
		}))
		r.Use(s.requireAPIPhrase)
		r.Get("/records", s.handleAPIRecords)
		r.Get("/payments", s.handleAPIPayments)
		r.Get("/months", s.handleAPIMonths)
	})

	return r
}

func parseTemplates() (*template.Template, error) {
	funcs := template.FuncMap{
		"euros": formatEuros,
		"add":   func(a, b int) int { return a + b },
		"join": func(days []int) string {
			parts := make([]string, len(days))
			for i, d := range days {
				parts[i] = fmt.Sprint(d)
			}
			return strings.Join(parts, " ")
		},
		"monthName": func(m core.Month) string { return m.String() },
	}
	return template.New("").Funcs(funcs).ParseFS(appweb.TemplatesFS, "templates/*.html")
}

// Shutdown stops the background loops and the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.stopBackground != nil {
			s.stopBackground()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// requireAccess lets a request through when its session holds at least
// level.
func (s *Server) requireAccess(level AccessLevel) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := s.sessions.Lookup(r)
			if sess == nil || sess.Access() < level {
				applog.FromContext(r.Context()).Warn("Access denied",
					applog.FieldPath, r.URL.Path,
					applog.FieldAccess, level.String())
				if r.Method == http.MethodGet && r.Header.Get("HX-Request") == "" {
					http.Redirect(w, r, "/", http.StatusSeeOther)
					return
				}
				ForbiddenError(msgForbidden).Write(w)
				return
			}
			next.ServeHTTP(w, r.WithContext(withSession(r.Context(), sess)))
		})
	}
}

// requireAPIPhrase gates /api on the admin phrase header.
func (s *Server) requireAPIPhrase(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}
		if !s.gate.Check(r.Header.Get(AccessPhraseHeader)).IsAdmin() {
			writeJSONError(w, http.StatusUnauthorized, "admin access phrase required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) onRateLimit(w http.ResponseWriter, r *http.Request) {
	applog.FromContext(r.Context()).Warn("Rate limit exceeded",
		applog.FieldClientIP, s.clientIP.ClientIP(r),
		applog.FieldMethod, r.Method,
		applog.FieldPath, r.URL.Path)
	if strings.HasPrefix(r.URL.Path, "/api/") {
		writeJSONError(w, http.StatusTooManyRequests, "rate limit exceeded")
		return
	}
	TooManyRequestsError(msgRateLimited).Write(w)
}

type sessionKey struct{}

func withSession(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, sess)
}

// sessionFrom returns the session stored by requireAccess.
func sessionFrom(ctx context.Context) *Session {
	sess, _ := ctx.Value(sessionKey{}).(*Session)
	return sess
}
