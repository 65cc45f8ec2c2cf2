package taskly

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/taskly-dev/taskly/pkg/auth"
	"github.com/taskly-dev/taskly/pkg/authapi"
	"github.com/taskly-dev/taskly/pkg/form"
	"github.com/taskly-dev/taskly/pkg/instance"
	"github.com/taskly-dev/taskly/pkg/live"
	"github.com/taskly-dev/taskly/pkg/middleware"
	"github.com/taskly-dev/taskly/pkg/views"
)

// Form names used in metrics and logs.
const (
	FormLogin  = "login"
	FormSignup = "signup"
)

// requestBuckets extend the default latency buckets: a plain POST waits for
// the auth backend before answering.
var requestBuckets = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30}

// App is the taskly web application. It implements http.Handler.
//
//	app, err := taskly.New(taskly.DefaultConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer app.Close()
//	http.ListenAndServe(":3000", app)
type App struct {
	router  chi.Router
	login   *formRoute[auth.LoginFields]
	signup  *formRoute[auth.SignupFields]
	metrics *middleware.Metrics

	config Config
	logger *slog.Logger
}

// New creates the application. It fails when no Backend is given and
// APIBaseURL is not an absolute URL.
func New(cfg Config) (*App, error) {
	defaults := DefaultConfig()
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaults.ShutdownTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Registry == nil {
		cfg.Registry = prometheus.NewRegistry()
		cfg.Registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	if cfg.Live.CheckOrigin == nil {
		cfg.Live.CheckOrigin = originChecker(cfg.AllowedOrigins, cfg.DevMode)
	}

	backend := cfg.Backend
	if backend == nil {
		client, err := authapi.New(cfg.APIBaseURL, authapi.WithLogger(cfg.Logger))
		if err != nil {
			return nil, err
		}
		backend = client
		cfg.Logger.Info("auth backend configured", "base_url", client.BaseURL())
	}

	a := &App{
		metrics: middleware.NewMetrics(
			middleware.WithRegistry(cfg.Registry),
			middleware.WithBuckets(requestBuckets),
		),
		config:  cfg,
		logger:  cfg.Logger.With("component", "app"),
	}
	formLogger := cfg.Logger.With("component", "form")

	a.login = &formRoute[auth.LoginFields]{
		name:  FormLogin,
		pages: instance.NewManager[*formPage[auth.LoginFields]](cfg.Instances, cfg.Logger),
		newForm: func() *form.Form[auth.LoginFields] {
			return auth.NewLoginForm(meteredSubmitter[auth.LoginFields]{
				name:    FormLogin,
				next:    auth.LoginSubmitter{Backend: backend},
				metrics: a.metrics,
			}, form.WithLogger(formLogger))
		},
		fragment: views.LoginForm,
		document: views.LoginPage,
		metrics:  a.metrics,
		logger:   a.logger,
	}
	a.signup = &formRoute[auth.SignupFields]{
		name:  FormSignup,
		pages: instance.NewManager[*formPage[auth.SignupFields]](cfg.Instances, cfg.Logger),
		newForm: func() *form.Form[auth.SignupFields] {
			return auth.NewSignupForm(meteredSubmitter[auth.SignupFields]{
				name:    FormSignup,
				next:    auth.SignupSubmitter{Backend: backend},
				metrics: a.metrics,
			}, form.WithLogger(formLogger))
		},
		fragment: views.SignupForm,
		document: views.SignupPage,
		metrics:  a.metrics,
		logger:   a.logger,
	}

	liveConfig := cfg.Live
	liveConfig.Track = a.metrics.LiveConnected
	liveConfig.Release = a.release
	a.router = a.routes(live.NewHandler(a.resolve, liveConfig, cfg.Logger))

	return a, nil
}

func (a *App) routes(liveHandler http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.CanonicalPath)
	r.Use(requestLogger(a.logger))
	r.Use(chimw.Recoverer)
	r.Use(middleware.Tracing(
		middleware.WithTracerName("taskly/http"),
		middleware.WithSkipPaths("/healthz", "/metrics", live.Path),
	))
	r.Use(a.metrics.Handler)

	r.Get("/", http.RedirectHandler("/todos", http.StatusFound).ServeHTTP)
	r.Get("/login", a.login.get)
	r.Post("/login", a.login.post)
	r.Get("/sign-up", a.signup.get)
	r.Post("/sign-up", a.signup.post)
	r.Get("/logout", http.RedirectHandler("/login", http.StatusFound).ServeHTTP)
	r.Get("/todos", a.todos)
	r.Get("/profile", a.profile)

	r.Handle(live.Path, liveHandler)
	r.Handle(live.ScriptPath, live.ScriptHandler())
	r.Handle("/metrics", promhttp.HandlerFor(a.config.Registry, promhttp.HandlerOpts{}))
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	return r
}

// resolve maps a live page name and instance ID to the form instance.
func (a *App) resolve(page, id string) (live.Page, error) {
	switch page {
	case views.PageLogin:
		return a.login.resolve(id)
	case views.PageSignup:
		return a.signup.resolve(id)
	default:
		return nil, fmt.Errorf("%w: unknown page %q", instance.ErrNotFound, page)
	}
}

// release drops a form instance once its live connection closes. A later
// plain POST naming it starts over from the posted values.
func (a *App) release(page, id string) {
	switch page {
	case views.PageLogin:
		a.login.release(id)
	case views.PageSignup:
		a.signup.release(id)
	}
}

func (a *App) todos(w http.ResponseWriter, r *http.Request) {
	writeHTML(w, a.logger, http.StatusOK, views.TodosPage(views.Page{}, views.PlaceholderTodos))
}

func (a *App) profile(w http.ResponseWriter, r *http.Request) {
	writeHTML(w, a.logger, http.StatusOK, views.ProfilePage(views.Page{}, views.PlaceholderProfile))
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.router.ServeHTTP(w, r)
}

// Handler returns the App as an http.Handler.
func (a *App) Handler() http.Handler {
	return a
}

// Config returns the app configuration.
func (a *App) Config() Config {
	return a.config
}

// Close stops the instance managers' cleanup loops.
func (a *App) Close() {
	a.login.pages.Stop()
	a.signup.pages.Stop()
}

// Run serves on addr until ctx is done, then shuts down gracefully.
func (a *App) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           a,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("server starting", "address", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		a.Close()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err

	case <-ctx.Done():
		a.logger.Info("shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.config.ShutdownTimeout)
		defer cancel()
		a.Close()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			a.logger.Error("shutdown error", "error", err)
			return err
		}
		a.logger.Info("server shutdown complete")
		return nil
	}
}

// requestLogger logs one line per request.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Debug("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", chimw.GetReqID(r.Context()),
			)
		})
	}
}

// originChecker allows the app's own host, the listed origins, and any
// origin in dev mode.
func originChecker(allowed []string, dev bool) func(*http.Request) bool {
	set := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		set[strings.ToLower(strings.TrimSuffix(o, "/"))] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if dev || origin == "" {
			return true
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		if strings.EqualFold(u.Host, r.Host) {
			return true
		}
		return set[strings.ToLower(origin)]
	}
}
