package app

import (
	"io"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/xymaxim/fmtinfo/internal/service"
)

type App struct {
	Service *service.Service
	Server  *http.Server
	Config  *Config

	startedAt time.Time
	limiter   *rate.Limiter
}

type Config struct {
	Port int
	// CORSOrigins lists allowed origins; "*" allows any.
	CORSOrigins []string
	// RateLimit caps extraction requests per second. Zero disables it.
	RateLimit float64
	RateBurst int
}

// NewLogger installs a text logger on w as the default one.
func NewLogger(w io.Writer, verbose bool) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
	})
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

func NewApp(svc *service.Service, cfg *Config) *App {
	a := &App{
		Service:   svc,
		Config:    cfg,
		startedAt: time.Now(),
	}
	if cfg.RateLimit > 0 {
		burst := max(cfg.RateBurst, 1)
		a.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	a.Server = &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.Port),
		Handler:           a.Handler(),
		ReadHeaderTimeout: 20 * time.Second,
	}
	return a
}

// Handler returns the routes wrapped in the CORS middleware.
func (a *App) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", WithError(a.RootHandler))
	mux.HandleFunc("GET /health", WithError(a.HealthHandler))
	mux.HandleFunc("GET /yt/info", a.withRateLimit(WithError(a.YtdlpInfoHandler)))
	mux.HandleFunc("POST /scrape/vidssave", a.withRateLimit(WithError(a.VidssaveHandler)))
	mux.HandleFunc("GET /info/{source}", a.withRateLimit(WithError(a.InfoHandler)))
	return withCORS(a.Config.CORSOrigins, mux)
}
