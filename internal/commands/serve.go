package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/xymaxim/fmtinfo/internal/app"
	"github.com/xymaxim/fmtinfo/internal/urlutil"
)

const shutdownTimeout = 10 * time.Second

type Serve struct {
	CommonFlags
	SourceFlags
	CORSOrigins []string `help:"Allowed CORS origins" default:"*" name:"cors-origins"`
	RateLimit   float64  `help:"Extraction requests per second (0 disables limiting)" default:"0"`
	RateBurst   int      `help:"Burst size for the rate limiter" default:"5"`
}

func (c *Serve) Run(ctx context.Context) error {
	svc, err := c.buildService(false)
	if err != nil {
		return err
	}

	a := app.NewApp(svc, &app.Config{
		Port:        c.Port,
		CORSOrigins: c.CORSOrigins,
		RateLimit:   c.RateLimit,
		RateBurst:   c.RateBurst,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- a.Server.ListenAndServe()
	}()

	fmt.Printf(
		"(<<) Serving %v and listening on %s...\n",
		svc.Names(),
		urlutil.FormatServerAddress(a.Server.Addr),
	)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
